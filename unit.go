package easyexpr

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/parser"
	"github.com/lunfardo314/easyexpr/policy"
	"go.uber.org/multierr"
	"golang.org/x/crypto/blake2b"
)

// slotDef is the place of one variable in the unit and the symbols of its injected accessors
type slotDef struct {
	index    int
	variable Variable
	getter   string
	setter   string
}

func (s *slotDef) kind() string {
	if s.variable.isShared() {
		return "property"
	}
	return "field"
}

// body is one expression of the unit: a method or a field initializer
type body struct {
	name   string
	params []Parameter
	// out is nil when the result is not checked
	out    reflect.Type
	src    *source
	tree   *parser.Tree
	method *Method
	slot   *slotDef
}

// unit is synthesized fresh for every compile request and discarded after it
type unit struct {
	slots       []*slotDef
	slotByName  map[string]*slotDef
	methods     []*body
	inits       []*body
	refs        References
	listing     string
	fingerprint [32]byte
	demangler   *strings.Replacer
}

func synthesize(variables []Variable, methods []*Method) (*unit, error) {
	u := &unit{
		slotByName: make(map[string]*slotDef),
		refs:       computeReferences(variables, methods),
	}
	var err error
	for _, v := range variables {
		if _, dup := u.slotByName[v.Name()]; dup {
			err = multierr.Append(err, fmt.Errorf("duplicate variable '%s'", v.Name()))
			continue
		}
		s := &slotDef{
			index:    len(u.slots),
			variable: v,
			getter:   fmt.Sprintf("_get_%s_%d", v.Name(), len(u.slots)),
			setter:   fmt.Sprintf("_set_%s_%d", v.Name(), len(u.slots)),
		}
		u.slots = append(u.slots, s)
		u.slotByName[v.Name()] = s
	}
	methodNames := make(map[string]struct{})
	for _, m := range methods {
		if _, dup := methodNames[m.name]; dup {
			err = multierr.Append(err, fmt.Errorf("duplicate method '%s'", m.name))
			continue
		}
		methodNames[m.name] = struct{}{}
		b := &body{
			name:   fmt.Sprintf("method '%s'", m.name),
			params: m.params,
			src:    m.src,
			method: m,
		}
		if !m.options.ReturnsDynamic {
			b.out = m.sig.out
		}
		if e := u.synthesizeBody(b); e != nil {
			err = multierr.Append(err, e)
			continue
		}
		u.methods = append(u.methods, b)
	}
	for _, s := range u.slots {
		src := s.variable.initializer()
		if src == nil {
			continue
		}
		b := &body{
			name: fmt.Sprintf("initializer of '%s'", s.variable.Name()),
			src:  src,
			slot: s,
		}
		if !s.variable.IsDynamic() {
			b.out = s.variable.Type()
		}
		if e := u.synthesizeBody(b); e != nil {
			err = multierr.Append(err, e)
			continue
		}
		u.inits = append(u.inits, b)
	}
	if err != nil {
		return nil, newCompileError(err)
	}
	u.listing = u.list()
	u.fingerprint = blake2b.Sum256([]byte(u.listing))
	u.demangler = u.newDemangler()
	return u, nil
}

// synthesizeBody builds a fresh tree of the expression and links variable
// names in it to the accessor symbols. Parameters shadow variables
func (u *unit) synthesizeBody(b *body) error {
	tree, err := b.src.tree()
	if err != nil {
		return err
	}
	params := make(map[string]struct{}, len(b.params))
	for _, p := range b.params {
		params[p.Name] = struct{}{}
	}
	callees := make(map[*ast.IdentifierNode]struct{})
	_ = policy.Walk(&tree.Node, func(node *ast.Node) error {
		if call, ok := (*node).(*ast.CallNode); ok {
			if id, ok := call.Callee.(*ast.IdentifierNode); ok {
				callees[id] = struct{}{}
			}
		}
		return nil
	})
	_ = policy.Walk(&tree.Node, func(node *ast.Node) error {
		id, ok := (*node).(*ast.IdentifierNode)
		if !ok {
			return nil
		}
		if _, isCallee := callees[id]; isCallee {
			return nil
		}
		if _, isParam := params[id.Value]; isParam {
			return nil
		}
		if s, isVar := u.slotByName[id.Value]; isVar {
			ast.Patch(node, accessorCall(s.getter, id.Location()))
		}
		return nil
	})
	for i := len(b.src.targets) - 1; i >= 0; i-- {
		target := b.src.targets[i]
		if _, isParam := params[target]; isParam {
			return &bodyError{body: b.name, err: fmt.Errorf("cannot assign to parameter '%s'", target)}
		}
		s, isVar := u.slotByName[target]
		if !isVar {
			return &bodyError{body: b.name, err: fmt.Errorf("cannot assign to '%s': the name is not a variable", target)}
		}
		tree.Node = accessorCall(s.setter, tree.Node.Location(), tree.Node)
	}
	b.tree = tree
	return nil
}

func accessorCall(sym string, loc file.Location, args ...ast.Node) *ast.CallNode {
	callee := &ast.IdentifierNode{Value: sym}
	callee.SetLocation(loc)
	ret := &ast.CallNode{
		Callee:    callee,
		Arguments: args,
	}
	ret.SetLocation(loc)
	return ret
}

// list is the canonical text form of the unit. Identical requests produce identical listings
func (u *unit) list() string {
	var b strings.Builder
	for _, s := range u.slots {
		fmt.Fprintf(&b, "%s %s %s", s.kind(), s.variable.Name(), typeString(s.variable.Type()))
		if s.variable.IsDynamic() {
			b.WriteString(" dynamic")
		}
		fmt.Fprintf(&b, " {get %s; set %s}", s.getter, s.setter)
		if src := s.variable.initializer(); src != nil {
			fmt.Fprintf(&b, " = %s", src.text)
		}
		b.WriteString("\n")
	}
	for _, m := range u.methods {
		params := make([]string, len(m.params))
		for i, p := range m.params {
			params[i] = p.Name + " " + typeString(p.Type)
			if p.Options.IsDynamic {
				params[i] += " dynamic"
			}
		}
		fmt.Fprintf(&b, "method %s(%s) %s", m.method.name, strings.Join(params, ", "), typeString(m.method.sig.out))
		if m.method.options.ReturnsDynamic {
			b.WriteString(" dynamic")
		}
		fmt.Fprintf(&b, " = %s\n", m.src.text)
	}
	return b.String()
}

// newDemangler replaces accessor symbols in diagnostics with variable names
func (u *unit) newDemangler() *strings.Replacer {
	type pair struct{ sym, name string }
	pairs := make([]pair, 0, 2*len(u.slots))
	for _, s := range u.slots {
		pairs = append(pairs, pair{s.getter, s.variable.Name()}, pair{s.setter, s.variable.Name()})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return len(pairs[i].sym) > len(pairs[j].sym)
	})
	oldnew := make([]string, 0, 2*len(pairs))
	for _, p := range pairs {
		oldnew = append(oldnew, p.sym, p.name)
	}
	return strings.NewReplacer(oldnew...)
}
