package easyexpr

import (
	"fmt"
	"reflect"
	"time"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/checker"
	"github.com/expr-lang/expr/checker/nature"
	"github.com/expr-lang/expr/compiler"
	"github.com/expr-lang/expr/conf"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/optimizer"
	"github.com/expr-lang/expr/types"
	"github.com/expr-lang/expr/vm"
	"github.com/lunfardo314/easyexpr/library"
	"github.com/lunfardo314/easyexpr/policy"
	"go.uber.org/multierr"
)

// reflectType is the static type of a parameter. Unlike types.TypeOf it can express
// the empty interface, which is different from the dynamic types.Any
type reflectType struct {
	t reflect.Type
}

func (r reflectType) Nature() nature.Nature {
	return nature.FromType(r.t)
}

func (r reflectType) Equal(t types.Type) bool {
	if t == types.Any {
		return true
	}
	rt, ok := t.(reflectType)
	return ok && rt.t == r.t
}

func (r reflectType) String() string {
	return r.t.String()
}

func parameterEnv(params []Parameter) types.Map {
	ret := make(types.Map, len(params))
	for _, p := range params {
		if p.Options.IsDynamic {
			ret[p.Name] = types.Any
		} else {
			ret[p.Name] = reflectType{p.Type}
		}
	}
	return ret
}

// functions returns the function table shared by all bodies of the unit:
// the math library, variable accessors bound to the assembly slots and,
// for dynamic units, the runtime support
func (u *unit) functions(asm *Assembly) conf.FunctionsTable {
	ret := make(conf.FunctionsTable)
	for _, f := range library.Functions() {
		ret[f.Name] = f
	}
	if u.refs.Dynamic {
		f := library.TypeOfFunction()
		ret[f.Name] = f
	}
	for _, s := range u.slots {
		ret[s.getter] = asm.getterFunction(s)
		ret[s.setter] = asm.setterFunction(s)
	}
	return ret
}

func (a *Assembly) slot(s *slotDef) (*accessor, error) {
	if acc := a.slots[s.index]; acc != nil {
		return acc, nil
	}
	return nil, fmt.Errorf("variable '%s' is not linked", s.variable.Name())
}

func (a *Assembly) getterFunction(s *slotDef) *builtin.Function {
	typ := s.variable.Type()
	ret := &builtin.Function{
		Name: s.getter,
		Func: func(args ...any) (any, error) {
			acc, err := a.slot(s)
			if err != nil {
				return nil, err
			}
			return acc.get(), nil
		},
		Types: []reflect.Type{reflect.FuncOf(nil, []reflect.Type{typ}, false)},
	}
	if s.variable.IsDynamic() {
		ret.Validate = func(args []reflect.Type) (reflect.Type, error) {
			if len(args) != 0 {
				return nil, fmt.Errorf("'%s' is not a function", s.variable.Name())
			}
			return nil, nil
		}
	}
	return ret
}

func (a *Assembly) setterFunction(s *slotDef) *builtin.Function {
	typ := s.variable.Type()
	ret := &builtin.Function{
		Name: s.setter,
		Func: func(args ...any) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("assignment to '%s': expected 1 value, got %d", s.variable.Name(), len(args))
			}
			acc, err := a.slot(s)
			if err != nil {
				return nil, err
			}
			return acc.set(args[0])
		},
		Types: []reflect.Type{reflect.FuncOf([]reflect.Type{typ}, []reflect.Type{typ}, false)},
	}
	if s.variable.IsDynamic() {
		ret.Validate = func(args []reflect.Type) (reflect.Type, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("assignment to '%s': expected 1 value, got %d", s.variable.Name(), len(args))
			}
			return nil, nil
		}
	}
	return ret
}

// invoke runs the toolchain over every body of the unit and collects all diagnostics
func invoke(u *unit, asm *Assembly) error {
	start := time.Now()
	fns := u.functions(asm)
	var err error
	for _, b := range u.methods {
		program, e := u.compileBody(b, fns)
		if e != nil {
			err = multierr.Append(err, e)
			continue
		}
		asm.addMethod(b.method, program)
	}
	for _, b := range u.inits {
		program, e := u.compileBody(b, fns)
		if e != nil {
			err = multierr.Append(err, e)
			continue
		}
		asm.addInitializer(b.slot, program)
	}
	if err != nil {
		return newCompileError(err)
	}
	log.Debugf("compiled %d method(s) and %d initializer(s) in %v", len(u.methods), len(u.inits), time.Since(start))
	return nil
}

func (u *unit) compileBody(b *body, fns conf.FunctionsTable) (*vm.Program, error) {
	config := conf.CreateNew()
	config.WithEnv(parameterEnv(b.params))
	for name, f := range fns {
		config.Functions[name] = f
	}
	var program *vm.Program
	err := catchPanicOrError("toolchain", func() error {
		if _, err := checker.Check(b.tree, config); err != nil {
			return err
		}
		if err := checkStaticMembers(b.tree.Source, &b.tree.Node); err != nil {
			return err
		}
		if err := checkResult(b); err != nil {
			return err
		}
		if config.Optimize {
			if err := optimizer.Optimize(&b.tree.Node, config); err != nil {
				return err
			}
		}
		if err := checkConstantResult(b); err != nil {
			return err
		}
		var err error
		program, err = compiler.Compile(b.tree, config)
		return err
	})
	if err != nil {
		return nil, &bodyError{body: b.name, err: err, message: u.demangler.Replace(err.Error())}
	}
	return program, nil
}

// checkStaticMembers rejects member access on values statically typed as any.
// Members of dynamic values are resolved at run time
func checkStaticMembers(src file.Source, root *ast.Node) error {
	return policy.Walk(root, func(node *ast.Node) error {
		m, ok := (*node).(*ast.MemberNode)
		if !ok {
			return nil
		}
		base := m.Node.Nature().Type
		if !isUniversal(base) {
			return nil
		}
		e := &file.Error{
			Location: m.Location(),
			Message:  fmt.Sprintf("type %s has no field or method %s", base, policy.MemberName(m)),
		}
		return e.Bind(src)
	})
}

// checkResult checks the statically known type of the expression against the expected result.
// Integers convert to any numeric kind at run time, floats convert only to floats
func checkResult(b *body) error {
	if b.out == nil || isUniversal(b.out) {
		return nil
	}
	nt := b.tree.Node.Nature()
	var msg string
	switch {
	case nt.Nil:
		if isNilable(b.out.Kind()) {
			return nil
		}
		msg = fmt.Sprintf("cannot use nil as %s", b.out)
	case nt.Type == nil || isUniversal(nt.Type):
		return nil
	case isFloatKind(nt.Type.Kind()) && isNumericKind(b.out.Kind()) && !isFloatKind(b.out.Kind()):
		msg = fmt.Sprintf("cannot use %s as %s without explicit conversion", nt.Type, b.out)
	case isNumericKind(nt.Type.Kind()) && isNumericKind(b.out.Kind()):
		return nil
	case nt.Type.AssignableTo(b.out):
		return nil
	default:
		msg = fmt.Sprintf("cannot use %s as %s", nt.Type, b.out)
	}
	e := &file.Error{
		Location: b.tree.Node.Location(),
		Message:  msg,
	}
	return e.Bind(b.tree.Source)
}

// checkConstantResult rejects a constant result which does not fit into the result type
func checkConstantResult(b *body) error {
	if b.out == nil || !isNumericKind(b.out.Kind()) {
		return nil
	}
	var v reflect.Value
	switch n := b.tree.Node.(type) {
	case *ast.IntegerNode:
		v = reflect.ValueOf(n.Value)
	case *ast.FloatNode:
		v = reflect.ValueOf(n.Value)
	default:
		return nil
	}
	if fitsInto(v, b.out) {
		return nil
	}
	e := &file.Error{
		Location: b.tree.Node.Location(),
		Message:  fmt.Sprintf("constant %v overflows %s", v, b.out),
	}
	return e.Bind(b.tree.Source)
}
