package policy

import (
	"github.com/expr-lang/expr/ast"
)

// Kind is the role of a tree node as seen by the policy passes
type Kind byte

const (
	Other = Kind(iota)
	NumericLiteral
	IdentifierCall
	MemberAccess
	MemberCall
	IndirectCall
)

var kindNames = map[Kind]string{
	Other:          "other",
	NumericLiteral: "numeric literal",
	IdentifierCall: "identifier call",
	MemberAccess:   "member access",
	MemberCall:     "member call",
	IndirectCall:   "indirect call",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Classify returns the kind of the node and the identifier it names, if any.
// Toolchain builtins are invocations of a bare identifier as well
func Classify(node ast.Node) (Kind, string) {
	switch n := node.(type) {
	case *ast.IntegerNode, *ast.FloatNode:
		return NumericLiteral, ""
	case *ast.BuiltinNode:
		return IdentifierCall, n.Name
	case *ast.CallNode:
		switch callee := n.Callee.(type) {
		case *ast.IdentifierNode:
			return IdentifierCall, callee.Value
		case *ast.MemberNode:
			return MemberCall, MemberName(callee)
		}
		return IndirectCall, n.Callee.String()
	case *ast.MemberNode:
		if _, named := n.Property.(*ast.StringNode); !named {
			// element access by index or computed key
			return Other, ""
		}
		return MemberAccess, MemberName(n)
	}
	return Other, ""
}

// MemberName returns the name of the accessed member, or the index expression
func MemberName(n *ast.MemberNode) string {
	if s, ok := n.Property.(*ast.StringNode); ok {
		return s.Value
	}
	return n.Property.String()
}

type walker struct {
	fun func(node *ast.Node) error
	err error
}

func (w *walker) Visit(node *ast.Node) {
	if w.err != nil {
		return
	}
	w.err = w.fun(node)
}

// Walk visits nodes in post-order and stops reporting at the first error
func Walk(root *ast.Node, fun func(node *ast.Node) error) error {
	w := &walker{fun: fun}
	ast.Walk(root, w)
	return w.err
}
