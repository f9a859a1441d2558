package policy

import (
	"github.com/expr-lang/expr/ast"
)

// ForceNumericDouble replaces every numeric literal which is not float64 with the
// float64 literal of the same value. Returns number of replaced literals
func ForceNumericDouble(root *ast.Node) int {
	count := 0
	_ = Walk(root, func(node *ast.Node) error {
		if k, _ := Classify(*node); k != NumericLiteral {
			return nil
		}
		if n, ok := (*node).(*ast.IntegerNode); ok {
			ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})
			count++
		}
		return nil
	})
	return count
}
