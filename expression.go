package easyexpr

import (
	"errors"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/parser/lexer"
	"github.com/lunfardo314/easyexpr/library"
	"github.com/lunfardo314/easyexpr/policy"
)

// source is a validated expression: the chain of assignment targets, outermost first,
// and the value expression
type source struct {
	text        string
	targets     []string
	body        string
	access      SecurityAccess
	forceDouble bool
}

func parseSource(text string, access SecurityAccess, forceDouble bool) (*source, error) {
	ret := &source{
		text:        text,
		access:      access,
		forceDouble: forceDouble,
	}
	var err error
	if ret.targets, ret.body, err = splitAssignments(text); err != nil {
		return nil, newParseError(err)
	}
	if _, err = ret.tree(); err != nil {
		return nil, err
	}
	return ret, nil
}

// tree parses the value expression and applies policy passes to it.
// Every call returns a fresh tree
func (s *source) tree() (*parser.Tree, error) {
	tree, err := parser.Parse(s.body)
	if err != nil {
		return nil, newParseError(err)
	}
	if err = checkSingleExpression(tree); err != nil {
		return nil, newParseError(err)
	}
	if s.forceDouble {
		policy.ForceNumericDouble(&tree.Node)
	}
	if err = policy.Check(s.access, library.IsWhitelisted, &tree.Node); err != nil {
		ret := &SecurityError{ParseError: *newParseError(err)}
		var v *policy.Violation
		if errors.As(err, &v) {
			ret.Name = v.Name
		}
		return nil, ret
	}
	return tree, nil
}

// splitAssignments splits 'a = b = expr' into targets [a, b] and 'expr'
func splitAssignments(text string) ([]string, string, error) {
	tokens, err := lexer.Lex(file.NewSource(text))
	if err != nil {
		return nil, "", err
	}
	var targets []string
	i := 0
	for i+1 < len(tokens) && tokens[i].Kind == lexer.Identifier && tokens[i+1].Is(lexer.Operator, "=") {
		targets = append(targets, tokens[i].Value)
		i += 2
	}
	if len(targets) == 0 {
		return nil, text, nil
	}
	runes := []rune(text)
	from := len(runes)
	if i < len(tokens) && tokens[i].Kind != lexer.EOF && tokens[i].From < len(runes) {
		from = tokens[i].From
	}
	return targets, string(runes[from:]), nil
}

func checkSingleExpression(tree *parser.Tree) error {
	var ret error
	_ = policy.Walk(&tree.Node, func(node *ast.Node) error {
		switch (*node).(type) {
		case *ast.SequenceNode, *ast.VariableDeclaratorNode:
			e := &file.Error{
				Location: (*node).Location(),
				Message:  "only a single expression is allowed",
			}
			ret = e.Bind(tree.Source)
			return ret
		}
		return nil
	})
	return ret
}
