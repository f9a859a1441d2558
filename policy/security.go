package policy

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/file"
)

// Access is a set of capabilities an expression is granted
type Access int32

const (
	None                  = Access(0x00)
	AllowMathMethods      = Access(0x01)
	AllowMemberAccess     = Access(0x02)
	AllowMemberInvokation = Access(0x04)
	// AllowAll switches the check off. It is not combined with other bits
	AllowAll = Access(0x7fffffff)
)

var accessNames = []struct {
	bit  Access
	name string
}{
	{AllowMathMethods, "AllowMathMethods"},
	{AllowMemberAccess, "AllowMemberAccess"},
	{AllowMemberInvokation, "AllowMemberInvokation"},
}

func (a Access) IsAllowAll() bool {
	return a&AllowAll == AllowAll
}

func (a Access) Has(bit Access) bool {
	return a.IsAllowAll() || a&bit == bit
}

func (a Access) String() string {
	if a.IsAllowAll() {
		return "AllowAll"
	}
	if a == None {
		return "None"
	}
	ret := make([]string, 0, len(accessNames))
	for _, n := range accessNames {
		if a&n.bit != 0 {
			ret = append(ret, n.name)
		}
	}
	if len(ret) == 0 {
		return fmt.Sprintf("Access(0x%x)", int32(a))
	}
	return strings.Join(ret, "|")
}

// ParseAccess parses comma or '|' separated list of capabilities.
// Short names 'none', 'math', 'member', 'invoke' and 'all' are accepted too
func ParseAccess(s string) (Access, error) {
	ret := None
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' || r == ' ' }) {
		switch strings.ToLower(tok) {
		case "none":
		case "math", "allowmathmethods":
			ret |= AllowMathMethods
		case "member", "allowmemberaccess":
			ret |= AllowMemberAccess
		case "invoke", "allowmemberinvokation":
			ret |= AllowMemberInvokation
		case "all", "allowall":
			ret = AllowAll
		default:
			return None, fmt.Errorf("unknown security access '%s'", tok)
		}
	}
	return ret, nil
}

// Violation is returned when the expression uses a capability it is not granted
type Violation struct {
	Name     string
	Kind     Kind
	Location file.Location
}

func (v *Violation) Error() string {
	return fmt.Sprintf("the name '%s' does not exist in the current context", v.Name)
}

// Check walks the tree and enforces the access. Bare identifier invocation is
// permitted for whitelisted names only and only with AllowMathMethods
func Check(access Access, whitelisted func(string) bool, root *ast.Node) error {
	if access.IsAllowAll() {
		return nil
	}
	if !access.Has(AllowMathMethods) || whitelisted == nil {
		whitelisted = func(string) bool { return false }
	}
	return Walk(root, func(node *ast.Node) error {
		kind, name := Classify(*node)
		var allowed bool
		switch kind {
		case IdentifierCall:
			allowed = whitelisted(name)
		case MemberAccess:
			allowed = access.Has(AllowMemberAccess)
		case MemberCall, IndirectCall:
			allowed = access.Has(AllowMemberInvokation)
		default:
			return nil
		}
		if allowed {
			return nil
		}
		return &Violation{
			Name:     name,
			Kind:     kind,
			Location: (*node).Location(),
		}
	})
}
