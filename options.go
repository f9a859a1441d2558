package easyexpr

import "github.com/lunfardo314/easyexpr/policy"

// SecurityAccess is a set of capabilities granted to an expression
type SecurityAccess = policy.Access

const (
	None                  = policy.None
	AllowMathMethods      = policy.AllowMathMethods
	AllowMemberAccess     = policy.AllowMemberAccess
	AllowMemberInvokation = policy.AllowMemberInvokation
	AllowAll              = policy.AllowAll
)

type ParameterOptions struct {
	IsDynamic bool
}

// MethodOptions zero value grants no capabilities. Use DefaultMethodOptions to allow all
type MethodOptions struct {
	ReturnsDynamic     bool
	SecurityAccess     SecurityAccess
	ForceNumericDouble bool
	// DefaultParameterOptions applies to parameters of type any, unless
	// overridden in ParameterOptions
	DefaultParameterOptions ParameterOptions
	ParameterOptions        map[string]ParameterOptions
}

func DefaultMethodOptions() *MethodOptions {
	return &MethodOptions{SecurityAccess: AllowAll}
}

func (o *MethodOptions) clone() MethodOptions {
	ret := *o
	if o.ParameterOptions != nil {
		ret.ParameterOptions = make(map[string]ParameterOptions, len(o.ParameterOptions))
		for k, v := range o.ParameterOptions {
			ret.ParameterOptions[k] = v
		}
	}
	return ret
}

// FieldOptions apply to the unit-scoped variable and to its initializer
type FieldOptions struct {
	IsDynamic          bool
	SecurityAccess     SecurityAccess
	ForceNumericDouble bool
}

func DefaultFieldOptions() *FieldOptions {
	return &FieldOptions{SecurityAccess: AllowAll}
}

type PropertyOptions struct {
	IsDynamic bool
}
