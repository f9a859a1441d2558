package easyexpr

import (
	"fmt"
	"reflect"

	"go.uber.org/atomic"
)

var (
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	methodCounter atomic.Uint64
)

type Parameter struct {
	Name    string
	Type    reflect.Type
	Options ParameterOptions
}

// signature is the shape of the delegate function type, taken once at construction
type signature struct {
	fnType       reflect.Type
	in           []reflect.Type
	out          reflect.Type
	returnsError bool
}

func signatureOf(fnType reflect.Type) (signature, error) {
	if fnType.Kind() != reflect.Func {
		return signature{}, newArgumentError("%s is not a function type", fnType)
	}
	if fnType.IsVariadic() {
		return signature{}, newArgumentError("variadic function type %s is not supported", fnType)
	}
	ret := signature{
		fnType: fnType,
		in:     make([]reflect.Type, fnType.NumIn()),
	}
	for i := range ret.in {
		ret.in[i] = fnType.In(i)
	}
	switch fnType.NumOut() {
	case 0:
	case 1:
		if fnType.Out(0) == errorType {
			ret.returnsError = true
		} else {
			ret.out = fnType.Out(0)
		}
	case 2:
		if fnType.Out(1) != errorType {
			return signature{}, newArgumentError("second result of %s must be error", fnType)
		}
		ret.out = fnType.Out(0)
		ret.returnsError = true
	default:
		return signature{}, newArgumentError("function type %s has too many results", fnType)
	}
	return ret, nil
}

func (s *signature) isAction() bool {
	return s.out == nil
}

// Method describes one expression to be compiled into the function of type F.
// It can be compiled only once
type Method struct {
	name     string
	src      *source
	params   []Parameter
	sig      signature
	options  MethodOptions
	consumed atomic.Bool
}

// NewMethod creates anonymous method. The number of parameter names must be equal
// to the number of parameters of F
func NewMethod[F any](options *MethodOptions, expression string, parameterNames ...string) (*Method, error) {
	return newMethod(fmt.Sprintf("_%d", methodCounter.Inc()), reflect.TypeOf((*F)(nil)).Elem(), options, expression, parameterNames...)
}

func NewNamedMethod[F any](name string, options *MethodOptions, expression string, parameterNames ...string) (*Method, error) {
	if !isValidIdentifier(name) {
		return nil, newArgumentError("invalid method name '%s'", name)
	}
	return newMethod(name, reflect.TypeOf((*F)(nil)).Elem(), options, expression, parameterNames...)
}

func MustNewMethod[F any](options *MethodOptions, expression string, parameterNames ...string) *Method {
	ret, err := NewMethod[F](options, expression, parameterNames...)
	if err != nil {
		panic(err)
	}
	return ret
}

func newMethod(name string, fnType reflect.Type, options *MethodOptions, expression string, parameterNames ...string) (*Method, error) {
	if options == nil {
		options = DefaultMethodOptions()
	}
	sig, err := signatureOf(fnType)
	if err != nil {
		return nil, err
	}
	if len(sig.in) != len(parameterNames) {
		return nil, newArgumentError("number of parameter names (%d) does not match the number of parameters of %s (%d)",
			len(parameterNames), fnType, len(sig.in))
	}
	if options.ReturnsDynamic && !isUniversal(sig.out) {
		return nil, newArgumentError("the result type of %s must be %s when the method returns dynamic", fnType, anyType)
	}
	ret := &Method{
		name:    name,
		sig:     sig,
		options: options.clone(),
		params:  make([]Parameter, len(parameterNames)),
	}
	unique := make(map[string]struct{})
	for i, n := range parameterNames {
		if !isValidIdentifier(n) {
			return nil, newArgumentError("invalid parameter name '%s'", n)
		}
		if _, dup := unique[n]; dup {
			return nil, newArgumentError("repeating parameter name '%s'", n)
		}
		unique[n] = struct{}{}
		ret.params[i] = Parameter{Name: n, Type: sig.in[i]}
		if o, ok := options.ParameterOptions[n]; ok {
			if o.IsDynamic && !isUniversal(sig.in[i]) {
				return nil, newArgumentError("the type of parameter '%s' must be %s when it is dynamic, got %s", n, anyType, sig.in[i])
			}
			ret.params[i].Options = o
		} else if isUniversal(sig.in[i]) {
			ret.params[i].Options = options.DefaultParameterOptions
		}
	}
	for n := range options.ParameterOptions {
		if _, ok := unique[n]; !ok {
			return nil, newArgumentError("options for unknown parameter '%s'", n)
		}
	}
	if ret.src, err = parseSource(expression, options.SecurityAccess, options.ForceNumericDouble); err != nil {
		return nil, err
	}
	return ret, nil
}

func (m *Method) Name() string {
	return m.name
}

func (m *Method) Expression() string {
	return m.src.text
}

func (m *Method) Parameters() []Parameter {
	ret := make([]Parameter, len(m.params))
	copy(ret, m.params)
	return ret
}

// ReturnType is nil for methods which return nothing
func (m *Method) ReturnType() reflect.Type {
	return m.sig.out
}

func (m *Method) ReturnsDynamic() bool {
	return m.options.ReturnsDynamic
}

// DelegateType is the type of the function the method is compiled to
func (m *Method) DelegateType() reflect.Type {
	return m.sig.fnType
}

func (m *Method) isDynamic() bool {
	if m.options.ReturnsDynamic {
		return true
	}
	for _, p := range m.params {
		if p.Options.IsDynamic {
			return true
		}
	}
	return false
}
