package easyexpr

import (
	"fmt"
	"time"

	"go.uber.org/atomic"
)

var primed atomic.Bool

// CompileExpression compiles expression into the function of type F with default options.
// parameterNames name the parameters of F in order
func CompileExpression[F any](expression string, variables []Variable, parameterNames ...string) (F, error) {
	return CompileExpressionWithOptions[F](nil, expression, variables, parameterNames...)
}

func CompileExpressionWithOptions[F any](options *MethodOptions, expression string, variables []Variable, parameterNames ...string) (F, error) {
	var zero F
	m, err := NewMethod[F](options, expression, parameterNames...)
	if err != nil {
		return zero, err
	}
	asm, err := Compile(variables, m)
	if err != nil {
		return zero, err
	}
	d, _ := asm.Delegate(m.name)
	ret, ok := d.(F)
	if !ok {
		return zero, newCompileError(fmt.Errorf("delegate of method '%s' is not %T", m.name, zero))
	}
	return ret, nil
}

// CompileExpressions compiles all methods in one unit. The i-th element of the result is
// the function of the i-th method
func CompileExpressions(variables []Variable, methods ...*Method) ([]any, error) {
	asm, err := Compile(variables, methods...)
	if err != nil {
		return nil, err
	}
	return asm.Delegates(), nil
}

// Compile compiles methods and variables into one Assembly. Every method can take part
// in only one compile request
func Compile(variables []Variable, methods ...*Method) (*Assembly, error) {
	for i, v := range variables {
		if v == nil {
			return nil, newArgumentError("variable #%d is nil", i)
		}
	}
	for i, m := range methods {
		if m == nil {
			return nil, newArgumentError("method #%d is nil", i)
		}
		if !m.consumed.CompareAndSwap(false, true) {
			return nil, newArgumentError("method '%s' has already been compiled", m.name)
		}
	}
	start := time.Now()
	asm, err := compile(variables, methods)
	if err != nil {
		log.Debugf("compile failed: %v", err)
		return nil, err
	}
	log.Debugf("compiled unit %s in %v", asm.FingerprintString()[:16], time.Since(start))
	return asm, nil
}

func compile(variables []Variable, methods []*Method) (*Assembly, error) {
	u, err := synthesize(variables, methods)
	if err != nil {
		return nil, err
	}
	log.Debugw("unit synthesized",
		"fingerprint", fmt.Sprintf("%x", u.fingerprint[:8]),
		"variables", len(u.slots),
		"methods", len(u.methods),
		"initializers", len(u.inits),
		"references", u.refs.String(),
	)
	asm := newAssembly(u)
	if err = invoke(u, asm); err != nil {
		return nil, err
	}
	if err = asm.link(u); err != nil {
		return nil, err
	}
	log.Debugf("linked %d slot(s)", len(asm.slots))
	return asm, nil
}

// Prime compiles a trivial expression to warm up the toolchain. Only the first call does it
func Prime() {
	if !primed.CompareAndSwap(false, true) {
		return
	}
	start := time.Now()
	if _, err := CompileExpression[func() any]("nil", nil); err != nil {
		log.Warnf("priming failed: %v", err)
		return
	}
	log.Debugf("primed in %v", time.Since(start))
}

func IsPrimed() bool {
	return primed.Load()
}
