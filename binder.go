package easyexpr

import (
	"fmt"
	"reflect"

	"github.com/expr-lang/expr/vm"
	"go.uber.org/multierr"
)

// link installs accessors into the slots and runs field initializers in the order
// of variables in the request. Properties get accessors bound to the caller-owned value
func (a *Assembly) link(u *unit) error {
	for _, s := range u.slots {
		a.slots[s.index] = s.variable.newAccessor()
	}
	var err error
	for _, ci := range a.inits {
		e := catchPanicOrError("link", func() error {
			out, err := vm.Run(ci.program, map[string]any{})
			if err != nil {
				return err
			}
			_, err = a.slots[ci.slot.index].set(out)
			return err
		})
		if e != nil {
			err = multierr.Append(err, &bodyError{
				body: fmt.Sprintf("initializer of '%s'", ci.slot.variable.Name()),
				err:  e,
			})
		}
	}
	if err != nil {
		return newCompileError(err)
	}
	for _, cm := range a.methods {
		if err = a.resolve(cm); err != nil {
			return newCompileError(err)
		}
		cm.delegate = a.bind(cm)
	}
	return nil
}

// resolve checks that the compiled method takes parameters of the types the delegate expects
func (a *Assembly) resolve(cm *compiledMethod) error {
	m := cm.method
	if len(m.params) != len(m.sig.in) {
		return fmt.Errorf("method '%s': can't resolve %s", m.name, m.sig.fnType)
	}
	for i, p := range m.params {
		if p.Type != m.sig.in[i] {
			return fmt.Errorf("method '%s': parameter '%s' is %s, expected %s", m.name, p.Name, p.Type, m.sig.in[i])
		}
	}
	return nil
}

// bind makes the delegate function. Errors raised while evaluating are returned
// as the last result when the delegate type has one. Otherwise the delegate panics
func (a *Assembly) bind(cm *compiledMethod) reflect.Value {
	m := cm.method
	sig := m.sig
	where := fmt.Sprintf("method '%s'", m.name)
	return reflect.MakeFunc(sig.fnType, func(args []reflect.Value) []reflect.Value {
		env := make(map[string]any, len(args))
		for i, arg := range args {
			env[m.params[i].Name] = arg.Interface()
		}
		var result reflect.Value
		err := catchPanicOrError(where, func() error {
			out, err := vm.Run(cm.program, env)
			if err != nil {
				return err
			}
			if sig.isAction() {
				return nil
			}
			result, err = convertValue(out, sig.out)
			return err
		})
		if err != nil {
			log.Debugf("method '%s': %v", m.name, err)
		}
		return results(&sig, result, err)
	})
}

func results(sig *signature, result reflect.Value, err error) []reflect.Value {
	if err != nil && !sig.returnsError {
		panic(err)
	}
	ret := make([]reflect.Value, 0, 2)
	if !sig.isAction() {
		if err != nil || !result.IsValid() {
			result = reflect.Zero(sig.out)
		}
		ret = append(ret, result)
	}
	if sig.returnsError {
		if err != nil {
			ret = append(ret, reflect.ValueOf(&err).Elem())
		} else {
			ret = append(ret, reflect.Zero(errorType))
		}
	}
	return ret
}
