package easyexpr

import (
	"encoding/hex"
	"fmt"
	"reflect"

	"github.com/expr-lang/expr/vm"
)

// Assembly is the result of one compile request: delegates of all methods,
// storage of unit-scoped variables and the fingerprint of the request
type Assembly struct {
	fingerprint [32]byte
	listing     string
	refs        References
	slots       []*accessor
	methods     []*compiledMethod
	byName      map[string]*compiledMethod
	inits       []*compiledInitializer
}

type compiledMethod struct {
	method   *Method
	program  *vm.Program
	delegate reflect.Value
}

type compiledInitializer struct {
	slot    *slotDef
	program *vm.Program
}

func newAssembly(u *unit) *Assembly {
	return &Assembly{
		fingerprint: u.fingerprint,
		listing:     u.listing,
		refs:        u.refs,
		slots:       make([]*accessor, len(u.slots)),
		byName:      make(map[string]*compiledMethod),
	}
}

func (a *Assembly) addMethod(m *Method, program *vm.Program) {
	cm := &compiledMethod{
		method:  m,
		program: program,
	}
	a.methods = append(a.methods, cm)
	a.byName[m.name] = cm
}

func (a *Assembly) addInitializer(s *slotDef, program *vm.Program) {
	a.inits = append(a.inits, &compiledInitializer{
		slot:    s,
		program: program,
	})
}

// Fingerprint identifies the compile request. Requests with the same variables
// and methods in the same order have the same fingerprint
func (a *Assembly) Fingerprint() [32]byte {
	return a.fingerprint
}

func (a *Assembly) FingerprintString() string {
	return hex.EncodeToString(a.fingerprint[:])
}

// Listing is the canonical text of the compile request
func (a *Assembly) Listing() string {
	return a.listing
}

func (a *Assembly) References() References {
	return a.refs
}

func (a *Assembly) NumMethods() int {
	return len(a.methods)
}

// Delegate returns the compiled function of the named method. The value can be
// asserted to the function type the method was created with
func (a *Assembly) Delegate(name string) (any, bool) {
	cm, ok := a.byName[name]
	if !ok {
		return nil, false
	}
	return cm.delegate.Interface(), true
}

// Delegates returns compiled functions in the order of methods in the request
func (a *Assembly) Delegates() []any {
	ret := make([]any, len(a.methods))
	for i, cm := range a.methods {
		ret[i] = cm.delegate.Interface()
	}
	return ret
}

// Disassemble returns the listing of the program the named method was compiled to
func (a *Assembly) Disassemble(name string) (string, error) {
	cm, ok := a.byName[name]
	if !ok {
		return "", fmt.Errorf("no method '%s' in the assembly", name)
	}
	return cm.program.Disassemble(), nil
}
