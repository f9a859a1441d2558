package easyexpr

import (
	"fmt"
	"reflect"
)

// Variable is a named value reachable from compiled expressions.
// *Property[T] is shared with the caller and survives any number of compile requests,
// *Field[T] lives inside one compiled Assembly
type Variable interface {
	Name() string
	Type() reflect.Type
	IsDynamic() bool
	isShared() bool
	initializer() *source
	newAccessor() *accessor
}

// accessor is installed into the assembly slot at link time
type accessor struct {
	get func() any
	set func(v any) (any, error)
}

type variableBase struct {
	name    string
	typ     reflect.Type
	dynamic bool
}

func newVariableBase[T any](name string, dynamic bool) (variableBase, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if !isValidIdentifier(name) {
		return variableBase{}, newArgumentError("invalid variable name '%s'", name)
	}
	if dynamic && !isUniversal(typ) {
		return variableBase{}, newArgumentError("the type of variable '%s' must be %s when it is dynamic, got %s", name, anyType, typ)
	}
	return variableBase{
		name:    name,
		typ:     typ,
		dynamic: dynamic,
	}, nil
}

func (v *variableBase) Name() string {
	return v.name
}

func (v *variableBase) Type() reflect.Type {
	return v.typ
}

func (v *variableBase) IsDynamic() bool {
	return v.dynamic
}

func cellAccessor[T any](typ reflect.Type, cell *T) *accessor {
	return &accessor{
		get: func() any {
			return *cell
		},
		set: func(v any) (any, error) {
			rv, err := convertValue(v, typ)
			if err != nil {
				return nil, err
			}
			if val, ok := rv.Interface().(T); ok {
				*cell = val
			} else {
				var zero T
				*cell = zero
			}
			return *cell, nil
		},
	}
}

// Property is a shared variable. The caller owns Value. All methods compiled with the
// property read and write the same Value
type Property[T any] struct {
	variableBase
	Value T
}

func NewProperty[T any](options *PropertyOptions, name string, value ...T) (*Property[T], error) {
	if options == nil {
		options = &PropertyOptions{}
	}
	if len(value) > 1 {
		return nil, newArgumentError("property '%s': only one initial value is expected", name)
	}
	base, err := newVariableBase[T](name, options.IsDynamic)
	if err != nil {
		return nil, err
	}
	ret := &Property[T]{variableBase: base}
	if len(value) > 0 {
		ret.Value = value[0]
	}
	return ret, nil
}

func MustNewProperty[T any](options *PropertyOptions, name string, value ...T) *Property[T] {
	ret, err := NewProperty[T](options, name, value...)
	if err != nil {
		panic(err)
	}
	return ret
}

func (p *Property[T]) isShared() bool {
	return true
}

func (p *Property[T]) initializer() *source {
	return nil
}

func (p *Property[T]) newAccessor() *accessor {
	return cellAccessor[T](p.typ, &p.Value)
}

// Field is a unit-scoped variable. Every compiled Assembly has its own copy of it,
// initialized with the initializer expression or with the zero value
type Field[T any] struct {
	variableBase
	init *source
}

func NewField[T any](options *FieldOptions, name string, initializer ...string) (*Field[T], error) {
	if options == nil {
		options = DefaultFieldOptions()
	}
	if len(initializer) > 1 {
		return nil, newArgumentError("field '%s': only one initializer is expected", name)
	}
	base, err := newVariableBase[T](name, options.IsDynamic)
	if err != nil {
		return nil, err
	}
	ret := &Field[T]{variableBase: base}
	if len(initializer) > 0 {
		if ret.init, err = parseSource(initializer[0], options.SecurityAccess, options.ForceNumericDouble); err != nil {
			return nil, err
		}
		if len(ret.init.targets) > 0 {
			return nil, newParseError(fmt.Errorf("field '%s': initializer can't be an assignment", name))
		}
	}
	return ret, nil
}

func MustNewField[T any](options *FieldOptions, name string, initializer ...string) *Field[T] {
	ret, err := NewField[T](options, name, initializer...)
	if err != nil {
		panic(err)
	}
	return ret
}

// Initializer returns the initializer expression or empty string
func (f *Field[T]) Initializer() string {
	if f.init == nil {
		return ""
	}
	return f.init.text
}

func (f *Field[T]) isShared() bool {
	return false
}

func (f *Field[T]) initializer() *source {
	return f.init
}

func (f *Field[T]) newAccessor() *accessor {
	var cell T
	return cellAccessor[T](f.typ, &cell)
}
