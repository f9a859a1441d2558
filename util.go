package easyexpr

import (
	"fmt"
	"math"
	"reflect"
	"unicode"
	"unicode/utf8"
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// catchPanicOrError runs f and converts a panic in it into an error attributed to where
func catchPanicOrError(where string, f func() error) error {
	var err error
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%s: panic: %w", where, e)
			} else {
				err = fmt.Errorf("%s: panic: %v", where, r)
			}
		}()
		err = f()
	}()
	return err
}

// isUniversal is true for the empty interface
func isUniversal(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Interface && t.NumMethod() == 0
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUintKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// convertValue converts value produced by compiled code to the value of type t.
// Numeric values are converted between kinds, nil becomes zero value of nilable types
func convertValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		if isNilable(t.Kind()) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return rv, nil
	}
	if rv.Type().AssignableTo(t) {
		ret := reflect.New(t).Elem()
		ret.Set(rv)
		return ret, nil
	}
	if isNumericKind(rv.Kind()) && isNumericKind(t.Kind()) {
		if !fitsInto(rv, t) {
			return reflect.Value{}, fmt.Errorf("value %v of type %s does not fit into %s", v, rv.Type(), t)
		}
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", rv.Type(), t)
}

// bounds of float64 values convertible to 64 bit integers
const (
	minInt64Float  = -9223372036854775808.0
	maxInt64Float  = 9223372036854775808.0
	maxUint64Float = 18446744073709551616.0
)

// fitsInto is true if numeric v converts to t without wrapping, losing the sign or
// dropping the fraction. Integers converted to floats may lose precision only
func fitsInto(v reflect.Value, t reflect.Type) bool {
	target := reflect.Zero(t)
	k := v.Kind()
	switch {
	case isIntKind(t.Kind()):
		switch {
		case isIntKind(k):
			return !target.OverflowInt(v.Int())
		case isUintKind(k):
			return v.Uint() <= math.MaxInt64 && !target.OverflowInt(int64(v.Uint()))
		}
		f := v.Float()
		return f == math.Trunc(f) && f >= minInt64Float && f < maxInt64Float && !target.OverflowInt(int64(f))
	case isUintKind(t.Kind()):
		switch {
		case isIntKind(k):
			return v.Int() >= 0 && !target.OverflowUint(uint64(v.Int()))
		case isUintKind(k):
			return !target.OverflowUint(v.Uint())
		}
		f := v.Float()
		return f == math.Trunc(f) && f >= 0 && f < maxUint64Float && !target.OverflowUint(uint64(f))
	case isFloatKind(k):
		return !target.OverflowFloat(v.Float())
	}
	return true
}

var reservedWords = map[string]bool{
	"true": true, "false": true, "nil": true, "not": true, "and": true, "or": true,
	"in": true, "matches": true, "contains": true, "startsWith": true, "endsWith": true,
	"let": true, "if": true, "else": true,
}

func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	r, size := utf8.DecodeRuneInString(s)
	if !unicode.IsLetter(r) && r != '_' {
		return false
	}
	if reservedWords[s] {
		return false
	}
	for _, r = range s[size:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "void"
	}
	return t.String()
}
