package easyexpr

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/lunfardo314/easyexpr/util/testutil"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y float64
}

func (p point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

func TestCompileExpression(t *testing.T) {
	SetLogger(testutil.NewSimpleLogger(false))
	defer SetLogger(nil)

	t.Run("1", func(t *testing.T) {
		f, err := CompileExpression[func() int]("21", nil)
		require.NoError(t, err)
		require.EqualValues(t, 21, f())
	})
	t.Run("2", func(t *testing.T) {
		f, err := CompileExpression[func(int) int]("x * 2", nil, "x")
		require.NoError(t, err)
		require.EqualValues(t, 42, f(21))
	})
	t.Run("3", func(t *testing.T) {
		_, err := CompileExpression[func(int)]("x", nil, "a", "b")
		var e *ArgumentError
		require.True(t, errors.As(err, &e))
		t.Logf("expected error: %v", err)
	})
	t.Run("4", func(t *testing.T) {
		_, err := CompileExpression[func()]("3 3", nil)
		var e *ParseError
		require.True(t, errors.As(err, &e))
		require.EqualValues(t, 1, len(e.Diagnostics))
	})
	t.Run("5", func(t *testing.T) {
		s := MustNewProperty[string](nil, "s")
		f, err := CompileExpression[func(string)]("s = a", []Variable{s}, "a")
		require.NoError(t, err)
		f("hello")
		require.EqualValues(t, "hello", s.Value)
		f("world")
		require.EqualValues(t, "world", s.Value)

		g, err := CompileExpression[func(string) string]("s = a", []Variable{s}, "a")
		require.NoError(t, err)
		require.EqualValues(t, "Hello world", g("Hello world"))
		require.EqualValues(t, "Hello world", s.Value)
	})
	t.Run("6", func(t *testing.T) {
		opts := &MethodOptions{SecurityAccess: AllowMathMethods}
		f, err := CompileExpressionWithOptions[func(float64) float64](opts, "Abs(x)", nil, "x")
		require.NoError(t, err)
		require.EqualValues(t, 3.5, f(-3.5))

		_, err = CompileExpressionWithOptions[func(point) float64](opts, "p.Len()", nil, "p")
		var e *SecurityError
		require.True(t, errors.As(err, &e))
		require.EqualValues(t, "Len", e.Name)
	})
	t.Run("unknown name", func(t *testing.T) {
		_, err := CompileExpression[func() int]("x", nil)
		var e *CompileError
		require.True(t, errors.As(err, &e))
		require.Contains(t, e.Error(), "unknown name x")
	})
	t.Run("wrong result type", func(t *testing.T) {
		_, err := CompileExpression[func() int]("'abc'", nil)
		var e *CompileError
		require.True(t, errors.As(err, &e))
		t.Logf("expected error: %v", err)
	})
	t.Run("library with integers", func(t *testing.T) {
		f, err := CompileExpression[func() float64]("Pow(2, 10)", nil)
		require.NoError(t, err)
		require.EqualValues(t, 1024, f())
	})
	t.Run("numeric conversion", func(t *testing.T) {
		f, err := CompileExpression[func(int) float64]("x + 1", nil, "x")
		require.NoError(t, err)
		require.EqualValues(t, 3.0, f(2))
		g, err := CompileExpression[func(int64) int8]("x * 2", nil, "x")
		require.NoError(t, err)
		require.EqualValues(t, int8(-6), g(-3))
	})
	t.Run("float to integer", func(t *testing.T) {
		var e *CompileError
		_, err := CompileExpression[func(float64) int]("x * 2", nil, "x")
		require.True(t, errors.As(err, &e))
		_, err = CompileExpression[func() int]("1.9", nil)
		require.True(t, errors.As(err, &e))
		_, err = CompileExpression[func() uint]("7 / 7", nil)
		require.True(t, errors.As(err, &e))
		t.Logf("expected error: %v", err)
	})
	t.Run("constant out of range", func(t *testing.T) {
		var e *CompileError
		_, err := CompileExpression[func() uint8]("300", nil)
		require.True(t, errors.As(err, &e))
		require.Contains(t, err.Error(), "overflows uint8")
		f, err := CompileExpression[func() uint8]("255", nil)
		require.NoError(t, err)
		require.EqualValues(t, 255, f())
	})
	t.Run("value out of range", func(t *testing.T) {
		f, err := CompileExpression[func(int) (uint, error)]("x", nil, "x")
		require.NoError(t, err)
		ret, err := f(5)
		require.NoError(t, err)
		require.EqualValues(t, 5, ret)
		_, err = f(-1)
		require.Error(t, err)

		g, err := CompileExpression[func(int) (int8, error)]("x + 1", nil, "x")
		require.NoError(t, err)
		ret8, err := g(126)
		require.NoError(t, err)
		require.EqualValues(t, 127, ret8)
		_, err = g(127)
		require.Error(t, err)

		h, err := CompileExpression[func(int) uint8]("x", nil, "x")
		require.NoError(t, err)
		require.Panics(t, func() {
			h(300)
		})
	})
	t.Run("dynamic value to integer", func(t *testing.T) {
		d := MustNewProperty[any](&PropertyOptions{IsDynamic: true}, "d", 2.0)
		f, err := CompileExpression[func() (int, error)]("d", []Variable{d})
		require.NoError(t, err)
		ret, err := f()
		require.NoError(t, err)
		require.EqualValues(t, 2, ret)
		d.Value = 2.5
		_, err = f()
		require.Error(t, err)
		d.Value = math.Inf(1)
		_, err = f()
		require.Error(t, err)
	})
	t.Run("all diagnostics", func(t *testing.T) {
		m1 := MustNewMethod[func() int](nil, "nope1")
		m2 := MustNewMethod[func() int](nil, "nope2")
		_, err := CompileExpressions(nil, m1, m2)
		var e *CompileError
		require.True(t, errors.As(err, &e))
		require.EqualValues(t, 2, len(e.Diagnostics))
		require.Contains(t, e.Diagnostics[0].Error(), "nope1")
		require.Contains(t, e.Diagnostics[1].Error(), "nope2")
	})
	t.Run("members", func(t *testing.T) {
		f, err := CompileExpression[func(point) float64]("p.X + p.Y", nil, "p")
		require.NoError(t, err)
		require.EqualValues(t, 7, f(point{X: 3, Y: 4}))
		g, err := CompileExpression[func(point) float64]("p.Len()", nil, "p")
		require.NoError(t, err)
		require.EqualValues(t, 5, g(point{X: 3, Y: 4}))
	})
	t.Run("single expression", func(t *testing.T) {
		_, err := CompileExpression[func() int]("1; 2", nil)
		var e *ParseError
		require.True(t, errors.As(err, &e))
		_, err = CompileExpression[func() int]("let a = 1; a", nil)
		require.True(t, errors.As(err, &e))
	})
	t.Run("error result", func(t *testing.T) {
		f, err := CompileExpression[func(float64) (float64, error)]("Abs(x)", nil, "x")
		require.NoError(t, err)
		ret, err := f(-2)
		require.NoError(t, err)
		require.EqualValues(t, 2, ret)
	})
}

func TestArguments(t *testing.T) {
	t.Run("not a function", func(t *testing.T) {
		_, err := NewMethod[int](nil, "1")
		var e *ArgumentError
		require.True(t, errors.As(err, &e))
	})
	t.Run("variadic", func(t *testing.T) {
		_, err := NewMethod[func(...int) int](nil, "1", "a")
		var e *ArgumentError
		require.True(t, errors.As(err, &e))
	})
	t.Run("second result", func(t *testing.T) {
		_, err := NewMethod[func() (int, int)](nil, "1")
		var e *ArgumentError
		require.True(t, errors.As(err, &e))
	})
	t.Run("parameter names", func(t *testing.T) {
		var e *ArgumentError
		_, err := NewMethod[func(int, int) int](nil, "a", "a", "a")
		require.True(t, errors.As(err, &e))
		_, err = NewMethod[func(int) int](nil, "a", "1a")
		require.True(t, errors.As(err, &e))
		_, err = NewMethod[func(int) int](nil, "a", "true")
		require.True(t, errors.As(err, &e))
		_, err = NewNamedMethod[func() int]("my method", nil, "1")
		require.True(t, errors.As(err, &e))
	})
	t.Run("dynamic", func(t *testing.T) {
		var e *ArgumentError
		_, err := NewMethod[func(int) int](&MethodOptions{
			SecurityAccess:   AllowAll,
			ParameterOptions: map[string]ParameterOptions{"a": {IsDynamic: true}},
		}, "a", "a")
		require.True(t, errors.As(err, &e))
		_, err = NewMethod[func() int](&MethodOptions{ReturnsDynamic: true}, "1")
		require.True(t, errors.As(err, &e))
		_, err = NewMethod[func(any) any](&MethodOptions{
			ParameterOptions: map[string]ParameterOptions{"b": {IsDynamic: true}},
		}, "a", "a")
		require.True(t, errors.As(err, &e))
		_, err = NewProperty[int](&PropertyOptions{IsDynamic: true}, "p")
		require.True(t, errors.As(err, &e))
		_, err = NewField[string](&FieldOptions{IsDynamic: true}, "f")
		require.True(t, errors.As(err, &e))
	})
	t.Run("variables", func(t *testing.T) {
		var e *ArgumentError
		_, err := NewProperty[int](nil, "")
		require.True(t, errors.As(err, &e))
		_, err = NewProperty[int](nil, "p", 1, 2)
		require.True(t, errors.As(err, &e))
		_, err = NewField[int](nil, "f", "1", "2")
		require.True(t, errors.As(err, &e))
		require.Panics(t, func() {
			MustNewField[int](nil, "nil")
		})
	})
	t.Run("compiled once", func(t *testing.T) {
		m := MustNewMethod[func() int](nil, "1")
		_, err := Compile(nil, m)
		require.NoError(t, err)
		_, err = Compile(nil, m)
		var e *ArgumentError
		require.True(t, errors.As(err, &e))
	})
	t.Run("nil descriptors", func(t *testing.T) {
		var e *ArgumentError
		_, err := Compile(nil, nil)
		require.True(t, errors.As(err, &e))
		_, err = Compile([]Variable{nil})
		require.True(t, errors.As(err, &e))
	})
	t.Run("method descriptor", func(t *testing.T) {
		m, err := NewNamedMethod[func(int, string) (bool, error)]("check", nil, "len(s) == n", "n", "s")
		require.NoError(t, err)
		require.EqualValues(t, "check", m.Name())
		require.EqualValues(t, "len(s) == n", m.Expression())
		require.EqualValues(t, reflect.TypeOf(true), m.ReturnType())
		require.False(t, m.ReturnsDynamic())
		params := m.Parameters()
		require.EqualValues(t, 2, len(params))
		require.EqualValues(t, "s", params[1].Name)
		require.EqualValues(t, reflect.TypeOf(""), params[1].Type)
	})
}

func TestSecurity(t *testing.T) {
	expressions := []string{"1 + 2", "Abs(-3)", "p.X", "p.Len()"}
	accesses := []SecurityAccess{
		None,
		AllowMathMethods,
		AllowMemberAccess,
		AllowMemberInvokation,
		AllowMemberAccess | AllowMemberInvokation,
		AllowMathMethods | AllowMemberAccess | AllowMemberInvokation,
		AllowAll,
	}
	allowed := map[SecurityAccess][]bool{
		None:                  {true, false, false, false},
		AllowMathMethods:      {true, true, false, false},
		AllowMemberAccess:     {true, false, true, false},
		AllowMemberInvokation: {true, false, false, false},
		AllowMemberAccess | AllowMemberInvokation:                    {true, false, true, true},
		AllowMathMethods | AllowMemberAccess | AllowMemberInvokation: {true, true, true, true},
		AllowAll: {true, true, true, true},
	}
	for _, access := range accesses {
		for i, expr := range expressions {
			t.Run(fmt.Sprintf("%s: %s", access, expr), func(t *testing.T) {
				opts := &MethodOptions{SecurityAccess: access}
				f, err := CompileExpressionWithOptions[func(point) float64](opts, expr, nil, "p")
				if allowed[access][i] {
					require.NoError(t, err)
					require.NotPanics(t, func() {
						f(point{X: 3, Y: 4})
					})
					return
				}
				var se *SecurityError
				require.True(t, errors.As(err, &se))
				var pe *ParseError
				require.True(t, errors.As(err, &pe))
			})
		}
	}
	t.Run("bare parameter", func(t *testing.T) {
		f, err := CompileExpressionWithOptions[func(int) int](&MethodOptions{}, "x", nil, "x")
		require.NoError(t, err)
		require.EqualValues(t, 5, f(5))
	})
	t.Run("element access", func(t *testing.T) {
		f, err := CompileExpressionWithOptions[func([]int) int](&MethodOptions{}, "a[1]", nil, "a")
		require.NoError(t, err)
		require.EqualValues(t, 20, f([]int{10, 20}))
		_, err = CompileExpressionWithOptions[func(point) float64](&MethodOptions{}, "[p][0].X", nil, "p")
		var se *SecurityError
		require.True(t, errors.As(err, &se))
		require.EqualValues(t, "X", se.Name)
	})
	t.Run("field initializer", func(t *testing.T) {
		_, err := NewField[float64](&FieldOptions{SecurityAccess: None}, "f", "Sqrt(2)")
		var se *SecurityError
		require.True(t, errors.As(err, &se))
		require.EqualValues(t, "Sqrt", se.Name)
		_, err = NewField[float64](&FieldOptions{SecurityAccess: AllowMathMethods}, "f", "Sqrt(2)")
		require.NoError(t, err)
	})
	t.Run("builtin", func(t *testing.T) {
		opts := &MethodOptions{SecurityAccess: AllowMathMethods}
		_, err := CompileExpressionWithOptions[func(string) int](opts, "len(s)", nil, "s")
		var se *SecurityError
		require.True(t, errors.As(err, &se))
	})
}

func TestVariables(t *testing.T) {
	t.Run("shared", func(t *testing.T) {
		counter := MustNewProperty[int](nil, "counter")
		inc1, err := CompileExpression[func() int]("counter = counter + 1", []Variable{counter})
		require.NoError(t, err)
		inc2, err := CompileExpression[func() int]("counter = counter + 10", []Variable{counter})
		require.NoError(t, err)
		require.EqualValues(t, 1, inc1())
		require.EqualValues(t, 11, inc2())
		require.EqualValues(t, 11, counter.Value)
		counter.Value = 100
		require.EqualValues(t, 101, inc1())
	})
	t.Run("independent batches", func(t *testing.T) {
		v1 := MustNewProperty[int](nil, "v")
		set, err := CompileExpression[func(int)]("v = x", []Variable{v1}, "x")
		require.NoError(t, err)
		v2 := MustNewProperty[int](nil, "v")
		get, err := CompileExpression[func() int]("v", []Variable{v2})
		require.NoError(t, err)
		set(7)
		require.EqualValues(t, 7, v1.Value)
		require.EqualValues(t, 0, get())
	})
	t.Run("shared in one batch", func(t *testing.T) {
		v := MustNewProperty[int](nil, "v")
		set := MustNewMethod[func(int)](nil, "v = x", "x")
		get := MustNewMethod[func() int](nil, "v")
		fns, err := CompileExpressions([]Variable{v}, set, get)
		require.NoError(t, err)
		fns[0].(func(int))(9)
		require.EqualValues(t, 9, fns[1].(func() int)())
		require.EqualValues(t, 9, v.Value)

		fresh := MustNewProperty[int](nil, "v")
		fns, err = CompileExpressions([]Variable{fresh}, MustNewMethod[func() int](nil, "v"))
		require.NoError(t, err)
		require.EqualValues(t, 0, fns[0].(func() int)())
	})
	t.Run("chained assignment", func(t *testing.T) {
		a := MustNewProperty[int](nil, "a")
		b := MustNewProperty[int](nil, "b")
		f, err := CompileExpression[func(int)]("a = b = x + 1", []Variable{a, b}, "x")
		require.NoError(t, err)
		f(4)
		require.EqualValues(t, 5, a.Value)
		require.EqualValues(t, 5, b.Value)
	})
	t.Run("parameter shadows variable", func(t *testing.T) {
		x := MustNewProperty[int](nil, "x", 100)
		f, err := CompileExpression[func(int) int]("x * 2", []Variable{x}, "x")
		require.NoError(t, err)
		require.EqualValues(t, 6, f(3))
	})
	t.Run("assign to parameter", func(t *testing.T) {
		_, err := CompileExpression[func(int)]("x = 1", nil, "x")
		var e *CompileError
		require.True(t, errors.As(err, &e))
	})
	t.Run("assign to unknown", func(t *testing.T) {
		_, err := CompileExpression[func()]("y = 1", nil)
		var e *CompileError
		require.True(t, errors.As(err, &e))
		require.Contains(t, err.Error(), "cannot assign to 'y'")
	})
	t.Run("assignment type", func(t *testing.T) {
		s := MustNewProperty[string](nil, "s")
		_, err := CompileExpression[func()]("s = 1", []Variable{s})
		var e *CompileError
		require.True(t, errors.As(err, &e))
		require.NotContains(t, err.Error(), "_set_s_0")
		t.Logf("expected error: %v", err)
	})
	t.Run("field", func(t *testing.T) {
		n := MustNewField[float64](nil, "n", "1 + 2")
		require.EqualValues(t, "1 + 2", n.Initializer())
		for i := 0; i < 3; i++ {
			f, err := CompileExpression[func() float64]("n = n + 1", []Variable{n})
			require.NoError(t, err)
			require.EqualValues(t, 4, f())
			require.EqualValues(t, 5, f())
		}
	})
	t.Run("field without initializer", func(t *testing.T) {
		n := MustNewField[string](nil, "name")
		f, err := CompileExpression[func() string]("name", []Variable{n})
		require.NoError(t, err)
		require.EqualValues(t, "", f())
	})
	t.Run("field initializer is not an assignment", func(t *testing.T) {
		_, err := NewField[int](nil, "f", "g = 1")
		var e *ParseError
		require.True(t, errors.As(err, &e))
	})
	t.Run("field initializer type", func(t *testing.T) {
		n := MustNewField[int](nil, "n", "'abc'")
		_, err := CompileExpression[func() int]("n", []Variable{n})
		var e *CompileError
		require.True(t, errors.As(err, &e))
		require.Contains(t, err.Error(), "initializer of 'n'")
	})
	t.Run("fields and methods in one unit", func(t *testing.T) {
		cnt := MustNewField[int](nil, "cnt", "10")
		add := MustNewMethod[func(int) int](nil, "cnt = cnt + x", "x")
		get := MustNewMethod[func() int](nil, "cnt")
		fns, err := CompileExpressions([]Variable{cnt}, add, get)
		require.NoError(t, err)
		require.EqualValues(t, 2, len(fns))
		require.EqualValues(t, 15, fns[0].(func(int) int)(5))
		require.EqualValues(t, 15, fns[1].(func() int)())
	})
	t.Run("initializer sees earlier fields", func(t *testing.T) {
		a := MustNewField[int](nil, "a", "2")
		b := MustNewField[int](nil, "b", "a * 10")
		f, err := CompileExpression[func() int]("a + b", []Variable{a, b})
		require.NoError(t, err)
		require.EqualValues(t, 22, f())
	})
	t.Run("duplicate variable", func(t *testing.T) {
		a1 := MustNewProperty[int](nil, "a")
		a2 := MustNewField[int](nil, "a")
		_, err := CompileExpression[func() int]("a", []Variable{a1, a2})
		var e *CompileError
		require.True(t, errors.As(err, &e))
	})
	t.Run("duplicate method", func(t *testing.T) {
		m1, err := NewNamedMethod[func() int]("f", nil, "1")
		require.NoError(t, err)
		m2, err := NewNamedMethod[func() int]("f", nil, "2")
		require.NoError(t, err)
		_, err = Compile(nil, m1, m2)
		var e *CompileError
		require.True(t, errors.As(err, &e))
	})
}

func TestDynamic(t *testing.T) {
	t.Run("property", func(t *testing.T) {
		d := MustNewProperty[any](&PropertyOptions{IsDynamic: true}, "d", point{X: 3, Y: 4})
		f, err := CompileExpression[func() float64]("d.X + d.Y", []Variable{d})
		require.NoError(t, err)
		require.EqualValues(t, 7, f())
		d.Value = map[string]any{"X": 1.0, "Y": 2.0}
		require.EqualValues(t, 3, f())
	})
	t.Run("static any", func(t *testing.T) {
		s := MustNewProperty[any](nil, "s", point{X: 3, Y: 4})
		_, err := CompileExpression[func() float64]("s.X", []Variable{s})
		var e *CompileError
		require.True(t, errors.As(err, &e))
		t.Logf("expected error: %v", err)

		f, err := CompileExpression[func() any]("s", []Variable{s})
		require.NoError(t, err)
		require.EqualValues(t, point{X: 3, Y: 4}, f())
	})
	t.Run("field", func(t *testing.T) {
		v := MustNewField[any](&FieldOptions{IsDynamic: true, SecurityAccess: AllowAll}, "v", "'abc'")
		f, err := CompileExpression[func() any]("v = v + 'def'", []Variable{v})
		require.NoError(t, err)
		require.EqualValues(t, "abcdef", f())
		g, err := CompileExpression[func() string]("TypeOf(v)", []Variable{v})
		require.NoError(t, err)
		require.EqualValues(t, "string", g())
	})
	t.Run("parameter", func(t *testing.T) {
		opts := DefaultMethodOptions()
		opts.ReturnsDynamic = true
		opts.DefaultParameterOptions = ParameterOptions{IsDynamic: true}
		f, err := CompileExpressionWithOptions[func(any) any](opts, "p.Len()", nil, "p")
		require.NoError(t, err)
		require.EqualValues(t, 5, f(point{X: 3, Y: 4}))
	})
	t.Run("static parameter", func(t *testing.T) {
		_, err := CompileExpression[func(any) any]("p.X", nil, "p")
		var e *CompileError
		require.True(t, errors.As(err, &e))
	})
	t.Run("runtime error", func(t *testing.T) {
		d := MustNewProperty[any](&PropertyOptions{IsDynamic: true}, "d", point{})
		f, err := CompileExpression[func() (any, error)]("d.Z", []Variable{d})
		require.NoError(t, err)
		_, err = f()
		require.Error(t, err)
		g, err := CompileExpression[func() any]("d.Z", []Variable{d})
		require.NoError(t, err)
		require.Panics(t, func() {
			g()
		})
	})
}

func TestForceNumericDouble(t *testing.T) {
	t.Run("1", func(t *testing.T) {
		f, err := CompileExpression[func() any]("1 + 2", nil)
		require.NoError(t, err)
		require.EqualValues(t, reflect.TypeOf(0), reflect.TypeOf(f()))
	})
	t.Run("2", func(t *testing.T) {
		opts := DefaultMethodOptions()
		opts.ForceNumericDouble = true
		f, err := CompileExpressionWithOptions[func() any](opts, "1 + 2", nil)
		require.NoError(t, err)
		require.EqualValues(t, 3.0, f())
	})
	t.Run("field", func(t *testing.T) {
		v := MustNewField[any](&FieldOptions{SecurityAccess: AllowAll, ForceNumericDouble: true}, "v", "2")
		f, err := CompileExpression[func() any]("v", []Variable{v})
		require.NoError(t, err)
		require.EqualValues(t, 2.0, f())
	})
}

func TestAssembly(t *testing.T) {
	build := func(expr string) *Assembly {
		x := MustNewProperty[int](nil, "x")
		y := MustNewField[float64](nil, "y", "0.5")
		m, err := NewNamedMethod[func(int) float64]("f", nil, expr, "a")
		require.NoError(t, err)
		asm, err := Compile([]Variable{x, y}, m)
		require.NoError(t, err)
		return asm
	}
	t.Run("fingerprint", func(t *testing.T) {
		asm1 := build("a + x + y")
		asm2 := build("a + x + y")
		asm3 := build("a - x - y")
		require.EqualValues(t, asm1.Fingerprint(), asm2.Fingerprint())
		require.NotEqualValues(t, asm1.Fingerprint(), asm3.Fingerprint())
		require.EqualValues(t, 64, len(asm1.FingerprintString()))
		t.Logf("listing:\n%s", asm1.Listing())
	})
	t.Run("delegates", func(t *testing.T) {
		asm := build("a + y")
		require.EqualValues(t, 1, asm.NumMethods())
		d, ok := asm.Delegate("f")
		require.True(t, ok)
		require.EqualValues(t, 1.5, d.(func(int) float64)(1))
		_, ok = asm.Delegate("g")
		require.False(t, ok)
		code, err := asm.Disassemble("f")
		require.NoError(t, err)
		t.Logf("program:\n%s", code)
	})
	t.Run("references", func(t *testing.T) {
		refs := build("a").References()
		require.True(t, refs.Contains(reflect.TypeOf(0)))
		require.True(t, refs.Contains(reflect.TypeOf(0.0)))
		require.True(t, refs.Contains(anyType))
		require.False(t, refs.Dynamic)
		t.Logf("references: %s", refs)

		d := MustNewProperty[any](&PropertyOptions{IsDynamic: true}, "d")
		asm, err := Compile([]Variable{d}, MustNewMethod[func() any](nil, "d"))
		require.NoError(t, err)
		require.True(t, asm.References().Dynamic)
	})
}

func TestPrime(t *testing.T) {
	SetLogger(testutil.NewSimpleLogger(true))
	defer SetLogger(nil)
	Prime()
	require.True(t, IsPrimed())
	require.NotPanics(t, Prime)
}
