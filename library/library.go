package library

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/expr-lang/expr/builtin"
)

// EvalFunction evaluates a library function over already converted arguments
type EvalFunction func(args []float64) float64

type funDescriptor struct {
	sym               string
	requiredNumParams int
	evalFun           EvalFunction
	fun               *builtin.Function
}

type libraryData struct {
	funByName map[string]*funDescriptor
	names     []string
}

var (
	theLibrary = &libraryData{
		funByName: make(map[string]*funDescriptor),
	}
	numUnary    int
	numBinary   int
	numVariadic int
)

var (
	unaryType    = reflect.TypeOf((func(float64) float64)(nil))
	binaryType   = reflect.TypeOf((func(float64, float64) float64)(nil))
	ternaryType  = reflect.TypeOf((func(float64, float64, float64) float64)(nil))
	variadicType = reflect.TypeOf((func(float64, ...float64) float64)(nil))
)

func init() {
	// one argument
	EmbedUnary("Abs", math.Abs)
	EmbedUnary("Acos", math.Acos)
	EmbedUnary("Acosh", math.Acosh)
	EmbedUnary("Asin", math.Asin)
	EmbedUnary("Asinh", math.Asinh)
	EmbedUnary("Atan", math.Atan)
	EmbedUnary("Atanh", math.Atanh)
	EmbedUnary("Cbrt", math.Cbrt)
	EmbedUnary("Ceil", math.Ceil)
	EmbedUnary("Cos", math.Cos)
	EmbedUnary("Cosh", math.Cosh)
	EmbedUnary("Exp", math.Exp)
	EmbedUnary("Exp2", math.Exp2)
	EmbedUnary("Expm1", math.Expm1)
	EmbedUnary("Floor", math.Floor)
	EmbedUnary("Log", math.Log)
	EmbedUnary("Log10", math.Log10)
	EmbedUnary("Log1p", math.Log1p)
	EmbedUnary("Log2", math.Log2)
	EmbedUnary("Round", math.Round)
	EmbedUnary("RoundToEven", math.RoundToEven)
	EmbedUnary("Sign", sign)
	EmbedUnary("Sin", math.Sin)
	EmbedUnary("Sinh", math.Sinh)
	EmbedUnary("Sqrt", math.Sqrt)
	EmbedUnary("Tan", math.Tan)
	EmbedUnary("Tanh", math.Tanh)
	EmbedUnary("Trunc", math.Trunc)
	// two arguments
	EmbedBinary("Atan2", math.Atan2)
	EmbedBinary("Copysign", math.Copysign)
	EmbedBinary("Dim", math.Dim)
	EmbedBinary("Hypot", math.Hypot)
	EmbedBinary("Mod", math.Mod)
	EmbedBinary("Pow", math.Pow)
	EmbedBinary("Remainder", math.Remainder)
	// three arguments
	Embed("Clamp", 3, evalClamp)
	Embed("FMA", 3, func(a []float64) float64 { return math.FMA(a[0], a[1], a[2]) })
	// at least one argument
	Embed("Max", -1, evalMax)
	Embed("Min", -1, evalMin)
}

// Stats returns a short human-readable summary of the library
func Stats() string {
	return fmt.Sprintf(`easyexpr math library:
    number of unary functions: %d
    number of binary functions: %d
    number of other functions: %d
`, numUnary, numBinary, numVariadic)
}

func EmbedUnary(sym string, fun func(float64) float64) {
	Embed(sym, 1, func(a []float64) float64 { return fun(a[0]) })
}

func EmbedBinary(sym string, fun func(float64, float64) float64) {
	Embed(sym, 2, func(a []float64) float64 { return fun(a[0], a[1]) })
}

// Embed registers a function in the library. requiredNumPar == -1 means
// one or more arguments
func Embed(sym string, requiredNumPar int, evalFun EvalFunction) {
	mustUniqueName(sym)
	var typ reflect.Type
	switch requiredNumPar {
	case -1:
		typ = variadicType
		numVariadic++
	case 1:
		typ = unaryType
		numUnary++
	case 2:
		typ = binaryType
		numBinary++
	case 3:
		typ = ternaryType
		numVariadic++
	default:
		panic(fmt.Sprintf("unsupported number of parameters %d for '%s'", requiredNumPar, sym))
	}
	dscr := &funDescriptor{
		sym:               sym,
		requiredNumParams: requiredNumPar,
		evalFun:           evalFun,
	}
	dscr.fun = &builtin.Function{
		Name:  sym,
		Func:  dscr.call,
		Types: []reflect.Type{typ},
	}
	theLibrary.funByName[sym] = dscr
	theLibrary.names = append(theLibrary.names, sym)
	sort.Strings(theLibrary.names)
}

func mustUniqueName(sym string) {
	if _, found := theLibrary.funByName[sym]; found {
		panic(fmt.Errorf("repeating function name '%s'", sym))
	}
}

func (fd *funDescriptor) call(args ...any) (any, error) {
	if fd.requiredNumParams >= 0 && len(args) != fd.requiredNumParams {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", fd.sym, fd.requiredNumParams, len(args))
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: not enough arguments", fd.sym)
	}
	vals := make([]float64, len(args))
	for i, a := range args {
		v, err := ToFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fd.sym, i, err)
		}
		vals[i] = v
	}
	return fd.evalFun(vals), nil
}

// IsWhitelisted returns true if sym is a library function name
func IsWhitelisted(sym string) bool {
	_, found := theLibrary.funByName[sym]
	return found
}

// Names returns sorted library function names
func Names() []string {
	ret := make([]string, len(theLibrary.names))
	copy(ret, theLibrary.names)
	return ret
}

// Functions returns toolchain definitions of all library functions, sorted by name
func Functions() []*builtin.Function {
	ret := make([]*builtin.Function, 0, len(theLibrary.names))
	for _, sym := range theLibrary.names {
		ret = append(ret, theLibrary.funByName[sym].fun)
	}
	return ret
}

// Eval calls library function by name. Used by the calculator and in tests
func Eval(sym string, args ...any) (float64, error) {
	fd, found := theLibrary.funByName[sym]
	if !found {
		return 0, fmt.Errorf("unknown library function '%s'", sym)
	}
	ret, err := fd.call(args...)
	if err != nil {
		return 0, err
	}
	return ret.(float64), nil
}

// ToFloat64 converts any Go numeric value to float64
func ToFloat64(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return 0, fmt.Errorf("cannot use %s as a number", typeName(v))
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

func sign(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return x
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func evalClamp(a []float64) float64 {
	return math.Max(a[1], math.Min(a[0], a[2]))
}

func evalMax(a []float64) float64 {
	ret := a[0]
	for _, v := range a[1:] {
		ret = math.Max(ret, v)
	}
	return ret
}

func evalMin(a []float64) float64 {
	ret := a[0]
	for _, v := range a[1:] {
		ret = math.Min(ret, v)
	}
	return ret
}

// TypeOfFunction is the runtime-support function registered in units with dynamic slots.
// It reports the Go type of a value
func TypeOfFunction() *builtin.Function {
	return &builtin.Function{
		Name: "TypeOf",
		Func: func(args ...any) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("TypeOf: expected 1 argument, got %d", len(args))
			}
			return typeName(args[0]), nil
		},
		Types: []reflect.Type{reflect.TypeOf((func(any) string)(nil))},
	}
}

// PrintNames returns library names in columns. Used by the calculator's help
func PrintNames(perLine int) string {
	var b strings.Builder
	for i, n := range theLibrary.names {
		if i > 0 && i%perLine == 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("    %-12s", n))
	}
	b.WriteString("\n")
	return b.String()
}
