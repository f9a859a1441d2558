// Package calc is an interactive calculator session over the expression compiler.
// Every input line is compiled into a function and evaluated. 'name = expr' stores
// the result in a shared variable visible to the following lines
package calc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/gammazero/deque"
	"github.com/lunfardo314/easyexpr"
	"github.com/lunfardo314/easyexpr/library"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type Config struct {
	// Dynamic makes values and results of the session dynamic. T must be any
	Dynamic        bool
	SecurityAccess easyexpr.SecurityAccess
	// HistorySize is the number of remembered input lines
	HistorySize int
	Prompt      string
}

func DefaultConfig() Config {
	return Config{
		SecurityAccess: easyexpr.AllowMathMethods,
		HistorySize:    100,
		Prompt:         "> ",
	}
}

type Calc[T any] struct {
	cfg           Config
	log           *zap.SugaredLogger
	methodOptions *easyexpr.MethodOptions
	variables     []*easyexpr.Property[T]
	history       *deque.Deque[string]
	commands      map[string]func(out io.Writer) bool
	numEvaluated  atomic.Uint64
	numFailed     atomic.Uint64
}

var assignmentRegex = regexp.MustCompile(`^\s*([a-zA-Z_][a-zA-Z_0-9]*)\s*=([^=].*|)$`)

// New creates a session and primes the compiler
func New[T any](cfg Config, log *zap.SugaredLogger) *Calc[T] {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ret := &Calc[T]{
		cfg:     cfg,
		log:     log,
		history: new(deque.Deque[string]),
		methodOptions: &easyexpr.MethodOptions{
			ReturnsDynamic:     cfg.Dynamic,
			SecurityAccess:     cfg.SecurityAccess,
			ForceNumericDouble: !isInteger[T](),
			DefaultParameterOptions: easyexpr.ParameterOptions{
				IsDynamic: cfg.Dynamic,
			},
		},
	}
	ret.commands = map[string]func(io.Writer) bool{
		"help":    ret.help,
		"show":    ret.show,
		"clear":   ret.clear,
		"history": ret.printHistory,
		"exit":    exit,
		"quit":    exit,
	}
	log.Infof("initializing..")
	easyexpr.Prime()
	log.Infof("initializing.. done")
	return ret
}

// Run reads lines from in until end of input or until exit command
func (c *Calc[T]) Run(in io.Reader, out, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, c.cfg.Prompt)
		if !scanner.Scan() {
			break
		}
		if !c.Execute(scanner.Text(), out, errOut) {
			break
		}
	}
	c.log.Debugf("session finished. Evaluated: %d, failed: %d", c.numEvaluated.Load(), c.numFailed.Load())
	return scanner.Err()
}

// Execute runs one input line. Returns false when the session must stop
func (c *Calc[T]) Execute(line string, out, errOut io.Writer) bool {
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return true
	}
	c.remember(line)
	if cmd, ok := c.commands[strings.ToLower(line)]; ok {
		return cmd(out)
	}
	result, assigned, err := c.Eval(line)
	if err != nil {
		c.numFailed.Inc()
		fmt.Fprintln(errOut, describeError(err))
		return true
	}
	if assigned && isDeletion(line) {
		return true
	}
	fmt.Fprintln(out, result)
	return true
}

// Eval compiles and evaluates the line. For 'name = expr' the result is stored in the
// variable, which is created when needed. 'name =' deletes the variable
func (c *Calc[T]) Eval(line string) (T, bool, error) {
	var zero T
	expression := line
	var assignTo string
	if m := assignmentRegex.FindStringSubmatch(line); m != nil {
		assignTo = m[1]
		expression = strings.TrimSpace(m[2])
		if len(expression) == 0 {
			c.delete(assignTo)
			return zero, true, nil
		}
	}
	vars := make([]easyexpr.Variable, len(c.variables))
	for i, v := range c.variables {
		vars[i] = v
	}
	f, err := easyexpr.CompileExpressionWithOptions[func() (T, error)](c.methodOptions, expression, vars)
	if err != nil {
		return zero, false, err
	}
	c.numEvaluated.Inc()
	result, err := f()
	if err != nil {
		return zero, false, &RuntimeError{err: err}
	}
	if assignTo == "" {
		return result, false, nil
	}
	if v := c.variable(assignTo); v != nil {
		v.Value = result
		return result, true, nil
	}
	v, err := easyexpr.NewProperty[T](&easyexpr.PropertyOptions{IsDynamic: c.cfg.Dynamic}, assignTo, result)
	if err != nil {
		return zero, false, err
	}
	c.variables = append(c.variables, v)
	c.log.Debugf("new variable '%s'", assignTo)
	return result, true, nil
}

// Variables returns values of session variables by name
func (c *Calc[T]) Variables() map[string]T {
	ret := make(map[string]T, len(c.variables))
	for _, v := range c.variables {
		ret[v.Name()] = v.Value
	}
	return ret
}

// History returns remembered input lines, oldest first
func (c *Calc[T]) History() []string {
	ret := make([]string, c.history.Len())
	for i := range ret {
		ret[i] = c.history.At(i)
	}
	return ret
}

func (c *Calc[T]) remember(line string) {
	if c.cfg.HistorySize <= 0 {
		return
	}
	c.history.PushBack(line)
	for c.history.Len() > c.cfg.HistorySize {
		c.history.PopFront()
	}
}

func (c *Calc[T]) variable(name string) *easyexpr.Property[T] {
	for _, v := range c.variables {
		if v.Name() == name {
			return v
		}
	}
	return nil
}

func (c *Calc[T]) delete(name string) {
	for i, v := range c.variables {
		if v.Name() == name {
			c.variables = append(c.variables[:i], c.variables[i+1:]...)
			return
		}
	}
}

func (c *Calc[T]) help(out io.Writer) bool {
	fmt.Fprint(out, `Available commands:
    help      : this text
    show      : list of current variables
    clear     : delete all variables
    history   : list of previous input lines
    exit/quit : exit the program
Assign 'name = expression' to create or update a variable, 'name =' deletes it.
Math functions:
`)
	fmt.Fprint(out, library.PrintNames(5))
	return true
}

func (c *Calc[T]) show(out io.Writer) bool {
	names := make([]string, 0, len(c.variables))
	for _, v := range c.variables {
		names = append(names, v.Name())
	}
	sort.Strings(names)
	for _, n := range names {
		v := c.variable(n)
		fmt.Fprintf(out, "%-20s%-20T= %v\n", n, v.Value, v.Value)
	}
	return true
}

func (c *Calc[T]) clear(_ io.Writer) bool {
	c.variables = nil
	return true
}

func (c *Calc[T]) printHistory(out io.Writer) bool {
	for i, line := range c.History() {
		fmt.Fprintf(out, "%4d  %s\n", i+1, line)
	}
	return true
}

// isInteger is true for integer sessions. Their literals stay integers
func isInteger[T any]() bool {
	switch reflect.TypeOf((*T)(nil)).Elem().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func exit(_ io.Writer) bool {
	return false
}

func isDeletion(line string) bool {
	m := assignmentRegex.FindStringSubmatch(line)
	return m != nil && len(strings.TrimSpace(m[2])) == 0
}

// RuntimeError is an error raised while evaluating a compiled line
type RuntimeError struct {
	err error
}

func (e *RuntimeError) Error() string {
	return e.err.Error()
}

func (e *RuntimeError) Unwrap() error {
	return e.err
}

func describeError(err error) string {
	var (
		securityError *easyexpr.SecurityError
		parseError    *easyexpr.ParseError
		compileError  *easyexpr.CompileError
		argumentError *easyexpr.ArgumentError
		runtimeError  *RuntimeError
	)
	switch {
	case errors.As(err, &securityError):
		return "Security error: " + err.Error()
	case errors.As(err, &parseError):
		return "Parse error: " + err.Error()
	case errors.As(err, &compileError):
		return "Compile error: " + err.Error()
	case errors.As(err, &argumentError):
		return "Argument error: " + err.Error()
	case errors.As(err, &runtimeError):
		return "Runtime error: " + err.Error()
	}
	return "Error: " + err.Error()
}
