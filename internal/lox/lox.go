package lox

import (
	"fmt"
	"strconv"
	"time"
)

// returnSignal unwinds the interpreter out of a function body when a return
// statement runs. It travels through the error channel of the visitor
// methods and is caught by the function call that started the body.
type returnSignal struct {
	val interface{}
}

func newReturnSignal(val interface{}) *returnSignal {
	signal := new(returnSignal)
	signal.val = val
	return signal
}

func (signal *returnSignal) Error() string {
	return fmt.Sprintf("return %v", stringify(signal.val))
}

// breakSignal unwinds the interpreter out of the innermost enclosing loop
// when a break statement runs. The resolver guarantees break only appears
// inside a loop.
type breakSignal struct{}

func (signal *breakSignal) Error() string {
	return "break"
}

// Callable is implemented by Lox objects that can be called.
type Callable interface {
	Arity() int
	Call(interpreter *Interpreter, args []interface{}) (interface{}, error)
}

type nativeFnClock struct{}

func (fn *nativeFnClock) Arity() int {
	return 0
}

func (fn *nativeFnClock) Call(
	interpreter *Interpreter,
	args []interface{},
) (interface{}, error) {
	return time.Since(time.Unix(0, 0)).Seconds(), nil
}

func (fn *nativeFnClock) String() string {
	return "<native fn>"
}

// Function is a Lox function together with the environment that was active
// when its declaration ran.
type Function struct {
	name          string
	decl          *FunctionExpr
	closure       *Environment
	isInitializer bool
}

func NewFunction(
	name string,
	decl *FunctionExpr,
	closure *Environment,
	isInitializer bool,
) *Function {
	fn := new(Function)
	fn.name = name
	fn.decl = decl
	fn.closure = closure
	fn.isInitializer = isInitializer
	return fn
}

func (fn *Function) Arity() int {
	return len(fn.decl.Params)
}

// Call runs the function body in a fresh environment that encloses the
// function's closure. Every call gets its own environment, otherwise
// recursion would break since multiple calls to the same function can be in
// flight at the same time.
func (fn *Function) Call(
	interpreter *Interpreter,
	args []interface{},
) (interface{}, error) {
	env := NewEnvironment(fn.closure)
	for i, param := range fn.decl.Params {
		env.Define(param.Lexeme, args[i])
	}

	if err := interpreter.execBlock(fn.decl.Body, env); err != nil {
		signal, isReturn := err.(*returnSignal)
		if !isReturn {
			return nil, err
		}
		if fn.isInitializer {
			return fn.closure.GetAt(0, "this"), nil
		}
		return signal.val, nil
	}
	if fn.isInitializer {
		return fn.closure.GetAt(0, "this"), nil
	}
	return nil, nil
}

// bind returns a copy of the function whose closure has "this" bound to the
// given instance.
func (fn *Function) bind(instance *Instance) *Function {
	env := NewEnvironment(fn.closure)
	env.Define("this", instance)
	return NewFunction(fn.name, fn.decl, env, fn.isInitializer)
}

func (fn *Function) String() string {
	if fn.name == "" {
		return "<fn>"
	}
	return fmt.Sprintf("<fn %s>", fn.name)
}

// stringify renders a Lox value the way the print statement shows it.
// Numbers use the shortest decimal form without an exponent, so
// integer-valued numbers print without a fractional part.
func stringify(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// isTruthy follows Lox's truthiness rule, only nil and false are falsey.
func isTruthy(value interface{}) bool {
	if value == nil {
		return false
	}
	if v, ok := value.(bool); ok {
		return v
	}
	return true
}
