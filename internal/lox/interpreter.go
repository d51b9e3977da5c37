package lox

import (
	"fmt"
	"io"
)

// Interpreter evaluates the given Lox syntax tree. This struct implements
// ExprVisitor and StmtVisitor.
type Interpreter struct {
	globals     *Environment
	environment *Environment
	locals      map[Expr]int
	output      io.Writer
	reporter    Reporter
}

func NewInterpreter(output io.Writer, reporter Reporter) *Interpreter {
	interpreter := new(Interpreter)
	interpreter.globals = NewEnvironment(nil)
	interpreter.globals.Define("clock", &nativeFnClock{})
	interpreter.environment = interpreter.globals
	interpreter.locals = make(map[Expr]int)
	interpreter.output = output
	interpreter.reporter = reporter
	return interpreter
}

// Interpret executes all the given statements, stopping at the first runtime
// error.
func (in *Interpreter) Interpret(statements []Stmt) {
	for _, stmt := range statements {
		if _, err := in.exec(stmt); err != nil {
			in.reporter.Report(err)
			break
		}
	}
}

// resolve records how many environments separate the expression from the one
// declaring the variable it refers to. Expressions without an entry refer to
// globals.
func (in *Interpreter) resolve(expr Expr, depth int) {
	in.locals[expr] = depth
}

func (in *Interpreter) VisitBlockStmt(stmt *BlockStmt) (interface{}, error) {
	return nil, in.execBlock(stmt.Stmts, NewEnvironment(in.environment))
}

func (in *Interpreter) VisitBreakStmt(stmt *BreakStmt) (interface{}, error) {
	return nil, &breakSignal{}
}

func (in *Interpreter) VisitClassStmt(stmt *ClassStmt) (interface{}, error) {
	var superclass *Class
	if stmt.Superclass != nil {
		superVal, err := in.eval(stmt.Superclass)
		if err != nil {
			return nil, err
		}
		var isClass bool
		superclass, isClass = superVal.(*Class)
		if !isClass {
			return nil, NewRuntimeError(
				stmt.Superclass.Name, "Superclass must be a class.",
			)
		}
	}

	in.environment.Define(stmt.Name.Lexeme, nil)

	env := in.environment
	if stmt.Superclass != nil {
		env = NewEnvironment(env)
		env.Define("super", superclass)
	}

	methods := make(map[string]*Function)
	staticMethods := make(map[string]*Function)
	for _, method := range stmt.Methods {
		name := method.Name.Lexeme
		if method.IsClass {
			staticMethods[name] = NewFunction(name, method.Function, env, false)
		} else {
			isInit := name == "init"
			methods[name] = NewFunction(name, method.Function, env, isInit)
		}
	}

	class := NewClass(stmt.Name.Lexeme, superclass, methods, staticMethods)
	return nil, in.environment.Assign(stmt.Name, class)
}

func (in *Interpreter) VisitExprStmt(stmt *ExprStmt) (interface{}, error) {
	_, err := in.eval(stmt.Expr)
	return nil, err
}

func (in *Interpreter) VisitFunctionStmt(stmt *FunctionStmt) (interface{}, error) {
	fn := NewFunction(stmt.Name.Lexeme, stmt.Function, in.environment, false)
	in.environment.Define(stmt.Name.Lexeme, fn)
	return nil, nil
}

func (in *Interpreter) VisitIfStmt(stmt *IfStmt) (interface{}, error) {
	cond, err := in.eval(stmt.Cond)
	if err != nil {
		return nil, err
	}
	if isTruthy(cond) {
		return in.exec(stmt.ThenBranch)
	}
	if stmt.ElseBranch != nil {
		return in.exec(stmt.ElseBranch)
	}
	return nil, nil
}

func (in *Interpreter) VisitMethodStmt(stmt *MethodStmt) (interface{}, error) {
	// Methods are executed through their class declaration.
	return nil, nil
}

func (in *Interpreter) VisitPrintStmt(stmt *PrintStmt) (interface{}, error) {
	val, err := in.eval(stmt.Expr)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(in.output, stringify(val))
	return nil, nil
}

func (in *Interpreter) VisitReturnStmt(stmt *ReturnStmt) (interface{}, error) {
	var val interface{}
	if stmt.Val != nil {
		var err error
		val, err = in.eval(stmt.Val)
		if err != nil {
			return nil, err
		}
	}
	return nil, newReturnSignal(val)
}

func (in *Interpreter) VisitVarStmt(stmt *VarStmt) (interface{}, error) {
	var initVal interface{}
	if stmt.Init != nil {
		var err error
		initVal, err = in.eval(stmt.Init)
		if err != nil {
			return nil, err
		}
	}
	in.environment.Define(stmt.Name.Lexeme, initVal)
	return nil, nil
}

func (in *Interpreter) VisitWhileStmt(stmt *WhileStmt) (interface{}, error) {
	for {
		cond, err := in.eval(stmt.Cond)
		if err != nil {
			return nil, err
		}
		if !isTruthy(cond) {
			return nil, nil
		}
		if _, err := in.exec(stmt.Body); err != nil {
			if _, isBreak := err.(*breakSignal); isBreak {
				return nil, nil
			}
			return nil, err
		}
	}
}

func (in *Interpreter) VisitAssignExpr(expr *AssignExpr) (interface{}, error) {
	val, err := in.eval(expr.Val)
	if err != nil {
		return nil, err
	}
	if distance, isLocal := in.locals[expr]; isLocal {
		in.environment.AssignAt(distance, expr.Name, val)
		return val, nil
	}
	if err := in.globals.Assign(expr.Name, val); err != nil {
		return nil, err
	}
	return val, nil
}

func (in *Interpreter) VisitBinaryExpr(expr *BinaryExpr) (interface{}, error) {
	lhs, err := in.eval(expr.Lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := in.eval(expr.Rhs)
	if err != nil {
		return nil, err
	}

	switch expr.Op.Typ {
	case BANG_EQUAL:
		return lhs != rhs, nil

	case EQUAL_EQUAL:
		return lhs == rhs, nil

	case GREATER:
		leftNum, rightNum, err := numberOperands(expr.Op, lhs, rhs)
		if err != nil {
			return nil, err
		}
		return leftNum > rightNum, nil

	case GREATER_EQUAL:
		leftNum, rightNum, err := numberOperands(expr.Op, lhs, rhs)
		if err != nil {
			return nil, err
		}
		return leftNum >= rightNum, nil

	case LESS:
		leftNum, rightNum, err := numberOperands(expr.Op, lhs, rhs)
		if err != nil {
			return nil, err
		}
		return leftNum < rightNum, nil

	case LESS_EQUAL:
		leftNum, rightNum, err := numberOperands(expr.Op, lhs, rhs)
		if err != nil {
			return nil, err
		}
		return leftNum <= rightNum, nil

	case MINUS:
		leftNum, rightNum, err := numberOperands(expr.Op, lhs, rhs)
		if err != nil {
			return nil, err
		}
		return leftNum - rightNum, nil

	case PLUS:
		leftNum, okLeftNum := lhs.(float64)
		rightNum, okRightNum := rhs.(float64)
		if okLeftNum && okRightNum {
			return leftNum + rightNum, nil
		}
		// Concatenation kicks in when either operand is a string, the
		// other operand is converted to its printed form.
		_, okLeftStr := lhs.(string)
		_, okRightStr := rhs.(string)
		if okLeftStr || okRightStr {
			return stringify(lhs) + stringify(rhs), nil
		}
		return nil, NewRuntimeError(
			expr.Op,
			"Operands must be two numbers or one of them must be a string.",
		)

	case SLASH:
		leftNum, rightNum, err := numberOperands(expr.Op, lhs, rhs)
		if err != nil {
			return nil, err
		}
		if rightNum == 0 {
			return nil, NewRuntimeError(expr.Op, "Division by zero.")
		}
		return leftNum / rightNum, nil

	case STAR:
		leftNum, rightNum, err := numberOperands(expr.Op, lhs, rhs)
		if err != nil {
			return nil, err
		}
		return leftNum * rightNum, nil
	}
	panic("Unreachable")
}

func (in *Interpreter) VisitCallExpr(expr *CallExpr) (interface{}, error) {
	callee, err := in.eval(expr.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]interface{}, 0, len(expr.Args))
	for _, arg := range expr.Args {
		argVal, err := in.eval(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, argVal)
	}

	callable, canCall := callee.(Callable)
	if !canCall {
		return nil, NewRuntimeError(
			expr.Paren, "Can only call functions and classes.",
		)
	}
	if len(args) != callable.Arity() {
		msg := fmt.Sprintf(
			"Expected %d arguments but got %d.", callable.Arity(), len(args),
		)
		return nil, NewRuntimeError(expr.Paren, msg)
	}
	return callable.Call(in, args)
}

func (in *Interpreter) VisitFunctionExpr(expr *FunctionExpr) (interface{}, error) {
	return NewFunction("", expr, in.environment, false), nil
}

func (in *Interpreter) VisitGetExpr(expr *GetExpr) (interface{}, error) {
	obj, err := in.eval(expr.Obj)
	if err != nil {
		return nil, err
	}
	switch obj := obj.(type) {
	case *Instance:
		return obj.Get(expr.Name)
	case *Class:
		return obj.Get(expr.Name)
	}
	return nil, NewRuntimeError(expr.Name, "Only instances have properties.")
}

func (in *Interpreter) VisitGroupExpr(expr *GroupExpr) (interface{}, error) {
	return in.eval(expr.Expr)
}

func (in *Interpreter) VisitLiteralExpr(expr *LiteralExpr) (interface{}, error) {
	return expr.Val, nil
}

func (in *Interpreter) VisitLogicalExpr(expr *LogicalExpr) (interface{}, error) {
	lhs, err := in.eval(expr.Lhs)
	if err != nil {
		return nil, err
	}

	switch expr.Op.Typ {
	case OR:
		if isTruthy(lhs) {
			return lhs, nil
		}
	case AND:
		if !isTruthy(lhs) {
			return lhs, nil
		}
	default:
		panic("Unreachable")
	}

	return in.eval(expr.Rhs)
}

func (in *Interpreter) VisitSetExpr(expr *SetExpr) (interface{}, error) {
	obj, err := in.eval(expr.Obj)
	if err != nil {
		return nil, err
	}
	instance, isInstance := obj.(*Instance)
	if !isInstance {
		return nil, NewRuntimeError(expr.Name, "Only instances have fields.")
	}
	val, err := in.eval(expr.Val)
	if err != nil {
		return nil, err
	}
	instance.Set(expr.Name, val)
	return val, nil
}

func (in *Interpreter) VisitSuperExpr(expr *SuperExpr) (interface{}, error) {
	distance := in.locals[expr]
	superclass := in.environment.GetAt(distance, "super").(*Class)
	// "this" is always bound in the environment right inside the one
	// binding "super".
	instance := in.environment.GetAt(distance-1, "this").(*Instance)
	method := superclass.findMethod(expr.Method.Lexeme)
	if method == nil {
		msg := fmt.Sprintf("Undefined property '%s'.", expr.Method.Lexeme)
		return nil, NewRuntimeError(expr.Method, msg)
	}
	return method.bind(instance), nil
}

func (in *Interpreter) VisitTernaryExpr(expr *TernaryExpr) (interface{}, error) {
	cond, err := in.eval(expr.Cond)
	if err != nil {
		return nil, err
	}
	if isTruthy(cond) {
		return in.eval(expr.IfTrue)
	}
	return in.eval(expr.IfFalse)
}

func (in *Interpreter) VisitThisExpr(expr *ThisExpr) (interface{}, error) {
	return in.lookUpVariable(expr.Keyword, expr)
}

func (in *Interpreter) VisitUnaryExpr(expr *UnaryExpr) (interface{}, error) {
	exprVal, err := in.eval(expr.Expr)
	if err != nil {
		return nil, err
	}

	switch expr.Op.Typ {
	case BANG:
		return !isTruthy(exprVal), nil
	case MINUS:
		if exprNum, ok := exprVal.(float64); ok {
			return -exprNum, nil
		}
		return nil, NewRuntimeError(expr.Op, "Operand must be a number.")
	}
	panic("Unreachable")
}

func (in *Interpreter) VisitVarExpr(expr *VarExpr) (interface{}, error) {
	return in.lookUpVariable(expr.Name, expr)
}

func (in *Interpreter) lookUpVariable(name *Token, expr Expr) (interface{}, error) {
	if distance, isLocal := in.locals[expr]; isLocal {
		return in.environment.GetAt(distance, name.Lexeme), nil
	}
	return in.globals.Get(name)
}

func (in *Interpreter) execBlock(statements []Stmt, environment *Environment) error {
	previous := in.environment
	in.environment = environment
	defer func() {
		in.environment = previous
	}()
	for _, stmt := range statements {
		if _, err := in.exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) exec(stmt Stmt) (interface{}, error) {
	return stmt.Accept(in)
}

func (in *Interpreter) eval(expr Expr) (interface{}, error) {
	return expr.Accept(in)
}

func numberOperands(op *Token, lhs, rhs interface{}) (float64, float64, error) {
	leftNum, okLeft := lhs.(float64)
	if !okLeft {
		return 0, 0, NewRuntimeError(op, "Left operand must be a number.")
	}
	rightNum, okRight := rhs.(float64)
	if !okRight {
		return 0, 0, NewRuntimeError(op, "Right operand must be a number.")
	}
	return leftNum, rightNum, nil
}
