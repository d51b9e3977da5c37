package lox

import "container/list"

// localVar tracks what the resolver knows about a name declared in a local
// scope. A name is declared before its initializer runs and defined after,
// which lets the resolver catch initializers that read the name they are
// initializing.
type localVar struct {
	name    *Token
	defined bool
	used    bool
}

// Each map represents a single block scope, variables at the global scope are
// not tracked by the resolver. If it cannot resolve a variable in the local
// scopes, it assumes the variable to be in the global scope.
type scopeMap = map[string]*localVar

type fnType = int

const (
	fnTypeNone fnType = iota
	fnTypeFunction
	fnTypeInitializer
	fnTypeMethod
	fnTypeStaticMethod
)

type classType = int

const (
	classTypeNone classType = iota
	classTypeClass
	classTypeSubclass
)

// Resolver performs semantic analysis on the syntax tree. It tells the
// interpreter how many environments separate each variable use from the
// scope that declares the variable, and reports the errors that can be found
// without running the program.
type Resolver struct {
	scopes       *list.List
	interpreter  *Interpreter
	reporter     Reporter
	currentFn    fnType
	currentClass classType
	inLoop       bool
}

func NewResolver(interpreter *Interpreter, reporter Reporter) *Resolver {
	resolver := new(Resolver)
	resolver.scopes = list.New()
	resolver.interpreter = interpreter
	resolver.reporter = reporter
	resolver.currentFn = fnTypeNone
	resolver.currentClass = classTypeNone
	return resolver
}

// Resolve analyses all the given statements.
func (resolver *Resolver) Resolve(statements []Stmt) {
	for _, stmt := range statements {
		resolver.resolveStmt(stmt)
	}
}

func (resolver *Resolver) VisitBlockStmt(stmt *BlockStmt) (interface{}, error) {
	resolver.beginScope()
	for _, stmt := range stmt.Stmts {
		resolver.resolveStmt(stmt)
	}
	resolver.endScope()
	return nil, nil
}

func (resolver *Resolver) VisitBreakStmt(stmt *BreakStmt) (interface{}, error) {
	if !resolver.inLoop {
		resolver.reporter.Report(NewResolveError(
			stmt.Token, "Can't use 'break' outside a loop.",
		))
	}
	return nil, nil
}

func (resolver *Resolver) VisitClassStmt(stmt *ClassStmt) (interface{}, error) {
	enclosingClass := resolver.currentClass
	resolver.currentClass = classTypeClass

	resolver.declare(stmt.Name)
	resolver.define(stmt.Name)

	if stmt.Superclass != nil {
		if stmt.Name.Lexeme == stmt.Superclass.Name.Lexeme {
			resolver.reporter.Report(NewResolveError(
				stmt.Superclass.Name, "A class can't inherit from itself.",
			))
		}
		resolver.currentClass = classTypeSubclass
		resolver.resolveExpr(stmt.Superclass)
		resolver.beginScope()
		resolver.defineName("super")
	}

	resolver.beginScope()
	resolver.defineName("this")
	for _, method := range stmt.Methods {
		if method.IsClass {
			continue
		}
		declType := fnTypeMethod
		if method.Name.Lexeme == "init" {
			declType = fnTypeInitializer
		}
		resolver.resolveFunction(method.Function, declType)
	}
	resolver.endScope()

	// Static methods are never bound to an instance, so their bodies run
	// without the environment holding "this".
	for _, method := range stmt.Methods {
		if method.IsClass {
			resolver.resolveFunction(method.Function, fnTypeStaticMethod)
		}
	}

	if stmt.Superclass != nil {
		resolver.endScope()
	}
	resolver.currentClass = enclosingClass
	return nil, nil
}

func (resolver *Resolver) VisitExprStmt(stmt *ExprStmt) (interface{}, error) {
	resolver.resolveExpr(stmt.Expr)
	return nil, nil
}

func (resolver *Resolver) VisitFunctionStmt(stmt *FunctionStmt) (interface{}, error) {
	resolver.declare(stmt.Name)
	resolver.define(stmt.Name)
	resolver.resolveFunction(stmt.Function, fnTypeFunction)
	return nil, nil
}

func (resolver *Resolver) VisitIfStmt(stmt *IfStmt) (interface{}, error) {
	resolver.resolveExpr(stmt.Cond)
	resolver.resolveStmt(stmt.ThenBranch)
	if stmt.ElseBranch != nil {
		resolver.resolveStmt(stmt.ElseBranch)
	}
	return nil, nil
}

func (resolver *Resolver) VisitMethodStmt(stmt *MethodStmt) (interface{}, error) {
	// Methods are resolved through their class declaration.
	return nil, nil
}

func (resolver *Resolver) VisitPrintStmt(stmt *PrintStmt) (interface{}, error) {
	resolver.resolveExpr(stmt.Expr)
	return nil, nil
}

func (resolver *Resolver) VisitReturnStmt(stmt *ReturnStmt) (interface{}, error) {
	if resolver.currentFn == fnTypeNone {
		resolver.reporter.Report(NewResolveError(
			stmt.Keyword, "Can't return from top-level code.",
		))
	}
	if stmt.Val != nil {
		if resolver.currentFn == fnTypeInitializer {
			resolver.reporter.Report(NewResolveError(
				stmt.Keyword, "Can't return a value from an initializer.",
			))
		}
		resolver.resolveExpr(stmt.Val)
	}
	return nil, nil
}

func (resolver *Resolver) VisitVarStmt(stmt *VarStmt) (interface{}, error) {
	resolver.declare(stmt.Name)
	if stmt.Init != nil {
		resolver.resolveExpr(stmt.Init)
	}
	resolver.define(stmt.Name)
	return nil, nil
}

func (resolver *Resolver) VisitWhileStmt(stmt *WhileStmt) (interface{}, error) {
	resolver.resolveExpr(stmt.Cond)
	enclosingLoop := resolver.inLoop
	resolver.inLoop = true
	resolver.resolveStmt(stmt.Body)
	resolver.inLoop = enclosingLoop
	return nil, nil
}

func (resolver *Resolver) VisitAssignExpr(expr *AssignExpr) (interface{}, error) {
	resolver.resolveExpr(expr.Val)
	resolver.resolveLocal(expr, expr.Name, false)
	return nil, nil
}

func (resolver *Resolver) VisitBinaryExpr(expr *BinaryExpr) (interface{}, error) {
	resolver.resolveExpr(expr.Lhs)
	resolver.resolveExpr(expr.Rhs)
	return nil, nil
}

func (resolver *Resolver) VisitCallExpr(expr *CallExpr) (interface{}, error) {
	resolver.resolveExpr(expr.Callee)
	for _, arg := range expr.Args {
		resolver.resolveExpr(arg)
	}
	return nil, nil
}

func (resolver *Resolver) VisitFunctionExpr(expr *FunctionExpr) (interface{}, error) {
	resolver.resolveFunction(expr, fnTypeFunction)
	return nil, nil
}

func (resolver *Resolver) VisitGetExpr(expr *GetExpr) (interface{}, error) {
	resolver.resolveExpr(expr.Obj)
	return nil, nil
}

func (resolver *Resolver) VisitGroupExpr(expr *GroupExpr) (interface{}, error) {
	resolver.resolveExpr(expr.Expr)
	return nil, nil
}

func (resolver *Resolver) VisitLiteralExpr(expr *LiteralExpr) (interface{}, error) {
	return nil, nil
}

func (resolver *Resolver) VisitLogicalExpr(expr *LogicalExpr) (interface{}, error) {
	resolver.resolveExpr(expr.Lhs)
	resolver.resolveExpr(expr.Rhs)
	return nil, nil
}

func (resolver *Resolver) VisitSetExpr(expr *SetExpr) (interface{}, error) {
	resolver.resolveExpr(expr.Val)
	resolver.resolveExpr(expr.Obj)
	return nil, nil
}

func (resolver *Resolver) VisitSuperExpr(expr *SuperExpr) (interface{}, error) {
	switch resolver.currentClass {
	case classTypeNone:
		resolver.reporter.Report(NewResolveError(
			expr.Keyword, "Can't use 'super' outside of a class.",
		))
	case classTypeClass:
		resolver.reporter.Report(NewResolveError(
			expr.Keyword, "Can't use 'super' in a class with no superclass.",
		))
	}
	resolver.resolveLocal(expr, expr.Keyword, true)
	return nil, nil
}

func (resolver *Resolver) VisitTernaryExpr(expr *TernaryExpr) (interface{}, error) {
	resolver.resolveExpr(expr.Cond)
	resolver.resolveExpr(expr.IfTrue)
	resolver.resolveExpr(expr.IfFalse)
	return nil, nil
}

func (resolver *Resolver) VisitThisExpr(expr *ThisExpr) (interface{}, error) {
	if resolver.currentClass == classTypeNone {
		resolver.reporter.Report(NewResolveError(
			expr.Keyword, "Can't use 'this' outside of a class.",
		))
	} else if resolver.currentFn == fnTypeStaticMethod {
		resolver.reporter.Report(NewResolveError(
			expr.Keyword, "Can't use 'this' in a static method.",
		))
	}
	resolver.resolveLocal(expr, expr.Keyword, true)
	return nil, nil
}

func (resolver *Resolver) VisitUnaryExpr(expr *UnaryExpr) (interface{}, error) {
	resolver.resolveExpr(expr.Expr)
	return nil, nil
}

func (resolver *Resolver) VisitVarExpr(expr *VarExpr) (interface{}, error) {
	if resolver.scopes.Front() != nil {
		scope := resolver.scopes.Front().Value.(scopeMap)
		if local, exist := scope[expr.Name.Lexeme]; exist && !local.defined {
			resolver.reporter.Report(NewResolveError(
				expr.Name,
				"Can't read local variable in its own initializer.",
			))
		}
	}
	resolver.resolveLocal(expr, expr.Name, true)
	return nil, nil
}

func (resolver *Resolver) resolveFunction(fn *FunctionExpr, declType fnType) {
	enclosingFn := resolver.currentFn
	resolver.currentFn = declType
	// break can't jump across a function boundary
	enclosingLoop := resolver.inLoop
	resolver.inLoop = false

	resolver.beginScope()
	for _, param := range fn.Params {
		resolver.declare(param)
		resolver.define(param)
	}
	for _, stmt := range fn.Body {
		resolver.resolveStmt(stmt)
	}
	resolver.endScope()

	resolver.inLoop = enclosingLoop
	resolver.currentFn = enclosingFn
}

// resolveLocal records how many scopes separate the expression from the
// scope declaring the name it refers to. A read marks the name as used,
// assigning to a name that is never read does not.
func (resolver *Resolver) resolveLocal(expr Expr, name *Token, isRead bool) {
	steps := 0
	for scope := resolver.scopes.Front(); scope != nil; scope = scope.Next() {
		scopeMap := scope.Value.(scopeMap)
		if local, ok := scopeMap[name.Lexeme]; ok {
			if isRead {
				local.used = true
			}
			resolver.interpreter.resolve(expr, steps)
			return
		}
		steps++
	}
}

// Similar to Interpreter.exec
func (resolver *Resolver) resolveStmt(stmt Stmt) {
	stmt.Accept(resolver)
}

// Similar to Interpreter.eval
func (resolver *Resolver) resolveExpr(expr Expr) {
	expr.Accept(resolver)
}

// called when resolver enters a new scope
func (resolver *Resolver) beginScope() {
	resolver.scopes.PushFront(make(scopeMap))
}

// called when resolver exits a scope. Names declared by the program that
// were never read are reported before the scope goes away.
func (resolver *Resolver) endScope() {
	scope := resolver.scopes.Front().Value.(scopeMap)
	for _, local := range scope {
		if !local.used {
			resolver.reporter.Report(NewResolveError(
				local.name, "Unused local variable.",
			))
		}
	}
	resolver.scopes.Remove(resolver.scopes.Front())
}

func (resolver *Resolver) declare(name *Token) {
	if resolver.scopes.Front() == nil {
		return
	}
	scope := resolver.scopes.Front().Value.(scopeMap)
	if _, hasName := scope[name.Lexeme]; hasName {
		resolver.reporter.Report(NewResolveError(
			name, "Already a variable with this name in this scope.",
		))
	}
	scope[name.Lexeme] = &localVar{name: name}
}

func (resolver *Resolver) define(name *Token) {
	if resolver.scopes.Front() == nil {
		return
	}
	scope := resolver.scopes.Front().Value.(scopeMap)
	scope[name.Lexeme].defined = true
}

// defineName puts an implicitly declared name into the current scope. The
// name has no declaring token and is exempt from the unused variable check.
func (resolver *Resolver) defineName(name string) {
	scope := resolver.scopes.Front().Value.(scopeMap)
	scope[name] = &localVar{defined: true, used: true}
}
