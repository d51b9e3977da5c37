package lox

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// syncBoundaries are the token types that most likely begin a new statement.
// The parser skips to one of these when it recovers from a syntax error.
var syncBoundaries = []TokenType{
	CLASS, FUN, VAR, FOR, IF, WHILE, PRINT, RETURN, RIGHT_BRACE,
}

// Parser composes the syntax tree for the Lox language from the sequence of
// tokens produced by the scanner. Each syntax error is reported through the
// reporter and the parser synchronizes to the next statement boundary so a
// single pass can surface as many errors as possible.
type Parser struct {
	current  int
	tokens   []*Token
	reporter Reporter
	isREPL   bool
}

// NewParser creates a new parser for the given sequence of tokens.
func NewParser(tokens []*Token, reporter Reporter) *Parser {
	parser := new(Parser)
	parser.current = 0
	parser.tokens = tokens
	parser.reporter = reporter
	return parser
}

// NewREPLParser creates a parser that accepts a trailing expression without a
// semicolon and turns it into a print statement. Only top-level expressions
// get this treatment.
func NewREPLParser(tokens []*Token, reporter Reporter) *Parser {
	parser := NewParser(tokens, reporter)
	parser.isREPL = true
	return parser
}

// Parse collects all the statements that can be composed from the tokens.
// Statements that fail to parse are dropped from the result after their
// errors have been reported.
func (parser *Parser) Parse() []Stmt {
	stmts := make([]Stmt, 0)
	for !parser.isEOF() {
		if stmt := parser.declaration(parser.isREPL); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func (parser *Parser) declaration(repl bool) Stmt {
	var stmt Stmt
	var err error
	switch {
	case parser.match(CLASS):
		stmt, err = parser.classDeclaration()
	case parser.check(FUN) && parser.checkNext(IDENTIFIER):
		parser.advance()
		stmt, err = parser.funDeclaration()
	case parser.match(VAR):
		stmt, err = parser.varDeclaration()
	default:
		stmt, err = parser.statement(repl)
	}
	if err != nil {
		parser.reporter.Report(err)
		parser.sync()
		return nil
	}
	return stmt
}

func (parser *Parser) classDeclaration() (Stmt, error) {
	name, err := parser.consume(IDENTIFIER, "Expect class name.")
	if err != nil {
		return nil, err
	}

	var superclass *VarExpr
	if parser.match(LESS) {
		superName, err := parser.consume(IDENTIFIER, "Expect superclass name.")
		if err != nil {
			return nil, err
		}
		superclass = NewVarExpr(superName)
	}

	if _, err := parser.consume(LEFT_BRACE, "Expect '{' before class body."); err != nil {
		return nil, err
	}
	methods := make([]*MethodStmt, 0)
	for !parser.check(RIGHT_BRACE) && !parser.isEOF() {
		isClass := parser.match(CLASS)
		methodName, err := parser.consume(IDENTIFIER, "Expect method name.")
		if err != nil {
			return nil, err
		}
		function, err := parser.functionBody("method")
		if err != nil {
			return nil, err
		}
		methods = append(methods, NewMethodStmt(methodName, function, isClass))
	}
	if _, err := parser.consume(RIGHT_BRACE, "Expect '}' after class body."); err != nil {
		return nil, err
	}
	return NewClassStmt(name, superclass, methods), nil
}

func (parser *Parser) funDeclaration() (Stmt, error) {
	name, err := parser.consume(IDENTIFIER, "Expect function name.")
	if err != nil {
		return nil, err
	}
	function, err := parser.functionBody("function")
	if err != nil {
		return nil, err
	}
	return NewFunctionStmt(name, function), nil
}

func (parser *Parser) functionBody(kind string) (*FunctionExpr, error) {
	parenMsg := fmt.Sprintf("Expect '(' after %s name.", kind)
	if kind == "anonymous function" {
		parenMsg = "Expect '(' after 'fun'."
	}
	if _, err := parser.consume(LEFT_PAREN, parenMsg); err != nil {
		return nil, err
	}

	params := make([]*Token, 0)
	if !parser.check(RIGHT_PAREN) {
		for {
			if len(params) >= 255 {
				parser.reporter.Report(NewParseError(
					parser.peek(), "Can't have more than 255 parameters.",
				))
			}
			param, err := parser.consume(IDENTIFIER, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !parser.match(COMMA) {
				break
			}
		}
	}
	if _, err := parser.consume(RIGHT_PAREN, "Expect ')' after parameters."); err != nil {
		return nil, err
	}

	if _, err := parser.consume(
		LEFT_BRACE, fmt.Sprintf("Expect '{' before %s body.", kind),
	); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}
	return NewFunctionExpr(params, body), nil
}

func (parser *Parser) varDeclaration() (Stmt, error) {
	name, err := parser.consume(IDENTIFIER, "Expect variable name.")
	if err != nil {
		return nil, err
	}

	var init Expr
	if parser.match(EQUAL) {
		init, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(
		SEMICOLON, "Expect ';' after variable declaration.",
	); err != nil {
		return nil, err
	}
	return NewVarStmt(name, init), nil
}

func (parser *Parser) statement(repl bool) (Stmt, error) {
	switch {
	case parser.match(FOR):
		return parser.forStatement()
	case parser.match(IF):
		return parser.ifStatement()
	case parser.match(PRINT):
		return parser.printStatement()
	case parser.match(RETURN):
		return parser.returnStatement()
	case parser.match(BREAK):
		return parser.breakStatement()
	case parser.match(WHILE):
		return parser.whileStatement()
	case parser.match(LEFT_BRACE):
		stmts, err := parser.block()
		if err != nil {
			return nil, err
		}
		return NewBlockStmt(stmts), nil
	default:
		return parser.expressionStatement(repl)
	}
}

// forStatement desugars the for loop into a while loop surrounded by blocks
// for the initializer and the increment.
func (parser *Parser) forStatement() (Stmt, error) {
	if _, err := parser.consume(LEFT_PAREN, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var init Stmt
	var err error
	switch {
	case parser.match(SEMICOLON):
		init = nil
	case parser.match(VAR):
		init, err = parser.varDeclaration()
	default:
		init, err = parser.expressionStatement(false)
	}
	if err != nil {
		return nil, err
	}

	var cond Expr
	if !parser.check(SEMICOLON) {
		cond, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(
		SEMICOLON, "Expect ';' after loop condition.",
	); err != nil {
		return nil, err
	}

	var incr Expr
	if !parser.check(RIGHT_PAREN) {
		incr, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(
		RIGHT_PAREN, "Expect ')' after for clauses.",
	); err != nil {
		return nil, err
	}

	body, err := parser.statement(false)
	if err != nil {
		return nil, err
	}

	if incr != nil {
		body = NewBlockStmt([]Stmt{body, NewExprStmt(incr)})
	}
	if cond == nil {
		cond = NewLiteralExpr(true)
	}
	body = NewWhileStmt(cond, body)
	if init != nil {
		body = NewBlockStmt([]Stmt{init, body})
	}
	return body, nil
}

func (parser *Parser) ifStatement() (Stmt, error) {
	if _, err := parser.consume(LEFT_PAREN, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(
		RIGHT_PAREN, "Expect ')' after if condition.",
	); err != nil {
		return nil, err
	}

	thenBranch, err := parser.statement(false)
	if err != nil {
		return nil, err
	}
	var elseBranch Stmt
	if parser.match(ELSE) {
		elseBranch, err = parser.statement(false)
		if err != nil {
			return nil, err
		}
	}
	return NewIfStmt(cond, thenBranch, elseBranch), nil
}

func (parser *Parser) printStatement() (Stmt, error) {
	expr, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(SEMICOLON, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return NewPrintStmt(expr), nil
}

func (parser *Parser) returnStatement() (Stmt, error) {
	keyword := parser.prev()
	var val Expr
	var err error
	if !parser.check(SEMICOLON) {
		val, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(
		SEMICOLON, "Expect ';' after return value.",
	); err != nil {
		return nil, err
	}
	return NewReturnStmt(keyword, val), nil
}

func (parser *Parser) breakStatement() (Stmt, error) {
	token := parser.prev()
	if _, err := parser.consume(SEMICOLON, "Expect ';' after 'break'."); err != nil {
		return nil, err
	}
	return NewBreakStmt(token), nil
}

func (parser *Parser) whileStatement() (Stmt, error) {
	if _, err := parser.consume(LEFT_PAREN, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(
		RIGHT_PAREN, "Expect ')' after condition.",
	); err != nil {
		return nil, err
	}
	body, err := parser.statement(false)
	if err != nil {
		return nil, err
	}
	return NewWhileStmt(cond, body), nil
}

func (parser *Parser) block() ([]Stmt, error) {
	stmts := make([]Stmt, 0)
	for !parser.check(RIGHT_BRACE) && !parser.isEOF() {
		if stmt := parser.declaration(false); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := parser.consume(RIGHT_BRACE, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (parser *Parser) expressionStatement(repl bool) (Stmt, error) {
	expr, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if parser.match(SEMICOLON) {
		return NewExprStmt(expr), nil
	}
	if !repl {
		return nil, NewParseError(parser.peek(), "Expect ';' after expression.")
	}
	// An expression typed at the prompt without a trailing semicolon prints
	// its value.
	if parser.isEOF() {
		return NewPrintStmt(expr), nil
	}
	return nil, NewParseError(parser.peek(), "Unexpected token after expression.")
}

func (parser *Parser) expression() (Expr, error) {
	return parser.assignment()
}

func (parser *Parser) assignment() (Expr, error) {
	lhs, err := parser.ternary()
	if err != nil {
		return nil, err
	}
	if parser.match(EQUAL) {
		equals := parser.prev()
		val, err := parser.assignment()
		if err != nil {
			return nil, err
		}
		switch target := lhs.(type) {
		case *VarExpr:
			return NewAssignExpr(target.Name, val), nil
		case *GetExpr:
			return NewSetExpr(target.Obj, target.Name, val), nil
		}
		// Report without synchronizing. The parser is not in a confused
		// state, so it keeps going with the expression it has.
		parser.reporter.Report(
			NewParseError(equals, "Invalid assignment target."),
		)
	}
	return lhs, nil
}

func (parser *Parser) ternary() (Expr, error) {
	cond, err := parser.logicOr()
	if err != nil {
		return nil, err
	}
	if parser.match(QUESTION) {
		ifTrue, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(
			COLON, "Expect ':' between expressions.",
		); err != nil {
			return nil, err
		}
		ifFalse, err := parser.ternary()
		if err != nil {
			return nil, err
		}
		return NewTernaryExpr(cond, ifTrue, ifFalse), nil
	}
	return cond, nil
}

func (parser *Parser) logicOr() (Expr, error) {
	lhs, err := parser.logicAnd()
	if err != nil {
		return nil, err
	}
	for parser.match(OR) {
		op := parser.prev()
		rhs, err := parser.logicAnd()
		if err != nil {
			return nil, err
		}
		lhs = NewLogicalExpr(op, lhs, rhs)
	}
	return lhs, nil
}

func (parser *Parser) logicAnd() (Expr, error) {
	lhs, err := parser.equality()
	if err != nil {
		return nil, err
	}
	for parser.match(AND) {
		op := parser.prev()
		rhs, err := parser.equality()
		if err != nil {
			return nil, err
		}
		lhs = NewLogicalExpr(op, lhs, rhs)
	}
	return lhs, nil
}

func (parser *Parser) equality() (Expr, error) {
	return parser.binary(parser.comparison, BANG_EQUAL, EQUAL_EQUAL)
}

func (parser *Parser) comparison() (Expr, error) {
	return parser.binary(parser.term, GREATER, GREATER_EQUAL, LESS, LESS_EQUAL)
}

func (parser *Parser) term() (Expr, error) {
	if parser.match(PLUS) {
		return nil, NewParseError(
			parser.prev(), "Lox does not support unary '+'.",
		)
	}
	lhs, err := parser.factor()
	if err != nil {
		return nil, err
	}
	for parser.match(MINUS, PLUS) {
		op := parser.prev()
		rhs, err := parser.factor()
		if err != nil {
			return nil, err
		}
		lhs = NewBinaryExpr(op, lhs, rhs)
	}
	return lhs, nil
}

func (parser *Parser) factor() (Expr, error) {
	return parser.binary(parser.unary, SLASH, STAR)
}

// binary parses a left-associative binary operation where both operands are
// composed by the given operand function. A leading operator without a left
// operand is an error, reported after its right operand has been parsed.
func (parser *Parser) binary(
	operand func() (Expr, error),
	operators ...TokenType,
) (Expr, error) {
	if parser.match(operators...) {
		op := parser.prev()
		// Consume the right operand so it does not cause further errors.
		operand()
		return nil, NewParseError(
			op, "Is a binary operation, left operand missing.",
		)
	}
	lhs, err := operand()
	if err != nil {
		return nil, err
	}
	for parser.match(operators...) {
		op := parser.prev()
		rhs, err := operand()
		if err != nil {
			return nil, err
		}
		lhs = NewBinaryExpr(op, lhs, rhs)
	}
	return lhs, nil
}

func (parser *Parser) unary() (Expr, error) {
	if parser.match(BANG, MINUS) {
		op := parser.prev()
		expr, err := parser.unary()
		if err != nil {
			return nil, err
		}
		return NewUnaryExpr(op, expr), nil
	}
	return parser.call()
}

func (parser *Parser) call() (Expr, error) {
	expr, err := parser.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case parser.match(LEFT_PAREN):
			expr, err = parser.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case parser.match(DOT):
			name, err := parser.consume(
				IDENTIFIER, "Expect property name after '.'.",
			)
			if err != nil {
				return nil, err
			}
			expr = NewGetExpr(expr, name)
		default:
			return expr, nil
		}
	}
}

func (parser *Parser) finishCall(callee Expr) (Expr, error) {
	args := make([]Expr, 0)
	if !parser.check(RIGHT_PAREN) {
		for {
			if len(args) >= 255 {
				parser.reporter.Report(NewParseError(
					parser.peek(), "Can't have more than 255 arguments.",
				))
			}
			arg, err := parser.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !parser.match(COMMA) {
				break
			}
		}
	}
	paren, err := parser.consume(RIGHT_PAREN, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return NewCallExpr(callee, paren, args), nil
}

func (parser *Parser) primary() (Expr, error) {
	switch {
	case parser.match(FALSE):
		return NewLiteralExpr(false), nil
	case parser.match(TRUE):
		return NewLiteralExpr(true), nil
	case parser.match(NIL):
		return NewLiteralExpr(nil), nil
	case parser.match(NUMBER, STRING):
		return NewLiteralExpr(parser.prev().Literal), nil
	case parser.match(IDENTIFIER):
		return NewVarExpr(parser.prev()), nil
	case parser.match(THIS):
		return NewThisExpr(parser.prev()), nil
	case parser.match(SUPER):
		keyword := parser.prev()
		if _, err := parser.consume(DOT, "Expect '.' after 'super'."); err != nil {
			return nil, err
		}
		method, err := parser.consume(
			IDENTIFIER, "Expect superclass method name.",
		)
		if err != nil {
			return nil, err
		}
		return NewSuperExpr(keyword, method), nil
	case parser.match(FUN):
		return parser.functionBody("anonymous function")
	case parser.match(LEFT_PAREN):
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(
			RIGHT_PAREN, "Expect ')' after expression.",
		); err != nil {
			return nil, err
		}
		return NewGroupExpr(expr), nil
	}
	return nil, NewParseError(parser.peek(), "Expect expression.")
}

// sync skips tokens until it reaches a likely statement boundary so the
// parser can keep going after a syntax error.
func (parser *Parser) sync() {
	for !parser.isEOF() {
		if parser.peek().Typ == SEMICOLON {
			parser.advance()
			return
		}
		if slices.Contains(syncBoundaries, parser.peek().Typ) {
			return
		}
		parser.advance()
	}
}

// match consumes the token at the current position if its type is one of the
// given types.
func (parser *Parser) match(types ...TokenType) bool {
	if parser.isEOF() {
		return false
	}
	if slices.Contains(types, parser.peek().Typ) {
		parser.advance()
		return true
	}
	return false
}

// consume returns the token at the current position after checking that it
// has the given type. An error carrying the given message is returned when
// the types differ.
func (parser *Parser) consume(typ TokenType, message string) (*Token, error) {
	if parser.check(typ) {
		return parser.advance(), nil
	}
	return nil, NewParseError(parser.peek(), message)
}

// check returns true if the token at the current position has the given type.
func (parser *Parser) check(typ TokenType) bool {
	if parser.isEOF() {
		return false
	}
	return parser.peek().Typ == typ
}

// checkNext returns true if the token after the current position has the
// given type.
func (parser *Parser) checkNext(typ TokenType) bool {
	if parser.isEOF() {
		return false
	}
	next := parser.tokens[parser.current+1]
	return next.Typ != EOF && next.Typ == typ
}

// advance consumes and returns the token at the current position.
func (parser *Parser) advance() *Token {
	if !parser.isEOF() {
		parser.current++
	}
	return parser.prev()
}

// isEOF returns true if the parser has reached the end of the token sequence.
func (parser *Parser) isEOF() bool {
	return parser.peek().Typ == EOF
}

// peek returns the token at the current position without consuming it.
func (parser *Parser) peek() *Token {
	return parser.tokens[parser.current]
}

// prev returns the token right before the current position.
func (parser *Parser) prev() *Token {
	return parser.tokens[parser.current-1]
}
