package lox

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func scanToks(src string) []*Token {
	report := newMockReporter()
	scan := NewScanner([]rune(src), report)
	return scan.Scan()
}

func tokIdent(name string, line int) *Token {
	return NewToken(IDENTIFIER, name, nil, line)
}

func TestParseExpressionStatement(t *testing.T) {
	testCases := []struct {
		src  string
		expr Expr
	}{
		{"3.14;", NewLiteralExpr(3.14)},

		{"\"a string\";", NewLiteralExpr("a string")},

		{"nil;", NewLiteralExpr(nil)},

		{"(3.14);", NewGroupExpr(NewLiteralExpr(3.14))},

		{"-3.14;",
			NewUnaryExpr(
				NewToken(MINUS, "-", nil, 1),
				NewLiteralExpr(3.14))},

		{"!!true;",
			NewUnaryExpr(
				NewToken(BANG, "!", nil, 1),
				NewUnaryExpr(
					NewToken(BANG, "!", nil, 1),
					NewLiteralExpr(true)))},

		{"2 + 3 * 4;",
			NewBinaryExpr(
				NewToken(PLUS, "+", nil, 1),
				NewLiteralExpr(2.0),
				NewBinaryExpr(
					NewToken(STAR, "*", nil, 1),
					NewLiteralExpr(3.0),
					NewLiteralExpr(4.0)))},

		{"6 / 3 - 2;",
			NewBinaryExpr(
				NewToken(MINUS, "-", nil, 1),
				NewBinaryExpr(
					NewToken(SLASH, "/", nil, 1),
					NewLiteralExpr(6.0),
					NewLiteralExpr(3.0)),
				NewLiteralExpr(2.0))},

		{"1 < 2 == false;",
			NewBinaryExpr(
				NewToken(EQUAL_EQUAL, "==", nil, 1),
				NewBinaryExpr(
					NewToken(LESS, "<", nil, 1),
					NewLiteralExpr(1.0),
					NewLiteralExpr(2.0)),
				NewLiteralExpr(false))},

		{"a or b and c;",
			NewLogicalExpr(
				NewToken(OR, "or", nil, 1),
				NewVarExpr(tokIdent("a", 1)),
				NewLogicalExpr(
					NewToken(AND, "and", nil, 1),
					NewVarExpr(tokIdent("b", 1)),
					NewVarExpr(tokIdent("c", 1))))},

		{"a ? b : c;",
			NewTernaryExpr(
				NewVarExpr(tokIdent("a", 1)),
				NewVarExpr(tokIdent("b", 1)),
				NewVarExpr(tokIdent("c", 1)))},

		// the ternary operator is right-associative
		{"a ? b : c ? d : e;",
			NewTernaryExpr(
				NewVarExpr(tokIdent("a", 1)),
				NewVarExpr(tokIdent("b", 1)),
				NewTernaryExpr(
					NewVarExpr(tokIdent("c", 1)),
					NewVarExpr(tokIdent("d", 1)),
					NewVarExpr(tokIdent("e", 1))))},

		{"x = 1;",
			NewAssignExpr(tokIdent("x", 1), NewLiteralExpr(1.0))},

		{"a.b = 1;",
			NewSetExpr(
				NewVarExpr(tokIdent("a", 1)),
				tokIdent("b", 1),
				NewLiteralExpr(1.0))},

		{"f(1)(2);",
			NewCallExpr(
				NewCallExpr(
					NewVarExpr(tokIdent("f", 1)),
					NewToken(RIGHT_PAREN, ")", nil, 1),
					[]Expr{NewLiteralExpr(1.0)}),
				NewToken(RIGHT_PAREN, ")", nil, 1),
				[]Expr{NewLiteralExpr(2.0)})},

		{"a.b.c;",
			NewGetExpr(
				NewGetExpr(
					NewVarExpr(tokIdent("a", 1)),
					tokIdent("b", 1)),
				tokIdent("c", 1))},

		{"this.x;",
			NewGetExpr(
				NewThisExpr(NewToken(THIS, "this", nil, 1)),
				tokIdent("x", 1))},

		{"super.m;",
			NewSuperExpr(
				NewToken(SUPER, "super", nil, 1),
				tokIdent("m", 1))},
	}

	assert := assert.New(t)
	for _, tc := range testCases {
		report := newMockReporter()
		parse := NewParser(scanToks(tc.src), report)
		stmts := parse.Parse()

		assert.False(report.HadError(), tc.src)
		assert.Equal([]Stmt{NewExprStmt(tc.expr)}, stmts, tc.src)
	}
}

func TestParseDeclarations(t *testing.T) {
	testCases := []struct {
		src   string
		stmts []Stmt
	}{
		{"var x;",
			[]Stmt{NewVarStmt(tokIdent("x", 1), nil)}},

		{"var x = 1;",
			[]Stmt{NewVarStmt(tokIdent("x", 1), NewLiteralExpr(1.0))}},

		{"fun f(a, b) { return a; }",
			[]Stmt{NewFunctionStmt(
				tokIdent("f", 1),
				NewFunctionExpr(
					[]*Token{tokIdent("a", 1), tokIdent("b", 1)},
					[]Stmt{NewReturnStmt(
						NewToken(RETURN, "return", nil, 1),
						NewVarExpr(tokIdent("a", 1)))}))}},

		{"var f = fun (a) { print a; };",
			[]Stmt{NewVarStmt(
				tokIdent("f", 1),
				NewFunctionExpr(
					[]*Token{tokIdent("a", 1)},
					[]Stmt{NewPrintStmt(NewVarExpr(tokIdent("a", 1)))}))}},

		{"class A { m() {} class s() {} }",
			[]Stmt{NewClassStmt(
				tokIdent("A", 1),
				nil,
				[]*MethodStmt{
					NewMethodStmt(
						tokIdent("m", 1),
						NewFunctionExpr([]*Token{}, []Stmt{}),
						false),
					NewMethodStmt(
						tokIdent("s", 1),
						NewFunctionExpr([]*Token{}, []Stmt{}),
						true),
				})}},

		{"class B < A {}",
			[]Stmt{NewClassStmt(
				tokIdent("B", 1),
				NewVarExpr(tokIdent("A", 1)),
				[]*MethodStmt{})}},

		{"{ print 1; }",
			[]Stmt{NewBlockStmt(
				[]Stmt{NewPrintStmt(NewLiteralExpr(1.0))})}},

		{"if (true) print 1; else print 2;",
			[]Stmt{NewIfStmt(
				NewLiteralExpr(true),
				NewPrintStmt(NewLiteralExpr(1.0)),
				NewPrintStmt(NewLiteralExpr(2.0)))}},

		{"while (true) break;",
			[]Stmt{NewWhileStmt(
				NewLiteralExpr(true),
				NewBreakStmt(NewToken(BREAK, "break", nil, 1)))}},
	}

	assert := assert.New(t)
	for _, tc := range testCases {
		report := newMockReporter()
		parse := NewParser(scanToks(tc.src), report)
		stmts := parse.Parse()

		assert.False(report.HadError(), tc.src)
		assert.Equal(tc.stmts, stmts, tc.src)
	}
}

func TestParseForDesugaring(t *testing.T) {
	src := "for (var i = 0; i < 3; i = i + 1) print i;"
	want := []Stmt{NewBlockStmt([]Stmt{
		NewVarStmt(tokIdent("i", 1), NewLiteralExpr(0.0)),
		NewWhileStmt(
			NewBinaryExpr(
				NewToken(LESS, "<", nil, 1),
				NewVarExpr(tokIdent("i", 1)),
				NewLiteralExpr(3.0)),
			NewBlockStmt([]Stmt{
				NewPrintStmt(NewVarExpr(tokIdent("i", 1))),
				NewExprStmt(NewAssignExpr(
					tokIdent("i", 1),
					NewBinaryExpr(
						NewToken(PLUS, "+", nil, 1),
						NewVarExpr(tokIdent("i", 1)),
						NewLiteralExpr(1.0)))),
			})),
	})}

	report := newMockReporter()
	parse := NewParser(scanToks(src), report)
	stmts := parse.Parse()

	assert := assert.New(t)
	assert.False(report.HadError())
	assert.Equal(want, stmts)
}

func TestParseForWithEmptyClauses(t *testing.T) {
	src := "for (;;) break;"
	want := []Stmt{NewWhileStmt(
		NewLiteralExpr(true),
		NewBreakStmt(NewToken(BREAK, "break", nil, 1)))}

	report := newMockReporter()
	parse := NewParser(scanToks(src), report)
	stmts := parse.Parse()

	assert := assert.New(t)
	assert.False(report.HadError())
	assert.Equal(want, stmts)
}

func TestParseREPLTrailingExpression(t *testing.T) {
	testCases := []struct {
		src   string
		stmts []Stmt
	}{
		// a trailing expression without a semicolon prints its value
		{"1 + 2",
			[]Stmt{NewPrintStmt(NewBinaryExpr(
				NewToken(PLUS, "+", nil, 1),
				NewLiteralExpr(1.0),
				NewLiteralExpr(2.0)))}},

		// statements keep their meaning
		{"1 + 2;",
			[]Stmt{NewExprStmt(NewBinaryExpr(
				NewToken(PLUS, "+", nil, 1),
				NewLiteralExpr(1.0),
				NewLiteralExpr(2.0)))}},

		{"var x = 1;",
			[]Stmt{NewVarStmt(tokIdent("x", 1), NewLiteralExpr(1.0))}},
	}

	assert := assert.New(t)
	for _, tc := range testCases {
		report := newMockReporter()
		parse := NewREPLParser(scanToks(tc.src), report)
		stmts := parse.Parse()

		assert.False(report.HadError(), tc.src)
		assert.Equal(tc.stmts, stmts, tc.src)
	}
}

func TestParseREPLNestedExpressionStillNeedsSemicolon(t *testing.T) {
	report := newMockReporter()
	parse := NewREPLParser(scanToks("{ 1 + 2 }"), report)
	parse.Parse()

	assert := assert.New(t)
	assert.True(report.HadError())
}

func TestParseWithErrors(t *testing.T) {
	testCases := []struct {
		src    string
		errors []error
	}{
		{";",
			[]error{NewParseError(
				NewToken(SEMICOLON, ";", nil, 1), "Expect expression.")}},

		{"(1 + 2;",
			[]error{NewParseError(
				NewToken(SEMICOLON, ";", nil, 1),
				"Expect ')' after expression.")}},

		{"1 + 2",
			[]error{NewParseError(
				tokEOF(1), "Expect ';' after expression.")}},

		{"+1;",
			[]error{NewParseError(
				NewToken(PLUS, "+", nil, 1),
				"Lox does not support unary '+'.")}},

		{"*2;",
			[]error{NewParseError(
				NewToken(STAR, "*", nil, 1),
				"Is a binary operation, left operand missing.")}},

		{"== 2;",
			[]error{NewParseError(
				NewToken(EQUAL_EQUAL, "==", nil, 1),
				"Is a binary operation, left operand missing.")}},

		{"1 ? 2;",
			[]error{NewParseError(
				NewToken(SEMICOLON, ";", nil, 1),
				"Expect ':' between expressions.")}},

		{"var 1 = 2;",
			[]error{NewParseError(
				NewToken(NUMBER, "1", 1.0, 1), "Expect variable name.")}},

		{"super;",
			[]error{NewParseError(
				NewToken(SEMICOLON, ";", nil, 1),
				"Expect '.' after 'super'.")}},
	}

	assert := assert.New(t)
	for _, tc := range testCases {
		var out strings.Builder
		report := NewSimpleReporter(&out)
		parse := NewParser(scanToks(tc.src), report)
		stmts := parse.Parse()

		var messages []string
		for _, e := range tc.errors {
			messages = append(messages, e.Error())
		}

		assert.Empty(stmts, tc.src)
		assert.Equal(
			fmt.Sprintf("%s\n", strings.Join(messages, "\n")),
			out.String(),
			tc.src,
		)
		assert.True(report.HadError(), tc.src)
		assert.False(report.HadRuntimeError(), tc.src)
	}
}

func TestParseInvalidAssignmentTargetKeepsGoing(t *testing.T) {
	report := newMockReporter()
	parse := NewParser(scanToks("1 = 2;"), report)
	stmts := parse.Parse()

	assert := assert.New(t)
	assert.True(report.HadError())
	assert.Equal(
		[]error{NewParseError(
			NewToken(EQUAL, "=", nil, 1), "Invalid assignment target.")},
		report.errors,
	)
	// the left-hand side survives as an expression statement
	assert.Equal([]Stmt{NewExprStmt(NewLiteralExpr(1.0))}, stmts)
}
