package lox

import (
	"fmt"
	"strings"
)

// AstPrinter renders an expression tree in a parenthesized prefix notation.
// It is mainly a debugging aid for the parser.
type AstPrinter struct{}

func (printer *AstPrinter) Print(expr Expr) string {
	s, _ := expr.Accept(printer)
	return fmt.Sprintf("%v", s)
}

func (printer *AstPrinter) VisitAssignExpr(expr *AssignExpr) (interface{}, error) {
	return printer.parenthesize("= "+expr.Name.Lexeme, expr.Val), nil
}

func (printer *AstPrinter) VisitBinaryExpr(expr *BinaryExpr) (interface{}, error) {
	return printer.parenthesize(expr.Op.Lexeme, expr.Lhs, expr.Rhs), nil
}

func (printer *AstPrinter) VisitCallExpr(expr *CallExpr) (interface{}, error) {
	exprs := append([]Expr{expr.Callee}, expr.Args...)
	return printer.parenthesize("call", exprs...), nil
}

func (printer *AstPrinter) VisitFunctionExpr(expr *FunctionExpr) (interface{}, error) {
	params := make([]string, 0, len(expr.Params))
	for _, param := range expr.Params {
		params = append(params, param.Lexeme)
	}
	return fmt.Sprintf("(fun (%s))", strings.Join(params, " ")), nil
}

func (printer *AstPrinter) VisitGetExpr(expr *GetExpr) (interface{}, error) {
	return printer.parenthesize("get "+expr.Name.Lexeme, expr.Obj), nil
}

func (printer *AstPrinter) VisitGroupExpr(expr *GroupExpr) (interface{}, error) {
	return printer.parenthesize("group", expr.Expr), nil
}

func (printer *AstPrinter) VisitLiteralExpr(expr *LiteralExpr) (interface{}, error) {
	if _, isStr := expr.Val.(string); isStr {
		return fmt.Sprintf("%q", expr.Val), nil
	}
	return stringify(expr.Val), nil
}

func (printer *AstPrinter) VisitLogicalExpr(expr *LogicalExpr) (interface{}, error) {
	return printer.parenthesize(expr.Op.Lexeme, expr.Lhs, expr.Rhs), nil
}

func (printer *AstPrinter) VisitSetExpr(expr *SetExpr) (interface{}, error) {
	return printer.parenthesize("set "+expr.Name.Lexeme, expr.Obj, expr.Val), nil
}

func (printer *AstPrinter) VisitSuperExpr(expr *SuperExpr) (interface{}, error) {
	return fmt.Sprintf("(super %s)", expr.Method.Lexeme), nil
}

func (printer *AstPrinter) VisitTernaryExpr(expr *TernaryExpr) (interface{}, error) {
	return printer.parenthesize("?:", expr.Cond, expr.IfTrue, expr.IfFalse), nil
}

func (printer *AstPrinter) VisitThisExpr(expr *ThisExpr) (interface{}, error) {
	return "this", nil
}

func (printer *AstPrinter) VisitUnaryExpr(expr *UnaryExpr) (interface{}, error) {
	return printer.parenthesize(expr.Op.Lexeme, expr.Expr), nil
}

func (printer *AstPrinter) VisitVarExpr(expr *VarExpr) (interface{}, error) {
	return expr.Name.Lexeme, nil
}

func (printer *AstPrinter) parenthesize(name string, exprs ...Expr) string {
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(name)
	for _, expr := range exprs {
		s, _ := expr.Accept(printer)
		sb.WriteString(" ")
		sb.WriteString(fmt.Sprintf("%v", s))
	}
	sb.WriteString(")")
	return sb.String()
}
