package main

import (
	"fmt"

	"github.com/lox-lang/glox/internal/lox"
)

func main() {
	expression := lox.NewTernaryExpr(
		lox.NewBinaryExpr(
			lox.NewToken(lox.GREATER, ">", nil, 1),
			lox.NewVarExpr(lox.NewToken(lox.IDENTIFIER, "x", nil, 1)),
			lox.NewLiteralExpr(float64(0)),
		),
		lox.NewUnaryExpr(
			lox.NewToken(lox.MINUS, "-", nil, 1),
			lox.NewLiteralExpr(float64(123)),
		),
		lox.NewGroupExpr(lox.NewLiteralExpr(45.67)),
	)

	printer := lox.AstPrinter{}
	fmt.Println(printer.Print(expression))
}
