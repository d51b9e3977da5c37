package lox

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

// resolveSrc runs the scanner, the parser, and the resolver on the given
// source and returns the interpreter whose side table was filled along with
// the reporter that collected the errors.
func resolveSrc(src string) (*Interpreter, *mockReporter) {
	report := newMockReporter()
	interpreter := NewInterpreter(io.Discard, report)

	scan := NewScanner([]rune(src), report)
	parse := NewParser(scan.Scan(), report)
	stmts := parse.Parse()
	if report.HadError() {
		return interpreter, report
	}

	resolver := NewResolver(interpreter, report)
	resolver.Resolve(stmts)
	return interpreter, report
}

func TestResolveDepths(t *testing.T) {
	testCases := []struct {
		src    string
		depths []int
	}{
		// globals are not tracked
		{"var a = 1; print a;", []int{}},
		// read in the scope that declares the variable
		{"{ var a = 1; print a; }", []int{0}},
		// read one scope below the declaration
		{"{ var a = 1; { print a; } }", []int{1}},
		// read through a function scope and a block scope
		{"{ var a = 1; fun f() { print a; } f(); }", []int{0, 1}},
	}

	assert := assert.New(t)
	for _, tc := range testCases {
		interpreter, report := resolveSrc(tc.src)

		depths := make([]int, 0)
		for _, depth := range interpreter.locals {
			depths = append(depths, depth)
		}

		assert.False(report.HadError(), tc.src)
		assert.ElementsMatch(tc.depths, depths, tc.src)
	}
}

func TestResolveWithErrors(t *testing.T) {
	testCases := []struct {
		src    string
		errors []error
	}{
		{"return 1;",
			[]error{NewResolveError(
				NewToken(RETURN, "return", nil, 1),
				"Can't return from top-level code.")}},

		{"{ var a = a; }",
			[]error{NewResolveError(
				tokIdent("a", 1),
				"Can't read local variable in its own initializer.")}},

		{"{ var a = 1; var a = 2; print a; }",
			[]error{NewResolveError(
				tokIdent("a", 1),
				"Already a variable with this name in this scope.")}},

		{"fun f(a) { var a = 1; print a; }",
			[]error{NewResolveError(
				tokIdent("a", 1),
				"Already a variable with this name in this scope.")}},

		{"{ var unused = 1; }",
			[]error{NewResolveError(
				tokIdent("unused", 1),
				"Unused local variable.")}},

		{"print this;",
			[]error{NewResolveError(
				NewToken(THIS, "this", nil, 1),
				"Can't use 'this' outside of a class.")}},

		{"fun f() { print this; }",
			[]error{NewResolveError(
				NewToken(THIS, "this", nil, 1),
				"Can't use 'this' outside of a class.")}},

		{"class A { class s() { print this; } }",
			[]error{NewResolveError(
				NewToken(THIS, "this", nil, 1),
				"Can't use 'this' in a static method.")}},

		{"print super.m;",
			[]error{NewResolveError(
				NewToken(SUPER, "super", nil, 1),
				"Can't use 'super' outside of a class.")}},

		{"class A { m() { return super.m(); } }",
			[]error{NewResolveError(
				NewToken(SUPER, "super", nil, 1),
				"Can't use 'super' in a class with no superclass.")}},

		{"class A < A {}",
			[]error{NewResolveError(
				tokIdent("A", 1),
				"A class can't inherit from itself.")}},

		{"break;",
			[]error{NewResolveError(
				NewToken(BREAK, "break", nil, 1),
				"Can't use 'break' outside a loop.")}},

		{"while (true) { fun f() { break; } f(); }",
			[]error{NewResolveError(
				NewToken(BREAK, "break", nil, 1),
				"Can't use 'break' outside a loop.")}},

		{"class A { init() { return 1; } }",
			[]error{NewResolveError(
				NewToken(RETURN, "return", nil, 1),
				"Can't return a value from an initializer.")}},
	}

	assert := assert.New(t)
	for _, tc := range testCases {
		_, report := resolveSrc(tc.src)

		assert.Equal(tc.errors, report.errors, tc.src)
		assert.True(report.HadError(), tc.src)
		assert.False(report.HadRuntimeError(), tc.src)
	}
}

func TestResolveAllowsReturnWithoutValueInInitializer(t *testing.T) {
	_, report := resolveSrc("class A { init() { return; } }")

	assert := assert.New(t)
	assert.False(report.HadError())
}

func TestResolveAllowsBreakInsideNestedBlocks(t *testing.T) {
	_, report := resolveSrc("while (true) { if (true) { break; } }")

	assert := assert.New(t)
	assert.False(report.HadError())
}
