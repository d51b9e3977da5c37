package lox

import "fmt"

// ScanError is reported when the scanner meets a character sequence that does
// not form a valid lexeme. It only knows the line it occured on.
type ScanError struct {
	line    int
	message string
}

// NewScanError creates a new scan error
func NewScanError(line int, message string) error {
	return &ScanError{line, message}
}

func (err *ScanError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", err.line, err.message)
}

// ParseError wraps the error message produced by the parser with the token
// where the error occured.
type ParseError struct {
	token   *Token
	message string
}

// NewParseError creates a new parse error
func NewParseError(token *Token, message string) error {
	return &ParseError{token, message}
}

func (err *ParseError) Error() string {
	return formatStaticError(err.token, err.message)
}

// ResolveError wraps the error message produced by the resolver with the
// token where the error occured.
type ResolveError struct {
	token   *Token
	message string
}

// NewResolveError creates a new resolve error
func NewResolveError(token *Token, message string) error {
	return &ResolveError{token, message}
}

func (err *ResolveError) Error() string {
	return formatStaticError(err.token, err.message)
}

// RuntimeError wraps the error message returned by the interpreter with the
// token whose evaluation caused the error.
type RuntimeError struct {
	token   *Token
	message string
}

// NewRuntimeError creates a new runtime error
func NewRuntimeError(token *Token, message string) error {
	return &RuntimeError{token, message}
}

func (err *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", err.message, err.token.Line)
}

func formatStaticError(token *Token, message string) string {
	if token.Typ == EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", token.Line, message)
	}
	return fmt.Sprintf(
		"[line %d] Error at '%s': %s",
		token.Line,
		token.Lexeme,
		message,
	)
}
