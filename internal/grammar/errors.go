package grammar

import (
	"errors"
	"fmt"
)

// ErrSyntax is the kind of every parse failure returned by this package.
var ErrSyntax = errors.New("syntax error")

// SyntaxError describes where and why parsing failed.
type SyntaxError struct {
	Offset int    // 0-indexed character offset in the original input
	Char   rune   // Offending character, 0 at end of input
	Msg    string // What was expected or found
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Char == 0 {
		return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("syntax error at offset %d (%q): %s", e.Offset, e.Char, e.Msg)
}

// Unwrap returns ErrSyntax so callers can use errors.Is.
func (e *SyntaxError) Unwrap() error { return ErrSyntax }
