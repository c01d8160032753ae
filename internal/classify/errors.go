package classify

import (
	"errors"
	"fmt"
)

// Classification failures.
var (
	// ErrFaultyContraction means the three label sequences do not describe a
	// valid binary contraction.
	ErrFaultyContraction = errors.New("contraction is faulty")

	// ErrInternal marks a broken classifier invariant. It never occurs for
	// well-formed input.
	ErrInternal = errors.New("internal classification error")
)

// Error describes a classification failure for a single label.
type Error struct {
	Kind  error  // ErrFaultyContraction or ErrInternal
	Label string // Label being classified, may be empty
	Msg   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: label %q: %s", e.Kind, e.Label, e.Msg)
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error { return e.Kind }

func faultyf(label, format string, args ...any) error {
	return &Error{Kind: ErrFaultyContraction, Label: label, Msg: fmt.Sprintf(format, args...)}
}

func internalf(label, format string, args ...any) error {
	return &Error{Kind: ErrInternal, Label: label, Msg: fmt.Sprintf(format, args...)}
}
