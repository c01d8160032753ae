package tree

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidPath    = errors.New("invalid contraction path")
	ErrStructure      = errors.New("invalid tree structure")
	ErrNodeNotFound   = errors.New("node not found")
	ErrNotPermutation = errors.New("not a permutation node")
	ErrInvalidIndices = errors.New("invalid index sequence")
	ErrSizeMismatch   = errors.New("index size mismatch")
)

// PathError reports a contraction path step that cannot be applied.
type PathError struct {
	Step int    // 0-indexed position in the path
	Pair [2]int // Offending pair of operand positions
	Live int    // Number of live operands before the step
	Msg  string
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s: step %d %v with %d live operands: %s", ErrInvalidPath, e.Step, e.Pair, e.Live, e.Msg)
}

// Unwrap returns ErrInvalidPath.
func (e *PathError) Unwrap() error { return ErrInvalidPath }
