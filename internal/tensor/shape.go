package tensor

import "fmt"

// Shape represents the dimension sizes of a tensor, one entry per index label.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int64 {
	n := int64(1) // Scalar has 1 element
	for _, dim := range s {
		n *= int64(dim)
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Clone returns a copy of the shape. A nil shape stays nil.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}
