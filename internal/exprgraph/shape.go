package exprgraph

import (
	"fmt"
	"strings"
)

// Shape describes the dimensions of a value. A nil or empty Shape is a
// scalar with a flattened size of one.
type Shape []int

// Size returns the flattened element count: the product of all dimensions,
// or 1 for a scalar.
func (s Shape) Size() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Equal reports whether two shapes have identical dimensions. A scalar
// (empty) shape only equals another scalar shape; it does not equal [1].
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// String renders the shape as "(2, 1)", with "()" for a scalar.
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Validate returns an error if any dimension is non-positive.
func (s Shape) Validate() error {
	for i, d := range s {
		if d <= 0 {
			return fmt.Errorf("dimension %d of shape %s must be positive", i, s)
		}
	}
	return nil
}
