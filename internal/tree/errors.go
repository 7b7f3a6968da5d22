package tree

import (
	"fmt"

	"github.com/vk/paramtree/internal/exprgraph"
)

// ShapeError reports a value whose flattened size disagrees with the shape
// declared for it.
type ShapeError struct {
	Path string
	Want exprgraph.Shape
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape mismatch at %q: declared %s (size %d), got %d values",
		e.Path, e.Want, e.Want.Size(), e.Got)
}

// LengthMismatch reports a flat state vector whose length disagrees with
// the tree's total free dimension.
type LengthMismatch struct {
	Want, Got int
}

func (e *LengthMismatch) Error() string {
	return fmt.Sprintf("flat state length mismatch: tree has %d free dimensions, got %d values",
		e.Want, e.Got)
}

// StructuralMismatch reports a tree whose shape is invalid for the
// requested operation, such as an optimizer-facing call against a tree
// with no free parameters.
type StructuralMismatch struct {
	Reason string
}

func (e *StructuralMismatch) Error() string {
	return "structural mismatch: " + e.Reason
}

// StructuralError reports a violated tree invariant, such as a cycle in
// parent links. It indicates a programming error and is not recoverable.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return "structural error: " + e.Reason
}
