package tree

import "github.com/vk/paramtree/internal/exprgraph"

// DataSlot is a leaf that feeds external data into the compiled graph. It
// has no transform, no prior, and never contributes to the free dimension;
// the compiler gives it its own placeholder and the evaluator binds a
// concrete array to it per call.
type DataSlot struct {
	name   string
	parent *Container

	shape exprgraph.Shape
	// value is an optional default binding, nil when the slot is declared
	// shape-only.
	value []float64

	live *exprgraph.Node
}

// NewDataSlot creates a detached DataSlot with the given shape and no
// default value.
func NewDataSlot(shape exprgraph.Shape) (*DataSlot, error) {
	if err := shape.Validate(); err != nil {
		return nil, &ShapeError{Want: shape, Got: 0}
	}
	return &DataSlot{shape: shape.Clone()}, nil
}

// NewDataSlotWithValue creates a detached DataSlot carrying a default
// binding. The value must match the shape's flattened size.
func NewDataSlotWithValue(values []float64, shape exprgraph.Shape) (*DataSlot, error) {
	d, err := NewDataSlot(shape)
	if err != nil {
		return nil, err
	}
	if len(values) != shape.Size() {
		return nil, &ShapeError{Want: shape, Got: len(values)}
	}
	d.value = make([]float64, len(values))
	copy(d.value, values)
	return d, nil
}

// Name returns the slot's key in its parent container.
func (d *DataSlot) Name() string { return d.name }

// Parent returns the owning container, or nil when detached.
func (d *DataSlot) Parent() *Container { return d.parent }

func (d *DataSlot) setParent(parent *Container, name string) {
	d.parent = parent
	d.name = name
}

// Shape returns the declared shape of the slot.
func (d *DataSlot) Shape() exprgraph.Shape { return d.shape.Clone() }

// Value returns a copy of the default binding, or nil when none was set.
func (d *DataSlot) Value() []float64 {
	if d.value == nil {
		return nil
	}
	out := make([]float64, len(d.value))
	copy(out, d.value)
	return out
}

// SetValue replaces the default binding. Bindings passed to the evaluator
// take precedence; changing the default is not a structural change.
func (d *DataSlot) SetValue(values []float64) error {
	if len(values) != d.shape.Size() {
		return &ShapeError{Path: Path(d), Want: d.shape, Got: len(values)}
	}
	if d.value == nil {
		d.value = make([]float64, d.shape.Size())
	}
	copy(d.value, values)
	return nil
}

// Live returns the slot's placeholder during an active compile scope.
func (d *DataSlot) Live() *exprgraph.Node { return d.live }

// SetLive installs the placeholder. Only the compiler calls this.
func (d *DataSlot) SetLive(n *exprgraph.Node) { d.live = n }

// ClearLive removes the placeholder at the end of a compile scope.
func (d *DataSlot) ClearLive() { d.live = nil }
