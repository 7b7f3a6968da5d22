package tree

import (
	"github.com/vk/paramtree/internal/exprgraph"
	"github.com/vk/paramtree/internal/prior"
	"github.com/vk/paramtree/internal/transform"
)

// Param is a trainable leaf. It holds the authoritative constrained value
// as a flat buffer plus a shape, the transform that maps it to and from
// free space, an optional prior, and a fixed flag.
//
// During an active compile scope the leaf additionally carries a live
// symbolic expression; graph-building logic reads the live expression in
// place of the raw value. The compiler guarantees the live expression is
// cleared again on every exit path.
type Param struct {
	name   string
	parent *Container

	value []float64
	shape exprgraph.Shape
	trans transform.Transform
	pr    prior.Prior
	fixed bool

	live *exprgraph.Node
}

// NewParam creates a detached Param with the given constrained values and
// shape. The transform defaults to identity. A ShapeError is returned when
// the value count disagrees with the shape.
func NewParam(values []float64, shape exprgraph.Shape) (*Param, error) {
	if err := shape.Validate(); err != nil {
		return nil, &ShapeError{Want: shape, Got: len(values)}
	}
	if len(values) != shape.Size() {
		return nil, &ShapeError{Want: shape, Got: len(values)}
	}
	v := make([]float64, len(values))
	copy(v, values)
	return &Param{value: v, shape: shape.Clone(), trans: transform.Identity}, nil
}

// Name returns the param's key in its parent container.
func (p *Param) Name() string { return p.name }

// Parent returns the owning container, or nil when detached.
func (p *Param) Parent() *Container { return p.parent }

func (p *Param) setParent(parent *Container, name string) {
	p.parent = parent
	p.name = name
}

// Shape returns the declared shape of the value.
func (p *Param) Shape() exprgraph.Shape { return p.shape.Clone() }

// Size returns the flattened element count of the value.
func (p *Param) Size() int { return p.shape.Size() }

// Value returns a copy of the constrained value as a flat buffer.
func (p *Param) Value() []float64 {
	out := make([]float64, len(p.value))
	copy(out, p.value)
	return out
}

// SetValue replaces the constrained value. The replacement must match the
// declared shape's flattened size; assignment is shape-preserving.
func (p *Param) SetValue(values []float64) error {
	if len(values) != p.shape.Size() {
		return &ShapeError{Path: Path(p), Want: p.shape, Got: len(values)}
	}
	copy(p.value, values)
	return nil
}

// Transform returns the free/constrained bijection, identity by default.
func (p *Param) Transform() transform.Transform { return p.trans }

// SetTransform replaces the param's transform. A nil transform resets to
// identity. This is a structural change: it invalidates compiled graphs.
func (p *Param) SetTransform(t transform.Transform) {
	if t == nil {
		t = transform.Identity
	}
	p.trans = t
	bump(p)
}

// Prior returns the prior over the constrained value, or nil.
func (p *Param) Prior() prior.Prior { return p.pr }

// SetPrior attaches a prior density over the constrained value. This is a
// structural change: it invalidates compiled graphs.
func (p *Param) SetPrior(pr prior.Prior) {
	p.pr = pr
	bump(p)
}

// Fixed reports whether the param is excluded from the free state.
func (p *Param) Fixed() bool { return p.fixed }

// SetFixed includes or excludes the param from the free state. This is a
// structural change: it invalidates compiled graphs and shifts the slice
// offsets of every subsequent free leaf.
func (p *Param) SetFixed(fixed bool) {
	if p.fixed == fixed {
		return
	}
	p.fixed = fixed
	bump(p)
}

// Live returns the symbolic expression standing in for this param during
// an active compile scope, or nil outside one.
func (p *Param) Live() *exprgraph.Node { return p.live }

// SetLive installs the live expression. Only the compiler calls this.
func (p *Param) SetLive(n *exprgraph.Node) { p.live = n }

// ClearLive removes the live expression at the end of a compile scope.
func (p *Param) ClearLive() { p.live = nil }
