// Package compiler is the flattening layer of the application. It walks a
// parameter tree in canonical order, partitions a single free-vector
// placeholder into per-leaf slices, installs transformed and reshaped
// slices as each leaf's live expression, and invokes the model's
// graph-building extension point against those live values.
//
// The result is a Compiled bundle that the evaluator can run any number of
// times without touching the tree again, until a structural mutation
// invalidates it.
package compiler

import (
	"fmt"

	"github.com/vk/paramtree/internal/exprgraph"
	"github.com/vk/paramtree/internal/tree"
)

// FreePlaceholderName is the name of the flat free-state placeholder.
const FreePlaceholderName = "free"

// BuildFunc is the model-author extension point. It runs during
// compilation with every leaf's live expression installed, and must return
// the scalar natural objective (a log-likelihood-like quantity to be
// maximized).
type BuildFunc func(g *exprgraph.Graph, root *tree.Container) (*exprgraph.Node, error)

// Segment records where one free leaf lives inside the flat vector.
type Segment struct {
	Path      string
	Offset    int
	Size      int
	Shape     exprgraph.Shape
	Transform string
}

// Compiled is the cached symbolic computation built from a tree's current
// structure. It stays valid until the tree's generation changes.
type Compiled struct {
	Graph *exprgraph.Graph
	// Free is the flat free-state placeholder, nil when the tree has no
	// free parameters.
	Free *exprgraph.Node
	// Data maps each DataSlot's path to its placeholder.
	Data map[string]*exprgraph.Node
	// DataShapes mirrors Data with the declared shapes, for binding checks.
	DataShapes map[string]exprgraph.Shape
	// Objective is the scalar natural objective, priors included.
	Objective *exprgraph.Node
	// Layout is the exact partition of [0, FreeDim) into per-leaf slices.
	Layout []Segment
	// FreeDim is the total free dimension the layout partitions.
	FreeDim int
	// Generation is the tree generation this graph was compiled at.
	Generation uint64
}

// Compile walks root, builds the free-vector partition and the data
// placeholders, runs build with live values installed, and folds prior
// densities (with their log-Jacobian corrections) into the objective.
// Live expressions are cleared again on every exit path.
func Compile(root *tree.Container, build BuildFunc) (compiled *Compiled, err error) {
	if build == nil {
		return nil, fmt.Errorf("compile: build function must not be nil")
	}
	defer clearLive(root)
	defer exprgraph.RecoverBuildError(&err)

	params := tree.SortedParams(root)
	for _, p := range params {
		if len(p.Value()) != p.Shape().Size() {
			return nil, &tree.ShapeError{Path: tree.Path(p), Want: p.Shape(), Got: len(p.Value())}
		}
	}

	freeParams := tree.FreeParams(root)
	freeDim := 0
	for _, p := range freeParams {
		freeDim += p.Size()
	}

	g := exprgraph.New()
	c := &Compiled{
		Graph:      g,
		Data:       make(map[string]*exprgraph.Node),
		DataShapes: make(map[string]exprgraph.Shape),
		FreeDim:    freeDim,
		Generation: tree.Generation(root),
	}

	if freeDim > 0 {
		c.Free = g.Placeholder(FreePlaceholderName, exprgraph.Shape{freeDim})
	}

	// The cumulative offsets partition [0, freeDim) exactly: no gaps, no
	// overlaps. freeSlices keeps the raw per-leaf slice nodes around for
	// the log-Jacobian terms below.
	freeSlices := make(map[*tree.Param]*exprgraph.Node, len(freeParams))
	offset := 0
	for _, p := range freeParams {
		size := p.Size()
		slice := g.Slice(c.Free, offset, offset+size)
		freeSlices[p] = slice
		live := p.Transform().Build(g, slice)
		if shape := p.Shape(); !live.Shape().Equal(shape) {
			live = g.Reshape(live, shape)
		}
		p.SetLive(live)
		c.Layout = append(c.Layout, Segment{
			Path:      tree.Path(p),
			Offset:    offset,
			Size:      size,
			Shape:     p.Shape(),
			Transform: p.Transform().Name(),
		})
		offset += size
	}

	// Fixed leaves participate in graph building as constants.
	for _, p := range params {
		if p.Fixed() {
			p.SetLive(g.Const(p.Value(), p.Shape()))
		}
	}

	for _, d := range tree.DataSlots(root) {
		path := tree.Path(d)
		ph := g.Placeholder(path, d.Shape())
		d.SetLive(ph)
		c.Data[path] = ph
		c.DataShapes[path] = d.Shape()
	}

	objective, err := build(g, root)
	if err != nil {
		return nil, fmt.Errorf("compile: build graph: %w", err)
	}
	if objective == nil {
		return nil, fmt.Errorf("compile: build function returned no objective")
	}
	if objective.Shape().Size() != 1 {
		return nil, fmt.Errorf("compile: objective must be scalar, got shape %s",
			objective.Shape())
	}

	// Priors are summed over the full traversal, fixed leaves included. A
	// free leaf with a prior additionally gets the log-Jacobian of its
	// transform, since its density lives in constrained space while the
	// optimizer moves in free space.
	for _, p := range params {
		pr := p.Prior()
		if pr == nil {
			continue
		}
		objective = g.Add(objective, pr.Build(g, p.Live()))
		if !p.Fixed() {
			objective = g.Add(objective, p.Transform().BuildLogJacobian(g, freeSlices[p]))
		}
	}

	c.Objective = objective
	return c, nil
}

// Stale reports whether the tree has structurally changed since this graph
// was compiled.
func (c *Compiled) Stale(root *tree.Container) bool {
	return tree.Generation(root) != c.Generation
}

// clearLive removes every live expression under root. It runs on all exit
// paths of Compile so that no stale symbolic reference survives the scope.
func clearLive(root *tree.Container) {
	tree.Walk(root, func(n tree.Node) {
		switch v := n.(type) {
		case *tree.Param:
			v.ClearLive()
		case *tree.DataSlot:
			v.ClearLive()
		}
	})
}
