// Package model ties the tree, compiler, and evaluator together. A Model
// is the root container plus the compiled-graph cache and the
// graph-building extension point; it exposes the optimizer-facing
// callback.
package model

import (
	"fmt"

	"github.com/vk/paramtree/internal/compiler"
	"github.com/vk/paramtree/internal/evaluator"
	"github.com/vk/paramtree/internal/tree"
)

// Model is a root container with compilation and evaluation attached. The
// compiled graph cache is owned exclusively by the Model and is valid only
// while the tree structure is unchanged since the last compile; any
// structural mutation forces recompilation before the next evaluation.
//
// A Model is not safe for concurrent use; tree mutation, compilation, and
// evaluation all happen on one goroutine.
type Model struct {
	root  *tree.Container
	build compiler.BuildFunc
	cache *compiler.Compiled
}

// New creates a Model around an empty root container and the given
// graph-building function.
func New(build compiler.BuildFunc) *Model {
	return &Model{root: tree.NewContainer(), build: build}
}

// Root returns the root container for tree assembly and traversal.
func (m *Model) Root() *tree.Container { return m.root }

// SetBuild replaces the graph-building function and drops the cache.
func (m *Model) SetBuild(build compiler.BuildFunc) {
	m.build = build
	m.cache = nil
}

// Compile returns the cached compiled graph, rebuilding it first if the
// tree has structurally changed since the last compile.
func (m *Model) Compile() (*compiler.Compiled, error) {
	if m.cache != nil && !m.cache.Stale(m.root) {
		return m.cache, nil
	}
	compiled, err := compiler.Compile(m.root, m.build)
	if err != nil {
		return nil, err
	}
	m.cache = compiled
	return compiled, nil
}

// FreeState marshals the current parameter values into the flat vector an
// optimizer should start from.
func (m *Model) FreeState() ([]float64, error) {
	return tree.FreeState(m.root)
}

// SetState writes a flat optimizer vector back into the parameter values.
func (m *Model) SetState(flat []float64) error {
	return tree.SetState(m.root, flat)
}

// Objective is the optimizer-facing callback: given a flat free-state
// vector and data bindings it returns the value to minimize and its
// gradient. A stale cache is recompiled transparently; stale results are
// never served.
func (m *Model) Objective(flat []float64, data map[string][]float64) (float64, []float64, error) {
	compiled, err := m.Compile()
	if err != nil {
		return 0, nil, err
	}
	return evaluator.Evaluate(compiled, flat, data)
}

// Bindings collects the default values of every data slot in the tree,
// keyed by path, for use as evaluator bindings. It fails if any slot has
// no default.
func (m *Model) Bindings() (map[string][]float64, error) {
	out := make(map[string][]float64)
	for _, d := range tree.DataSlots(m.root) {
		v := d.Value()
		if v == nil {
			return nil, fmt.Errorf("data slot %q has no value to bind", tree.Path(d))
		}
		out[tree.Path(d)] = v
	}
	return out, nil
}
