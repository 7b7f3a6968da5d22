// Package evaluator is the numeric layer of the application: it binds a
// flat free-state vector and concrete data arrays to a compiled graph's
// placeholders, runs the graph, and answers in the exact shape an external
// optimizer's callback expects.
package evaluator

import (
	"fmt"

	"github.com/vk/paramtree/internal/compiler"
	"github.com/vk/paramtree/internal/exprgraph"
	"github.com/vk/paramtree/internal/tree"
)

// Evaluate runs the compiled graph at flat, with data keyed by DataSlot
// path. It returns the NEGATED objective and gradient: the natural
// objective is a quantity to maximize, while external optimizers minimize.
//
// Repeated calls against one Compiled with different data do not rebuild
// anything; only the numeric execution repeats.
func Evaluate(c *compiler.Compiled, flat []float64, data map[string][]float64) (float64, []float64, error) {
	if c.FreeDim == 0 {
		return 0, nil, &tree.StructuralMismatch{
			Reason: "compiled graph has no free parameters to optimize",
		}
	}
	if len(flat) != c.FreeDim {
		return 0, nil, &tree.LengthMismatch{Want: c.FreeDim, Got: len(flat)}
	}

	bindings := exprgraph.Bindings{c.Free: flat}
	for path, ph := range c.Data {
		values, ok := data[path]
		if !ok {
			return 0, nil, fmt.Errorf("evaluate: missing data binding for %q", path)
		}
		want := c.DataShapes[path]
		if len(values) != want.Size() {
			return 0, nil, &tree.ShapeError{Path: path, Want: want, Got: len(values)}
		}
		bindings[ph] = values
	}
	for path := range data {
		if _, ok := c.Data[path]; !ok {
			return 0, nil, fmt.Errorf("evaluate: binding %q matches no data slot", path)
		}
	}

	value, grad, err := c.Graph.Run(c.Objective, c.Free, bindings)
	if err != nil {
		return 0, nil, fmt.Errorf("evaluate: %w", err)
	}
	for i := range grad {
		grad[i] = -grad[i]
	}
	return -value, grad, nil
}
