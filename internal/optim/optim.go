// Package optim is a minimal stand-in for the external numerical
// optimizer: fixed-step gradient descent against the standard callback
// contract. It exists to drive models end to end from the command line;
// anything smarter is expected to live outside this module and consume the
// same Func signature.
package optim

import (
	"context"
	"fmt"

	"github.com/vk/paramtree/internal/ctxlog"
)

// Func is the callback contract an optimizer consumes: a flat free-state
// vector in, the value to minimize and its gradient out.
type Func func(flat []float64) (float64, []float64, error)

// Result summarizes one descent run.
type Result struct {
	// State is the final flat free-state vector.
	State []float64
	// Objective is the objective value at State.
	Objective float64
	// Steps is the number of gradient steps actually taken.
	Steps int
}

// Descend runs at most steps iterations of fixed-step gradient descent
// from init. It stops early when the context is cancelled or the gradient
// norm falls below tol.
func Descend(ctx context.Context, objective Func, init []float64, stepSize float64, steps int, tol float64) (*Result, error) {
	if stepSize <= 0 {
		return nil, fmt.Errorf("optim: step size must be positive, got %v", stepSize)
	}
	logger := ctxlog.FromContext(ctx)

	state := make([]float64, len(init))
	copy(state, init)

	value, grad, err := objective(state)
	if err != nil {
		return nil, fmt.Errorf("optim: initial evaluation: %w", err)
	}

	taken := 0
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(grad) != len(state) {
			return nil, fmt.Errorf("optim: gradient has %d components, state has %d",
				len(grad), len(state))
		}

		norm := 0.0
		for _, gv := range grad {
			norm += gv * gv
		}
		if norm <= tol*tol {
			logger.Debug("Gradient norm below tolerance, stopping.", "step", i, "objective", value)
			break
		}

		for j := range state {
			state[j] -= stepSize * grad[j]
		}
		value, grad, err = objective(state)
		if err != nil {
			return nil, fmt.Errorf("optim: step %d: %w", i+1, err)
		}
		taken++

		if taken%50 == 0 {
			logger.Debug("Descent progress.", "step", taken, "objective", value)
		}
	}

	return &Result{State: state, Objective: value, Steps: taken}, nil
}
