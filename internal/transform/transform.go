// Package transform provides bijective maps between the unconstrained
// ("free") representation a numerical optimizer works in and the
// constrained ("model") representation a parameter is defined in.
//
// Every transform exists in two renditions that must agree: a numeric one
// used when marshalling state vectors, and a symbolic one used when the
// compiler applies the map inside an expression graph.
package transform

import (
	"math"

	"github.com/vk/paramtree/internal/exprgraph"
)

// Transform maps elementwise between free and constrained space.
//
// Forward takes free values to constrained values; Backward is its exact
// inverse up to floating-point precision. LogJacobian is the summed log of
// the absolute derivative of Forward at the given free point, needed when
// prior densities over constrained values are optimized in free space.
// Build and BuildLogJacobian are the symbolic counterparts of Forward and
// LogJacobian for use during graph construction.
type Transform interface {
	Name() string
	Forward(free []float64) []float64
	Backward(constrained []float64) []float64
	LogJacobian(free []float64) float64
	Build(g *exprgraph.Graph, free *exprgraph.Node) *exprgraph.Node
	BuildLogJacobian(g *exprgraph.Graph, free *exprgraph.Node) *exprgraph.Node
}

// Identity is the default transform for unconstrained parameters.
var Identity Transform = identity{}

type identity struct{}

func (identity) Name() string { return "identity" }

func (identity) Forward(free []float64) []float64 { return clone(free) }

func (identity) Backward(constrained []float64) []float64 { return clone(constrained) }

func (identity) LogJacobian([]float64) float64 { return 0 }

func (identity) Build(_ *exprgraph.Graph, free *exprgraph.Node) *exprgraph.Node {
	return free
}

func (identity) BuildLogJacobian(g *exprgraph.Graph, _ *exprgraph.Node) *exprgraph.Node {
	return g.Scalar(0)
}

// Exp enforces positivity through y = e^x.
type Exp struct{}

func (Exp) Name() string { return "exp" }

func (Exp) Forward(free []float64) []float64 {
	return mapElems(free, math.Exp)
}

func (Exp) Backward(constrained []float64) []float64 {
	return mapElems(constrained, math.Log)
}

func (Exp) LogJacobian(free []float64) float64 {
	// d/dx e^x = e^x, so log|J| is just the sum of the free values.
	total := 0.0
	for _, x := range free {
		total += x
	}
	return total
}

func (Exp) Build(g *exprgraph.Graph, free *exprgraph.Node) *exprgraph.Node {
	return g.Exp(free)
}

func (Exp) BuildLogJacobian(g *exprgraph.Graph, free *exprgraph.Node) *exprgraph.Node {
	return g.Sum(free)
}

// Softplus enforces positivity through y = log(1 + e^x), which is gentler
// than Exp for large free values.
type Softplus struct{}

func (Softplus) Name() string { return "softplus" }

func (Softplus) Forward(free []float64) []float64 {
	return mapElems(free, softplus)
}

func (Softplus) Backward(constrained []float64) []float64 {
	return mapElems(constrained, func(y float64) float64 {
		// Inverse of softplus: x = log(e^y - 1), rewritten for stability.
		if y > 30 {
			return y
		}
		return math.Log(math.Expm1(y))
	})
}

func (Softplus) LogJacobian(free []float64) float64 {
	total := 0.0
	for _, x := range free {
		total += math.Log(sigmoid(x))
	}
	return total
}

func (Softplus) Build(g *exprgraph.Graph, free *exprgraph.Node) *exprgraph.Node {
	return g.Softplus(free)
}

func (Softplus) BuildLogJacobian(g *exprgraph.Graph, free *exprgraph.Node) *exprgraph.Node {
	return g.Sum(g.Log(g.Sigmoid(free)))
}

// Logistic constrains values to the open interval (Lo, Hi) through
// y = lo + (hi-lo) * sigmoid(x).
type Logistic struct {
	Lo, Hi float64
}

func (l Logistic) Name() string { return "logistic" }

func (l Logistic) Forward(free []float64) []float64 {
	return mapElems(free, func(x float64) float64 {
		return l.Lo + (l.Hi-l.Lo)*sigmoid(x)
	})
}

func (l Logistic) Backward(constrained []float64) []float64 {
	return mapElems(constrained, func(y float64) float64 {
		p := (y - l.Lo) / (l.Hi - l.Lo)
		return math.Log(p) - math.Log1p(-p)
	})
}

func (l Logistic) LogJacobian(free []float64) float64 {
	total := 0.0
	for _, x := range free {
		s := sigmoid(x)
		total += math.Log(l.Hi-l.Lo) + math.Log(s) + math.Log1p(-s)
	}
	return total
}

func (l Logistic) Build(g *exprgraph.Graph, free *exprgraph.Node) *exprgraph.Node {
	width := g.Scalar(l.Hi - l.Lo)
	return g.Add(g.Scalar(l.Lo), g.Mul(width, g.Sigmoid(free)))
}

func (l Logistic) BuildLogJacobian(g *exprgraph.Graph, free *exprgraph.Node) *exprgraph.Node {
	s := g.Sigmoid(free)
	one := g.Scalar(1)
	perElem := g.Add(g.Scalar(math.Log(l.Hi-l.Lo)), g.Add(g.Log(s), g.Log(g.Sub(one, s))))
	return g.Sum(perElem)
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func mapElems(v []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = f(x)
	}
	return out
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func softplus(x float64) float64 {
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}
