// Package prior provides the distributions a parameter may carry over its
// constrained value. A prior contributes its log density to the model
// objective, both numerically and as graph nodes during compilation.
package prior

import (
	"math"

	"github.com/vk/paramtree/internal/exprgraph"
)

const logTwoPi = 1.8378770664093453

// Prior is a density over a parameter's constrained value. LogProb sums the
// elementwise log density over all elements; Build is its symbolic
// counterpart and must return a scalar node.
type Prior interface {
	Name() string
	LogProb(constrained []float64) float64
	Build(g *exprgraph.Graph, constrained *exprgraph.Node) *exprgraph.Node
}

// Normal is an elementwise Gaussian density with the given mean and
// standard deviation.
type Normal struct {
	Mean, Stddev float64
}

func (p Normal) Name() string { return "normal" }

func (p Normal) LogProb(constrained []float64) float64 {
	total := 0.0
	for _, y := range constrained {
		z := (y - p.Mean) / p.Stddev
		total += -0.5*logTwoPi - math.Log(p.Stddev) - 0.5*z*z
	}
	return total
}

func (p Normal) Build(g *exprgraph.Graph, constrained *exprgraph.Node) *exprgraph.Node {
	z := g.Div(g.Sub(constrained, g.Scalar(p.Mean)), g.Scalar(p.Stddev))
	perElem := g.Sub(
		g.Scalar(-0.5*logTwoPi-math.Log(p.Stddev)),
		g.Mul(g.Scalar(0.5), g.Square(z)),
	)
	return g.Sum(perElem)
}

// LogNormal is an elementwise log-normal density over strictly positive
// values: log(y) ~ Normal(Mu, Sigma).
type LogNormal struct {
	Mu, Sigma float64
}

func (p LogNormal) Name() string { return "lognormal" }

func (p LogNormal) LogProb(constrained []float64) float64 {
	total := 0.0
	for _, y := range constrained {
		ly := math.Log(y)
		z := (ly - p.Mu) / p.Sigma
		total += -0.5*logTwoPi - math.Log(p.Sigma) - ly - 0.5*z*z
	}
	return total
}

func (p LogNormal) Build(g *exprgraph.Graph, constrained *exprgraph.Node) *exprgraph.Node {
	ly := g.Log(constrained)
	z := g.Div(g.Sub(ly, g.Scalar(p.Mu)), g.Scalar(p.Sigma))
	perElem := g.Sub(
		g.Sub(g.Scalar(-0.5*logTwoPi-math.Log(p.Sigma)), ly),
		g.Mul(g.Scalar(0.5), g.Square(z)),
	)
	return g.Sum(perElem)
}
