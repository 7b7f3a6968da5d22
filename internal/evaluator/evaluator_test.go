package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/paramtree/internal/compiler"
	"github.com/vk/paramtree/internal/exprgraph"
	"github.com/vk/paramtree/internal/tree"
)

// fitResidual builds -sum((y - mean)^2), a toy likelihood whose value
// depends on both the free state and the data binding.
func fitResidual(g *exprgraph.Graph, root *tree.Container) (*exprgraph.Node, error) {
	mean, err := tree.ParamAt(root, "mean")
	if err != nil {
		return nil, err
	}
	y, err := tree.DataAt(root, "y")
	if err != nil {
		return nil, err
	}
	return g.Neg(g.Sum(g.Square(g.Sub(y.Live(), mean.Live())))), nil
}

func compiledFixture(t *testing.T) (*compiler.Compiled, *tree.Container) {
	t.Helper()
	root := tree.NewContainer()

	mean, err := tree.NewParam([]float64{0}, nil)
	require.NoError(t, err)
	require.NoError(t, root.Attach("mean", mean))

	y, err := tree.NewDataSlot(exprgraph.Shape{3})
	require.NoError(t, err)
	require.NoError(t, root.Attach("y", y))

	c, err := compiler.Compile(root, fitResidual)
	require.NoError(t, err)
	return c, root
}

func TestEvaluateNegatesObjective(t *testing.T) {
	c, _ := compiledFixture(t)

	// Natural objective at mean=1 with y={1,2,3} is -(0+1+4) = -5, so the
	// optimizer-facing value is 5 and the gradient points uphill in cost.
	val, grad, err := Evaluate(c, []float64{1}, map[string][]float64{"y": {1, 2, 3}})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, val, 1e-12)
	require.Len(t, grad, 1)
	// d cost/d mean = -2 sum(y - mean) = -2*(0+1+2) = -6.
	assert.InDelta(t, -6.0, grad[0], 1e-12)
}

func TestEvaluateBindingSwapReusesGraph(t *testing.T) {
	c, _ := compiledFixture(t)
	nodesBefore := c.Graph.Len()

	v1, g1, err := Evaluate(c, []float64{0}, map[string][]float64{"y": {1, 1, 1}})
	require.NoError(t, err)
	v2, g2, err := Evaluate(c, []float64{0}, map[string][]float64{"y": {2, 2, 2}})
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2)
	assert.NotEqual(t, g1[0], g2[0])
	assert.Equal(t, nodesBefore, c.Graph.Len(), "no graph rebuilding between calls")
}

func TestEvaluateLengthMismatch(t *testing.T) {
	c, _ := compiledFixture(t)
	_, _, err := Evaluate(c, []float64{1, 2}, map[string][]float64{"y": {1, 2, 3}})
	var lm *tree.LengthMismatch
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 1, lm.Want)
	assert.Equal(t, 2, lm.Got)
}

func TestEvaluateDataErrors(t *testing.T) {
	c, _ := compiledFixture(t)

	t.Run("missing binding", func(t *testing.T) {
		_, _, err := Evaluate(c, []float64{0}, nil)
		assert.ErrorContains(t, err, `missing data binding for "y"`)
	})

	t.Run("binding shape mismatch", func(t *testing.T) {
		_, _, err := Evaluate(c, []float64{0}, map[string][]float64{"y": {1, 2}})
		var se *tree.ShapeError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "y", se.Path)
	})

	t.Run("unknown binding", func(t *testing.T) {
		_, _, err := Evaluate(c, []float64{0}, map[string][]float64{
			"y": {1, 2, 3}, "z": {1},
		})
		assert.ErrorContains(t, err, `matches no data slot`)
	})
}

func TestEvaluateZeroFreeDim(t *testing.T) {
	root := tree.NewContainer()
	p, err := tree.NewParam([]float64{1}, exprgraph.Shape{1})
	require.NoError(t, err)
	p.SetFixed(true)
	require.NoError(t, root.Attach("p", p))

	c, err := compiler.Compile(root, func(g *exprgraph.Graph, root *tree.Container) (*exprgraph.Node, error) {
		return g.Scalar(0), nil
	})
	require.NoError(t, err)

	_, _, err = Evaluate(c, nil, nil)
	var sm *tree.StructuralMismatch
	require.ErrorAs(t, err, &sm)
}
