package registry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/paramtree/internal/compiler"
	"github.com/vk/paramtree/internal/exprgraph"
	"github.com/vk/paramtree/internal/transform"
	"github.com/vk/paramtree/internal/tree"
)

func TestTransformSpecs(t *testing.T) {
	r := New()

	t.Run("bare names", func(t *testing.T) {
		for _, name := range []string{"identity", "exp", "softplus", "logistic"} {
			tr, err := r.Transform(name)
			require.NoError(t, err, name)
			assert.Equal(t, name, tr.Name())
		}
	})

	t.Run("logistic with bounds", func(t *testing.T) {
		tr, err := r.Transform("logistic(-2, 3)")
		require.NoError(t, err)
		l, ok := tr.(transform.Logistic)
		require.True(t, ok)
		assert.Equal(t, -2.0, l.Lo)
		assert.Equal(t, 3.0, l.Hi)
	})

	t.Run("bad specs", func(t *testing.T) {
		_, err := r.Transform("warp")
		assert.ErrorContains(t, err, "unknown transform")

		_, err = r.Transform("logistic(1)")
		assert.ErrorContains(t, err, "zero or two arguments")

		_, err = r.Transform("logistic(3, 1)")
		assert.ErrorContains(t, err, "lo < hi")

		_, err = r.Transform("exp(2")
		assert.ErrorContains(t, err, "missing closing parenthesis")

		_, err = r.Transform("exp(two)")
		assert.ErrorContains(t, err, "not a number")
	})
}

func TestPriorSpecs(t *testing.T) {
	r := New()

	pr, err := r.Prior("normal(1, 2)")
	require.NoError(t, err)
	assert.Equal(t, "normal", pr.Name())

	pr, err = r.Prior("lognormal")
	require.NoError(t, err)
	assert.Equal(t, "lognormal", pr.Name())

	_, err = r.Prior("normal(0, -1)")
	assert.ErrorContains(t, err, "must be positive")

	_, err = r.Prior("cauchy(0, 1)")
	assert.ErrorContains(t, err, "unknown prior")
}

func TestObjectiveLookup(t *testing.T) {
	r := New()

	_, err := r.Objective("gaussian_loglik")
	require.NoError(t, err)

	_, err = r.Objective("elbo")
	assert.ErrorContains(t, err, "unknown objective")

	custom := func(g *exprgraph.Graph, root *tree.Container) (*exprgraph.Node, error) {
		return g.Scalar(0), nil
	}
	require.NoError(t, r.RegisterObjective("flat", custom))
	assert.ErrorContains(t, r.RegisterObjective("flat", custom), "already registered")
}

func TestGaussianLoglik(t *testing.T) {
	r := New()
	build, err := r.Objective("gaussian_loglik")
	require.NoError(t, err)

	root := tree.NewContainer()
	mean, err := tree.NewParam([]float64{2}, nil)
	require.NoError(t, err)
	require.NoError(t, root.Attach("mean", mean))

	variance, err := tree.NewParam([]float64{4}, exprgraph.Shape{1})
	require.NoError(t, err)
	variance.SetTransform(transform.Exp{})
	require.NoError(t, root.Attach("variance", variance))

	y, err := tree.NewDataSlot(exprgraph.Shape{2})
	require.NoError(t, err)
	require.NoError(t, root.Attach("y", y))

	c, err := compiler.Compile(root, build)
	require.NoError(t, err)

	state, err := tree.FreeState(root)
	require.NoError(t, err)
	data := []float64{1, 3}

	val, _, err := c.Graph.Run(c.Objective, c.Free, exprgraph.Bindings{
		c.Free:      state,
		c.Data["y"]: data,
	})
	require.NoError(t, err)

	// Hand-computed: n=2, mean=2, variance=4, residuals {-1, 1}.
	want := -math.Log(2*math.Pi) - math.Log(4.0) - 2.0/8.0
	assert.InDelta(t, want, val, 1e-10)
}

func TestGaussianLoglikMissingNodes(t *testing.T) {
	r := New()
	build, err := r.Objective("gaussian_loglik")
	require.NoError(t, err)

	root := tree.NewContainer()
	mean, err := tree.NewParam([]float64{0}, nil)
	require.NoError(t, err)
	require.NoError(t, root.Attach("mean", mean))

	_, err = compiler.Compile(root, build)
	assert.ErrorContains(t, err, `no param named "variance"`)
}

func TestGaussianLoglikNestedVariance(t *testing.T) {
	r := New()
	build, err := r.Objective("gaussian_loglik")
	require.NoError(t, err)

	root := tree.NewContainer()
	mean, err := tree.NewParam([]float64{2}, nil)
	require.NoError(t, err)
	require.NoError(t, root.Attach("mean", mean))

	noise := tree.NewContainer()
	require.NoError(t, root.Attach("noise", noise))
	variance, err := tree.NewParam([]float64{4}, nil)
	require.NoError(t, err)
	require.NoError(t, noise.Attach("variance", variance))

	y, err := tree.NewDataSlot(exprgraph.Shape{2})
	require.NoError(t, err)
	require.NoError(t, root.Attach("y", y))

	c, err := compiler.Compile(root, build)
	require.NoError(t, err)

	state, err := tree.FreeState(root)
	require.NoError(t, err)
	val, _, err := c.Graph.Run(c.Objective, c.Free, exprgraph.Bindings{
		c.Free:      state,
		c.Data["y"]: []float64{1, 3},
	})
	require.NoError(t, err)

	// Same model as above, so the nesting must not change the value.
	want := -math.Log(2*math.Pi) - math.Log(4.0) - 2.0/8.0
	assert.InDelta(t, want, val, 1e-10)

	t.Run("duplicate leaf names are ambiguous", func(t *testing.T) {
		dup, err := tree.NewParam([]float64{1}, nil)
		require.NoError(t, err)
		extra := tree.NewContainer()
		require.NoError(t, root.Attach("extra", extra))
		require.NoError(t, extra.Attach("variance", dup))

		_, err = compiler.Compile(root, build)
		assert.ErrorContains(t, err, `param "variance" is ambiguous`)
	})
}
