package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/paramtree/internal/exprgraph"
	"github.com/vk/paramtree/internal/transform"
	"github.com/vk/paramtree/internal/tree"
)

// residualBuild is -sum((y - mean)^2) with a positivity-constrained scale
// thrown in as a penalty term, so both params matter to the gradient.
func residualBuild(g *exprgraph.Graph, root *tree.Container) (*exprgraph.Node, error) {
	mean, err := tree.ParamAt(root, "mean")
	if err != nil {
		return nil, err
	}
	scale, err := tree.ParamAt(root, "scale")
	if err != nil {
		return nil, err
	}
	y, err := tree.DataAt(root, "y")
	if err != nil {
		return nil, err
	}
	residual := g.Sum(g.Square(g.Sub(y.Live(), mean.Live())))
	penalty := g.Sum(g.Square(g.Log(scale.Live())))
	return g.Neg(g.Add(residual, penalty)), nil
}

func fixture(t *testing.T) (*Model, map[string]*tree.Param) {
	t.Helper()
	m := New(residualBuild)

	mean, err := tree.NewParam([]float64{0.5}, nil)
	require.NoError(t, err)
	require.NoError(t, m.Root().Attach("mean", mean))

	scale, err := tree.NewParam([]float64{2}, exprgraph.Shape{1})
	require.NoError(t, err)
	scale.SetTransform(transform.Exp{})
	require.NoError(t, m.Root().Attach("scale", scale))

	y, err := tree.NewDataSlotWithValue([]float64{1, 2, 3, 4}, exprgraph.Shape{4})
	require.NoError(t, err)
	require.NoError(t, m.Root().Attach("y", y))

	return m, map[string]*tree.Param{"mean": mean, "scale": scale}
}

func TestCompileCaches(t *testing.T) {
	m, _ := fixture(t)

	first, err := m.Compile()
	require.NoError(t, err)
	second, err := m.Compile()
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged tree reuses the compiled graph")
}

func TestStructuralMutationForcesRecompile(t *testing.T) {
	m, params := fixture(t)

	first, err := m.Compile()
	require.NoError(t, err)
	assert.Equal(t, 2, first.FreeDim)

	params["scale"].SetFixed(true)

	second, err := m.Compile()
	require.NoError(t, err)
	assert.NotSame(t, first, second, "fixing a leaf invalidates the cache")
	assert.Equal(t, 1, second.FreeDim)
}

func TestObjectiveGradientMatchesFiniteDifference(t *testing.T) {
	m, _ := fixture(t)
	data, err := m.Bindings()
	require.NoError(t, err)

	state, err := m.FreeState()
	require.NoError(t, err)
	require.Len(t, state, 2)

	val, grad, err := m.Objective(state, data)
	require.NoError(t, err)

	const h = 1e-6
	for i := range state {
		bumped := append([]float64(nil), state...)
		bumped[i] += h
		vPlus, _, err := m.Objective(bumped, data)
		require.NoError(t, err)
		assert.InDelta(t, (vPlus-val)/h, grad[i], 1e-4, "component %d", i)
	}
}

func TestObjectiveRecompilesWhenStale(t *testing.T) {
	m, params := fixture(t)
	data, err := m.Bindings()
	require.NoError(t, err)

	state, err := m.FreeState()
	require.NoError(t, err)
	_, _, err = m.Objective(state, data)
	require.NoError(t, err)

	// Fix the scale: the free state shrinks to one dimension, and the next
	// evaluation must work against the recompiled layout, not the stale one.
	params["scale"].SetFixed(true)

	_, _, err = m.Objective(state, data)
	var lm *tree.LengthMismatch
	require.ErrorAs(t, err, &lm, "stale-length vector is rejected against the fresh layout")
	assert.Equal(t, 1, lm.Want)

	newState, err := m.FreeState()
	require.NoError(t, err)
	require.Len(t, newState, 1)
	_, grad, err := m.Objective(newState, data)
	require.NoError(t, err)
	assert.Len(t, grad, 1)
}

func TestSetStateThenFreeStateRoundTrip(t *testing.T) {
	m, _ := fixture(t)
	v := []float64{0.25, -1.75}
	require.NoError(t, m.SetState(v))
	got, err := m.FreeState()
	require.NoError(t, err)
	for i := range v {
		assert.InDelta(t, v[i], got[i], 1e-12)
	}
}

func TestBindingsRequireValues(t *testing.T) {
	m := New(residualBuild)
	d, err := tree.NewDataSlot(exprgraph.Shape{2})
	require.NoError(t, err)
	require.NoError(t, m.Root().Attach("y", d))

	_, err = m.Bindings()
	assert.ErrorContains(t, err, "has no value to bind")
}
