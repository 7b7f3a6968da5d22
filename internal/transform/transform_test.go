package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/paramtree/internal/exprgraph"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		tr    Transform
		free  []float64
		model []float64
	}{
		{"identity", Identity, []float64{-2, 0, 3.5}, []float64{-2, 0, 3.5}},
		{"exp", Exp{}, []float64{-2, 0, 1.5}, []float64{0.01, 1, 7.5}},
		{"softplus", Softplus{}, []float64{-3, 0.2, 4}, []float64{0.05, 1, 9}},
		{"logistic unit", Logistic{Lo: 0, Hi: 1}, []float64{-1.5, 0, 2}, []float64{0.1, 0.5, 0.9}},
		{"logistic shifted", Logistic{Lo: -4, Hi: 6}, []float64{-1, 0.5, 2}, []float64{-3, 0, 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			back := tc.tr.Backward(tc.tr.Forward(tc.free))
			require.Len(t, back, len(tc.free))
			for i := range tc.free {
				assert.InDelta(t, tc.free[i], back[i], 1e-9, "backward(forward) component %d", i)
			}

			fwd := tc.tr.Forward(tc.tr.Backward(tc.model))
			require.Len(t, fwd, len(tc.model))
			for i := range tc.model {
				assert.InDelta(t, tc.model[i], fwd[i], 1e-9, "forward(backward) component %d", i)
			}
		})
	}
}

func TestLogJacobianMatchesFiniteDifference(t *testing.T) {
	transforms := []Transform{Identity, Exp{}, Softplus{}, Logistic{Lo: -1, Hi: 3}}
	free := []float64{-0.7, 0.4, 1.1}
	const h = 1e-6

	for _, tr := range transforms {
		t.Run(tr.Name(), func(t *testing.T) {
			want := 0.0
			for i := range free {
				bumped := append([]float64(nil), free...)
				bumped[i] += h
				d := (tr.Forward(bumped)[i] - tr.Forward(free)[i]) / h
				if d < 0 {
					d = -d
				}
				want += math.Log(d)
			}
			assert.InDelta(t, want, tr.LogJacobian(free), 1e-4)
		})
	}
}

// TestSymbolicAgreesWithNumeric checks that the graph rendition of each
// transform computes the same values as the plain float64 one.
func TestSymbolicAgreesWithNumeric(t *testing.T) {
	transforms := []Transform{Identity, Exp{}, Softplus{}, Logistic{Lo: 0, Hi: 2}}
	free := []float64{-1.3, 0, 0.8}

	for _, tr := range transforms {
		t.Run(tr.Name(), func(t *testing.T) {
			g := exprgraph.New()
			in := g.Placeholder("free", exprgraph.Shape{3})

			out := g.Sum(tr.Build(g, in))
			got, _, err := g.Run(out, nil, exprgraph.Bindings{in: free})
			require.NoError(t, err)
			want := 0.0
			for _, y := range tr.Forward(free) {
				want += y
			}
			assert.InDelta(t, want, got, 1e-10, "forward")

			lj := tr.BuildLogJacobian(g, in)
			gotLJ, _, err := g.Run(lj, nil, exprgraph.Bindings{in: free})
			require.NoError(t, err)
			assert.InDelta(t, tr.LogJacobian(free), gotLJ, 1e-10, "log jacobian")
		})
	}
}

