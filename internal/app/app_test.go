package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = `
model "noise_fit" {
  objective = "gaussian_loglik"

  param "mean" {
    value = 0.0
    shape = []
  }

  param "variance" {
    value     = 1.0
    shape     = []
    transform = "softplus"
  }

  data "y" {
    shape = [4]
    value = [1.0, 2.0, 3.0, 4.0]
  }
}
`

// writeModel drops the sample declaration into a temp dir and returns its path.
func writeModel(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestAppDescribe(t *testing.T) {
	cfg, err := NewConfig(Config{
		ModelPath: writeModel(t, testModel),
		LogFormat: "text",
		LogLevel:  "error",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewApp(&out, cfg).Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, `model "noise_fit": 2 free dimensions, 1 data slots`)
	assert.Contains(t, got, "mean")
	assert.Contains(t, got, "softplus")
	assert.Contains(t, got, "data y")
	assert.NotContains(t, got, "fit finished")
}

func TestAppFit(t *testing.T) {
	cfg, err := NewConfig(Config{
		ModelPath: writeModel(t, testModel),
		LogFormat: "text",
		LogLevel:  "error",
		Steps:     5000,
		StepSize:  0.02,
		Tol:       1e-10,
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewApp(&out, cfg).Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "fit finished")
	// The maximum-likelihood estimates for y = [1, 2, 3, 4] are a mean of
	// 2.5 and a biased variance of 1.25; the printed values should be close.
	assert.Regexp(t, `mean\s+= \[2\.[45]\d*\]`, got)
	assert.Regexp(t, `variance\s+= \[1\.[12]\d*\]`, got)
}

func TestAppErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := NewConfig(Config{ModelPath: "does-not-exist.hcl", LogLevel: "error", LogFormat: "text"})
		require.NoError(t, err)

		var out bytes.Buffer
		assert.Error(t, NewApp(&out, cfg).Run(context.Background()))
	})

	t.Run("unknown objective", func(t *testing.T) {
		src := `
model "broken" {
  objective = "nope"
  param "a" {
    value = 1.0
  }
}
`
		cfg, err := NewConfig(Config{ModelPath: writeModel(t, src), LogLevel: "error", LogFormat: "text"})
		require.NoError(t, err)

		var out bytes.Buffer
		err = NewApp(&out, cfg).Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown objective")
	})
}

func TestNewConfigValidation(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err)

	_, err = NewConfig(Config{ModelPath: "m.hcl", Steps: -1})
	assert.Error(t, err)

	_, err = NewConfig(Config{ModelPath: "m.hcl", Steps: 10, StepSize: 0})
	assert.Error(t, err)

	cfg, err := NewConfig(Config{ModelPath: "m.hcl", Steps: 10, StepSize: 0.1})
	require.NoError(t, err)
	assert.Equal(t, "m.hcl", cfg.ModelPath)
}
