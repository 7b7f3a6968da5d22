package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveModelPath(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) string {
		t.Helper()
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("model \"m\" {}\n"), 0o644))
		return p
	}

	t.Run("file path passes through", func(t *testing.T) {
		p := write("direct.hcl")
		got, err := ResolveModelPath(p)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("missing path errors", func(t *testing.T) {
		_, err := ResolveModelPath(filepath.Join(dir, "nope.hcl"))
		assert.Error(t, err)
	})

	t.Run("directory with one model", func(t *testing.T) {
		sub := filepath.Join(dir, "one")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		p := filepath.Join(sub, "nested", "m.hcl")
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("model \"m\" {}\n"), 0o644))

		got, err := ResolveModelPath(sub)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("directory with none errors", func(t *testing.T) {
		sub := filepath.Join(dir, "empty")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		_, err := ResolveModelPath(sub)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no .hcl model file")
	})

	t.Run("directory with several errors", func(t *testing.T) {
		sub := filepath.Join(dir, "many")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(sub, "a.hcl"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(sub, "b.hcl"), nil, 0o644))
		_, err := ResolveModelPath(sub)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "found 2")
	})
}
