package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestManager_LoadDirect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "alpha")

	m := NewManager()
	data, err := m.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	// Served from the cache even after the file changes.
	writeFile(t, path, "changed")
	data, err = m.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	hits, misses, cached := m.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, cached)

	assert.True(t, m.Invalidate(path))
	assert.False(t, m.Invalidate(path))
	assert.False(t, m.Invalidate(filepath.Join(dir, "other.txt")))
	data, err = m.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "changed", string(data))
}

func TestManager_RootPriority(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	writeFile(t, filepath.Join(low, "tex", "wood.png"), "low")
	writeFile(t, filepath.Join(high, "tex", "wood.png"), "high")
	writeFile(t, filepath.Join(low, "tex", "only_low.png"), "only")

	m := NewManager()
	require.NoError(t, m.AddRoot(low))
	require.NoError(t, m.AddRoot(high))
	assert.Equal(t, []string{high, low}, m.Roots())

	data, err := m.Load(filepath.Join("tex", "wood.png"))
	require.NoError(t, err)
	assert.Equal(t, "high", string(data))

	data, err = m.Load(filepath.Join("tex", "only_low.png"))
	require.NoError(t, err)
	assert.Equal(t, "only", string(data))
}

func TestManager_NotFound(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddRoot(t.TempDir()))

	_, err := m.Load(filepath.Join("no", "such", "file.png"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestManager_AddRootErrors(t *testing.T) {
	m := NewManager()
	assert.Error(t, m.AddRoot(filepath.Join(t.TempDir(), "missing")))

	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, "x")
	assert.Error(t, m.AddRoot(file))
}

func TestCache(t *testing.T) {
	c := NewCache()
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("z")
	assert.False(t, ok)

	assert.True(t, c.Delete("a"))
	assert.False(t, c.Delete("a"))
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	hits, misses := c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}
