package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDirs(t *testing.T) {
	base := t.TempDir()
	served := filepath.Join(base, "uploads")
	downloads := filepath.Join(base, "downloads")

	require.NoError(t, EnsureDirs(served, downloads))
	require.DirExists(t, served)
	require.DirExists(t, downloads)

	// Idempotent on existing directories.
	require.NoError(t, EnsureDirs(served, downloads))
}

func TestCatalogList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.pdf"), []byte("pdf bytes"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))

	c := New(dir)
	assets, err := c.List()
	require.NoError(t, err)
	require.Len(t, assets, 2)

	byName := map[string]int64{}
	for _, a := range assets {
		byName[a.Name] = a.Size
	}
	require.Equal(t, int64(9), byName["report.pdf"])
	require.Equal(t, int64(2), byName["notes.txt"])
}

func TestCatalogListMissingDir(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "nope"))
	_, err := c.List()
	require.Error(t, err)
}
