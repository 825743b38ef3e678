package catalog

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileAsset is one file available in the served directory.
type FileAsset struct {
	Name string
	Size int64
}

// Catalog exposes the served directory as an enumerable set of assets.
// Existence is checked at request time; nothing is cached.
type Catalog struct {
	servedDir string
}

// New creates a catalog over the served directory.
func New(servedDir string) *Catalog {
	return &Catalog{servedDir: servedDir}
}

// EnsureDirs creates the served and downloads directories if missing.
// Called once at startup; handlers assume the directories exist.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// List enumerates the regular files in the served directory.
func (c *Catalog) List() ([]FileAsset, error) {
	entries, err := os.ReadDir(c.servedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read served directory: %w", err)
	}

	assets := make([]FileAsset, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		assets = append(assets, FileAsset{Name: entry.Name(), Size: info.Size()})
	}
	return assets, nil
}

// Path resolves a filename inside the served directory.
func (c *Catalog) Path(name string) string {
	return filepath.Join(c.servedDir, name)
}
