package loader

import (
	"fmt"
	"path/filepath"

	pongo2 "github.com/flosch/pongo2/v6"
)

// Filesystem loads templates from a single local directory.
type Filesystem struct {
	*pongo2.LocalFilesystemLoader
	dir string
}

// NewFilesystem binds a loader to dir, which must exist.
func NewFilesystem(dir string) (*Filesystem, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	l, err := pongo2.NewLocalFileSystemLoader(abs)
	if err != nil {
		return nil, fmt.Errorf("template directory %s: %w", abs, err)
	}
	return &Filesystem{LocalFilesystemLoader: l, dir: abs}, nil
}

// SearchPath returns the absolute template directory.
func (f *Filesystem) SearchPath() []string {
	return []string{f.dir}
}
