// Package testutil holds filesystem fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFiles creates each file under root, making parent directories as
// needed, and returns the path of every file keyed by its relative name.
func WriteFiles(t testing.TB, root string, files map[string]string) map[string]string {
	t.Helper()
	paths := make(map[string]string, len(files))
	for name, content := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
		paths[name] = p
	}
	return paths
}

// WriteFile creates a single file under root and returns its path.
func WriteFile(t testing.TB, root, name, content string) string {
	t.Helper()
	return WriteFiles(t, root, map[string]string{name: content})[name]
}

// TemplatesRoot returns a fresh temporary root holding dir/ populated with
// files. An empty files map still creates dir.
func TemplatesRoot(t testing.TB, dir string, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	prefixed := make(map[string]string, len(files))
	for name, content := range files {
		prefixed[filepath.Join(dir, name)] = content
	}
	WriteFiles(t, root, prefixed)
	return root
}
