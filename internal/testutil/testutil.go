// Package testutil provides shared test helpers for setting up documents
// and the image files they reference.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/document"
)

// TestDocument writes content to post.md in a fresh temp directory and
// loads it, ready for a pipeline run.
func TestDocument(t *testing.T, content string) *document.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "post.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := document.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

// WriteImage creates a dummy image file at name under dir, creating
// subdirectories as needed, and returns its path.
func WriteImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{0x89, 'P', 'N', 'G', '\r', '\n'}, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
