// Package document handles durable storage of a Markdown document and the
// rendered assets saved beside it. Writes are atomic so an interrupted run
// never leaves a half-written file.
package document

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is a Markdown document loaded from disk. Text tracks the most
// recently stored content; it only advances when a write commits.
type File struct {
	path string
	dir  string
	text string
}

// Load reads a UTF-8 Markdown file and returns it ready for rewriting.
func Load(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("document: resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("document: stat: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("document: not a regular file: %s", abs)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("document: read %s: %w", abs, err)
	}
	return &File{path: abs, dir: filepath.Dir(abs), text: string(data)}, nil
}

// Path returns the document's absolute path.
func (f *File) Path() string { return f.path }

// Dir returns the document's containing directory, the base for resolving
// relative image references.
func (f *File) Dir() string { return f.dir }

// Text returns the most recently stored content.
func (f *File) Text() string { return f.text }

// Store atomically writes text back to the document: tmp file → fsync →
// rename. The in-memory text advances only after the rename succeeds.
func (f *File) Store(text string) error {
	if err := writeAtomic(f.path, []byte(text)); err != nil {
		return err
	}
	f.text = text
	return nil
}

// SaveAsset atomically writes data under name in the document's directory
// and returns the absolute path. name must be a bare filename.
func (f *File) SaveAsset(name string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("document: invalid asset name: %q", name)
	}
	target := filepath.Join(f.dir, name)
	if err := writeAtomic(target, data); err != nil {
		return "", err
	}
	return target, nil
}

func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ansuz-tmp-*")
	if err != nil {
		return fmt.Errorf("document: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("document: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("document: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("document: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("document: rename: %w", err)
	}
	success = true
	return nil
}
