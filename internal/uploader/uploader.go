// Package uploader sends local image files to a remote asset store and
// reports back the public URL each one is served from. Two backends exist:
// an HTTP webhook accepting multipart uploads, and Google Cloud Storage.
package uploader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Store uploads a local file into a remote asset store under a folder
// namespace and returns its public URL.
type Store interface {
	Upload(ctx context.Context, path, folder string) (string, error)
}

// UploadError reports a failed exchange with the asset store backend.
type UploadError struct {
	Status  int
	Message string
}

func (e *UploadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("uploader: backend returned %d: %s", e.Status, e.Message)
	}
	return "uploader: " + e.Message
}

var extToMime = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
}

// contentTypeFor maps a filename extension to its MIME type, defaulting to
// application/octet-stream for anything unrecognized.
func contentTypeFor(name string) string {
	if mt, ok := extToMime[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "application/octet-stream"
}
