package uploader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
)

// GCS uploads assets to a Google Cloud Storage bucket and serves them from
// the public storage.googleapis.com endpoint.
type GCS struct {
	bucket string
	client *storage.Client
}

var _ Store = (*GCS)(nil)

// NewGCS opens a client using ambient application-default credentials.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("uploader: gcs client: %w", err)
	}
	return &GCS{bucket: bucket, client: client}, nil
}

// Upload writes the file under public/blog/{folder}/{filename}, makes the
// object world-readable, and returns its public URL.
func (g *GCS) Upload(ctx context.Context, path, folder string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("uploader: read %s: %w", path, err)
	}

	object := objectName(folder, filepath.Base(path))
	obj := g.client.Bucket(g.bucket).Object(object)

	w := obj.NewWriter(ctx)
	w.ContentType = contentTypeFor(path)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("uploader: gcs write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("uploader: gcs commit: %w", err)
	}
	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", fmt.Errorf("uploader: gcs acl: %w", err)
	}
	return publicURL(g.bucket, object), nil
}

// Close releases the underlying client.
func (g *GCS) Close() error { return g.client.Close() }

func objectName(folder, filename string) string {
	return fmt.Sprintf("public/blog/%s/%s", folder, filename)
}

func publicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}
