// Package storage defines the blob store used by the upload gateway.
// Google Drive is the default backend; any S3-compatible bucket can be used
// instead through the MinIO implementation.
package storage

import (
	"context"
	"io"
)

// Storage uploads blobs and issues public URLs for them.
type Storage interface {
	// Upload streams data to the store and returns the key that identifies the
	// new blob. Every call creates a distinct blob.
	Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error)
	// MakePublic grants anonymous read access to the blob identified by key.
	MakePublic(ctx context.Context, key string) error
	// Delete removes the blob identified by key.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
