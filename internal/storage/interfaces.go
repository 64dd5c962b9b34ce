// Package storage defines the image store abstraction for character
// uploads. Implementations include S3 (and S3-compatible services like
// MinIO) and a local filesystem backend for development.
package storage

import (
	"context"
	"errors"
	"io"
)

// Store errors.
var (
	// ErrImageNotFound indicates the requested image doesn't exist in the store.
	ErrImageNotFound = errors.New("image not found")
)

// ImageStore persists uploaded character images and resolves their
// public URLs.
type ImageStore interface {
	// Put stores image content under the given key, overwriting any
	// existing object. Returns the publicly reachable URL.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)

	// Get retrieves image content by key.
	// Returns ErrImageNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an image by key.
	Delete(ctx context.Context, key string) error

	// URL resolves the public URL for a stored key.
	URL(key string) string
}
