// Package filesystem implements the image store on the local disk.
// Intended for development and single-node deployments.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/storage"
)

// Store implements storage.ImageStore on the local filesystem.
type Store struct {
	dataDir       string
	publicBaseURL string
	logger        zerolog.Logger
}

// NewStore creates a filesystem image store rooted at dataDir.
func NewStore(dataDir, publicBaseURL string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logger.Info().Str("data_dir", dataDir).Msg("using filesystem image store")

	return &Store{
		dataDir:       dataDir,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:        logger,
	}, nil
}

// Put stores image content under the given key.
func (s *Store) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.dataDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	// Write to a temp file first so readers never see partial content.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to finalize image: %w", err)
	}

	return s.URL(key), nil
}

// Get retrieves image content by key.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dataDir, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to open image %s: %w", key, err)
	}
	return f, nil
}

// Delete removes an image by key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.dataDir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}
	return nil
}

// URL resolves the public URL for a stored key.
func (s *Store) URL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return "/uploads/" + key
}

// Ensure Store implements storage.ImageStore.
var _ storage.ImageStore = (*Store)(nil)
