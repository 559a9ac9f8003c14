// Package storage provides product image stores on local disk and S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	catalogapp "github.com/stockroom/backend/internal/application/catalog"
)

var _ catalogapp.ImageStore = (*LocalImageStore)(nil)

// LocalImageStore writes images into a directory that the HTTP server
// exposes under a public prefix
type LocalImageStore struct {
	dir    string
	prefix string
	logger *zap.Logger
}

// NewLocalImageStore creates the directory if needed
func NewLocalImageStore(dir, publicPrefix string, logger *zap.Logger) (*LocalImageStore, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalImageStore{
		dir:    dir,
		prefix: "/" + strings.Trim(publicPrefix, "/"),
		logger: logger,
	}, nil
}

// Dir returns the directory images are written to
func (s *LocalImageStore) Dir() string {
	return s.dir
}

// Save writes content to <dir>/<key>. The file is written under a temporary
// name and renamed so readers never observe a partial image.
func (s *LocalImageStore) Save(_ context.Context, key, _ string, content io.Reader) (catalogapp.StoredImage, error) {
	target, err := s.path(key)
	if err != nil {
		return catalogapp.StoredImage{}, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return catalogapp.StoredImage{}, fmt.Errorf("failed to create image file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		return catalogapp.StoredImage{}, fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return catalogapp.StoredImage{}, fmt.Errorf("failed to write image: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return catalogapp.StoredImage{}, fmt.Errorf("failed to store image: %w", err)
	}

	s.logger.Debug("image stored", zap.String("path", target))
	return catalogapp.StoredImage{Key: key, URL: path.Join(s.prefix, key)}, nil
}

// Delete removes the file stored under key
func (s *LocalImageStore) Delete(_ context.Context, key string) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// path resolves key inside the storage directory; keys are flat file names
func (s *LocalImageStore) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}
