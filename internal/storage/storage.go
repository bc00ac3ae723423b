package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/venditio/crm-api/internal/config"
	"go.uber.org/zap"
)

// Storage abstracts where uploaded documents live
type Storage interface {
	// Save writes content under the given path and returns the stored path
	Save(ctx context.Context, path string, content io.Reader) (string, error)
	// Open returns a reader for the stored path
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes the stored object
	Delete(ctx context.Context, path string) error
}

// New creates the storage backend configured in cfg ("local" or "cloud")
func New(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch strings.ToLower(cfg.Mode) {
	case "cloud":
		return NewAzureBlobStorage(cfg, logger)
	case "local", "":
		return NewLocalStorage(cfg.LocalBasePath, logger)
	default:
		return nil, fmt.Errorf("unknown storage mode: %s", cfg.Mode)
	}
}

// LocalStorage stores files on the local filesystem, for development and
// single-node deployments
type LocalStorage struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalStorage creates a local filesystem storage rooted at basePath
func NewLocalStorage(basePath string, logger *zap.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, logger: logger}, nil
}

func (s *LocalStorage) fullPath(path string) (string, error) {
	full := filepath.Join(s.basePath, filepath.Clean("/"+path))
	if !strings.HasPrefix(full, filepath.Clean(s.basePath)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage path: %s", path)
	}
	return full, nil
}

func (s *LocalStorage) Save(ctx context.Context, path string, content io.Reader) (string, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("file stored locally", zap.String("path", path))
	return path, nil
}

func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}
	return os.Remove(full)
}
