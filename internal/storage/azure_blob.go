package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/venditio/crm-api/internal/config"
	"go.uber.org/zap"
)

// AzureBlobStorage stores files in an Azure Blob container
type AzureBlobStorage struct {
	client    *azblob.Client
	container string
	logger    *zap.Logger
}

// NewAzureBlobStorage creates a blob storage backend from a connection string
func NewAzureBlobStorage(cfg *config.StorageConfig, logger *zap.Logger) (*AzureBlobStorage, error) {
	if cfg.CloudConnectionString == "" {
		return nil, fmt.Errorf("cloud storage connection string is required")
	}
	if cfg.CloudContainer == "" {
		return nil, fmt.Errorf("cloud storage container is required")
	}

	client, err := azblob.NewClientFromConnectionString(cfg.CloudConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	logger.Info("Azure Blob storage initialized",
		zap.String("container", cfg.CloudContainer))

	return &AzureBlobStorage{
		client:    client,
		container: cfg.CloudContainer,
		logger:    logger,
	}, nil
}

func (s *AzureBlobStorage) Save(ctx context.Context, path string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}

	_, err = s.client.UploadBuffer(ctx, s.container, path, data, nil)
	if err != nil {
		return "", fmt.Errorf("failed to upload blob: %w", err)
	}

	s.logger.Debug("blob uploaded",
		zap.String("container", s.container),
		zap.String("path", path),
		zap.Int("size", len(data)))

	return path, nil
}

func (s *AzureBlobStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	return resp.Body, nil
}

func (s *AzureBlobStorage) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, path, nil)
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}
