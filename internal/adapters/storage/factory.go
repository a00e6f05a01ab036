package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// StorageType represents the type of storage implementation
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
	StorageTypeMock  StorageType = "mock"
)

// Create creates a FileStorage instance based on the provided configuration
func Create(ctx context.Context, config *Config) (FileStorage, error) {
	if config == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	var storage FileStorage
	var err error

	switch StorageType(strings.ToLower(config.Type)) {
	case StorageTypeLocal:
		storage, err = createLocalStorage(config)
	case StorageTypeS3:
		storage, err = createS3Storage(ctx, config)
	case StorageTypeMock:
		storage = NewMockFileStorage(config.Bucket)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", config.Type, err)
	}
	return storage, nil
}

// createLocalStorage writes each bucket to its own directory under BasePath
func createLocalStorage(config *Config) (FileStorage, error) {
	basePath := config.BasePath
	if basePath == "" {
		basePath = "./storage"
	}
	if config.Bucket != "" {
		basePath = filepath.Join(basePath, config.Bucket)
	}

	if config.BaseURL != "" {
		baseURL := strings.TrimSuffix(config.BaseURL, "/")
		if config.Bucket != "" {
			baseURL = baseURL + "/" + config.Bucket
		}
		return NewLocalFileStorage(basePath, baseURL)
	}
	return NewLocalFileStorage(basePath)
}

func createS3Storage(ctx context.Context, config *Config) (FileStorage, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket name is required", ErrInvalidConfig)
	}

	client, err := NewS3Client(ctx, config)
	if err != nil {
		return nil, err
	}
	return NewS3FileStorage(client, config)
}
