package storage

import (
	"context"
)

// StoreOptions provides options for storing files
type StoreOptions struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// FileStorage stores binary objects under string keys and reports the
// public URL each object is reachable at.
type FileStorage interface {
	// Store saves data under key, replacing any existing object
	Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error

	// Retrieve gets a file by its storage key
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// URL returns the public URL for key. It does not check that the
	// object exists.
	URL(key string) string

	// Close cleans up any resources used by the storage implementation
	Close() error
}

// Config represents configuration for storage providers
type Config struct {
	Type     string // "s3", "local" or "mock"
	Bucket   string // Bucket name; also the directory under BasePath for local storage
	BasePath string // Root directory for local storage
	BaseURL  string // URL prefix for local storage

	Region          string
	Endpoint        string // Optional S3-compatible endpoint
	UsePathStyle    bool
	Domain          string // Virtual-host domain, e.g. s3.amazonaws.com
	AccessKeyID     string
	SecretAccessKey string
}
