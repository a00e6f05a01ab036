package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sirupsen/logrus"

	"blog-content-api/internal/adapters/storage"
)

const blobContentType = "image/png"

// Uploader stores a base64 payload and returns the URL it is served from
type Uploader interface {
	Upload(ctx context.Context, namespace, id, base64Data string) (string, error)
}

// BlobUploader decodes base64 images and writes them to file storage.
// Objects are always stored as PNG regardless of their actual format.
type BlobUploader struct {
	storage storage.FileStorage
	label   string
	logger  *logrus.Logger
}

// NewBlobUploader creates an uploader; label names the blob in errors
func NewBlobUploader(fs storage.FileStorage, label string, logger *logrus.Logger) *BlobUploader {
	if logger == nil {
		logger = logrus.New()
	}
	return &BlobUploader{
		storage: fs,
		label:   label,
		logger:  logger,
	}
}

// Upload implements Uploader. The object key is "{namespace}/{id}.png".
func (u *BlobUploader) Upload(ctx context.Context, namespace, id, base64Data string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", &UploadError{Label: u.label, Err: fmt.Errorf("decode base64: %w", err)}
	}

	key := fmt.Sprintf("%s/%s.png", namespace, id)
	if err := u.storage.Store(ctx, key, data, &storage.StoreOptions{ContentType: blobContentType}); err != nil {
		return "", &UploadError{Label: u.label, Err: err}
	}

	u.logger.WithFields(logrus.Fields{
		"key":   key,
		"bytes": len(data),
	}).Debug("Blob uploaded")

	return u.storage.URL(key), nil
}
