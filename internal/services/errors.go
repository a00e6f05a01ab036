package services

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies service failures so callers can pick a response status
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindUpload
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUpload:
		return "upload"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// ValidationError reports a request payload the service cannot accept
type ValidationError struct {
	Resource string
	Fields   []string // offending fields, sorted
	Reason   string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

// NotFoundError reports a lookup miss
type NotFoundError struct {
	Resource string // display name, e.g. "Post"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// UploadError reports a failed blob decode or write
type UploadError struct {
	Label string // e.g. "image"
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("error uploading %s to S3: %v", e.Label, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// StoreError reports a failed item store call
type StoreError struct {
	Op       string
	Resource string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first service error in err's chain
func KindOf(err error) Kind {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		uploadErr     *UploadError
		storeErr      *StoreError
	)

	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &notFoundErr):
		return KindNotFound
	case errors.As(err, &uploadErr):
		return KindUpload
	case errors.As(err, &storeErr):
		return KindStore
	default:
		return KindUnknown
	}
}
