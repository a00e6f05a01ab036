package storage

import (
	"context"
	"fmt"
	"sync"
)

// MockFileStorage is an in-memory implementation of FileStorage for testing
type MockFileStorage struct {
	mu     sync.RWMutex
	bucket string
	files  map[string]*mockFile
	err    error
}

type mockFile struct {
	data        []byte
	contentType string
}

// NewMockFileStorage creates a new MockFileStorage instance
func NewMockFileStorage(bucket ...string) *MockFileStorage {
	name := "storage"
	if len(bucket) > 0 && bucket[0] != "" {
		name = bucket[0]
	}
	return &MockFileStorage{
		bucket: name,
		files:  make(map[string]*mockFile),
	}
}

// Store implements FileStorage.Store
func (m *MockFileStorage) Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Store", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return NewStorageError("Store", key, m.err)
	}

	contentType := "application/octet-stream"
	if opts != nil && opts.ContentType != "" {
		contentType = opts.ContentType
	}

	m.files[key] = &mockFile{
		data:        append([]byte(nil), data...),
		contentType: contentType,
	}
	return nil
}

// Retrieve implements FileStorage.Retrieve
func (m *MockFileStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Retrieve", key, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	file, exists := m.files[key]
	if !exists {
		return nil, NewStorageError("Retrieve", key, ErrFileNotFound)
	}

	return append([]byte(nil), file.data...), nil
}

// URL implements FileStorage.URL
func (m *MockFileStorage) URL(key string) string {
	return fmt.Sprintf("mock://%s/%s", m.bucket, key)
}

// Close implements FileStorage.Close
func (m *MockFileStorage) Close() error {
	m.Reset()
	return nil
}

// Additional methods for testing

// FailWith makes every subsequent Store fail with err. Pass nil to clear.
func (m *MockFileStorage) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Reset clears all stored files
func (m *MockFileStorage) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string]*mockFile)
}

// FileCount returns the number of stored files
func (m *MockFileStorage) FileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// HasFile checks if a file exists (without error handling)
func (m *MockFileStorage) HasFile(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[key]
	return exists
}

// ContentType returns the content type recorded for key
func (m *MockFileStorage) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if file, ok := m.files[key]; ok {
		return file.contentType
	}
	return ""
}
