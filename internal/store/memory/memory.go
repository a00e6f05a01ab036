// Package memory provides an in-process ItemStore used by tests and by
// STORE_TYPE=memory.
package memory

import (
	"context"
	"sync"

	"blog-content-api/internal/models"
	"blog-content-api/internal/store"
)

// Store is a mutex-guarded map of items. Items are copied on the way in and
// out so callers never share state with the store.
type Store struct {
	mu    sync.RWMutex
	table string
	items map[string]models.Item
}

var _ store.ItemStore = (*Store)(nil)

// New creates an empty store for the named table.
func New(table string) *Store {
	return &Store{
		table: table,
		items: make(map[string]models.Item),
	}
}

// Get implements store.ItemStore.
func (s *Store) Get(ctx context.Context, id string) (models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, store.NewStoreError("get", s.table, id, store.ErrNotFound)
	}
	return item.Clone(), nil
}

// Put implements store.ItemStore.
func (s *Store) Put(ctx context.Context, item models.Item) error {
	id := item.ID()
	if id == "" {
		return store.NewStoreError("put", s.table, "", store.ErrInvalidItem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[id] = item.Clone()
	return nil
}

// UpdateFields implements store.ItemStore.
func (s *Store) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[id]
	if !ok {
		return nil, store.NewStoreError("update", s.table, id, store.ErrNotFound)
	}

	updated := existing.Merge(fields)
	updated[models.FieldID] = id
	s.items[id] = updated
	return updated.Clone(), nil
}

// Delete implements store.ItemStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	return nil
}

// ScanAll implements store.ItemStore.
func (s *Store) ScanAll(ctx context.Context) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item.Clone())
	}
	return items, nil
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
