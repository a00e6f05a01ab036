// Package store defines the item store contract shared by every key-value
// backend. One ItemStore serves one resource table.
package store

import (
	"context"

	"blog-content-api/internal/models"
)

// ItemStore is a thin typed client over a key-value table keyed by "id".
type ItemStore interface {
	// Get returns the item or ErrNotFound.
	Get(ctx context.Context, id string) (models.Item, error)

	// Put writes the whole item, replacing any existing record.
	Put(ctx context.Context, item models.Item) error

	// UpdateFields sets only the listed attributes of an existing record and
	// returns the full updated item. It returns ErrNotFound when no record
	// exists for id.
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (models.Item, error)

	// Delete removes the record. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// ScanAll returns every item in the table in no particular order.
	ScanAll(ctx context.Context) ([]models.Item, error)
}
