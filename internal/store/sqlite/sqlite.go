// Package sqlite implements store.ItemStore on a single SQLite table. Items
// are stored as JSON documents keyed by (tbl, id) so every resource shares
// the schema created by the database migrations.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"blog-content-api/internal/models"
	"blog-content-api/internal/store"
)

const (
	selectItemQuery = `SELECT data FROM items WHERE tbl = ? AND id = ?`
	upsertItemQuery = `INSERT INTO items (tbl, id, data, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(tbl, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	updateItemQuery = `UPDATE items SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE tbl = ? AND id = ?`
	deleteItemQuery = `DELETE FROM items WHERE tbl = ? AND id = ?`
	scanItemsQuery  = `SELECT data FROM items WHERE tbl = ?`
)

// Store is a SQLite-backed item store for one logical table
type Store struct {
	db     *sql.DB
	table  string
	logger *logrus.Logger
}

var _ store.ItemStore = (*Store)(nil)

// New creates a store for table over db
func New(db *sql.DB, table string, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// Get implements store.ItemStore
func (s *Store) Get(ctx context.Context, id string) (models.Item, error) {
	var data string
	err := s.db.QueryRowContext(ctx, selectItemQuery, s.table, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NewStoreError("get", s.table, id, store.ErrNotFound)
		}
		return nil, s.fail("get", id, err)
	}
	return s.decode("get", id, data)
}

// Put implements store.ItemStore
func (s *Store) Put(ctx context.Context, item models.Item) error {
	id := item.ID()
	if id == "" {
		return store.NewStoreError("put", s.table, "", store.ErrInvalidItem)
	}

	data, err := json.Marshal(item)
	if err != nil {
		return store.NewStoreError("put", s.table, id, fmt.Errorf("encode item: %w", err))
	}

	if _, err := s.db.ExecContext(ctx, upsertItemQuery, s.table, id, string(data)); err != nil {
		return s.fail("put", id, err)
	}
	return nil
}

// UpdateFields implements store.ItemStore as a read-merge-write inside one
// transaction. Concurrent updates are serialised only because the database
// is opened with a single connection (MaxOpenConns 1), so a second update
// waits for the first to commit before it reads.
func (s *Store) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (models.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.fail("update", id, err)
	}
	defer tx.Rollback()

	var data string
	if err := tx.QueryRowContext(ctx, selectItemQuery, s.table, id).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NewStoreError("update", s.table, id, store.ErrNotFound)
		}
		return nil, s.fail("update", id, err)
	}

	current, err := s.decode("update", id, data)
	if err != nil {
		return nil, err
	}

	updated := current.Merge(fields)
	updated[models.FieldID] = id

	encoded, err := json.Marshal(updated)
	if err != nil {
		return nil, store.NewStoreError("update", s.table, id, fmt.Errorf("encode item: %w", err))
	}

	if _, err := tx.ExecContext(ctx, updateItemQuery, string(encoded), s.table, id); err != nil {
		return nil, s.fail("update", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.fail("update", id, err)
	}

	return updated, nil
}

// Delete implements store.ItemStore
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, deleteItemQuery, s.table, id); err != nil {
		return s.fail("delete", id, err)
	}
	return nil
}

// ScanAll implements store.ItemStore
func (s *Store) ScanAll(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, scanItemsQuery, s.table)
	if err != nil {
		return nil, s.fail("scan", "", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, s.fail("scan", "", err)
		}
		item, err := s.decode("scan", "", data)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("scan", "", err)
	}

	return items, nil
}

func (s *Store) decode(op, id, data string) (models.Item, error) {
	item := models.Item{}
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return nil, store.NewStoreError(op, s.table, id, fmt.Errorf("decode item: %w", err))
	}
	return item, nil
}

func (s *Store) fail(op, id string, err error) error {
	s.logger.WithFields(logrus.Fields{
		"table": s.table,
		"op":    op,
		"id":    id,
	}).WithError(err).Warn("SQLite query failed")
	return store.NewStoreError(op, s.table, id, err)
}
