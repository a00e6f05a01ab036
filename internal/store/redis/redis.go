// Package redis implements store.ItemStore on Redis. Each item is a JSON
// string at <table>:item:<id> and its id is a member of the set
// <table>:items, which drives ScanAll.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"blog-content-api/internal/models"
	"blog-content-api/internal/store"
)

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a Redis client and verifies the connection
func NewClient(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Store is a Redis-backed item store for one table
type Store struct {
	client goredis.UniversalClient
	table  string
	logger *logrus.Logger
}

var _ store.ItemStore = (*Store)(nil)

// New creates a store for table
func New(client goredis.UniversalClient, table string, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		client: client,
		table:  table,
		logger: logger,
	}
}

func (s *Store) itemKey(id string) string {
	return fmt.Sprintf("%s:item:%s", s.table, id)
}

func (s *Store) setKey() string {
	return fmt.Sprintf("%s:items", s.table)
}

// Get implements store.ItemStore
func (s *Store) Get(ctx context.Context, id string) (models.Item, error) {
	data, err := s.client.Get(ctx, s.itemKey(id)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
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

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.itemKey(id), data, 0)
	pipe.SAdd(ctx, s.setKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return s.fail("put", id, err)
	}
	return nil
}

// UpdateFields implements store.ItemStore. The merge is read-then-write
// with no version check, so concurrent updates are last-write-wins.
func (s *Store) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (models.Item, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		var storeErr *store.StoreError
		if errors.As(err, &storeErr) {
			storeErr.Op = "update"
		}
		return nil, err
	}

	updated := current.Merge(fields)
	updated[models.FieldID] = id

	encoded, err := json.Marshal(updated)
	if err != nil {
		return nil, store.NewStoreError("update", s.table, id, fmt.Errorf("encode item: %w", err))
	}

	// XX keeps an update from re-creating an item deleted after the read
	ok, err := s.client.SetXX(ctx, s.itemKey(id), encoded, 0).Result()
	if err != nil {
		return nil, s.fail("update", id, err)
	}
	if !ok {
		return nil, store.NewStoreError("update", s.table, id, store.ErrNotFound)
	}
	return updated, nil
}

// Delete implements store.ItemStore
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.itemKey(id))
	pipe.SRem(ctx, s.setKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return s.fail("delete", id, err)
	}
	return nil
}

// ScanAll implements store.ItemStore. Set members whose item key has
// vanished are skipped.
func (s *Store) ScanAll(ctx context.Context) ([]models.Item, error) {
	ids, err := s.client.SMembers(ctx, s.setKey()).Result()
	if err != nil {
		return nil, s.fail("scan", "", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*goredis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, s.itemKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
		return nil, s.fail("scan", "", err)
	}

	items := make([]models.Item, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}
			return nil, s.fail("scan", ids[i], err)
		}
		item, err := s.decode("scan", ids[i], data)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
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
	}).WithError(err).Warn("Redis command failed")
	return store.NewStoreError(op, s.table, id, err)
}
