package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"blog-content-api/internal/adapters/storage"
	"blog-content-api/internal/models"
	"blog-content-api/internal/store/memory"
)

// fixedClock returns a settable instant.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sequenceIDs hands out predictable ids.
type sequenceIDs struct {
	ids []string
	n   int
}

func (g *sequenceIDs) NewID() (string, error) {
	id := g.ids[g.n%len(g.ids)]
	g.n++
	return id, nil
}

// faultyStore fails selected operations on top of an in-memory store.
type faultyStore struct {
	*memory.Store
	putErr    error
	updateErr error
	scanErr   error
	deleteErr error
	updates   int
}

func (f *faultyStore) Put(ctx context.Context, item models.Item) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Store.Put(ctx, item)
}

func (f *faultyStore) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (models.Item, error) {
	f.updates++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.Store.UpdateFields(ctx, id, fields)
}

func (f *faultyStore) ScanAll(ctx context.Context) ([]models.Item, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return f.Store.ScanAll(ctx)
}

func (f *faultyStore) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Store.Delete(ctx, id)
}

type fixture struct {
	svc   *ResourceService
	store *faultyStore
	blobs *storage.MockFileStorage
	clock *fixedClock
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newFixture(t *testing.T, schema *models.ResourceSchema, ids ...string) *fixture {
	t.Helper()

	if len(ids) == 0 {
		ids = []string{"1"}
	}

	f := &fixture{
		store: &faultyStore{Store: memory.New(schema.Plural)},
		blobs: storage.NewMockFileStorage("bucket"),
		clock: newFixedClock(),
	}

	deps := ResourceDeps{
		Schema: schema,
		Store:  f.store,
		IDs:    &sequenceIDs{ids: ids},
		Clock:  f.clock,
		Logger: quietLogger(),
	}
	if schema.HasBlob() {
		deps.Uploader = NewBlobUploader(f.blobs, schema.Blob.Label, quietLogger())
	}

	svc, err := NewResourceService(deps)
	if err != nil {
		t.Fatalf("NewResourceService() error = %v", err)
	}
	f.svc = svc
	return f
}
