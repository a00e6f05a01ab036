package sqlite

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-content-api/internal/database"
	"blog-content-api/internal/models"
	"blog-content-api/internal/store"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newMigratedStore(t *testing.T, table string) *Store {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrationManager(db, quietLogger()).RunMigrations())
	return New(db, table, quietLogger())
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newMigratedStore(t, "Posts")

	item := models.Item{"id": "p1", "title": "Hello", "published": false}
	require.NoError(t, s.Put(ctx, item))

	got, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got["title"])
	assert.Equal(t, false, got["published"])

	updated, err := s.UpdateFields(ctx, "p1", map[string]interface{}{"title": "Changed"})
	require.NoError(t, err)
	assert.Equal(t, "Changed", updated["title"])
	assert.Equal(t, false, updated["published"])

	items, err := s.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Changed", items[0]["title"])

	require.NoError(t, s.Delete(ctx, "p1"))
	require.NoError(t, s.Delete(ctx, "p1"))

	_, err = s.Get(ctx, "p1")
	assert.True(t, store.IsNotFound(err))
}

func TestStore_TablesAreIsolated(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.NewMigrationManager(db, quietLogger()).RunMigrations())

	posts := New(db, "Posts", quietLogger())
	categories := New(db, "Categories", quietLogger())

	require.NoError(t, posts.Put(ctx, models.Item{"id": "1", "title": "post"}))
	require.NoError(t, categories.Put(ctx, models.Item{"id": "1", "title": "category"}))

	got, err := posts.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "post", got["title"])

	all, err := categories.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "category", all[0]["title"])
}

func TestStore_UpdateFieldsMissing(t *testing.T) {
	s := newMigratedStore(t, "Profiles")

	_, err := s.UpdateFields(context.Background(), "ghost", map[string]interface{}{"username": "x"})
	assert.True(t, store.IsNotFound(err))

	items, err := s.ScanAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStore_PutWithoutID(t *testing.T) {
	s := newMigratedStore(t, "Posts")
	err := s.Put(context.Background(), models.Item{"title": "x"})
	assert.ErrorIs(t, err, store.ErrInvalidItem)
}

func TestStore_GetQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectItemQuery)).
		WithArgs("Posts", "1").
		WillReturnError(errors.New("disk I/O error"))

	s := New(db, "Posts", quietLogger())
	_, err = s.Get(context.Background(), "1")
	require.Error(t, err)
	assert.False(t, store.IsNotFound(err))

	var storeErr *store.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "get", storeErr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_PutUsesUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(upsertItemQuery)).
		WithArgs("Categories", "c1", `{"id":"c1","title":"Tech"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s := New(db, "Categories", quietLogger())
	require.NoError(t, s.Put(context.Background(), models.Item{"id": "c1", "title": "Tech"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateFieldsRollsBackOnWriteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectItemQuery)).
		WithArgs("Posts", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`{"id":"p1","title":"Old"}`))
	mock.ExpectExec(regexp.QuoteMeta(updateItemQuery)).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	s := New(db, "Posts", quietLogger())
	_, err = s.UpdateFields(context.Background(), "p1", map[string]interface{}{"title": "New"})
	require.Error(t, err)
	assert.False(t, store.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
