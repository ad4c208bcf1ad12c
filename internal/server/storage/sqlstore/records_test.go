package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/deltasync/internal/catalog"
	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/server/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// in-memory база для тестов
	s, err := New(ctx, Options{Driver: DriverSQLite, DSN: ":memory:"}, catalog.Tables())
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}

	return s, cleanup
}

func upsert(t *testing.T, s *Storage, schema models.TableSchema, rec models.Record, checkpoint, now int64) (storage.UpsertResult, error) {
	t.Helper()

	var result storage.UpsertResult
	err := s.WithTx(context.Background(), func(tx storage.RecordTx) error {
		var err error
		result, err = tx.Upsert(context.Background(), schema, rec, checkpoint, now)
		return err
	})
	return result, err
}

func product(id string, fields map[string]any) models.Record {
	return models.Record{ID: id, Fields: fields}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(context.Background(), Options{Driver: "mysql", DSN: "x"}, catalog.Tables())
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrUnsupportedDriver)
}

func TestStorage_Upsert_InsertThenUpdate(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	res, err := upsert(t, s, catalog.Products, product("p1", map[string]any{
		"name":        "Apple",
		"price_cents": int64(120),
		"archived":    false,
	}), 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, storage.Inserted, res)

	got, err := s.Get(ctx, catalog.Products, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, int64(1000), got.LastModified)
	assert.Equal(t, int64(1000), got.ServerCreatedAt)
	assert.False(t, got.IsDeleted)
	assert.Equal(t, "Apple", got.Fields["name"])
	assert.Equal(t, int64(120), got.Fields["price_cents"])
	assert.Equal(t, false, got.Fields["archived"])
	assert.Nil(t, got.Fields["sku"])

	// partial update keeps fields that were not sent
	res, err = upsert(t, s, catalog.Products, product("p1", map[string]any{
		"name": "Green apple",
	}), 1000, 2000)
	require.NoError(t, err)
	assert.Equal(t, storage.Updated, res)

	got, err = s.Get(ctx, catalog.Products, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got.LastModified)
	assert.Equal(t, int64(1000), got.ServerCreatedAt)
	assert.Equal(t, "Green apple", got.Fields["name"])
	assert.Equal(t, int64(120), got.Fields["price_cents"])
}

func TestStorage_Upsert_Stale(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := upsert(t, s, catalog.Categories, product("c1", map[string]any{"name": "Fruit"}), 0, 5000)
	require.NoError(t, err)

	tests := []struct {
		name       string
		checkpoint int64
		wantErr    error
		wantResult storage.UpsertResult
	}{
		{name: "checkpoint before last_modified", checkpoint: 4999, wantErr: storage.ErrStaleRecord},
		{name: "checkpoint equals last_modified", checkpoint: 5000, wantResult: storage.Updated},
	}

	now := int64(6000)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := upsert(t, s, catalog.Categories, product("c1", map[string]any{"name": "Veg"}), tt.checkpoint, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, res)
		})
	}
}

func TestStorage_WithTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx storage.RecordTx) error {
		_, err := tx.Upsert(ctx, catalog.Categories, product("c1", map[string]any{"name": "A"}), 0, 100)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Get(ctx, catalog.Categories, "c1")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestStorage_MarkDeleted(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := upsert(t, s, catalog.Categories, product("c1", map[string]any{"name": "A"}), 0, 100)
	require.NoError(t, err)

	var deleted, missing bool
	err = s.WithTx(ctx, func(tx storage.RecordTx) error {
		var err error
		if deleted, err = tx.MarkDeleted(ctx, catalog.Categories, "c1", 200); err != nil {
			return err
		}
		missing, err = tx.MarkDeleted(ctx, catalog.Categories, "nope", 200)
		return err
	})
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, missing)

	got, err := s.Get(ctx, catalog.Categories, "c1")
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, int64(200), got.LastModified)

	live, err := s.ListLive(ctx, catalog.Categories)
	require.NoError(t, err)
	assert.Empty(t, live)

	// accepted write revives the tombstone
	_, err = upsert(t, s, catalog.Categories, product("c1", map[string]any{"name": "B"}), 200, 300)
	require.NoError(t, err)

	got, err = s.Get(ctx, catalog.Categories, "c1")
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)
}

func TestStorage_ChangedSince(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	for i, id := range []string{"a", "b", "c"} {
		_, err := upsert(t, s, catalog.Categories, product(id, map[string]any{"name": id}), 0, int64(100*(i+1)))
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		since int64
		until int64
		want  []string
	}{
		{name: "everything", since: 0, until: 1000, want: []string{"a", "b", "c"}},
		{name: "since is exclusive", since: 100, until: 1000, want: []string{"b", "c"}},
		{name: "until is inclusive", since: 0, until: 200, want: []string{"a", "b"}},
		{name: "empty window", since: 300, until: 1000, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := s.ChangedSince(ctx, catalog.Categories, tt.since, tt.until)
			require.NoError(t, err)

			ids := []string{}
			for _, r := range records {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStorage_MaxLastModified(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	ts, err := s.MaxLastModified(ctx, catalog.Tables())
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	_, err = upsert(t, s, catalog.Categories, product("c1", map[string]any{"name": "A"}), 0, 700)
	require.NoError(t, err)
	_, err = upsert(t, s, catalog.Products, product("p1", map[string]any{"name": "B"}), 0, 900)
	require.NoError(t, err)

	ts, err = s.MaxLastModified(ctx, catalog.Tables())
	require.NoError(t, err)
	assert.Equal(t, int64(900), ts)
}

func TestStorage_UnknownTable(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.ListLive(ctx, models.TableSchema{Name: "users"})
	assert.ErrorIs(t, err, storage.ErrUnknownTable)
}

func TestDialect_Rebind(t *testing.T) {
	pg := dialects[DriverPostgres]
	lite := dialects[DriverSQLite]

	query := "UPDATE t SET a = ?, b = ? WHERE id = ?"
	assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3", pg.rebind(query))
	assert.Equal(t, query, lite.rebind(query))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
