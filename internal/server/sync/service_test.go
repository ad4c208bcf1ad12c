package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/deltasync/internal/catalog"
	"github.com/iudanet/deltasync/internal/clock"
	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/server/storage"
	"github.com/iudanet/deltasync/internal/server/storage/sqlstore"
	"github.com/iudanet/deltasync/pkg/api"
)

// manualTime is a time source that only moves when told to
type manualTime struct {
	ms atomic.Int64
}

func (m *manualTime) now() time.Time { return time.UnixMilli(m.ms.Load()) }

func (m *manualTime) set(ms int64) { m.ms.Store(ms) }

type testEnv struct {
	svc   *Service
	store *sqlstore.Storage
	time  *manualTime
}

func setupService(t *testing.T) *testEnv {
	t.Helper()
	return setupServiceAt(t, ":memory:", 10_000)
}

// setupServiceAt opens a service over dsn with the manual clock set to ms
func setupServiceAt(t *testing.T, dsn string, ms int64) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := sqlstore.New(ctx, sqlstore.Options{Driver: sqlstore.DriverSQLite, DSN: dsn}, catalog.Tables())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	registry, err := NewRegistry(catalog.Tables()...)
	require.NoError(t, err)

	mt := &manualTime{}
	mt.set(ms)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, registry, clock.NewWithSource(mt.now), logger)

	return &testEnv{svc: svc, store: store, time: mt}
}

// seed writes a record directly with the given server timestamps
func (e *testEnv) seed(t *testing.T, schema models.TableSchema, id string, fields map[string]any, createdAt, modifiedAt int64) {
	t.Helper()
	ctx := context.Background()

	err := e.store.WithTx(ctx, func(tx storage.RecordTx) error {
		if _, err := tx.Upsert(ctx, schema, models.Record{ID: id, Fields: fields}, createdAt, createdAt); err != nil {
			return err
		}
		if modifiedAt != createdAt {
			_, err := tx.Upsert(ctx, schema, models.Record{ID: id, Fields: map[string]any{}}, modifiedAt, modifiedAt)
			return err
		}
		return nil
	})
	require.NoError(t, err)
}

func (e *testEnv) tombstone(t *testing.T, schema models.TableSchema, id string, at int64) {
	t.Helper()
	ctx := context.Background()

	err := e.store.WithTx(ctx, func(tx storage.RecordTx) error {
		_, err := tx.MarkDeleted(ctx, schema, id, at)
		return err
	})
	require.NoError(t, err)
}

func (e *testEnv) get(t *testing.T, schema models.TableSchema, id string) *models.Record {
	t.Helper()
	rec, err := e.store.Get(context.Background(), schema, id)
	require.NoError(t, err)
	return rec
}

func ids(records []api.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}

func TestPush_IdempotentCreate(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)
	env.seed(t, catalog.Products, "prod_1", map[string]any{"name": "Original"}, 1000, 1000)

	req := api.PushRequest{
		Changes: api.Changes{
			catalog.TableProducts: {Created: []api.Record{{"id": "prod_1", "name": "Retried"}}},
		},
		LastPulledAt: 1000,
	}

	require.NoError(t, env.svc.Push(ctx, req))

	rec := env.get(t, catalog.Products, "prod_1")
	assert.Equal(t, "Retried", rec.Fields["name"])
	assert.Equal(t, int64(1000), rec.ServerCreatedAt)
	assert.Greater(t, rec.LastModified, int64(1000))

	live, err := env.store.ListLive(ctx, catalog.Products)
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

func TestPush_RetriedCreateAfterLostAck(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)

	req := api.PushRequest{
		Changes: api.Changes{
			catalog.TableCategories: {Created: []api.Record{{"id": "c1", "name": "Fruit"}}},
		},
	}

	require.NoError(t, env.svc.Push(ctx, req))

	// the client never saw the ack: it pulls, then resends the same create
	pull, err := env.svc.Pull(ctx, 0, false)
	require.NoError(t, err)

	env.time.set(20_000)
	req.LastPulledAt = pull.Response.ServerTimestamp
	require.NoError(t, env.svc.Push(ctx, req))

	live, err := env.store.ListLive(ctx, catalog.Categories)
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

func TestPush_Conflict(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)
	env.seed(t, catalog.Products, "prod_1", map[string]any{"name": "Server"}, 2000, 2000)

	err := env.svc.Push(ctx, api.PushRequest{
		Changes: api.Changes{
			catalog.TableProducts: {Updated: []api.Record{{"id": "prod_1", "name": "Client"}}},
		},
		LastPulledAt: 500,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, catalog.TableProducts, conflict.Table)
	assert.Equal(t, "prod_1", conflict.ID)

	rec := env.get(t, catalog.Products, "prod_1")
	assert.Equal(t, "Server", rec.Fields["name"])
	assert.Equal(t, int64(2000), rec.LastModified)
}

func TestPush_ConflictRollsBackOtherTables(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)
	env.seed(t, catalog.Products, "prod_1", map[string]any{"name": "Server"}, 2000, 2000)
	env.seed(t, catalog.Categories, "cat_1", map[string]any{"name": "Keep"}, 100, 100)

	err := env.svc.Push(ctx, api.PushRequest{
		Changes: api.Changes{
			catalog.TableCategories: {
				Created: []api.Record{{"id": "cat_new", "name": "New"}},
				Deleted: []string{"cat_1"},
			},
			catalog.TableProducts: {Updated: []api.Record{{"id": "prod_1", "name": "Client"}}},
		},
		LastPulledAt: 1000,
	})
	require.ErrorIs(t, err, ErrConflict)

	_, err = env.store.Get(ctx, catalog.Categories, "cat_new")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
	assert.False(t, env.get(t, catalog.Categories, "cat_1").IsDeleted)
}

func TestPush_Atomicity(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)

	err := env.svc.Push(ctx, api.PushRequest{
		Changes: api.Changes{
			catalog.TableProducts: {Created: []api.Record{
				{"id": "valid_1", "name": "Fine"},
				{"id": "invalid_1", "name": nil},
			}},
		},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConflict)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "invalid_1", vErr.ID)
	assert.Equal(t, "name", vErr.Field)

	_, err = env.store.Get(ctx, catalog.Products, "valid_1")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestPush_Validation(t *testing.T) {
	tests := []struct {
		name      string
		req       api.PushRequest
		wantTable string
		wantField string
	}{
		{
			name: "unknown table",
			req: api.PushRequest{Changes: api.Changes{
				"users": {Created: []api.Record{{"id": "u1"}}},
			}},
			wantTable: "users",
		},
		{
			name: "missing id",
			req: api.PushRequest{Changes: api.Changes{
				catalog.TableCategories: {Created: []api.Record{{"name": "x"}}},
			}},
			wantTable: catalog.TableCategories,
			wantField: "id",
		},
		{
			name: "invalid id",
			req: api.PushRequest{Changes: api.Changes{
				catalog.TableCategories: {Created: []api.Record{{"id": "a b", "name": "x"}}},
			}},
			wantTable: catalog.TableCategories,
			wantField: "id",
		},
		{
			name: "unknown field",
			req: api.PushRequest{Changes: api.Changes{
				catalog.TableCategories: {Created: []api.Record{{"id": "c1", "name": "x", "weight": 3}}},
			}},
			wantTable: catalog.TableCategories,
			wantField: "weight",
		},
		{
			name: "wrong type",
			req: api.PushRequest{Changes: api.Changes{
				catalog.TableProducts: {Updated: []api.Record{{"id": "p1", "name": "x", "price_cents": "cheap"}}},
			}},
			wantTable: catalog.TableProducts,
			wantField: "price_cents",
		},
		{
			name: "fractional integer",
			req: api.PushRequest{Changes: api.Changes{
				catalog.TableProducts: {Created: []api.Record{{"id": "p1", "name": "x", "quantity": json.Number("1.5")}}},
			}},
			wantTable: catalog.TableProducts,
			wantField: "quantity",
		},
		{
			name: "missing required field",
			req: api.PushRequest{Changes: api.Changes{
				catalog.TableProducts: {Created: []api.Record{{"id": "p1", "sku": "S"}}},
			}},
			wantTable: catalog.TableProducts,
			wantField: "name",
		},
		{
			name: "duplicate id across created and updated",
			req: api.PushRequest{Changes: api.Changes{
				catalog.TableCategories: {
					Created: []api.Record{{"id": "c1", "name": "a"}},
					Updated: []api.Record{{"id": "c1", "name": "b"}},
				},
			}},
			wantTable: catalog.TableCategories,
		},
		{
			name: "duplicate id in deleted",
			req: api.PushRequest{Changes: api.Changes{
				catalog.TableCategories: {
					Created: []api.Record{{"id": "c1", "name": "a"}},
					Deleted: []string{"c1"},
				},
			}},
			wantTable: catalog.TableCategories,
		},
		{
			name: "negative checkpoint",
			req:  api.PushRequest{LastPulledAt: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupService(t)

			err := env.svc.Push(context.Background(), tt.req)
			require.Error(t, err)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantTable, vErr.Table)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, vErr.Field)
			}
		})
	}
}

func TestPush_NormalizesKeysAndIgnoresBookkeeping(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)

	err := env.svc.Push(ctx, api.PushRequest{
		Changes: api.Changes{
			catalog.TableProducts: {Created: []api.Record{{
				"id":              "p1",
				"name":            "Pear",
				"categoryId":      "c1",
				"priceCents":      json.Number("250"),
				"_status":         "created",
				"_changed":        "name,price_cents",
				"last_modified":   json.Number("1"),
				"serverCreatedAt": json.Number("1"),
			}}},
		},
	})
	require.NoError(t, err)

	rec := env.get(t, catalog.Products, "p1")
	assert.Equal(t, "c1", rec.Fields["category_id"])
	assert.Equal(t, int64(250), rec.Fields["price_cents"])
	assert.Equal(t, int64(10_000), rec.ServerCreatedAt)
	assert.Equal(t, int64(10_000), rec.LastModified)
}

func TestPush_Deletes(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)
	env.seed(t, catalog.Categories, "c1", map[string]any{"name": "A"}, 100, 100)

	err := env.svc.Push(ctx, api.PushRequest{
		Changes: api.Changes{
			catalog.TableCategories: {Deleted: []string{"c1", "never_seen"}},
		},
		LastPulledAt: 100,
	})
	require.NoError(t, err)

	rec := env.get(t, catalog.Categories, "c1")
	assert.True(t, rec.IsDeleted)
	assert.Equal(t, int64(10_000), rec.LastModified)

	_, err = env.store.Get(ctx, catalog.Categories, "never_seen")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestPush_SingleTimestampPerBatch(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)

	err := env.svc.Push(ctx, api.PushRequest{
		Changes: api.Changes{
			catalog.TableCategories: {Created: []api.Record{{"id": "c1", "name": "A"}, {"id": "c2", "name": "B"}}},
			catalog.TableProducts:   {Created: []api.Record{{"id": "p1", "name": "C"}}},
		},
	})
	require.NoError(t, err)

	c1 := env.get(t, catalog.Categories, "c1")
	c2 := env.get(t, catalog.Categories, "c2")
	p1 := env.get(t, catalog.Products, "p1")
	assert.Equal(t, c1.LastModified, c2.LastModified)
	assert.Equal(t, c1.LastModified, p1.LastModified)
}

func TestPush_CancelledContextRollsBack(t *testing.T) {
	env := setupService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := env.svc.Push(ctx, api.PushRequest{
		Changes: api.Changes{
			catalog.TableCategories: {Created: []api.Record{{"id": "c1", "name": "A"}}},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)

	_, err = env.store.Get(context.Background(), catalog.Categories, "c1")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestPull_Classification(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)

	env.seed(t, catalog.Products, "upd_1", map[string]any{"name": "Updated"}, 500, 1500)
	env.seed(t, catalog.Products, "new_1", map[string]any{"name": "New"}, 1200, 1200)
	env.seed(t, catalog.Products, "edge_1", map[string]any{"name": "Edge"}, 1000, 1100)
	env.seed(t, catalog.Products, "old_1", map[string]any{"name": "Old"}, 100, 900)
	env.seed(t, catalog.Products, "del_1", map[string]any{"name": "Gone"}, 100, 100)
	env.tombstone(t, catalog.Products, "del_1", 1300)

	res, err := env.svc.Pull(ctx, 1000, false)
	require.NoError(t, err)
	assert.Nil(t, res.Raw)

	products := res.Response.Changes[catalog.TableProducts]
	assert.ElementsMatch(t, []string{"new_1"}, ids(products.Created))
	assert.ElementsMatch(t, []string{"upd_1", "edge_1"}, ids(products.Updated))
	assert.Equal(t, []string{"del_1"}, products.Deleted)

	// every table is present even without changes
	categories, ok := res.Response.Changes[catalog.TableCategories]
	require.True(t, ok)
	assert.NotNil(t, categories.Created)
	assert.NotNil(t, categories.Updated)
	assert.NotNil(t, categories.Deleted)
	assert.Empty(t, categories.Created)
}

func TestPull_FirstSyncCompleteness(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)

	env.seed(t, catalog.Categories, "c1", map[string]any{"name": "A"}, 100, 5000)
	env.seed(t, catalog.Categories, "c2", map[string]any{"name": "B"}, 200, 200)
	env.tombstone(t, catalog.Categories, "c2", 300)
	env.seed(t, catalog.Products, "p1", map[string]any{"name": "C"}, 9000, 9000)

	res, err := env.svc.Pull(ctx, 0, false)
	require.NoError(t, err)

	categories := res.Response.Changes[catalog.TableCategories]
	assert.Equal(t, []string{"c1"}, ids(categories.Created))
	assert.Empty(t, categories.Updated)
	assert.Equal(t, []string{"c2"}, categories.Deleted)

	products := res.Response.Changes[catalog.TableProducts]
	assert.Equal(t, []string{"p1"}, ids(products.Created))
}

func TestPushPull_RoundTrip(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)
	env.time.set(3000)

	require.NoError(t, env.svc.Push(ctx, api.PushRequest{
		Changes: api.Changes{
			catalog.TableProducts: {Created: []api.Record{{"id": "x", "name": "X", "archived": true}}},
		},
	}))
	x := env.get(t, catalog.Products, "x")

	env.time.set(4000)

	below, err := env.svc.Pull(ctx, x.LastModified-1, false)
	require.NoError(t, err)
	created := below.Response.Changes[catalog.TableProducts].Created
	require.Len(t, created, 1)
	assert.Equal(t, "x", created[0].ID())
	assert.Equal(t, true, created[0]["archived"])
	assert.Nil(t, created[0]["sku"])
	assert.Contains(t, created[0], "sku")

	atOrAbove, err := env.svc.Pull(ctx, x.LastModified, false)
	require.NoError(t, err)
	p := atOrAbove.Response.Changes[catalog.TableProducts]
	assert.Empty(t, p.Created)
	assert.Empty(t, p.Updated)
	assert.Empty(t, p.Deleted)
	assert.GreaterOrEqual(t, atOrAbove.Response.ServerTimestamp, x.LastModified)
}

func TestPull_WatermarkExcludesInFlightWrites(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)

	// a push took its timestamp but has not committed yet
	now, done := env.svc.clock.BeginWrite()
	defer done()

	res, err := env.svc.Pull(ctx, 0, false)
	require.NoError(t, err)
	assert.Less(t, res.Response.ServerTimestamp, now)
}

func TestPull_NegativeCheckpoint(t *testing.T) {
	env := setupService(t)

	_, err := env.svc.Pull(context.Background(), -5, false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPull_Turbo(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)

	env.seed(t, catalog.Categories, "c1", map[string]any{"name": "Fruit", "color": "#ff0000"}, 100, 100)
	env.seed(t, catalog.Categories, "c2", map[string]any{"name": "Old"}, 200, 200)
	env.tombstone(t, catalog.Categories, "c2", 250)
	env.seed(t, catalog.Products, "p1", map[string]any{
		"name":        "Apple",
		"sku":         "APL-1",
		"price_cents": int64(120),
		"quantity":    int64(10),
		"category_id": "c1",
		"archived":    false,
	}, 300, 300)
	require.NoError(t, env.svc.Init(ctx))
	env.time.set(5000)

	turbo, err := env.svc.Pull(ctx, 0, true)
	require.NoError(t, err)
	require.NotNil(t, turbo.Raw)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "turbo_first_sync", turbo.Raw)

	// the structured response encodes to the same bytes
	var structured bytes.Buffer
	require.NoError(t, json.NewEncoder(&structured).Encode(turbo.Response))
	assert.Equal(t, structured.Bytes(), []byte(turbo.Raw))

	// a plain first sync at the same moment writes identical bytes
	plain, err := env.svc.Pull(ctx, 0, false)
	require.NoError(t, err)
	require.Nil(t, plain.Raw)
	var plainBody bytes.Buffer
	require.NoError(t, json.NewEncoder(&plainBody).Encode(plain.Response))
	assert.Equal(t, string(turbo.Raw), plainBody.String())

	// ignored on a non-first sync
	normal, err := env.svc.Pull(ctx, 100, true)
	require.NoError(t, err)
	assert.Nil(t, normal.Raw)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)
	env.seed(t, catalog.Categories, "c1", map[string]any{"name": "Old"}, 50_000, 50_000)
	require.NoError(t, env.svc.Init(ctx))

	stats, err := env.svc.Import(ctx, catalog.TableCategories, []api.Record{
		{"id": "c1", "name": "Overwritten"},
		{"id": "c2", "name": "Fresh"},
	})
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Inserted: 1, Updated: 1}, stats)

	c1 := env.get(t, catalog.Categories, "c1")
	assert.Equal(t, "Overwritten", c1.Fields["name"])
	assert.Equal(t, int64(50_000), c1.ServerCreatedAt)

	assert.Greater(t, c1.LastModified, int64(50_000))

	c2 := env.get(t, catalog.Categories, "c2")
	assert.Equal(t, c1.LastModified, c2.LastModified)
	assert.Equal(t, c2.ServerCreatedAt, c2.LastModified)

	_, err = env.svc.Import(ctx, "users", []api.Record{{"id": "u1"}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInit_ObservesPersistedTimestamps(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)
	env.seed(t, catalog.Products, "p1", map[string]any{"name": "Future"}, 90_000, 90_000)

	require.NoError(t, env.svc.Init(ctx))
	require.NoError(t, env.svc.Push(ctx, api.PushRequest{
		Changes: api.Changes{
			catalog.TableProducts: {Created: []api.Record{{"id": "p2", "name": "Now"}}},
		},
	}))

	assert.Greater(t, env.get(t, catalog.Products, "p2").LastModified, int64(90_000))
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	env := setupService(t)

	env.seed(t, catalog.Categories, "c1", map[string]any{"name": "A"}, 100, 100)
	env.seed(t, catalog.Categories, "c2", map[string]any{"name": "B"}, 100, 100)
	env.tombstone(t, catalog.Categories, "c2", 200)

	snap, err := env.svc.Bootstrap(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(10_000), snap.LastPulledAt)
	assert.Equal(t, []string{"c1"}, ids(snap.Tables[catalog.TableCategories]))
	assert.NotNil(t, snap.Tables[catalog.TableProducts])
	assert.Empty(t, snap.Tables[catalog.TableProducts])
}

func TestPull_CheckpointSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "deltasync.db")

	// частые pull в пределах одной миллисекунды
	first := setupServiceAt(t, dsn, 10_000)
	require.NoError(t, first.svc.Init(ctx))

	var checkpoint int64
	for range 500 {
		res, err := first.svc.Pull(ctx, checkpoint, false)
		require.NoError(t, err)
		checkpoint = res.Response.ServerTimestamp
	}
	assert.Equal(t, int64(10_000), checkpoint)
	require.NoError(t, first.store.Close())

	// перезапуск через 100ms: новый процесс не знает выданных watermark
	second := setupServiceAt(t, dsn, 10_100)
	require.NoError(t, second.svc.Init(ctx))
	require.NoError(t, second.svc.Push(ctx, api.PushRequest{
		Changes: api.Changes{
			catalog.TableProducts: {Created: []api.Record{{"id": "late", "name": "After restart"}}},
		},
		LastPulledAt: checkpoint,
	}))

	res, err := second.svc.Pull(ctx, checkpoint, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, ids(res.Response.Changes[catalog.TableProducts].Created))
}

func TestPush_ConcurrentSameRecord(t *testing.T) {
	tests := []struct {
		name    string
		seeded  bool
		changes func(id string) api.TableChanges
	}{
		{
			name: "create",
			changes: func(id string) api.TableChanges {
				return api.TableChanges{Created: []api.Record{{"id": id, "name": "Mine"}}}
			},
		},
		{
			name:   "update",
			seeded: true,
			changes: func(id string) api.TableChanges {
				return api.TableChanges{Updated: []api.Record{{"id": id, "name": "Mine"}}}
			},
		},
	}

	const (
		rounds  = 20
		writers = 4
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			env := setupServiceAt(t, filepath.Join(t.TempDir(), "deltasync.db"), 10_000)
			require.NoError(t, env.svc.Init(ctx))

			for round := range rounds {
				id := fmt.Sprintf("p%d", round)
				if tt.seeded {
					env.seed(t, catalog.Products, id, map[string]any{"name": "Seed"}, 1000, 1000)
				}

				res, err := env.svc.Pull(ctx, 0, false)
				require.NoError(t, err)
				req := api.PushRequest{
					Changes:      api.Changes{catalog.TableProducts: tt.changes(id)},
					LastPulledAt: res.Response.ServerTimestamp,
				}

				errs := make([]error, writers)
				start := make(chan struct{})
				var wg sync.WaitGroup
				for i := range writers {
					wg.Add(1)
					go func() {
						defer wg.Done()
						<-start
						errs[i] = env.svc.Push(ctx, req)
					}()
				}
				close(start)
				wg.Wait()

				succeeded := 0
				for _, err := range errs {
					if err == nil {
						succeeded++
						continue
					}
					assert.True(t, errors.Is(err, ErrConflict), "round %d: unexpected error %v", round, err)
				}
				assert.Equal(t, 1, succeeded, "round %d", round)
			}
		})
	}
}
