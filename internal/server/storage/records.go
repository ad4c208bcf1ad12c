package storage

import (
	"context"

	"github.com/iudanet/deltasync/internal/models"
)

// UpsertResult reports how an accepted upsert was applied
type UpsertResult int

// UpsertResult константы
const (
	// Updated means an existing record was overwritten
	Updated UpsertResult = iota + 1
	// Inserted means the record did not exist and was created
	Inserted
)

// String returns a human readable name of the result
func (r UpsertResult) String() string {
	switch r {
	case Updated:
		return "updated"
	case Inserted:
		return "inserted"
	default:
		return "unknown"
	}
}

// RecordStorage defines interface for synchronized records persistence
type RecordStorage interface {
	// ChangedSince returns every record (including tombstones) of the table with
	// since < last_modified <= until, ordered by last_modified
	ChangedSince(ctx context.Context, table models.TableSchema, since, until int64) ([]models.Record, error)

	// ListLive returns every non-deleted record of the table
	ListLive(ctx context.Context, table models.TableSchema) ([]models.Record, error)

	// Get retrieves a single record by id, tombstones included
	// Returns ErrRecordNotFound if the record doesn't exist
	Get(ctx context.Context, table models.TableSchema, id string) (*models.Record, error)

	// MaxLastModified returns the highest last_modified across the given tables
	// Returns 0 if all tables are empty
	MaxLastModified(ctx context.Context, tables []models.TableSchema) (int64, error)

	// WithTx runs fn inside a single transaction.
	// The transaction commits only if fn returns nil; any error or panic rolls it back.
	WithTx(ctx context.Context, fn func(tx RecordTx) error) error

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}

// RecordTx is the write side of RecordStorage, valid only inside WithTx
type RecordTx interface {
	// Upsert writes the record if it doesn't exist or if the stored record has
	// last_modified <= checkpoint. The check and the write are one statement.
	// Only the business fields present in rec.Fields are written.
	// An accepted write sets last_modified = now, clears is_deleted and,
	// on insert, sets server_created_at = now.
	// Returns ErrStaleRecord if the stored record is newer than checkpoint.
	Upsert(ctx context.Context, table models.TableSchema, rec models.Record, checkpoint, now int64) (UpsertResult, error)

	// MarkDeleted turns the record into a tombstone with last_modified = now
	// Returns false without error if the record doesn't exist
	MarkDeleted(ctx context.Context, table models.TableSchema, id string, now int64) (bool, error)
}
