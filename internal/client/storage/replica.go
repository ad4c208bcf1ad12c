package storage

import (
	"context"

	"github.com/iudanet/deltasync/internal/snapshot"
	"github.com/iudanet/deltasync/pkg/api"
)

//go:generate moq -out replica_mock.go . ReplicaStorage

// Status локальный статус записи относительно сервера
type Status string

// Local record statuses
const (
	StatusSynced  Status = "synced"
	StatusCreated Status = "created"
	StatusUpdated Status = "updated"
	StatusDeleted Status = "deleted"
)

// Pending reports whether the record carries a local change not yet pushed
func (s Status) Pending() bool {
	return s != StatusSynced
}

// LocalRecord запись локальной реплики
type LocalRecord struct {
	Record api.Record `json:"record"`
	Status Status     `json:"status"`
}

// ApplyStats reports what a pull changed in the replica
type ApplyStats struct {
	Applied   int // записи сохранены или обновлены
	Removed   int // записи удалены по tombstone сервера
	KeptLocal int // пропущены: локальное изменение еще не отправлено
}

// ReplicaStorage is the local copy of the server tables
type ReplicaStorage interface {
	// GetRecord returns a record or ErrRecordNotFound
	GetRecord(ctx context.Context, table, id string) (*LocalRecord, error)

	// PutRecord stores a record as is
	PutRecord(ctx context.Context, table string, rec LocalRecord) error

	// RemoveRecord deletes a record from the replica; missing ids are ignored
	RemoveRecord(ctx context.Context, table, id string) error

	// ListRecords returns every record of a table ordered by id
	ListRecords(ctx context.Context, table string) ([]LocalRecord, error)

	// PendingChanges collects local changes of every table in push format
	PendingChanges(ctx context.Context) (api.Changes, error)

	// ApplyPull merges pulled changes and saves serverTimestamp as the new
	// checkpoint in a single transaction. Records with pending local changes are
	// kept; server tombstones remove records regardless of local state.
	ApplyPull(ctx context.Context, changes api.Changes, serverTimestamp int64) (ApplyStats, error)

	// MarkSynced clears the pending status of pushed records and drops pushed deletions
	MarkSynced(ctx context.Context, pushed api.Changes) error

	// GetLastPulledAt returns the checkpoint, 0 before the first sync
	GetLastPulledAt(ctx context.Context) (int64, error)

	// LoadSnapshot replaces the replica with a bootstrap snapshot
	LoadSnapshot(ctx context.Context, snap *snapshot.Snapshot) error
}
