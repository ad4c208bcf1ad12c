package sync

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/server/storage"
	"github.com/iudanet/deltasync/internal/validation"
	"github.com/iudanet/deltasync/pkg/api"
)

// tableBatch is the validated part of a push for one table
type tableBatch struct {
	table   Table
	upserts []models.Record
	deletes []string
}

// Push applies a client batch in a single transaction.
//
// The batch is validated as a whole before any write. Every created or
// updated record is written only if it is absent on the server or was last
// modified at or before req.LastPulledAt; otherwise the whole batch rolls back
// with a *ConflictError. Deletes turn records into tombstones; unknown ids
// are ignored. All writes of one push share the same timestamp.
func (s *Service) Push(ctx context.Context, req api.PushRequest) error {
	batches, err := s.validatePush(req)
	if err != nil {
		s.logger.Warn("Push rejected", "error", err)
		return err
	}

	now, done := s.clock.BeginWrite()
	defer done()

	var inserted, updated, deleted int

	err = s.store.WithTx(ctx, func(tx storage.RecordTx) error {
		inserted, updated, deleted = 0, 0, 0

		for _, b := range batches {
			for _, rec := range b.upserts {
				res, err := tx.Upsert(ctx, b.table.Schema, rec, req.LastPulledAt, now)
				if errors.Is(err, storage.ErrStaleRecord) {
					return &ConflictError{Table: b.table.Schema.Name, ID: rec.ID}
				}
				if err != nil {
					return &StorageError{Op: "push " + b.table.Schema.Name, Err: err}
				}

				if res == storage.Inserted {
					inserted++
				} else {
					updated++
				}
			}

			for _, id := range b.deletes {
				ok, err := tx.MarkDeleted(ctx, b.table.Schema, id, now)
				if err != nil {
					return &StorageError{Op: "push " + b.table.Schema.Name, Err: err}
				}
				if ok {
					deleted++
				}
			}
		}

		return nil
	})
	if err != nil {
		var conflict *ConflictError
		var storageErr *StorageError
		switch {
		case errors.As(err, &conflict):
			s.logger.Info("Push conflict, batch rolled back",
				"table", conflict.Table,
				"id", conflict.ID,
				"last_pulled_at", req.LastPulledAt,
			)
			return err
		case errors.As(err, &storageErr):
			s.logger.Error("Push failed, batch rolled back", "error", err)
			return err
		default:
			s.logger.Error("Push transaction failed", "error", err)
			return &StorageError{Op: "push commit", Err: err}
		}
	}

	s.logger.Info("Push committed",
		"last_pulled_at", req.LastPulledAt,
		"timestamp", now,
		"inserted", inserted,
		"updated", updated,
		"deleted", deleted,
	)

	return nil
}

// validatePush decodes and checks the whole batch without touching the store
func (s *Service) validatePush(req api.PushRequest) ([]tableBatch, error) {
	if req.LastPulledAt < 0 {
		return nil, &ValidationError{Field: api.ParamLastPulledAt, Reason: "must not be negative"}
	}

	batches := make([]tableBatch, 0, len(req.Changes))

	// sorted for a deterministic error and write order
	for _, name := range slices.Sorted(maps.Keys(req.Changes)) {
		table, ok := s.registry.Lookup(name)
		if !ok {
			return nil, &ValidationError{Table: name, Reason: "unknown table"}
		}

		changes := req.Changes[name]
		b := tableBatch{
			table:   table,
			upserts: make([]models.Record, 0, len(changes.Created)+len(changes.Updated)),
			deletes: make([]string, 0, len(changes.Deleted)),
		}
		seen := make(map[string]struct{}, len(changes.Created)+len(changes.Updated)+len(changes.Deleted))

		for _, raw := range slices.Concat(changes.Created, changes.Updated) {
			rec, err := table.Codec.Decode(raw)
			if err != nil {
				return nil, asValidationError(name, raw.ID(), err)
			}
			if _, dup := seen[rec.ID]; dup {
				return nil, &ValidationError{Table: name, ID: rec.ID, Reason: "duplicate id in batch"}
			}
			seen[rec.ID] = struct{}{}
			b.upserts = append(b.upserts, rec)
		}

		for _, id := range changes.Deleted {
			if err := validateDeletedID(name, id); err != nil {
				return nil, err
			}
			if _, dup := seen[id]; dup {
				return nil, &ValidationError{Table: name, ID: id, Reason: "duplicate id in batch"}
			}
			seen[id] = struct{}{}
			b.deletes = append(b.deletes, id)
		}

		batches = append(batches, b)
	}

	return batches, nil
}

func validateDeletedID(table, id string) error {
	if err := validation.ValidateRecordID(id); err != nil {
		return &ValidationError{Table: table, ID: id, Field: models.ColumnID, Reason: err.Error()}
	}
	return nil
}

// asValidationError keeps a codec's *ValidationError and wraps anything else
func asValidationError(table, id string, err error) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return err
	}
	return &ValidationError{Table: table, ID: id, Reason: err.Error()}
}
