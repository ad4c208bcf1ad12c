// Package sync implements server-side reconciliation: pull, push, import and bootstrap
// over the tables of a Registry.
package sync

import (
	"context"
	"log/slog"

	"github.com/iudanet/deltasync/internal/clock"
	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/server/storage"
	"github.com/iudanet/deltasync/pkg/api"
)

// Service coordinates pulls and pushes against the record store
type Service struct {
	store    storage.RecordStorage
	registry *Registry
	clock    *clock.Clock
	logger   *slog.Logger
}

// NewService creates a new sync service
func NewService(store storage.RecordStorage, registry *Registry, clk *clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		registry: registry,
		clock:    clk,
		logger:   logger,
	}
}

// Init raises the clock above every persisted timestamp.
// Must be called once before serving requests.
func (s *Service) Init(ctx context.Context) error {
	maxTS, err := s.store.MaxLastModified(ctx, s.registry.Schemas())
	if err != nil {
		return &StorageError{Op: "init", Err: err}
	}

	s.clock.Observe(maxTS)
	s.logger.Info("Sync service initialized",
		"tables", len(s.registry.Tables()),
		"max_last_modified", maxTS,
	)

	return nil
}

// Registry returns the tables served by the service
func (s *Service) Registry() *Registry {
	return s.registry
}

// Ping checks that the record store is reachable
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// encodeChanges converts classified store records into wire changes
func encodeChanges(codec Codec, changes models.TableChanges) api.TableChanges {
	out := api.TableChanges{
		Created: make([]api.Record, 0, len(changes.Created)),
		Updated: make([]api.Record, 0, len(changes.Updated)),
		Deleted: changes.Deleted,
	}
	if out.Deleted == nil {
		out.Deleted = []string{}
	}

	for _, rec := range changes.Created {
		out.Created = append(out.Created, codec.Encode(rec))
	}
	for _, rec := range changes.Updated {
		out.Updated = append(out.Updated, codec.Encode(rec))
	}

	return out
}
