// Package sync runs the client side of the protocol: pull, apply, push.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	httpClient "github.com/iudanet/deltasync/internal/client/api"
	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/snapshot"
	"github.com/iudanet/deltasync/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// ErrConflict is returned when every attempt of a sync lost the race against
// other clients; local changes are kept and the sync can be retried.
var ErrConflict = errors.New("sync conflict: server changed during sync")

// Service определяет интерфейс для sync.Service
type Service interface {
	// Sync выполняет цикл pull -> apply -> push
	Sync(ctx context.Context, accessToken string, opts Options) (*SyncResult, error)

	// Bootstrap заменяет локальную реплику snapshot файлом сервера
	Bootstrap(ctx context.Context, accessToken string) (*BootstrapResult, error)

	// GetPendingSyncCount возвращает количество записей, ожидающих синхронизации
	GetPendingSyncCount(ctx context.Context) (int, error)
}

// Options параметры синхронизации
type Options struct {
	// Turbo запрашивает предкодированный ответ при первой синхронизации
	Turbo bool
	// MaxAttempts число циклов при конфликте push (минимум 1)
	MaxAttempts int
}

// SyncResult contains sync operation results
type SyncResult struct {
	LastPulledAt int64 // новый checkpoint
	Pulled       int   // записей и tombstone получено с сервера
	Applied      int   // записей сохранено локально
	Removed      int   // записей удалено по tombstone
	KeptLocal    int   // серверных изменений пропущено из-за локальных
	Pushed       int   // локальных изменений отправлено
	Attempts     int
}

// BootstrapResult describes a loaded snapshot
type BootstrapResult struct {
	LastPulledAt int64
	Records      int
}

type service struct {
	apiClient httpClient.ClientAPI
	replica   storage.ReplicaStorage
	logger    *slog.Logger
}

// NewService creates a new sync service
func NewService(apiClient httpClient.ClientAPI, replica storage.ReplicaStorage, logger *slog.Logger) Service {
	return &service{
		apiClient: apiClient,
		replica:   replica,
		logger:    logger,
	}
}

// Sync performs synchronization with the server.
// A push rejected with 409 restarts the cycle with a fresh pull until
// opts.MaxAttempts is exhausted.
func (s *service) Sync(ctx context.Context, accessToken string, opts Options) (*SyncResult, error) {
	attempts := max(opts.MaxAttempts, 1)

	for attempt := 1; ; attempt++ {
		result, err := s.syncOnce(ctx, accessToken, opts.Turbo)
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}
		if !errors.Is(err, httpClient.ErrConflict) {
			return nil, err
		}

		s.logger.Warn("Push rejected with conflict", "attempt", attempt, "max_attempts", attempts)
		if attempt >= attempts {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
	}
}

func (s *service) syncOnce(ctx context.Context, accessToken string, turbo bool) (*SyncResult, error) {
	checkpoint, err := s.replica.GetLastPulledAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	// turbo имеет смысл только для первой синхронизации
	pull, err := s.apiClient.Pull(ctx, accessToken, checkpoint, turbo && checkpoint == 0)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{LastPulledAt: pull.ServerTimestamp}
	for _, tc := range pull.Changes {
		result.Pulled += len(tc.Created) + len(tc.Updated) + len(tc.Deleted)
	}

	stats, err := s.replica.ApplyPull(ctx, pull.Changes, pull.ServerTimestamp)
	if err != nil {
		return nil, err
	}
	result.Applied, result.Removed, result.KeptLocal = stats.Applied, stats.Removed, stats.KeptLocal

	s.logger.Info("Pulled changes",
		"last_pulled_at", checkpoint,
		"server_timestamp", pull.ServerTimestamp,
		"pulled", result.Pulled,
		"applied", stats.Applied,
		"removed", stats.Removed,
		"kept_local", stats.KeptLocal,
	)

	pending, err := s.replica.PendingChanges(ctx)
	if err != nil {
		return nil, err
	}
	result.Pushed = countChanges(pending)
	if result.Pushed == 0 {
		return result, nil
	}

	err = s.apiClient.Push(ctx, accessToken, api.PushRequest{
		Changes:      pending,
		LastPulledAt: pull.ServerTimestamp,
	})
	if err != nil {
		return nil, err
	}

	if err := s.replica.MarkSynced(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to mark pushed records synced: %w", err)
	}

	s.logger.Info("Pushed changes", "pushed", result.Pushed, "last_pulled_at", pull.ServerTimestamp)

	return result, nil
}

// Bootstrap downloads the server snapshot and replaces the local replica.
// Pending local changes are discarded, so it is refused while any exist.
func (s *service) Bootstrap(ctx context.Context, accessToken string) (*BootstrapResult, error) {
	pending, err := s.GetPendingSyncCount(ctx)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, fmt.Errorf("%d local change(s) not synced, run sync first", pending)
	}

	dir, err := os.MkdirTemp("", "deltasync-bootstrap-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "bootstrap.db")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot file: %w", err)
	}

	checkpoint, err := s.apiClient.DownloadBootstrap(ctx, accessToken, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write snapshot file: %w", closeErr)
	}
	if err != nil {
		return nil, err
	}

	snap, err := snapshot.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if snap.LastPulledAt != checkpoint {
		return nil, fmt.Errorf("snapshot checkpoint %d does not match header %d", snap.LastPulledAt, checkpoint)
	}

	if err := s.replica.LoadSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	result := &BootstrapResult{LastPulledAt: snap.LastPulledAt}
	for _, records := range snap.Tables {
		result.Records += len(records)
	}

	s.logger.Info("Bootstrap snapshot loaded", "records", result.Records, "last_pulled_at", result.LastPulledAt)

	return result, nil
}

// GetPendingSyncCount возвращает количество записей, ожидающих синхронизации
func (s *service) GetPendingSyncCount(ctx context.Context) (int, error) {
	pending, err := s.replica.PendingChanges(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending changes: %w", err)
	}
	return countChanges(pending), nil
}

func countChanges(changes api.Changes) int {
	n := 0
	for _, tc := range changes {
		n += len(tc.Created) + len(tc.Updated) + len(tc.Deleted)
	}
	return n
}
