// Package cli implements the client commands on top of the local replica and
// the sync service. Output goes through iocli.IO.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/deltasync/internal/client/iocli"
	"github.com/iudanet/deltasync/internal/client/records"
	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/client/sync"
)

// Cli client commands
type Cli struct {
	io          iocli.IO
	records     records.Service
	syncService sync.Service
	authStorage storage.AuthStorage
	now         func() time.Time
}

// New creates the command set
func New(io iocli.IO, recordsService records.Service, syncService sync.Service, authStorage storage.AuthStorage) *Cli {
	return &Cli{
		io:          io,
		records:     recordsService,
		syncService: syncService,
		authStorage: authStorage,
		now:         time.Now,
	}
}

// accessToken возвращает сохраненный токен.
// Без login возвращает пустую строку: сервер без auth.secret токен не требует.
func (c *Cli) accessToken(ctx context.Context) (string, error) {
	auth, err := c.authStorage.GetAuth(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get auth data: %w", err)
	}

	if auth.Expired(c.now()) {
		return "", errors.New("access token has expired, run 'deltasync login' again")
	}

	return auth.Token, nil
}
