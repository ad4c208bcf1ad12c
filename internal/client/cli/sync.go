package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/deltasync/internal/client/sync"
)

// Sync выполняет синхронизацию и печатает отчет
func (c *Cli) Sync(ctx context.Context, opts sync.Options) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	c.io.Println("Synchronizing with server...")

	result, err := c.syncService.Sync(ctx, token, opts)
	if err != nil {
		if errors.Is(err, sync.ErrConflict) {
			return fmt.Errorf("%w; local changes are kept, run sync again", err)
		}
		return fmt.Errorf("synchronization failed: %w", err)
	}

	c.io.Println("✓ Synchronization completed")
	c.io.Printf("Pulled from server:  %d\n", result.Pulled)
	c.io.Printf("Applied locally:     %d\n", result.Applied)
	if result.Removed > 0 {
		c.io.Printf("Removed locally:     %d\n", result.Removed)
	}
	if result.KeptLocal > 0 {
		c.io.Printf("Kept local changes:  %d\n", result.KeptLocal)
	}
	c.io.Printf("Pushed to server:    %d\n", result.Pushed)
	if result.Attempts > 1 {
		c.io.Printf("Attempts:            %d\n", result.Attempts)
	}
	c.io.Printf("Checkpoint:          %d\n", result.LastPulledAt)

	return nil
}

// Bootstrap загружает snapshot сервера вместо первой синхронизации
func (c *Cli) Bootstrap(ctx context.Context) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	result, err := c.syncService.Bootstrap(ctx, token)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	c.io.Println("✓ Snapshot loaded")
	c.io.Printf("Records:    %d\n", result.Records)
	c.io.Printf("Checkpoint: %d\n", result.LastPulledAt)
	c.io.Println("Run 'deltasync sync' to catch up with later changes.")

	return nil
}
