package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/deltasync/internal/client/storage"
)

// Status печатает состояние авторизации и число несинхронизированных записей
func (c *Cli) Status(ctx context.Context) error {
	c.io.Println("=== Status ===")

	auth, err := c.authStorage.GetAuth(ctx)
	switch {
	case errors.Is(err, storage.ErrAuthNotFound):
		c.io.Println("Auth: not logged in")
	case err != nil:
		return fmt.Errorf("failed to get auth data: %w", err)
	default:
		c.io.Printf("Client ID: %s\n", auth.ClientID)
		if auth.ExpiresAt > 0 {
			expiresAt := time.Unix(auth.ExpiresAt, 0)
			c.io.Printf("Token expires: %s\n", expiresAt.UTC().Format(time.RFC3339))
			if auth.Expired(c.now()) {
				c.io.Println("⚠️  Token has expired. Please login again.")
			}
		}
	}

	pending, err := c.syncService.GetPendingSyncCount(ctx)
	if err != nil {
		return err
	}

	if pending > 0 {
		c.io.Printf("⚠️  Pending sync: %d record(s) waiting to be synchronized\n", pending)
	} else {
		c.io.Println("✓ All data synchronized with server")
	}

	return nil
}
