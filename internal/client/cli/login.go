package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/deltasync/internal/client/storage"
)

// Login сохраняет токен, выданный командой сервера `token`.
// Пустой token запрашивается в терминале без отображения.
func (c *Cli) Login(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		var err error
		token, err = c.io.ReadPassword("Token: ")
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token = strings.TrimSpace(token)
	}
	if token == "" {
		return errors.New("token cannot be empty")
	}

	auth, err := parseToken(token)
	if err != nil {
		return err
	}
	if auth.Expired(c.now()) {
		return errors.New("token has already expired")
	}

	if err := c.authStorage.SaveAuth(ctx, auth); err != nil {
		return fmt.Errorf("failed to save auth data: %w", err)
	}

	c.io.Println("✓ Login successful!")
	c.io.Printf("Client ID: %s\n", auth.ClientID)
	if auth.ExpiresAt > 0 {
		c.io.Printf("Token expires: %s\n", time.Unix(auth.ExpiresAt, 0).UTC().Format(time.RFC3339))
	}

	return nil
}

// Logout удаляет сохраненный токен
func (c *Cli) Logout(ctx context.Context) error {
	if err := c.authStorage.DeleteAuth(ctx); err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			c.io.Println("Not logged in.")
			return nil
		}
		return fmt.Errorf("failed to delete auth data: %w", err)
	}

	c.io.Println("✓ Logged out")
	return nil
}

// parseToken читает claims без проверки подписи: ключ есть только у сервера
func parseToken(token string) (*storage.AuthData, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	clientID, _ := claims["client_id"].(string)
	if clientID == "" {
		return nil, errors.New("invalid token: client_id claim is missing")
	}

	auth := &storage.AuthData{ClientID: clientID, Token: token}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if exp != nil {
		auth.ExpiresAt = exp.Unix()
	}

	return auth, nil
}
