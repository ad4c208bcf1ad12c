package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/deltasync/internal/server/handlers"
	"github.com/iudanet/deltasync/internal/validation"
)

func newTokenCmd(a *app) *cobra.Command {
	var clientID string
	var ttl time.Duration
	var admin bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a sync client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.ValidateClientID(clientID); err != nil {
				return err
			}
			if a.cfg.Auth.Secret == "" {
				return errors.New("auth.secret is not configured, authentication is disabled")
			}

			jwtConfig := handlers.JWTConfig{
				Secret:   []byte(a.cfg.Auth.Secret),
				TokenTTL: a.cfg.Auth.TokenTTL,
			}
			if ttl > 0 {
				jwtConfig.TokenTTL = ttl
			}

			generate := handlers.GenerateClientToken
			if admin {
				generate = handlers.GenerateAdminToken
			}

			token, expiresAt, err := generate(jwtConfig, clientID)
			if err != nil {
				return err
			}

			a.logger.Info("Client token issued", "client_id", clientID, "admin", admin, "expires_at", expiresAt)
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client", "", "client id")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default auth.token_ttl)")
	cmd.Flags().BoolVar(&admin, "admin", false, "allow admin operations (import)")
	_ = cmd.MarkFlagRequired("client")

	return cmd
}
