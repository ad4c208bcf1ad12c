package main

import (
	"github.com/spf13/cobra"

	"github.com/iudanet/deltasync/internal/client/sync"
)

func newLoginCmd(a *app) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token issued by 'deltasync-server token'",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.Login(cmd.Context(), token)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "access token (prompted when empty)")

	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.Logout(cmd.Context())
		},
	}
}

func newPutCmd(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:     "put <table> column=value...",
		Short:   "Create or update a local record",
		Example: "  deltasync put products name=Apple price_cents=120\n  deltasync put products --id <id> quantity=3 sku=null",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.Put(cmd.Context(), args[0], id, args[1:])
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "record id (a new UUID when empty)")

	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a local record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.Delete(cmd.Context(), args[0], args[1])
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Show a local record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.Get(cmd.Context(), args[0], args[1])
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <table>",
		Short: "List live local records of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cli.List(cmd.Context(), args[0])
		},
	}
}

func newSyncCmd(a *app) *cobra.Command {
	var opts sync.Options

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull remote changes, then push local ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.Sync(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Turbo, "turbo", false, "request a pre-encoded response on the first sync")
	cmd.Flags().IntVar(&opts.MaxAttempts, "retries", 3, "sync cycles to try when push conflicts")

	return cmd
}

func newBootstrapCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Replace the local replica with a server snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.Bootstrap(cmd.Context())
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show login state and pending changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.Status(cmd.Context())
		},
	}
}
