package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iudanet/deltasync/internal/client/api"
	"github.com/iudanet/deltasync/internal/snapshot"
)

func newSnapshotCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Download a bootstrap snapshot of all live records from a running server",
		Long: `Snapshot downloads the bootstrap file from a running server. The server
takes last_pulled_at from its own clock, so the file never claims writes that
are still in flight.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tmp, err := os.CreateTemp(filepath.Dir(out), ".snapshot-*.db")
			if err != nil {
				return fmt.Errorf("failed to create temp file: %w", err)
			}
			defer os.Remove(tmp.Name())

			client := api.NewClient(a.cfg.Admin.Server)
			checkpoint, err := client.DownloadBootstrap(cmd.Context(), a.cfg.Admin.Token, tmp)
			if closeErr := tmp.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			snap, err := snapshot.ReadFile(tmp.Name())
			if err != nil {
				return err
			}
			if snap.LastPulledAt != checkpoint {
				return fmt.Errorf("snapshot checkpoint %d does not match header %d", snap.LastPulledAt, checkpoint)
			}

			if err := os.Rename(tmp.Name(), out); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			total := 0
			for _, records := range snap.Tables {
				total += len(records)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Snapshot written to %s: %d records, last_pulled_at=%d\n", out, total, snap.LastPulledAt)
			return nil
		},
	}

	addAdminFlags(cmd)
	cmd.Flags().StringVar(&out, "out", "bootstrap.db", "output file")

	return cmd
}
