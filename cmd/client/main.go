package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/deltasync/internal/client/api"
	"github.com/iudanet/deltasync/internal/client/cli"
	"github.com/iudanet/deltasync/internal/client/iocli"
	"github.com/iudanet/deltasync/internal/client/records"
	"github.com/iudanet/deltasync/internal/client/storage/boltdb"
	"github.com/iudanet/deltasync/internal/client/sync"
	"github.com/iudanet/deltasync/internal/logging"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Ключи конфигурации клиента
const (
	envPrefix    = "DELTASYNC_CLIENT"
	keyServer    = "server"
	keyDB        = "db"
	keyLogLevel  = "log.level"
	keyLogFormat = "log.format"
	keyLogFile   = "log.file"
)

// app общее состояние команд клиента
type app struct {
	v         *viper.Viper
	logger    *slog.Logger
	logCloser io.Closer
	store     *boltdb.Storage
	cli       *cli.Cli
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyServer, "http://localhost:8080")
	v.SetDefault(keyDB, "deltasync-client.db")
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogFormat, logging.FormatText)

	return v
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:           "deltasync",
		Short:         "deltasync client: local replica synchronized with the server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.String("server", "", "server URL")
	flags.String("db", "", "path to local database")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	_ = a.v.BindPFlag(keyServer, flags.Lookup("server"))
	_ = a.v.BindPFlag(keyDB, flags.Lookup("db"))
	_ = a.v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(keyLogFormat, flags.Lookup("log-format"))

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newPutCmd(a),
		newDeleteCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newSyncCmd(a),
		newBootstrapCmd(a),
		newStatusCmd(a),
		newVersionCmd(),
	)

	return root
}

// open создает логгер, открывает локальную базу и собирает сервисы
func (a *app) open(ctx context.Context) error {
	logger, closer, err := logging.New(logging.Config{
		Level:  a.v.GetString(keyLogLevel),
		Format: a.v.GetString(keyLogFormat),
		File:   a.v.GetString(keyLogFile),
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger, a.logCloser = logger, closer

	store, err := boltdb.New(ctx, a.v.GetString(keyDB))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.store = store

	apiClient := api.NewClient(a.v.GetString(keyServer))

	a.cli = cli.New(
		iocli.NewStdio(),
		records.NewService(store, logger),
		sync.NewService(apiClient, store, logger),
		store,
	)

	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("Failed to close database", "error", err)
		}
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "deltasync client\n")
			fmt.Fprintf(out, "Version:    %s\n", Version)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}
