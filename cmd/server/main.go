package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/deltasync/internal/catalog"
	"github.com/iudanet/deltasync/internal/clock"
	"github.com/iudanet/deltasync/internal/logging"
	"github.com/iudanet/deltasync/internal/server/config"
	"github.com/iudanet/deltasync/internal/server/storage/sqlstore"
	serversync "github.com/iudanet/deltasync/internal/server/sync"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// app общее состояние команд
type app struct {
	v          *viper.Viper
	cfg        *config.Config
	logger     *slog.Logger
	logCloser  io.Closer
	configFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "deltasync-server",
		Short:         "deltasync sync server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			// флаги admin команд привязываются для выполняемой команды
			for flag, key := range map[string]string{"server": config.KeyAdminServer, "token": config.KeyAdminToken} {
				if f := cmd.Flags().Lookup(flag); f != nil {
					if err := a.v.BindPFlag(key, f); err != nil {
						return err
					}
				}
			}
			return a.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logCloser != nil {
				_ = a.logCloser.Close()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("db-driver", "", "database driver: sqlite or postgres")
	flags.String("db-dsn", "", "database DSN")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	_ = a.v.BindPFlag(config.KeyDBDriver, flags.Lookup("db-driver"))
	_ = a.v.BindPFlag(config.KeyDBDSN, flags.Lookup("db-dsn"))
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	root.AddCommand(
		newServeCmd(a),
		newImportCmd(a),
		newSnapshotCmd(a),
		newTokenCmd(a),
		newVersionCmd(),
	)

	return root
}

// load читает конфигурацию и создает логгер
func (a *app) load() error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.cfg, a.logger, a.logCloser = cfg, logger, closer
	return nil
}

// addAdminFlags добавляет флаги подключения к работающему серверу
func addAdminFlags(cmd *cobra.Command) {
	cmd.Flags().String("server", "", "URL of the running server (default admin.server)")
	cmd.Flags().String("token", "", "admin token (default admin.token)")
}

// openService открывает хранилище и создает сервис синхронизации.
// Возвращаемая функция закрывает хранилище.
func (a *app) openService(ctx context.Context) (*serversync.Service, func(), error) {
	store, err := sqlstore.New(ctx, sqlstore.Options{
		Driver: a.cfg.DB.Driver,
		DSN:    a.cfg.DB.DSN,
		Logger: a.logger,
	}, catalog.Tables())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			a.logger.Error("Failed to close storage", "error", err)
		}
	}

	registry, err := serversync.NewRegistry(catalog.Tables()...)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	svc := serversync.NewService(store, registry, clock.New(), a.logger)
	if err := svc.Init(ctx); err != nil {
		closeStore()
		return nil, nil, err
	}

	return svc, closeStore, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "deltasync server\n")
			fmt.Fprintf(out, "Version:    %s\n", Version)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}
