// Package sqlstore implements the record store on top of database/sql.
// SQLite (modernc.org/sqlite) is the default driver, Postgres is served by pgx.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/server/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Options configures the database connection
type Options struct {
	// Logger получает журнал миграций; nil - журнал отключен
	Logger *slog.Logger
	Driver string // sqlite (default) or postgres
	DSN    string // file path or ":memory:" for sqlite, connection URL for postgres
}

// Storage is the SQL implementation of storage.RecordStorage
type Storage struct {
	db      *sql.DB
	tables  map[string]models.TableSchema
	dialect dialect
}

var _ storage.RecordStorage = (*Storage)(nil)

// New opens the database, applies migrations and returns a store serving the given tables.
// Use ":memory:" with the sqlite driver for an in-memory database (useful for testing)
func New(ctx context.Context, opts Options, tables []models.TableSchema) (*Storage, error) {
	d, err := lookupDialect(opts.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driverName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if d.name == DriverSQLite {
		// один писатель: транзакции push сериализуются на уровне соединения
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		pragmas := []string{
			"PRAGMA journal_mode = WAL;",
			"PRAGMA synchronous = NORMAL;",
			"PRAGMA busy_timeout = 5000;",
		}
		for _, pragma := range pragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to set pragma: %w", err)
			}
		}
	}

	s := &Storage{
		db:      db,
		dialect: d,
		tables:  make(map[string]models.TableSchema, len(tables)),
	}
	for _, t := range tables {
		s.tables[t.Name] = t
	}

	if err := s.runMigrations(ctx, opts.Logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB returns the underlying database connection for testing purposes
func (s *Storage) DB() *sql.DB {
	return s.db
}

// runMigrations applies embedded migrations
func (s *Storage) runMigrations(ctx context.Context, logger *slog.Logger) error {
	goose.SetBaseFS(embedMigrations)
	if logger != nil {
		goose.SetLogger(newGooseLogger(logger))
	} else {
		goose.SetLogger(goose.NopLogger())
	}

	if err := goose.SetDialect(s.dialect.gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// table resolves a schema against the tables this store was opened with
func (s *Storage) table(schema models.TableSchema) (models.TableSchema, error) {
	t, ok := s.tables[schema.Name]
	if !ok {
		return models.TableSchema{}, fmt.Errorf("%w: %s", storage.ErrUnknownTable, schema.Name)
	}
	return t, nil
}
