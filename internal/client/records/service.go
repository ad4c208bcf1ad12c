// Package records edits the local replica: every change is stored with a
// pending status and sent to the server by the next sync.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/deltasync/internal/catalog"
	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/validation"
	"github.com/iudanet/deltasync/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// ErrUnknownTable indicates a table that is not in the catalog
var ErrUnknownTable = errors.New("unknown table")

// Service defines local record operations
type Service interface {
	// Put creates or updates a record from column=value pairs.
	// An empty id creates a new record with a generated id.
	Put(ctx context.Context, table, id string, values map[string]string) (string, error)

	// Delete marks a record deleted; records never synced are removed at once
	Delete(ctx context.Context, table, id string) error

	// Get returns a live record
	Get(ctx context.Context, table, id string) (*storage.LocalRecord, error)

	// List returns live records of a table
	List(ctx context.Context, table string) ([]storage.LocalRecord, error)
}

type service struct {
	replica storage.ReplicaStorage
	tables  map[string]models.TableSchema
	logger  *slog.Logger
}

// NewService creates a records service over the catalog tables
func NewService(replica storage.ReplicaStorage, logger *slog.Logger) Service {
	tables := make(map[string]models.TableSchema)
	for _, t := range catalog.Tables() {
		tables[t.Name] = t
	}

	return &service{
		replica: replica,
		tables:  tables,
		logger:  logger,
	}
}

func (s *service) Put(ctx context.Context, table, id string, values map[string]string) (string, error) {
	schema, err := s.schema(table)
	if err != nil {
		return "", err
	}

	fields, err := ParseValues(schema, values)
	if err != nil {
		return "", err
	}

	if id == "" {
		id = uuid.NewString()
	}
	if err := validation.ValidateRecordID(id); err != nil {
		return "", fmt.Errorf("invalid id: %w", err)
	}

	rec := storage.LocalRecord{
		Record: api.Record{models.ColumnID: id},
		Status: storage.StatusCreated,
	}

	existing, err := s.replica.GetRecord(ctx, table, id)
	switch {
	case err == nil:
		rec.Record = existing.Record
		if existing.Status != storage.StatusCreated {
			// сервер уже знает запись; удаленная локально воскресает
			rec.Status = storage.StatusUpdated
		}
	case !errors.Is(err, storage.ErrRecordNotFound):
		return "", fmt.Errorf("failed to load record: %w", err)
	}

	for name, v := range fields {
		rec.Record[name] = v
	}

	for _, col := range schema.Columns {
		if col.Required && rec.Record[col.Name] == nil {
			return "", fmt.Errorf("field %s is required", col.Name)
		}
	}

	if err := s.replica.PutRecord(ctx, table, rec); err != nil {
		return "", fmt.Errorf("failed to save record: %w", err)
	}

	s.logger.Debug("Record saved locally", "table", table, "id", id, "status", rec.Status)

	return id, nil
}

func (s *service) Delete(ctx context.Context, table, id string) error {
	if _, err := s.schema(table); err != nil {
		return err
	}

	rec, err := s.replica.GetRecord(ctx, table, id)
	if err != nil {
		return err
	}

	switch rec.Status {
	case storage.StatusDeleted:
		return storage.ErrRecordNotFound
	case storage.StatusCreated:
		// сервер о записи не знает
		return s.replica.RemoveRecord(ctx, table, id)
	}

	rec.Status = storage.StatusDeleted
	if err := s.replica.PutRecord(ctx, table, *rec); err != nil {
		return fmt.Errorf("failed to mark record deleted: %w", err)
	}

	s.logger.Debug("Record marked deleted", "table", table, "id", id)
	return nil
}

func (s *service) Get(ctx context.Context, table, id string) (*storage.LocalRecord, error) {
	if _, err := s.schema(table); err != nil {
		return nil, err
	}

	rec, err := s.replica.GetRecord(ctx, table, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == storage.StatusDeleted {
		return nil, storage.ErrRecordNotFound
	}
	return rec, nil
}

func (s *service) List(ctx context.Context, table string) ([]storage.LocalRecord, error) {
	if _, err := s.schema(table); err != nil {
		return nil, err
	}

	all, err := s.replica.ListRecords(ctx, table)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(all, func(r storage.LocalRecord) bool {
		return r.Status == storage.StatusDeleted
	}), nil
}

func (s *service) schema(table string) (models.TableSchema, error) {
	schema, ok := s.tables[table]
	if !ok {
		return models.TableSchema{}, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return schema, nil
}

// ParseValues converts command line values to typed column values.
// Keys are normalized to snake_case; "null" clears an optional column.
func ParseValues(schema models.TableSchema, values map[string]string) (map[string]any, error) {
	fields := make(map[string]any, len(values))

	for key, raw := range values {
		name := api.SnakeCase(strings.TrimSpace(key))

		col, ok := schema.Column(name)
		if !ok {
			return nil, fmt.Errorf("unknown field %s for table %s", key, schema.Name)
		}

		if raw == "null" {
			if col.Required {
				return nil, fmt.Errorf("field %s is required", name)
			}
			fields[name] = nil
			continue
		}

		v, err := parseValue(col.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		fields[name] = v
	}

	return fields, nil
}

func parseValue(t models.ColumnType, raw string) (any, error) {
	switch t {
	case models.ColumnInteger:
		return strconv.ParseInt(raw, 10, 64)
	case models.ColumnReal:
		return strconv.ParseFloat(raw, 64)
	case models.ColumnBoolean:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}
