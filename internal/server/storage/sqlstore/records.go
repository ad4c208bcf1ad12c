package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/server/storage"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ChangedSince returns records of the table with since < last_modified <= until
func (s *Storage) ChangedSince(ctx context.Context, schema models.TableSchema, since, until int64) ([]models.Record, error) {
	t, err := s.table(schema)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE last_modified > ? AND last_modified <= ? ORDER BY last_modified, id",
		selectList(t), t.Name,
	)

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes of %s: %w", t.Name, err)
	}
	defer rows.Close()

	return scanRecords(rows, t)
}

// ListLive returns all non-deleted records of the table
func (s *Storage) ListLive(ctx context.Context, schema models.TableSchema) ([]models.Record, error) {
	t, err := s.table(schema)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE is_deleted = %s ORDER BY id",
		selectList(t), t.Name, s.dialect.boolLiteral(false),
	)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.Name, err)
	}
	defer rows.Close()

	return scanRecords(rows, t)
}

// Get retrieves a record by id, tombstones included
func (s *Storage) Get(ctx context.Context, schema models.TableSchema, id string) (*models.Record, error) {
	t, err := s.table(schema)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", selectList(t), t.Name)

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows, t)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrRecordNotFound
	}

	return &records[0], nil
}

// MaxLastModified returns the highest last_modified over the given tables
func (s *Storage) MaxLastModified(ctx context.Context, tables []models.TableSchema) (int64, error) {
	var maxTS int64

	for _, schema := range tables {
		t, err := s.table(schema)
		if err != nil {
			return 0, err
		}

		var ts int64
		query := fmt.Sprintf("SELECT COALESCE(MAX(last_modified), 0) FROM %s", t.Name)
		if err := s.db.QueryRowContext(ctx, query).Scan(&ts); err != nil {
			return 0, fmt.Errorf("failed to read max last_modified of %s: %w", t.Name, err)
		}

		maxTS = max(maxTS, ts)
	}

	return maxTS, nil
}

// WithTx runs fn in a transaction and commits it if fn succeeds
func (s *Storage) WithTx(ctx context.Context, fn func(tx storage.RecordTx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("failed to rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(&recordTx{store: s, q: sqlTx}); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// recordTx implements storage.RecordTx on top of a *sql.Tx
type recordTx struct {
	store *Storage
	q     querier
}

// Upsert applies the conditional update and falls back to an insert that
// is a no-op when the id already exists
func (tx *recordTx) Upsert(ctx context.Context, schema models.TableSchema, rec models.Record, checkpoint, now int64) (storage.UpsertResult, error) {
	t, err := tx.store.table(schema)
	if err != nil {
		return 0, err
	}
	d := tx.store.dialect

	var (
		names []string
		args  []any
	)
	for _, col := range t.Columns {
		v, ok := rec.Fields[col.Name]
		if !ok {
			continue
		}
		names = append(names, col.Name)
		args = append(args, d.argValue(col, v))
	}

	// UPDATE ... WHERE id = ? AND last_modified <= checkpoint
	sets := make([]string, 0, len(names)+2)
	for _, name := range names {
		sets = append(sets, name+" = ?")
	}
	sets = append(sets, "last_modified = ?", "is_deleted = "+d.boolLiteral(false))

	update := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = ? AND last_modified <= ?",
		t.Name, strings.Join(sets, ", "),
	)
	updateArgs := append(append([]any{}, args...), now, rec.ID, checkpoint)

	res, err := tx.q.ExecContext(ctx, d.rebind(update), updateArgs...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s/%s: %w", t.Name, rec.ID, err)
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if updated > 0 {
		return storage.Updated, nil
	}

	// INSERT ... ON CONFLICT (id) DO NOTHING
	cols := append([]string{models.ColumnID}, names...)
	cols = append(cols, models.ColumnLastModified, models.ColumnServerCreatedAt, models.ColumnIsDeleted)
	insertArgs := append([]any{rec.ID}, args...)
	insertArgs = append(insertArgs, now, now, d.boolValue(false))

	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO NOTHING",
		t.Name, strings.Join(cols, ", "), placeholders(len(cols)),
	)

	res, err = tx.q.ExecContext(ctx, d.rebind(insert), insertArgs...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s/%s: %w", t.Name, rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return 0, storage.ErrStaleRecord
	}

	return storage.Inserted, nil
}

// MarkDeleted turns the record into a tombstone
func (tx *recordTx) MarkDeleted(ctx context.Context, schema models.TableSchema, id string, now int64) (bool, error) {
	t, err := tx.store.table(schema)
	if err != nil {
		return false, err
	}
	d := tx.store.dialect

	query := fmt.Sprintf(
		"UPDATE %s SET is_deleted = %s, last_modified = ? WHERE id = ?",
		t.Name, d.boolLiteral(true),
	)

	res, err := tx.q.ExecContext(ctx, d.rebind(query), now, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s/%s: %w", t.Name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return n > 0, nil
}

func selectList(t models.TableSchema) string {
	cols := []string{
		models.ColumnID,
		models.ColumnLastModified,
		models.ColumnServerCreatedAt,
		models.ColumnIsDeleted,
	}
	return strings.Join(append(cols, t.ColumnNames()...), ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// argValue converts a decoded field value into a driver argument
func (d dialect) argValue(col models.Column, v any) any {
	if v == nil {
		return nil
	}
	if b, ok := v.(bool); ok && col.Type == models.ColumnBoolean {
		return d.boolValue(b)
	}
	return v
}

// scanRecords reads rows produced by selectList
func scanRecords(rows *sql.Rows, t models.TableSchema) ([]models.Record, error) {
	records := []models.Record{}

	for rows.Next() {
		var rec models.Record
		dest := []any{&rec.ID, &rec.LastModified, &rec.ServerCreatedAt, &rec.IsDeleted}

		values := make([]any, len(t.Columns))
		for i, col := range t.Columns {
			switch col.Type {
			case models.ColumnInteger:
				values[i] = new(sql.NullInt64)
			case models.ColumnReal:
				values[i] = new(sql.NullFloat64)
			case models.ColumnBoolean:
				values[i] = new(sql.NullBool)
			default:
				values[i] = new(sql.NullString)
			}
		}

		if err := rows.Scan(append(dest, values...)...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.Name, err)
		}

		rec.Fields = make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			rec.Fields[col.Name] = nullValue(values[i])
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

func nullValue(v any) any {
	switch n := v.(type) {
	case *sql.NullString:
		if n.Valid {
			return n.String
		}
	case *sql.NullInt64:
		if n.Valid {
			return n.Int64
		}
	case *sql.NullFloat64:
		if n.Valid {
			return n.Float64
		}
	case *sql.NullBool:
		if n.Valid {
			return n.Bool
		}
	}
	return nil
}
