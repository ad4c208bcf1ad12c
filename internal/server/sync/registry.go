package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/validation"
	"github.com/iudanet/deltasync/pkg/api"
)

// Codec maps a table's wire records to store records and back.
// Decode returns a *ValidationError for malformed input.
type Codec interface {
	Decode(raw api.Record) (models.Record, error)
	Encode(rec models.Record) api.Record
}

// Table is a registered synchronized table
type Table struct {
	Codec  Codec
	Schema models.TableSchema
}

// Registry holds the set of synchronized tables in registration order
type Registry struct {
	byName map[string]int
	tables []Table
}

// NewRegistry registers every schema with the default column codec
func NewRegistry(schemas ...models.TableSchema) (*Registry, error) {
	r := &Registry{byName: make(map[string]int, len(schemas))}

	for _, schema := range schemas {
		if err := r.Register(Table{Schema: schema, Codec: NewColumnCodec(schema)}); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds a table. Names must be unique and non-empty.
func (r *Registry) Register(t Table) error {
	if t.Schema.Name == "" {
		return errors.New("table name cannot be empty")
	}
	if t.Codec == nil {
		return fmt.Errorf("table %s has no codec", t.Schema.Name)
	}
	if _, ok := r.byName[t.Schema.Name]; ok {
		return fmt.Errorf("table %s already registered", t.Schema.Name)
	}

	r.byName[t.Schema.Name] = len(r.tables)
	r.tables = append(r.tables, t)
	return nil
}

// Lookup returns the table with the given name
func (r *Registry) Lookup(name string) (Table, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Table{}, false
	}
	return r.tables[i], true
}

// Tables returns all registered tables in registration order
func (r *Registry) Tables() []Table {
	return append([]Table(nil), r.tables...)
}

// Schemas returns the schemas of all registered tables
func (r *Registry) Schemas() []models.TableSchema {
	schemas := make([]models.TableSchema, 0, len(r.tables))
	for _, t := range r.tables {
		schemas = append(schemas, t.Schema)
	}
	return schemas
}

// ColumnCodec is the default Codec driven by the table schema.
// Incoming keys are normalized to snake_case, client bookkeeping keys
// and server-owned metadata are dropped, unknown keys are rejected.
type ColumnCodec struct {
	schema models.TableSchema
}

// NewColumnCodec creates a codec for the schema
func NewColumnCodec(schema models.TableSchema) *ColumnCodec {
	return &ColumnCodec{schema: schema}
}

// Decode validates a wire record and converts it into a store record
func (c *ColumnCodec) Decode(raw api.Record) (models.Record, error) {
	rec := models.Record{Fields: make(map[string]any, len(raw))}

	id, ok := raw[models.ColumnID].(string)
	if !ok {
		return rec, c.invalid("", models.ColumnID, "id must be a string")
	}
	if err := validation.ValidateRecordID(id); err != nil {
		return rec, c.invalid(id, models.ColumnID, err.Error())
	}
	rec.ID = id

	for key, value := range raw {
		name := api.SnakeCase(key)

		switch {
		case name == api.KeyStatus || name == api.KeyChanged:
			continue
		case models.IsMetadataColumn(name):
			continue
		}

		col, ok := c.schema.Column(name)
		if !ok {
			return rec, c.invalid(id, key, "unknown field")
		}
		if _, dup := rec.Fields[name]; dup {
			return rec, c.invalid(id, key, "field given more than once")
		}

		v, err := convertValue(col, value)
		if err != nil {
			return rec, c.invalid(id, key, err.Error())
		}
		rec.Fields[name] = v
	}

	for _, col := range c.schema.Columns {
		if !col.Required {
			continue
		}
		if v, ok := rec.Fields[col.Name]; !ok || v == nil {
			return rec, c.invalid(id, col.Name, "required field is missing")
		}
	}

	return rec, nil
}

// Encode renders a store record as a flat snake_case wire record.
// Every business column is present; unset columns are null.
func (c *ColumnCodec) Encode(rec models.Record) api.Record {
	out := make(api.Record, len(c.schema.Columns)+3)
	out[models.ColumnID] = rec.ID
	out[models.ColumnLastModified] = rec.LastModified
	out[models.ColumnServerCreatedAt] = rec.ServerCreatedAt

	for _, col := range c.schema.Columns {
		out[col.Name] = rec.Fields[col.Name]
	}

	return out
}

func (c *ColumnCodec) invalid(id, field, reason string) *ValidationError {
	return &ValidationError{Table: c.schema.Name, ID: id, Field: field, Reason: reason}
}

// convertValue checks a JSON-decoded value against the column type.
// Numbers may arrive as json.Number (UseNumber) or float64.
func convertValue(col models.Column, v any) (any, error) {
	if v == nil {
		if col.Required {
			return nil, errors.New("required field is null")
		}
		return nil, nil
	}

	switch col.Type {
	case models.ColumnText:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case models.ColumnBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case models.ColumnInteger:
		switch n := v.(type) {
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
		case float64:
			if n == math.Trunc(n) && math.Abs(n) <= 1<<53 {
				return int64(n), nil
			}
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		}
	case models.ColumnReal:
		switch n := v.(type) {
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, nil
			}
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		}
	}

	return nil, fmt.Errorf("expected %s value", col.Type)
}
