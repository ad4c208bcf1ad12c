package models

// Syncable is implemented by every record that takes part in synchronization.
// The reconciliation core reads sync metadata only through these accessors
// and never looks at business fields.
type Syncable interface {
	SyncID() string
	SyncLastModified() int64
	SyncCreatedAt() int64
	SyncDeleted() bool
}

// Record is a single row of a synchronized table.
// Fields holds the table-specific business columns keyed by snake_case column name.
type Record struct {
	Fields          map[string]any `json:"fields"`
	ID              string         `json:"id"`                // ID stable identifier, immutable once created
	LastModified    int64          `json:"last_modified"`     // LastModified server timestamp (ms) of the last accepted mutation
	ServerCreatedAt int64          `json:"server_created_at"` // ServerCreatedAt server timestamp (ms) of the first persistence
	IsDeleted       bool           `json:"is_deleted"`        // IsDeleted tombstone flag
}

// SyncID returns the record identifier
func (r Record) SyncID() string { return r.ID }

// SyncLastModified returns the server timestamp of the last accepted mutation
func (r Record) SyncLastModified() int64 { return r.LastModified }

// SyncCreatedAt returns the server timestamp of the first persistence
func (r Record) SyncCreatedAt() int64 { return r.ServerCreatedAt }

// SyncDeleted reports whether the record is a tombstone
func (r Record) SyncDeleted() bool { return r.IsDeleted }

// Clone returns a copy of the record with its own Fields map
func (r Record) Clone() Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	r.Fields = fields
	return r
}

// TableChanges is the classified delta of one table.
type TableChanges struct {
	Created []Record
	Updated []Record
	Deleted []string
}

// NewTableChanges returns TableChanges with empty, non-nil lists
func NewTableChanges() TableChanges {
	return TableChanges{
		Created: []Record{},
		Updated: []Record{},
		Deleted: []string{},
	}
}

// Changeset maps a table name to its changes
type Changeset map[string]TableChanges
