package models

// ColumnType is the storage type of a business column
type ColumnType string

// ColumnType константы
const (
	ColumnText    ColumnType = "text"
	ColumnInteger ColumnType = "integer"
	ColumnReal    ColumnType = "real"
	ColumnBoolean ColumnType = "boolean"
)

// Metadata column names shared by every synchronized table
const (
	ColumnID              = "id"
	ColumnLastModified    = "last_modified"
	ColumnServerCreatedAt = "server_created_at"
	ColumnIsDeleted       = "is_deleted"
)

// Column describes one business column of a table
type Column struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Required bool       `json:"required"`
}

// TableSchema describes a synchronized table: its name and business columns.
// Sync metadata columns are implicit and not listed in Columns.
type TableSchema struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Column returns the column with the given name
func (s TableSchema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns business column names in declaration order
func (s TableSchema) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		names = append(names, c.Name)
	}
	return names
}

// IsMetadataColumn reports whether name is one of the server-owned sync columns
func IsMetadataColumn(name string) bool {
	switch name {
	case ColumnID, ColumnLastModified, ColumnServerCreatedAt, ColumnIsDeleted:
		return true
	}
	return false
}
