package sqlstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iudanet/deltasync/internal/server/storage"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// dialect hides the differences between SQLite and Postgres
// that matter for the record queries
type dialect struct {
	name         string
	driverName   string // database/sql driver name
	gooseDialect string
	numbered     bool // $1, $2 placeholders instead of ?
	boolAsInt    bool
}

var dialects = map[string]dialect{
	DriverSQLite: {
		name:         DriverSQLite,
		driverName:   "sqlite",
		gooseDialect: "sqlite3",
		boolAsInt:    true,
	},
	DriverPostgres: {
		name:         DriverPostgres,
		driverName:   "pgx",
		gooseDialect: "postgres",
		numbered:     true,
	},
}

func lookupDialect(driver string) (dialect, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("%w: %q", storage.ErrUnsupportedDriver, driver)
	}
	return d, nil
}

// rebind rewrites ? placeholders into the dialect's form.
// Queries are built from schema identifiers only, so ? never appears inside literals.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// boolValue converts a boolean argument into the form the driver stores
func (d dialect) boolValue(v bool) any {
	if !d.boolAsInt {
		return v
	}
	if v {
		return 1
	}
	return 0
}

// boolLiteral returns a boolean SQL literal usable in SET clauses
func (d dialect) boolLiteral(v bool) string {
	switch {
	case d.boolAsInt && v:
		return "1"
	case d.boolAsInt:
		return "0"
	case v:
		return "TRUE"
	default:
		return "FALSE"
	}
}
