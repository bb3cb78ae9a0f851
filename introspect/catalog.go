package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	dsql "github.com/syssam/archgen/dialect/sql"
	"github.com/syssam/archgen/dsn"
	"github.com/syssam/archgen/schema"
)

// Querier is the read side of a database connection.
type Querier = dsql.Querier

// TableRef names a base table found in the catalog.
type TableRef struct {
	Schema string
	Name   string
}

// String returns "schema.name", or the bare name without a schema.
func (r TableRef) String() string {
	if r.Schema == "" {
		return r.Name
	}
	return r.Schema + "." + r.Name
}

// Catalog runs the metadata queries of one source dialect. Each method is a
// single round trip.
type Catalog interface {
	// Dialect returns the dialect name, e.g. "postgres".
	Dialect() string
	// DriverName returns the database/sql driver name to open.
	DriverName() string
	// Source renders the driver data source from a parsed descriptor.
	Source(d *dsn.DSN) (string, error)
	// Tables enumerates the base tables outside the system namespaces.
	Tables(ctx context.Context, q Querier, schemas []string) ([]TableRef, error)
	// Columns returns the columns of a table in ordinal order.
	Columns(ctx context.Context, q Querier, t TableRef) ([]*schema.Column, error)
	// PrimaryKeys returns the primary key columns in key order.
	PrimaryKeys(ctx context.Context, q Querier, t TableRef) ([]string, error)
	// ForeignKeys returns the foreign keys of a table.
	ForeignKeys(ctx context.Context, q Querier, t TableRef) ([]schema.ForeignKey, error)
}

var catalogs = []Catalog{
	&Postgres{},
	&MySQL{},
	&SQLite{},
}

// CatalogFor returns the catalog of the given dialect.
func CatalogFor(dialect string) (Catalog, error) {
	for _, c := range catalogs {
		if c.Dialect() == dialect {
			return c, nil
		}
	}
	return nil, fmt.Errorf("archgen: introspect: unsupported dialect %q", dialect)
}

// queryAll runs query and scans every row with scan.
func queryAll[T any](ctx context.Context, q Querier, scan func(*sql.Rows) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanString(rows *sql.Rows) (string, error) {
	var s string
	err := rows.Scan(&s)
	return s, err
}

// qualifiedType parametrizes a bare type name with its length, or its
// precision and scale, when the catalog reports them.
func qualifiedType(name string, length, precision, scale sql.NullInt64) string {
	switch {
	case length.Valid && length.Int64 > 0:
		return name + "(" + strconv.FormatInt(length.Int64, 10) + ")"
	case precision.Valid && scale.Valid:
		return name + "(" + strconv.FormatInt(precision.Int64, 10) + "," + strconv.FormatInt(scale.Int64, 10) + ")"
	default:
		return name
	}
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
