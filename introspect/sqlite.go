package introspect

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/syssam/archgen/dialect"
	"github.com/syssam/archgen/dsn"
	"github.com/syssam/archgen/schema"
)

// SQLite reads the catalog of a SQLite database file through the
// sqlite_master table and the table-valued pragma functions.
type SQLite struct{}

// Dialect implements Catalog.
func (*SQLite) Dialect() string { return dialect.SQLite }

// DriverName implements Catalog.
func (*SQLite) DriverName() string { return "sqlite" }

// Source implements Catalog.
func (*SQLite) Source(d *dsn.DSN) (string, error) {
	path := d.SQLitePath()
	if path == "" {
		return "", &dsn.Error{Input: d.Raw, Message: "sqlite descriptor needs a file path"}
	}
	return path, nil
}

const (
	liteTablesQuery = `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`

	liteColumnsQuery = `SELECT name, type, "notnull", dflt_value, pk
FROM pragma_table_info(?)
ORDER BY cid`

	litePrimaryKeysQuery = `SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`

	liteForeignKeysQuery = `SELECT "from", "table", "to"
FROM pragma_foreign_key_list(?)
ORDER BY id, seq`
)

// Tables implements Catalog. SQLite has a single "main" namespace; the
// schemas filter does not apply.
func (*SQLite) Tables(ctx context.Context, q Querier, _ []string) ([]TableRef, error) {
	return queryAll(ctx, q, func(rows *sql.Rows) (TableRef, error) {
		r := TableRef{Schema: "main"}
		err := rows.Scan(&r.Name)
		return r, err
	}, liteTablesQuery)
}

// Columns implements Catalog. Declared types are kept as written, lower
// cased; primary key columns are reported as not nullable.
func (*SQLite) Columns(ctx context.Context, q Querier, t TableRef) ([]*schema.Column, error) {
	return queryAll(ctx, q, func(rows *sql.Rows) (*schema.Column, error) {
		var (
			c           schema.Column
			notNull, pk int
			def         sql.NullString
		)
		if err := rows.Scan(&c.Name, &c.DataType, &notNull, &def, &pk); err != nil {
			return nil, err
		}
		c.DataType = strings.ToLower(strings.TrimSpace(c.DataType))
		c.Nullable = notNull == 0 && pk == 0
		c.Default = nullString(def)
		return &c, nil
	}, liteColumnsQuery, t.Name)
}

// PrimaryKeys implements Catalog.
func (*SQLite) PrimaryKeys(ctx context.Context, q Querier, t TableRef) ([]string, error) {
	return queryAll(ctx, q, scanString, litePrimaryKeysQuery, t.Name)
}

// ForeignKeys implements Catalog. A reference without a target column
// points at the primary key of the referenced table, which costs one more
// query per such reference.
func (s *SQLite) ForeignKeys(ctx context.Context, q Querier, t TableRef) ([]schema.ForeignKey, error) {
	fks, err := queryAll(ctx, q, func(rows *sql.Rows) (schema.ForeignKey, error) {
		var (
			fk schema.ForeignKey
			to sql.NullString
		)
		if err := rows.Scan(&fk.Column, &fk.RefTable, &to); err != nil {
			return fk, err
		}
		fk.RefSchema = "main"
		fk.RefColumn = to.String
		return fk, nil
	}, liteForeignKeysQuery, t.Name)
	if err != nil {
		return nil, err
	}
	for i, fk := range fks {
		if fk.RefColumn != "" {
			continue
		}
		pks, err := s.PrimaryKeys(ctx, q, TableRef{Schema: "main", Name: fk.RefTable})
		if err != nil {
			return nil, err
		}
		if len(pks) > 0 {
			fks[i].RefColumn = pks[0]
		}
	}
	return fks, nil
}
