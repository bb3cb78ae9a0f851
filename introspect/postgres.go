package introspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/syssam/archgen/dialect"
	"github.com/syssam/archgen/dsn"
	"github.com/syssam/archgen/schema"
)

// Postgres reads the information_schema of a PostgreSQL database.
type Postgres struct{}

// Dialect implements Catalog.
func (*Postgres) Dialect() string { return dialect.Postgres }

// DriverName implements Catalog.
func (*Postgres) DriverName() string { return "postgres" }

// Source implements Catalog. URL descriptors are normalized to the postgres
// scheme, key-value descriptors to the lib/pq form.
func (*Postgres) Source(d *dsn.DSN) (string, error) {
	if d.Form == dsn.FormURL {
		return d.URL("postgres"), nil
	}
	return d.PQ(), nil
}

const (
	pgTablesQuery = `SELECT table_schema, table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('pg_catalog', 'information_schema')`

	pgColumnsQuery = `SELECT column_name, data_type, udt_name, is_nullable, column_default,
  character_maximum_length, numeric_precision, numeric_scale
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`

	pgPrimaryKeysQuery = `SELECT kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name
 AND tc.table_schema = kcu.table_schema
WHERE tc.constraint_type = 'PRIMARY KEY'
  AND tc.table_schema = $1 AND tc.table_name = $2
ORDER BY kcu.ordinal_position`

	pgForeignKeysQuery = `SELECT kcu.column_name, ccu.table_schema, ccu.table_name, ccu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name
 AND tc.table_schema = kcu.table_schema
JOIN information_schema.constraint_column_usage ccu
  ON ccu.constraint_name = tc.constraint_name
 AND ccu.table_schema = tc.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY'
  AND tc.table_schema = $1 AND tc.table_name = $2
ORDER BY kcu.ordinal_position`
)

// Tables implements Catalog.
func (*Postgres) Tables(ctx context.Context, q Querier, schemas []string) ([]TableRef, error) {
	query, args := pgTablesQuery, []any(nil)
	if len(schemas) > 0 {
		query += "\n  AND table_schema = ANY($1)"
		args = append(args, pq.Array(schemas))
	}
	query += "\nORDER BY table_schema, table_name"
	return queryAll(ctx, q, func(rows *sql.Rows) (TableRef, error) {
		var r TableRef
		err := rows.Scan(&r.Schema, &r.Name)
		return r, err
	}, query, args...)
}

// Columns implements Catalog.
func (*Postgres) Columns(ctx context.Context, q Querier, t TableRef) ([]*schema.Column, error) {
	return queryAll(ctx, q, func(rows *sql.Rows) (*schema.Column, error) {
		var (
			c                        schema.Column
			dataType, udt, nullable  string
			def                      sql.NullString
			length, precision, scale sql.NullInt64
		)
		if err := rows.Scan(&c.Name, &dataType, &udt, &nullable, &def, &length, &precision, &scale); err != nil {
			return nil, err
		}
		c.DataType = pgType(dataType, udt, length, precision, scale)
		c.Nullable = nullable == "YES"
		c.Default = nullString(def)
		return &c, nil
	}, pgColumnsQuery, t.Schema, t.Name)
}

// pgType spells a column type the way the type tables expect it.
func pgType(dataType, udt string, length, precision, scale sql.NullInt64) string {
	switch dataType {
	case "character varying":
		return qualifiedType("varchar", length, sql.NullInt64{}, sql.NullInt64{})
	case "character":
		return qualifiedType("char", length, sql.NullInt64{}, sql.NullInt64{})
	case "numeric":
		return qualifiedType("numeric", sql.NullInt64{}, precision, scale)
	case "ARRAY":
		return strings.TrimPrefix(udt, "_") + "[]"
	case "USER-DEFINED":
		return udt
	default:
		return dataType
	}
}

// PrimaryKeys implements Catalog.
func (*Postgres) PrimaryKeys(ctx context.Context, q Querier, t TableRef) ([]string, error) {
	return queryAll(ctx, q, scanString, pgPrimaryKeysQuery, t.Schema, t.Name)
}

// ForeignKeys implements Catalog.
func (*Postgres) ForeignKeys(ctx context.Context, q Querier, t TableRef) ([]schema.ForeignKey, error) {
	return queryAll(ctx, q, func(rows *sql.Rows) (schema.ForeignKey, error) {
		var fk schema.ForeignKey
		err := rows.Scan(&fk.Column, &fk.RefSchema, &fk.RefTable, &fk.RefColumn)
		return fk, err
	}, pgForeignKeysQuery, t.Schema, t.Name)
}
