package introspect

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/syssam/archgen/dialect"
	"github.com/syssam/archgen/dsn"
	"github.com/syssam/archgen/schema"
)

// MySQL reads the information_schema of a MySQL or MariaDB database.
type MySQL struct{}

// Dialect implements Catalog.
func (*MySQL) Dialect() string { return dialect.MySQL }

// DriverName implements Catalog.
func (*MySQL) DriverName() string { return "mysql" }

// Source implements Catalog.
func (*MySQL) Source(d *dsn.DSN) (string, error) {
	if d.Database == "" {
		return "", &dsn.Error{Input: d.Raw, Message: "mysql descriptor needs a database name"}
	}
	return d.MySQL().FormatDSN(), nil
}

const (
	myTablesQuery = `SELECT table_schema, table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'`

	myColumnsQuery = `SELECT column_name, data_type, column_type, is_nullable, column_default,
  character_maximum_length, numeric_precision, numeric_scale
FROM information_schema.columns
WHERE table_schema = ? AND table_name = ?
ORDER BY ordinal_position`

	myPrimaryKeysQuery = `SELECT column_name
FROM information_schema.key_column_usage
WHERE table_schema = ? AND table_name = ? AND constraint_name = 'PRIMARY'
ORDER BY ordinal_position`

	myForeignKeysQuery = `SELECT column_name, referenced_table_schema, referenced_table_name, referenced_column_name
FROM information_schema.key_column_usage
WHERE table_schema = ? AND table_name = ? AND referenced_table_name IS NOT NULL
ORDER BY constraint_name, ordinal_position`
)

// Tables implements Catalog. Without explicit schemas only the connected
// database is read.
func (*MySQL) Tables(ctx context.Context, q Querier, schemas []string) ([]TableRef, error) {
	query, args := myTablesQuery, []any(nil)
	if len(schemas) == 0 {
		query += "\n  AND table_schema = DATABASE()"
	} else {
		query += "\n  AND table_schema IN (?" + strings.Repeat(", ?", len(schemas)-1) + ")"
		for _, s := range schemas {
			args = append(args, s)
		}
	}
	query += "\nORDER BY table_schema, table_name"
	return queryAll(ctx, q, func(rows *sql.Rows) (TableRef, error) {
		var r TableRef
		err := rows.Scan(&r.Schema, &r.Name)
		return r, err
	}, query, args...)
}

// Columns implements Catalog.
func (*MySQL) Columns(ctx context.Context, q Querier, t TableRef) ([]*schema.Column, error) {
	return queryAll(ctx, q, func(rows *sql.Rows) (*schema.Column, error) {
		var (
			c                           schema.Column
			dataType, colType, nullable string
			def                         sql.NullString
			length, precision, scale    sql.NullInt64
		)
		if err := rows.Scan(&c.Name, &dataType, &colType, &nullable, &def, &length, &precision, &scale); err != nil {
			return nil, err
		}
		c.DataType = myType(strings.ToLower(dataType), strings.ToLower(colType), length, precision, scale)
		c.Nullable = nullable == "YES"
		c.Default = nullString(def)
		return &c, nil
	}, myColumnsQuery, t.Schema, t.Name)
}

// myType spells a MySQL column type. tinyint(1) is the conventional boolean.
func myType(dataType, colType string, length, precision, scale sql.NullInt64) string {
	switch dataType {
	case "varchar", "char":
		return qualifiedType(dataType, length, sql.NullInt64{}, sql.NullInt64{})
	case "decimal", "numeric":
		return qualifiedType(dataType, sql.NullInt64{}, precision, scale)
	case "tinyint":
		if strings.HasPrefix(colType, "tinyint(1)") {
			return "boolean"
		}
	}
	return dataType
}

// PrimaryKeys implements Catalog.
func (*MySQL) PrimaryKeys(ctx context.Context, q Querier, t TableRef) ([]string, error) {
	return queryAll(ctx, q, scanString, myPrimaryKeysQuery, t.Schema, t.Name)
}

// ForeignKeys implements Catalog.
func (*MySQL) ForeignKeys(ctx context.Context, q Querier, t TableRef) ([]schema.ForeignKey, error) {
	return queryAll(ctx, q, func(rows *sql.Rows) (schema.ForeignKey, error) {
		var fk schema.ForeignKey
		err := rows.Scan(&fk.Column, &fk.RefSchema, &fk.RefTable, &fk.RefColumn)
		return fk, err
	}, myForeignKeysQuery, t.Schema, t.Name)
}
