// Package schematest provides schema fixtures for generator tests.
package schematest

import "github.com/syssam/archgen/schema"

func str(s string) *string { return &s }

// Users returns a single users table:
//
//	users(id serial PK, username varchar(50) NOT NULL, email text NULL,
//	      created_at timestamp NOT NULL DEFAULT now())
func Users() *schema.Schema {
	return build("postgres", &schema.Table{
		Name:   "users",
		Schema: "public",
		Columns: []*schema.Column{
			{Name: "id", DataType: "integer", Default: str("nextval('users_id_seq'::regclass)")},
			{Name: "username", DataType: "varchar(50)"},
			{Name: "email", DataType: "text", Nullable: true},
			{Name: "created_at", DataType: "timestamp", Default: str("now()")},
		},
		PrimaryKeys: []string{"id"},
	})
}

// Orders returns orders and order_items, where order_items.order_id
// references orders.id.
func Orders() *schema.Schema {
	return build("postgres",
		&schema.Table{
			Name:   "orders",
			Schema: "public",
			Columns: []*schema.Column{
				{Name: "id", DataType: "integer"},
				{Name: "customer_name", DataType: "varchar(120)"},
				{Name: "total", DataType: "numeric(10,2)", Nullable: true},
			},
			PrimaryKeys: []string{"id"},
		},
		&schema.Table{
			Name:   "order_items",
			Schema: "public",
			Columns: []*schema.Column{
				{Name: "id", DataType: "integer"},
				{Name: "order_id", DataType: "integer"},
				{Name: "sku", DataType: "varchar(32)"},
				{Name: "quantity", DataType: "integer"},
			},
			PrimaryKeys: []string{"id"},
			ForeignKeys: []schema.ForeignKey{
				{Column: "order_id", RefSchema: "public", RefTable: "orders", RefColumn: "id"},
			},
		},
	)
}

// Keyless returns an audit_log table without primary key.
func Keyless() *schema.Schema {
	return build("postgres", &schema.Table{
		Name:   "audit_log",
		Schema: "public",
		Columns: []*schema.Column{
			{Name: "message", DataType: "text"},
			{Name: "payload", DataType: "jsonb", Nullable: true},
		},
	})
}

// Shop returns customers, orders and invoices, for grouping tests.
func Shop() *schema.Schema {
	return build("postgres",
		&schema.Table{
			Name:   "customers",
			Schema: "public",
			Columns: []*schema.Column{
				{Name: "id", DataType: "uuid"},
				{Name: "name", DataType: "text"},
			},
			PrimaryKeys: []string{"id"},
		},
		&schema.Table{
			Name:   "orders",
			Schema: "public",
			Columns: []*schema.Column{
				{Name: "id", DataType: "bigint"},
				{Name: "customer_id", DataType: "uuid"},
				{Name: "placed_at", DataType: "timestamp with time zone", Nullable: true},
			},
			PrimaryKeys: []string{"id"},
			ForeignKeys: []schema.ForeignKey{
				{Column: "customer_id", RefSchema: "public", RefTable: "customers", RefColumn: "id"},
			},
		},
		&schema.Table{
			Name:   "invoices",
			Schema: "public",
			Columns: []*schema.Column{
				{Name: "id", DataType: "integer"},
				{Name: "order_id", DataType: "bigint"},
				{Name: "amount", DataType: "numeric(12,2)"},
				{Name: "pdf", DataType: "bytea", Nullable: true},
			},
			PrimaryKeys: []string{"id"},
			ForeignKeys: []schema.ForeignKey{
				{Column: "order_id", RefSchema: "public", RefTable: "orders", RefColumn: "id"},
			},
		},
	)
}

// Merge returns a schema holding the tables of every given schema. The
// dialect is taken from the first.
func Merge(ss ...*schema.Schema) *schema.Schema {
	out := &schema.Schema{}
	for _, s := range ss {
		if out.Dialect == "" {
			out.Dialect = s.Dialect
		}
		out.Tables = append(out.Tables, s.Tables...)
	}
	return out
}

func build(dialect string, tables ...*schema.Table) *schema.Schema {
	for _, t := range tables {
		t.Link()
	}
	return &schema.Schema{Dialect: dialect, Tables: tables}
}
