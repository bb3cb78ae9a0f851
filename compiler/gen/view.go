package gen

import (
	"cmp"

	"github.com/syssam/archgen/naming"
	"github.com/syssam/archgen/schema"
)

// ColumnView is a column with its names normalized and its type resolved
// for one target.
type ColumnView struct {
	// Name is the column name as found in the database.
	Name   string
	Snake  string
	Pascal string
	Camel  string
	// SourceType is the database type, e.g. varchar(255).
	SourceType string
	// Type is the target type, wrapped for nullability.
	Type string
	// BaseType is the target type without nullability wrapping.
	BaseType string
	// ColumnType is the data-access-layer column type.
	ColumnType string
	// MaxLength is the declared length of bounded types, or 0.
	MaxLength  int
	Nullable   bool
	PrimaryKey bool
	ForeignKey bool
	Default    *string
	References *RefView
	// Synthesized marks a surrogate key that is not a database column.
	Synthesized bool
}

// RefView is the target of a foreign key column.
type RefView struct {
	Schema string
	Table  string
	Column string
	// Pascal and Snake are the normalized names of the referenced table.
	Pascal       string
	Snake        string
	ColumnPascal string
}

// TableView is a table prepared for rendering: normalized names, target
// types and a resolved primary key.
type TableView struct {
	// Name is the table name as found in the database.
	Name   string
	Schema string
	Snake  string
	Pascal string
	Camel  string
	// Plural and Singular are Pascal-cased number forms of the name.
	Plural   string
	Singular string
	// Route is the kebab-cased URL segment of the table.
	Route string
	// Package is a Go package name for the table.
	Package string
	// Dialect is the source database dialect, when known.
	Dialect string
	// Group is the group the table is placed in; empty without grouping.
	Group string
	// Dir is the normalized group directory inserted into artifact paths;
	// empty without grouping.
	Dir string

	Columns []*ColumnView
	// PrimaryKey is never nil. It is the first primary key column, or a
	// surrogate when the table has none.
	PrimaryKey *ColumnView
	// Surrogate reports that PrimaryKey was not declared by the database.
	Surrogate bool
	// NonPrimaryColumns are the columns that are not part of the key.
	NonPrimaryColumns []*ColumnView
	// ForeignKeys are the columns referencing another table.
	ForeignKeys []*ColumnView
}

// NewTableView builds the view of t for the target described by m.
//
// A table without primary key gets a surrogate: an existing column named
// "id" is promoted, otherwise an integer "id" member is synthesized.
func NewTableView(t *schema.Table, m TypeMapper, group string) *TableView {
	v := &TableView{Name: t.Name, Schema: t.Schema, Group: group}
	v.setNames(t.Name)
	for _, c := range t.Columns {
		cv := newColumnView(c, m)
		v.Columns = append(v.Columns, cv)
		if cv.PrimaryKey && v.PrimaryKey == nil {
			v.PrimaryKey = cv
		}
		if cv.References != nil {
			v.ForeignKeys = append(v.ForeignKeys, cv)
		}
	}
	if v.PrimaryKey == nil {
		v.Surrogate = true
		v.PrimaryKey = surrogate(v, m)
	}
	for _, cv := range v.Columns {
		if !cv.PrimaryKey {
			v.NonPrimaryColumns = append(v.NonPrimaryColumns, cv)
		}
	}
	return v
}

// setNames derives the normalized names of the view from name.
func (v *TableView) setNames(name string) {
	v.Snake = naming.Snake(name)
	v.Pascal = naming.Pascal(name)
	v.Camel = naming.Camel(name)
	v.Plural = naming.Pascal(naming.Plural(v.Snake))
	v.Singular = naming.Pascal(naming.Singular(v.Snake))
	v.Route = naming.Kebab(name)
	v.Package = naming.Package(name)
}

// Qualify prefixes the normalized names of the view with its schema, so
// that users of schemas public and audit become PublicUsers and AuditUsers.
// Name and Schema keep the database identifiers.
func (v *TableView) Qualify() {
	if v.Schema != "" {
		v.setNames(v.Schema + "_" + v.Name)
	}
}

// Qualify prefixes the normalized names of the referenced table with its
// schema, or with fallback when the reference names none.
func (r *RefView) Qualify(fallback string) {
	if sc := cmp.Or(r.Schema, fallback); sc != "" {
		r.Pascal = naming.Pascal(sc + "_" + r.Table)
		r.Snake = naming.Snake(sc + "_" + r.Table)
	}
}

func newColumnView(c *schema.Column, m TypeMapper) *ColumnView {
	cv := &ColumnView{
		Name:       c.Name,
		Snake:      naming.Snake(c.Name),
		Pascal:     naming.Pascal(c.Name),
		Camel:      naming.Camel(c.Name),
		SourceType: c.DataType,
		Type:       m.MapType(c.DataType, c.Nullable && !c.PrimaryKey),
		BaseType:   m.MapType(c.DataType, false),
		ColumnType: m.ColumnType(c.DataType),
		MaxLength:  maxLength(c.DataType),
		Nullable:   c.Nullable && !c.PrimaryKey,
		PrimaryKey: c.PrimaryKey,
		ForeignKey: c.ForeignKey,
		Default:    c.Default,
	}
	if c.ForeignKey && c.References != nil {
		cv.References = &RefView{
			Schema:       c.References.Schema,
			Table:        c.References.Table,
			Column:       c.References.Column,
			Pascal:       naming.Pascal(c.References.Table),
			Snake:        naming.Snake(c.References.Table),
			ColumnPascal: naming.Pascal(c.References.Column),
		}
	}
	return cv
}

func maxLength(sourceType string) int {
	n, _ := Length(sourceType)
	return n
}

// surrogate promotes a non-key "id" column or synthesizes one.
func surrogate(v *TableView, m TypeMapper) *ColumnView {
	for _, cv := range v.Columns {
		if cv.Name == "id" {
			cv.PrimaryKey = true
			cv.Nullable = false
			cv.Type = cv.BaseType
			return cv
		}
	}
	return &ColumnView{
		Name:        "id",
		Snake:       "id",
		Pascal:      "Id",
		Camel:       "id",
		SourceType:  "integer",
		Type:        m.MapType("integer", false),
		BaseType:    m.MapType("integer", false),
		ColumnType:  m.ColumnType("integer"),
		PrimaryKey:  true,
		Synthesized: true,
	}
}

// Members returns the members of the entity: the synthesized surrogate key,
// if any, followed by every column in ordinal order.
func (v *TableView) Members() []*ColumnView {
	if !v.PrimaryKey.Synthesized {
		return v.Columns
	}
	return append([]*ColumnView{v.PrimaryKey}, v.Columns...)
}

// Column returns the view of the named column, or nil.
func (v *TableView) Column(name string) *ColumnView {
	for _, c := range v.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Nested returns base followed by the group directory, joined with sep:
// Nested("internal", "/") is "internal/sales" for a table of group Sales.
func (v *TableView) Nested(base, sep string) string {
	if v.Dir == "" {
		return base
	}
	return base + sep + v.Dir
}
