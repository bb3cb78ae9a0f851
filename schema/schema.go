package schema

import (
	"path"
	"slices"
)

// Reference points at the column a foreign key column refers to.
type Reference struct {
	Schema string `msgpack:"schema" yaml:"schema,omitempty"`
	Table  string `msgpack:"table" yaml:"table"`
	Column string `msgpack:"column" yaml:"column"`
}

// Column is a single table column as read from the catalog.
type Column struct {
	Name string `msgpack:"name" yaml:"name"`
	// DataType is the source type, possibly parametrized, e.g.
	// varchar(255) or numeric(10,2).
	DataType   string     `msgpack:"type" yaml:"type"`
	Nullable   bool       `msgpack:"nullable" yaml:"nullable"`
	Default    *string    `msgpack:"default,omitempty" yaml:"default,omitempty"`
	PrimaryKey bool       `msgpack:"pk" yaml:"primary_key,omitempty"`
	ForeignKey bool       `msgpack:"fk" yaml:"foreign_key,omitempty"`
	References *Reference `msgpack:"ref,omitempty" yaml:"references,omitempty"`
}

// ForeignKey describes one column-level foreign key constraint.
type ForeignKey struct {
	Column    string `msgpack:"column" yaml:"column"`
	RefSchema string `msgpack:"ref_schema" yaml:"ref_schema,omitempty"`
	RefTable  string `msgpack:"ref_table" yaml:"ref_table"`
	RefColumn string `msgpack:"ref_column" yaml:"ref_column"`
}

// Table is a base table with its columns in ordinal order.
type Table struct {
	Name        string       `msgpack:"name" yaml:"name"`
	Schema      string       `msgpack:"schema" yaml:"schema,omitempty"`
	Columns     []*Column    `msgpack:"columns" yaml:"columns"`
	PrimaryKeys []string     `msgpack:"primary_keys" yaml:"primary_keys,omitempty"`
	ForeignKeys []ForeignKey `msgpack:"foreign_keys" yaml:"foreign_keys,omitempty"`
}

// Schema is the ordered set of tables of one database.
type Schema struct {
	// Dialect is the source dialect name ("postgres", "mysql", "sqlite").
	Dialect string   `msgpack:"dialect" yaml:"dialect"`
	Tables  []*Table `msgpack:"tables" yaml:"tables"`
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// QualifiedName returns "schema.name", or the bare name when the table has
// no schema.
func (t *Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Link sets the key flags and references of the table columns from its
// PrimaryKeys and ForeignKeys lists. Keys naming unknown columns are ignored.
func (t *Table) Link() {
	for _, c := range t.Columns {
		c.PrimaryKey = slices.Contains(t.PrimaryKeys, c.Name)
		c.ForeignKey = false
		c.References = nil
		for _, fk := range t.ForeignKeys {
			if fk.Column != c.Name {
				continue
			}
			c.ForeignKey = true
			c.References = &Reference{Schema: fk.RefSchema, Table: fk.RefTable, Column: fk.RefColumn}
			break
		}
	}
}

// Table returns the first table with the given name, or nil. The name may be
// qualified with its schema ("public.users").
func (s *Schema) Table(name string) *Table {
	for _, t := range s.Tables {
		if t.Name == name || t.QualifiedName() == name {
			return t
		}
	}
	return nil
}

// Names returns the table names in schema order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// SharedNames returns the table names that occur in more than one schema,
// such as users in both public and audit.
func (s *Schema) SharedNames() map[string]bool {
	first := make(map[string]string, len(s.Tables))
	shared := make(map[string]bool)
	for _, t := range s.Tables {
		sc, ok := first[t.Name]
		switch {
		case !ok:
			first[t.Name] = t.Schema
		case sc != t.Schema:
			shared[t.Name] = true
		}
	}
	return shared
}

// Validate checks the uniqueness invariants of the model.
func (s *Schema) Validate() error {
	seen := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		if t.Name == "" {
			return NewError(t.Schema, "", "table name cannot be empty")
		}
		key := t.QualifiedName()
		if seen[key] {
			return NewError(key, "", "duplicate table")
		}
		seen[key] = true
		cols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if c.Name == "" {
				return NewError(key, "", "column name cannot be empty")
			}
			if cols[c.Name] {
				return NewError(key, c.Name, "duplicate column")
			}
			cols[c.Name] = true
		}
	}
	return nil
}

// Dangling is a foreign key whose target is missing from the schema.
type Dangling struct {
	Table string
	ForeignKey
}

// DanglingReferences returns, in table order, the foreign keys whose target
// column does not exist in the schema. Generators tolerate them.
func (s *Schema) DanglingReferences() []Dangling {
	var dangling []Dangling
	for _, t := range s.Tables {
		for _, fk := range t.ForeignKeys {
			ref := s.lookup(fk.RefSchema, fk.RefTable)
			if ref == nil || ref.Column(fk.RefColumn) == nil {
				dangling = append(dangling, Dangling{Table: t.Name, ForeignKey: fk})
			}
		}
	}
	return dangling
}

func (s *Schema) lookup(schemaName, name string) *Table {
	for _, t := range s.Tables {
		if t.Name == name && (schemaName == "" || t.Schema == "" || t.Schema == schemaName) {
			return t
		}
	}
	return nil
}

// Filter returns a schema holding the tables whose name matches one of the
// include patterns (all tables when include is empty) and none of the
// exclude patterns. Patterns use path.Match syntax. Table order is kept.
func (s *Schema) Filter(include, exclude []string) *Schema {
	out := &Schema{Dialect: s.Dialect}
	for _, t := range s.Tables {
		if len(include) > 0 && !matchAny(include, t) {
			continue
		}
		if matchAny(exclude, t) {
			continue
		}
		out.Tables = append(out.Tables, t)
	}
	return out
}

func matchAny(patterns []string, t *Table) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, t.Name); ok {
			return true
		}
		if ok, _ := path.Match(p, t.QualifiedName()); ok {
			return true
		}
	}
	return false
}
