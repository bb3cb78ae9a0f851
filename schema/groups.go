package schema

import (
	"slices"
	"strings"
	"unicode"
)

// DefaultGroup collects the tables that belong to no explicit group.
const DefaultGroup = "General"

// Group is a named, ordered set of table names.
type Group struct {
	Name   string   `yaml:"name"`
	Tables []string `yaml:"tables"`
}

// Groups assigns tables to groups. A nil Groups disables grouping.
type Groups []Group

// NewGroups builds Groups from a name to tables mapping, ordered by group
// name so that map iteration order never reaches the generated paths.
func NewGroups(m map[string][]string) Groups {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	gs := make(Groups, 0, len(names))
	for _, name := range names {
		gs = append(gs, Group{Name: name, Tables: slices.Clone(m[name])})
	}
	return gs
}

// Validate checks that group names are non-empty without whitespace and
// that no table is listed in more than one group.
func (gs Groups) Validate() error {
	owner := make(map[string]string)
	names := make(map[string]bool, len(gs))
	for _, g := range gs {
		if g.Name == "" {
			return NewGroupError("", "", "group name cannot be empty")
		}
		if strings.IndexFunc(g.Name, unicode.IsSpace) >= 0 {
			return NewGroupError(g.Name, "", "group name cannot contain whitespace")
		}
		if names[g.Name] {
			return NewGroupError(g.Name, "", "duplicate group")
		}
		names[g.Name] = true
		for _, t := range g.Tables {
			if prev, ok := owner[t]; ok && prev != g.Name {
				return NewGroupError(g.Name, t, "table already assigned to group "+prev)
			}
			owner[t] = g.Name
		}
	}
	return nil
}

// GroupOf returns the group of the named table, or DefaultGroup.
func (gs Groups) GroupOf(table string) string {
	for _, g := range gs {
		if slices.Contains(g.Tables, table) {
			return g.Name
		}
	}
	return DefaultGroup
}

// Unknown returns the grouped table names that do not exist in s.
func (gs Groups) Unknown(s *Schema) []string {
	var unknown []string
	for _, g := range gs {
		for _, t := range g.Tables {
			if s.Table(t) == nil {
				unknown = append(unknown, t)
			}
		}
	}
	return unknown
}
