package gen

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TypeMapper maps source column types to the type system of one target.
type TypeMapper interface {
	// MapType returns the target type of a column, wrapped in the target's
	// nullability idiom when nullable is true and the type is not exempt.
	MapType(sourceType string, nullable bool) string
	// ColumnType returns the data-access-layer column type of a column.
	ColumnType(sourceType string) string
	// Exempt reports whether a target type is already nullable.
	Exempt(targetType string) bool
}

// TypeTable is a TypeMapper backed by static lookup tables. Lookups use the
// bare, lower-cased source type ("varchar(255)" is looked up as "varchar").
type TypeTable struct {
	// Types maps bare source types to target types.
	Types map[string]string
	// Fallback is the target type of unknown source types.
	Fallback string
	// Columns maps bare source types to column types.
	Columns map[string]string
	// ColumnFallback is the column type of unknown source types.
	ColumnFallback string
	// Bounded holds format strings, keyed by bare source type, for column
	// types that carry the source length ("String(%d)").
	Bounded map[string]string
	// Nullable wraps a target type in the nullability idiom.
	Nullable func(string) string
	// Exempted lists target types that are never wrapped.
	Exempted []string
}

var _ TypeMapper = (*TypeTable)(nil)

// MapType implements TypeMapper.
func (t *TypeTable) MapType(sourceType string, nullable bool) string {
	typ, ok := t.Types[BaseType(sourceType)]
	if !ok {
		typ = t.Fallback
	}
	if nullable && t.Nullable != nil && !t.Exempt(typ) {
		typ = t.Nullable(typ)
	}
	return typ
}

// ColumnType implements TypeMapper.
func (t *TypeTable) ColumnType(sourceType string) string {
	base := BaseType(sourceType)
	if format, ok := t.Bounded[base]; ok {
		if n, ok := Length(sourceType); ok {
			return fmt.Sprintf(format, n)
		}
	}
	if c, ok := t.Columns[base]; ok {
		return c
	}
	return t.ColumnFallback
}

// Exempt implements TypeMapper.
func (t *TypeTable) Exempt(targetType string) bool {
	return slices.Contains(t.Exempted, targetType)
}

// SourceTypes returns the known source types in sorted order.
func (t *TypeTable) SourceTypes() []string {
	keys := make([]string, 0, len(t.Types))
	for k := range t.Types {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// BaseType lower-cases a source type and strips its parenthesized
// qualifier: "VARCHAR(255)" becomes "varchar", "numeric(10, 2)" becomes
// "numeric".
func BaseType(sourceType string) string {
	s := strings.ToLower(sourceType)
	if i := strings.IndexByte(s, '('); i >= 0 {
		rest := ""
		if j := strings.IndexByte(s[i:], ')'); j >= 0 {
			rest = s[i+j+1:]
		}
		s = s[:i] + rest
	}
	return strings.Join(strings.Fields(s), " ")
}

// Length returns the single integer qualifier of a source type, as in
// varchar(255).
func Length(sourceType string) (int, bool) {
	_, rest, ok := strings.Cut(sourceType, "(")
	if !ok {
		return 0, false
	}
	inner, _, ok := strings.Cut(rest, ")")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(inner))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
