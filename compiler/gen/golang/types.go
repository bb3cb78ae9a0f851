package golang

import (
	"strings"

	"ariga.io/atlas/sql/postgres"
	"github.com/dave/jennifer/jen"

	"github.com/syssam/archgen/compiler/gen"
)

// goTypes maps source types to Go types. Columns holds the GraphQL scalar of
// each source type, used by api/schema.graphqls.
var goTypes = &gen.TypeTable{
	Types: map[string]string{
		postgres.TypeSmallInt:         "int16",
		postgres.TypeInt2:             "int16",
		postgres.TypeSmallSerial:      "int16",
		postgres.TypeInteger:          "int32",
		postgres.TypeInt:              "int32",
		postgres.TypeInt4:             "int32",
		postgres.TypeSerial:           "int32",
		postgres.TypeBigInt:           "int64",
		postgres.TypeInt8:             "int64",
		postgres.TypeBigSerial:        "int64",
		"serial8":                     "int64",
		postgres.TypeUUID:             "string",
		postgres.TypeText:             "string",
		postgres.TypeVarChar:          "string",
		postgres.TypeCharVar:          "string",
		postgres.TypeChar:             "string",
		postgres.TypeCharacter:        "string",
		"citext":                      "string",
		postgres.TypeBoolean:          "bool",
		postgres.TypeBool:             "bool",
		postgres.TypeDate:             "time.Time",
		"timestamp":                   "time.Time",
		"timestamp without time zone": "time.Time",
		"timestamp with time zone":    "time.Time",
		"timestamptz":                 "time.Time",
		postgres.TypeNumeric:          "string",
		postgres.TypeDecimal:          "string",
		"money":                       "string",
		"double precision":            "float64",
		"float8":                      "float64",
		"real":                        "float32",
		"float4":                      "float32",
		postgres.TypeBytea:            "[]byte",
		postgres.TypeJSON:             "json.RawMessage",
		postgres.TypeJSONB:            "json.RawMessage",
		"time":                        "string",
		"interval":                    "string",

		// MySQL and SQLite spellings.
		"tinyint":    "int16",
		"mediumint":  "int32",
		"year":       "int16",
		"double":     "float64",
		"float":      "float32",
		"datetime":   "time.Time",
		"tinytext":   "string",
		"mediumtext": "string",
		"longtext":   "string",
		"enum":       "string",
		"set":        "string",
		"blob":       "[]byte",
		"tinyblob":   "[]byte",
		"mediumblob": "[]byte",
		"longblob":   "[]byte",
		"binary":     "[]byte",
		"varbinary":  "[]byte",
	},
	Fallback: "string",
	Columns: map[string]string{
		postgres.TypeSmallInt:         "Int",
		postgres.TypeInt2:             "Int",
		postgres.TypeSmallSerial:      "Int",
		postgres.TypeInteger:          "Int",
		postgres.TypeInt:              "Int",
		postgres.TypeInt4:             "Int",
		postgres.TypeSerial:           "Int",
		postgres.TypeBigInt:           "Int",
		postgres.TypeInt8:             "Int",
		postgres.TypeBigSerial:        "Int",
		"serial8":                     "Int",
		"tinyint":                     "Int",
		"mediumint":                   "Int",
		"year":                        "Int",
		postgres.TypeBoolean:          "Boolean",
		postgres.TypeBool:             "Boolean",
		"double precision":            "Float",
		"float8":                      "Float",
		"real":                        "Float",
		"float4":                      "Float",
		"double":                      "Float",
		"float":                       "Float",
		postgres.TypeDate:             "Time",
		"timestamp":                   "Time",
		"timestamp without time zone": "Time",
		"timestamp with time zone":    "Time",
		"timestamptz":                 "Time",
		"datetime":                    "Time",
		postgres.TypeJSON:             "Map",
		postgres.TypeJSONB:            "Map",
	},
	ColumnFallback: "String",
	Nullable:       func(t string) string { return "*" + t },
	Exempted:       []string{"[]byte", "json.RawMessage"},
}

// qualifiedTypes maps the package prefix of qualified Go types to import
// paths.
var qualifiedTypes = map[string]string{
	"time": "time",
	"json": "encoding/json",
}

// goType returns the jennifer code of a mapped Go type such as "*time.Time"
// or "[]byte".
func goType(t string) jen.Code {
	name, ptr := strings.CutPrefix(t, "*")
	pkg, ident, ok := strings.Cut(name, ".")
	if !ok {
		return jen.Id(t)
	}
	q := jen.Qual(qualifiedTypes[pkg], ident)
	if ptr {
		return jen.Op("*").Add(q)
	}
	return q
}

// isInteger reports whether a Go type is a signed integer.
func isInteger(t string) bool {
	switch t {
	case "int16", "int32", "int64":
		return true
	}
	return false
}

// bitSize returns the bit size of an integer type.
func bitSize(t string) int {
	switch t {
	case "int16":
		return 16
	case "int32":
		return 32
	}
	return 64
}
