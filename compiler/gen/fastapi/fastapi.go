// Package fastapi generates a FastAPI uv workspace with domain,
// application, infrastructure and api packages. Persistence uses async
// SQLAlchemy 2 and payloads are pydantic models.
package fastapi

import (
	"cmp"
	"embed"
	"net"
	"net/url"
	"path"
	"slices"
	"strings"
	"text/template"

	"ariga.io/atlas/sql/postgres"

	"github.com/syssam/archgen/compiler/gen"
	"github.com/syssam/archgen/dialect"
	"github.com/syssam/archgen/dsn"
	"github.com/syssam/archgen/naming"
)

var (
	//go:embed templates/*.tmpl
	templateDir embed.FS
	//go:embed static/gitignore
	gitignore string

	templates = template.Must(template.New("").
		Funcs(gen.Funcs).
		Funcs(template.FuncMap{"pyname": Identifier}).
		ParseFS(templateDir, "templates/*.tmpl"))
)

// Strategy is the fastapi gen.Strategy.
type Strategy struct{}

var _ gen.Strategy = (*Strategy)(nil)

// New returns the fastapi strategy.
func New() *Strategy { return &Strategy{} }

// Target implements gen.Strategy.
func (*Strategy) Target() gen.Target { return gen.TargetFastAPI }

// TypeMapper implements gen.Strategy.
func (*Strategy) TypeMapper() gen.TypeMapper { return pythonTypes }

// GroupSegment implements gen.Strategy. Group folders are Python packages
// and use snake case.
func (*Strategy) GroupSegment(group string) string { return naming.Snake(group) }

func pkg(dir string, v *gen.TableView, elem ...string) string {
	return path.Join(append([]string{v.Nested(dir, "/")}, elem...)...)
}

// artifact renders a table template with the table's import data.
func artifact(kind gen.ArtifactKind, name string, p func(*gen.TableView) string) gen.TableArtifact {
	return gen.TableArtifact{
		Kind: kind,
		Path: p,
		Render: func(v *gen.TableView) (string, error) {
			return gen.Execute(templates, name, newTableData(v))
		},
	}
}

// TableArtifacts implements gen.Strategy.
func (*Strategy) TableArtifacts() []gen.TableArtifact {
	return []gen.TableArtifact{
		artifact(gen.KindEntity, "entity.py.tmpl", func(v *gen.TableView) string {
			return pkg("domain/entities", v, v.Snake+".py")
		}),
		artifact(gen.KindRepository, "repository.py.tmpl", func(v *gen.TableView) string {
			return pkg("domain/repositories", v, v.Snake+"_repository.py")
		}),
		artifact(gen.KindRepositoryImpl, "repository_sqlalchemy.py.tmpl", func(v *gen.TableView) string {
			return pkg("infrastructure/repositories", v, v.Snake+"_repository.py")
		}),
		artifact(gen.KindController, "router.py.tmpl", func(v *gen.TableView) string {
			return pkg("api/routers", v, v.Snake+".py")
		}),
		artifact(gen.KindService, "service_interface.py.tmpl", func(v *gen.TableView) string {
			return pkg("application/interfaces", v, v.Snake+"_service.py")
		}),
		artifact(gen.KindServiceImpl, "service.py.tmpl", func(v *gen.TableView) string {
			return pkg("application/services", v, v.Snake+"_service.py")
		}),
		artifact(gen.KindCreatePayload, "create_schema.py.tmpl", func(v *gen.TableView) string {
			return pkg("application/schemas", v, v.Snake, "create_"+v.Snake+".py")
		}),
		artifact(gen.KindUpdatePayload, "update_schema.py.tmpl", func(v *gen.TableView) string {
			return pkg("application/schemas", v, v.Snake, "update_"+v.Snake+".py")
		}),
		artifact(gen.KindValidator, "validator.py.tmpl", func(v *gen.TableView) string {
			return pkg("application/validators", v, v.Snake, v.Snake+"_validator.py")
		}),
	}
}

// SchemaArtifacts implements gen.Strategy.
func (*Strategy) SchemaArtifacts() []gen.SchemaArtifact {
	tmpl := func(path, name string) gen.SchemaArtifact {
		return gen.TemplateSchemaArtifact(gen.StaticPath(path), templates, name)
	}
	return []gen.SchemaArtifact{
		tmpl("api/main.py", "main.py.tmpl"),
		tmpl("api/settings.json", "settings.json.tmpl"),
		gen.Static("api/settings.development.json", settingsDevelopment),
		tmpl("api/config.py", "config.py.tmpl"),
		layerProject("domain", "sqlalchemy>=2.0"),
		layerProject("application", "pydantic>=2.0", "fastapi>=0.110"),
		layerProject("infrastructure", "sqlalchemy[asyncio]>=2.0", "fastapi>=0.110"),
		layerProject("api", "fastapi>=0.110", "uvicorn[standard]>=0.29", "pydantic>=2.0"),
		tmpl("pyproject.toml", "pyproject.toml.tmpl"),
		tmpl("application/dependencies.py", "application_dependencies.py.tmpl"),
		tmpl("application/errors.py", "errors.py.tmpl"),
		tmpl("infrastructure/dependencies.py", "infrastructure_dependencies.py.tmpl"),
		tmpl("infrastructure/database.py", "database.py.tmpl"),
		tmpl("domain/entities/base.py", "base.py.tmpl"),
		gen.Static("domain/README.md", "# Domain Layer\n\nEntities and repository contracts. No framework dependencies beyond SQLAlchemy.\n"),
		gen.Static("application/README.md", "# Application Layer\n\nServices, pydantic schemas and validators.\n"),
		gen.Static(".gitignore", gitignore),
		tmpl("README.md", "readme.md.tmpl"),
	}
}

const settingsDevelopment = `{
  "debug": true,
  "echo_sql": true
}
`

// layerProject renders the pyproject.toml of one workspace member. The
// infrastructure layer gets the async driver of the source dialect.
func layerProject(layer string, deps ...string) gen.SchemaArtifact {
	return gen.SchemaArtifact{
		Path: gen.StaticPath(layer + "/pyproject.toml"),
		Render: func(p *gen.Project) (string, error) {
			name := naming.Kebab(p.Name)
			deps := slices.Clone(deps)
			if layer == "infrastructure" {
				deps = append(deps, asyncDriver(p.Dialect))
			}
			if layer != "domain" {
				deps = append(deps, name+"-domain")
			}
			return gen.Execute(templates, "layer.pyproject.toml.tmpl", struct {
				Package      string
				Dependencies []string
			}{name + "-" + layer, deps})
		},
	}
}

func asyncDriver(d string) string {
	switch d {
	case dialect.MySQL:
		return "aiomysql>=0.2"
	case dialect.SQLite:
		return "aiosqlite>=0.20"
	default:
		return "asyncpg>=0.29"
	}
}

// Async SQLAlchemy URL schemes per source dialect.
var asyncSchemes = map[string]string{
	dialect.Postgres: "postgresql+asyncpg",
	dialect.MySQL:    "mysql+aiomysql",
	dialect.SQLite:   "sqlite+aiosqlite",
}

// ConnectionString implements gen.Strategy. The result is an async
// SQLAlchemy URL. Missing parts of key-value input default to localhost,
// the dialect's port and the dialect's administrative user and database.
func (*Strategy) ConnectionString(raw string) string {
	d, err := dsn.Parse(raw)
	if err != nil {
		return raw
	}
	scheme := asyncSchemes[d.Dialect]
	switch {
	case d.Form == dsn.FormURL && strings.Contains(d.Scheme, "+"):
		return raw
	case d.Form == dsn.FormKeyValue && d.Dialect != dialect.SQLite:
		return keyValueURL(scheme, d)
	default:
		return d.URL(scheme)
	}
}

func keyValueURL(scheme string, d *dsn.DSN) string {
	user, db := "postgres", "postgres"
	if d.Dialect == dialect.MySQL {
		user, db = "root", "mysql"
	}
	u := &url.URL{
		Scheme: scheme,
		User:   url.UserPassword(cmp.Or(d.User, user), d.Password),
		Host:   net.JoinHostPort(cmp.Or(d.Host, "localhost"), d.PortOrDefault()),
		Path:   "/" + cmp.Or(d.Database, db),
	}
	return u.String()
}

var keywords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
	"while", "with", "yield",
}

// Identifier returns s as a Python identifier, appending an underscore to
// reserved words ("class" becomes "class_").
func Identifier(s string) string {
	if slices.Contains(keywords, s) {
		return s + "_"
	}
	return s
}

// tableData is the input of table templates: the view plus the imports its
// types need.
type tableData struct {
	*gen.TableView
	// EntityImports and PayloadImports are blocks of standard library
	// imports, each followed by a blank line when not empty.
	EntityImports  string
	PayloadImports string
	// SQLImports are the sqlalchemy names used by the entity.
	SQLImports []string
	PGUUID     bool
}

// Standard library modules providing the Python types of the type table.
var typeModules = map[string]string{
	"date":      "datetime",
	"datetime":  "datetime",
	"time":      "datetime",
	"timedelta": "datetime",
	"Decimal":   "decimal",
	"UUID":      "uuid",
}

func newTableData(v *gen.TableView) *tableData {
	members := v.Members()
	d := &tableData{TableView: v}
	nullable := slices.ContainsFunc(members, func(c *gen.ColumnView) bool { return c.Nullable })
	d.EntityImports = importBlock(members, nullable)
	d.PayloadImports = importBlock(members, true)

	sqlNames := map[string]bool{}
	for _, c := range members {
		name, _, _ := strings.Cut(c.ColumnType, "(")
		if name == "PG_UUID" {
			d.PGUUID = true
			continue
		}
		sqlNames[name] = true
	}
	if len(v.ForeignKeys) > 0 {
		sqlNames["ForeignKey"] = true
	}
	for name := range sqlNames {
		d.SQLImports = append(d.SQLImports, name)
	}
	slices.Sort(d.SQLImports)
	return d
}

// importBlock returns the "from module import names" lines for the column
// types, ordered by module.
func importBlock(cols []*gen.ColumnView, optional bool) string {
	byModule := map[string][]string{}
	if optional {
		byModule["typing"] = []string{"Optional"}
	}
	for _, c := range cols {
		if m, ok := typeModules[c.BaseType]; ok && !slices.Contains(byModule[m], c.BaseType) {
			byModule[m] = append(byModule[m], c.BaseType)
		}
	}
	if len(byModule) == 0 {
		return ""
	}
	modules := make([]string, 0, len(byModule))
	for m := range byModule {
		modules = append(modules, m)
	}
	slices.Sort(modules)
	var b strings.Builder
	for _, m := range modules {
		names := byModule[m]
		slices.Sort(names)
		b.WriteString("from " + m + " import " + strings.Join(names, ", ") + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

var pythonTypes = &gen.TypeTable{
	Types: map[string]string{
		postgres.TypeInteger:          "int",
		postgres.TypeInt:              "int",
		postgres.TypeInt4:             "int",
		postgres.TypeSerial:           "int",
		postgres.TypeSmallInt:         "int",
		postgres.TypeInt2:             "int",
		postgres.TypeSmallSerial:      "int",
		postgres.TypeBigInt:           "int",
		postgres.TypeInt8:             "int",
		postgres.TypeBigSerial:        "int",
		"serial8":                     "int",
		postgres.TypeUUID:             "UUID",
		postgres.TypeText:             "str",
		postgres.TypeCharVar:          "str",
		postgres.TypeVarChar:          "str",
		postgres.TypeCharacter:        "str",
		postgres.TypeChar:             "str",
		"citext":                      "str",
		postgres.TypeBoolean:          "bool",
		postgres.TypeBool:             "bool",
		postgres.TypeDate:             "date",
		"timestamp":                   "datetime",
		"timestamp without time zone": "datetime",
		"timestamp with time zone":    "datetime",
		"timestamptz":                 "datetime",
		postgres.TypeNumeric:          "Decimal",
		postgres.TypeDecimal:          "Decimal",
		"money":                       "Decimal",
		"double precision":            "float",
		"float8":                      "float",
		"real":                        "float",
		"float4":                      "float",
		postgres.TypeBytea:            "bytes",
		postgres.TypeJSON:             "dict",
		postgres.TypeJSONB:            "dict",
		"time":                        "time",
		"time without time zone":      "time",
		"time with time zone":         "time",
		"interval":                    "timedelta",

		// MySQL and SQLite spellings.
		"tinyint":    "int",
		"mediumint":  "int",
		"year":       "int",
		"double":     "float",
		"float":      "float",
		"datetime":   "datetime",
		"tinytext":   "str",
		"mediumtext": "str",
		"longtext":   "str",
		"enum":       "str",
		"set":        "str",
		"blob":       "bytes",
		"tinyblob":   "bytes",
		"mediumblob": "bytes",
		"longblob":   "bytes",
		"binary":     "bytes",
		"varbinary":  "bytes",
	},
	Fallback: "str",
	Columns: map[string]string{
		postgres.TypeInteger:          "Integer",
		postgres.TypeInt:              "Integer",
		postgres.TypeInt4:             "Integer",
		postgres.TypeSerial:           "Integer",
		postgres.TypeSmallInt:         "SmallInteger",
		postgres.TypeInt2:             "SmallInteger",
		postgres.TypeSmallSerial:      "SmallInteger",
		postgres.TypeBigInt:           "BigInteger",
		postgres.TypeInt8:             "BigInteger",
		postgres.TypeBigSerial:        "BigInteger",
		"serial8":                     "BigInteger",
		postgres.TypeUUID:             "PG_UUID(as_uuid=True)",
		postgres.TypeText:             "Text",
		postgres.TypeCharVar:          "String",
		postgres.TypeVarChar:          "String",
		postgres.TypeCharacter:        "String",
		postgres.TypeChar:             "String",
		"citext":                      "Text",
		postgres.TypeBoolean:          "Boolean",
		postgres.TypeBool:             "Boolean",
		postgres.TypeDate:             "Date",
		"timestamp":                   "DateTime(timezone=True)",
		"timestamp without time zone": "DateTime",
		"timestamp with time zone":    "DateTime(timezone=True)",
		"timestamptz":                 "DateTime(timezone=True)",
		postgres.TypeNumeric:          "Numeric",
		postgres.TypeDecimal:          "Numeric",
		"money":                       "Numeric",
		"double precision":            "Float",
		"float8":                      "Float",
		"real":                        "Float",
		"float4":                      "Float",
		postgres.TypeBytea:            "LargeBinary",
		postgres.TypeJSON:             "JSON",
		postgres.TypeJSONB:            "JSON",
		"time":                        "Time",
		"time without time zone":      "Time",
		"time with time zone":         "Time",
		"interval":                    "Interval",

		"tinyint":    "SmallInteger",
		"mediumint":  "Integer",
		"year":       "Integer",
		"double":     "Float",
		"float":      "Float",
		"datetime":   "DateTime",
		"tinytext":   "Text",
		"mediumtext": "Text",
		"longtext":   "Text",
		"enum":       "String",
		"set":        "String",
		"blob":       "LargeBinary",
		"tinyblob":   "LargeBinary",
		"mediumblob": "LargeBinary",
		"longblob":   "LargeBinary",
		"binary":     "LargeBinary",
		"varbinary":  "LargeBinary",
	},
	ColumnFallback: "String",
	Bounded: map[string]string{
		postgres.TypeVarChar: "String(%d)",
		postgres.TypeCharVar: "String(%d)",
	},
	Nullable: func(t string) string { return "Optional[" + t + "]" },
}
