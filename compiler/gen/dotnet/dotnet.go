// Package dotnet generates an ASP.NET Core solution with Core, Application,
// Infrastructure and WebApi projects. Data access uses Dapper and payload
// validation uses FluentValidation.
package dotnet

import (
	"cmp"
	"embed"
	"path"
	"strings"

	"ariga.io/atlas/sql/postgres"
	"github.com/google/uuid"

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

	templates = gen.MustParseTemplates(templateDir, "templates/*.tmpl")
)

// Strategy is the dotnet gen.Strategy.
type Strategy struct {
	types *typeMapper
}

var _ gen.Strategy = (*Strategy)(nil)

// New returns the dotnet strategy.
func New() *Strategy {
	return &Strategy{types: &typeMapper{TypeTable: csharpTypes}}
}

// Target implements gen.Strategy.
func (*Strategy) Target() gen.Target { return gen.TargetDotnet }

// TypeMapper implements gen.Strategy.
func (s *Strategy) TypeMapper() gen.TypeMapper { return s.types }

// GroupSegment implements gen.Strategy. Group folders follow the Pascal
// casing of C# namespaces.
func (*Strategy) GroupSegment(group string) string { return naming.Pascal(group) }

// layer joins a layer folder, the group folder and the remaining segments.
func layer(dir string, v *gen.TableView, elem ...string) string {
	return path.Join(append([]string{v.Nested(dir, "/")}, elem...)...)
}

// TableArtifacts implements gen.Strategy.
func (*Strategy) TableArtifacts() []gen.TableArtifact {
	return []gen.TableArtifact{
		gen.TemplateArtifact(gen.KindEntity, templates, "entity.cs.tmpl", func(v *gen.TableView) string {
			return layer("src/Core/Entities", v, v.Pascal+".cs")
		}),
		gen.TemplateArtifact(gen.KindRepository, templates, "repository_interface.cs.tmpl", func(v *gen.TableView) string {
			return layer("src/Core/Interfaces", v, "I"+v.Pascal+"Repository.cs")
		}),
		gen.TemplateArtifact(gen.KindRepositoryImpl, templates, "repository_dapper.cs.tmpl", func(v *gen.TableView) string {
			return layer("src/Infrastructure/Data", v, v.Pascal+"Repository.cs")
		}),
		gen.TemplateArtifact(gen.KindController, templates, "controller.cs.tmpl", func(v *gen.TableView) string {
			return layer("src/WebApi/Controllers", v, v.Pascal+"Controller.cs")
		}),
		gen.TemplateArtifact(gen.KindService, templates, "service_interface.cs.tmpl", func(v *gen.TableView) string {
			return layer("src/Application/Interfaces", v, "I"+v.Pascal+"Service.cs")
		}),
		gen.TemplateArtifact(gen.KindServiceImpl, templates, "service.cs.tmpl", func(v *gen.TableView) string {
			return layer("src/Application/Services", v, v.Pascal+"Service.cs")
		}),
		gen.TemplateArtifact(gen.KindCreatePayload, templates, "create_dto.cs.tmpl", func(v *gen.TableView) string {
			return layer("src/Application/DTOs", v, v.Pascal, "Create"+v.Pascal+"Dto.cs")
		}),
		gen.TemplateArtifact(gen.KindUpdatePayload, templates, "update_dto.cs.tmpl", func(v *gen.TableView) string {
			return layer("src/Application/DTOs", v, v.Pascal, "Update"+v.Pascal+"Dto.cs")
		}),
		gen.TemplateArtifact(gen.KindValidator, templates, "dto_validator.cs.tmpl", func(v *gen.TableView) string {
			return layer("src/Application/Validators", v, v.Pascal, v.Pascal+"DtoValidator.cs")
		}),
	}
}

// SchemaArtifacts implements gen.Strategy.
func (*Strategy) SchemaArtifacts() []gen.SchemaArtifact {
	tmpl := func(path, name string) gen.SchemaArtifact {
		return gen.TemplateSchemaArtifact(gen.StaticPath(path), templates, name)
	}
	return []gen.SchemaArtifact{
		tmpl("src/WebApi/Program.cs", "program.cs.tmpl"),
		tmpl("src/WebApi/appsettings.json", "appsettings.json.tmpl"),
		gen.Static("src/WebApi/appsettings.Development.json", appSettingsDevelopment),
		tmpl("src/Core/Core.csproj", "core.csproj.tmpl"),
		tmpl("src/Application/Application.csproj", "application.csproj.tmpl"),
		tmpl("src/Infrastructure/Infrastructure.csproj", "infrastructure.csproj.tmpl"),
		tmpl("src/WebApi/WebApi.csproj", "webapi.csproj.tmpl"),
		{
			Path:   func(p *gen.Project) string { return p.Name + ".sln" },
			Render: renderSolution,
		},
		tmpl("src/Application/Extensions/ServiceCollectionExtensions.cs", "application_di.cs.tmpl"),
		tmpl("src/Infrastructure/Extensions/ServiceCollectionExtensions.cs", "infrastructure_di.cs.tmpl"),
		gen.Static("src/Application/README.md", "# Application Layer\n\nUse cases, services, DTOs and validators live here.\n"),
		gen.Static("tests/UnitTests/README.md", "# Unit Tests\n\nPlace your unit tests here.\n"),
		gen.Static("tests/IntegrationTests/README.md", "# Integration Tests\n\nPlace your integration tests here.\n"),
		gen.Static(".gitignore", gitignore),
		tmpl("README.md", "readme.md.tmpl"),
	}
}

const appSettingsDevelopment = `{
  "Logging": {
    "LogLevel": {
      "Default": "Debug",
      "Microsoft.AspNetCore": "Debug"
    }
  }
}
`

// csharpProjectType is the Visual Studio project type of SDK-style C#
// projects.
const csharpProjectType = "9A19103F-16F7-4668-BE54-9A1E7A4F7556"

type solutionProject struct {
	Name string
	Path string
	GUID string
}

// renderSolution renders the .sln file. Project GUIDs are name-based, so
// the same project name always yields the same solution.
func renderSolution(p *gen.Project) (string, error) {
	data := struct {
		TypeGUID string
		Projects []solutionProject
	}{TypeGUID: csharpProjectType}
	for _, name := range []string{"Core", "Application", "Infrastructure", "WebApi"} {
		data.Projects = append(data.Projects, solutionProject{
			Name: name,
			Path: `src\` + name + `\` + name + ".csproj",
			GUID: ProjectGUID(p.Name, name),
		})
	}
	return gen.Execute(templates, "solution.sln.tmpl", data)
}

// ProjectGUID returns the upper-case UUIDv5 of a project within a solution.
func ProjectGUID(solution, project string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("archgen:"+solution+"/"+project))
	return strings.ToUpper(id.String())
}

// ConnectionString implements gen.Strategy. URL and path descriptors are
// rewritten into the ADO.NET provider's key-value form; key-value input is
// kept as written.
func (*Strategy) ConnectionString(raw string) string {
	d, err := dsn.Parse(raw)
	if err != nil || d.Form == dsn.FormKeyValue {
		return raw
	}
	switch d.Dialect {
	case dialect.SQLite:
		return dsn.KeyValue([2]string{"Data Source", d.Database})
	case dialect.MySQL:
		return dsn.KeyValue(append([][2]string{
			{"Server", d.Host},
			{"Port", d.PortOrDefault()},
			{"Database", d.Database},
			{"Uid", d.User},
			{"Pwd", d.Password},
		}, adoParams(d)...)...)
	default:
		return dsn.KeyValue(append([][2]string{
			{"host", d.Host},
			{"port", d.PortOrDefault()},
			{"database", d.Database},
			{"username", d.User},
			{"password", d.Password},
		}, adoParams(d)...)...)
	}
}

// adoKeyword is the ADO.NET keyword of a URL query parameter, with the
// provider spelling of its known values.
type adoKeyword struct {
	name   string
	values map[string]string
}

var adoKeywords = map[string]map[string]adoKeyword{
	dialect.Postgres: {
		"sslmode": {"SSL Mode", map[string]string{
			"disable":     "Disable",
			"allow":       "Allow",
			"prefer":      "Prefer",
			"require":     "Require",
			"verify-ca":   "VerifyCA",
			"verify-full": "VerifyFull",
		}},
		"connect_timeout":  {name: "Timeout"},
		"application_name": {name: "Application Name"},
		"search_path":      {name: "Search Path"},
	},
	dialect.MySQL: {
		"tls": {"SslMode", map[string]string{
			"true":        "Required",
			"skip-verify": "Required",
			"preferred":   "Preferred",
			"false":       "None",
		}},
		"charset": {name: "CharSet"},
	},
}

// adoParams returns the query parameters of d as ADO.NET pairs in
// parameter order. Unknown parameters are kept as written, so the provider
// reports them at startup.
func adoParams(d *dsn.DSN) [][2]string {
	var pairs [][2]string
	for _, k := range d.ParamKeys() {
		key, v := k, d.Params[k]
		if kw, ok := adoKeywords[d.Dialect][k]; ok {
			key = kw.name
			v = cmp.Or(kw.values[strings.ToLower(v)], v)
		}
		pairs = append(pairs, [2]string{key, v})
	}
	return pairs
}

// typeMapper maps columns to C# types. Column types are the provider store
// types as found in the database, so precision and length are kept.
type typeMapper struct {
	*gen.TypeTable
}

// ColumnType implements gen.TypeMapper.
func (m *typeMapper) ColumnType(sourceType string) string {
	if t := strings.Join(strings.Fields(strings.ToLower(sourceType)), " "); t != "" {
		return t
	}
	return m.ColumnFallback
}

var csharpTypes = &gen.TypeTable{
	Types: map[string]string{
		postgres.TypeSmallInt:         "int",
		postgres.TypeInt2:             "int",
		postgres.TypeInteger:          "int",
		postgres.TypeInt:              "int",
		postgres.TypeInt4:             "int",
		postgres.TypeSerial:           "int",
		postgres.TypeSmallSerial:      "int",
		postgres.TypeBigInt:           "long",
		postgres.TypeInt8:             "long",
		postgres.TypeBigSerial:        "long",
		"serial8":                     "long",
		postgres.TypeUUID:             "Guid",
		postgres.TypeText:             "string",
		postgres.TypeVarChar:          "string",
		postgres.TypeCharVar:          "string",
		postgres.TypeChar:             "string",
		postgres.TypeCharacter:        "string",
		"citext":                      "string",
		postgres.TypeBoolean:          "bool",
		postgres.TypeBool:             "bool",
		postgres.TypeDate:             "DateTime",
		"timestamp":                   "DateTime",
		"timestamp without time zone": "DateTime",
		"timestamp with time zone":    "DateTime",
		"timestamptz":                 "DateTime",
		postgres.TypeNumeric:          "decimal",
		postgres.TypeDecimal:          "decimal",
		"money":                       "decimal",
		"double precision":            "double",
		"float8":                      "double",
		"real":                        "double",
		"float4":                      "float",
		postgres.TypeBytea:            "byte[]",
		postgres.TypeJSON:             "string",
		postgres.TypeJSONB:            "string",
		"time":                        "TimeSpan",
		"time without time zone":      "TimeSpan",
		"time with time zone":         "TimeSpan",
		"interval":                    "TimeSpan",

		// MySQL and SQLite spellings.
		"tinyint":    "int",
		"mediumint":  "int",
		"year":       "int",
		"double":     "double",
		"float":      "float",
		"datetime":   "DateTime",
		"tinytext":   "string",
		"mediumtext": "string",
		"longtext":   "string",
		"enum":       "string",
		"set":        "string",
		"blob":       "byte[]",
		"tinyblob":   "byte[]",
		"mediumblob": "byte[]",
		"longblob":   "byte[]",
		"binary":     "byte[]",
		"varbinary":  "byte[]",
	},
	Fallback:       "string",
	ColumnFallback: "text",
	Nullable:       func(t string) string { return t + "?" },
	Exempted:       []string{"string", "byte[]"},
}
