// Package golang generates a Go module laid out by feature: one package per
// table under internal/, with database/sql repositories, net/http handlers
// and a GraphQL schema for gqlgen.
//
// Per-table files are built with jennifer; the server entry point is a
// template formatted by goimports.
package golang

import (
	"bytes"
	"embed"
	"path"

	"github.com/99designs/gqlgen/codegen/templates"
	"github.com/dave/jennifer/jen"

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

	tmpl = gen.MustParseTemplates(templateDir, "templates/*.tmpl")
)

// Strategy is the golang gen.Strategy.
type Strategy struct{}

var _ gen.Strategy = (*Strategy)(nil)

// New returns the golang strategy.
func New() *Strategy { return &Strategy{} }

// Target implements gen.Strategy.
func (*Strategy) Target() gen.Target { return gen.TargetGolang }

// TypeMapper implements gen.Strategy.
func (*Strategy) TypeMapper() gen.TypeMapper { return goTypes }

// GroupSegment implements gen.Strategy. Group directories are part of import
// paths, so they follow package naming ("Sales Ops" becomes "salesops").
func (*Strategy) GroupSegment(group string) string { return naming.Package(group) }

// Dir returns the directory of the table's package.
func Dir(v *gen.TableView) string {
	return path.Join(v.Nested("internal", "/"), v.Package)
}

// TableArtifacts implements gen.Strategy.
func (*Strategy) TableArtifacts() []gen.TableArtifact {
	return []gen.TableArtifact{
		artifact(gen.KindEntity, "entity.go", genEntity),
		artifact(gen.KindRepository, "repository.go", genRepository),
		artifact(gen.KindRepositoryImpl, "repository_sql.go", genSQLRepository),
		artifact(gen.KindController, "handler.go", genHandler),
		artifact(gen.KindService, "service.go", genService),
		artifact(gen.KindServiceImpl, "service_impl.go", genServiceImpl),
		artifact(gen.KindCreatePayload, "create_request.go", genCreateRequest),
		artifact(gen.KindUpdatePayload, "update_request.go", genUpdateRequest),
		artifact(gen.KindValidator, "validator.go", genValidator),
	}
}

func artifact(kind gen.ArtifactKind, name string, fn func(*gen.TableView) *jen.File) gen.TableArtifact {
	return gen.TableArtifact{
		Kind:   kind,
		Path:   func(v *gen.TableView) string { return path.Join(Dir(v), name) },
		Render: func(v *gen.TableView) (string, error) { return render(fn(v)) },
	}
}

func render(f *jen.File) (string, error) {
	var b bytes.Buffer
	if err := f.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SchemaArtifacts implements gen.Strategy.
func (*Strategy) SchemaArtifacts() []gen.SchemaArtifact {
	return []gen.SchemaArtifact{
		{Path: gen.StaticPath("cmd/server/main.go"), Render: renderMain},
		{Path: gen.StaticPath("config/config.yaml"), Render: renderConfig},
		gen.Static("config/config.development.yaml", developmentConfig),
		{Path: gen.StaticPath("internal/platform/config/config.go"), Render: jenProject(genConfigPackage)},
		{Path: gen.StaticPath("internal/platform/database/database.go"), Render: jenProject(genDatabasePackage)},
		{Path: gen.StaticPath("internal/app/container.go"), Render: jenProject(genContainer)},
		{Path: gen.StaticPath("go.mod"), Render: renderGoMod},
		{Path: gen.StaticPath("go.work"), Render: renderGoWork},
		{Path: gen.StaticPath("api/schema.graphqls"), Render: renderSchema},
		{Path: gen.StaticPath("gqlgen.yml"), Render: renderGQLGenConfig},
		gen.Static("api/README.md", apiReadme),
		gen.Static(".gitignore", gitignore),
		gen.TemplateSchemaArtifact(gen.StaticPath("README.md"), tmpl, "readme.md.tmpl"),
	}
}

func jenProject(fn func(*gen.Project) *jen.File) func(*gen.Project) (string, error) {
	return func(p *gen.Project) (string, error) { return render(fn(p)) }
}

// ConnectionString implements gen.Strategy. Postgres descriptors become URLs
// for lib/pq, MySQL descriptors become go-sql-driver DSNs with parseTime
// enabled and SQLite descriptors become file paths.
func (*Strategy) ConnectionString(raw string) string {
	d, err := dsn.Parse(raw)
	if err != nil {
		return raw
	}
	switch d.Dialect {
	case dialect.SQLite:
		return d.SQLitePath()
	case dialect.MySQL:
		cfg := d.MySQL()
		cfg.ParseTime = true
		return cfg.FormatDSN()
	default:
		if d.Form == dsn.FormURL {
			return raw
		}
		return d.URL("postgres")
	}
}

// TypeName returns the Go type name of the table's entity.
func TypeName(v *gen.TableView) string { return templates.ToGo(v.Snake) }

// FieldName returns the Go field name of a column: user_id becomes UserID.
func FieldName(c *gen.ColumnView) string { return templates.ToGo(c.Name) }

// ParamName returns the Go parameter name of a column: user_id becomes
// userID. Keywords are suffixed ("type" becomes "typeArg").
func ParamName(c *gen.ColumnView) string { return templates.ToGoPrivate(c.Name) }

// qualified returns the table name as written in queries.
func qualified(v *gen.TableView) string {
	if v.Schema == "" {
		return v.Name
	}
	return v.Schema + "." + v.Name
}

// importPath returns the import path of the table's package.
func importPath(p *gen.Project, v *gen.TableView) string {
	return p.Module + "/" + Dir(v)
}

const apiReadme = `# API

schema.graphqls describes the entities of this service. Run

    go tool gqlgen generate

to generate the GraphQL executor under internal/graph. Models are bound to
the entity types of the feature packages through gqlgen.yml.
`

const developmentConfig = `log:
    level: debug
`
