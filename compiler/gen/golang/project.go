package golang

import (
	"fmt"

	"github.com/dave/jennifer/jen"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/tools/imports"
	"gopkg.in/yaml.v3"

	"github.com/syssam/archgen/compiler/gen"
	"github.com/syssam/archgen/dialect"
)

// goVersion is the language version of generated modules.
const goVersion = "1.24"

// gqlgenModule is the GraphQL code generator, run with "go tool gqlgen".
var gqlgenModule = module.Version{Path: "github.com/99designs/gqlgen", Version: "v0.17.86"}

// driver is a database/sql driver of generated projects.
type driver struct {
	Name   string
	Module module.Version
}

var drivers = map[string]driver{
	dialect.Postgres: {Name: "postgres", Module: module.Version{Path: "github.com/lib/pq", Version: "v1.12.3"}},
	dialect.MySQL:    {Name: "mysql", Module: module.Version{Path: "github.com/go-sql-driver/mysql", Version: "v1.9.3"}},
	dialect.SQLite:   {Name: "sqlite", Module: module.Version{Path: "modernc.org/sqlite", Version: "v1.37.1"}},
}

// driverOf returns the driver of a dialect. Unknown dialects use Postgres.
func driverOf(d string) driver {
	if drv, ok := drivers[d]; ok {
		return drv
	}
	return drivers[dialect.Postgres]
}

// renderGoMod renders go.mod with the driver, yaml and the gqlgen tool.
func renderGoMod(p *gen.Project) (string, error) {
	f := &modfile.File{}
	if err := f.AddModuleStmt(p.Module); err != nil {
		return "", err
	}
	if err := f.AddGoStmt(goVersion); err != nil {
		return "", err
	}
	for _, m := range []module.Version{
		gqlgenModule,
		driverOf(p.Dialect).Module,
		{Path: "gopkg.in/yaml.v3", Version: "v3.0.1"},
	} {
		f.AddNewRequire(m.Path, m.Version, false)
	}
	if err := f.AddTool(gqlgenModule.Path); err != nil {
		return "", err
	}
	f.Cleanup()
	return string(modfile.Format(f.Syntax)), nil
}

// renderGoWork renders a go.work using the module directory.
func renderGoWork(p *gen.Project) (string, error) {
	w := &modfile.WorkFile{Syntax: new(modfile.FileSyntax)}
	if err := w.AddGoStmt(goVersion); err != nil {
		return "", err
	}
	if err := w.AddUse(".", p.Module); err != nil {
		return "", err
	}
	w.Cleanup()
	return string(modfile.Format(w.Syntax)), nil
}

// renderMain renders cmd/server/main.go from its template and formats it
// like goimports.
func renderMain(p *gen.Project) (string, error) {
	src, err := gen.Execute(tmpl, "main.go.tmpl", p)
	if err != nil {
		return "", err
	}
	out, err := imports.Process("main.go", []byte(src), nil)
	if err != nil {
		return "", fmt.Errorf("format main.go: %w", err)
	}
	return string(out), nil
}

type appConfig struct {
	Server   serverConfig   `yaml:"server"`
	Database databaseConfig `yaml:"database"`
	Log      logConfig      `yaml:"log"`
}

type serverConfig struct {
	Addr string `yaml:"addr"`
}

type databaseConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type logConfig struct {
	Level string `yaml:"level"`
}

// renderConfig renders config/config.yaml.
func renderConfig(p *gen.Project) (string, error) {
	b, err := yaml.Marshal(appConfig{
		Server: serverConfig{Addr: ":8080"},
		Database: databaseConfig{
			Driver:       driverOf(p.Dialect).Name,
			DSN:          p.Connection,
			MaxOpenConns: 10,
		},
		Log: logConfig{Level: "info"},
	})
	return string(b), err
}

// genConfigPackage generates internal/platform/config, which loads the
// files of renderConfig.
func genConfigPackage(*gen.Project) *jen.File {
	f := jen.NewFile("config")
	f.PackageComment("Package config loads the configuration of the application.")

	yamlTag := func(name string) map[string]string { return map[string]string{"yaml": name} }
	f.Comment("Config is the configuration of the application.")
	f.Type().Id("Config").Struct(
		jen.Id("Server").Id("Server").Tag(yamlTag("server")),
		jen.Id("Database").Id("Database").Tag(yamlTag("database")),
		jen.Id("Log").Id("Log").Tag(yamlTag("log")),
	)

	f.Line()
	f.Type().Defs(
		jen.Id("Server").Struct(jen.Id("Addr").String().Tag(yamlTag("addr"))),
		jen.Id("Database").Struct(
			jen.Id("Driver").String().Tag(yamlTag("driver")),
			jen.Id("DSN").String().Tag(yamlTag("dsn")),
			jen.Id("MaxOpenConns").Int().Tag(yamlTag("max_open_conns")),
		),
		jen.Id("Log").Struct(jen.Id("Level").String().Tag(yamlTag("level"))),
	)

	f.Line()
	f.Comment("Load reads config.yaml from dir, then config.<env>.yaml when env is set")
	f.Comment("and the file exists. DATABASE_URL overrides the configured DSN.")
	f.Func().Id("Load").Params(jen.List(jen.Id("dir"), jen.Id("env")).String()).Params(jen.Op("*").Id("Config"), jen.Error()).Block(
		jen.Id("cfg").Op(":=").Op("&").Id("Config").Values(),
		jen.If(
			jen.Err().Op(":=").Id("load").Call(jen.Qual("path/filepath", "Join").Call(jen.Id("dir"), jen.Lit("config.yaml")), jen.Id("cfg")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.If(jen.Id("env").Op("!=").Lit("")).Block(
			jen.Id("name").Op(":=").Qual("path/filepath", "Join").Call(jen.Id("dir"), jen.Lit("config.").Op("+").Id("env").Op("+").Lit(".yaml")),
			jen.If(
				jen.Err().Op(":=").Id("load").Call(jen.Id("name"), jen.Id("cfg")),
				jen.Err().Op("!=").Nil().Op("&&").Op("!").Qual("errors", "Is").Call(jen.Err(), jen.Qual("io/fs", "ErrNotExist")),
			).Block(jen.Return(jen.Nil(), jen.Err())),
		),
		jen.If(
			jen.Id("dsn").Op(":=").Qual("os", "Getenv").Call(jen.Lit("DATABASE_URL")),
			jen.Id("dsn").Op("!=").Lit(""),
		).Block(jen.Id("cfg").Dot("Database").Dot("DSN").Op("=").Id("dsn")),
		jen.Return(jen.Id("cfg"), jen.Nil()),
	)

	f.Line()
	f.Func().Id("load").Params(jen.Id("name").String(), jen.Id("cfg").Op("*").Id("Config")).Error().Block(
		jen.List(jen.Id("b"), jen.Err()).Op(":=").Qual("os", "ReadFile").Call(jen.Id("name")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
		jen.If(
			jen.Err().Op(":=").Qual("gopkg.in/yaml.v3", "Unmarshal").Call(jen.Id("b"), jen.Id("cfg")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit("config: %s: %w"), jen.Id("name"), jen.Err()))),
		jen.Return(jen.Nil()),
	)
	return f
}

// genDatabasePackage generates internal/platform/database, which opens the
// database with the driver of the source dialect.
func genDatabasePackage(p *gen.Project) *jen.File {
	drv := driverOf(p.Dialect)
	f := jen.NewFile("database")
	f.PackageComment("Package database opens the database of the application.")
	f.Anon(drv.Module.Path)

	f.Comment("Driver is the default database/sql driver name.")
	f.Const().Id("Driver").Op("=").Lit(drv.Name)

	f.Line()
	f.Comment("Open opens the database and checks that it answers. An empty driver")
	f.Comment("selects Driver.")
	f.Func().Id("Open").Params(
		ctxParam(), jen.List(jen.Id("driver"), jen.Id("dsn")).String(), jen.Id("maxOpenConns").Int(),
	).Params(jen.Op("*").Qual("database/sql", "DB"), jen.Error()).Block(
		jen.If(jen.Id("driver").Op("==").Lit("")).Block(jen.Id("driver").Op("=").Id("Driver")),
		jen.List(jen.Id("db"), jen.Err()).Op(":=").Qual("database/sql", "Open").Call(jen.Id("driver"), jen.Id("dsn")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.If(jen.Id("maxOpenConns").Op(">").Lit(0)).Block(
			jen.Id("db").Dot("SetMaxOpenConns").Call(jen.Id("maxOpenConns")),
		),
		jen.Id("db").Dot("SetConnMaxIdleTime").Call(jen.Lit(5).Op("*").Qual("time", "Minute")),
		jen.List(jen.Id("ctx"), jen.Id("cancel")).Op(":=").Qual("context", "WithTimeout").Call(
			jen.Id("ctx"), jen.Lit(5).Op("*").Qual("time", "Second"),
		),
		jen.Defer().Id("cancel").Call(),
		jen.If(
			jen.Err().Op(":=").Id("db").Dot("PingContext").Call(jen.Id("ctx")),
			jen.Err().Op("!=").Nil(),
		).Block(
			jen.Id("db").Dot("Close").Call(),
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("database: ping: %w"), jen.Err())),
		),
		jen.Return(jen.Id("db"), jen.Nil()),
	)
	return f
}

// genContainer generates internal/app/container.go, which builds every
// feature's repository, validator, service and handler.
func genContainer(p *gen.Project) *jen.File {
	f := jen.NewFile("app")
	f.PackageComment("Package app wires the feature packages together.")

	f.Comment("Container holds the services of the application.")
	f.Type().Id("Container").StructFunc(func(group *jen.Group) {
		group.Id("DB").Op("*").Qual("database/sql", "DB")
		for _, v := range p.Tables {
			group.Id(TypeName(v)).Qual(importPath(p, v), "Service")
		}
	})

	f.Line()
	f.Comment("New builds the services on top of db.")
	f.Func().Id("New").Params(jen.Id("db").Op("*").Qual("database/sql", "DB")).Op("*").Id("Container").BlockFunc(func(group *jen.Group) {
		group.Id("c").Op(":=").Op("&").Id("Container").Values(jen.Dict{jen.Id("DB"): jen.Id("db")})
		for _, v := range p.Tables {
			pkg := importPath(p, v)
			group.Id("c").Dot(TypeName(v)).Op("=").Qual(pkg, "NewService").Call(
				jen.Qual(pkg, "NewSQLRepository").Call(jen.Id("db")),
				jen.Qual(pkg, "NewValidator").Call(),
			)
		}
		group.Return(jen.Id("c"))
	})

	f.Line()
	f.Comment("Register adds the routes of every feature to mux.")
	f.Func().Params(jen.Id("c").Op("*").Id("Container")).Id("Register").
		Params(jen.Id("mux").Op("*").Qual("net/http", "ServeMux")).BlockFunc(func(group *jen.Group) {
		for _, v := range p.Tables {
			group.Qual(importPath(p, v), "NewHandler").Call(jen.Id("c").Dot(TypeName(v))).Dot("Register").Call(jen.Id("mux"))
		}
	})
	return f
}
