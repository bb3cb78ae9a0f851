package golang

import (
	"bytes"
	"slices"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"gopkg.in/yaml.v3"

	"github.com/syssam/archgen/compiler/gen"
	"github.com/syssam/archgen/naming"
)

// renderSchema renders api/schema.graphqls: an object type per table with
// create and update inputs, and the Query and Mutation roots over them.
func renderSchema(p *gen.Project) (string, error) {
	var b bytes.Buffer
	formatter.NewFormatter(&b, formatter.WithIndent("  ")).FormatSchemaDocument(schemaDocument(p))
	return b.String(), nil
}

// fieldType returns the GraphQL type of a column. Keys are IDs.
func fieldType(c *gen.ColumnView, optional bool) *ast.Type {
	name := c.ColumnType
	if c.PrimaryKey {
		name = "ID"
	}
	if optional || c.Nullable {
		return ast.NamedType(name, nil)
	}
	return ast.NonNullNamedType(name, nil)
}

func fieldDefs(cols []*gen.ColumnView, optional bool) ast.FieldList {
	fields := make(ast.FieldList, 0, len(cols))
	for _, c := range cols {
		fields = append(fields, &ast.FieldDefinition{Name: c.Camel, Type: fieldType(c, optional)})
	}
	return fields
}

func arg(name string, t *ast.Type) *ast.ArgumentDefinition {
	return &ast.ArgumentDefinition{Name: name, Type: t}
}

// rootNames hands out root field names, falling back to the next candidate
// when two tables pluralize to the same name.
type rootNames map[string]bool

func (r rootNames) take(candidates ...string) string {
	for _, name := range candidates {
		if !r[name] {
			r[name] = true
			return name
		}
	}
	last := candidates[len(candidates)-1]
	for i := 2; ; i++ {
		if name := last + strconv.Itoa(i); !r[name] {
			r[name] = true
			return name
		}
	}
}

func schemaDocument(p *gen.Project) *ast.SchemaDocument {
	var (
		doc      = &ast.SchemaDocument{}
		scalars  []string
		objects  ast.DefinitionList
		names    = rootNames{}
		query    = &ast.Definition{Kind: ast.Object, Name: "Query"}
		mutation = &ast.Definition{Kind: ast.Object, Name: "Mutation"}
		id       = ast.NonNullNamedType("ID", nil)
	)
	for _, v := range p.Tables {
		name := TypeName(v)
		for _, c := range v.Members() {
			if !c.PrimaryKey && !builtinScalar(c.ColumnType) && !slices.Contains(scalars, c.ColumnType) {
				scalars = append(scalars, c.ColumnType)
			}
		}
		objects = append(objects,
			&ast.Definition{
				Kind:        ast.Object,
				Name:        name,
				Description: "A row of " + qualified(v) + ".",
				Fields:      fieldDefs(v.Members(), false),
			},
			&ast.Definition{Kind: ast.InputObject, Name: "Create" + name + "Input", Fields: fieldDefs(v.NonPrimaryColumns, false)},
			&ast.Definition{Kind: ast.InputObject, Name: "Update" + name + "Input", Fields: fieldDefs(v.NonPrimaryColumns, true)},
		)

		camel := naming.Camel(v.Snake)
		query.Fields = append(query.Fields,
			&ast.FieldDefinition{
				Name: names.take(naming.Camel(v.Plural), camel+"List"),
				Type: ast.NonNullListType(ast.NonNullNamedType(name, nil), nil),
			},
			&ast.FieldDefinition{
				Name:      names.take(naming.Camel(v.Singular), camel+"ByID"),
				Arguments: ast.ArgumentDefinitionList{arg("id", id)},
				Type:      ast.NamedType(name, nil),
			},
		)
		for _, c := range v.ForeignKeys {
			query.Fields = append(query.Fields, &ast.FieldDefinition{
				Name:      names.take(naming.Camel(v.Plural)+"By"+FieldName(c), camel+"By"+FieldName(c)),
				Arguments: ast.ArgumentDefinitionList{arg(c.Camel, ast.NonNullNamedType("ID", nil))},
				Type:      ast.NonNullListType(ast.NonNullNamedType(name, nil), nil),
			})
		}
		mutation.Fields = append(mutation.Fields,
			&ast.FieldDefinition{
				Name:      "create" + name,
				Arguments: ast.ArgumentDefinitionList{arg("input", ast.NonNullNamedType("Create"+name+"Input", nil))},
				Type:      ast.NonNullNamedType(name, nil),
			},
			&ast.FieldDefinition{
				Name: "update" + name,
				Arguments: ast.ArgumentDefinitionList{
					arg("id", id),
					arg("input", ast.NonNullNamedType("Update"+name+"Input", nil)),
				},
				Type: ast.NonNullNamedType(name, nil),
			},
			&ast.FieldDefinition{
				Name:      "delete" + name,
				Arguments: ast.ArgumentDefinitionList{arg("id", id)},
				Type:      ast.NonNullNamedType("Boolean", nil),
			},
		)
	}
	// A root type needs at least one field.
	if len(p.Tables) == 0 {
		query.Fields = append(query.Fields, &ast.FieldDefinition{Name: "health", Type: ast.NonNullNamedType("Boolean", nil)})
	}

	slices.Sort(scalars)
	for _, s := range scalars {
		doc.Definitions = append(doc.Definitions, &ast.Definition{Kind: ast.Scalar, Name: s})
	}
	doc.Definitions = append(doc.Definitions, objects...)
	doc.Definitions = append(doc.Definitions, query)
	if len(mutation.Fields) > 0 {
		doc.Definitions = append(doc.Definitions, mutation)
	}
	return doc
}

func builtinScalar(name string) bool {
	switch name {
	case "ID", "String", "Int", "Float", "Boolean":
		return true
	}
	return false
}

// gqlgenConfig is the subset of gqlgen.yml written for generated projects.
type gqlgenConfig struct {
	Schema   []string                `yaml:"schema"`
	Exec     packageConfig           `yaml:"exec"`
	Model    packageConfig           `yaml:"model"`
	Resolver resolverConfig          `yaml:"resolver"`
	Autobind []string                `yaml:"autobind,omitempty"`
	Models   map[string]typeMapEntry `yaml:"models"`
}

type packageConfig struct {
	Filename string `yaml:"filename"`
	Package  string `yaml:"package"`
}

type resolverConfig struct {
	Layout  string `yaml:"layout"`
	DirName string `yaml:"dir"`
	Package string `yaml:"package"`
}

type typeMapEntry struct {
	Model []string `yaml:"model"`
}

// renderGQLGenConfig renders gqlgen.yml, binding the object types of the
// schema to the entities of the feature packages.
func renderGQLGenConfig(p *gen.Project) (string, error) {
	cfg := gqlgenConfig{
		Schema:   []string{"api/*.graphqls"},
		Exec:     packageConfig{Filename: "internal/graph/generated.go", Package: "graph"},
		Model:    packageConfig{Filename: "internal/graph/model/models_gen.go", Package: "model"},
		Resolver: resolverConfig{Layout: "follow-schema", DirName: "internal/graph", Package: "graph"},
		Models: map[string]typeMapEntry{
			"ID": {Model: []string{
				"github.com/99designs/gqlgen/graphql.ID",
				"github.com/99designs/gqlgen/graphql.Int",
				"github.com/99designs/gqlgen/graphql.Int32",
				"github.com/99designs/gqlgen/graphql.Int64",
			}},
			"Int": {Model: []string{
				"github.com/99designs/gqlgen/graphql.Int",
				"github.com/99designs/gqlgen/graphql.Int32",
				"github.com/99designs/gqlgen/graphql.Int64",
			}},
		},
	}
	for _, v := range p.Tables {
		cfg.Autobind = append(cfg.Autobind, importPath(p, v))
	}
	b, err := yaml.Marshal(cfg)
	return string(b), err
}
