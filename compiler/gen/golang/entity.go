package golang

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/archgen/compiler/gen"
)

// genEntity generates entity.go: the row struct of the table.
func genEntity(v *gen.TableView) *jen.File {
	f := jen.NewFile(v.Package)
	f.PackageComment(fmt.Sprintf("Package %s serves the %s table.", v.Package, qualified(v)))

	name := TypeName(v)
	f.Commentf("%s is a row of %s.", name, qualified(v))
	f.Type().Id(name).StructFunc(func(group *jen.Group) {
		for _, c := range v.Members() {
			s := group.Id(FieldName(c)).Add(goType(c.Type)).Tag(entityTags(c))
			if c.Synthesized {
				s.Comment("surrogate key, not declared by the table")
			}
		}
	})

	f.Line()
	f.Commentf("TableName returns the qualified name of the table.")
	f.Func().Params(jen.Id(name)).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(qualified(v))),
	)
	return f
}

func entityTags(c *gen.ColumnView) map[string]string {
	j := c.Snake
	if c.Nullable {
		j += ",omitempty"
	}
	return map[string]string{"db": c.Name, "json": j}
}

// ctxParam is the context parameter of blocking methods.
func ctxParam() *jen.Statement {
	return jen.Id("ctx").Qual("context", "Context")
}

// entityPtr is *Entity.
func entityPtr(v *gen.TableView) *jen.Statement {
	return jen.Op("*").Id(TypeName(v))
}

// entitySlice is []*Entity.
func entitySlice(v *gen.TableView) *jen.Statement {
	return jen.Index().Op("*").Id(TypeName(v))
}

// keyParam is the primary key parameter.
func keyParam(v *gen.TableView) *jen.Statement {
	return jen.Id(ParamName(v.PrimaryKey)).Add(goType(v.PrimaryKey.BaseType))
}

// listByName is the method listing rows by a foreign key column.
func listByName(c *gen.ColumnView) string { return "ListBy" + FieldName(c) }

// genRepository generates repository.go: the persistence contract.
func genRepository(v *gen.TableView) *jen.File {
	f := jen.NewFile(v.Package)

	f.Comment("ErrNotFound is returned when no row matches the key.")
	f.Var().Id("ErrNotFound").Op("=").Qual("errors", "New").Call(jen.Lit(v.Package + ": not found"))

	f.Line()
	f.Commentf("Repository persists %s rows.", TypeName(v))
	f.Type().Id("Repository").InterfaceFunc(func(group *jen.Group) {
		group.Id("List").Params(ctxParam()).Params(entitySlice(v), jen.Error())
		group.Id("Get").Params(ctxParam(), keyParam(v)).Params(entityPtr(v), jen.Error())
		group.Id("Create").Params(ctxParam(), jen.Id("e").Add(entityPtr(v))).Params(entityPtr(v), jen.Error())
		group.Id("Update").Params(ctxParam(), jen.Id("e").Add(entityPtr(v))).Params(entityPtr(v), jen.Error())
		group.Id("Delete").Params(ctxParam(), keyParam(v)).Error()
		for _, c := range v.ForeignKeys {
			group.Id(listByName(c)).Params(ctxParam(), jen.Id(ParamName(c)).Add(goType(c.BaseType))).
				Params(entitySlice(v), jen.Error())
		}
	})
	return f
}
