package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/archgen/compiler/gen"
	"github.com/syssam/archgen/naming"
)

// pathParams returns the columns read from request paths: the primary key
// and the foreign keys, without duplicates.
func pathParams(v *gen.TableView) []*gen.ColumnView {
	params := []*gen.ColumnView{v.PrimaryKey}
	for _, c := range v.ForeignKeys {
		if c != v.PrimaryKey {
			params = append(params, c)
		}
	}
	return params
}

func parseName(c *gen.ColumnView) string { return "parse" + FieldName(c) }

// genParse generates the function converting a path value into the Go type
// of column c.
func genParse(f *jen.File, c *gen.ColumnView) {
	var (
		typ     = c.BaseType
		invalid = func(msg string) *jen.Statement {
			return jen.Op("&").Id("ValidationError").Values(jen.Dict{
				jen.Id("Field"):   jen.Lit(c.Snake),
				jen.Id("Message"): jen.Lit(msg),
			})
		}
	)
	f.Line()
	f.Func().Id(parseName(c)).Params(jen.Id("s").String()).Params(goType(typ), jen.Error()).BlockFunc(func(group *jen.Group) {
		switch {
		case typ == "string":
			group.Return(jen.Id("s"), jen.Nil())
		case isInteger(typ):
			group.List(jen.Id("n"), jen.Err()).Op(":=").Qual("strconv", "ParseInt").Call(jen.Id("s"), jen.Lit(10), jen.Lit(bitSize(typ)))
			group.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Lit(0), invalid("must be an integer")))
			group.Return(jen.Id(typ).Call(jen.Id("n")), jen.Nil())
		case typ == "time.Time":
			group.List(jen.Id("t"), jen.Err()).Op(":=").Qual("time", "Parse").Call(jen.Qual("time", "RFC3339"), jen.Id("s"))
			group.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Qual("time", "Time").Values(), invalid("must be an RFC 3339 time")))
			group.Return(jen.Id("t"), jen.Nil())
		default:
			group.Var().Id("x").Add(goType(typ))
			group.If(
				jen.List(jen.Id("_"), jen.Err()).Op(":=").Qual("fmt", "Sscan").Call(jen.Id("s"), jen.Op("&").Id("x")),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Id("x"), invalid("invalid value")))
			group.Return(jen.Id("x"), jen.Nil())
		}
	})
}

// readParam reads and parses a path parameter into a variable named after
// the column, answering 400 on failure.
func readParam(group *jen.Group, c *gen.ColumnView) {
	group.List(jen.Id(ParamName(c)), jen.Err()).Op(":=").Id(parseName(c)).Call(
		jen.Id("r").Dot("PathValue").Call(jen.Lit(ParamName(c))),
	)
	group.Add(failOn())
}

// failOn returns `if err != nil { writeError(w, err); return }`.
func failOn() *jen.Statement {
	return jen.If(jen.Err().Op("!=").Nil()).Block(
		jen.Id("writeError").Call(jen.Id("w"), jen.Err()),
		jen.Return(),
	)
}

func httpStatus(name string) *jen.Statement { return jen.Qual("net/http", name) }

// genHandler generates handler.go: the net/http routes of the table.
func genHandler(v *gen.TableView) *jen.File {
	var (
		f      = jen.NewFile(v.Package)
		pk     = v.PrimaryKey
		base   = "/api/" + v.Route
		item   = base + "/{" + ParamName(pk) + "}"
		recv   = jen.Id("h").Op("*").Id("Handler")
		params = func() *jen.Statement {
			return jen.Params(jen.Id("w").Qual("net/http", "ResponseWriter"), jen.Id("r").Op("*").Qual("net/http", "Request"))
		}
		ctx = jen.Id("r").Dot("Context").Call()
	)

	f.Commentf("Handler serves %s over HTTP. It calls Service, which reads", TypeName(v))
	f.Comment("and writes rows through Repository.")
	f.Type().Id("Handler").Struct(jen.Id("service").Id("Service"))

	f.Line()
	f.Comment("NewHandler returns a handler calling service.")
	f.Func().Id("NewHandler").Params(jen.Id("service").Id("Service")).Op("*").Id("Handler").Block(
		jen.Return(jen.Op("&").Id("Handler").Values(jen.Dict{jen.Id("service"): jen.Id("service")})),
	)

	f.Line()
	f.Comment("Register adds the routes of the handler to mux.")
	f.Func().Params(recv.Clone()).Id("Register").Params(jen.Id("mux").Op("*").Qual("net/http", "ServeMux")).BlockFunc(func(group *jen.Group) {
		route := func(pattern, method string) {
			group.Id("mux").Dot("HandleFunc").Call(jen.Lit(pattern), jen.Id("h").Dot(method))
		}
		route("GET "+base, "list")
		route("GET "+item, "get")
		route("POST "+base, "create")
		route("PUT "+item, "update")
		route("DELETE "+item, "delete")
		for _, c := range v.ForeignKeys {
			route("GET "+base+"/by-"+naming.Kebab(c.Name)+"/{"+ParamName(c)+"}", "listBy"+FieldName(c))
		}
	})

	f.Line()
	f.Func().Params(recv.Clone()).Id("list").Add(params()).Block(
		jen.List(jen.Id("rows"), jen.Err()).Op(":=").Id("h").Dot("service").Dot("List").Call(ctx.Clone()),
		failOn(),
		jen.Id("writeJSON").Call(jen.Id("w"), httpStatus("StatusOK"), jen.Id("rows")),
	)

	f.Line()
	f.Func().Params(recv.Clone()).Id("get").Add(params()).BlockFunc(func(group *jen.Group) {
		readParam(group, pk)
		group.List(jen.Id("e"), jen.Err()).Op(":=").Id("h").Dot("service").Dot("Get").Call(ctx.Clone(), jen.Id(ParamName(pk)))
		group.Add(failOn())
		group.Id("writeJSON").Call(jen.Id("w"), httpStatus("StatusOK"), jen.Id("e"))
	})

	decode := func(group *jen.Group, typ string) {
		group.Var().Id("req").Id(typ)
		group.If(
			jen.Err().Op(":=").Qual("encoding/json", "NewDecoder").Call(jen.Id("r").Dot("Body")).Dot("Decode").Call(jen.Op("&").Id("req")),
			jen.Err().Op("!=").Nil(),
		).Block(
			jen.Id("writeError").Call(jen.Id("w"), jen.Op("&").Id("ValidationError").Values(jen.Dict{
				jen.Id("Field"):   jen.Lit("body"),
				jen.Id("Message"): jen.Err().Dot("Error").Call(),
			})),
			jen.Return(),
		)
	}

	f.Line()
	f.Func().Params(recv.Clone()).Id("create").Add(params()).BlockFunc(func(group *jen.Group) {
		decode(group, "CreateRequest")
		group.List(jen.Id("e"), jen.Err()).Op(":=").Id("h").Dot("service").Dot("Create").Call(ctx.Clone(), jen.Id("req"))
		group.Add(failOn())
		group.Id("writeJSON").Call(jen.Id("w"), httpStatus("StatusCreated"), jen.Id("e"))
	})

	f.Line()
	f.Func().Params(recv.Clone()).Id("update").Add(params()).BlockFunc(func(group *jen.Group) {
		readParam(group, pk)
		decode(group, "UpdateRequest")
		group.List(jen.Id("e"), jen.Err()).Op(":=").Id("h").Dot("service").Dot("Update").Call(ctx.Clone(), jen.Id(ParamName(pk)), jen.Id("req"))
		group.Add(failOn())
		group.Id("writeJSON").Call(jen.Id("w"), httpStatus("StatusOK"), jen.Id("e"))
	})

	f.Line()
	f.Func().Params(recv.Clone()).Id("delete").Add(params()).BlockFunc(func(group *jen.Group) {
		readParam(group, pk)
		group.If(
			jen.Err().Op(":=").Id("h").Dot("service").Dot("Delete").Call(ctx.Clone(), jen.Id(ParamName(pk))),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Id("writeError").Call(jen.Id("w"), jen.Err()), jen.Return())
		group.Id("w").Dot("WriteHeader").Call(httpStatus("StatusNoContent"))
	})

	for _, c := range v.ForeignKeys {
		f.Line()
		f.Func().Params(recv.Clone()).Id("listBy"+FieldName(c)).Add(params()).BlockFunc(func(group *jen.Group) {
			readParam(group, c)
			group.List(jen.Id("rows"), jen.Err()).Op(":=").Id("h").Dot("service").Dot(listByName(c)).Call(ctx.Clone(), jen.Id(ParamName(c)))
			group.Add(failOn())
			group.Id("writeJSON").Call(jen.Id("w"), httpStatus("StatusOK"), jen.Id("rows"))
		})
	}

	for _, c := range pathParams(v) {
		genParse(f, c)
	}

	f.Line()
	f.Func().Id("writeJSON").Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"), jen.Id("status").Int(), jen.Id("v").Any(),
	).Block(
		jen.Id("w").Dot("Header").Call().Dot("Set").Call(jen.Lit("Content-Type"), jen.Lit("application/json")),
		jen.Id("w").Dot("WriteHeader").Call(jen.Id("status")),
		jen.Id("_").Op("=").Qual("encoding/json", "NewEncoder").Call(jen.Id("w")).Dot("Encode").Call(jen.Id("v")),
	)

	f.Line()
	f.Comment("writeError answers 400 for validation errors, 404 for missing rows")
	f.Comment("and 500 otherwise.")
	f.Func().Id("writeError").Params(jen.Id("w").Qual("net/http", "ResponseWriter"), jen.Err().Error()).Block(
		jen.Id("status").Op(":=").Add(httpStatus("StatusInternalServerError")),
		jen.Var().Id("verr").Op("*").Id("ValidationError"),
		jen.Switch().Block(
			jen.Case(jen.Qual("errors", "As").Call(jen.Err(), jen.Op("&").Id("verr"))).Block(
				jen.Id("status").Op("=").Add(httpStatus("StatusBadRequest")),
			),
			jen.Case(jen.Qual("errors", "Is").Call(jen.Err(), jen.Id("ErrNotFound"))).Block(
				jen.Id("status").Op("=").Add(httpStatus("StatusNotFound")),
			),
		),
		jen.Id("writeJSON").Call(jen.Id("w"), jen.Id("status"), jen.Map(jen.String()).String().Values(jen.Dict{
			jen.Lit("error"): jen.Err().Dot("Error").Call(),
		})),
	)
	return f
}
