package golang

import (
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/archgen/compiler/gen"
)

// genService generates service.go: the application contract.
func genService(v *gen.TableView) *jen.File {
	f := jen.NewFile(v.Package)
	f.Commentf("Service is the application contract of %s.", TypeName(v))
	f.Type().Id("Service").InterfaceFunc(func(group *jen.Group) {
		group.Id("List").Params(ctxParam()).Params(entitySlice(v), jen.Error())
		group.Id("Get").Params(ctxParam(), keyParam(v)).Params(entityPtr(v), jen.Error())
		group.Id("Create").Params(ctxParam(), jen.Id("req").Id("CreateRequest")).Params(entityPtr(v), jen.Error())
		group.Id("Update").Params(ctxParam(), keyParam(v), jen.Id("req").Id("UpdateRequest")).Params(entityPtr(v), jen.Error())
		group.Id("Delete").Params(ctxParam(), keyParam(v)).Error()
		for _, c := range v.ForeignKeys {
			group.Id(listByName(c)).Params(ctxParam(), jen.Id(ParamName(c)).Add(goType(c.BaseType))).
				Params(entitySlice(v), jen.Error())
		}
	})
	return f
}

// genServiceImpl generates service_impl.go: the Service validating requests
// before they reach the Repository.
func genServiceImpl(v *gen.TableView) *jen.File {
	var (
		f    = jen.NewFile(v.Package)
		pk   = jen.Id(ParamName(v.PrimaryKey))
		recv = jen.Id("s").Op("*").Id("DefaultService")
		repo = jen.Id("s").Dot("repository")
	)

	f.Comment("DefaultService validates requests and delegates to a Repository.")
	f.Type().Id("DefaultService").Struct(
		jen.Id("repository").Id("Repository"),
		jen.Id("validator").Op("*").Id("Validator"),
	)
	f.Var().Id("_").Id("Service").Op("=").Parens(jen.Op("*").Id("DefaultService")).Parens(jen.Nil())

	f.Line()
	f.Comment("NewService returns a service over repository.")
	f.Func().Id("NewService").Params(
		jen.Id("repository").Id("Repository"), jen.Id("validator").Op("*").Id("Validator"),
	).Op("*").Id("DefaultService").Block(
		jen.Return(jen.Op("&").Id("DefaultService").Values(jen.Dict{
			jen.Id("repository"): jen.Id("repository"),
			jen.Id("validator"):  jen.Id("validator"),
		})),
	)

	f.Line()
	f.Func().Params(recv.Clone()).Id("List").Params(ctxParam()).Params(entitySlice(v), jen.Error()).Block(
		jen.Return(repo.Clone().Dot("List").Call(jen.Id("ctx"))),
	)

	f.Line()
	f.Func().Params(recv.Clone()).Id("Get").Params(ctxParam(), keyParam(v)).Params(entityPtr(v), jen.Error()).Block(
		jen.Return(repo.Clone().Dot("Get").Call(jen.Id("ctx"), pk.Clone())),
	)

	f.Line()
	f.Func().Params(recv.Clone()).Id("Create").Params(ctxParam(), jen.Id("req").Id("CreateRequest")).
		Params(entityPtr(v), jen.Error()).Block(
		jen.If(
			jen.Err().Op(":=").Id("s").Dot("validator").Dot("ValidateCreate").Call(jen.Id("req")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(repo.Clone().Dot("Create").Call(jen.Id("ctx"), jen.Id("req").Dot("Entity").Call())),
	)

	f.Line()
	f.Func().Params(recv.Clone()).Id("Update").Params(ctxParam(), keyParam(v), jen.Id("req").Id("UpdateRequest")).
		Params(entityPtr(v), jen.Error()).Block(
		jen.If(
			jen.Err().Op(":=").Id("s").Dot("validator").Dot("ValidateUpdate").Call(jen.Id("req")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.List(jen.Id("e"), jen.Err()).Op(":=").Add(repo.Clone()).Dot("Get").Call(jen.Id("ctx"), pk.Clone()),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Id("req").Dot("Apply").Call(jen.Id("e")),
		jen.Return(repo.Clone().Dot("Update").Call(jen.Id("ctx"), jen.Id("e"))),
	)

	f.Line()
	f.Func().Params(recv.Clone()).Id("Delete").Params(ctxParam(), keyParam(v)).Error().Block(
		jen.Return(repo.Clone().Dot("Delete").Call(jen.Id("ctx"), pk.Clone())),
	)

	for _, c := range v.ForeignKeys {
		f.Line()
		f.Func().Params(recv.Clone()).Id(listByName(c)).
			Params(ctxParam(), jen.Id(ParamName(c)).Add(goType(c.BaseType))).
			Params(entitySlice(v), jen.Error()).Block(
			jen.Return(repo.Clone().Dot(listByName(c)).Call(jen.Id("ctx"), jen.Id(ParamName(c)))),
		)
	}
	return f
}

func requestTags(c *gen.ColumnView, optional bool) map[string]string {
	j := c.Snake
	if optional {
		j += ",omitempty"
	}
	return map[string]string{"json": j}
}

// genCreateRequest generates create_request.go.
func genCreateRequest(v *gen.TableView) *jen.File {
	f := jen.NewFile(v.Package)
	f.Commentf("CreateRequest is the payload creating a %s row.", TypeName(v))
	f.Type().Id("CreateRequest").StructFunc(func(group *jen.Group) {
		for _, c := range v.NonPrimaryColumns {
			group.Id(FieldName(c)).Add(goType(c.Type)).Tag(requestTags(c, c.Nullable))
		}
	})

	f.Line()
	f.Comment("Entity returns the row described by the request.")
	f.Func().Params(jen.Id("r").Id("CreateRequest")).Id("Entity").Params().Add(entityPtr(v)).Block(
		jen.Return(jen.Op("&").Id(TypeName(v)).Values(jen.DictFunc(func(d jen.Dict) {
			for _, c := range v.NonPrimaryColumns {
				d[jen.Id(FieldName(c))] = jen.Id("r").Dot(FieldName(c))
			}
		}))),
	)
	return f
}

// optionalType returns the type of an update field: a pointer unless the
// column type already accepts nil.
func optionalType(c *gen.ColumnView) string {
	if strings.HasPrefix(c.Type, "*") || goTypes.Exempt(c.Type) {
		return c.Type
	}
	return "*" + c.Type
}

// genUpdateRequest generates update_request.go. Every field is optional;
// nil fields leave the stored value unchanged.
func genUpdateRequest(v *gen.TableView) *jen.File {
	f := jen.NewFile(v.Package)
	f.Commentf("UpdateRequest is the payload updating a %s row. Nil fields are", TypeName(v))
	f.Comment("left unchanged.")
	f.Type().Id("UpdateRequest").StructFunc(func(group *jen.Group) {
		for _, c := range v.NonPrimaryColumns {
			group.Id(FieldName(c)).Add(goType(optionalType(c))).Tag(requestTags(c, true))
		}
	})

	f.Line()
	f.Comment("Apply copies the fields that are set onto e.")
	f.Func().Params(jen.Id("r").Id("UpdateRequest")).Id("Apply").Params(jen.Id("e").Add(entityPtr(v))).BlockFunc(func(group *jen.Group) {
		for _, c := range v.NonPrimaryColumns {
			value := jen.Id("r").Dot(FieldName(c))
			if optionalType(c) != c.Type {
				value = jen.Op("*").Add(value)
			}
			group.If(jen.Id("r").Dot(FieldName(c)).Op("!=").Nil()).Block(
				jen.Id("e").Dot(FieldName(c)).Op("=").Add(value),
			)
		}
	})
	return f
}

// check is a validation rule of one request field.
type check struct {
	cond    func(value jen.Code) *jen.Statement
	message string
}

func checks(c *gen.ColumnView) []check {
	var cs []check
	if c.MaxLength > 0 && c.BaseType == "string" {
		cs = append(cs, check{
			cond: func(value jen.Code) *jen.Statement {
				return jen.Qual("unicode/utf8", "RuneCountInString").Call(value).Op(">").Lit(c.MaxLength)
			},
			message: "must be at most " + strconv.Itoa(c.MaxLength) + " characters",
		})
	}
	if c.References != nil && isInteger(c.BaseType) {
		cs = append(cs, check{
			cond:    func(value jen.Code) *jen.Statement { return jen.Add(value).Op("<=").Lit(0) },
			message: "must reference an existing " + c.References.Table,
		})
	}
	return cs
}

// genValidator generates validator.go: the request rules derived from
// column lengths and foreign keys.
func genValidator(v *gen.TableView) *jen.File {
	f := jen.NewFile(v.Package)

	f.Comment("ValidationError reports an invalid request field.")
	f.Type().Id("ValidationError").Struct(
		jen.Id("Field").String(),
		jen.Id("Message").String(),
	)

	f.Line()
	f.Func().Params(jen.Id("e").Op("*").Id("ValidationError")).Id("Error").Params().String().Block(
		jen.Return(jen.Id("e").Dot("Field").Op("+").Lit(": ").Op("+").Id("e").Dot("Message")),
	)

	f.Line()
	f.Commentf("Validator checks %s requests.", TypeName(v))
	f.Type().Id("Validator").Struct()

	f.Line()
	f.Comment("NewValidator returns a Validator.")
	f.Func().Id("NewValidator").Params().Op("*").Id("Validator").Block(
		jen.Return(jen.Op("&").Id("Validator").Values()),
	)

	validate := func(name, req string, optional func(*gen.ColumnView) bool) {
		f.Line()
		f.Func().Params(jen.Id("v").Op("*").Id("Validator")).Id(name).Params(jen.Id("req").Id(req)).Error().BlockFunc(func(group *jen.Group) {
			group.Var().Id("errs").Index().Error()
			for _, c := range v.NonPrimaryColumns {
				for _, ch := range checks(c) {
					field := jen.Id("req").Dot(FieldName(c))
					cond := ch.cond(field.Clone())
					if optional(c) {
						cond = field.Clone().Op("!=").Nil().Op("&&").Add(ch.cond(jen.Op("*").Add(field.Clone())))
					}
					group.If(cond).Block(
						jen.Id("errs").Op("=").Append(jen.Id("errs"), jen.Op("&").Id("ValidationError").Values(jen.Dict{
							jen.Id("Field"):   jen.Lit(c.Snake),
							jen.Id("Message"): jen.Lit(ch.message),
						})),
					)
				}
			}
			group.Return(jen.Qual("errors", "Join").Call(jen.Id("errs").Op("...")))
		})
	}
	validate("ValidateCreate", "CreateRequest", func(c *gen.ColumnView) bool { return c.Nullable })
	validate("ValidateUpdate", "UpdateRequest", func(c *gen.ColumnView) bool { return strings.HasPrefix(optionalType(c), "*") })
	return f
}
