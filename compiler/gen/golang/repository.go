package golang

import (
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/archgen/compiler/gen"
	"github.com/syssam/archgen/dialect"
)

// queries renders the SQL statements of one table in its source dialect.
type queries struct {
	v *gen.TableView
}

// dollar reports whether placeholders are numbered ($1) rather than "?".
func (q queries) dollar() bool {
	return q.v.Dialect != dialect.MySQL && q.v.Dialect != dialect.SQLite
}

// returning reports whether INSERT can return the stored row.
func (q queries) returning() bool { return q.v.Dialect != dialect.MySQL }

func (q queries) placeholder(i int) string {
	if q.dollar() {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

func (q queries) columns() string {
	names := make([]string, 0, len(q.v.Members()))
	for _, c := range q.v.Members() {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func (q queries) Select() string {
	return "SELECT " + q.columns() + " FROM " + qualified(q.v)
}

// Where returns the condition on column c, using the i-th placeholder.
func (q queries) Where(c *gen.ColumnView, i int) string {
	return " WHERE " + c.Name + " = " + q.placeholder(i)
}

func (q queries) Insert() string {
	cols := q.v.NonPrimaryColumns
	var b strings.Builder
	b.WriteString("INSERT INTO " + qualified(q.v))
	switch {
	case len(cols) > 0:
		names := make([]string, len(cols))
		marks := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.Name
			marks[i] = q.placeholder(i + 1)
		}
		b.WriteString(" (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")")
	case q.v.Dialect == dialect.MySQL:
		b.WriteString(" () VALUES ()")
	default:
		b.WriteString(" DEFAULT VALUES")
	}
	if q.returning() {
		b.WriteString(" RETURNING " + q.columns())
	}
	return b.String()
}

func (q queries) Update() string {
	pk := q.v.PrimaryKey
	sets := make([]string, 0, len(q.v.NonPrimaryColumns))
	for i, c := range q.v.NonPrimaryColumns {
		sets = append(sets, c.Name+" = "+q.placeholder(i+1))
	}
	if len(sets) == 0 {
		sets = append(sets, pk.Name+" = "+pk.Name)
	}
	return "UPDATE " + qualified(q.v) + " SET " + strings.Join(sets, ", ") +
		q.Where(pk, len(q.v.NonPrimaryColumns)+1)
}

func (q queries) Delete() string {
	return "DELETE FROM " + qualified(q.v) + q.Where(q.v.PrimaryKey, 1)
}

// fieldRefs returns e.Field for each column.
func fieldRefs(cols []*gen.ColumnView) []jen.Code {
	refs := make([]jen.Code, len(cols))
	for i, c := range cols {
		refs[i] = jen.Id("e").Dot(FieldName(c))
	}
	return refs
}

// genSQLRepository generates repository_sql.go: the database/sql
// implementation of Repository.
func genSQLRepository(v *gen.TableView) *jen.File {
	var (
		f     = jen.NewFile(v.Package)
		q     = queries{v: v}
		pk    = v.PrimaryKey
		name  = TypeName(v)
		recv  = jen.Id("r").Op("*").Id("SQLRepository")
		pkArg = jen.Id(ParamName(pk))
	)

	f.Const().Defs(
		jen.Id("selectQuery").Op("=").Lit(q.Select()),
		jen.Id("insertQuery").Op("=").Lit(q.Insert()),
		jen.Id("updateQuery").Op("=").Lit(q.Update()),
		jen.Id("deleteQuery").Op("=").Lit(q.Delete()),
	)

	f.Line()
	f.Comment("SQLRepository is a Repository backed by database/sql.")
	f.Type().Id("SQLRepository").Struct(
		jen.Id("db").Op("*").Qual("database/sql", "DB"),
	)
	f.Var().Id("_").Id("Repository").Op("=").Parens(jen.Op("*").Id("SQLRepository")).Parens(jen.Nil())

	f.Line()
	f.Comment("NewSQLRepository returns a repository using db.")
	f.Func().Id("NewSQLRepository").Params(jen.Id("db").Op("*").Qual("database/sql", "DB")).Op("*").Id("SQLRepository").Block(
		jen.Return(jen.Op("&").Id("SQLRepository").Values(jen.Dict{jen.Id("db"): jen.Id("db")})),
	)

	f.Line()
	f.Type().Id("scanner").Interface(
		jen.Id("Scan").Params(jen.Id("dest").Op("...").Any()).Error(),
	)
	f.Line()
	f.Func().Id("scan").Params(jen.Id("row").Id("scanner")).Params(entityPtr(v), jen.Error()).Block(
		jen.Id("e").Op(":=").Op("&").Id(name).Values(),
		jen.If(
			jen.Err().Op(":=").Id("row").Dot("Scan").CallFunc(func(group *jen.Group) {
				for _, c := range v.Members() {
					group.Op("&").Id("e").Dot(FieldName(c))
				}
			}),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Id("e"), jen.Nil()),
	)

	f.Line()
	f.Func().Params(recv.Clone()).Id("query").Params(
		ctxParam(), jen.Id("query").String(), jen.Id("args").Op("...").Any(),
	).Params(entitySlice(v), jen.Error()).Block(
		jen.List(jen.Id("rows"), jen.Err()).Op(":=").Id("r").Dot("db").Dot("QueryContext").Call(
			jen.Id("ctx"), jen.Id("query"), jen.Id("args").Op("..."),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Defer().Id("rows").Dot("Close").Call(),
		jen.Var().Id("out").Add(entitySlice(v)),
		jen.For(jen.Id("rows").Dot("Next").Call()).Block(
			jen.List(jen.Id("e"), jen.Err()).Op(":=").Id("scan").Call(jen.Id("rows")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Id("out").Op("=").Append(jen.Id("out"), jen.Id("e")),
		),
		jen.Return(jen.Id("out"), jen.Id("rows").Dot("Err").Call()),
	)

	f.Line()
	f.Func().Id("affected").Params(jen.Id("res").Qual("database/sql", "Result")).Error().Block(
		jen.List(jen.Id("n"), jen.Err()).Op(":=").Id("res").Dot("RowsAffected").Call(),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
		jen.If(jen.Id("n").Op("==").Lit(0)).Block(jen.Return(jen.Id("ErrNotFound"))),
		jen.Return(jen.Nil()),
	)

	f.Line()
	f.Comment("List returns every row.")
	f.Func().Params(recv.Clone()).Id("List").Params(ctxParam()).Params(entitySlice(v), jen.Error()).Block(
		jen.Return(jen.Id("r").Dot("query").Call(jen.Id("ctx"), jen.Id("selectQuery"))),
	)

	f.Line()
	f.Comment("Get returns the row with the given key, or ErrNotFound.")
	f.Func().Params(recv.Clone()).Id("Get").Params(ctxParam(), keyParam(v)).Params(entityPtr(v), jen.Error()).Block(
		jen.List(jen.Id("e"), jen.Err()).Op(":=").Id("scan").Call(
			jen.Id("r").Dot("db").Dot("QueryRowContext").Call(
				jen.Id("ctx"), jen.Id("selectQuery").Op("+").Lit(q.Where(pk, 1)), pkArg.Clone(),
			),
		),
		jen.If(jen.Qual("errors", "Is").Call(jen.Err(), jen.Qual("database/sql", "ErrNoRows"))).Block(
			jen.Return(jen.Nil(), jen.Id("ErrNotFound")),
		),
		jen.Return(jen.Id("e"), jen.Err()),
	)

	f.Line()
	f.Comment("Create inserts e and returns the stored row.")
	f.Func().Params(recv.Clone()).Id("Create").Params(ctxParam(), jen.Id("e").Add(entityPtr(v))).
		Params(entityPtr(v), jen.Error()).BlockFunc(func(group *jen.Group) {
		args := append([]jen.Code{jen.Id("ctx"), jen.Id("insertQuery")}, fieldRefs(v.NonPrimaryColumns)...)
		if q.returning() {
			group.Return(jen.Id("scan").Call(jen.Id("r").Dot("db").Dot("QueryRowContext").Call(args...)))
			return
		}
		group.List(jen.Id("res"), jen.Err()).Op(":=").Id("r").Dot("db").Dot("ExecContext").Call(args...)
		group.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
		if !isInteger(pk.BaseType) {
			group.Return(jen.Id("r").Dot("Get").Call(jen.Id("ctx"), jen.Id("e").Dot(FieldName(pk))))
			return
		}
		group.List(jen.Id("id"), jen.Err()).Op(":=").Id("res").Dot("LastInsertId").Call()
		group.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
		group.Return(jen.Id("r").Dot("Get").Call(jen.Id("ctx"), jen.Id(pk.BaseType).Call(jen.Id("id"))))
	})

	f.Line()
	f.Comment("Update stores e and returns the stored row, or ErrNotFound.")
	f.Func().Params(recv.Clone()).Id("Update").Params(ctxParam(), jen.Id("e").Add(entityPtr(v))).
		Params(entityPtr(v), jen.Error()).Block(
		jen.List(jen.Id("res"), jen.Err()).Op(":=").Id("r").Dot("db").Dot("ExecContext").Call(
			append(append([]jen.Code{jen.Id("ctx"), jen.Id("updateQuery")}, fieldRefs(v.NonPrimaryColumns)...),
				jen.Id("e").Dot(FieldName(pk)))...,
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.If(jen.Err().Op(":=").Id("affected").Call(jen.Id("res")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Id("r").Dot("Get").Call(jen.Id("ctx"), jen.Id("e").Dot(FieldName(pk)))),
	)

	f.Line()
	f.Comment("Delete removes the row with the given key, or returns ErrNotFound.")
	f.Func().Params(recv.Clone()).Id("Delete").Params(ctxParam(), keyParam(v)).Error().Block(
		jen.List(jen.Id("res"), jen.Err()).Op(":=").Id("r").Dot("db").Dot("ExecContext").Call(
			jen.Id("ctx"), jen.Id("deleteQuery"), pkArg.Clone(),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
		jen.Return(jen.Id("affected").Call(jen.Id("res"))),
	)

	for _, c := range v.ForeignKeys {
		f.Line()
		f.Commentf("%s returns the rows whose %s matches.", listByName(c), c.Name)
		f.Func().Params(recv.Clone()).Id(listByName(c)).
			Params(ctxParam(), jen.Id(ParamName(c)).Add(goType(c.BaseType))).
			Params(entitySlice(v), jen.Error()).Block(
			jen.Return(jen.Id("r").Dot("query").Call(
				jen.Id("ctx"), jen.Id("selectQuery").Op("+").Lit(q.Where(c, 1)), jen.Id(ParamName(c)),
			)),
		)
	}
	return f
}
