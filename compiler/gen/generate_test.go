package gen

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/archgen/schema"
	"github.com/syssam/archgen/schema/schematest"
)

// fakeStrategy renders one line per artifact so engine tests can check
// paths, order and inputs without a real target.
type fakeStrategy struct {
	// failKind and failTable make one table artifact fail.
	failKind  ArtifactKind
	failTable string
	// failSchema makes the schema artifact fail.
	failSchema bool
	// collide makes two artifacts share a path.
	collide bool
}

var testTypes = &TypeTable{
	Types:          map[string]string{"integer": "int", "bigint": "long", "text": "string", "varchar": "string", "uuid": "Guid"},
	Fallback:       "object",
	Columns:        map[string]string{"integer": "Integer", "text": "Text"},
	ColumnFallback: "String",
	Bounded:        map[string]string{"varchar": "String(%d)"},
	Nullable:       func(s string) string { return s + "?" },
	Exempted:       []string{"string", "object"},
}

func (fakeStrategy) Target() Target { return TargetDotnet }
func (fakeStrategy) TypeMapper() TypeMapper { return testTypes }
func (fakeStrategy) GroupSegment(g string) string { return strings.ToLower(g) }
func (fakeStrategy) ConnectionString(s string) string { return "conn:" + s }

func (f fakeStrategy) TableArtifacts() []TableArtifact {
	var as []TableArtifact
	for _, k := range ArtifactKinds {
		as = append(as, TableArtifact{
			Kind: k,
			Path: func(v *TableView) string {
				if f.collide && k == KindService {
					return v.Nested("out", "/") + "/" + v.Snake + "/entity"
				}
				return v.Nested("out", "/") + "/" + v.Snake + "/" + strings.ReplaceAll(k.String(), " ", "_")
			},
			Render: func(v *TableView) (string, error) {
				if k == f.failKind && v.Name == f.failTable {
					return "", errors.New("boom")
				}
				return k.String() + " " + v.Pascal + " " + v.PrimaryKey.Type, nil
			},
		})
	}
	return as
}

func (f fakeStrategy) SchemaArtifacts() []SchemaArtifact {
	return []SchemaArtifact{
		Static("README", "readme"),
		{
			Path: StaticPath("project"),
			Render: func(p *Project) (string, error) {
				if f.failSchema {
					return "", errors.New("no project")
				}
				var b strings.Builder
				b.WriteString(p.Name + " " + p.Connection + "\n")
				for _, g := range p.Groups {
					b.WriteString(g.Name + ":")
					for _, t := range g.Tables {
						b.WriteString(" " + t.Name)
					}
					b.WriteString("\n")
				}
				return b.String(), nil
			},
		},
	}
}

func TestNewEngine(t *testing.T) {
	_, err := NewEngine(nil)
	require.ErrorIs(t, err, ErrMissingConfig)

	_, err = NewEngine(fakeStrategy{}, WithProjectName(""))
	require.Error(t, err)

	e, err := NewEngine(fakeStrategy{}, WithProjectName("shop"))
	require.NoError(t, err)
	assert.Equal(t, "Shop", e.Config().ProjectName)

	_, err = e.Generate(nil, "")
	require.ErrorIs(t, err, ErrMissingConfig)
}

func TestGenerate(t *testing.T) {
	out, err := Generate(fakeStrategy{}, schematest.Orders(), "db")
	require.NoError(t, err)
	require.True(t, out.Complete)
	assert.Empty(t, out.Warnings)

	// Nine per table plus two schema artifacts.
	assert.Len(t, out.Files, 2*9+2)
	assert.Equal(t, "entity Orders int", out.Files["out/orders/entity"])
	assert.Equal(t, "update payload OrderItems int", out.Files["out/order_items/update_payload"])
	assert.Equal(t, "GeneratedApp conn:db\n", out.Files["project"])
	assert.Equal(t, "readme", out.Files["README"])
}

func TestGenerateEmptySchema(t *testing.T) {
	var progress []int
	out, err := Generate(fakeStrategy{}, &schema.Schema{}, "", WithProgress(func(p int, _ string) {
		progress = append(progress, p)
	}))
	require.NoError(t, err)
	assert.True(t, out.Complete)
	assert.Equal(t, []string{"README", "project"}, out.Files.Paths())
	assert.Equal(t, []int{ProgressStart, ProgressSchema, ProgressComplete}, progress)
}

func TestGenerateProgress(t *testing.T) {
	s := schematest.Merge(schematest.Shop(), schematest.Users(), schematest.Keyless())
	var (
		percents []int
		messages []string
	)
	_, err := Generate(fakeStrategy{}, s, "", WithProgress(func(p int, msg string) {
		percents = append(percents, p)
		messages = append(messages, msg)
	}))
	require.NoError(t, err)

	// Five tables: 0, 14, 28, 42, 56.
	assert.Equal(t, []int{0, 0, 14, 28, 42, 56, 80, 100}, percents)
	assert.Equal(t, MsgStart, messages[0])
	assert.Equal(t, MsgTable("customers"), messages[1])
	assert.Equal(t, MsgTable("audit_log"), messages[5])
	assert.Equal(t, MsgSchema, messages[6])
	assert.Equal(t, MsgComplete, messages[7])
	assert.IsNonDecreasing(t, percents)
}

func TestGenerateFailure(t *testing.T) {
	t.Run("table artifact", func(t *testing.T) {
		var last int
		out, err := Generate(fakeStrategy{failKind: KindController, failTable: "order_items"}, schematest.Orders(), "",
			WithProgress(func(p int, _ string) { last = p }))
		require.Error(t, err)
		require.ErrorIs(t, err, ErrGenerationFailed)

		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "table", genErr.Phase)
		assert.Equal(t, "order_items", genErr.Table)
		assert.Equal(t, "out/order_items/controller", genErr.File)
		assert.Equal(t, "controller", genErr.Message)

		require.NotNil(t, out)
		assert.False(t, out.Complete)
		// All of orders and the three artifacts before the controller.
		assert.Len(t, out.Files, 9+3)
		assert.Less(t, last, ProgressComplete)
	})

	t.Run("schema artifact", func(t *testing.T) {
		out, err := Generate(fakeStrategy{failSchema: true}, schematest.Users(), "")
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "schema", genErr.Phase)
		assert.Equal(t, "project", genErr.File)
		assert.False(t, out.Complete)
		assert.Contains(t, out.Files, "README")
	})

	t.Run("path collision", func(t *testing.T) {
		_, err := Generate(fakeStrategy{collide: true}, schematest.Users(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already generated")
	})
}

func TestGenerateWarnings(t *testing.T) {
	dangling := &schema.Table{
		Name: "payments",
		Columns: []*schema.Column{
			{Name: "id", DataType: "integer"},
			{Name: "invoice_id", DataType: "integer"},
		},
		PrimaryKeys: []string{"id"},
		ForeignKeys: []schema.ForeignKey{{Column: "invoice_id", RefTable: "invoices", RefColumn: "id"}},
	}
	dangling.Link()
	s := schematest.Merge(schematest.Keyless(), &schema.Schema{Tables: []*schema.Table{dangling}})

	var logs bytes.Buffer
	out, err := Generate(fakeStrategy{}, s, "",
		WithGroups(schema.Groups{{Name: "Billing", Tables: []string{"payments", "refunds"}}}),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	require.NoError(t, err)
	require.True(t, out.Complete)

	var got []string
	for _, w := range out.Warnings {
		got = append(got, w.String())
	}
	assert.Equal(t, []string{
		"payments: column invoice_id references missing invoices.id",
		"grouped table refunds not found in schema",
		`audit_log: no primary key; using surrogate key "id" of type int`,
	}, got)
	assert.Contains(t, logs.String(), "surrogate primary key")
	assert.Contains(t, logs.String(), "dangling foreign key")

	// The dangling column is still a plain member.
	assert.Equal(t, "entity Payments int", out.Files["out/billing/payments/entity"])
}

func TestGenerateGroups(t *testing.T) {
	groups := schema.Groups{
		{Name: "Sales", Tables: []string{"orders", "invoices"}},
		{Name: "Empty", Tables: []string{"nothing"}},
	}
	out, err := Generate(fakeStrategy{}, schematest.Shop(), "", WithGroups(groups))
	require.NoError(t, err)

	assert.Contains(t, out.Files, "out/sales/orders/entity")
	assert.Contains(t, out.Files, "out/sales/invoices/entity")
	assert.Contains(t, out.Files, "out/general/customers/entity")
	// Groups without tables are left out; the default group comes last.
	assert.Equal(t, "GeneratedApp conn:\nSales: orders invoices\nGeneral: customers\n", out.Files["project"])
}

func TestGenerateFilter(t *testing.T) {
	out, err := Generate(fakeStrategy{}, schematest.Shop(), "", WithTables("order*", "invoices"), WithExcludeTables("invoices"))
	require.NoError(t, err)
	for _, p := range out.Files.Paths() {
		if strings.HasPrefix(p, "out/") {
			assert.True(t, strings.HasPrefix(p, "out/orders/"), p)
		}
	}
	assert.Len(t, out.Files, 9+2)
}

func TestFiles(t *testing.T) {
	f := Files{"b/x": "12", "a": "345", "b/a": ""}
	assert.Equal(t, []string{"a", "b/a", "b/x"}, f.Paths())
	assert.Equal(t, 5, f.Size())
	assert.Equal(t, 0, Files{}.Size())
}

func TestArtifactKind(t *testing.T) {
	require.Len(t, ArtifactKinds, 9)
	assert.Equal(t, "entity", KindEntity.String())
	assert.Equal(t, "validator", KindValidator.String())
	assert.Equal(t, "unknown", ArtifactKind(42).String())
	assert.Equal(t, "unknown", ArtifactKind(-1).String())
}

func TestTarget(t *testing.T) {
	for in, want := range map[string]Target{
		"dotnet": TargetDotnet, "C#": "", "CSharp": TargetDotnet, " fastapi ": TargetFastAPI,
		"Python": TargetFastAPI, "go": TargetGolang, "GOLANG": TargetGolang,
	} {
		got, err := ParseTarget(in)
		if want == "" {
			require.ErrorIs(t, err, ErrUnknownTarget, in)
			continue
		}
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
		assert.True(t, got.Valid())
	}
	assert.False(t, Target("cobol").Valid())

	var tgt Target
	require.NoError(t, tgt.UnmarshalText([]byte("python")))
	assert.Equal(t, TargetFastAPI, tgt)
	require.Error(t, tgt.UnmarshalText([]byte("rust")))
}
