package schema_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/syssam/archgen/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shop() *schema.Schema {
	def := "now()"
	s := &schema.Schema{
		Dialect: "postgres",
		Tables: []*schema.Table{
			{
				Name:   "orders",
				Schema: "public",
				Columns: []*schema.Column{
					{Name: "id", DataType: "integer"},
					{Name: "placed_at", DataType: "timestamp", Nullable: true, Default: &def},
				},
				PrimaryKeys: []string{"id"},
			},
			{
				Name:   "order_items",
				Schema: "public",
				Columns: []*schema.Column{
					{Name: "id", DataType: "integer"},
					{Name: "order_id", DataType: "integer"},
					{Name: "price", DataType: "numeric(10,2)"},
				},
				PrimaryKeys: []string{"id"},
				ForeignKeys: []schema.ForeignKey{
					{Column: "order_id", RefSchema: "public", RefTable: "orders", RefColumn: "id"},
				},
			},
		},
	}
	for _, t := range s.Tables {
		t.Link()
	}
	return s
}

func TestTableLink(t *testing.T) {
	s := shop()
	items := s.Table("order_items")
	require.NotNil(t, items)

	t.Run("primary key", func(t *testing.T) {
		assert.True(t, items.Column("id").PrimaryKey)
		assert.False(t, items.Column("order_id").PrimaryKey)
	})

	t.Run("foreign key", func(t *testing.T) {
		c := items.Column("order_id")
		assert.True(t, c.ForeignKey)
		require.NotNil(t, c.References)
		assert.Equal(t, schema.Reference{Schema: "public", Table: "orders", Column: "id"}, *c.References)
		assert.Nil(t, items.Column("price").References)
	})

	t.Run("unknown key columns are ignored", func(t *testing.T) {
		tbl := &schema.Table{
			Name:        "t",
			Columns:     []*schema.Column{{Name: "a", DataType: "text"}},
			PrimaryKeys: []string{"missing"},
			ForeignKeys: []schema.ForeignKey{{Column: "ghost", RefTable: "x", RefColumn: "y"}},
		}
		tbl.Link()
		assert.False(t, tbl.Columns[0].PrimaryKey)
		assert.False(t, tbl.Columns[0].ForeignKey)
	})
}

func TestSchemaLookup(t *testing.T) {
	s := shop()
	assert.NotNil(t, s.Table("orders"))
	assert.NotNil(t, s.Table("public.orders"))
	assert.Nil(t, s.Table("customers"))
	assert.Equal(t, []string{"orders", "order_items"}, s.Names())
}

func TestSchemaValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, shop().Validate())
	})

	t.Run("duplicate table", func(t *testing.T) {
		s := shop()
		s.Tables = append(s.Tables, &schema.Table{Name: "orders", Schema: "public"})
		err := s.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, schema.ErrInvalidSchema))
		assert.True(t, schema.IsSchemaError(err))
		assert.Contains(t, err.Error(), "duplicate table")
	})

	t.Run("same name in another schema", func(t *testing.T) {
		s := shop()
		s.Tables = append(s.Tables, &schema.Table{Name: "orders", Schema: "archive"})
		assert.NoError(t, s.Validate())
	})

	t.Run("duplicate column", func(t *testing.T) {
		s := shop()
		s.Tables[0].Columns = append(s.Tables[0].Columns, &schema.Column{Name: "id", DataType: "integer"})
		err := s.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "column id")
	})
}

func TestSharedNames(t *testing.T) {
	s := shop()
	assert.Empty(t, s.SharedNames())

	s.Tables = append(s.Tables, &schema.Table{Name: "orders", Schema: "archive"})
	assert.Equal(t, map[string]bool{"orders": true}, s.SharedNames())
	require.NoError(t, s.Validate())
}

func TestDanglingReferences(t *testing.T) {
	s := shop()
	assert.Empty(t, s.DanglingReferences())

	s.Tables[1].ForeignKeys = append(s.Tables[1].ForeignKeys, schema.ForeignKey{
		Column: "coupon_id", RefTable: "coupons", RefColumn: "id",
	})
	dangling := s.DanglingReferences()
	require.Len(t, dangling, 1)
	assert.Equal(t, "order_items", dangling[0].Table)
	assert.Equal(t, "coupons", dangling[0].RefTable)
}

func TestSchemaFilter(t *testing.T) {
	s := shop()
	tests := []struct {
		name     string
		include  []string
		exclude  []string
		expected []string
	}{
		{"all", nil, nil, []string{"orders", "order_items"}},
		{"include glob", []string{"order_*"}, nil, []string{"order_items"}},
		{"exclude", nil, []string{"orders"}, []string{"order_items"}},
		{"qualified", []string{"public.orders"}, nil, []string{"orders"}},
		{"none", []string{"customers"}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.Filter(tt.include, tt.exclude)
			assert.Equal(t, "postgres", out.Dialect)
			if tt.expected == nil {
				assert.Empty(t, out.Tables)
				return
			}
			assert.Equal(t, tt.expected, out.Names())
		})
	}
}

func TestGroups(t *testing.T) {
	gs := schema.NewGroups(map[string][]string{
		"Sales":   {"a", "b"},
		"Billing": {"d"},
	})
	require.Len(t, gs, 2)
	assert.Equal(t, "Billing", gs[0].Name)
	assert.Equal(t, "Sales", gs[1].Name)

	require.NoError(t, gs.Validate())
	assert.Equal(t, "Sales", gs.GroupOf("a"))
	assert.Equal(t, "Sales", gs.GroupOf("b"))
	assert.Equal(t, schema.DefaultGroup, gs.GroupOf("c"))

	s := &schema.Schema{Tables: []*schema.Table{{Name: "a"}, {Name: "b"}, {Name: "c"}}}
	assert.Equal(t, []string{"d"}, gs.Unknown(s))

	assert.Nil(t, schema.NewGroups(nil))
}

func TestGroupsValidate(t *testing.T) {
	tests := []struct {
		name   string
		groups schema.Groups
		msg    string
	}{
		{"empty name", schema.Groups{{Name: "", Tables: []string{"a"}}}, "cannot be empty"},
		{"whitespace", schema.Groups{{Name: "Big Sales", Tables: []string{"a"}}}, "whitespace"},
		{"duplicate group", schema.Groups{{Name: "A"}, {Name: "A"}}, "duplicate group"},
		{"table in two groups", schema.Groups{
			{Name: "Sales", Tables: []string{"a"}},
			{Name: "Billing", Tables: []string{"a"}},
		}, "already assigned"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.groups.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, schema.ErrInvalidGroups))
			assert.True(t, schema.IsGroupError(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSnapshot(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		s := shop()
		var buf bytes.Buffer
		require.NoError(t, schema.WriteSnapshot(&buf, s))

		got, err := schema.ReadSnapshot(&buf)
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.True(t, got.Table("order_items").Column("order_id").ForeignKey)
		require.NotNil(t, got.Table("orders").Column("placed_at").Default)
		assert.Equal(t, "now()", *got.Table("orders").Column("placed_at").Default)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := schema.ReadSnapshot(bytes.NewReader([]byte("not msgpack")))
		require.Error(t, err)
		assert.True(t, errors.Is(err, schema.ErrInvalidSnapshot))
	})

	t.Run("nil schema", func(t *testing.T) {
		var buf bytes.Buffer
		assert.ErrorIs(t, schema.WriteSnapshot(&buf, nil), schema.ErrInvalidSnapshot)
	})
}
