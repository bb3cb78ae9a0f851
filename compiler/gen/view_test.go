package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/archgen/schema"
	"github.com/syssam/archgen/schema/schematest"
)

func TestNewTableView(t *testing.T) {
	s := schematest.Orders()
	v := NewTableView(s.Table("order_items"), testTypes, "")

	assert.Equal(t, "order_items", v.Name)
	assert.Equal(t, "OrderItems", v.Pascal)
	assert.Equal(t, "orderItems", v.Camel)
	assert.Equal(t, "OrderItems", v.Plural)
	assert.Equal(t, "OrderItem", v.Singular)
	assert.Equal(t, "order-items", v.Route)
	assert.Equal(t, "orderitems", v.Package)
	assert.False(t, v.Surrogate)

	require.NotNil(t, v.PrimaryKey)
	assert.Equal(t, "id", v.PrimaryKey.Name)
	require.Len(t, v.NonPrimaryColumns, 3)
	assert.Equal(t, "order_id", v.NonPrimaryColumns[0].Name)

	require.Len(t, v.ForeignKeys, 1)
	fk := v.ForeignKeys[0]
	assert.Equal(t, "OrderId", fk.Pascal)
	assert.Equal(t, &RefView{
		Schema:       "public",
		Table:        "orders",
		Column:       "id",
		Pascal:       "Orders",
		Snake:        "orders",
		ColumnPascal: "Id",
	}, fk.References)

	sku := v.Column("sku")
	require.NotNil(t, sku)
	assert.Equal(t, "varchar(32)", sku.SourceType)
	assert.Equal(t, "String(32)", sku.ColumnType)
	assert.Equal(t, 32, sku.MaxLength)
	assert.Nil(t, v.Column("missing"))
	assert.Equal(t, v.Columns, v.Members())
}

func TestQualify(t *testing.T) {
	s := schematest.Orders()
	v := NewTableView(s.Table("order_items"), testTypes, "")
	v.Qualify()
	assert.Equal(t, "order_items", v.Name)
	assert.Equal(t, "PublicOrderItems", v.Pascal)
	assert.Equal(t, "public_order_items", v.Snake)
	assert.Equal(t, "publicOrderItems", v.Camel)
	assert.Equal(t, "PublicOrderItem", v.Singular)
	assert.Equal(t, "public-order-items", v.Route)
	assert.Equal(t, "publicorderitems", v.Package)

	ref := v.ForeignKeys[0].References
	ref.Qualify("")
	assert.Equal(t, "PublicOrders", ref.Pascal)
	assert.Equal(t, "public_orders", ref.Snake)

	bare := &RefView{Table: "orders"}
	bare.Qualify("sales")
	assert.Equal(t, "SalesOrders", bare.Pascal)

	v = NewTableView(&schema.Table{Name: "users"}, testTypes, "")
	v.Qualify()
	assert.Equal(t, "Users", v.Pascal)
}

func TestColumnNullability(t *testing.T) {
	tbl := &schema.Table{
		Name: "events",
		Columns: []*schema.Column{
			{Name: "id", DataType: "bigint", Nullable: true},
			{Name: "count", DataType: "integer", Nullable: true},
			{Name: "note", DataType: "text", Nullable: true},
		},
		PrimaryKeys: []string{"id"},
	}
	tbl.Link()
	v := NewTableView(tbl, testTypes, "")

	// Key columns are never nullable.
	assert.False(t, v.PrimaryKey.Nullable)
	assert.Equal(t, "long", v.PrimaryKey.Type)
	assert.Equal(t, "int?", v.Column("count").Type)
	assert.Equal(t, "int", v.Column("count").BaseType)
	// Exempt target types keep their name.
	assert.Equal(t, "string", v.Column("note").Type)
	assert.True(t, v.Column("note").Nullable)
}

func TestSurrogateKey(t *testing.T) {
	t.Run("synthesized", func(t *testing.T) {
		v := NewTableView(schematest.Keyless().Tables[0], testTypes, "")

		require.True(t, v.Surrogate)
		assert.True(t, v.PrimaryKey.Synthesized)
		assert.Equal(t, "id", v.PrimaryKey.Name)
		assert.Equal(t, "int", v.PrimaryKey.Type)
		assert.Len(t, v.Columns, 2)
		assert.Len(t, v.NonPrimaryColumns, 2)

		members := v.Members()
		require.Len(t, members, 3)
		assert.Same(t, v.PrimaryKey, members[0])
	})

	t.Run("promoted id column", func(t *testing.T) {
		tbl := &schema.Table{
			Name: "legacy",
			Columns: []*schema.Column{
				{Name: "name", DataType: "text"},
				{Name: "id", DataType: "integer", Nullable: true},
			},
		}
		tbl.Link()
		v := NewTableView(tbl, testTypes, "")

		require.True(t, v.Surrogate)
		assert.False(t, v.PrimaryKey.Synthesized)
		assert.Same(t, v.Column("id"), v.PrimaryKey)
		assert.Equal(t, "int", v.PrimaryKey.Type)
		assert.False(t, v.PrimaryKey.Nullable)
		require.Len(t, v.NonPrimaryColumns, 1)
		assert.Equal(t, v.Columns, v.Members())
	})
}

func TestNested(t *testing.T) {
	v := NewTableView(schematest.Users().Tables[0], testTypes, "Sales")
	assert.Equal(t, "Sales", v.Group)
	assert.Equal(t, "src/Core", v.Nested("src/Core", "/"))

	v.Dir = "sales"
	assert.Equal(t, "src/Core/sales", v.Nested("src/Core", "/"))
	assert.Equal(t, "App.Core.sales", v.Nested("App.Core", "."))
}
