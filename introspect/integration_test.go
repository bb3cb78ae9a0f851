//go:build integration

package introspect

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const pgShopDDL = `
CREATE TYPE order_status AS ENUM ('open', 'paid');
CREATE TABLE orders (
	id        SERIAL PRIMARY KEY,
	status    order_status NOT NULL DEFAULT 'open',
	placed_at TIMESTAMPTZ DEFAULT now()
);
CREATE TABLE order_items (
	id       BIGSERIAL PRIMARY KEY,
	order_id INTEGER NOT NULL REFERENCES orders(id),
	sku      VARCHAR(64) NOT NULL,
	price    NUMERIC(10,2) NOT NULL,
	tags     TEXT[]
);
CREATE TABLE audit_log (message TEXT);
`

func TestPostgresRead(t *testing.T) {
	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("shop"),
		postgres.WithUsername("archgen"),
		postgres.WithPassword("archgen"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	conn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", conn)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, pgShopDDL)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Read(ctx, conn, WithSchemas("public"))
	require.NoError(t, err)
	assert.Equal(t, []string{"audit_log", "order_items", "orders"}, s.Names())

	items := s.Table("order_items")
	assert.Equal(t, "bigint", items.Column("id").DataType)
	assert.Equal(t, "varchar(64)", items.Column("sku").DataType)
	assert.Equal(t, "numeric(10,2)", items.Column("price").DataType)
	assert.Equal(t, "text[]", items.Column("tags").DataType)
	assert.True(t, items.Column("order_id").ForeignKey)
	assert.Equal(t, "orders", items.Column("order_id").References.Table)

	orders := s.Table("orders")
	assert.Equal(t, "order_status", orders.Column("status").DataType)
	assert.Equal(t, "timestamp with time zone", orders.Column("placed_at").DataType)
	assert.Empty(t, s.Table("audit_log").PrimaryKeys)
	assert.Empty(t, s.DanglingReferences())
}
