// Package introspect reads a relational schema from a live database.
//
// [Read] opens the database named by a connection descriptor, walks its
// catalog and returns a [schema.Schema]. The walk is sequential: it lists the
// base tables, then issues three queries per table (columns, primary keys,
// foreign keys) and links the key flags onto the columns. Any failure aborts
// the read and no partial schema is returned.
//
//	s, err := introspect.Read(ctx, os.Getenv("ARCHGEN_DATABASE_URL"),
//	    introspect.WithSchemas("public"),
//	)
//	switch {
//	case introspect.IsConnectivityError(err):
//	    // database unreachable
//	case err != nil:
//	    // catalog query failed
//	}
//
// Postgres, MySQL and SQLite catalogs are built in; the dialect is selected
// from the descriptor.
package introspect

import (
	"context"
	"slices"

	dsql "github.com/syssam/archgen/dialect/sql"
	"github.com/syssam/archgen/dsn"
	"github.com/syssam/archgen/schema"
)

// Read opens the database described by conn, reads its schema and closes the
// connection before returning, on success and on failure.
func Read(ctx context.Context, conn string, opts ...Option) (*schema.Schema, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	d, err := dsn.Parse(conn)
	if err != nil {
		return nil, NewConnectivityError("", err)
	}
	c, err := CatalogFor(d.Dialect)
	if err != nil {
		return nil, NewConnectivityError(d.Dialect, err)
	}
	source, err := c.Source(d)
	if err != nil {
		return nil, NewConnectivityError(c.Dialect(), err)
	}
	cfg.Logger.DebugContext(ctx, "opening database", "dialect", c.Dialect(), "dsn", d.Redacted())
	drv, err := dsql.Open(ctx, c.Dialect(), c.DriverName(), source)
	if err != nil {
		return nil, NewConnectivityError(c.Dialect(), err)
	}
	defer func() {
		if cerr := drv.Close(); cerr != nil {
			cfg.Logger.WarnContext(ctx, "closing database", "dialect", c.Dialect(), "error", cerr)
		}
	}()
	stats := dsql.NewStatsDriver(drv, dsql.WithLogger(cfg.Logger), dsql.WithSlowThreshold(cfg.SlowThreshold))
	s, err := inspect(ctx, stats, c, cfg)
	if err != nil {
		return nil, err
	}
	cfg.Logger.InfoContext(ctx, "schema read",
		"dialect", c.Dialect(),
		"tables", len(s.Tables),
		"stats", stats.QueryStats().Stats().String(),
	)
	return s, nil
}

// Inspect walks the catalog over a caller-owned connection. The caller keeps
// ownership of q.
func Inspect(ctx context.Context, q Querier, c Catalog, opts ...Option) (*schema.Schema, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return inspect(ctx, q, c, cfg)
}

func inspect(ctx context.Context, q Querier, c Catalog, cfg *Config) (*schema.Schema, error) {
	refs, err := c.Tables(ctx, q, cfg.Schemas)
	if err != nil {
		return nil, NewQueryError("", "tables", err)
	}
	s := &schema.Schema{Dialect: c.Dialect()}
	for _, ref := range refs {
		if slices.Contains(cfg.ExcludeTables, ref.Name) || slices.Contains(cfg.ExcludeTables, ref.String()) {
			continue
		}
		t, err := readTable(ctx, q, c, ref)
		if err != nil {
			return nil, err
		}
		cfg.Logger.DebugContext(ctx, "table read",
			"table", ref.String(),
			"columns", len(t.Columns),
			"primary_keys", len(t.PrimaryKeys),
			"foreign_keys", len(t.ForeignKeys),
		)
		s.Tables = append(s.Tables, t)
	}
	return s, nil
}

func readTable(ctx context.Context, q Querier, c Catalog, ref TableRef) (*schema.Table, error) {
	cols, err := c.Columns(ctx, q, ref)
	if err != nil {
		return nil, NewQueryError(ref.String(), "columns", err)
	}
	pks, err := c.PrimaryKeys(ctx, q, ref)
	if err != nil {
		return nil, NewQueryError(ref.String(), "primary keys", err)
	}
	fks, err := c.ForeignKeys(ctx, q, ref)
	if err != nil {
		return nil, NewQueryError(ref.String(), "foreign keys", err)
	}
	t := &schema.Table{
		Name:        ref.Name,
		Schema:      ref.Schema,
		Columns:     cols,
		PrimaryKeys: pks,
		ForeignKeys: fks,
	}
	t.Link()
	return t, nil
}
