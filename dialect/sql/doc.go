// Package sql wraps database/sql for the catalog queries of the introspector.
//
// A [Driver] pins one connection for the lifetime of a schema read, so every
// metadata query of the read shares it and [Driver.Close] releases it on
// every exit path:
//
//	drv, err := sql.Open(ctx, dialect.Postgres, "postgres", source)
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
// [StatsDriver] decorates a Driver with query counters and slog records,
// warning about queries slower than a threshold.
package sql
