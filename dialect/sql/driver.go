package sql

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"

	"github.com/syssam/archgen/dialect"
)

// Querier is the read side shared by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Driver runs queries of one dialect over a Querier.
type Driver struct {
	Querier
	dialect string
	closers []io.Closer
}

// NewDriver creates a new Driver with the given Querier and dialect. The
// caller keeps ownership of q.
func NewDriver(dialect string, q Querier) *Driver {
	return &Driver{Querier: q, dialect: dialect}
}

// Open opens a database with the registered database/sql driver name and
// pins a single connection to it. All queries of the returned Driver use that
// connection; Close releases the connection and the pool.
func Open(ctx context.Context, dialect, driverName, source string) (*Driver, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	if err := conn.PingContext(ctx); err != nil {
		return nil, errors.Join(err, conn.Close(), db.Close())
	}
	return &Driver{Querier: conn, dialect: dialect, closers: []io.Closer{conn, db}}, nil
}

// OpenDB wraps the given *sql.DB with a Driver. Close closes db.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return &Driver{Querier: db, dialect: dialect, closers: []io.Closer{db}}
}

// Dialect returns the dialect name of the driver.
func (d *Driver) Dialect() string {
	for _, name := range dialect.Dialects {
		if strings.HasPrefix(d.dialect, name) {
			return name
		}
	}
	return d.dialect
}

// Close releases the resources acquired by Open or OpenDB, in reverse order
// of acquisition. It is safe to call more than once.
func (d *Driver) Close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
