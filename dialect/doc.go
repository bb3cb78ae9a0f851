// Package dialect names the relational databases archgen reads schemas from.
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// The dialect selects the catalog queries used by the introspect package and
// the connection string idiom rendered into generated configuration.
//
// # Sub-packages
//
//   - dialect/sql: database/sql driver wrapper with query statistics
package dialect
