package dialect

import "strings"

// Source dialects archgen can introspect.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// Dialects lists the supported source dialects.
var Dialects = []string{Postgres, MySQL, SQLite}

// FromScheme maps a connection URL scheme to its dialect. Driver suffixes
// such as "+asyncpg" are ignored. It returns "" for unknown schemes.
func FromScheme(scheme string) string {
	scheme = strings.ToLower(scheme)
	if i := strings.IndexByte(scheme, '+'); i >= 0 {
		scheme = scheme[:i]
	}
	switch scheme {
	case "postgres", "postgresql", "pg":
		return Postgres
	case "mysql", "mariadb":
		return MySQL
	case "sqlite", "sqlite3", "file":
		return SQLite
	default:
		return ""
	}
}
