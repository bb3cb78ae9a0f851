package introspect

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConnectivity indicates the database could not be opened or reached.
	ErrConnectivity = errors.New("archgen: introspect: connectivity failure")
	// ErrQuery indicates a catalog query failed during the schema walk.
	ErrQuery = errors.New("archgen: introspect: catalog query failed")
	// ErrInvalidOption indicates a bad introspection option.
	ErrInvalidOption = errors.New("archgen: introspect: invalid option")
)

// ConnectivityError reports that the database could not be opened or
// pinged. It is surfaced as is; callers decide whether to retry.
type ConnectivityError struct {
	Dialect string
	Cause   error
}

// Error implements the error interface.
func (e *ConnectivityError) Error() string {
	var b strings.Builder
	b.WriteString("archgen: introspect: cannot connect")
	if e.Dialect != "" {
		b.WriteString(" to ")
		b.WriteString(e.Dialect)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ConnectivityError) Unwrap() error { return e.Cause }

// Is reports whether the target matches ErrConnectivity.
func (e *ConnectivityError) Is(target error) bool { return target == ErrConnectivity }

// NewConnectivityError creates a new ConnectivityError.
func NewConnectivityError(dialect string, cause error) *ConnectivityError {
	return &ConnectivityError{Dialect: dialect, Cause: cause}
}

// QueryError reports a failed catalog query. Table is empty for the table
// enumeration query.
type QueryError struct {
	Table string
	Query string // "tables", "columns", "primary keys" or "foreign keys"
	Cause error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	var b strings.Builder
	b.WriteString("archgen: introspect: query ")
	b.WriteString(e.Query)
	if e.Table != "" {
		b.WriteString(" of table ")
		b.WriteString(e.Table)
	}
	b.WriteString(" failed")
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error { return e.Cause }

// Is reports whether the target matches ErrQuery.
func (e *QueryError) Is(target error) bool { return target == ErrQuery }

// NewQueryError creates a new QueryError.
func NewQueryError(table, query string, cause error) *QueryError {
	return &QueryError{Table: table, Query: query, Cause: cause}
}

// OptionError reports an invalid option value.
type OptionError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *OptionError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("archgen: introspect: option %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("archgen: introspect: option %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches ErrInvalidOption.
func (e *OptionError) Is(target error) bool { return target == ErrInvalidOption }

// NewOptionError creates a new OptionError.
func NewOptionError(option string, value any, message string) *OptionError {
	return &OptionError{Option: option, Value: value, Message: message}
}

// IsConnectivityError reports whether err is a ConnectivityError.
func IsConnectivityError(err error) bool {
	var e *ConnectivityError
	return errors.As(err, &e)
}

// IsQueryError reports whether err is a QueryError.
func IsQueryError(err error) bool {
	var e *QueryError
	return errors.As(err, &e)
}
