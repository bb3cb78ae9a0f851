package schema

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidSchema indicates a schema model that breaks an invariant.
	ErrInvalidSchema = errors.New("archgen: invalid schema")
	// ErrInvalidGroups indicates a bad table group assignment.
	ErrInvalidGroups = errors.New("archgen: invalid table groups")
	// ErrInvalidSnapshot indicates a snapshot that cannot be decoded.
	ErrInvalidSnapshot = errors.New("archgen: invalid schema snapshot")
)

// Error describes an invariant violation in the schema model.
type Error struct {
	Table   string
	Column  string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("archgen: schema error")
	if e.Table != "" {
		b.WriteString(" on table ")
		b.WriteString(e.Table)
	}
	if e.Column != "" {
		b.WriteString(" column ")
		b.WriteString(e.Column)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches ErrInvalidSchema.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewError creates a new schema Error.
func NewError(table, column, message string) *Error {
	return &Error{Table: table, Column: column, Message: message}
}

// GroupError describes an invalid table group.
type GroupError struct {
	Group   string
	Table   string
	Message string
}

// Error implements the error interface.
func (e *GroupError) Error() string {
	var b strings.Builder
	b.WriteString("archgen: group error")
	if e.Group != "" {
		b.WriteString(" on group ")
		b.WriteString(`"` + e.Group + `"`)
	}
	if e.Table != "" {
		b.WriteString(" table ")
		b.WriteString(e.Table)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Is reports whether the target matches ErrInvalidGroups.
func (e *GroupError) Is(target error) bool {
	return target == ErrInvalidGroups
}

// NewGroupError creates a new GroupError.
func NewGroupError(group, table, message string) *GroupError {
	return &GroupError{Group: group, Table: table, Message: message}
}

// IsSchemaError reports whether err is a schema Error.
func IsSchemaError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// IsGroupError reports whether err is a GroupError.
func IsGroupError(err error) bool {
	var e *GroupError
	return errors.As(err, &e)
}
