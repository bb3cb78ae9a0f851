package output

import (
	"errors"
	"fmt"
)

// ErrWrite indicates a generated file could not be written.
var ErrWrite = errors.New("archgen: write failed")

// WriteError reports the file that could not be written.
type WriteError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	msg := fmt.Sprintf("archgen: write %s", e.Path)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error { return e.Cause }

// Is reports whether the target matches ErrWrite.
func (e *WriteError) Is(target error) bool { return target == ErrWrite }

// IsWriteError reports whether err is a WriteError.
func IsWriteError(err error) bool {
	var e *WriteError
	return errors.As(err, &e)
}
