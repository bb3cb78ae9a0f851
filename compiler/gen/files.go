package gen

import (
	"maps"
	"slices"
)

// Files maps slash-separated relative paths to file contents.
type Files map[string]string

// Paths returns the paths in sorted order.
func (f Files) Paths() []string {
	return slices.Sorted(maps.Keys(f))
}

// Size returns the total content size in bytes.
func (f Files) Size() int {
	n := 0
	for _, c := range f {
		n += len(c)
	}
	return n
}

// Warning is a generation diagnostic that does not stop generation.
type Warning struct {
	// Table is empty for schema-wide warnings.
	Table   string
	Message string
}

// String returns "table: message".
func (w Warning) String() string {
	if w.Table == "" {
		return w.Message
	}
	return w.Table + ": " + w.Message
}

// Output is the result of a generation run.
type Output struct {
	Files    Files
	Warnings []Warning
	// Complete is false when generation stopped on an error. The files
	// rendered so far are kept for diagnostics only.
	Complete bool
}
