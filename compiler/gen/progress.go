package gen

import "fmt"

// ProgressFunc receives generation progress: a percentage that never
// decreases within a run, and a message. It is called synchronously and
// cannot influence generation.
type ProgressFunc func(percent int, message string)

// Progress checkpoints.
const (
	ProgressStart    = 0
	ProgressTables   = 70
	ProgressSchema   = 80
	ProgressComplete = 100
)

// Progress messages.
const (
	MsgStart    = "Starting generation..."
	MsgSchema   = "Generating entry point and configuration files..."
	MsgComplete = "Generation complete!"
)

// tableProgress returns the checkpoint of the i-th of n tables, linear in
// [0, 70).
func tableProgress(i, n int) int {
	return i * ProgressTables / n
}

// MsgTable returns the message reported when a table is processed.
func MsgTable(name string) string {
	return fmt.Sprintf("Processing table: %s", name)
}
