package schema

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is the snapshot format written by WriteSnapshot.
const SnapshotVersion = 1

type snapshot struct {
	Version int     `msgpack:"version"`
	Schema  *Schema `msgpack:"schema"`
}

// WriteSnapshot encodes s to w in msgpack form.
func WriteSnapshot(w io.Writer, s *Schema) error {
	if s == nil {
		return fmt.Errorf("%w: nil schema", ErrInvalidSnapshot)
	}
	return msgpack.NewEncoder(w).Encode(&snapshot{Version: SnapshotVersion, Schema: s})
}

// ReadSnapshot decodes a schema written by WriteSnapshot. The column key
// flags are recomputed from the key lists of every table.
func ReadSnapshot(r io.Reader) (*Schema, error) {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}
	if snap.Schema == nil {
		return nil, fmt.Errorf("%w: missing schema", ErrInvalidSnapshot)
	}
	for _, t := range snap.Schema.Tables {
		t.Link()
	}
	return snap.Schema, nil
}
