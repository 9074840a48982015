// Package event defines the append-only event log format and its file IO.
// Events are the single source of truth; everything else in the repository
// is derived by replaying them.
package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion is the only event schema version this build writes.
const SchemaVersion = 1

// Operation identifies what an event does to a task.
type Operation string

// Known operations, serialized lowercase on the wire.
const (
	OpCreate   Operation = "create"
	OpUpdate   Operation = "update"
	OpAssign   Operation = "assign"
	OpComment  Operation = "comment"
	OpLink     Operation = "link"
	OpUnlink   Operation = "unlink"
	OpComplete Operation = "complete"
	OpReopen   Operation = "reopen"
	OpArchive  Operation = "archive"
)

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OpCreate, OpUpdate, OpAssign, OpComment, OpLink, OpUnlink,
		OpComplete, OpReopen, OpArchive:
		return true
	}
	return false
}

// Event is one immutable record in the log. The envelope is fixed; Data
// holds the operation-dependent payload and is decoded on demand.
type Event struct {
	Version int             `json:"v"`
	Op      Operation       `json:"op"`
	ID      string          `json:"id"`
	TS      time.Time       `json:"ts"`
	By      string          `json:"by"`
	Branch  string          `json:"branch"`
	Data    json.RawMessage `json:"d"`
}

// envelope mirrors Event with pointer fields so that missing envelope
// fields can be told apart from zero values during decoding.
type envelope struct {
	Version *int             `json:"v"`
	Op      *Operation       `json:"op"`
	ID      *string          `json:"id"`
	TS      *time.Time       `json:"ts"`
	By      *string          `json:"by"`
	Branch  *string          `json:"branch"`
	Data    *json.RawMessage `json:"d"`
}

// UnmarshalJSON decodes an event and rejects records that do not carry the
// full envelope or use an unknown operation. Payload contents are not
// validated here; they are decoded permissively when applied.
func (e *Event) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	required := []struct {
		name string
		ok   bool
	}{
		{"v", env.Version != nil},
		{"op", env.Op != nil},
		{"id", env.ID != nil},
		{"ts", env.TS != nil},
		{"by", env.By != nil},
		{"branch", env.Branch != nil},
		{"d", env.Data != nil},
	}
	for _, f := range required {
		if !f.ok {
			return fmt.Errorf("missing field %q", f.name)
		}
	}
	if !env.Op.Valid() {
		return fmt.Errorf("unknown operation %q", *env.Op)
	}

	e.Version = *env.Version
	e.Op = *env.Op
	e.ID = *env.ID
	e.TS = *env.TS
	e.By = *env.By
	e.Branch = *env.Branch
	e.Data = *env.Data
	return nil
}
