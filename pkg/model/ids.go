// Package model holds the domain types shared by every other package:
// check groups, checks, tasks and bins, and the invariants that bind them
// together (see spec §3).
package model

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// BinID uniquely identifies a Bin across the lifetime of a run. Bin ids are
// the primary key linking event-log rows back to a window (spec §3).
type BinID uint64

// BinIDCounter hands out process-wide monotonically increasing bin ids. It
// is explicitly an atomic counter (rather than a plain incrementing field)
// to communicate intent even though the simulator is single-threaded (spec
// §9, §5: "implementers must make this explicit").
type BinIDCounter struct {
	next atomic.Uint64
}

// Next returns the next unique bin id, starting at 1.
func (c *BinIDCounter) Next() BinID {
	return BinID(c.next.Add(1))
}

// TaskID is a stable identity assigned once per task, at the moment the
// splitter creates it, so the event log can refer to the same task across
// its run/reinsert/run lifecycle (spec §6.3: "tasks are referenced by a
// stable per-task id assigned at first insertion").
type TaskID string

// NewTaskID mints a fresh stable task id.
func NewTaskID() TaskID {
	return TaskID(uuid.NewString())
}
