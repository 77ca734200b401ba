// Package eventlog implements the consumer-facing event log contract from
// spec §6.3: a sink that records every timestamped state transition the
// simulation loop produces. The sink is a pure recording surface — it
// never feeds back into simulation decisions.
package eventlog

import "github.com/ja7ad/smmsim/pkg/model"

// Event names used by the core (spec §6.3).
const (
	EventAddTask   = "add_task"
	EventRemoveTask = "rm_task"
	EventSMI       = "SMI"
	EventBinStart  = "bin_start"
	EventRunTask   = "run_task"
	EventBinEnd    = "bin_end"
	EventAddCheck  = "add_check"
	EventRemoveCheck = "rm_check"
	EventVarChange = "varchange"
	EventEndSim    = "end_sim"
)

// Sink is the event log contract every component writes through (spec
// §6.3). Implementations must not block the simulation loop indefinitely;
// the reference ZerologSink writes synchronously and the MemorySink never
// blocks.
type Sink interface {
	// AddMisc records a free-form key/value row, used for platform and
	// run metadata (spec §4.5).
	AddMisc(key, val string)

	// AddTask records that task became known to the packer at time.
	AddTask(time uint64, task *model.Task)

	// RemoveTask records that task left the packer at time (run to
	// completion and discarded, or evicted by a check removal).
	RemoveTask(time uint64, task *model.Task)

	// TimeEvent records a named, timestamped event of the given virtual
	// duration (0 for instantaneous). task, cpu and bin are optional;
	// pass zero values (nil task, -1 cpu, 0 bin) when not applicable.
	TimeEvent(time uint64, length int64, name string, task *model.Task, cpu int, bin model.BinID, msg string)

	// Warning records a non-fatal anomaly (spec §7: "Overrun warnings").
	Warning(time uint64, msg string)

	// Error records a logical error (spec §7). Recording it does not halt
	// the run.
	Error(time uint64, msg string)

	// EndLog flushes and closes the sink. Safe to call once, at the end
	// of a run.
	EndLog() error
}
