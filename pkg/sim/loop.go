// Package sim implements the discrete-event simulation loop (spec §4.5):
// it drains the workload driver, requests one bin per CPU per window,
// merges the per-CPU schedules into a single ascending timeline, and steps
// virtual time across it while the event log sink records every transition.
package sim

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ja7ad/smmsim/pkg/eventlog"
	"github.com/ja7ad/smmsim/pkg/model"
	"github.com/ja7ad/smmsim/pkg/state"
	"github.com/ja7ad/smmsim/pkg/workload"
)

const microsecondsPerSecond = 1_000_000

// Config selects the workload driver's read and validation discipline
// (spec §4.4, §6.4 CLI surface).
type Config struct {
	Interactive    bool
	ValidateSchema bool
}

// Simulator owns one run: a SchedulerState, its workload driver, and the
// sink both write through to.
type Simulator struct {
	state  *state.SchedulerState
	driver *workload.Driver
	sink   eventlog.Sink
}

// New builds a Simulator reading workload actions from src.
func New(src io.Reader, sink eventlog.Sink, cfg Config) (*Simulator, error) {
	st := state.New(sink)
	d, err := workload.NewDriver(src, st, sink, cfg.Interactive, cfg.ValidateSchema)
	if err != nil {
		return nil, err
	}
	return &Simulator{state: st, driver: d, sink: sink}, nil
}

// State exposes the simulator's scheduler state (read-only use: tests and
// the CLI's post-run summary).
func (s *Simulator) State() *state.SchedulerState { return s.state }

// Run drives the simulation to completion (spec §4.5). It returns a non-nil
// error on a hard failure from the workload driver (malformed JSON, or a
// schema violation in non-interactive mode) or on a state-invariant
// violation recovered from a *state.StateInvariantError panic (spec §7:
// "assertion failure ... converted into a fatal log line and non-zero
// exit") — the run is otherwise expected to always terminate via an endsim
// action or stream exhaustion.
func (s *Simulator) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = s.recoverInvariant(r)
		}
	}()

	s.logStartupMisc()

	// Initialization: absorb all time-zero events before the first window
	// (spec §4.5 "Initialization").
	if err := s.driver.UpdateWorkload(); err != nil {
		return fmt.Errorf("sim: initial workload absorption: %w", err)
	}

	for !s.state.Done() {
		if err := s.driver.UpdateWorkload(); err != nil {
			return fmt.Errorf("sim: workload update: %w", err)
		}
		if s.state.Done() {
			break
		}
		s.runWindow()
	}

	// Termination: drain any remaining events, emit end_sim and closing
	// misc rows, close the sink (spec §4.5 "Termination").
	if err := s.driver.UpdateWorkload(); err != nil {
		return fmt.Errorf("sim: draining trailing workload: %w", err)
	}
	s.sink.TimeEvent(s.state.Time(), 0, eventlog.EventEndSim, nil, -1, 0, "")
	s.sink.AddMisc("run_phase", "end")
	return s.sink.EndLog()
}

// recoverInvariant converts a *state.StateInvariantError panic into a
// logged fatal error and a returned error value (spec §7). Any other
// recovered value is a bug outside the documented taxonomy and is
// re-panicked rather than swallowed.
func (s *Simulator) recoverInvariant(r any) error {
	inv, ok := r.(*state.StateInvariantError)
	if !ok {
		panic(r)
	}
	s.sink.Error(s.state.Time(), "fatal: "+inv.Error())
	return fmt.Errorf("sim: %w", inv)
}

// logStartupMisc emits the run-identifying misc rows (SPEC_FULL.md
// "Supplemented features" #1, grounded on SMM/simulator.py's start-of-run
// metadata dump): a platform string, a stable run id, a wall-clock stamp
// (for log correlation only — never read back to drive simulated time),
// and the full set of active parameter values.
func (s *Simulator) logStartupMisc() {
	s.sink.AddMisc("platform", "smmsim")
	s.sink.AddMisc("run_id", uuid.NewString())
	s.sink.AddMisc("start_wall_clock", time.Now().UTC().Format(time.RFC3339Nano))

	p := s.state.Params()
	s.sink.AddMisc("param.taskgran", strconv.FormatInt(p.TaskGran, 10))
	s.sink.AddMisc("param.smmpersecond", strconv.FormatInt(p.SMMPerSecond, 10))
	s.sink.AddMisc("param.smmoverhead", strconv.FormatInt(p.SMMOverhead, 10))
	s.sink.AddMisc("param.binsize", strconv.FormatInt(p.BinSize, 10))
	s.sink.AddMisc("param.cpus", strconv.Itoa(p.CPUs))
	s.sink.AddMisc("param.binpacker", p.BinPacker)
	s.sink.AddMisc("param.checksplitter", p.CheckSplitter)
	s.sink.AddMisc("param.rantask", string(p.RanTask))
	s.sink.AddMisc("param.randseed", strconv.FormatInt(p.RandSeed, 10))

	s.sink.AddMisc("run_phase", "start")
}

type windowBin struct {
	bin *model.Bin
	cpu int
}

// scheduleItem is one entry of the merged, time-ordered walk across every
// CPU's bin for the current window (spec §4.5 step 5). A nil task marks the
// bin-end sentinel.
type scheduleItem struct {
	task   *model.Task
	offset int64
	binIdx int
	cpu    int
	bin    model.BinID
}

// runWindow executes spec §4.5 steps 2-7: request one bin per CPU, merge
// their task schedules into a single ascending timeline, and walk it.
func (s *Simulator) runWindow() {
	params := s.state.Params()
	nextTime := s.state.Time() + uint64(microsecondsPerSecond/params.SMMPerSecond)

	windowStart := s.state.Time()
	windows := make([]windowBin, 0, params.CPUs)
	for cpu := 0; cpu < params.CPUs; cpu++ {
		bin := s.state.Packer().RequestBin(s.state, cpu)
		s.sink.TimeEvent(windowStart, params.SMMOverhead, eventlog.EventSMI, nil, cpu, bin.ID, "")
		windows = append(windows, windowBin{bin: bin, cpu: cpu})
	}

	s.state.AdvanceTo(windowStart + uint64(params.SMMOverhead))
	base := s.state.Time()

	items := mergeSchedule(windows)

	for _, wb := range windows {
		s.sink.TimeEvent(base, 0, eventlog.EventBinStart, nil, wb.cpu, wb.bin.ID, "")
	}

	for _, it := range items {
		// Per-CPU start offsets are independent prefix sums (each bin counts
		// from 0), so two items from different CPUs can carry the same
		// offset. There is only one virtual clock (spec §5: "no real
		// concurrency"), so the offset is a floor, not an absolute jump:
		// advancing only forward keeps the merge order as the interleaving
		// priority without ever violating the monotonic-time invariant.
		target := base + uint64(it.offset)
		if target > s.state.Time() {
			s.state.AdvanceTo(target)
		}
		t := s.state.Time()

		if it.task == nil {
			s.sink.TimeEvent(t, 0, eventlog.EventBinEnd, nil, it.cpu, it.bin, "")
			continue
		}

		s.sink.TimeEvent(t, it.task.Cost, eventlog.EventRunTask, it.task, it.cpu, it.bin, "")
		finishedAt := t + uint64(it.task.Cost)
		it.task.Run(finishedAt)
		s.state.AdvanceTo(finishedAt)
		s.state.RanTask(it.task)
	}

	if nextTime > s.state.Time() {
		s.state.AdvanceTo(nextTime)
	} else {
		overrun := model.Microseconds(s.state.Time() - nextTime)
		s.sink.Warning(s.state.Time(), fmt.Sprintf(
			"current bin will not terminate before next bin is scheduled (overrun %s)", overrun.Humanized()))
	}
}

// mergeSchedule flattens every bin's tasks into prefix-sum start offsets, one
// bin-end sentinel per bin, and sorts the whole set ascending by offset with
// ties broken by bin index — equivalently CPU id, since bins are produced in
// CPU order (spec §4.5 step 5, §5 ordering guarantees).
func mergeSchedule(windows []windowBin) []scheduleItem {
	var items []scheduleItem
	for idx, wb := range windows {
		var offset int64
		for _, task := range wb.bin.Tasks {
			items = append(items, scheduleItem{task: task, offset: offset, binIdx: idx, cpu: wb.cpu, bin: wb.bin.ID})
			offset += task.Cost
		}
		items = append(items, scheduleItem{task: nil, offset: offset, binIdx: idx, cpu: wb.cpu, bin: wb.bin.ID})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].offset != items[j].offset {
			return items[i].offset < items[j].offset
		}
		return items[i].binIdx < items[j].binIdx
	})
	return items
}
