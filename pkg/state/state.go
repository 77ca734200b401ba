// Package state implements the scheduler's authoritative mutable state
// (spec §3, §4.3): virtual time, tunable parameters, the check index, and
// the currently installed packer and splitter strategies.
package state

import (
	"fmt"

	"github.com/ja7ad/smmsim/pkg/eventlog"
	"github.com/ja7ad/smmsim/pkg/model"
	"github.com/ja7ad/smmsim/pkg/packer"
	"github.com/ja7ad/smmsim/pkg/splitter"
)

// RanTaskPolicy is the value of the "rantask" var (spec §4.3, §6.1).
type RanTaskPolicy string

const (
	RanTaskReschedule RanTaskPolicy = "reschedule"
	RanTaskDiscard    RanTaskPolicy = "discard"
)

// Params holds every tunable named in spec §6.1, with its default value.
type Params struct {
	TaskGran      int64
	SMMPerSecond  int64
	SMMOverhead   int64
	BinSize       int64
	CPUs          int
	BinPacker     string
	CheckSplitter string
	RanTask       RanTaskPolicy
	// RandSeed is additive (SPEC_FULL.md "Supplemented features" #4): seeds
	// the Random packer deterministically. Not part of spec §6.1's table.
	RandSeed int64
}

// DefaultParams returns the factory defaults from spec §6.1.
func DefaultParams() Params {
	return Params{
		TaskGran:      50,
		SMMPerSecond:  10,
		SMMOverhead:   70,
		BinSize:       100,
		CPUs:          1,
		BinPacker:     "DefaultBin",
		CheckSplitter: "DefaultTasks",
		RanTask:       RanTaskReschedule,
		RandSeed:      1,
	}
}

// SchedulerState is the process-wide authoritative state (spec §3).
type SchedulerState struct {
	time uint64
	done bool

	params Params

	index *model.Index

	activePacker   packer.Packer
	activeSplitter splitter.Splitter

	packerRegistry   *packer.Registry
	splitterRegistry *splitter.Registry

	binIDs model.BinIDCounter

	sink eventlog.Sink
}

// New builds a SchedulerState with the factory defaults installed, writing
// through to sink. It panics if the default packer/splitter names are not
// registered — a build-time bug, not a runtime condition.
func New(sink eventlog.Sink) *SchedulerState {
	s := &SchedulerState{
		params:           DefaultParams(),
		index:            model.NewIndex(),
		packerRegistry:   packer.NewRegistry(),
		splitterRegistry: splitter.NewRegistry(),
		sink:             sink,
	}

	p, ok := s.packerRegistry.New(s.params.BinPacker)
	if !ok {
		panic(fmt.Sprintf("state: unknown default packer %q", s.params.BinPacker))
	}
	s.activePacker = p

	sp, ok := s.splitterRegistry.New(s.params.CheckSplitter)
	if !ok {
		panic(fmt.Sprintf("state: unknown default splitter %q", s.params.CheckSplitter))
	}
	s.activeSplitter = sp

	return s
}

// --- packer.StateView ---

// BinSize implements packer.StateView.
func (s *SchedulerState) BinSize() int64 { return s.params.BinSize }

// Time implements packer.StateView.
func (s *SchedulerState) Time() uint64 { return s.time }

// NextBinID implements packer.StateView.
func (s *SchedulerState) NextBinID() model.BinID { return s.binIDs.Next() }

// --- accessors ---

// Params returns a copy of the current parameter set.
func (s *SchedulerState) Params() Params { return s.params }

// Done reports whether end_sim has fired.
func (s *SchedulerState) Done() bool { return s.done }

// Packer returns the currently installed packer.
func (s *SchedulerState) Packer() packer.Packer { return s.activePacker }

// Sink returns the event log sink.
func (s *SchedulerState) Sink() eventlog.Sink { return s.sink }

// Index returns the check index (group name -> CheckGroup).
func (s *SchedulerState) Index() *model.Index { return s.index }

// StateInvariantError is the panic value raised when a state invariant is
// violated (spec §7: "assertion failure"). The simulation loop's top-level
// recover (pkg/sim.Simulator.Run) converts it into a returned error rather
// than letting it unwind as a raw runtime panic.
type StateInvariantError struct {
	Msg string
}

func (e *StateInvariantError) Error() string { return "state: invariant violated: " + e.Msg }

// AdvanceTo moves virtual time forward to t. Per spec §3 ("time only moves
// forward; assertions must catch any attempt to decrement it"), moving
// backwards is a state invariant violation and panics with a
// *StateInvariantError.
func (s *SchedulerState) AdvanceTo(t uint64) {
	if t < s.time {
		panic(&StateInvariantError{Msg: fmt.Sprintf("time moved backwards: %d -> %d", s.time, t)})
	}
	s.time = t
}

// EndSim latches done, matching the workload driver's "endsim" action
// (spec §4.4).
func (s *SchedulerState) EndSim() {
	s.done = true
}
