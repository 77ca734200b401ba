// Package packer implements the bin packer family described in spec §4.2:
// an ordered task store that, on request, produces one bin no larger than
// the scheduler's binsize.
package packer

import "github.com/ja7ad/smmsim/pkg/model"

// StateView is the narrow slice of scheduler state a packer needs. It is
// defined here (rather than imported from pkg/state) so pkg/state can hold
// a Packer without an import cycle; pkg/state.SchedulerState satisfies it.
type StateView interface {
	BinSize() int64
	Time() uint64
	NextBinID() model.BinID
}

// Packer is the capability set every concrete packer implements (spec
// §4.2).
type Packer interface {
	// RequestBin produces the next bin to run on cpu. bin.Cost() <=
	// view.BinSize() always holds; an empty bin means nothing fits (or
	// nothing remains).
	RequestBin(view StateView, cpu int) *model.Bin

	// AddTask inserts a task into the pending set.
	AddTask(t *model.Task)

	// UnusedTasks returns every task the packer currently holds: the
	// ready queue plus any buffered bins.
	UnusedTasks() []*model.Task

	// RemoveSubcheck drops every task whose parent check is check,
	// wherever it currently sits (ready queue or a buffered bin), and
	// returns the tasks it evicted so the caller can log their removal.
	RemoveSubcheck(check *model.Check) []*model.Task
}

// Registry is a name -> constructor lookup built once at startup (spec §9).
type Registry struct {
	constructors map[string]func() Packer
}

// NewRegistry builds the registry with every packer this build ships.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]func() Packer)}
	r.Register("DefaultBin", func() Packer { return newOrderedPacker(priorityLess, false) })
	r.Register("AgingBin", func() Packer { return newOrderedPacker(priorityLess, true) })
	r.Register("RandomBin", func() Packer { return newRandomPacker(1) })
	r.Register("LeastRecentBin", func() Packer { return newOrderedPacker(leastRecentLess, false) })
	r.Register("CostKnapsackBin", func() Packer { return newKnapsackPacker(costValue, false) })
	r.Register("PriorityKnapsackBin", func() Packer { return newKnapsackPacker(priorityValue, true) })
	r.Register("LPBinPack", func() Packer { return newLPBinPacker() })
	return r
}

// Register adds or replaces the constructor for name.
func (r *Registry) Register(name string, ctor func() Packer) {
	r.constructors[name] = ctor
}

// New constructs a packer by its registry name. ok is false if name is
// unknown.
func (r *Registry) New(name string) (Packer, bool) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// Names lists every registered packer name, for validation/help text.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	return names
}

// NewRandomPacker exposes the Random packer constructor with an explicit
// seed, since the registry default (seed 1) cannot take run-time
// parameters. Used by pkg/state when the workload sets the (non-spec,
// additive) "randseed" var — see SPEC_FULL.md, supplemented feature #4.
func NewRandomPacker(seed int64) Packer {
	return newRandomPacker(seed)
}
