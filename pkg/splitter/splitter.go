// Package splitter converts a Check into the sequence of Tasks the packer
// family schedules (spec §4.1).
package splitter

import "github.com/ja7ad/smmsim/pkg/model"

// Splitter subdivides a check of arbitrary cost into tasks of cost no
// greater than granularity g.
type Splitter interface {
	// Split produces an ordered sequence of tasks for check, each of cost
	// <= g (the last may be smaller). t is the virtual time of admission,
	// used to seed every task's LastTimeRun. Split has no side effects on
	// check.
	Split(check *model.Check, g int64, t uint64) []*model.Task
}

// Registry is a name -> constructor lookup, built once at startup, the
// idiomatic replacement for "pluggable strategy classes discovered by
// reflection" (spec §9).
type Registry struct {
	constructors map[string]func() Splitter
}

// NewRegistry builds the registry with every splitter this build ships.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]func() Splitter)}
	r.Register("DefaultTasks", func() Splitter { return &Default{} })
	return r
}

// Register adds or replaces the constructor for name.
func (r *Registry) Register(name string, ctor func() Splitter) {
	r.constructors[name] = ctor
}

// New constructs a splitter by its registry name. ok is false if name is
// unknown.
func (r *Registry) New(name string) (Splitter, bool) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// Names lists every registered splitter name, for validation/help text.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	return names
}
