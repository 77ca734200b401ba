package model

import "fmt"

// MinPriority and MaxPriority bound a Check's priority field (spec §3: "an
// integer in [1,20]").
const (
	MinPriority = 1
	MaxPriority = 20
)

// ClampPriority keeps a priority within [MinPriority, MaxPriority]. Applied
// only at the input boundary — check creation (newcheck) and an explicit
// Check.SetPriority call (spec §3: "priority (integer in
// [1,20])") — never on the aging increment, which must stay unclamped so
// that spec §8 property 6's "increased by exactly k" holds even once a
// long-queued task's priority exceeds 20 (see SPEC_FULL.md, "Supplemented
// features" #3).
func ClampPriority(p int) int {
	if p < MinPriority {
		return MinPriority
	}
	if p > MaxPriority {
		return MaxPriority
	}
	return p
}

// Check is an integrity check with a fixed cost and a mutable priority. The
// Group field is a weak back-reference used only for printing and removal;
// ownership runs Group -> Check, never the reverse (spec §3).
type Check struct {
	Name     string
	Group    string
	Cost     int64
	Priority int

	destroyed bool
}

// NewCheck builds a Check with its priority clamped to the valid range.
func NewCheck(group, name string, cost int64, priority int) *Check {
	return &Check{
		Group:    group,
		Name:     name,
		Cost:     cost,
		Priority: ClampPriority(priority),
	}
}

// SetPriority clamps and assigns a new priority.
func (c *Check) SetPriority(p int) {
	c.Priority = ClampPriority(p)
}

// String renders the check as "group/name", used by log messages.
func (c *Check) String() string {
	return fmt.Sprintf("%s/%s", c.Group, c.Name)
}

// CheckGroup is a named container owning a mapping from subcheck name to
// Check (spec §3). Keys are unique within a group. A group is created
// lazily on first admission into it and may be left empty after the last
// subcheck is removed; an empty group has no semantic effect.
type CheckGroup struct {
	Name   string
	checks map[string]*Check
}

// NewCheckGroup constructs an empty group.
func NewCheckGroup(name string) *CheckGroup {
	return &CheckGroup{Name: name, checks: make(map[string]*Check)}
}

// Add inserts a check into the group, keyed by its name. It overwrites any
// existing check of the same name (the workload driver is responsible for
// rejecting duplicate newcheck actions before they reach here, if desired;
// the domain model itself does not forbid replacement).
func (g *CheckGroup) Add(c *Check) {
	g.checks[c.Name] = c
}

// Remove detaches and returns the named check, or nil if absent.
func (g *CheckGroup) Remove(name string) *Check {
	c, ok := g.checks[name]
	if !ok {
		return nil
	}
	delete(g.checks, name)
	c.destroyed = true
	return c
}

// Get looks up a check by name without removing it.
func (g *CheckGroup) Get(name string) (*Check, bool) {
	c, ok := g.checks[name]
	return c, ok
}

// Cost returns the aggregate cost of every check currently in the group.
func (g *CheckGroup) Cost() int64 {
	var total int64
	for _, c := range g.checks {
		total += c.Cost
	}
	return total
}

// Len reports how many checks the group currently holds.
func (g *CheckGroup) Len() int {
	return len(g.checks)
}

// Index is the process-wide map from group name to CheckGroup (spec §3's
// check_index).
type Index struct {
	groups map[string]*CheckGroup
}

// NewIndex builds an empty check index.
func NewIndex() *Index {
	return &Index{groups: make(map[string]*CheckGroup)}
}

// GroupOrCreate returns the named group, creating it lazily on first use.
func (idx *Index) GroupOrCreate(name string) *CheckGroup {
	g, ok := idx.groups[name]
	if !ok {
		g = NewCheckGroup(name)
		idx.groups[name] = g
	}
	return g
}

// Group looks up a group by name without creating it.
func (idx *Index) Group(name string) (*CheckGroup, bool) {
	g, ok := idx.groups[name]
	return g, ok
}
