package state

import (
	"fmt"

	"github.com/ja7ad/smmsim/pkg/eventlog"
	"github.com/ja7ad/smmsim/pkg/model"
)

// AddCheck implements spec §4.3 "Adding a check": look up or create the
// group, insert the subcheck, split it into tasks with the current
// splitter and taskgran, log add_check, log add_task for each new task,
// and push each into the active packer.
func (s *SchedulerState) AddCheck(group, name string, cost int64, priority int) *model.Check {
	g := s.index.GroupOrCreate(group)
	check := model.NewCheck(group, name, cost, priority)
	g.Add(check)

	s.sink.TimeEvent(s.time, 0, eventlog.EventAddCheck, nil, -1, 0, check.String())

	tasks := s.activeSplitter.Split(check, s.params.TaskGran, s.time)
	for _, t := range tasks {
		s.sink.AddTask(s.time, t)
		s.activePacker.AddTask(t)
	}

	return check
}

// RemoveCheck implements spec §4.3 "Removing a check": log rm_check,
// detach the subcheck from its group, and call remove_subcheck on the
// active packer with that Check. Per SPEC_FULL.md's supplemented feature
// #2, an unknown group is logged as an error the same way an unknown check
// within a known group is.
func (s *SchedulerState) RemoveCheck(group, name string) {
	g, ok := s.index.Group(group)
	if !ok {
		s.sink.Error(s.time, fmt.Sprintf("removecheck: unknown group %q", group))
		return
	}

	check := g.Remove(name)
	if check == nil {
		s.sink.Error(s.time, fmt.Sprintf("removecheck: unknown check %q/%q", group, name))
		return
	}

	s.sink.TimeEvent(s.time, 0, eventlog.EventRemoveCheck, nil, -1, 0, check.String())

	removed := s.activePacker.RemoveSubcheck(check)
	for _, t := range removed {
		s.sink.RemoveTask(s.time, t)
	}
}

// RanTask implements spec §4.3's "ranTask policy": after a task runs,
// either reschedule it (priority reset from the parent check, logged
// rm_task+add_task, reinserted) or discard it (logged rm_task, dropped).
func (s *SchedulerState) RanTask(t *model.Task) {
	switch s.params.RanTask {
	case RanTaskReschedule:
		t.Priority = t.Parent.Priority
		s.sink.RemoveTask(s.time, t)
		s.sink.AddTask(s.time, t)
		s.activePacker.AddTask(t)
	case RanTaskDiscard:
		s.sink.RemoveTask(s.time, t)
	default:
		s.sink.Error(s.time, fmt.Sprintf("rantask: unrecognized policy %q", s.params.RanTask))
	}
}
