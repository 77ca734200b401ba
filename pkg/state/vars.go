package state

import (
	"fmt"
	"strconv"

	"github.com/ja7ad/smmsim/pkg/eventlog"
	"github.com/ja7ad/smmsim/pkg/packer"
)

// ValidRanTaskValues enumerates the only accepted "rantask" values (spec
// §6.1, §6.2: "values are validated against the per-key constraints, e.g.
// enum membership").
var ValidRanTaskValues = []RanTaskPolicy{RanTaskReschedule, RanTaskDiscard}

// UpdateVar applies one key/value pair from a changevars action (spec
// §4.4), logs a varchange event, and swaps the packer/splitter strategy
// object when the corresponding key changes (spec §4.3).
func (s *SchedulerState) UpdateVar(key, value string) error {
	switch key {
	case "taskgran":
		v, err := parseInt(value)
		if err != nil {
			return err
		}
		s.params.TaskGran = v
	case "smmpersecond":
		v, err := parseInt(value)
		if err != nil {
			return err
		}
		s.params.SMMPerSecond = v
	case "smmoverhead":
		v, err := parseInt(value)
		if err != nil {
			return err
		}
		s.params.SMMOverhead = v
	case "binsize":
		v, err := parseInt(value)
		if err != nil {
			return err
		}
		s.params.BinSize = v
	case "cpus":
		v, err := parseInt(value)
		if err != nil {
			return err
		}
		s.params.CPUs = int(v)
	case "binpacker":
		if err := s.swapPacker(value); err != nil {
			return err
		}
	case "checksplitter":
		if err := s.swapSplitter(value); err != nil {
			return err
		}
	case "rantask":
		policy := RanTaskPolicy(value)
		if policy != RanTaskReschedule && policy != RanTaskDiscard {
			return fmt.Errorf("state: invalid rantask value %q", value)
		}
		s.params.RanTask = policy
	case "randseed":
		v, err := parseInt(value)
		if err != nil {
			return err
		}
		s.params.RandSeed = v
		if s.params.BinPacker == "RandomBin" {
			// Re-seed by rebuilding the Random packer in place, preserving
			// whatever tasks it currently holds (same transfer discipline
			// as any other packer swap, spec §4.3).
			fresh := packer.NewRandomPacker(v)
			for _, t := range s.activePacker.UnusedTasks() {
				fresh.AddTask(t)
			}
			s.activePacker = fresh
		}
	default:
		return fmt.Errorf("state: unknown var %q", key)
	}

	s.sink.TimeEvent(s.time, 0, eventlog.EventVarChange, nil, -1, 0, fmt.Sprintf("%s=%s", key, value))
	return nil
}

// swapPacker implements spec §4.3: "Swapping the packer (via a binpacker
// variable change) transfers all of the old packer's unused_tasks into the
// new one via add_task, then discards the old."
func (s *SchedulerState) swapPacker(name string) error {
	var next packer.Packer
	var ok bool
	if name == "RandomBin" {
		next = packer.NewRandomPacker(s.params.RandSeed)
		ok = true
	} else {
		next, ok = s.packerRegistry.New(name)
	}
	if !ok {
		return fmt.Errorf("state: unknown binpacker %q", name)
	}

	for _, t := range s.activePacker.UnusedTasks() {
		next.AddTask(t)
	}
	s.activePacker = next
	s.params.BinPacker = name
	return nil
}

// swapSplitter replaces the splitter in place (spec §4.3: "Swapping the
// splitter is similarly a replace-in-place"). A splitter holds no pending
// state, so there is nothing to transfer.
func (s *SchedulerState) swapSplitter(name string) error {
	next, ok := s.splitterRegistry.New(name)
	if !ok {
		return fmt.Errorf("state: unknown checksplitter %q", name)
	}
	s.activeSplitter = next
	s.params.CheckSplitter = name
	return nil
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("state: invalid integer value %q: %w", s, err)
	}
	return v, nil
}
