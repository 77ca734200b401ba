package eventlog

import "github.com/ja7ad/smmsim/pkg/model"

// Record is one row captured by MemorySink.
type Record struct {
	Time   uint64
	Kind   string // "misc", "add_task", "rm_task", "warning", "error", or the event name of a TimeEvent
	Name   string // event name for a TimeEvent record; misc key for Kind=="misc"
	Value  string // misc value, or the warning/error message
	Length int64
	TaskID model.TaskID
	CPU    int
	Bin    model.BinID
}

// MemorySink is an in-process Sink backed by a plain slice, the primary
// assertion surface for the testable properties in spec §8. It never
// errors and never blocks.
type MemorySink struct {
	Records []Record
	closed  bool
}

// NewMemorySink builds an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) AddMisc(key, val string) {
	s.Records = append(s.Records, Record{Kind: "misc", Name: key, Value: val})
}

func (s *MemorySink) AddTask(time uint64, task *model.Task) {
	s.Records = append(s.Records, Record{Time: time, Kind: EventAddTask, TaskID: task.ID})
}

func (s *MemorySink) RemoveTask(time uint64, task *model.Task) {
	s.Records = append(s.Records, Record{Time: time, Kind: EventRemoveTask, TaskID: task.ID})
}

func (s *MemorySink) TimeEvent(time uint64, length int64, name string, task *model.Task, cpu int, bin model.BinID, msg string) {
	rec := Record{Time: time, Kind: name, Name: name, Length: length, CPU: cpu, Bin: bin, Value: msg}
	if task != nil {
		rec.TaskID = task.ID
	}
	s.Records = append(s.Records, rec)
}

func (s *MemorySink) Warning(time uint64, msg string) {
	s.Records = append(s.Records, Record{Time: time, Kind: "warning", Value: msg})
}

func (s *MemorySink) Error(time uint64, msg string) {
	s.Records = append(s.Records, Record{Time: time, Kind: "error", Value: msg})
}

func (s *MemorySink) EndLog() error {
	s.closed = true
	return nil
}

// Closed reports whether EndLog has been called, for tests that assert the
// sink was properly torn down.
func (s *MemorySink) Closed() bool {
	return s.closed
}

// Filter returns every record whose Kind matches kind, in log order.
func (s *MemorySink) Filter(kind string) []Record {
	var out []Record
	for _, r := range s.Records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
