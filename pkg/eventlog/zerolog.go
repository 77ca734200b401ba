package eventlog

import (
	"io"

	"github.com/ja7ad/smmsim/pkg/model"
	"github.com/rs/zerolog"
)

// ZerologSink is the production Sink backend: one structured JSON line per
// event, suitable for piping into any downstream analytics tool (spec §1
// names SQLite and reporting scripts as external collaborators; this sink
// is the generic replacement their interface binds to).
type ZerologSink struct {
	log zerolog.Logger
}

// NewZerologSink writes one JSON object per event to w.
func NewZerologSink(w io.Writer) *ZerologSink {
	return &ZerologSink{log: zerolog.New(w).With().Timestamp().Logger()}
}

func (s *ZerologSink) AddMisc(key, val string) {
	s.log.Info().Str("kind", "misc").Str("key", key).Str("val", val).Msg("misc")
}

func (s *ZerologSink) AddTask(time uint64, task *model.Task) {
	s.log.Info().
		Str("kind", EventAddTask).
		Uint64("time", time).
		Str("task", string(task.ID)).
		Str("check", task.Parent.String()).
		Int64("cost", task.Cost).
		Msg(EventAddTask)
}

func (s *ZerologSink) RemoveTask(time uint64, task *model.Task) {
	s.log.Info().
		Str("kind", EventRemoveTask).
		Uint64("time", time).
		Str("task", string(task.ID)).
		Msg(EventRemoveTask)
}

func (s *ZerologSink) TimeEvent(time uint64, length int64, name string, task *model.Task, cpu int, bin model.BinID, msg string) {
	ev := s.log.Info().
		Str("kind", name).
		Uint64("time", time).
		Int64("length", length)
	if task != nil {
		ev = ev.Str("task", string(task.ID))
	}
	if cpu >= 0 {
		ev = ev.Int("cpu", cpu)
	}
	if bin != 0 {
		ev = ev.Uint64("bin", uint64(bin))
	}
	if msg != "" {
		ev = ev.Str("msg", msg)
	}
	ev.Msg(name)
}

func (s *ZerologSink) Warning(time uint64, msg string) {
	s.log.Warn().Uint64("time", time).Msg(msg)
}

func (s *ZerologSink) Error(time uint64, msg string) {
	s.log.Error().Uint64("time", time).Msg(msg)
}

func (s *ZerologSink) EndLog() error {
	s.log.Info().Str("kind", EventEndSim).Msg("log closed")
	return nil
}
