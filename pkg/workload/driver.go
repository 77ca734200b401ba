// Package workload implements the incremental JSON-lines driver described in
// spec §4.4 and §9: actions are decoded one at a time off an open stream,
// never requiring the whole workload to be buffered in memory, validated
// against the action schema, and dispatched into a state.SchedulerState once
// their time has arrived.
package workload

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ja7ad/smmsim/pkg/eventlog"
	"github.com/ja7ad/smmsim/pkg/state"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Driver pulls Actions off src and dispatches them into a SchedulerState.
// It is not safe for concurrent use.
type Driver struct {
	r              *bufio.Reader
	state          *state.SchedulerState
	sink           eventlog.Sink
	interactive    bool
	validateSchema bool
	schema         *jsonschema.Schema

	buf          []byte
	streamClosed bool
	next         *Action
	autoEnded    bool
}

// NewDriver compiles the action schema and wraps src for incremental
// decoding. interactive selects line-oriented reads and warn-and-skip schema
// handling (spec §9); non-interactive selects 1024-byte chunked reads and
// fatal schema handling.
func NewDriver(src io.Reader, st *state.SchedulerState, sink eventlog.Sink, interactive, validateSchema bool) (*Driver, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("workload: compiling action schema: %w", err)
	}
	return &Driver{
		r:              bufio.NewReader(src),
		state:          st,
		sink:           sink,
		interactive:    interactive,
		validateSchema: validateSchema,
		schema:         schema,
	}, nil
}

// UpdateWorkload dispatches every pending action whose time has arrived
// (spec §4.5 step 1: "while next_event.time <= state.time, dispatch"),
// stopping as soon as the lookahead event is in the future or the stream is
// exhausted. A non-nil error is a hard failure (malformed JSON or, in
// non-interactive mode, a schema violation) and the caller should abort the
// run without mutating further.
func (d *Driver) UpdateWorkload() error {
	for {
		if err := d.ensureNext(); err != nil {
			return err
		}
		if d.next == nil {
			return nil
		}
		if d.next.Time < 0 || uint64(d.next.Time) > d.state.Time() {
			return nil
		}
		act := d.next
		d.next = nil
		d.dispatch(act)
	}
}

// ensureNext fills d.next if empty. When the underlying stream has no more
// events to offer, it signals end_sim on the state directly (spec §4.4:
// "When the underlying stream signals end-of-input with no more events, the
// driver signals end_sim.") rather than leaving the caller to guess.
func (d *Driver) ensureNext() error {
	if d.next != nil || d.autoEnded {
		return nil
	}
	act, err := d.decodeNext()
	if err != nil {
		return err
	}
	if act == nil {
		d.autoEnded = true
		d.state.EndSim()
		return nil
	}
	d.next = act
	return nil
}

func (d *Driver) dispatch(act *Action) {
	switch act.Name {
	case actionEndSim:
		d.state.EndSim()
	case actionNewCheck:
		for _, cs := range act.Checks {
			d.state.AddCheck(cs.Group, cs.Name, cs.Cost, cs.Priority)
		}
	case actionRemoveCheck:
		for _, cs := range act.Checks {
			d.state.RemoveCheck(cs.Group, cs.Name)
		}
	case actionChangeVars:
		for k, raw := range act.Vars {
			if err := d.state.UpdateVar(k, rawToVarString(raw)); err != nil {
				d.sink.Error(d.state.Time(), fmt.Sprintf("changevars: %v", err))
			}
		}
	default:
		d.sink.Error(d.state.Time(), fmt.Sprintf("workload: unrecognized action %q", act.Name))
	}
}

// decodeNext pulls and validates the next well-formed action out of the
// stream, refilling the internal buffer as needed. It returns (nil, nil)
// once the stream is cleanly exhausted with nothing left to decode.
func (d *Driver) decodeNext() (*Action, error) {
	for {
		trimmed := bytes.TrimLeft(d.buf, " \t\r\n")
		d.buf = trimmed

		if len(d.buf) == 0 {
			if d.streamClosed {
				return nil, nil
			}
			if err := d.fill(); err != nil {
				return nil, err
			}
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(d.buf))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			// Treat any decode failure as "need more bytes" (spec §9): a
			// partial object at the tail of the buffer looks identical to a
			// syntax error until more input arrives. Only once the stream is
			// closed does a still-failing decode become a hard error.
			if d.streamClosed {
				return nil, fmt.Errorf("workload: truncated or malformed JSON at end of stream: %w", err)
			}
			if err := d.fill(); err != nil {
				return nil, err
			}
			continue
		}
		d.buf = d.buf[dec.InputOffset():]

		var act Action
		if err := json.Unmarshal(raw, &act); err != nil {
			if d.interactive {
				d.sink.Warning(d.state.Time(), fmt.Sprintf("workload: skipping unparseable action: %v", err))
				continue
			}
			return nil, fmt.Errorf("workload: malformed action: %w", err)
		}

		if d.validateSchema {
			var generic interface{}
			if err := json.Unmarshal(raw, &generic); err == nil {
				if verr := d.schema.Validate(generic); verr != nil {
					if d.interactive {
						d.sink.Warning(d.state.Time(), fmt.Sprintf("workload: schema violation, skipping: %v", verr))
						continue
					}
					return nil, fmt.Errorf("workload: schema violation: %w", verr)
				}
			}
		}

		return &act, nil
	}
}

// fill reads more bytes from the stream into d.buf. Non-interactive mode
// reads in fixed 1024-byte chunks; interactive mode reads one line at a
// time, matching how an operator would pipe actions in by hand (spec §9).
func (d *Driver) fill() error {
	if d.streamClosed {
		return nil
	}
	if d.interactive {
		line, err := d.r.ReadString('\n')
		d.buf = append(d.buf, line...)
		if err != nil {
			if err == io.EOF {
				d.streamClosed = true
				return nil
			}
			return fmt.Errorf("workload: reading stream: %w", err)
		}
		return nil
	}

	chunk := make([]byte, 1024)
	n, err := d.r.Read(chunk)
	if n > 0 {
		d.buf = append(d.buf, chunk[:n]...)
	}
	if err != nil {
		if err == io.EOF {
			d.streamClosed = true
			return nil
		}
		return fmt.Errorf("workload: reading stream: %w", err)
	}
	return nil
}

// Done reports whether the driver has dispatched endsim, either explicitly
// or because the underlying stream ran out of events.
func (d *Driver) Done() bool {
	return d.state.Done()
}
