package workload

import (
	"strings"
	"testing"

	"github.com/ja7ad/smmsim/pkg/eventlog"
	"github.com/ja7ad/smmsim/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_DispatchesDueActionsAndWaitsForFuture(t *testing.T) {
	src := strings.NewReader(
		`{"action":"newcheck","time":0,"checks":[{"group":"G","name":"C","cost":100,"priority":5}]}` +
			`{"action":"endsim","time":100}`,
	)
	sink := eventlog.NewMemorySink()
	st := state.New(sink)
	d, err := NewDriver(src, st, sink, false, true)
	require.NoError(t, err)

	require.NoError(t, d.UpdateWorkload())
	assert.Len(t, sink.Filter(eventlog.EventAddCheck), 1, "the time:0 newcheck is due immediately")
	assert.False(t, st.Done(), "the time:100 endsim is not yet due")

	st.AdvanceTo(100)
	require.NoError(t, d.UpdateWorkload())
	assert.True(t, st.Done())
}

func TestDriver_AutoEndsOnCleanEOF(t *testing.T) {
	src := strings.NewReader(`{"action":"newcheck","time":0,"checks":[{"group":"G","name":"C","cost":10,"priority":1}]}`)
	sink := eventlog.NewMemorySink()
	st := state.New(sink)
	d, err := NewDriver(src, st, sink, false, true)
	require.NoError(t, err)

	// Nothing is left on the stream after the newcheck, so the same call
	// reaches end-of-input and the driver synthesizes endsim itself.
	require.NoError(t, d.UpdateWorkload())
	assert.True(t, st.Done())

	// A further call leaves the run ended.
	require.NoError(t, d.UpdateWorkload())
	assert.True(t, st.Done())
}

func TestDriver_NonInteractiveSchemaViolationIsFatal(t *testing.T) {
	src := strings.NewReader(`{"action":"newcheck","time":0}`) // missing required "checks"
	sink := eventlog.NewMemorySink()
	st := state.New(sink)
	d, err := NewDriver(src, st, sink, false, true)
	require.NoError(t, err)

	err = d.UpdateWorkload()
	assert.Error(t, err)
	assert.False(t, st.Done())
}

func TestDriver_InteractiveSchemaViolationSkipsAndWarns(t *testing.T) {
	src := strings.NewReader(
		"{\"action\":\"newcheck\",\"time\":0}\n" +
			"{\"action\":\"endsim\",\"time\":0}\n",
	)
	sink := eventlog.NewMemorySink()
	st := state.New(sink)
	d, err := NewDriver(src, st, sink, true, true)
	require.NoError(t, err)

	require.NoError(t, d.UpdateWorkload())
	assert.True(t, st.Done(), "the invalid object is skipped, not fatal, in interactive mode")
	assert.NotEmpty(t, sink.Filter("warning"))
}

func TestDriver_ChangeVarsAppliesTypedValues(t *testing.T) {
	src := strings.NewReader(`{"action":"changevars","time":0,"vars":{"binsize":200,"binpacker":"LeastRecentBin"}}`)
	sink := eventlog.NewMemorySink()
	st := state.New(sink)
	d, err := NewDriver(src, st, sink, false, true)
	require.NoError(t, err)

	require.NoError(t, d.UpdateWorkload())
	assert.EqualValues(t, 200, st.Params().BinSize)
	assert.Equal(t, "LeastRecentBin", st.Params().BinPacker)
}

func TestDriver_RemoveCheckDispatches(t *testing.T) {
	src := strings.NewReader(
		`{"action":"newcheck","time":0,"checks":[{"group":"G","name":"C","cost":10,"priority":1}]}` +
			`{"action":"removecheck","time":0,"checks":[{"group":"G","name":"C"}]}`,
	)
	sink := eventlog.NewMemorySink()
	st := state.New(sink)
	d, err := NewDriver(src, st, sink, false, true)
	require.NoError(t, err)

	require.NoError(t, d.UpdateWorkload())
	assert.Empty(t, st.Packer().UnusedTasks())
	assert.Len(t, sink.Filter(eventlog.EventRemoveCheck), 1)
}
