package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampPriority(t *testing.T) {
	assert.Equal(t, MinPriority, ClampPriority(-5))
	assert.Equal(t, MinPriority, ClampPriority(0))
	assert.Equal(t, 10, ClampPriority(10))
	assert.Equal(t, MaxPriority, ClampPriority(21))
	assert.Equal(t, MaxPriority, ClampPriority(1000))
}

func TestCheckGroup_AddRemove(t *testing.T) {
	g := NewCheckGroup("G")
	require.Equal(t, 0, g.Len())

	c := NewCheck("G", "C", 120, 25) // out-of-range priority gets clamped
	assert.Equal(t, MaxPriority, c.Priority)
	g.Add(c)
	require.Equal(t, 1, g.Len())
	assert.EqualValues(t, 120, g.Cost())

	got, ok := g.Get("C")
	require.True(t, ok)
	assert.Same(t, c, got)

	removed := g.Remove("C")
	require.NotNil(t, removed)
	assert.Same(t, c, removed)
	assert.Equal(t, 0, g.Len())
	assert.True(t, removed.destroyed)

	assert.Nil(t, g.Remove("missing"))
}

func TestIndex_GroupOrCreate(t *testing.T) {
	idx := NewIndex()
	_, ok := idx.Group("G")
	assert.False(t, ok)

	g1 := idx.GroupOrCreate("G")
	g2 := idx.GroupOrCreate("G")
	assert.Same(t, g1, g2, "lazy creation must not replace an existing group")
}

func TestBinIDCounter_Monotonic(t *testing.T) {
	var c BinIDCounter
	seen := map[BinID]bool{}
	var prev BinID
	for i := 0; i < 100; i++ {
		id := c.Next()
		assert.Greater(t, uint64(id), uint64(prev))
		assert.False(t, seen[id], "bin id reused: %d", id)
		seen[id] = true
		prev = id
	}
}

func TestTask_RunUpdatesLastTimeRun(t *testing.T) {
	parent := NewCheck("G", "C", 100, 5)
	task := NewTask(parent, 0, 50, 10)
	assert.EqualValues(t, 10, task.LastTimeRun)
	assert.Equal(t, 5, task.Priority)

	task.Run(60)
	assert.EqualValues(t, 60, task.LastTimeRun)
}

func TestBin_CostAndEmpty(t *testing.T) {
	b := NewBin(BinID(1), 0)
	assert.True(t, b.Empty())

	parent := NewCheck("G", "C", 100, 1)
	b.Add(NewTask(parent, 0, 30, 0))
	b.Add(NewTask(parent, 1, 40, 0))
	assert.False(t, b.Empty())
	assert.EqualValues(t, 70, b.Cost())
}
