package splitter

import (
	"testing"

	"github.com/ja7ad/smmsim/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Split_EvenAndRemainder(t *testing.T) {
	check := model.NewCheck("G", "C", 120, 10)
	tasks := Default{}.Split(check, 50, 1000)

	require.Len(t, tasks, 3)
	var sum int64
	for i, tk := range tasks {
		assert.Equal(t, i, tk.Index)
		assert.LessOrEqual(t, tk.Cost, int64(50))
		assert.EqualValues(t, 1000, tk.LastTimeRun)
		assert.Equal(t, check.Priority, tk.Priority)
		sum += tk.Cost
	}
	assert.EqualValues(t, check.Cost, sum)
	assert.EqualValues(t, 50, tasks[0].Cost)
	assert.EqualValues(t, 50, tasks[1].Cost)
	assert.EqualValues(t, 20, tasks[2].Cost)
}

func TestDefault_Split_ExactMultiple(t *testing.T) {
	check := model.NewCheck("G", "C", 100, 1)
	tasks := Default{}.Split(check, 50, 0)
	require.Len(t, tasks, 2)
	assert.EqualValues(t, 50, tasks[0].Cost)
	assert.EqualValues(t, 50, tasks[1].Cost)
}

func TestDefault_Split_RoundTripProperty(t *testing.T) {
	// spec §8 property 4: sum(split(check,g,t).cost) == C, every task <= g.
	for _, cost := range []int64{1, 7, 50, 51, 99, 100, 101, 1000} {
		for _, g := range []int64{1, 10, 50} {
			check := model.NewCheck("G", "C", cost, 1)
			tasks := Default{}.Split(check, g, 0)
			var sum int64
			for _, tk := range tasks {
				assert.LessOrEqual(t, tk.Cost, g)
				sum += tk.Cost
			}
			assert.EqualValues(t, cost, sum, "cost=%d g=%d", cost, g)
		}
	}
}

func TestRegistry_DefaultTasks(t *testing.T) {
	r := NewRegistry()
	s, ok := r.New("DefaultTasks")
	require.True(t, ok)
	assert.IsType(t, &Default{}, s)

	_, ok = r.New("NoSuchSplitter")
	assert.False(t, ok)
}
