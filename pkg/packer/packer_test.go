package packer

import (
	"testing"

	"github.com/ja7ad/smmsim/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeView is a minimal StateView for tests.
type fakeView struct {
	binsize int64
	time    uint64
	counter model.BinIDCounter
}

func (v *fakeView) BinSize() int64        { return v.binsize }
func (v *fakeView) Time() uint64          { return v.time }
func (v *fakeView) NextBinID() model.BinID { return v.counter.Next() }

func mkTask(parent *model.Check, cost int64, priority int, lastRun uint64) *model.Task {
	t := model.NewTask(parent, 0, cost, lastRun)
	t.Priority = priority
	return t
}

func TestDefaultPacker_GreedyPrefixNoSkipAhead(t *testing.T) {
	p, _ := NewRegistry().New("DefaultBin")
	parent := model.NewCheck("G", "C", 1, 1)

	// Higher priority first; queue order after insert: hi(60) then lo(50).
	hi := mkTask(parent, 60, 10, 0)
	lo := mkTask(parent, 50, 1, 0)
	p.AddTask(lo)
	p.AddTask(hi)

	view := &fakeView{binsize: 100}
	bin := p.RequestBin(view, 0)

	// hi fits (60<=100), then lo (50) would push to 110>100 so it must stop,
	// not skip ahead to something smaller that might exist later.
	require.Len(t, bin.Tasks, 1)
	assert.Same(t, hi, bin.Tasks[0])
	assert.Len(t, p.UnusedTasks(), 1)
}

func TestAgingPacker_IncrementsRemainingAfterWindow(t *testing.T) {
	p, _ := NewRegistry().New("AgingBin")
	parent := model.NewCheck("G", "C", 1, 1)
	a := mkTask(parent, 60, 10, 0)
	b := mkTask(parent, 60, 1, 0)
	p.AddTask(b)
	p.AddTask(a)

	view := &fakeView{binsize: 60}
	bin := p.RequestBin(view, 0)
	require.Len(t, bin.Tasks, 1)
	assert.Same(t, a, bin.Tasks[0])

	// b remained queued; its priority should have aged by exactly 1.
	assert.Equal(t, 2, b.Priority)
}

func TestAgingPacker_MonotonicOverKWindows(t *testing.T) {
	// spec §8 property 6.
	p, _ := NewRegistry().New("AgingBin")
	parent := model.NewCheck("G", "C", 1, 1)
	starving := mkTask(parent, 100, 1, 0)
	p.AddTask(starving)
	// Keep the bin too small for `starving` to ever be picked, so it stays
	// queued across every window.
	view := &fakeView{binsize: 1}

	const windows = 5
	for i := 0; i < windows; i++ {
		p.RequestBin(view, 0)
	}
	assert.Equal(t, 1+windows, starving.Priority)
}

func TestLeastRecentPacker_OldestFirst(t *testing.T) {
	p, _ := NewRegistry().New("LeastRecentBin")
	parent := model.NewCheck("G", "C", 1, 1)
	newer := mkTask(parent, 10, 1, 100)
	older := mkTask(parent, 10, 1, 5)
	p.AddTask(newer)
	p.AddTask(older)

	view := &fakeView{binsize: 10}
	bin := p.RequestBin(view, 0)
	require.Len(t, bin.Tasks, 1)
	assert.Same(t, older, bin.Tasks[0])
}

func TestRandomPacker_DeterministicGivenSeed(t *testing.T) {
	parent := model.NewCheck("G", "C", 1, 1)
	build := func() []int64 {
		p := NewRandomPacker(42)
		for i := int64(1); i <= 5; i++ {
			p.AddTask(mkTask(parent, i*10, 1, 0))
		}
		view := &fakeView{binsize: 1000}
		bin := p.RequestBin(view, 0)
		var costs []int64
		for _, t := range bin.Tasks {
			costs = append(costs, t.Cost)
		}
		return costs
	}

	first := build()
	second := build()
	assert.Equal(t, first, second, "same seed must produce the same order")
}

func TestCostKnapsack_OptimalPairSum(t *testing.T) {
	// spec §8 scenario S3.
	p, _ := NewRegistry().New("CostKnapsackBin")
	parent := model.NewCheck("G", "C", 1, 1)
	costs := []int64{40, 40, 30, 30}
	priorities := []int{1, 1, 10, 10}
	for i := range costs {
		p.AddTask(mkTask(parent, costs[i], priorities[i], 0))
	}

	view := &fakeView{binsize: 70}
	bin := p.RequestBin(view, 0)
	assert.EqualValues(t, 70, bin.Cost())
	assert.Len(t, bin.Tasks, 2)
}

func TestPriorityKnapsack_SelectsHighestPrioritySum(t *testing.T) {
	p, _ := NewRegistry().New("PriorityKnapsackBin")
	parent := model.NewCheck("G", "C", 1, 1)
	costs := []int64{40, 40, 30, 30}
	priorities := []int{1, 1, 10, 10}
	for i := range costs {
		p.AddTask(mkTask(parent, costs[i], priorities[i], 0))
	}

	view := &fakeView{binsize: 70}
	bin := p.RequestBin(view, 0)
	require.Len(t, bin.Tasks, 2)
	var sumPriority, sumCost int64
	for _, t := range bin.Tasks {
		sumPriority += int64(t.Priority)
		sumCost += t.Cost
	}
	assert.EqualValues(t, 20, sumPriority)
	assert.EqualValues(t, 60, sumCost)
}

func TestKnapsack_RespectsBinsizeInvariant(t *testing.T) {
	p, _ := NewRegistry().New("CostKnapsackBin")
	parent := model.NewCheck("G", "C", 1, 1)
	for _, c := range []int64{33, 41, 17, 29, 50, 11} {
		p.AddTask(mkTask(parent, c, 1, 0))
	}
	view := &fakeView{binsize: 50}
	bin := p.RequestBin(view, 0)
	assert.LessOrEqual(t, bin.Cost(), int64(50))
}

func TestLPBinPack_RetainsTopSeventyFivePercent(t *testing.T) {
	p, _ := NewRegistry().New("LPBinPack")
	parent := model.NewCheck("G", "C", 1, 1)
	// 4 tasks of cost 25 each, binsize 25: no two tasks ever fit in one
	// bin, so the minimizer must open exactly 4 single-task bins of equal
	// cost; retain floor(0.75*4)=3, dissolve 1.
	for i := 0; i < 4; i++ {
		p.AddTask(mkTask(parent, 25, 1, 0))
	}
	view := &fakeView{binsize: 25}

	var emitted int
	for i := 0; i < 4; i++ {
		bin := p.RequestBin(view, 0)
		if !bin.Empty() {
			emitted++
			assert.LessOrEqual(t, bin.Cost(), int64(25))
		}
	}
	assert.Equal(t, 3, emitted, "one of the four equal bins must be dissolved back to the ready queue")
	assert.Len(t, p.UnusedTasks(), 1)
}

func TestLPBinPack_NeverExceedsBinsize(t *testing.T) {
	p, _ := NewRegistry().New("LPBinPack")
	parent := model.NewCheck("G", "C", 1, 1)
	for _, c := range []int64{70, 60, 55, 45, 30, 20, 10} {
		p.AddTask(mkTask(parent, c, 1, 0))
	}
	view := &fakeView{binsize: 100}
	for i := 0; i < 10; i++ {
		bin := p.RequestBin(view, 0)
		assert.LessOrEqual(t, bin.Cost(), int64(100))
	}
}

func TestRemoveSubcheck_EvictsEverywhere(t *testing.T) {
	for _, name := range []string{"DefaultBin", "AgingBin", "LeastRecentBin", "CostKnapsackBin", "LPBinPack"} {
		t.Run(name, func(t *testing.T) {
			p, _ := NewRegistry().New(name)
			keepCheck := model.NewCheck("G", "keep", 1, 1)
			dropCheck := model.NewCheck("G", "drop", 1, 1)

			p.AddTask(mkTask(keepCheck, 10, 1, 0))
			p.AddTask(mkTask(dropCheck, 10, 1, 0))
			p.AddTask(mkTask(dropCheck, 10, 1, 0))

			p.RemoveSubcheck(dropCheck)

			for _, task := range p.UnusedTasks() {
				assert.NotSame(t, dropCheck, task.Parent)
			}
		})
	}
}

func TestPackerSwap_ConservesTaskCount(t *testing.T) {
	// spec §8 property 5.
	reg := NewRegistry()
	oldPacker, _ := reg.New("DefaultBin")
	parent := model.NewCheck("G", "C", 1, 1)
	for i := 0; i < 10; i++ {
		oldPacker.AddTask(mkTask(parent, 10, i, 0))
	}

	before := oldPacker.UnusedTasks()
	newPacker, _ := reg.New("LeastRecentBin")
	for _, t := range before {
		newPacker.AddTask(t)
	}

	after := newPacker.UnusedTasks()
	assert.ElementsMatch(t, before, after)
}
