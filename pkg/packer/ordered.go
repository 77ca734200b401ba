package packer

import (
	"math/rand/v2"
	"sort"

	"github.com/ja7ad/smmsim/pkg/model"
)

// lessFunc orders two tasks for an orderedPacker's queue. Strict: a before
// b iff less(a,b).
type lessFunc func(a, b *model.Task) bool

func priorityLess(a, b *model.Task) bool {
	// Higher priority first (spec §4.2: ordering key "-priority").
	return a.Priority > b.Priority
}

func leastRecentLess(a, b *model.Task) bool {
	// Oldest last_time_run first (spec §4.2).
	return a.LastTimeRun < b.LastTimeRun
}

func randomLess(a, b *model.Task) bool {
	return a.RandKey < b.RandKey
}

// orderedPacker implements the four "ordered-prefix" packers: Default,
// Aging, Random and LeastRecent (spec §4.2). They share one queue field and
// differ only in the ordering key and whether aging is applied after each
// window.
type orderedPacker struct {
	less   lessFunc
	aging  bool
	queue  []*model.Task
	rng    *rand.Rand // nil unless this instance is the Random variant
}

func newOrderedPacker(less lessFunc, aging bool) *orderedPacker {
	return &orderedPacker{less: less, aging: aging}
}

func newRandomPacker(seed int64) *orderedPacker {
	return &orderedPacker{
		less: randomLess,
		rng:  rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
	}
}

// insert places t into the sorted queue using binary search with a
// rightmost-insertion-point tie-break, per spec §4.2.
func (p *orderedPacker) insert(t *model.Task) {
	idx := sort.Search(len(p.queue), func(i int) bool {
		return p.less(t, p.queue[i])
	})
	p.queue = append(p.queue, nil)
	copy(p.queue[idx+1:], p.queue[idx:])
	p.queue[idx] = t
}

// AddTask implements Packer.
func (p *orderedPacker) AddTask(t *model.Task) {
	if p.rng != nil {
		t.RandKey = p.rng.Uint64()
	}
	p.insert(t)
}

// RequestBin implements Packer: greedily consume from the head, stopping
// as soon as the head task does not fit (no skip-ahead), per spec §4.2.
func (p *orderedPacker) RequestBin(view StateView, cpu int) *model.Bin {
	bin := model.NewBin(view.NextBinID(), cpu)
	binsize := view.BinSize()

	var cost int64
	n := 0
	for n < len(p.queue) {
		t := p.queue[n]
		if cost+t.Cost > binsize {
			break
		}
		cost += t.Cost
		n++
	}
	bin.Tasks = append(bin.Tasks, p.queue[:n]...)
	p.queue = p.queue[n:]

	if p.aging {
		// Deliberately unclamped: spec §8 property 6 requires a task queued
		// across k windows to have its priority increased by exactly k,
		// which a saturating clamp here would violate once a long-queued
		// task reaches MaxPriority.
		for _, t := range p.queue {
			t.Priority++
		}
		// Priority changed for every remaining task: the ordering key
		// shifted uniformly, so a stable re-sort suffices; no element's
		// relative order changes.
		sort.SliceStable(p.queue, func(i, j int) bool {
			return p.less(p.queue[i], p.queue[j])
		})
	}

	return bin
}

// UnusedTasks implements Packer.
func (p *orderedPacker) UnusedTasks() []*model.Task {
	out := make([]*model.Task, len(p.queue))
	copy(out, p.queue)
	return out
}

// RemoveSubcheck implements Packer.
func (p *orderedPacker) RemoveSubcheck(check *model.Check) []*model.Task {
	var removed []*model.Task
	kept := p.queue[:0]
	for _, t := range p.queue {
		if t.Parent == check {
			removed = append(removed, t)
		} else {
			kept = append(kept, t)
		}
	}
	p.queue = kept
	return removed
}
