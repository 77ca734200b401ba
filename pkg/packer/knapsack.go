package packer

import "github.com/ja7ad/smmsim/pkg/model"

// valueFunc is the quantity a knapsack packer maximizes, subject to total
// cost <= binsize (spec §4.2).
type valueFunc func(t *model.Task) int64

func costValue(t *model.Task) int64     { return t.Cost }
func priorityValue(t *model.Task) int64 { return int64(t.Priority) }

// knapsackPacker implements the 0/1 DP bin packers: CostKnapsack and
// PriorityKnapsack (spec §4.2). Both recompute a single bin from the whole
// ready queue on every request; neither buffers future bins.
type knapsackPacker struct {
	value valueFunc
	aging bool
	queue []*model.Task
}

func newKnapsackPacker(v valueFunc, aging bool) *knapsackPacker {
	return &knapsackPacker{value: v, aging: aging}
}

// AddTask implements Packer.
func (p *knapsackPacker) AddTask(t *model.Task) {
	p.queue = append(p.queue, t)
}

// UnusedTasks implements Packer.
func (p *knapsackPacker) UnusedTasks() []*model.Task {
	out := make([]*model.Task, len(p.queue))
	copy(out, p.queue)
	return out
}

// RemoveSubcheck implements Packer.
func (p *knapsackPacker) RemoveSubcheck(check *model.Check) []*model.Task {
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

// RequestBin implements Packer via the bottom-up 0/1 DP described in spec
// §4.2: table T[w][i] holds the best achievable value using the first i
// tasks within weight budget w, plus which task (if any) was chosen to
// reach it. Complexity is O(N*W) time and memory, where N = len(queue) and
// W = binsize; this is a documented budget of the algorithm, not an
// oversight.
func (p *knapsackPacker) RequestBin(view StateView, cpu int) *model.Bin {
	bin := model.NewBin(view.NextBinID(), cpu)
	w := int(view.BinSize())
	n := len(p.queue)
	if w <= 0 || n == 0 {
		return bin
	}

	// dpVal[i][c] / dpChosen[i][c]: best value and whether task i-1 (0-based
	// task index i-1) was taken, using tasks 0..i-1 within capacity c.
	dpVal := make([][]int64, n+1)
	dpChosen := make([][]bool, n+1)
	for i := range dpVal {
		dpVal[i] = make([]int64, w+1)
		dpChosen[i] = make([]bool, w+1)
	}

	for i := 1; i <= n; i++ {
		task := p.queue[i-1]
		cost := int(task.Cost)
		val := p.value(task)
		for c := 0; c <= w; c++ {
			skip := dpVal[i-1][c]
			dpVal[i][c] = skip
			if cost <= c {
				take := dpVal[i-1][c-cost] + val
				// Strict '<' so ties keep the earlier insertion order's
				// choice (spec §4.2: "insertion order among equal-value
				// choices wins").
				if skip < take {
					dpVal[i][c] = take
					dpChosen[i][c] = true
				}
			}
		}
	}

	// Reconstruct by walking back from (n, w).
	chosen := make([]bool, n)
	c := w
	for i := n; i >= 1; i-- {
		if dpChosen[i][c] {
			chosen[i-1] = true
			c -= int(p.queue[i-1].Cost)
		}
	}

	kept := p.queue[:0]
	for i, t := range p.queue {
		if chosen[i] {
			bin.Add(t)
		} else {
			kept = append(kept, t)
		}
	}
	p.queue = kept

	if p.aging {
		// Unclamped, same reasoning as orderedPacker.RequestBin: spec §8
		// property 6 requires an exact +1-per-window increase, which a
		// saturating clamp would break once priority reaches MaxPriority.
		for _, t := range p.queue {
			t.Priority++
		}
	}

	return bin
}
