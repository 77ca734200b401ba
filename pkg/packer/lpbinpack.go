package packer

import (
	"errors"
	"sort"

	"github.com/ja7ad/smmsim/pkg/model"
)

// maxLPBins bounds how many bins the ILP minimizer is allowed to open at
// once (spec §4.2: "over at most 10 bins").
const maxLPBins = 10

// lpRetentionNumerator/lpRetentionDenominator implement the "retain top
// 75%" heuristic exactly as specified. Its justification is not recorded
// anywhere in the source material; spec.md §9 flags it as an open question
// to preserve, not resolve.
const (
	lpRetentionNumerator   = 3
	lpRetentionDenominator = 4
)

var errSolverFailed = errors.New("packer: lp solver failed")

// lpBinPacker is the buffered multi-bin packer described in spec §4.2.
// request_bin drains a queue of already-computed bins; once that queue is
// empty, it reruns the bin-minimizing solver over the current ready queue.
type lpBinPacker struct {
	ready    []*model.Task
	computed [][]*model.Task
}

func newLPBinPacker() *lpBinPacker {
	return &lpBinPacker{}
}

// AddTask implements Packer.
func (p *lpBinPacker) AddTask(t *model.Task) {
	p.ready = append(p.ready, t)
}

// UnusedTasks implements Packer: every buffered bin's tasks plus the ready
// queue (spec §4.2: "Common unused_tasks for buffered packers...").
func (p *lpBinPacker) UnusedTasks() []*model.Task {
	var out []*model.Task
	for _, bin := range p.computed {
		out = append(out, bin...)
	}
	out = append(out, p.ready...)
	return out
}

// RemoveSubcheck implements Packer: filters the union of computed bins and
// the ready queue, then empties the computed bin queue (spec §4.2: "safe:
// the next request_bin will recompute").
func (p *lpBinPacker) RemoveSubcheck(check *model.Check) []*model.Task {
	merged := p.UnusedTasks()
	p.computed = nil

	var removed, kept []*model.Task
	for _, t := range merged {
		if t.Parent == check {
			removed = append(removed, t)
		} else {
			kept = append(kept, t)
		}
	}
	p.ready = kept
	return removed
}

// RequestBin implements Packer.
func (p *lpBinPacker) RequestBin(view StateView, cpu int) *model.Bin {
	if len(p.computed) == 0 {
		bins, leftover, err := solveBinMinimization(p.ready, view.BinSize())
		if err != nil {
			// "the packer must return without modifying state" (spec §4.2,
			// §7): fall through to an empty bin this cycle.
			return model.NewBin(view.NextBinID(), cpu)
		}
		p.computed = bins
		p.ready = leftover
	}

	bin := model.NewBin(view.NextBinID(), cpu)
	if len(p.computed) == 0 {
		return bin
	}
	next := p.computed[0]
	p.computed = p.computed[1:]
	bin.Tasks = append(bin.Tasks, next...)
	return bin
}

// solveBinMinimization packs tasks into the fewest bins possible, each of
// cost <= binsize, over at most maxLPBins bins, retains the heaviest 75%
// (rounded down) and dissolves the rest back to loose tasks (spec §4.2).
//
// The ILP formulation in spec §4.2 minimizes sum(y_b) subject to each item
// in exactly one bin and per-bin capacity; no MILP/LP solver library
// appears anywhere in the retrieved corpus (see DESIGN.md), so this solves
// the same decision problem directly with an exact branch-and-bound: for
// each candidate bin count k starting at the trivial lower bound
// ceil(total_cost/binsize), canPack does a backtracking search (descending
// item order, symmetry-broken by skipping repeat bin loads at each choice
// point) for a feasible assignment into k bins, stopping at the first k
// that succeeds. k is bounded by maxLPBins; the backtracking search itself
// still grows with the number of items. Items that cannot possibly fit
// in any bin (cost > binsize), or that the maxLPBins ceiling cannot hold at
// all (total cost would still exceed maxLPBins*binsize after trimming the
// lightest items), are dropped back to the leftover/ready queue, the same
// outcome as a solver that ran out of bins.
func solveBinMinimization(tasks []*model.Task, binsize int64) (bins [][]*model.Task, leftover []*model.Task, err error) {
	defer func() {
		if r := recover(); r != nil {
			bins, leftover, err = nil, nil, errSolverFailed
		}
	}()

	if binsize <= 0 || len(tasks) == 0 {
		return nil, append([]*model.Task(nil), tasks...), nil
	}

	sorted := append([]*model.Task(nil), tasks...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Cost > sorted[j].Cost })

	var feasible []*model.Task
	for _, t := range sorted {
		if t.Cost > binsize {
			leftover = append(leftover, t)
			continue
		}
		feasible = append(feasible, t)
	}

	var total int64
	for _, t := range feasible {
		total += t.Cost
	}
	for total > int64(maxLPBins)*binsize {
		last := feasible[len(feasible)-1]
		feasible = feasible[:len(feasible)-1]
		leftover = append(leftover, last)
		total -= last.Cost
	}

	if len(feasible) == 0 {
		return nil, leftover, nil
	}

	costs := make([]int64, len(feasible))
	for i, t := range feasible {
		costs[i] = t.Cost
	}

	lowerBound := int((total + binsize - 1) / binsize)
	if lowerBound < 1 {
		lowerBound = 1
	}

	var assign []int
	found := false
	for k := lowerBound; k <= maxLPBins; k++ {
		if a, ok := canPack(costs, k, binsize); ok {
			assign, found = a, true
			break
		}
	}
	if !found {
		// Trimming above bounds only the total cost, so no assignment into
		// maxLPBins bins may exist (e.g. eleven items each over half of
		// binsize). Every task then returns to the leftover queue and no
		// bin is produced.
		return nil, append(leftover, feasible...), nil
	}

	packed := make([][]*model.Task, len(assign))
	k := 0
	for _, b := range assign {
		if b+1 > k {
			k = b + 1
		}
	}
	packed = packed[:k]
	for i, b := range assign {
		packed[b] = append(packed[b], feasible[i])
	}

	var valid [][]*model.Task
	for _, grp := range packed {
		if len(grp) > 0 {
			valid = append(valid, grp)
		}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return binCost(valid[i]) > binCost(valid[j])
	})

	retain := len(valid) * lpRetentionNumerator / lpRetentionDenominator
	for _, grp := range valid[retain:] {
		leftover = append(leftover, grp...)
	}

	return valid[:retain], leftover, nil
}

// canPack decides whether items (sorted descending, costs only) fit into k
// bins of the given capacity, returning the bin index assigned to each item
// when feasible. Backtracks over items in order, placing each into the
// first bin it fits; at each item, bins already tried at the same current
// load within this call are skipped, since swapping an item between two
// equally-loaded bins can never change feasibility (classic symmetry
// pruning for exact bin-packing search).
func canPack(costs []int64, k int, capacity int64) ([]int, bool) {
	loads := make([]int64, k)
	assign := make([]int, len(costs))

	var place func(i int) bool
	place = func(i int) bool {
		if i == len(costs) {
			return true
		}
		tried := make(map[int64]bool, k)
		for b := 0; b < k; b++ {
			if loads[b]+costs[i] > capacity {
				continue
			}
			if tried[loads[b]] {
				continue
			}
			tried[loads[b]] = true

			loads[b] += costs[i]
			assign[i] = b
			if place(i + 1) {
				return true
			}
			loads[b] -= costs[i]
		}
		return false
	}

	if place(0) {
		return assign, true
	}
	return nil, false
}

func binCost(tasks []*model.Task) int64 {
	var total int64
	for _, t := range tasks {
		total += t.Cost
	}
	return total
}
