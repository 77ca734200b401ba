package model

// Bin is an ordered sequence of tasks scheduled to run in a single window.
// Cost is the sum of every task's cost; the packer family is responsible
// for the invariant that Cost never exceeds the configured binsize at the
// moment a bin is emitted (spec §3). An empty bin ("nothing to run this
// window") is valid.
type Bin struct {
	ID    BinID
	CPU   int
	Tasks []*Task
}

// NewBin builds an empty bin for the given CPU.
func NewBin(id BinID, cpu int) *Bin {
	return &Bin{ID: id, CPU: cpu}
}

// Add appends a task to the bin.
func (b *Bin) Add(t *Task) {
	b.Tasks = append(b.Tasks, t)
}

// Cost returns the sum of every task's cost currently in the bin.
func (b *Bin) Cost() int64 {
	var total int64
	for _, t := range b.Tasks {
		total += t.Cost
	}
	return total
}

// Empty reports whether the bin holds no tasks.
func (b *Bin) Empty() bool {
	return len(b.Tasks) == 0
}
