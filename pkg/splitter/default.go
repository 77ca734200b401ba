package splitter

import "github.com/ja7ad/smmsim/pkg/model"

// Default implements the greedy splitter described in spec §4.1: tasks of
// cost g until the residual r < g, then one final task of cost r. Indices
// run 0..n-1 in emission order.
type Default struct{}

// Split implements Splitter.
func (Default) Split(check *model.Check, g int64, t uint64) []*model.Task {
	if check.Cost <= 0 || g <= 0 {
		return nil
	}

	var tasks []*model.Task
	remaining := check.Cost
	index := 0
	for remaining > 0 {
		cost := g
		if remaining < g {
			cost = remaining
		}
		tasks = append(tasks, model.NewTask(check, index, cost, t))
		remaining -= cost
		index++
	}
	return tasks
}
