package chain

import "traveltrust/shared/repository"

type journal struct {
	undo  []func()
	rows  []repository.Row
	index map[string]int
}

func (j *journal) append(undo func()) {
	j.undo = append(j.undo, undo)
}

// stage queues row for storage. A later row with the same table and key
// replaces the earlier one in place.
func (j *journal) stage(row repository.Row) {
	k := row.Table + "/" + row.Key

	if i, ok := j.index[k]; ok {
		prev := j.rows[i]
		j.rows[i] = row
		j.append(func() {
			j.rows[i] = prev
		})

		return
	}

	if j.index == nil {
		j.index = map[string]int{}
	}

	n := len(j.rows)
	j.index[k] = n
	j.rows = append(j.rows, row)
	j.append(func() {
		j.rows = j.rows[:n]
		delete(j.index, k)
	})
}

// revert unwinds in reverse order of registration.
func (j *journal) revert() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}

	j.undo = nil
	j.rows = nil
	j.index = nil
}
