package repository

import (
	"cmp"
	"fmt"
	"slices"
)

// Arena is an append-only collection addressed by sequential ids starting at 0.
type Arena[T any] struct {
	items []T
}

func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Append stores item under the next id and returns that id.
func (a *Arena[T]) Append(j Reverter, item T) uint64 {
	id := uint64(len(a.items))
	a.items = append(a.items, item)

	j.OnRevert(func() {
		a.items = a.items[:id]
	})

	return id
}

func (a *Arena[T]) Get(id uint64) (T, bool) {
	var zero T

	if id >= uint64(len(a.items)) {
		return zero, false
	}

	return a.items[id], true
}

// Put replaces an existing item. It reports false if id was never allocated.
func (a *Arena[T]) Put(j Reverter, id uint64, item T) bool {
	if id >= uint64(len(a.items)) {
		return false
	}

	prev := a.items[id]
	j.OnRevert(func() {
		a.items[id] = prev
	})

	a.items[id] = item

	return true
}

// Reset replaces the contents with items, whose positions become their ids.
func (a *Arena[T]) Reset(items []T) {
	a.items = items
}

func (a *Arena[T]) Len() int {
	return len(a.items)
}

// Ordered sorts stored items by id and checks the ids run from 0 without
// gaps, as Arena assigns them.
func Ordered[T any](items []T, id func(T) uint64) error {
	slices.SortFunc(items, func(a, b T) int {
		return cmp.Compare(id(a), id(b))
	})

	for i, item := range items {
		if id(item) != uint64(i) {
			return fmt.Errorf("stored ids are not contiguous: expected %d, found %d", i, id(item))
		}
	}

	return nil
}

// Index maps a key to the ids associated with it, in insertion order.
type Index[K comparable] struct {
	ids map[K][]uint64
}

func NewIndex[K comparable]() *Index[K] {
	return &Index[K]{ids: map[K][]uint64{}}
}

func (i *Index[K]) Add(j Reverter, key K, id uint64) {
	prev := i.ids[key]
	n := len(prev)

	i.ids[key] = append(prev, id)

	j.OnRevert(func() {
		if n == 0 {
			delete(i.ids, key)

			return
		}

		i.ids[key] = i.ids[key][:n]
	})
}

func (i *Index[K]) Reset() {
	i.ids = map[K][]uint64{}
}

// Get returns a copy of the ids stored under key.
func (i *Index[K]) Get(key K) []uint64 {
	ids := i.ids[key]
	out := make([]uint64, len(ids))
	copy(out, ids)

	return out
}

// Table is a keyed collection of records.
type Table[K comparable, V any] struct {
	rows map[K]V
}

func NewTable[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{rows: map[K]V{}}
}

func (t *Table[K, V]) Get(key K) (V, bool) {
	row, ok := t.rows[key]

	return row, ok
}

func (t *Table[K, V]) Put(j Reverter, key K, value V) {
	prev, had := t.rows[key]
	j.OnRevert(func() {
		if had {
			t.rows[key] = prev

			return
		}

		delete(t.rows, key)
	})

	t.rows[key] = value
}

func (t *Table[K, V]) Reset() {
	t.rows = map[K]V{}
}

func (t *Table[K, V]) Len() int {
	return len(t.rows)
}
