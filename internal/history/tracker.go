// Package history tracks which entities were read most recently.
package history

import (
	"container/list"
	"slices"
)

// Tracker is an ordered set of entity ids. Recording an id moves it to the
// back; each id appears at most once. Tracker is not safe for concurrent use;
// the store guards it with its own lock.
type Tracker struct {
	capacity int
	order    *list.List
	elems    map[int]*list.Element
}

// New creates a tracker. A capacity of zero or less means unbounded;
// otherwise the oldest ids are evicted once the capacity is reached.
func New(capacity int) *Tracker {
	return &Tracker{
		capacity: capacity,
		order:    list.New(),
		elems:    make(map[int]*list.Element),
	}
}

// Record marks id as the most recently accessed.
func (t *Tracker) Record(id int) {
	if el, ok := t.elems[id]; ok {
		t.order.MoveToBack(el)
		return
	}
	t.elems[id] = t.order.PushBack(id)
	if t.capacity > 0 && t.order.Len() > t.capacity {
		t.Remove(t.order.Front().Value.(int))
	}
}

// Remove drops id. Removing an absent id is a no-op.
func (t *Tracker) Remove(id int) {
	el, ok := t.elems[id]
	if !ok {
		return
	}
	t.order.Remove(el)
	delete(t.elems, id)
}

// Snapshot returns the tracked ids, oldest first.
func (t *Tracker) Snapshot() []int {
	out := make([]int, 0, t.order.Len())
	for el := t.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(int))
	}
	return out
}

// Recent returns the tracked ids, most recent first.
func (t *Tracker) Recent() []int {
	out := t.Snapshot()
	slices.Reverse(out)
	return out
}

// Clear drops all ids.
func (t *Tracker) Clear() {
	t.order.Init()
	clear(t.elems)
}
