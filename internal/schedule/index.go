// Package schedule keeps scheduled entities ordered by start time and checks
// new windows against existing ones.
package schedule

import (
	"math"
	"time"

	"github.com/google/btree"

	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

const degree = 16

// entry is the index's view of one entity. end is nil when the entity has no
// duration (or, for epics, no subtask end).
type entry struct {
	id    int
	kind  task.Kind
	start time.Time
	end   *time.Time
}

func less(a, b entry) bool {
	if !a.start.Equal(b.start) {
		return a.start.Before(b.start)
	}
	return a.id < b.id
}

// Index orders entities with a start time by (start, id). It holds ids only;
// callers resolve them to entities. Index is not safe for concurrent use.
type Index struct {
	tree *btree.BTreeG[entry]
	byID map[int]entry
}

// New creates an empty index.
func New() *Index {
	return &Index{
		tree: btree.NewG(degree, less),
		byID: make(map[int]entry),
	}
}

// Upsert inserts e, or repositions it if already indexed. Entities without a
// start time are removed instead.
func (x *Index) Upsert(e task.Entity) {
	id := e.Base().ID
	x.Remove(id)

	start := e.Base().StartTime
	if start == nil {
		return
	}
	en := entry{id: id, kind: e.Kind(), start: *start, end: e.End()}
	x.tree.ReplaceOrInsert(en)
	x.byID[id] = en
}

// Remove drops id. Removing an absent id is a no-op.
func (x *Index) Remove(id int) {
	en, ok := x.byID[id]
	if !ok {
		return
	}
	x.tree.Delete(en)
	delete(x.byID, id)
}

// Validate reports a task.ScheduleConflictError when candidate's window
// overlaps any indexed window other than its own. Candidates without a
// complete window pass, as do epics; indexed epics are never conflicts.
func (x *Index) Validate(candidate task.Entity) error {
	if candidate.Kind() == task.KindEpic {
		return nil
	}
	base := candidate.Base()
	end := candidate.End()
	if base.StartTime == nil || end == nil {
		return nil
	}
	start := *base.StartTime

	var conflict int
	// Only entries starting before the candidate ends can overlap it.
	pivot := entry{start: *end, id: math.MinInt}
	x.tree.AscendLessThan(pivot, func(en entry) bool {
		if en.id == base.ID || en.kind == task.KindEpic || en.end == nil {
			return true
		}
		if Overlaps(start, *end, en.start, *en.end) {
			conflict = en.id
			return false
		}
		return true
	})

	if conflict != 0 {
		return task.ScheduleConflictError(base.ID, conflict)
	}
	return nil
}

// Overlaps reports whether the half-open windows [s1,e1) and [s2,e2)
// intersect. Windows that only touch do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// IDs returns the indexed ids ordered by (start, id).
func (x *Index) IDs() []int {
	out := make([]int, 0, x.tree.Len())
	x.tree.Ascend(func(en entry) bool {
		out = append(out, en.id)
		return true
	})
	return out
}

// Clear drops every entry.
func (x *Index) Clear() {
	x.tree.Clear(false)
	clear(x.byID)
}
