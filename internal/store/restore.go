package store

import (
	"slices"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/schedule"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// Restore replaces the store's contents with entities, as decoded from
// persisted state. Epic subtask lists are rebuilt from the subtasks'
// epic ids in ascending subtask id order and every epic is recomputed.
// The history is cleared.
//
// Restore is all-or-nothing: on a CORRUPT_DATA error the store is unchanged.
// Stored schedules are indexed as they are, without overlap checks.
func (s *Store) Restore(entities []task.Entity) error {
	tasks := make(map[int]*task.Task)
	epics := make(map[int]*task.Epic)
	subtasks := make(map[int]*task.SubTask)
	maxID := 0

	for _, in := range entities {
		e := in.Clone()
		id := e.Base().ID
		if id <= 0 {
			return corrupt("invalid id %d", id)
		}
		if _, dup := lookup(tasks, epics, subtasks, id); dup {
			return corrupt("duplicate id %d", id)
		}
		if err := task.Validate(e); err != nil {
			return clierr.Wrap(clierr.CorruptData, err, "entity #%d", id)
		}
		maxID = max(maxID, id)

		switch v := e.(type) {
		case *task.Task:
			tasks[id] = v
		case *task.Epic:
			v.SubTaskIDs = nil
			epics[id] = v
		case *task.SubTask:
			subtasks[id] = v
		}
	}

	subIDs := make([]int, 0, len(subtasks))
	for id := range subtasks {
		subIDs = append(subIDs, id)
	}
	slices.Sort(subIDs)
	for _, id := range subIDs {
		st := subtasks[id]
		epic, ok := epics[st.EpicID]
		if !ok {
			return corrupt("subtask #%d references missing epic #%d", id, st.EpicID)
		}
		epic.AttachSubTask(id)
	}

	index := schedule.New()
	for _, e := range epics {
		subs := make([]*task.SubTask, 0, len(e.SubTaskIDs))
		for _, id := range e.SubTaskIDs {
			subs = append(subs, subtasks[id])
		}
		task.Recompute(e, subs)
		index.Upsert(e)
	}
	for _, t := range tasks {
		index.Upsert(t)
	}
	for _, st := range subtasks {
		index.Upsert(st)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
	s.epics = epics
	s.subtasks = subtasks
	s.index = index
	s.history.Clear()
	s.nextID = max(s.nextID, maxID+1)
	return nil
}

// RestoreHistory records ids in order, oldest first, skipping ids that do
// not name a live entity.
func (s *Store) RestoreHistory(ids []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.lookupLocked(id); ok {
			s.history.Record(id)
		}
	}
}

// Reset removes every entity of every kind, clears the history and returns
// how many entities were removed. The id counter keeps counting.
func (s *Store) Reset() int {
	s.mu.Lock()
	n := len(s.tasks) + len(s.epics) + len(s.subtasks)
	clear(s.tasks)
	clear(s.epics)
	clear(s.subtasks)
	s.index.Clear()
	s.history.Clear()
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionClear, Count: n, Detail: "all"})
	return n
}

func lookup(tasks map[int]*task.Task, epics map[int]*task.Epic, subtasks map[int]*task.SubTask, id int) (task.Entity, bool) {
	if t, ok := tasks[id]; ok {
		return t, true
	}
	if e, ok := epics[id]; ok {
		return e, true
	}
	if st, ok := subtasks[id]; ok {
		return st, true
	}
	return nil, false
}

func corrupt(format string, args ...any) *clierr.Error {
	return clierr.Newf(clierr.CorruptData, format, args...)
}
