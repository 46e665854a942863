// Package store owns the tracked entities. It allocates ids, keeps epics in
// step with their subtasks, and feeds the recency tracker and the schedule
// index on every mutation.
//
// The store holds canonical values; every entity it returns is a clone, and
// every entity passed in is cloned before it is kept.
package store

import (
	"cmp"
	"maps"
	"slices"
	"sync"

	"github.com/twiced-technology-gmbh/tasktracker/internal/history"
	"github.com/twiced-technology-gmbh/tasktracker/internal/schedule"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// Store is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	nextID   int
	tasks    map[int]*task.Task
	epics    map[int]*task.Epic
	subtasks map[int]*task.SubTask

	history   *history.Tracker
	index     *schedule.Index
	observers []Observer
}

// Option configures a Store.
type Option func(*Store)

// WithHistoryLimit bounds the recency history. Zero means unbounded.
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.history = history.New(n) }
}

// WithObserver registers fn to be called after every successful mutation.
func WithObserver(fn Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, fn) }
}

// New creates an empty store. Ids start at 1.
func New(opts ...Option) *Store {
	s := &Store{
		nextID:   1,
		tasks:    make(map[int]*task.Task),
		epics:    make(map[int]*task.Epic),
		subtasks: make(map[int]*task.SubTask),
		history:  history.New(0),
		index:    schedule.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTask stores a copy of t under a fresh id and returns the stored task.
// The caller's id is ignored.
func (s *Store) AddTask(t *task.Task) (*task.Task, error) {
	if err := task.Validate(t); err != nil {
		return nil, err
	}
	c := t.Clone().(*task.Task)
	c.ID = 0

	s.mu.Lock()
	if err := s.index.Validate(c); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	c.ID = s.allocID()
	s.tasks[c.ID] = c
	s.index.Upsert(c)
	out := c.Clone().(*task.Task)
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionAdd, Kind: task.KindTask, ID: out.ID, Detail: out.Name})
	return out, nil
}

// AddEpic stores a copy of e under a fresh id. Client-supplied subtask ids,
// status and schedule are discarded; a new epic has no subtasks.
func (s *Store) AddEpic(e *task.Epic) (*task.Epic, error) {
	if err := task.Validate(e); err != nil {
		return nil, err
	}
	c := e.Clone().(*task.Epic)
	c.SubTaskIDs = nil
	task.Recompute(c, nil)

	s.mu.Lock()
	c.ID = s.allocID()
	s.epics[c.ID] = c
	s.index.Upsert(c)
	out := c.Clone().(*task.Epic)
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionAdd, Kind: task.KindEpic, ID: out.ID, Detail: out.Name})
	return out, nil
}

// AddSubTask stores a copy of st under a fresh id, links it to its epic and
// recomputes the epic. The epic must exist.
func (s *Store) AddSubTask(st *task.SubTask) (*task.SubTask, error) {
	if err := task.Validate(st); err != nil {
		return nil, err
	}
	c := st.Clone().(*task.SubTask)
	c.ID = 0

	s.mu.Lock()
	epic, ok := s.epics[c.EpicID]
	if !ok {
		s.mu.Unlock()
		return nil, task.InvalidReferenceError(c.EpicID)
	}
	if err := s.index.Validate(c); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	c.ID = s.allocID()
	s.subtasks[c.ID] = c
	s.index.Upsert(c)
	epic.AttachSubTask(c.ID)
	s.recomputeLocked(epic)
	out := c.Clone().(*task.SubTask)
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionAdd, Kind: task.KindSubTask, ID: out.ID, Detail: out.Name})
	return out, nil
}

// UpdateTask replaces the task with t's id.
func (s *Store) UpdateTask(t *task.Task) (*task.Task, error) {
	if err := task.Validate(t); err != nil {
		return nil, err
	}
	c := t.Clone().(*task.Task)

	s.mu.Lock()
	if _, ok := s.tasks[c.ID]; !ok {
		s.mu.Unlock()
		return nil, task.NotFoundError(task.KindTask, c.ID)
	}
	if err := s.index.Validate(c); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.tasks[c.ID] = c
	s.index.Upsert(c)
	out := c.Clone().(*task.Task)
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionUpdate, Kind: task.KindTask, ID: out.ID, Detail: out.Name})
	return out, nil
}

// UpdateEpic replaces the epic's name and description. Its subtasks, status
// and schedule stay derived from the subtasks.
func (s *Store) UpdateEpic(e *task.Epic) (*task.Epic, error) {
	if err := task.Validate(e); err != nil {
		return nil, err
	}

	s.mu.Lock()
	cur, ok := s.epics[e.ID]
	if !ok {
		s.mu.Unlock()
		return nil, task.NotFoundError(task.KindEpic, e.ID)
	}
	cur.Name = e.Name
	cur.Description = e.Description
	s.recomputeLocked(cur)
	out := cur.Clone().(*task.Epic)
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionUpdate, Kind: task.KindEpic, ID: out.ID, Detail: out.Name})
	return out, nil
}

// UpdateSubTask replaces the subtask with st's id and recomputes its epic.
// Naming a different existing epic moves the subtask there.
func (s *Store) UpdateSubTask(st *task.SubTask) (*task.SubTask, error) {
	if err := task.Validate(st); err != nil {
		return nil, err
	}
	c := st.Clone().(*task.SubTask)

	s.mu.Lock()
	cur, ok := s.subtasks[c.ID]
	if !ok {
		s.mu.Unlock()
		return nil, task.NotFoundError(task.KindSubTask, c.ID)
	}
	epic, ok := s.epics[c.EpicID]
	if !ok {
		s.mu.Unlock()
		return nil, task.InvalidReferenceError(c.EpicID)
	}
	if err := s.index.Validate(c); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.subtasks[c.ID] = c
	s.index.Upsert(c)
	if cur.EpicID != c.EpicID {
		if old, ok := s.epics[cur.EpicID]; ok {
			old.DetachSubTask(c.ID)
			s.recomputeLocked(old)
		}
		epic.AttachSubTask(c.ID)
	}
	s.recomputeLocked(epic)
	out := c.Clone().(*task.SubTask)
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionUpdate, Kind: task.KindSubTask, ID: out.ID, Detail: out.Name})
	return out, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id int) error {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return task.NotFoundError(task.KindTask, id)
	}
	delete(s.tasks, id)
	s.forgetLocked(id)
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionDelete, Kind: task.KindTask, ID: id, Detail: t.Name})
	return nil
}

// DeleteEpic removes an epic and all of its subtasks.
func (s *Store) DeleteEpic(id int) error {
	s.mu.Lock()
	e, ok := s.epics[id]
	if !ok {
		s.mu.Unlock()
		return task.NotFoundError(task.KindEpic, id)
	}
	for _, sid := range e.SubTaskIDs {
		delete(s.subtasks, sid)
		s.forgetLocked(sid)
	}
	delete(s.epics, id)
	s.forgetLocked(id)
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionDelete, Kind: task.KindEpic, ID: id, Detail: e.Name})
	return nil
}

// DeleteSubTask removes a subtask, detaches it from its epic and recomputes
// the epic.
func (s *Store) DeleteSubTask(id int) error {
	s.mu.Lock()
	st, ok := s.subtasks[id]
	if !ok {
		s.mu.Unlock()
		return task.NotFoundError(task.KindSubTask, id)
	}
	delete(s.subtasks, id)
	s.forgetLocked(id)
	if e, ok := s.epics[st.EpicID]; ok {
		e.DetachSubTask(id)
		s.recomputeLocked(e)
	}
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionDelete, Kind: task.KindSubTask, ID: id, Detail: st.Name})
	return nil
}

// Delete removes the entity with the given id, whatever its kind.
func (s *Store) Delete(id int) error {
	s.mu.RLock()
	kind, ok := s.kindOfLocked(id)
	s.mu.RUnlock()
	if !ok {
		return task.NotFoundError("", id)
	}

	switch kind {
	case task.KindTask:
		return s.DeleteTask(id)
	case task.KindEpic:
		return s.DeleteEpic(id)
	case task.KindSubTask:
		return s.DeleteSubTask(id)
	}
	return task.NotFoundError(kind, id)
}

// DeleteAllTasks removes every plain task and returns how many were removed.
func (s *Store) DeleteAllTasks() int {
	s.mu.Lock()
	n := len(s.tasks)
	for id := range s.tasks {
		s.forgetLocked(id)
	}
	clear(s.tasks)
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionClear, Kind: task.KindTask, Count: n})
	return n
}

// DeleteAllEpics removes every epic and, with them, every subtask.
func (s *Store) DeleteAllEpics() int {
	s.mu.Lock()
	n := len(s.epics) + len(s.subtasks)
	for id := range s.epics {
		s.forgetLocked(id)
	}
	for id := range s.subtasks {
		s.forgetLocked(id)
	}
	clear(s.epics)
	clear(s.subtasks)
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionClear, Kind: task.KindEpic, Count: n})
	return n
}

// DeleteAllSubTasks removes every subtask and resets every epic.
func (s *Store) DeleteAllSubTasks() int {
	s.mu.Lock()
	n := len(s.subtasks)
	for id := range s.subtasks {
		s.forgetLocked(id)
	}
	clear(s.subtasks)
	for _, e := range s.epics {
		e.SubTaskIDs = nil
		s.recomputeLocked(e)
	}
	s.mu.Unlock()

	s.notify(Mutation{Action: ActionClear, Kind: task.KindSubTask, Count: n})
	return n
}

// GetTask returns a task and records it in the history.
func (s *Store) GetTask(id int) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, task.NotFoundError(task.KindTask, id)
	}
	s.history.Record(id)
	return t.Clone().(*task.Task), nil
}

// GetEpic returns an epic and records it in the history.
func (s *Store) GetEpic(id int) (*task.Epic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.epics[id]
	if !ok {
		return nil, task.NotFoundError(task.KindEpic, id)
	}
	s.history.Record(id)
	return e.Clone().(*task.Epic), nil
}

// GetSubTask returns a subtask and records it in the history.
func (s *Store) GetSubTask(id int) (*task.SubTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.subtasks[id]
	if !ok {
		return nil, task.NotFoundError(task.KindSubTask, id)
	}
	s.history.Record(id)
	return st.Clone().(*task.SubTask), nil
}

// Get returns the entity with the given id, whatever its kind, and records
// it in the history.
func (s *Store) Get(id int) (task.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupLocked(id)
	if !ok {
		return nil, task.NotFoundError("", id)
	}
	s.history.Record(id)
	return e.Clone(), nil
}

// Peek returns the entity with the given id without touching the history.
func (s *Store) Peek(id int) (task.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookupLocked(id)
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// Tasks returns all plain tasks ordered by id.
func (s *Store) Tasks() []*task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedClones(s.tasks)
}

// Epics returns all epics ordered by id.
func (s *Store) Epics() []*task.Epic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedClones(s.epics)
}

// SubTasks returns all subtasks ordered by id.
func (s *Store) SubTasks() []*task.SubTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedClones(s.subtasks)
}

// SubTasksOf returns an epic's subtasks in the order they were linked.
func (s *Store) SubTasksOf(epicID int) ([]*task.SubTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.epics[epicID]
	if !ok {
		return nil, task.NotFoundError(task.KindEpic, epicID)
	}
	out := make([]*task.SubTask, 0, len(e.SubTaskIDs))
	for _, id := range e.SubTaskIDs {
		if st, ok := s.subtasks[id]; ok {
			out = append(out, st.Clone().(*task.SubTask))
		}
	}
	return out, nil
}

// All returns every entity of every kind ordered by id.
func (s *Store) All() []task.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allLocked()
}

// History returns the viewed entities, oldest first; the most recently
// viewed entity is last.
func (s *Store) History() []task.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveLocked(s.history.Snapshot())
}

// RecentHistory returns the viewed entities, most recent first.
func (s *Store) RecentHistory() []task.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveLocked(s.history.Recent())
}

// HistoryIDs returns the ids of History.
func (s *Store) HistoryIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Snapshot()
}

// Prioritized returns every entity with a start time, ordered by start time
// and then id.
func (s *Store) Prioritized() []task.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveLocked(s.index.IDs())
}

// Counts returns the number of entities of each kind.
func (s *Store) Counts() map[task.Kind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[task.Kind]int{
		task.KindTask:    len(s.tasks),
		task.KindEpic:    len(s.epics),
		task.KindSubTask: len(s.subtasks),
	}
}

// NextID returns the id the next added entity will get.
func (s *Store) NextID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

func (s *Store) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) recomputeLocked(e *task.Epic) {
	subs := make([]*task.SubTask, 0, len(e.SubTaskIDs))
	for _, id := range e.SubTaskIDs {
		if st, ok := s.subtasks[id]; ok {
			subs = append(subs, st)
		}
	}
	task.Recompute(e, subs)
	s.index.Upsert(e)
}

func (s *Store) forgetLocked(id int) {
	s.history.Remove(id)
	s.index.Remove(id)
}

func (s *Store) kindOfLocked(id int) (task.Kind, bool) {
	e, ok := s.lookupLocked(id)
	if !ok {
		return "", false
	}
	return e.Kind(), true
}

func (s *Store) lookupLocked(id int) (task.Entity, bool) {
	if t, ok := s.tasks[id]; ok {
		return t, true
	}
	if e, ok := s.epics[id]; ok {
		return e, true
	}
	if st, ok := s.subtasks[id]; ok {
		return st, true
	}
	return nil, false
}

func (s *Store) resolveLocked(ids []int) []task.Entity {
	out := make([]task.Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.lookupLocked(id); ok {
			out = append(out, e.Clone())
		}
	}
	return out
}

func (s *Store) allLocked() []task.Entity {
	out := make([]task.Entity, 0, len(s.tasks)+len(s.epics)+len(s.subtasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	for _, e := range s.epics {
		out = append(out, e.Clone())
	}
	for _, st := range s.subtasks {
		out = append(out, st.Clone())
	}
	slices.SortFunc(out, func(a, b task.Entity) int { return cmp.Compare(a.Base().ID, b.Base().ID) })
	return out
}

func sortedClones[E task.Entity](m map[int]E) []E {
	ids := slices.Sorted(maps.Keys(m))
	out := make([]E, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id].Clone().(E))
	}
	return out
}
