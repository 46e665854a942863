package store

import "github.com/twiced-technology-gmbh/tasktracker/internal/task"

// Mutation actions.
const (
	ActionAdd    = "add"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionClear  = "clear"
)

// Mutation describes one successful change to the store.
type Mutation struct {
	Action string
	Kind   task.Kind
	// ID is zero for bulk actions.
	ID     int
	Detail string
	// Count is the number of entities affected by a bulk action.
	Count int
}

// Observer receives mutations after the store lock is released, so it may
// call back into the store.
type Observer func(Mutation)

func (s *Store) notify(m Mutation) {
	for _, fn := range s.observers {
		fn(m)
	}
}
