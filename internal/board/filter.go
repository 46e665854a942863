// Package board provides board-level views over the tracked entities:
// filtering, sorting, grouping and summaries.
package board

import (
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// FilterOptions defines which entities to include.
type FilterOptions struct {
	Kinds     []task.Kind
	Statuses  []task.Status
	EpicID    *int  // nil=no filter, non-nil=only subtasks of this epic
	Scheduled *bool // nil=no filter, true=only with a start time
	Search    string
}

// Filter returns entities matching all specified criteria (AND logic).
func Filter(entities []task.Entity, opts FilterOptions) []task.Entity {
	var result []task.Entity
	for _, e := range entities {
		if matchesFilter(e, opts) {
			result = append(result, e)
		}
	}
	return result
}

func matchesFilter(e task.Entity, opts FilterOptions) bool {
	t := e.Base()
	if len(opts.Kinds) > 0 && !slices.Contains(opts.Kinds, e.Kind()) {
		return false
	}
	if len(opts.Statuses) > 0 && !slices.Contains(opts.Statuses, t.Status) {
		return false
	}
	if opts.EpicID != nil {
		st, ok := e.(*task.SubTask)
		if !ok || st.EpicID != *opts.EpicID {
			return false
		}
	}
	if opts.Scheduled != nil && t.Scheduled() != *opts.Scheduled {
		return false
	}
	if opts.Search != "" && !matchesSearch(t, opts.Search) {
		return false
	}
	return true
}

// matchesSearch performs case-insensitive substring matching across name and description.
func matchesSearch(t *task.Task, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}
