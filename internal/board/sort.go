package board

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

const (
	fieldID     = "id"
	fieldKind   = "kind"
	fieldStatus = "status"
	fieldEpic   = "epic"
)

// SortFields returns the accepted --sort values.
func SortFields() []string {
	return []string{fieldID, "name", fieldStatus, "start", "end"}
}

// Sort sorts entities by the given field, falling back to id for ties.
// Statuses sort in board order; entities without a start or end sort last.
func Sort(entities []task.Entity, field string, reverse bool) {
	slices.SortStableFunc(entities, func(a, b task.Entity) int {
		c := compareEntities(a, b, field)
		if c == 0 {
			c = cmp.Compare(a.Base().ID, b.Base().ID)
		}
		if reverse {
			return -c
		}
		return c
	})
}

func compareEntities(a, b task.Entity, field string) int {
	switch field {
	case "name":
		return cmp.Compare(strings.ToLower(a.Base().Name), strings.ToLower(b.Base().Name))
	case fieldStatus:
		return cmp.Compare(statusIndex(a.Base().Status), statusIndex(b.Base().Status))
	case "start":
		return compareTimes(a.Base().StartTime, b.Base().StartTime)
	case "end":
		return compareTimes(a.End(), b.End())
	default:
		return cmp.Compare(a.Base().ID, b.Base().ID)
	}
}

func compareTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1 // nil sorts last
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

func statusIndex(s task.Status) int {
	return slices.Index(task.Statuses(), s)
}
