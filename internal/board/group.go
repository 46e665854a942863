package board

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// GroupedSummary holds entities grouped by a field.
type GroupedSummary struct {
	Groups []GroupSummary `json:"groups"`
}

// GroupSummary is one group within a grouped view.
type GroupSummary struct {
	Key      string          `json:"key"`
	Statuses []StatusSummary `json:"statuses"`
	Total    int             `json:"total"`
}

// GroupBy groups entities by the specified field and returns summaries per group.
// Grouping by epic covers subtasks only.
func GroupBy(entities []task.Entity, field string) GroupedSummary {
	groups := make(map[string][]task.Entity)
	order := make(map[string]int)

	for _, e := range entities {
		key, rank, ok := groupKey(e, field)
		if !ok {
			continue
		}
		groups[key] = append(groups[key], e)
		order[key] = rank
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(order[a], order[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	result := GroupedSummary{Groups: make([]GroupSummary, 0, len(keys))}
	for _, key := range keys {
		members := groups[key]
		result.Groups = append(result.Groups, GroupSummary{
			Key:      key,
			Statuses: statusSummary(members),
			Total:    len(members),
		})
	}
	return result
}

// groupKey returns the group key of e and a rank that orders groups.
func groupKey(e task.Entity, field string) (string, int, bool) {
	switch field {
	case fieldKind:
		return string(e.Kind()), slices.Index(task.Kinds(), e.Kind()), true
	case fieldStatus:
		return string(e.Base().Status), statusIndex(e.Base().Status), true
	case fieldEpic:
		st, ok := e.(*task.SubTask)
		if !ok {
			return "", 0, false
		}
		return "epic #" + strconv.Itoa(st.EpicID), st.EpicID, true
	default:
		return "(all)", 0, true
	}
}

// ValidGroupByFields returns the list of valid --group-by field names.
func ValidGroupByFields() []string {
	return []string{fieldKind, fieldStatus, fieldEpic}
}
