package board

import (
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// ListOptions controls how entities are listed.
type ListOptions struct {
	Filter  FilterOptions
	SortBy  string
	Reverse bool
	Limit   int
}

// List returns the store's entities with filters, sorting and limit applied.
// Listing does not touch the view history.
func List(s *store.Store, opts ListOptions) []task.Entity {
	entities := Filter(s.All(), opts.Filter)

	sortField := opts.SortBy
	if sortField == "" {
		sortField = fieldID
	}
	Sort(entities, sortField, opts.Reverse)

	if opts.Limit > 0 && len(entities) > opts.Limit {
		entities = entities[:opts.Limit]
	}
	return entities
}

// StatusSummary holds metrics for a single status column.
type StatusSummary struct {
	Status    task.Status `json:"status"`
	Count     int         `json:"count"`
	Scheduled int         `json:"scheduled"`
}

// KindCount holds a count for an entity kind.
type KindCount struct {
	Kind  task.Kind `json:"kind"`
	Count int       `json:"count"`
}

// Overview is the aggregate tracker overview.
type Overview struct {
	TrackerName   string          `json:"tracker_name"`
	Total         int             `json:"total"`
	Statuses      []StatusSummary `json:"statuses"`
	Kinds         []KindCount     `json:"kinds"`
	Scheduled     int             `json:"scheduled"`
	Unscheduled   int             `json:"unscheduled"`
	ScheduledTime time.Duration   `json:"-"`
	ScheduledMins int             `json:"scheduled_minutes"`
	Upcoming      *task.Record    `json:"upcoming,omitempty"`
}

// Summary computes an overview of the given entities. ScheduledTime sums
// task and subtask durations; epic durations are already the sum of their
// subtasks'. Upcoming is the first scheduled, not yet done, non-epic entity
// starting at or after now.
func Summary(name string, entities []task.Entity, now time.Time) Overview {
	kindMap := make(map[task.Kind]int, len(task.Kinds()))
	ov := Overview{
		TrackerName: name,
		Total:       len(entities),
		Statuses:    statusSummary(entities),
	}

	var upcoming task.Entity
	for _, e := range entities {
		kindMap[e.Kind()]++
		t := e.Base()
		if !t.Scheduled() {
			ov.Unscheduled++
			continue
		}
		ov.Scheduled++
		if e.Kind() == task.KindEpic {
			continue
		}
		if t.Duration != nil {
			ov.ScheduledTime += *t.Duration
		}
		if t.Status != task.StatusDone && !t.StartTime.Before(now) &&
			(upcoming == nil || t.StartTime.Before(*upcoming.Base().StartTime)) {
			upcoming = e
		}
	}

	for _, k := range task.Kinds() {
		ov.Kinds = append(ov.Kinds, KindCount{Kind: k, Count: kindMap[k]})
	}
	ov.ScheduledMins = int(ov.ScheduledTime / time.Minute)
	if upcoming != nil {
		r := task.ToRecord(upcoming)
		ov.Upcoming = &r
	}
	return ov
}

func statusSummary(entities []task.Entity) []StatusSummary {
	statusMap := make(map[task.Status]*StatusSummary, len(task.Statuses()))
	for _, s := range task.Statuses() {
		statusMap[s] = &StatusSummary{Status: s}
	}
	for _, e := range entities {
		if ss, ok := statusMap[e.Base().Status]; ok {
			ss.Count++
			if e.Base().Scheduled() {
				ss.Scheduled++
			}
		}
	}

	out := make([]StatusSummary, 0, len(statusMap))
	for _, s := range task.Statuses() {
		out = append(out, *statusMap[s])
	}
	return out
}

// ParseIDs splits a comma-separated ID string into deduplicated int IDs.
func ParseIDs(arg string) ([]int, error) {
	parts := strings.Split(arg, ",")
	seen := make(map[int]bool, len(parts))
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return nil, task.ValidateTaskID(p)
		}
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if len(ids) == 0 {
		return nil, clierr.New(clierr.InvalidTaskID, "no valid task IDs provided")
	}
	return ids, nil
}

// ParseID parses a single positive id.
func ParseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, task.ValidateTaskID(arg)
	}
	return id, nil
}
