package task

import (
	"slices"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/date"
)

// Record is the flat, serializable form of any entity. It is what the JSON
// output and the HTTP surface read and write.
type Record struct {
	ID          int        `json:"id" yaml:"id"`
	Kind        Kind       `json:"kind" yaml:"kind"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description,omitempty"`
	Status      Status     `json:"status" yaml:"status"`
	StartTime   *time.Time `json:"startTime,omitempty" yaml:"start_time,omitempty"`
	Duration    string     `json:"duration,omitempty" yaml:"duration,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty" yaml:"end_time,omitempty"`
	EpicID      int        `json:"epicId,omitempty" yaml:"epic_id,omitempty"`
	SubTaskIDs  []int      `json:"subTaskIds,omitempty" yaml:"sub_task_ids,omitempty"`
}

// ToRecord flattens an entity.
func ToRecord(e Entity) Record {
	t := e.Base()
	r := Record{
		ID:          t.ID,
		Kind:        e.Kind(),
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		StartTime:   copyTime(t.StartTime),
		EndTime:     e.End(),
	}
	if t.Duration != nil {
		r.Duration = t.Duration.String()
	}

	switch v := e.(type) {
	case *Task:
	case *Epic:
		r.SubTaskIDs = slices.Clone(v.SubTaskIDs)
		if r.SubTaskIDs == nil {
			r.SubTaskIDs = []int{}
		}
	case *SubTask:
		r.EpicID = v.EpicID
	}
	return r
}

// ToRecords flattens a list of entities.
func ToRecords[E Entity](list []E) []Record {
	out := make([]Record, 0, len(list))
	for _, e := range list {
		out = append(out, ToRecord(e))
	}
	return out
}

// Entity builds and validates the entity described by r. kind overrides
// r.Kind when set (the URL decides the kind on the HTTP surface). An empty
// status defaults to NEW. Derived fields (EndTime, SubTaskIDs) are ignored.
func (r Record) Entity(kind Kind) (Entity, error) {
	if kind == "" {
		kind = r.Kind
	}
	kind, err := ParseKind(string(kind))
	if err != nil {
		return nil, err
	}

	base := Task{
		ID:          r.ID,
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Status:      r.Status,
		StartTime:   copyTime(r.StartTime),
	}
	if base.Status == "" {
		base.Status = StatusNew
	}
	if r.Duration != "" {
		d, err := date.ParseDuration(r.Duration)
		if err != nil {
			return nil, ValidateDate("duration", r.Duration, err)
		}
		base.Duration = &d
	}

	var e Entity
	switch kind {
	case KindTask:
		e = &base
	case KindEpic:
		e = &Epic{Task: base}
	case KindSubTask:
		e = &SubTask{Task: base, EpicID: r.EpicID}
	}
	if err := Validate(e); err != nil {
		return nil, err
	}
	return e, nil
}
