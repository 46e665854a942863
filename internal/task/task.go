// Package task defines the tracked entities: plain tasks, epics and the
// subtasks epics own.
package task

import (
	"slices"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
)

// Status is the progress state of a task.
type Status string

// Statuses in board order.
const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Statuses returns all statuses in board order.
func Statuses() []Status {
	return []Status{StatusNew, StatusInProgress, StatusDone}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Kind tags the three entity variants.
type Kind string

// Entity kinds. The string values are the tags written by the codec.
const (
	KindTask    Kind = "TASK"
	KindEpic    Kind = "EPIC"
	KindSubTask Kind = "SUBTASK"
)

// Kinds returns all kinds in listing order.
func Kinds() []Kind {
	return []Kind{KindTask, KindEpic, KindSubTask}
}

// ParseKind accepts a kind tag case-insensitively, singular or plural
// ("task", "Tasks", "SUBTASK").
func ParseKind(s string) (Kind, error) {
	k := strings.ToUpper(strings.TrimSpace(s))
	k = strings.TrimSuffix(k, "S")
	switch Kind(k) {
	case KindTask, KindEpic, KindSubTask:
		return Kind(k), nil
	}
	return "", clierr.Newf(clierr.InvalidKind, "invalid kind %q", s).
		WithDetails(map[string]any{
			"kind":    s,
			"allowed": Kinds(),
		})
}

// Entity is the closed set of tracked variants: *Task, *Epic and *SubTask.
type Entity interface {
	// Base returns the shared task fields.
	Base() *Task
	Kind() Kind
	// End returns the end of the entity's scheduled window, or nil.
	End() *time.Time
	// Clone returns a deep copy.
	Clone() Entity

	sealed()
}

// Task is a standalone unit of work. Epic and SubTask embed it.
type Task struct {
	ID          int
	Name        string
	Description string
	Status      Status
	StartTime   *time.Time
	Duration    *time.Duration
}

// NewTask creates a task in NEW status.
func NewTask(name, description string) *Task {
	return &Task{Name: name, Description: description, Status: StatusNew}
}

// Base implements Entity.
func (t *Task) Base() *Task { return t }

// Kind implements Entity.
func (t *Task) Kind() Kind { return KindTask }

// End returns StartTime + Duration when both are set.
func (t *Task) End() *time.Time {
	if t.StartTime == nil || t.Duration == nil {
		return nil
	}
	end := t.StartTime.Add(*t.Duration)
	return &end
}

// Clone implements Entity.
func (t *Task) Clone() Entity {
	c := t.copyBase()
	return &c
}

// Scheduled reports whether the task has a start time.
func (t *Task) Scheduled() bool { return t.StartTime != nil }

// SetSchedule sets or clears the start time and duration.
func (t *Task) SetSchedule(start *time.Time, d *time.Duration) {
	t.StartTime = copyTime(start)
	t.Duration = copyDuration(d)
}

func (t *Task) copyBase() Task {
	c := *t
	c.StartTime = copyTime(t.StartTime)
	c.Duration = copyDuration(t.Duration)
	return c
}

func (t *Task) sealed() {}

// Epic aggregates subtasks. Its status and schedule are always derived from
// them (see Recompute).
type Epic struct {
	Task
	SubTaskIDs []int
	EndTime    *time.Time
}

// NewEpic creates an epic with no subtasks.
func NewEpic(name, description string) *Epic {
	return &Epic{Task: Task{Name: name, Description: description, Status: StatusNew}}
}

// Kind implements Entity.
func (e *Epic) Kind() Kind { return KindEpic }

// End returns the latest end among the epic's subtasks.
func (e *Epic) End() *time.Time { return copyTime(e.EndTime) }

// Clone implements Entity.
func (e *Epic) Clone() Entity {
	return &Epic{
		Task:       e.copyBase(),
		SubTaskIDs: slices.Clone(e.SubTaskIDs),
		EndTime:    copyTime(e.EndTime),
	}
}

// HasSubTask reports whether id is linked to the epic.
func (e *Epic) HasSubTask(id int) bool {
	return slices.Contains(e.SubTaskIDs, id)
}

// AttachSubTask appends id unless already present.
func (e *Epic) AttachSubTask(id int) {
	if !e.HasSubTask(id) {
		e.SubTaskIDs = append(e.SubTaskIDs, id)
	}
}

// DetachSubTask removes id, keeping the order of the rest.
func (e *Epic) DetachSubTask(id int) {
	e.SubTaskIDs = slices.DeleteFunc(e.SubTaskIDs, func(v int) bool { return v == id })
}

// SubTask is a task owned by exactly one epic.
type SubTask struct {
	Task
	EpicID int
}

// NewSubTask creates a subtask of the given epic in NEW status.
func NewSubTask(epicID int, name, description string) *SubTask {
	return &SubTask{
		Task:   Task{Name: name, Description: description, Status: StatusNew},
		EpicID: epicID,
	}
}

// Kind implements Entity.
func (s *SubTask) Kind() Kind { return KindSubTask }

// Clone implements Entity.
func (s *SubTask) Clone() Entity {
	return &SubTask{Task: s.copyBase(), EpicID: s.EpicID}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyDuration(d *time.Duration) *time.Duration {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
