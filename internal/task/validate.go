package task

import (
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
)

// Validate checks the client-settable fields of an entity. It does not check
// that a subtask's epic exists; the store does that.
func Validate(e Entity) error {
	t := e.Base()
	if strings.TrimSpace(t.Name) == "" {
		return ValidateRequired("name")
	}
	if err := ValidateStatus(t.Status); err != nil {
		return err
	}
	if t.Duration != nil && *t.Duration <= 0 {
		return clierr.Newf(clierr.InvalidInput, "duration must be positive, got %s", *t.Duration).
			WithDetails(map[string]any{"duration": t.Duration.String()})
	}
	if s, ok := e.(*SubTask); ok && s.EpicID <= 0 {
		return ValidateRequired("epic id")
	}
	return nil
}

// ValidateStatus checks that a status is one of the known values.
func ValidateStatus(s Status) error {
	if s.Valid() {
		return nil
	}
	return clierr.Newf(clierr.InvalidStatus, "invalid status %q", s).
		WithDetails(map[string]any{
			"status":  s,
			"allowed": Statuses(),
		})
}

// ParseStatus accepts a status case-insensitively, with "-" or " " in place
// of "_" ("in-progress").
func ParseStatus(s string) (Status, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	st := Status(norm)
	if err := ValidateStatus(st); err != nil {
		return "", clierr.Newf(clierr.InvalidStatus, "invalid status %q", s).
			WithDetails(map[string]any{
				"status":  s,
				"allowed": Statuses(),
			})
	}
	return st, nil
}

// ValidateRequired returns an error for a missing required field.
func ValidateRequired(field string) *clierr.Error {
	return clierr.Newf(clierr.InvalidInput, "%s is required", field).
		WithDetails(map[string]any{"field": field})
}

// ValidateDate returns an error for invalid time or duration input.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// ValidateTaskID returns an error for invalid task ID input.
func ValidateTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// NotFoundError reports a missing id in the collection of the given kind.
func NotFoundError(kind Kind, id int) *clierr.Error {
	return clierr.Newf(clierr.NotFound, "%s #%d not found", kindNoun(kind), id).
		WithDetails(map[string]any{
			"kind": kind,
			"id":   id,
		})
}

// InvalidReferenceError reports a subtask naming an epic that does not exist.
func InvalidReferenceError(epicID int) *clierr.Error {
	return clierr.Newf(clierr.InvalidReference, "epic #%d does not exist", epicID).
		WithDetails(map[string]any{"epic_id": epicID})
}

// ScheduleConflictError reports that id's window overlaps otherID's.
func ScheduleConflictError(id, otherID int) *clierr.Error {
	msg := "schedule overlaps task #" + strconv.Itoa(otherID)
	if id > 0 {
		msg = "task #" + strconv.Itoa(id) + " " + msg
	}
	return clierr.New(clierr.ScheduleConflict, msg).
		WithDetails(map[string]any{
			"id":          id,
			"conflict_id": otherID,
		})
}

func kindNoun(k Kind) string {
	switch k {
	case KindTask:
		return "task"
	case KindEpic:
		return "epic"
	case KindSubTask:
		return "subtask"
	}
	return "entity"
}
