package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/date"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// addEntity stores e in the collection matching its kind.
func addEntity(s *store.Store, e task.Entity) (task.Entity, error) {
	switch v := e.(type) {
	case *task.Task:
		return s.AddTask(v)
	case *task.Epic:
		return s.AddEpic(v)
	case *task.SubTask:
		return s.AddSubTask(v)
	}
	return nil, task.NotFoundError(e.Kind(), e.Base().ID)
}

// updateEntity replaces the stored entity with e's id.
func updateEntity(s *store.Store, e task.Entity) (task.Entity, error) {
	switch v := e.(type) {
	case *task.Task:
		return s.UpdateTask(v)
	case *task.Epic:
		return s.UpdateEpic(v)
	case *task.SubTask:
		return s.UpdateSubTask(v)
	}
	return nil, task.NotFoundError(e.Kind(), e.Base().ID)
}

// peekEntity returns a copy of the entity without recording a view. A
// non-empty kind must match.
func peekEntity(s *store.Store, kind task.Kind, id int) (task.Entity, error) {
	e, ok := s.Peek(id)
	if !ok || (kind != "" && e.Kind() != kind) {
		return nil, task.NotFoundError(kind, id)
	}
	return e, nil
}

// getEntity returns the entity and records the view in the history.
func getEntity(s *store.Store, kind task.Kind, id int) (task.Entity, error) {
	switch kind {
	case task.KindTask:
		return s.GetTask(id)
	case task.KindEpic:
		return s.GetEpic(id)
	case task.KindSubTask:
		return s.GetSubTask(id)
	}
	return s.Get(id)
}

// deleteEntity removes the entity. A non-empty kind must match.
func deleteEntity(s *store.Store, kind task.Kind, id int) error {
	switch kind {
	case task.KindTask:
		return s.DeleteTask(id)
	case task.KindEpic:
		return s.DeleteEpic(id)
	case task.KindSubTask:
		return s.DeleteSubTask(id)
	}
	return s.Delete(id)
}

// scheduleFlags registers --start and --duration.
func scheduleFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "start time (YYYY-MM-DD HH:MM or RFC 3339)")
	cmd.Flags().String("duration", "", "duration (e.g. 90m, 1h30m, or minutes)")
}

// applyScheduleFlags copies --start and --duration into rec. An empty
// --start clears the whole schedule.
func applyScheduleFlags(cmd *cobra.Command, rec *task.Record) error {
	if cmd.Flags().Changed("start") {
		raw, _ := cmd.Flags().GetString("start")
		if raw == "" {
			rec.StartTime = nil
			rec.Duration = ""
		} else {
			t, err := date.ParseTime(raw, nil)
			if err != nil {
				return task.ValidateDate("start", raw, err)
			}
			rec.StartTime = &t
		}
	}
	if cmd.Flags().Changed("duration") {
		rec.Duration, _ = cmd.Flags().GetString("duration")
	}
	return nil
}

func printEntities(entities []task.Entity) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, task.ToRecords(entities))
	case output.FormatCompact:
		output.EntityCompact(os.Stdout, entities)
	default:
		output.EntityTable(os.Stdout, entities)
	}
	return nil
}

func printEntity(e task.Entity, subtasks []*task.SubTask) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, task.ToRecord(e))
	case output.FormatCompact:
		output.EntityDetailCompact(os.Stdout, e, subtasks)
	default:
		output.EntityDetail(os.Stdout, e, subtasks)
	}
	return nil
}

func kindNoun(k task.Kind) string {
	switch k {
	case task.KindEpic:
		return "epic"
	case task.KindSubTask:
		return "subtask"
	}
	return "task"
}
