package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/date"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// EntityCompact renders a list of entities in one-line-per-record compact format.
func EntityCompact(w io.Writer, entities []task.Entity) {
	if len(entities) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, e := range entities {
		fmt.Fprintln(w, formatEntityLine(e))
	}
}

// EntityDetailCompact renders a single entity with detail in compact format.
func EntityDetailCompact(w io.Writer, e task.Entity, subtasks []*task.SubTask) {
	fmt.Fprintln(w, formatEntityLine(e))
	for _, st := range subtasks {
		fmt.Fprintln(w, "  "+formatEntityLine(st))
	}

	if d := e.Base().Description; d != "" {
		for _, line := range strings.Split(d, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// OverviewCompact renders a tracker summary in compact format.
func OverviewCompact(w io.Writer, s board.Overview) {
	fmt.Fprintf(w, "%s (%d tasks, %d scheduled)\n", s.TrackerName, s.Total, s.Scheduled)

	for _, ss := range s.Statuses {
		fmt.Fprintln(w, "  "+string(ss.Status)+": "+strconv.Itoa(ss.Count))
	}

	parts := make([]string, 0, len(s.Kinds))
	for _, kc := range s.Kinds {
		parts = append(parts, strings.ToLower(string(kc.Kind))+"="+strconv.Itoa(kc.Count))
	}
	fmt.Fprintln(w, "Kinds: "+strings.Join(parts, " "))
}

// formatEntityLine builds the one-line representation of an entity.
func formatEntityLine(e task.Entity) string {
	t := e.Base()
	line := "#" + strconv.Itoa(t.ID) + " [" + string(e.Kind()) + "/" + string(t.Status) + "] " + t.Name

	if t.StartTime != nil {
		line += " @" + date.Format(t.StartTime)
	}
	if t.Duration != nil {
		line += " for " + date.FormatDuration(*t.Duration)
	}
	if l := links(e); l != "" {
		line += " (" + l + ")"
	}
	return line
}
