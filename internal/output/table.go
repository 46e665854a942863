package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/tasktracker/internal/activity"
	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/date"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true)

	// Status colors aligned with TUI column-header palette.
	statusStyles = map[task.Status]lipgloss.Style{
		task.StatusNew:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		task.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}

	kindStyles = map[task.Kind]lipgloss.Style{
		task.KindTask:    lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
		task.KindEpic:    lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true),
		task.KindSubTask: lipgloss.NewStyle().Foreground(lipgloss.Color("146")),
	}
)

// EntityTable renders a list of entities as a formatted table.
func EntityTable(w io.Writer, entities []task.Entity) {
	if len(entities) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, kindW, statusW, nameW, startW, durW := 4, 6, 8, 6, 18, 10
	for _, e := range entities {
		t := e.Base()
		idW = max(idW, len(strconv.Itoa(t.ID))+pad)
		kindW = max(kindW, len(e.Kind())+pad)
		statusW = max(statusW, len(t.Status)+pad)
		nameW = max(nameW, min(len(t.Name)+pad, 50)) //nolint:mnd // max name column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %s",
		idW, "ID", kindW, "KIND", statusW, "STATUS", nameW, "NAME",
		startW, "START", durW, "DURATION", "LINKS")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, e := range entities {
		t := e.Base()
		name := t.Name
		const maxName = 48
		if len(name) > maxName {
			name = name[:maxName-3] + "..."
		}

		row := fmt.Sprintf("%-*d %s %s %s %s %s %s",
			idW, t.ID,
			padRight(kindStyle(e.Kind()), kindW),
			padRight(statusStyle(t.Status), statusW),
			padRight(name, nameW),
			padRight(orDash(date.Format(t.StartTime)), startW),
			padRight(orDash(durationText(t)), durW),
			orDash(links(e)))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// EntityDetail renders a single entity with full detail. subtasks is shown
// for epics and may be nil otherwise.
func EntityDetail(w io.Writer, e task.Entity, subtasks []*task.SubTask) {
	t := e.Base()
	titleLine := fmt.Sprintf("%s #%d: %s", kindLabel(e.Kind()), t.ID, t.Name)
	fmt.Fprintln(w, titleStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "Kind", kindStyle(e.Kind()))
	printField(w, "Status", statusStyle(t.Status))
	printField(w, "Start", orDash(date.Format(t.StartTime)))
	printField(w, "Duration", orDash(durationText(t)))
	printField(w, "End", orDash(date.Format(e.End())))

	switch v := e.(type) {
	case *task.Task:
	case *task.Epic:
		printField(w, "Subtasks", strconv.Itoa(len(v.SubTaskIDs)))
		for _, st := range subtasks {
			fmt.Fprintf(w, "    #%-4d %s %s\n", st.ID, padRight(statusStyle(st.Status), 12), st.Name) //nolint:mnd // status column width
		}
	case *task.SubTask:
		printField(w, "Epic", "#"+strconv.Itoa(v.EpicID))
	}

	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderMarkdown(t.Description))
	}
}

// OverviewTable renders a tracker summary as a formatted dashboard.
func OverviewTable(w io.Writer, s board.Overview) {
	fmt.Fprintln(w, titleStyle.Render(s.TrackerName))
	fmt.Fprintf(w, "Total: %d (%d scheduled, %d unscheduled)\n", s.Total, s.Scheduled, s.Unscheduled)
	if s.ScheduledTime > 0 {
		fmt.Fprintf(w, "Planned time: %s\n", date.FormatDuration(s.ScheduledTime))
	}
	fmt.Fprintln(w)

	const colW = 16
	header := fmt.Sprintf("%-16s %6s %10s", "STATUS", "COUNT", "SCHEDULED")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, ss := range s.Statuses {
		fmt.Fprintf(w, "%s %6d %10d\n", padRight(statusStyle(ss.Status), colW), ss.Count, ss.Scheduled)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-16s %6s", "KIND", "COUNT")))
	for _, kc := range s.Kinds {
		fmt.Fprintf(w, "%s %6d\n", padRight(kindStyle(kc.Kind), colW), kc.Count)
	}

	if s.Upcoming != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Next up: #%d %s at %s\n", s.Upcoming.ID, s.Upcoming.Name, date.Format(s.Upcoming.StartTime))
	}
}

// GroupedTable renders a grouped board view with per-group status breakdowns.
func GroupedTable(w io.Writer, gs board.GroupedSummary) {
	if len(gs.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}

	for i, g := range gs.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d)", g.Key, g.Total)))

		for _, ss := range g.Statuses {
			if ss.Count == 0 {
				continue
			}
			const groupStatusW = 16
			fmt.Fprintf(w, "  %s %d\n", padRight(statusStyle(ss.Status), groupStatusW), ss.Count)
		}
	}
}

// ActivityTable renders activity log entries, oldest first.
func ActivityTable(w io.Writer, entries []activity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}

	header := fmt.Sprintf("%-16s %-8s %-8s %-6s %s", "TIME", "ACTION", "KIND", "ID", "DETAIL")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range entries {
		id := dimStyle.Render("--")
		if e.TaskID > 0 {
			id = strconv.Itoa(e.TaskID)
		}
		detail := e.Detail
		if e.Count > 0 {
			detail = strconv.Itoa(e.Count) + " removed"
		}
		row := fmt.Sprintf("%-16s %-8s %s %s %s",
			e.Timestamp.Local().Format(date.Layout), e.Action,
			padRight(kindStyle(e.Kind), 8), padRight(id, 6), detail) //nolint:mnd // column widths
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func orDash(s string) string {
	if s == "" {
		return dimStyle.Render("--")
	}
	return s
}

func statusStyle(s task.Status) string {
	if st, ok := statusStyles[s]; ok {
		return st.Render(string(s))
	}
	return string(s)
}

func kindStyle(k task.Kind) string {
	if st, ok := kindStyles[k]; ok {
		return st.Render(string(k))
	}
	return string(k)
}

func kindLabel(k task.Kind) string {
	switch k {
	case task.KindTask:
		return "Task"
	case task.KindEpic:
		return "Epic"
	case task.KindSubTask:
		return "Subtask"
	}
	return string(k)
}

func durationText(t *task.Task) string {
	if t.Duration == nil {
		return ""
	}
	return date.FormatDuration(*t.Duration)
}

// links describes an entity's relations: an epic's subtasks or a subtask's epic.
func links(e task.Entity) string {
	switch v := e.(type) {
	case *task.Task:
	case *task.Epic:
		if len(v.SubTaskIDs) == 0 {
			return ""
		}
		parts := make([]string, len(v.SubTaskIDs))
		for i, id := range v.SubTaskIDs {
			parts[i] = "#" + strconv.Itoa(id)
		}
		return "subtasks " + strings.Join(parts, ",")
	case *task.SubTask:
		return "epic #" + strconv.Itoa(v.EpicID)
	}
	return ""
}
