package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/tasktracker/internal/date"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	activeColumnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeCardStyle = cardStyle.BorderForeground(lipgloss.Color("226"))

	overdueCardStyle = cardStyle.BorderForeground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	kindBadgeStyles = map[task.Kind]lipgloss.Style{
		task.KindTask:    lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
		task.KindEpic:    lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true),
		task.KindSubTask: lipgloss.NewStyle().Foreground(lipgloss.Color("146")),
	}

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2) //nolint:mnd // dialog padding
)

func (b *Board) viewBoard() string {
	colWidth := b.columnWidth()

	rendered := make([]string, len(b.columns))
	for i, col := range b.columns {
		rendered[i] = b.renderColumn(i, col, colWidth)
	}
	boardView := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	// A single card can exceed the budget at very small terminal sizes.
	// Clamp from the bottom, keeping headers at the top, and pad if short.
	targetHeight := b.height - b.chromeHeight()
	if targetHeight > 0 {
		actual := strings.Count(boardView, "\n") + 1
		if actual > targetHeight {
			lines := strings.SplitN(boardView, "\n", targetHeight+1)
			boardView = strings.Join(lines[:targetHeight], "\n")
		} else if actual < targetHeight {
			boardView += strings.Repeat("\n", targetHeight-actual)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, boardView, "", b.renderStatusBar())
}

func (b *Board) renderColumn(colIdx int, col column, width int) string {
	const headerPad = 2
	headerText := truncate(fmt.Sprintf("%s (%d)", col.status, len(col.entities)), width-headerPad)

	header := columnHeaderStyle.Width(width).Render(headerText)
	if colIdx == b.activeCol {
		header = activeColumnHeaderStyle.Width(width).Render(headerText)
	}

	maxVis := b.visibleCardsForColumn(&col, width)
	start := min(col.scrollOff, len(col.entities))
	end := min(start+maxVis, len(col.entities))

	parts := []string{header}
	if start > 0 {
		parts = append(parts, dimStyle.Width(width).Render(truncate(fmt.Sprintf("  ↑ %d more", start), width)))
	}

	if len(col.entities) == 0 {
		parts = append(parts, dimStyle.Width(width).Render("  (empty)"))
	}
	for row := start; row < end; row++ {
		active := colIdx == b.activeCol && row == b.activeRow
		parts = append(parts, b.renderCard(col.entities[row], active, width))
	}

	if end < len(col.entities) {
		more := fmt.Sprintf("  ↓ %d more", len(col.entities)-end)
		parts = append(parts, dimStyle.Width(width).Render(truncate(more, width)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b *Board) renderCard(e task.Entity, active bool, width int) string {
	content := strings.Join(b.cardContentLines(e, width), "\n")

	style := cardStyle
	switch {
	case active:
		style = activeCardStyle
	case b.overdue(e):
		style = overdueCardStyle
	}
	return style.Width(width - 2).Render(content) //nolint:mnd // border width
}

// overdue reports whether e's window has ended while it is not done.
func (b *Board) overdue(e task.Entity) bool {
	end := e.End()
	return end != nil && e.Base().Status != task.StatusDone && end.Before(b.now())
}

func (b *Board) cardHeight(e task.Entity, width int) int {
	return len(b.cardContentLines(e, width)) + 2 //nolint:mnd // top and bottom borders
}

func (b *Board) cardContentLines(e task.Entity, width int) []string {
	const cardChrome = 4 // border (2) + padding (2)
	cardWidth := max(width-cardChrome, 1)
	t := e.Base()

	badge := kindBadgeStyles[e.Kind()].Render(string(e.Kind())) + dimStyle.Render(" #"+strconv.Itoa(t.ID))
	lines := []string{badge}
	lines = append(lines, wrapTitle(t.Name, cardWidth, b.titleLines)...)

	if t.StartTime != nil {
		when := date.Format(t.StartTime)
		if t.Duration != nil {
			when += " · " + date.FormatDuration(*t.Duration)
		}
		lines = append(lines, dimStyle.Render(truncate(when, cardWidth)))
	}

	switch v := e.(type) {
	case *task.Task:
	case *task.Epic:
		lines = append(lines, dimStyle.Render(fmt.Sprintf("%d subtasks", len(v.SubTaskIDs))))
	case *task.SubTask:
		lines = append(lines, dimStyle.Render("epic #"+strconv.Itoa(v.EpicID)))
	}
	return lines
}

// wrapTitle splits a title across maxLines lines, word-wrapping at word
// boundaries. Each line is at most maxWidth characters.
func wrapTitle(title string, maxWidth, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	if lipgloss.Width(title) <= maxWidth || maxLines == 1 {
		return []string{truncate(title, maxWidth)}
	}

	words := strings.Fields(title)
	lines := make([]string, 0, maxLines)
	var current strings.Builder

	for i, word := range words {
		if current.Len() == 0 {
			current.WriteString(word)
			continue
		}
		if lipgloss.Width(current.String())+1+lipgloss.Width(word) <= maxWidth {
			current.WriteByte(' ')
			current.WriteString(word)
			continue
		}
		lines = append(lines, truncate(current.String(), maxWidth))
		current.Reset()
		current.WriteString(word)
		if len(lines) == maxLines-1 {
			// Last line takes the rest and is truncated.
			for _, w := range words[i+1:] {
				current.WriteByte(' ')
				current.WriteString(w)
			}
			break
		}
	}
	if current.Len() > 0 {
		lines = append(lines, truncate(current.String(), maxWidth))
	}
	return lines
}

func (b *Board) renderStatusBar() string {
	status := fmt.Sprintf(" %s | %d items | enter:view s:status d:del C:clear-all q:quit",
		b.name, len(b.entities))
	status = truncate(status, b.width)

	if b.err != nil {
		errStr := errorStyle.Render(truncate("Error: "+b.err.Error(), b.width))
		return errStr + "\n" + statusBarStyle.Render(status)
	}
	return statusBarStyle.Render(status)
}

func (b *Board) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete?") + "\n\n" +
		fmt.Sprintf("  #%d: %s", b.deleteID, b.deleteName) + "\n\n" +
		dimStyle.Render("y:yes  n:no")
	return dialogStyle.Render(content)
}

func (b *Board) viewClearAllConfirm() string {
	content := errorStyle.Render("Delete EVERYTHING?") + "\n\n" +
		fmt.Sprintf("  %d items will be removed.", b.clearAllCount) + "\n\n" +
		dimStyle.Render("y:yes  n:no")
	return dialogStyle.Render(content)
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte characters.
	runes := []rune(s)
	target := min(maxLen-3, len(runes)) //nolint:mnd // room for "..."
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
