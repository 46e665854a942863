// Package tui implements the terminal status board.
package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewBoard view = iota
	viewDetail
	viewConfirmDelete
	viewConfirmClearAll
)

// Key and layout constants.
const (
	keyEsc   = "esc"
	keyEnter = "enter"

	boardChrome  = 2                // blank line + status bar below the column area
	errorChrome  = 1                // extra line when error toast is displayed
	tickInterval = 30 * time.Second // how often overdue markers refresh
)

var errDerivedStatus = errors.New("an epic's status follows its subtasks")

// Source loads the tracker state and applies changes to it.
type Source interface {
	Load() (*store.Store, error)
	Update(fn func(*store.Store) error) error
}

// Board is the top-level bubbletea model.
type Board struct {
	src        Source
	name       string
	titleLines int

	entities  []task.Entity
	columns   []column
	activeCol int
	activeRow int
	view      view
	width     int
	height    int
	err       error
	now       func() time.Time

	// Detail view.
	detail   task.Entity
	subtasks []*task.SubTask

	// Delete confirmation.
	deleteID   int
	deleteName string

	clearAllCount int
}

// column groups entities with a single status.
type column struct {
	status    task.Status
	entities  []task.Entity
	scrollOff int // first visible row index
}

// NewBoard creates a board over src. name is shown in the status bar.
func NewBoard(src Source, name string, titleLines int) *Board {
	b := &Board{src: src, name: name, titleLines: titleLines, now: time.Now}
	b.load()
	return b
}

// SetNow overrides the clock used to mark overdue cards (for testing).
func (b *Board) SetNow(fn func() time.Time) {
	b.now = fn
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.clampRow()
		return b, nil
	case ReloadMsg:
		b.load()
		return b, nil
	case TickMsg:
		return b, tickCmd()
	case errMsg:
		b.err = msg.err
		return b, nil
	}
	return b, nil
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.width == 0 {
		return "Loading..."
	}

	switch b.view {
	case viewDetail:
		return b.viewDetail()
	case viewConfirmDelete:
		return b.viewDeleteConfirm()
	case viewConfirmClearAll:
		return b.viewClearAllConfirm()
	default:
		return b.viewBoard()
	}
}

func (b *Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
		return b, tea.Quit
	}

	switch b.view {
	case viewBoard:
		return b.handleBoardKey(msg)
	case viewDetail:
		switch msg.String() {
		case "q", keyEsc, keyEnter:
			b.view = viewBoard
		}
	case viewConfirmDelete:
		return b.handleConfirmKey(msg, b.executeDelete)
	case viewConfirmClearAll:
		return b.handleConfirmKey(msg, b.executeClearAll)
	}
	return b, nil
}

func (b *Board) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", keyEsc:
		return b, tea.Quit
	case "h", "left":
		if b.activeCol > 0 {
			b.activeCol--
			b.clampRow()
		}
	case "l", "right":
		if b.activeCol < len(b.columns)-1 {
			b.activeCol++
			b.clampRow()
		}
	case "j", "down":
		col := b.currentColumn()
		if col != nil && b.activeRow < len(col.entities)-1 {
			b.activeRow++
			b.ensureVisible()
		}
	case "k", "up":
		if b.activeRow > 0 {
			b.activeRow--
			b.ensureVisible()
		}
	case keyEnter:
		b.openDetail()
	case "s", " ":
		b.advanceStatus()
	case "d", "D":
		if e := b.selected(); e != nil {
			b.deleteID = e.Base().ID
			b.deleteName = e.Base().Name
			b.view = viewConfirmDelete
		}
	case "C":
		b.clearAllCount = len(b.entities)
		if b.clearAllCount > 0 {
			b.view = viewConfirmClearAll
		}
	case "r":
		b.load()
	}
	return b, nil
}

func (b *Board) handleConfirmKey(msg tea.KeyMsg, confirm func()) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		confirm()
		b.view = viewBoard
		b.load()
	case "n", "N", keyEsc, "q":
		b.view = viewBoard
	}
	return b, nil
}

// openDetail shows the selected entity. Viewing counts as an access and is
// recorded in the history.
func (b *Board) openDetail() {
	sel := b.selected()
	if sel == nil {
		return
	}
	id := sel.Base().ID

	err := b.src.Update(func(s *store.Store) error {
		e, err := s.Get(id)
		if err != nil {
			return err
		}
		b.detail = e
		b.subtasks = nil
		if e.Kind() == task.KindEpic {
			b.subtasks, err = s.SubTasksOf(id)
		}
		return err
	})
	if err != nil {
		b.err = err
		b.load()
		return
	}
	b.err = nil
	b.view = viewDetail
}

// advanceStatus moves the selected task or subtask to the next status,
// wrapping from DONE back to NEW.
func (b *Board) advanceStatus() {
	sel := b.selected()
	if sel == nil {
		return
	}
	if sel.Kind() == task.KindEpic {
		b.err = errDerivedStatus
		return
	}

	id := sel.Base().ID
	b.err = b.src.Update(func(s *store.Store) error {
		e, ok := s.Peek(id)
		if !ok {
			return task.NotFoundError(sel.Kind(), id)
		}
		e.Base().Status = nextStatus(e.Base().Status)
		var err error
		switch v := e.(type) {
		case *task.Task:
			_, err = s.UpdateTask(v)
		case *task.SubTask:
			_, err = s.UpdateSubTask(v)
		}
		return err
	})
	b.load()
}

func (b *Board) executeDelete() {
	id := b.deleteID
	b.err = b.src.Update(func(s *store.Store) error {
		return s.Delete(id)
	})
}

// executeClearAll removes every entity and the view history.
func (b *Board) executeClearAll() {
	b.err = b.src.Update(func(s *store.Store) error {
		s.Reset()
		return nil
	})
}

// load reads all entities and organizes them into status columns. The
// selection stays on the same entity when it still exists.
func (b *Board) load() {
	var selID int
	if sel := b.selected(); sel != nil {
		selID = sel.Base().ID
	}

	s, err := b.src.Load()
	if err != nil {
		b.err = err
		return
	}

	b.entities = s.All()
	board.Sort(b.entities, "start", false)

	scroll := make(map[task.Status]int, len(b.columns))
	for _, col := range b.columns {
		scroll[col.status] = col.scrollOff
	}
	statuses := task.Statuses()
	b.columns = make([]column, len(statuses))
	for i, st := range statuses {
		b.columns[i] = column{status: st, scrollOff: scroll[st]}
	}
	for _, e := range b.entities {
		for i := range b.columns {
			if b.columns[i].status == e.Base().Status {
				b.columns[i].entities = append(b.columns[i].entities, e)
				break
			}
		}
	}

	if selID > 0 {
		b.selectID(selID)
	}
	b.clampRow()
}

func (b *Board) selectID(id int) {
	for ci, col := range b.columns {
		for ri, e := range col.entities {
			if e.Base().ID == id {
				b.activeCol, b.activeRow = ci, ri
				return
			}
		}
	}
}

func (b *Board) currentColumn() *column {
	if b.activeCol >= 0 && b.activeCol < len(b.columns) {
		return &b.columns[b.activeCol]
	}
	return nil
}

func (b *Board) selected() task.Entity {
	col := b.currentColumn()
	if col == nil || len(col.entities) == 0 {
		return nil
	}
	if b.activeRow >= 0 && b.activeRow < len(col.entities) {
		return col.entities[b.activeRow]
	}
	return nil
}

func (b *Board) clampRow() {
	col := b.currentColumn()
	if col == nil || len(col.entities) == 0 {
		b.activeRow = 0
		return
	}
	if b.activeRow >= len(col.entities) {
		b.activeRow = len(col.entities) - 1
	}
	b.ensureVisible()
}

func (b *Board) viewDetail() string {
	if b.detail == nil {
		return ""
	}
	var sb strings.Builder
	output.EntityDetail(&sb, b.detail, b.subtasks)
	content := strings.TrimRight(sb.String(), "\n") + "\n\n" + dimStyle.Render("esc:back")
	return dialogStyle.Render(content)
}

func nextStatus(s task.Status) task.Status {
	switch s {
	case task.StatusNew:
		return task.StatusInProgress
	case task.StatusInProgress:
		return task.StatusDone
	default:
		return task.StatusNew
	}
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a board refresh.
type ReloadMsg struct{}

type errMsg struct{ err error }

// ErrMsg wraps an error for delivery to the board, e.g. from the watcher.
func ErrMsg(err error) tea.Msg { return errMsg{err: err} }

// TickMsg is sent periodically to refresh overdue markers.
type TickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}
