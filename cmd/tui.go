package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/tracker"
	"github.com/twiced-technology-gmbh/tasktracker/internal/tui"
	"github.com/twiced-technology-gmbh/tasktracker/internal/watcher"
)

func runTUI(_ *cobra.Command, _ []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	cfg := tr.Config()

	model := tui.NewBoard(tr, cfg.Tracker.Name, cfg.TitleLines())
	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go startTUIWatcher(ctx, tr, p)

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, tr *tracker.Tracker, p *tea.Program) {
	w, err := watcher.New(tr.Files(), func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx, func(err error) {
		p.Send(tui.ErrMsg(err))
	})
}
