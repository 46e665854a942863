package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/tracker"
	"github.com/twiced-technology-gmbh/tasktracker/internal/watcher"
)

var flagWatch bool

var boardCmd = &cobra.Command{
	Use:     "board",
	Aliases: []string{"summary"},
	Short:   "Show board summary",
	Long: `Displays a summary of the tracker: counts per status and kind, how much
is scheduled, and the next upcoming entity.

Use --watch to keep the display live-updating. The board re-renders automatically
whenever the data file changes on disk (e.g., from another terminal).
Press Ctrl+C to stop.`,
	RunE: runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "live-update the board on file changes")
	boardCmd.Flags().String("group-by", "", "group board by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
}

func runBoard(cmd *cobra.Command, _ []string) error {
	groupBy, _ := cmd.Flags().GetString("group-by")
	if err := validateGroupBy(groupBy); err != nil {
		return err
	}

	tr, err := openTracker()
	if err != nil {
		return err
	}

	render := func() error { return renderBoard(tr, groupBy) }
	if err := render(); err != nil {
		return err
	}
	if !flagWatch {
		return nil
	}
	return watchAndRender(tr, render)
}

func renderBoard(tr *tracker.Tracker, groupBy string) error {
	s, err := tr.Load()
	if err != nil {
		return err
	}

	if groupBy != "" {
		return outputGrouped(s.All(), groupBy)
	}

	summary := board.Summary(tr.Config().Tracker.Name, s.All(), time.Now())
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, summary)
	case output.FormatCompact:
		output.OverviewCompact(os.Stdout, summary)
	default:
		output.OverviewTable(os.Stdout, summary)
	}
	return nil
}

// watchAndRender calls render each time the tracker's files change, until
// interrupted.
func watchAndRender(tr *tracker.Tracker, render func() error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(tr.Files(), func() {
		clearScreen()
		if renderErr := render(); renderErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering: %v\n", renderErr)
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})
	return nil
}

// clearScreen clears the terminal and moves the cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
