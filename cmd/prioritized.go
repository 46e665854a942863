package cmd

import (
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/tracker"
)

var prioritizedCmd = &cobra.Command{
	Use:     "prioritized",
	Aliases: []string{"schedule", "agenda"},
	Short:   "List scheduled entities by start time",
	Long: `Lists every entity with a start time, earliest first. Unscheduled
entities are left out. Use --watch to re-render on file changes.`,
	Args: cobra.NoArgs,
	RunE: runPrioritized,
}

func init() {
	prioritizedCmd.Flags().BoolP("watch", "w", false, "live-update on file changes")
	rootCmd.AddCommand(prioritizedCmd)
}

func runPrioritized(cmd *cobra.Command, _ []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}

	render := func() error { return renderPrioritized(tr) }
	if err := render(); err != nil {
		return err
	}
	if watch, _ := cmd.Flags().GetBool("watch"); !watch {
		return nil
	}
	return watchAndRender(tr, render)
}

func renderPrioritized(tr *tracker.Tracker) error {
	s, err := tr.Load()
	if err != nil {
		return err
	}
	return printEntities(s.Prioritized())
}
