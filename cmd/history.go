package cmd

import (
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently viewed entities",
	Long: `Lists the entities most recently viewed with show, oldest first. Each
entity appears once, at the position of its latest view. Use --recent to
list the latest view first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Bool("recent", false, "most recently viewed first")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	s, err := tr.Load()
	if err != nil {
		return err
	}
	if recent, _ := cmd.Flags().GetBool("recent"); recent {
		return printEntities(s.RecentHistory())
	}
	return printEntities(s.History())
}
