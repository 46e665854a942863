package cmd

import (
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var showCmd = &cobra.Command{
	Use:   "show [KIND] ID",
	Short: "Show entity details",
	Long: `Displays full details of a single task, epic or subtask including its
markdown description. Viewing an entity records it in the history.`,
	Args: cobra.RangeArgs(1, 2), //nolint:mnd // optional kind plus id
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(_ *cobra.Command, args []string) error {
	kind, rawID, err := kindAndID(args)
	if err != nil {
		return err
	}
	id, err := board.ParseID(rawID)
	if err != nil {
		return err
	}

	tr, err := openTracker()
	if err != nil {
		return err
	}

	var (
		e        task.Entity
		subtasks []*task.SubTask
	)
	err = tr.Update(func(s *store.Store) error {
		e, err = getEntity(s, kind, id)
		if err != nil {
			return err
		}
		if e.Kind() == task.KindEpic {
			subtasks, err = s.SubTasksOf(id)
		}
		return err
	})
	if err != nil {
		return err
	}

	return printEntity(e, subtasks)
}
