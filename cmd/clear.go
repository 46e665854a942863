package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

const clearAll = "all"

var clearCmd = &cobra.Command{
	Use:   "clear tasks|epics|subtasks|all",
	Short: "Delete every task, epic or subtask",
	Long: `Deletes a whole collection. Clearing epics also deletes all subtasks;
clearing subtasks leaves the epics in place with status NEW and no schedule.
Clearing all removes every entity and the view history.`,
	Args: cobra.ExactArgs(1),
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	var kind task.Kind
	what := "everything"
	if !strings.EqualFold(args[0], clearAll) {
		k, err := task.ParseKind(args[0])
		if err != nil {
			return err
		}
		kind = k
		what = "all " + kindNoun(kind) + "s"
	}

	tr, err := openTracker()
	if err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		ok, err := confirm(fmt.Sprintf("Delete %s?", what))
		if err != nil || !ok {
			return err
		}
	}

	var n int
	err = tr.Update(func(s *store.Store) error {
		n = clearEntities(s, kind)
		return nil
	})
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"kind": kind, "deleted": n})
	}
	output.Messagef(os.Stdout, "Deleted %d entities", n)
	return nil
}

// clearEntities removes the collection of kind, or everything when kind is
// empty, and returns how many entities were removed.
func clearEntities(s *store.Store, kind task.Kind) int {
	switch kind {
	case task.KindTask:
		return s.DeleteAllTasks()
	case task.KindEpic:
		return s.DeleteAllEpics()
	case task.KindSubTask:
		return s.DeleteAllSubTasks()
	}
	return s.Reset()
}
