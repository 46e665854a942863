package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
	"github.com/twiced-technology-gmbh/tasktracker/internal/tracker"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [KIND] ID[,ID,...]",
	Aliases: []string{"rm"},
	Short:   "Delete a task, epic or subtask",
	Long: `Deletes an entity. Deleting an epic deletes its subtasks; deleting a
subtask recomputes its epic. Prompts for confirmation in interactive mode.
Multiple IDs can be provided as a comma-separated list (requires --yes).`,
	Args: cobra.RangeArgs(1, 2), //nolint:mnd // optional kind plus ids
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	kind, rawIDs, err := kindAndID(args)
	if err != nil {
		return err
	}
	ids, err := board.ParseIDs(rawIDs)
	if err != nil {
		return err
	}

	tr, err := openTracker()
	if err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if len(ids) > 1 && !yes {
		return clierr.New(clierr.ConfirmationReq, "batch delete requires --yes")
	}
	if len(ids) == 1 {
		return deleteSingle(tr, kind, ids[0], yes)
	}

	return runBatch(ids, func(id int) error {
		return tr.Update(func(s *store.Store) error {
			return deleteEntity(s, kind, id)
		})
	})
}

func deleteSingle(tr *tracker.Tracker, kind task.Kind, id int, yes bool) error {
	s, err := tr.Load()
	if err != nil {
		return err
	}
	e, err := peekEntity(s, kind, id)
	if err != nil {
		return err
	}
	name := e.Base().Name

	if !yes {
		prompt := fmt.Sprintf("Delete %s #%d %q?", kindNoun(e.Kind()), id, name)
		if ep, ok := e.(*task.Epic); ok && len(ep.SubTaskIDs) > 0 {
			prompt = fmt.Sprintf("Delete epic #%d %q and its %d subtasks?", id, name, len(ep.SubTaskIDs))
		}
		ok, err := confirm(prompt)
		if err != nil || !ok {
			return err
		}
	}

	err = tr.Update(func(s *store.Store) error {
		return deleteEntity(s, e.Kind(), id)
	})
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status": "deleted",
			"id":     id,
			"kind":   e.Kind(),
			"name":   name,
		})
	}
	output.Messagef(os.Stdout, "Deleted %s #%d: %s", kindNoun(e.Kind()), id, name)
	return nil
}

// confirm asks a yes/no question on the terminal. It fails when stdin is
// not a terminal and reports false when the user declines.
func confirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, clierr.New(clierr.ConfirmationReq,
			"cannot prompt for confirmation (not a terminal); use --yes")
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(os.Stderr, "Canceled.")
		return false, nil
	}
	return true, nil
}
