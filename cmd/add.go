package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"create"},
	Short:   "Add a task, epic or subtask",
	Long: `Adds a new entity and prints its id. Tasks and subtasks may be scheduled
with --start and --duration; a scheduled entity must not overlap another one.
An epic's status and schedule follow its subtasks.`,
}

func init() {
	for _, kind := range task.Kinds() {
		addCmd.AddCommand(newAddKindCmd(kind))
	}
	rootCmd.AddCommand(addCmd)
}

func newAddKindCmd(kind task.Kind) *cobra.Command {
	noun := kindNoun(kind)
	c := &cobra.Command{
		Use:   noun + " NAME",
		Short: "Add a " + noun,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, kind, args)
		},
	}
	c.Flags().StringP("description", "d", "", "description (markdown)")
	if kind != task.KindEpic {
		c.Flags().String("status", "", "status (NEW, IN_PROGRESS, DONE)")
		scheduleFlags(c)
	}
	if kind == task.KindSubTask {
		c.Flags().Int("epic", 0, "id of the owning epic")
		_ = c.MarkFlagRequired("epic")
	}
	c.Flags().SetNormalizeFunc(normalizeEntityFlags)
	return c
}

func runAdd(cmd *cobra.Command, kind task.Kind, args []string) error {
	rec := task.Record{Kind: kind, Name: strings.Join(args, " ")}
	rec.Description, _ = cmd.Flags().GetString("description")

	if kind != task.KindEpic {
		status, _ := cmd.Flags().GetString("status")
		if status != "" {
			st, err := task.ParseStatus(status)
			if err != nil {
				return err
			}
			rec.Status = st
		}
		if err := applyScheduleFlags(cmd, &rec); err != nil {
			return err
		}
	}
	if kind == task.KindSubTask {
		rec.EpicID, _ = cmd.Flags().GetInt("epic")
	}

	e, err := rec.Entity(kind)
	if err != nil {
		return err
	}

	tr, err := openTracker()
	if err != nil {
		return err
	}

	var added task.Entity
	err = tr.Update(func(s *store.Store) error {
		added, err = addEntity(s, e)
		return err
	})
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, task.ToRecord(added))
	}
	output.Messagef(os.Stdout, "Added %s #%d: %s", kindNoun(kind), added.Base().ID, added.Base().Name)
	return nil
}
