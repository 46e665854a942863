package cmd

import (
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var updateCmd = &cobra.Command{
	Use:     "update [KIND] ID",
	Aliases: []string{"edit"},
	Short:   "Update a task, epic or subtask",
	Long: `Changes the given fields of an entity. KIND (task, epic or subtask) is
optional and, when given, must match the entity.

Only the name and description of an epic can be changed. Moving a subtask
to another epic (--epic) recomputes both epics. An empty --start clears
the schedule.`,
	Args: cobra.RangeArgs(1, 2), //nolint:mnd // optional kind plus id
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().String("name", "", "new name")
	updateCmd.Flags().StringP("description", "d", "", "new description")
	updateCmd.Flags().String("status", "", "new status (NEW, IN_PROGRESS, DONE)")
	scheduleFlags(updateCmd)
	updateCmd.Flags().Int("epic", 0, "move a subtask to this epic")
	updateCmd.Flags().SetNormalizeFunc(normalizeEntityFlags)
	rootCmd.AddCommand(updateCmd)
}

var (
	updateFlags = []string{"name", "description", "status", "start", "duration", "epic"}
	// derivedFlags do not apply to epics.
	derivedFlags = updateFlags[2:]
)

func runUpdate(cmd *cobra.Command, args []string) error {
	kind, rawID, err := kindAndID(args)
	if err != nil {
		return err
	}
	id, err := board.ParseID(rawID)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(updateFlags, cmd.Flags().Changed) {
		return clierr.New(clierr.NoChanges, "no changes specified").
			WithDetails(map[string]any{"id": id})
	}

	tr, err := openTracker()
	if err != nil {
		return err
	}

	var updated task.Entity
	err = tr.Update(func(s *store.Store) error {
		cur, err := peekEntity(s, kind, id)
		if err != nil {
			return err
		}
		e, err := applyUpdateFlags(cmd, cur)
		if err != nil {
			return err
		}
		updated, err = updateEntity(s, e)
		return err
	})
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, task.ToRecord(updated))
	}
	output.Messagef(os.Stdout, "Updated %s #%d: %s", kindNoun(updated.Kind()), id, updated.Base().Name)
	return nil
}

// applyUpdateFlags returns cur with the changed flags applied and validated.
func applyUpdateFlags(cmd *cobra.Command, cur task.Entity) (task.Entity, error) {
	flags := cmd.Flags()
	if cur.Kind() == task.KindEpic {
		for _, name := range derivedFlags {
			if flags.Changed(name) {
				return nil, clierr.Newf(clierr.InvalidInput,
					"--%s cannot be set on an epic; it follows the epic's subtasks", name).
					WithDetails(map[string]any{"flag": name})
			}
		}
	}
	if cur.Kind() == task.KindTask && flags.Changed("epic") {
		return nil, clierr.New(clierr.InvalidInput, "--epic applies to subtasks only")
	}

	rec := task.ToRecord(cur)
	if flags.Changed("name") {
		rec.Name, _ = flags.GetString("name")
	}
	if flags.Changed("description") {
		rec.Description, _ = flags.GetString("description")
	}
	if flags.Changed("status") {
		raw, _ := flags.GetString("status")
		st, err := task.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		rec.Status = st
	}
	if err := applyScheduleFlags(cmd, &rec); err != nil {
		return nil, err
	}
	if flags.Changed("epic") {
		rec.EpicID, _ = flags.GetInt("epic")
	}
	return rec.Entity(cur.Kind())
}
