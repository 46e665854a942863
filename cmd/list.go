package cmd

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list [KIND]",
	Aliases: []string{"ls"},
	Short:   "List tasks, epics and subtasks",
	Long: `Lists entities with optional filtering, sorting, and output format control.
KIND (tasks, epics or subtasks) restricts the listing to one collection.
Listing does not record anything in the history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringSlice("status", nil, "filter by status (comma-separated)")
	listCmd.Flags().Int("epic", 0, "show only subtasks of this epic")
	listCmd.Flags().Bool("scheduled", false, "show only entities with a start time")
	listCmd.Flags().Bool("unscheduled", false, "show only entities without a start time")
	listCmd.Flags().StringP("search", "s", "", "search name and description (case-insensitive)")
	listCmd.Flags().String("sort", "id", "sort field ("+strings.Join(board.SortFields(), ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.Flags().String("group-by", "", "group results by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
	listCmd.Flags().SetNormalizeFunc(normalizeEntityFlags)
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	opts, err := listOptions(cmd, args)
	if err != nil {
		return err
	}
	groupBy, _ := cmd.Flags().GetString("group-by")
	if err := validateGroupBy(groupBy); err != nil {
		return err
	}

	tr, err := openTracker()
	if err != nil {
		return err
	}
	s, err := tr.Load()
	if err != nil {
		return err
	}

	entities := board.List(s, opts)
	if groupBy != "" {
		return outputGrouped(entities, groupBy)
	}
	return printEntities(entities)
}

// listOptions turns the list flags into board options.
func listOptions(cmd *cobra.Command, args []string) (board.ListOptions, error) {
	flags := cmd.Flags()
	var filter board.FilterOptions

	if len(args) == 1 {
		kind, err := task.ParseKind(args[0])
		if err != nil {
			return board.ListOptions{}, err
		}
		filter.Kinds = []task.Kind{kind}
	}

	rawStatuses, _ := flags.GetStringSlice("status")
	for _, raw := range rawStatuses {
		st, err := task.ParseStatus(raw)
		if err != nil {
			return board.ListOptions{}, err
		}
		filter.Statuses = append(filter.Statuses, st)
	}

	if flags.Changed("epic") {
		epicID, _ := flags.GetInt("epic")
		filter.EpicID = &epicID
	}

	scheduled, _ := flags.GetBool("scheduled")
	unscheduled, _ := flags.GetBool("unscheduled")
	switch {
	case scheduled && unscheduled:
		return board.ListOptions{}, clierr.New(clierr.InvalidInput,
			"--scheduled and --unscheduled are mutually exclusive")
	case scheduled, unscheduled:
		filter.Scheduled = &scheduled
	}

	filter.Search, _ = flags.GetString("search")

	sortBy, _ := flags.GetString("sort")
	if !slices.Contains(board.SortFields(), sortBy) {
		return board.ListOptions{}, clierr.Newf(clierr.InvalidInput, "invalid --sort field %q; valid: %s",
			sortBy, strings.Join(board.SortFields(), ", "))
	}
	reverse, _ := flags.GetBool("reverse")
	limit, _ := flags.GetInt("limit")

	return board.ListOptions{
		Filter:  filter,
		SortBy:  sortBy,
		Reverse: reverse,
		Limit:   limit,
	}, nil
}

func outputGrouped(entities []task.Entity, groupBy string) error {
	grouped := board.GroupBy(entities, groupBy)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, grouped)
	}
	output.GroupedTable(os.Stdout, grouped)
	return nil
}
