package cmd

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var cliErr *clierr.Error
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, code, cliErr.Code)
}

func TestKindAndID(t *testing.T) {
	kind, id, err := kindAndID([]string{"7"})
	require.NoError(t, err)
	assert.Empty(t, kind)
	assert.Equal(t, "7", id)

	kind, id, err = kindAndID([]string{"subtasks", "3"})
	require.NoError(t, err)
	assert.Equal(t, task.KindSubTask, kind)
	assert.Equal(t, "3", id)

	_, _, err = kindAndID([]string{"story", "3"})
	requireCode(t, err, clierr.InvalidKind)
}

func newUpdateTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "update"}
	c.Flags().String("name", "", "")
	c.Flags().StringP("description", "d", "", "")
	c.Flags().String("status", "", "")
	scheduleFlags(c)
	c.Flags().Int("epic", 0, "")
	c.Flags().SetNormalizeFunc(normalizeEntityFlags)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestApplyUpdateFlags(t *testing.T) {
	start := time.Date(2026, time.May, 4, 9, 0, 0, 0, time.UTC)
	d := time.Hour
	cur := task.NewTask("Draft", "old")
	cur.ID = 5
	cur.SetSchedule(&start, &d)

	c := newUpdateTestCmd(t, "--title", "Final", "--status", "in-progress")
	e, err := applyUpdateFlags(c, cur)
	require.NoError(t, err)

	got := e.Base()
	assert.Equal(t, 5, got.ID)
	assert.Equal(t, "Final", got.Name)
	assert.Equal(t, "old", got.Description)
	assert.Equal(t, task.StatusInProgress, got.Status)
	require.NotNil(t, got.StartTime)
	assert.True(t, start.Equal(*got.StartTime))
}

func TestApplyUpdateFlagsClearsSchedule(t *testing.T) {
	start := time.Date(2026, time.May, 4, 9, 0, 0, 0, time.UTC)
	d := time.Hour
	cur := task.NewTask("Draft", "")
	cur.ID = 5
	cur.SetSchedule(&start, &d)

	e, err := applyUpdateFlags(newUpdateTestCmd(t, "--start", ""), cur)
	require.NoError(t, err)
	assert.Nil(t, e.Base().StartTime)
	assert.Nil(t, e.Base().End())
}

func TestApplyUpdateFlagsRejectsDerivedEpicFields(t *testing.T) {
	ep := task.NewEpic("Move", "")
	ep.ID = 2

	_, err := applyUpdateFlags(newUpdateTestCmd(t, "--status", "DONE"), ep)
	requireCode(t, err, clierr.InvalidInput)

	e, err := applyUpdateFlags(newUpdateTestCmd(t, "--desc", "new plan"), ep)
	require.NoError(t, err)
	assert.Equal(t, "new plan", e.Base().Description)
}

func TestApplyUpdateFlagsEpicOnTask(t *testing.T) {
	cur := task.NewTask("Draft", "")
	cur.ID = 1
	_, err := applyUpdateFlags(newUpdateTestCmd(t, "--epic", "2"), cur)
	requireCode(t, err, clierr.InvalidInput)
}

func newListTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "list"}
	c.Flags().StringSlice("status", nil, "")
	c.Flags().Int("epic", 0, "")
	c.Flags().Bool("scheduled", false, "")
	c.Flags().Bool("unscheduled", false, "")
	c.Flags().StringP("search", "s", "", "")
	c.Flags().String("sort", "id", "")
	c.Flags().BoolP("reverse", "r", false, "")
	c.Flags().IntP("limit", "n", 0, "")
	c.Flags().SetNormalizeFunc(normalizeEntityFlags)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestListOptions(t *testing.T) {
	c := newListTestCmd(t, "--status", "new,done", "--parent", "4", "--unscheduled", "--sort", "start", "-n", "3")
	opts, err := listOptions(c, []string{"subtasks"})
	require.NoError(t, err)

	assert.Equal(t, []task.Kind{task.KindSubTask}, opts.Filter.Kinds)
	assert.Equal(t, []task.Status{task.StatusNew, task.StatusDone}, opts.Filter.Statuses)
	require.NotNil(t, opts.Filter.EpicID)
	assert.Equal(t, 4, *opts.Filter.EpicID)
	require.NotNil(t, opts.Filter.Scheduled)
	assert.False(t, *opts.Filter.Scheduled)
	assert.Equal(t, "start", opts.SortBy)
	assert.Equal(t, 3, opts.Limit)
}

func TestListOptionsErrors(t *testing.T) {
	_, err := listOptions(newListTestCmd(t, "--scheduled", "--unscheduled"), nil)
	requireCode(t, err, clierr.InvalidInput)

	_, err = listOptions(newListTestCmd(t, "--sort", "priority"), nil)
	requireCode(t, err, clierr.InvalidInput)

	_, err = listOptions(newListTestCmd(t, "--status", "blocked"), nil)
	requireCode(t, err, clierr.InvalidStatus)
}

func TestValidateGroupBy(t *testing.T) {
	require.NoError(t, validateGroupBy(""))
	require.NoError(t, validateGroupBy("kind"))
	requireCode(t, validateGroupBy("assignee"), clierr.InvalidInput)
}

func TestConfigAccessorsCoverDisplayKeys(t *testing.T) {
	acc := configAccessors()
	for _, key := range allConfigKeys() {
		a, ok := acc[key]
		require.True(t, ok, key)
		if a.writable {
			assert.NotNil(t, a.set, key)
		}
	}
	assert.Len(t, acc, len(allConfigKeys()))
}

func TestClearEntities(t *testing.T) {
	s := store.New()
	_, err := s.AddTask(task.NewTask("a", ""))
	require.NoError(t, err)
	e, err := s.AddEpic(task.NewEpic("e", ""))
	require.NoError(t, err)
	_, err = s.AddSubTask(task.NewSubTask(e.ID, "sub", ""))
	require.NoError(t, err)

	assert.Equal(t, 1, clearEntities(s, task.KindSubTask))
	assert.Len(t, s.All(), 2)

	_, err = s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, clearEntities(s, ""))
	assert.Empty(t, s.All())
	assert.Empty(t, s.HistoryIDs())
}
