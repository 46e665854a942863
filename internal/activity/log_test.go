package activity

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

func TestObserverLogsMutations(t *testing.T) {
	dir := t.TempDir()
	s := store.New(store.WithObserver(Observer(dir)))

	tk, err := s.AddTask(task.NewTask("write docs", ""))
	require.NoError(t, err)
	require.NoError(t, s.DeleteTask(tk.ID))
	s.DeleteAllSubTasks()

	entries, err := Read(dir, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, store.ActionAdd, entries[0].Action)
	assert.Equal(t, task.KindTask, entries[0].Kind)
	assert.Equal(t, tk.ID, entries[0].TaskID)
	assert.Equal(t, "write docs", entries[0].Detail)
	assert.Equal(t, store.ActionDelete, entries[1].Action)
	assert.Equal(t, store.ActionClear, entries[2].Action)

	last, err := Read(dir, 1)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, store.ActionClear, last[0].Action)
}

func TestReadMissing(t *testing.T) {
	entries, err := Read(t.TempDir(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadSkipsDamagedLines(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, Entry{Action: "add"}))
	f, err := os.OpenFile(Path(dir), os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("{\"action\":\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, Append(dir, Entry{Action: "delete"}))

	entries, err := Read(dir, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "delete", entries[1].Action)
}

func TestTruncate(t *testing.T) {
	dir := t.TempDir()
	for i := range 12 {
		require.NoError(t, Append(dir, Entry{Action: fmt.Sprint(i)}))
	}
	require.NoError(t, truncateIfNeeded(Path(dir), 5))

	entries, err := Read(dir, 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "7", entries[0].Action)
	assert.Equal(t, "11", entries[4].Action)
}
