package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
)

func TestRecordEntity(t *testing.T) {
	t.Run("defaults status to NEW", func(t *testing.T) {
		e, err := Record{Name: "write docs"}.Entity(KindTask)
		require.NoError(t, err)
		assert.Equal(t, StatusNew, e.Base().Status)
		assert.Equal(t, KindTask, e.Kind())
	})

	t.Run("kind from record", func(t *testing.T) {
		e, err := Record{Kind: "subtask", Name: "x", EpicID: 3}.Entity("")
		require.NoError(t, err)
		s, ok := e.(*SubTask)
		require.True(t, ok)
		assert.Equal(t, 3, s.EpicID)
	})

	t.Run("parses duration", func(t *testing.T) {
		e, err := Record{Name: "x", Duration: "90m"}.Entity(KindTask)
		require.NoError(t, err)
		require.NotNil(t, e.Base().Duration)
		assert.Equal(t, 90*time.Minute, *e.Base().Duration)
	})

	tests := []struct {
		name string
		rec  Record
		kind Kind
		code string
	}{
		{"missing name", Record{}, KindTask, clierr.InvalidInput},
		{"zero duration", Record{Name: "x", Duration: "0m"}, KindTask, clierr.InvalidDate},
		{"negative duration", Record{Name: "x", Duration: "-5m"}, KindTask, clierr.InvalidDate},
		{"bad status", Record{Name: "x", Status: "BLOCKED"}, KindTask, clierr.InvalidStatus},
		{"subtask without epic", Record{Name: "x"}, KindSubTask, clierr.InvalidInput},
		{"unknown kind", Record{Name: "x", Kind: "STORY"}, "", clierr.InvalidKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.rec.Entity(tt.kind)
			require.Error(t, err)
			assert.Equal(t, tt.code, clierr.CodeOf(err))
		})
	}
}

func TestValidateRejectsNonPositiveDuration(t *testing.T) {
	tk := NewTask("x", "")
	tk.Duration = dur(-time.Minute)
	assert.True(t, clierr.Is(Validate(tk), clierr.InvalidInput))

	tk.Duration = dur(0)
	assert.True(t, clierr.Is(Validate(tk), clierr.InvalidInput))
}

func TestToRecord(t *testing.T) {
	s := NewSubTask(5, "sub", "desc")
	s.ID = 7
	s.SetSchedule(at(10, 0), dur(time.Hour))

	r := ToRecord(s)
	assert.Equal(t, KindSubTask, r.Kind)
	assert.Equal(t, 5, r.EpicID)
	assert.Equal(t, "1h0m0s", r.Duration)
	require.NotNil(t, r.EndTime)
	assert.Equal(t, *at(11, 0), *r.EndTime)

	e := NewEpic("epic", "")
	assert.Equal(t, []int{}, ToRecord(e).SubTaskIDs)
}

func TestParseKindAndStatus(t *testing.T) {
	for _, in := range []string{"task", "Tasks", "TASK"} {
		k, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, KindTask, k)
	}
	k, err := ParseKind("subtasks")
	require.NoError(t, err)
	assert.Equal(t, KindSubTask, k)

	st, err := ParseStatus("in-progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, st)

	_, err = ParseStatus("waiting")
	assert.True(t, clierr.Is(err, clierr.InvalidStatus))
}
