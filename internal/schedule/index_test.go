package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

func at(hour, minute int) *time.Time {
	t := time.Date(2026, time.March, 2, hour, minute, 0, 0, time.UTC)
	return &t
}

func scheduled(id int, start *time.Time, d time.Duration) *task.Task {
	t := task.NewTask("t", "")
	t.ID = id
	t.SetSchedule(start, &d)
	return t
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 *time.Time
		want           bool
	}{
		{"touching", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		{"touching reversed", at(11, 0), at(12, 0), at(10, 0), at(11, 0), false},
		{"partial", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"contained", at(9, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"identical", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"disjoint", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(*tt.s1, *tt.e1, *tt.s2, *tt.e2))
		})
	}
}

func TestValidateTouchingWindowsPass(t *testing.T) {
	x := New()
	x.Upsert(scheduled(1, at(10, 0), time.Hour))

	assert.NoError(t, x.Validate(scheduled(2, at(11, 0), time.Hour)))
	assert.NoError(t, x.Validate(scheduled(3, at(9, 0), time.Hour)))
}

func TestValidateOverlapConflicts(t *testing.T) {
	x := New()
	x.Upsert(scheduled(1, at(10, 0), time.Hour))

	err := x.Validate(scheduled(2, at(10, 30), time.Hour))
	require.Error(t, err)
	assert.Equal(t, clierr.ScheduleConflict, clierr.CodeOf(err))

	var ce *clierr.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Details["conflict_id"])
}

func TestValidateExcludesOwnSlot(t *testing.T) {
	x := New()
	x.Upsert(scheduled(1, at(10, 0), time.Hour))

	assert.NoError(t, x.Validate(scheduled(1, at(10, 30), time.Hour)))
}

func TestValidateSkipsIncompleteWindows(t *testing.T) {
	x := New()
	open := task.NewTask("open", "")
	open.ID = 1
	open.StartTime = at(10, 0)
	x.Upsert(open)

	assert.NoError(t, x.Validate(scheduled(2, at(10, 0), time.Hour)))

	noStart := task.NewTask("x", "")
	noStart.ID = 3
	assert.NoError(t, x.Validate(noStart))
}

func TestValidateIgnoresEpics(t *testing.T) {
	x := New()
	e := task.NewEpic("epic", "")
	e.ID = 1
	e.StartTime = at(9, 0)
	e.EndTime = at(12, 0)
	x.Upsert(e)

	assert.NoError(t, x.Validate(scheduled(2, at(10, 0), time.Hour)))
	assert.Equal(t, []int{1}, x.IDs())
}

func TestIDsOrderedByStartThenID(t *testing.T) {
	x := New()
	x.Upsert(scheduled(5, at(12, 0), time.Hour))
	x.Upsert(scheduled(3, at(9, 0), time.Hour))
	x.Upsert(scheduled(1, at(12, 0), time.Hour))
	x.Upsert(scheduled(4, at(9, 0), time.Hour))

	assert.Equal(t, []int{3, 4, 1, 5}, x.IDs())
}

func TestUpsertRepositions(t *testing.T) {
	x := New()
	x.Upsert(scheduled(1, at(9, 0), time.Hour))
	x.Upsert(scheduled(2, at(10, 0), time.Hour))

	x.Upsert(scheduled(1, at(11, 0), time.Hour))
	assert.Equal(t, []int{2, 1}, x.IDs())

	unscheduled := task.NewTask("t", "")
	unscheduled.ID = 2
	x.Upsert(unscheduled)
	assert.Equal(t, []int{1}, x.IDs())
}

func TestRemoveAndClear(t *testing.T) {
	x := New()
	x.Upsert(scheduled(1, at(9, 0), time.Hour))
	x.Upsert(scheduled(2, at(10, 0), time.Hour))

	x.Remove(1)
	x.Remove(99)
	assert.Equal(t, []int{2}, x.IDs())

	x.Clear()
	assert.Empty(t, x.IDs())
}
