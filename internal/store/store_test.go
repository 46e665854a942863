package store

import (
	"sync"
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

func dur(d time.Duration) *time.Duration { return &d }

func mustTask(t *testing.T, s *Store, name string) *task.Task {
	t.Helper()
	out, err := s.AddTask(task.NewTask(name, ""))
	require.NoError(t, err)
	return out
}

func mustEpic(t *testing.T, s *Store, name string) *task.Epic {
	t.Helper()
	out, err := s.AddEpic(task.NewEpic(name, ""))
	require.NoError(t, err)
	return out
}

func mustSub(t *testing.T, s *Store, epicID int, status task.Status) *task.SubTask {
	t.Helper()
	st := task.NewSubTask(epicID, "sub", "")
	st.Status = status
	out, err := s.AddSubTask(st)
	require.NoError(t, err)
	return out
}

func scheduledTask(name string, start *time.Time, d time.Duration) *task.Task {
	t := task.NewTask(name, "")
	t.SetSchedule(start, &d)
	return t
}

func TestIDsIncreaseAcrossKinds(t *testing.T) {
	s := New()
	a := mustTask(t, s, "a")
	e := mustEpic(t, s, "e")
	st := mustSub(t, s, e.ID, task.StatusNew)
	b := mustTask(t, s, "b")

	assert.Equal(t, []int{1, 2, 3, 4}, []int{a.ID, e.ID, st.ID, b.ID})

	require.NoError(t, s.DeleteTask(b.ID))
	c := mustTask(t, s, "c")
	assert.Equal(t, 5, c.ID, "ids are never reused")
}

func TestAddIgnoresCallerID(t *testing.T) {
	s := New()
	in := task.NewTask("a", "")
	in.ID = 42
	out, err := s.AddTask(in)
	require.NoError(t, err)
	assert.Equal(t, 1, out.ID)
	assert.Equal(t, 42, in.ID, "input is not modified")
}

func TestEpicStatusDerivedFromSubtasks(t *testing.T) {
	s := New()
	e := mustEpic(t, s, "e")

	subs := make([]*task.SubTask, 0, 3)
	for range 3 {
		subs = append(subs, mustSub(t, s, e.ID, task.StatusDone))
	}
	got, err := s.GetEpic(e.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, got.Status)

	mustSub(t, s, e.ID, task.StatusNew)
	got, _ = s.GetEpic(e.ID)
	assert.Equal(t, task.StatusNew, got.Status, "a NEW subtask beats DONE ones")

	upd := subs[1]
	upd.Status = task.StatusInProgress
	_, err = s.UpdateSubTask(upd)
	require.NoError(t, err)
	got, _ = s.GetEpic(e.ID)
	assert.Equal(t, task.StatusInProgress, got.Status)
}

func TestDeletingLastSubtaskResetsEpic(t *testing.T) {
	s := New()
	e := mustEpic(t, s, "e")
	st := task.NewSubTask(e.ID, "sub", "")
	st.Status = task.StatusDone
	st.SetSchedule(at(9, 0), dur(time.Hour))
	added, err := s.AddSubTask(st)
	require.NoError(t, err)

	got, _ := s.GetEpic(e.ID)
	require.Equal(t, task.StatusDone, got.Status)
	require.NotNil(t, got.StartTime)

	require.NoError(t, s.DeleteSubTask(added.ID))
	got, _ = s.GetEpic(e.ID)
	assert.Equal(t, task.StatusNew, got.Status)
	assert.Nil(t, got.StartTime)
	assert.Nil(t, got.EndTime)
	assert.Nil(t, got.Duration)
	assert.Empty(t, got.SubTaskIDs)
}

func TestEpicUpdateKeepsDerivedFields(t *testing.T) {
	s := New()
	e := mustEpic(t, s, "e")
	mustSub(t, s, e.ID, task.StatusInProgress)

	upd := task.NewEpic("renamed", "new desc")
	upd.ID = e.ID
	upd.Status = task.StatusDone
	upd.SubTaskIDs = []int{99}
	out, err := s.UpdateEpic(upd)
	require.NoError(t, err)

	assert.Equal(t, "renamed", out.Name)
	assert.Equal(t, "new desc", out.Description)
	assert.Equal(t, task.StatusInProgress, out.Status)
	assert.Equal(t, []int{2}, out.SubTaskIDs)
}

func TestAddEpicDiscardsClientState(t *testing.T) {
	s := New()
	in := task.NewEpic("e", "")
	in.Status = task.StatusDone
	in.SubTaskIDs = []int{7, 8}
	in.StartTime = at(9, 0)

	out, err := s.AddEpic(in)
	require.NoError(t, err)
	assert.Equal(t, task.StatusNew, out.Status)
	assert.Empty(t, out.SubTaskIDs)
	assert.Nil(t, out.StartTime)
}

func TestSubtaskRequiresExistingEpic(t *testing.T) {
	s := New()
	tk := mustTask(t, s, "plain")

	_, err := s.AddSubTask(task.NewSubTask(99, "orphan", ""))
	assert.True(t, clierr.Is(err, clierr.InvalidReference))

	_, err = s.AddSubTask(task.NewSubTask(tk.ID, "wrong kind", ""))
	assert.True(t, clierr.Is(err, clierr.InvalidReference))

	assert.Empty(t, s.SubTasks())
	assert.Equal(t, 2, s.NextID(), "failed adds do not consume ids")
}

func TestUpdateSubtaskMovesBetweenEpics(t *testing.T) {
	s := New()
	e1 := mustEpic(t, s, "e1")
	e2 := mustEpic(t, s, "e2")
	st := mustSub(t, s, e1.ID, task.StatusDone)

	st.EpicID = e2.ID
	_, err := s.UpdateSubTask(st)
	require.NoError(t, err)

	got1, _ := s.GetEpic(e1.ID)
	got2, _ := s.GetEpic(e2.ID)
	assert.Empty(t, got1.SubTaskIDs)
	assert.Equal(t, task.StatusNew, got1.Status)
	assert.Equal(t, []int{st.ID}, got2.SubTaskIDs)
	assert.Equal(t, task.StatusDone, got2.Status)

	st.EpicID = 404
	_, err = s.UpdateSubTask(st)
	assert.True(t, clierr.Is(err, clierr.InvalidReference))
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	s := New()
	e := mustEpic(t, s, "e")

	missing := task.NewTask("x", "")
	missing.ID = 50
	_, err := s.UpdateTask(missing)
	assert.True(t, clierr.Is(err, clierr.NotFound))

	// an epic id is not a task id
	wrong := task.NewTask("x", "")
	wrong.ID = e.ID
	_, err = s.UpdateTask(wrong)
	assert.True(t, clierr.Is(err, clierr.NotFound))

	me := task.NewEpic("x", "")
	me.ID = 50
	_, err = s.UpdateEpic(me)
	assert.True(t, clierr.Is(err, clierr.NotFound))

	ms := task.NewSubTask(e.ID, "x", "")
	ms.ID = 50
	_, err = s.UpdateSubTask(ms)
	assert.True(t, clierr.Is(err, clierr.NotFound))
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	s := New()
	for _, fn := range []func(int) error{s.DeleteTask, s.DeleteEpic, s.DeleteSubTask, s.Delete} {
		assert.True(t, clierr.Is(fn(7), clierr.NotFound))
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := New()
	_, err := s.GetTask(1)
	assert.True(t, clierr.Is(err, clierr.NotFound))
	_, err = s.GetEpic(1)
	assert.True(t, clierr.Is(err, clierr.NotFound))
	_, err = s.GetSubTask(1)
	assert.True(t, clierr.Is(err, clierr.NotFound))
	_, err = s.Get(1)
	assert.True(t, clierr.Is(err, clierr.NotFound))
	assert.Empty(t, s.History())
}

func TestScheduleConflict(t *testing.T) {
	s := New()
	first, err := s.AddTask(scheduledTask("a", at(10, 0), time.Hour))
	require.NoError(t, err)

	_, err = s.AddTask(scheduledTask("touching", at(11, 0), time.Hour))
	require.NoError(t, err)

	_, err = s.AddTask(scheduledTask("overlap", at(10, 30), time.Hour))
	require.Error(t, err)
	assert.True(t, clierr.Is(err, clierr.ScheduleConflict))
	assert.Len(t, s.Tasks(), 2)
	assert.Len(t, s.Prioritized(), 2)
	assert.Equal(t, 3, s.NextID())

	// moving within its own slot is fine
	first.StartTime = at(9, 30)
	_, err = s.UpdateTask(first)
	require.NoError(t, err)

	// moving into the second task's slot is not, and changes nothing
	first.StartTime = at(11, 15)
	_, err = s.UpdateTask(first)
	assert.True(t, clierr.Is(err, clierr.ScheduleConflict))
	got, _ := s.GetTask(first.ID)
	assert.Equal(t, *at(9, 30), *got.StartTime)
}

func TestSubtaskConflictLeavesEpicUnchanged(t *testing.T) {
	s := New()
	_, err := s.AddTask(scheduledTask("a", at(10, 0), time.Hour))
	require.NoError(t, err)
	e := mustEpic(t, s, "e")

	st := task.NewSubTask(e.ID, "sub", "")
	st.SetSchedule(at(10, 30), dur(time.Hour))
	_, err = s.AddSubTask(st)
	assert.True(t, clierr.Is(err, clierr.ScheduleConflict))

	got, _ := s.GetEpic(e.ID)
	assert.Empty(t, got.SubTaskIDs)
	assert.Nil(t, got.StartTime)
}

func TestSubtasksOfOneEpicMayNotOverlap(t *testing.T) {
	s := New()
	e := mustEpic(t, s, "e")

	a := task.NewSubTask(e.ID, "a", "")
	a.SetSchedule(at(10, 0), dur(time.Hour))
	_, err := s.AddSubTask(a)
	require.NoError(t, err)

	b := task.NewSubTask(e.ID, "b", "")
	b.SetSchedule(at(11, 0), dur(time.Hour))
	_, err = s.AddSubTask(b)
	require.NoError(t, err, "the epic's own window never conflicts")

	c := task.NewSubTask(e.ID, "c", "")
	c.SetSchedule(at(11, 30), dur(time.Hour))
	_, err = s.AddSubTask(c)
	assert.True(t, clierr.Is(err, clierr.ScheduleConflict))
}

func TestPrioritizedOrder(t *testing.T) {
	s := New()
	late, _ := s.AddTask(scheduledTask("late", at(15, 0), time.Hour))
	mustTask(t, s, "unscheduled")
	early, _ := s.AddTask(scheduledTask("early", at(8, 0), time.Hour))
	e := mustEpic(t, s, "e")
	st := task.NewSubTask(e.ID, "sub", "")
	st.SetSchedule(at(12, 0), dur(time.Hour))
	sub, err := s.AddSubTask(st)
	require.NoError(t, err)

	var ids []int
	for _, en := range s.Prioritized() {
		ids = append(ids, en.Base().ID)
	}
	// the epic and its subtask share a start; ties go to the lower id
	assert.Equal(t, []int{early.ID, e.ID, sub.ID, late.ID}, ids)
}

func TestHistoryOrder(t *testing.T) {
	s := New()
	a := mustTask(t, s, "a")
	b := mustEpic(t, s, "b")
	c := mustSub(t, s, b.ID, task.StatusNew)

	_, _ = s.GetTask(a.ID)
	_, _ = s.GetEpic(b.ID)
	_, _ = s.GetTask(a.ID)
	_, _ = s.GetSubTask(c.ID)

	assert.Equal(t, []int{b.ID, a.ID, c.ID}, s.HistoryIDs())

	h := s.History()
	require.Len(t, h, 3)
	assert.Equal(t, task.KindEpic, h[0].Kind())
	assert.Equal(t, task.KindSubTask, h[2].Kind())
}

func TestDeleteRemovesFromHistoryAndIndex(t *testing.T) {
	s := New()
	tk, err := s.AddTask(scheduledTask("a", at(10, 0), time.Hour))
	require.NoError(t, err)
	_, _ = s.GetTask(tk.ID)
	require.Len(t, s.History(), 1)
	require.Len(t, s.Prioritized(), 1)

	require.NoError(t, s.DeleteTask(tk.ID))
	assert.Empty(t, s.History())
	assert.Empty(t, s.Prioritized())

	// the slot is free again
	_, err = s.AddTask(scheduledTask("b", at(10, 0), time.Hour))
	assert.NoError(t, err)
}

func TestDeleteEpicCascades(t *testing.T) {
	s := New()
	e := mustEpic(t, s, "e")
	st := task.NewSubTask(e.ID, "sub", "")
	st.SetSchedule(at(10, 0), dur(time.Hour))
	sub, err := s.AddSubTask(st)
	require.NoError(t, err)
	other := mustEpic(t, s, "other")
	kept := mustSub(t, s, other.ID, task.StatusNew)

	_, _ = s.GetSubTask(sub.ID)
	_, _ = s.GetSubTask(kept.ID)

	require.NoError(t, s.Delete(e.ID))
	_, err = s.GetSubTask(sub.ID)
	assert.True(t, clierr.Is(err, clierr.NotFound))
	assert.Len(t, s.SubTasks(), 1)
	assert.Empty(t, s.Prioritized())
	assert.Equal(t, []int{kept.ID}, s.HistoryIDs())
}

func TestSubTasksOf(t *testing.T) {
	s := New()
	e := mustEpic(t, s, "e")
	other := mustEpic(t, s, "other")
	a := mustSub(t, s, e.ID, task.StatusNew)
	mustSub(t, s, other.ID, task.StatusNew)
	b := mustSub(t, s, e.ID, task.StatusNew)

	subs, err := s.SubTasksOf(e.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, a.ID, subs[0].ID)
	assert.Equal(t, b.ID, subs[1].ID)

	_, err = s.SubTasksOf(a.ID)
	assert.True(t, clierr.Is(err, clierr.NotFound))
}

func TestDeleteAll(t *testing.T) {
	setup := func(t *testing.T) (*Store, *task.Epic) {
		s := New()
		tk := mustTask(t, s, "t")
		e := mustEpic(t, s, "e")
		mustSub(t, s, e.ID, task.StatusDone)
		_, _ = s.GetTask(tk.ID)
		_, _ = s.GetEpic(e.ID)
		return s, e
	}

	t.Run("tasks", func(t *testing.T) {
		s, e := setup(t)
		assert.Equal(t, 1, s.DeleteAllTasks())
		assert.Empty(t, s.Tasks())
		assert.Len(t, s.Epics(), 1)
		assert.Equal(t, []int{e.ID}, s.HistoryIDs())
	})

	t.Run("epics cascade to subtasks", func(t *testing.T) {
		s, _ := setup(t)
		assert.Equal(t, 2, s.DeleteAllEpics())
		assert.Empty(t, s.Epics())
		assert.Empty(t, s.SubTasks())
		assert.Len(t, s.Tasks(), 1)
	})

	t.Run("subtasks reset epics", func(t *testing.T) {
		s, e := setup(t)
		assert.Equal(t, 1, s.DeleteAllSubTasks())
		got, err := s.GetEpic(e.ID)
		require.NoError(t, err)
		assert.Empty(t, got.SubTaskIDs)
		assert.Equal(t, task.StatusNew, got.Status)
	})
}

func TestReturnedValuesAreCopies(t *testing.T) {
	s := New()
	e := mustEpic(t, s, "e")
	mustSub(t, s, e.ID, task.StatusNew)

	got, _ := s.GetEpic(e.ID)
	got.Name = "mutated"
	got.SubTaskIDs[0] = 99

	again, _ := s.GetEpic(e.ID)
	assert.Equal(t, "e", again.Name)
	assert.Equal(t, []int{2}, again.SubTaskIDs)
}

func TestObserver(t *testing.T) {
	var got []Mutation
	s := New(WithObserver(func(m Mutation) { got = append(got, m) }))

	tk := mustTask(t, s, "a")
	_, err := s.AddTask(task.NewTask("", ""))
	require.Error(t, err)
	require.NoError(t, s.DeleteTask(tk.ID))
	s.DeleteAllEpics()

	require.Len(t, got, 3)
	assert.Equal(t, Mutation{Action: ActionAdd, Kind: task.KindTask, ID: 1, Detail: "a"}, got[0])
	assert.Equal(t, ActionDelete, got[1].Action)
	assert.Equal(t, ActionClear, got[2].Action)
	assert.Equal(t, task.KindEpic, got[2].Kind)
}

func TestHistoryLimit(t *testing.T) {
	s := New(WithHistoryLimit(2))
	for range 3 {
		tk := mustTask(t, s, "t")
		_, _ = s.GetTask(tk.ID)
	}
	assert.Equal(t, []int{2, 3}, s.HistoryIDs())
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	e := mustEpic(t, s, "e")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				st, err := s.AddSubTask(task.NewSubTask(e.ID, "sub", ""))
				if !assert.NoError(t, err) {
					return
				}
				_, _ = s.GetSubTask(st.ID)
				_ = s.Prioritized()
				_ = s.History()
				if i%2 == 0 {
					_ = s.DeleteSubTask(st.ID)
				}
			}
		}()
	}
	wg.Wait()

	got, err := s.GetEpic(e.ID)
	require.NoError(t, err)
	assert.Len(t, got.SubTaskIDs, 4*50)
	assert.Len(t, s.SubTasks(), 4*50)
	assert.Equal(t, 1+8*50+1, s.NextID())
}

func TestRecentHistory(t *testing.T) {
	s := New()
	a := mustTask(t, s, "a")
	b := mustTask(t, s, "b")
	for _, id := range []int{a.ID, b.ID, a.ID} {
		_, err := s.Get(id)
		require.NoError(t, err)
	}

	recent := s.RecentHistory()
	require.Len(t, recent, 2)
	assert.Equal(t, a.ID, recent[0].Base().ID)
	assert.Equal(t, b.ID, recent[1].Base().ID)
	assert.Equal(t, []int{b.ID, a.ID}, s.HistoryIDs())
}

func TestReset(t *testing.T) {
	var got []Mutation
	s := New(WithObserver(func(m Mutation) { got = append(got, m) }))
	tk := mustTask(t, s, "a")
	tk.SetSchedule(at(9, 0), dur(time.Hour))
	_, err := s.UpdateTask(tk)
	require.NoError(t, err)
	e := mustEpic(t, s, "e")
	mustSub(t, s, e.ID, task.StatusNew)
	_, err = s.Get(tk.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Reset())
	assert.Empty(t, s.All())
	assert.Empty(t, s.HistoryIDs())
	assert.Empty(t, s.Prioritized())
	assert.Equal(t, 4, s.NextID())

	last := got[len(got)-1]
	assert.Equal(t, ActionClear, last.Action)
	assert.Equal(t, 3, last.Count)

	// the schedule slot is free again
	again := task.NewTask("b", "")
	again.SetSchedule(at(9, 0), dur(time.Hour))
	_, err = s.AddTask(again)
	require.NoError(t, err)
}
