package task

import "time"

// Recompute derives an epic's status and schedule from its live subtasks.
// It is a pure function of subs; the epic's own values are overwritten.
//   - Status: no subtasks is NEW; any IN_PROGRESS wins; otherwise any NEW
//     wins; otherwise DONE.
//   - Schedule: cleared when no subtask has a start time. Otherwise the
//     earliest start, the latest end, and the sum of durations (a zero sum is
//     stored as no duration).
func Recompute(e *Epic, subs []*SubTask) {
	e.Status = aggregateStatus(subs)

	var (
		start *time.Time
		end   *time.Time
		total time.Duration
	)
	for _, s := range subs {
		if s.StartTime != nil && (start == nil || s.StartTime.Before(*start)) {
			start = copyTime(s.StartTime)
		}
		if se := s.End(); se != nil && (end == nil || se.After(*end)) {
			end = se
		}
		if s.Duration != nil {
			total += *s.Duration
		}
	}

	if start == nil {
		e.StartTime = nil
		e.Duration = nil
		e.EndTime = nil
		return
	}

	e.StartTime = start
	e.EndTime = end
	e.Duration = nil
	if total != 0 {
		e.Duration = &total
	}
}

func aggregateStatus(subs []*SubTask) Status {
	if len(subs) == 0 {
		return StatusNew
	}

	hasNew := false
	for _, s := range subs {
		switch s.Status {
		case StatusInProgress:
			return StatusInProgress
		case StatusNew:
			hasNew = true
		case StatusDone:
		}
	}

	if hasNew {
		return StatusNew
	}
	return StatusDone
}
