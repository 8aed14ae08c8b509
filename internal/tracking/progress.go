package tracking

import (
	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
)

// Progress returns the share of steps satisfied for the current period as a
// percentage in [0, 100]. Every step weighs the same. An empty list is 0.
func Progress(steps []model.Step, today calendar.Date) float64 {
	if len(steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range steps {
		if IsSatisfied(s, today) {
			done++
		}
	}
	return float64(done) / float64(len(steps)) * 100
}

// StatusFor derives a goal status from a progress percentage.
func StatusFor(progress float64) model.Status {
	switch {
	case progress >= 100:
		return model.StatusCompleted
	case progress > 0:
		return model.StatusInProgress
	default:
		return model.StatusNotStarted
	}
}

// StatusOf derives the goal status from its steps.
func StatusOf(steps []model.Step, today calendar.Date) model.Status {
	return StatusFor(Progress(steps, today))
}

// Recompute overwrites the goal's derived Progress and Status from its
// steps. Satisfaction depends on the day, so this must run after every
// steps mutation and whenever a goal is loaded.
func Recompute(g model.Goal, today calendar.Date) model.Goal {
	g.Progress = Progress(g.Steps, today)
	g.Status = StatusFor(g.Progress)
	return g
}

// Summary holds dashboard counts over a user's goals.
type Summary struct {
	Visible   int // goals that are not archived
	Active    int // visible goals not yet completed
	Completed int // visible goals completed
	Archived  int
}

// Summarize counts goals by visibility and status for today.
func Summarize(goals []model.Goal, today calendar.Date) Summary {
	var s Summary
	for _, g := range goals {
		if g.Archived {
			s.Archived++
			continue
		}
		s.Visible++
		if StatusOf(g.Steps, today) == model.StatusCompleted {
			s.Completed++
		} else {
			s.Active++
		}
	}
	return s
}
