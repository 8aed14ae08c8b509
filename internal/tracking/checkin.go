package tracking

import (
	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
)

// Toggle returns a copy of step with today's completion flipped.
//
// One-off steps flip IsCompleted. Recurring steps store the raw date of
// today regardless of frequency: if it is already present every occurrence
// is removed, otherwise it is appended. Toggling twice on the same day
// restores the original check-ins.
func Toggle(step model.Step, today calendar.Date) model.Step {
	out := step.Clone()
	if !step.Frequency.Recurring() {
		out.IsCompleted = !step.IsCompleted
		return out
	}

	key := today.String()
	if CheckedInOn(step, today) {
		kept := make([]string, 0, len(step.CheckIns))
		for _, c := range step.CheckIns {
			if c != key {
				kept = append(kept, c)
			}
		}
		out.CheckIns = kept
		return out
	}

	out.CheckIns = append(out.CheckIns, key)
	return out
}
