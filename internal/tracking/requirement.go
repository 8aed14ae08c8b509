package tracking

import (
	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
)

// WeeklyWindowDays is the sliding window, in days, within which a weekly
// step's last check-in keeps it satisfied.
const WeeklyWindowDays = 7

// IsSatisfied reports whether a step's requirement is met for the period
// containing today.
//
// Only the last check-in is considered: it is the most recent toggle, not
// necessarily the latest calendar date. Daily and Monthly compare periods;
// Weekly uses a sliding window of WeeklyWindowDays around today instead of
// calendar-week equality.
func IsSatisfied(step model.Step, today calendar.Date) bool {
	if !step.Frequency.Recurring() {
		return step.IsCompleted
	}
	if len(step.CheckIns) == 0 {
		return false
	}
	last := step.CheckIns[len(step.CheckIns)-1]

	switch step.Frequency {
	case model.FrequencyDaily:
		return last == today.String()
	case model.FrequencyWeekly:
		d, err := calendar.Parse(last)
		if err != nil {
			return false
		}
		return abs(calendar.DaysBetween(d, today)) <= WeeklyWindowDays
	case model.FrequencyMonthly:
		d, err := calendar.Parse(last)
		if err != nil {
			return false
		}
		return calendar.SameMonth(d, today)
	}
	return false
}

// CheckedInOn reports whether the raw date string of day is present in the
// step's check-ins. For one-off steps it reports IsCompleted.
func CheckedInOn(step model.Step, day calendar.Date) bool {
	if !step.Frequency.Recurring() {
		return step.IsCompleted
	}
	key := day.String()
	for _, c := range step.CheckIns {
		if c == key {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
