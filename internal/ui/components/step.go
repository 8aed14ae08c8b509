package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/tracking"
	"github.com/abhisek/goalpath/internal/ui/theme"
)

// StepLine renders one step as a checklist row for today: a check box,
// the position, title, frequency and difficulty, a streak for recurring
// steps and an overdue deadline marker.
func StepLine(pos int, s model.Step, today calendar.Date) string {
	var b strings.Builder

	if tracking.IsSatisfied(s, today) {
		b.WriteString(theme.Done.Render("[x]"))
	} else {
		b.WriteString(theme.Pending.Render("[ ]"))
	}
	b.WriteString(fmt.Sprintf(" %2d. %s", pos, theme.Body.Render(s.Title)))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %s", s.Frequency)))
	b.WriteString("  " + theme.DifficultyStyle(s.Difficulty).Render(string(s.Difficulty)))

	if s.Frequency.Recurring() {
		if n := tracking.CurrentStreak(s, today); n > 0 {
			b.WriteString("  " + theme.Streak.Render(fmt.Sprintf("%d %s streak", n, strings.ToLower(s.Frequency.PeriodName()))))
		}
	}

	if s.Deadline != "" {
		d, err := calendar.Parse(s.Deadline)
		switch {
		case err == nil && d.Before(today) && !tracking.IsSatisfied(s, today):
			b.WriteString("  " + theme.Overdue.Render("overdue "+s.Deadline))
		default:
			b.WriteString("  " + theme.Hint.Render("due "+s.Deadline))
		}
	}

	return b.String()
}

// SubStepLine renders a sub-step under its parent step.
func SubStepLine(ss model.SubStep) string {
	box := theme.Pending.Render("[ ]")
	if ss.IsCompleted {
		box = theme.Done.Render("[x]")
	}
	return fmt.Sprintf("       %s %s", box, ss.Title)
}
