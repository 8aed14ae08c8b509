package cmd

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/tracking"
	"github.com/abhisek/goalpath/internal/ui/components"
	"github.com/abhisek/goalpath/internal/ui/theme"
)

const barWidth = 40

// printGoalRow prints one line of the goal list.
func printGoalRow(w io.Writer, n int, g model.Goal) {
	num := "  "
	if n > 0 {
		num = fmt.Sprintf("%2d", n)
	}
	status := theme.StatusStyle(g.Status).Render(fmt.Sprintf("%-11s", g.Status.DisplayName()))
	title := g.Title
	if g.Archived {
		title += theme.Hint.Render(" (archived)")
	}
	lipgloss.Fprintln(w, fmt.Sprintf("%s. %s  %s  %s  %s",
		num,
		theme.Hint.Render(shortID(g.ID)),
		status,
		components.NewProgressBar("", g.Progress, true, 24).View(),
		theme.Body.Render(title),
	))
}

// printGoal prints a goal with all its steps.
func printGoal(w io.Writer, g model.Goal, today calendar.Date) {
	lipgloss.Fprintln(w, theme.Title.Render(g.Title)+"  "+theme.Hint.Render(g.ID))
	if g.Motivation != "" {
		lipgloss.Fprintln(w, theme.Subtitle.Render("Why: "+g.Motivation))
	}
	meta := []string{theme.StatusStyle(g.Status).Render(g.Status.DisplayName())}
	if g.Deadline != "" {
		meta = append(meta, "target "+g.Deadline)
	}
	meta = append(meta, "created "+calendar.FromTime(g.CreatedAt.Local()).String())
	if g.Archived {
		meta = append(meta, "archived")
	}
	lipgloss.Fprintln(w, theme.Subtitle.Render(strings.Join(meta, " · ")))
	lipgloss.Fprintln(w, components.NewProgressBar("Progress", g.Progress, true, barWidth).View())
	fmt.Fprintln(w)

	if len(g.Steps) == 0 {
		lipgloss.Fprintln(w, theme.Hint.Render("No steps yet. Add one with `goalpath step add` or `goalpath goal more`."))
		return
	}
	for i, s := range g.Steps {
		lipgloss.Fprintln(w, components.StepLine(i+1, s, today))
		if s.Description != "" || s.EstimatedTime != "" {
			detail := s.Description
			if s.EstimatedTime != "" {
				detail = strings.TrimSpace(detail + " (" + s.EstimatedTime + ")")
			}
			lipgloss.Fprintln(w, "       "+theme.Hint.Render(detail))
		}
		if s.Frequency.Recurring() {
			if best := tracking.LongestStreak(s); best > 1 {
				lipgloss.Fprintln(w, "       "+theme.Hint.Render(fmt.Sprintf("best streak: %d %ss, %d check-ins",
					best, strings.ToLower(s.Frequency.PeriodName()), len(s.CheckIns))))
			}
		}
		for _, ss := range s.SubSteps {
			lipgloss.Fprintln(w, components.SubStepLine(ss))
		}
	}
}

// printXP prints an XP change after a toggle.
func printXP(w io.Writer, applied, total int) {
	switch {
	case applied > 0:
		lipgloss.Fprintln(w, theme.XP.Render(fmt.Sprintf("+%d XP", applied))+theme.Hint.Render(fmt.Sprintf("  (total %d)", total)))
	case applied < 0:
		lipgloss.Fprintln(w, theme.Hint.Render(fmt.Sprintf("%d XP (total %d)", applied, total)))
	}
}

// warnPersist reports a write failure without failing the command. The
// change is visible locally and is reconciled on the next sync.
func warnPersist(w io.Writer, err error) {
	lipgloss.Fprintln(w, theme.ErrorText.Render("warning: ")+fmt.Sprintf("change not saved: %v", err))
}
