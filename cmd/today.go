package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/goalpath/internal/tracking"
	"github.com/abhisek/goalpath/internal/ui/components"
	"github.com/abhisek/goalpath/internal/ui/theme"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show what is due today across all goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToday(cmd)
	},
}

// runToday prints the dashboard: open steps of every visible goal, with
// recurring steps always listed so today's check-in can be seen.
func runToday(cmd *cobra.Command) error {
	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	today := e.svc.Today()
	prefs := e.svc.Preferences()
	sum := e.svc.Summary()

	greeting := "Today"
	if prefs.DisplayName != "" {
		greeting = "Hi " + prefs.DisplayName
	}
	lipgloss.Fprintln(out, theme.Title.Render(greeting)+"  "+theme.Hint.Render(today.Time().Format("Monday, Jan 2 2006")))
	lipgloss.Fprintln(out, theme.XP.Render(fmt.Sprintf("%d XP", prefs.TotalXP))+
		theme.Subtitle.Render(fmt.Sprintf("  ·  %d active  ·  %d completed", sum.Active, sum.Completed)))
	fmt.Fprintln(out)

	visible := visibleGoals(e.svc.Goals())
	if len(visible) == 0 {
		lipgloss.Fprintln(out, theme.Hint.Render("No goals yet. Create one with: goalpath goal new \"<title>\""))
		return nil
	}

	for n, g := range visible {
		lipgloss.Fprintln(out, fmt.Sprintf("%d. %s", n+1, theme.Body.Render(g.Title)))
		lipgloss.Fprintln(out, "   "+components.NewProgressBar("", g.Progress, true, 24).View())

		shown := 0
		for i, s := range g.Steps {
			if !s.Frequency.Recurring() && tracking.IsSatisfied(s, today) {
				continue
			}
			lipgloss.Fprintln(out, components.StepLine(i+1, s, today))
			shown++
		}
		if shown == 0 {
			lipgloss.Fprintln(out, "   "+theme.Done.Render("All steps done."))
		}
		fmt.Fprintln(out)
	}
	lipgloss.Fprintln(out, theme.Hint.Render("Check in with: goalpath step toggle <goal> <step>"))
	return nil
}
