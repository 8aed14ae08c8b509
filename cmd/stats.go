package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/goalpath/internal/tracking"
	"github.com/abhisek/goalpath/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show XP history, streaks and goal counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		today := e.svc.Today()
		prefs := e.svc.Preferences()
		sum := e.svc.Summary()

		xp, err := e.svc.Ledger().Summary(ctx)
		if err != nil {
			return fmt.Errorf("query xp: %w", err)
		}

		lipgloss.Fprintln(out, theme.Title.Render("Stats"))
		lipgloss.Fprintln(out, fmt.Sprintf("Total XP:   %s", theme.XP.Render(fmt.Sprint(prefs.TotalXP))))
		lipgloss.Fprintln(out, fmt.Sprintf("Earned:     %d over %d check-ins (%d undone)", xp.Earned, xp.Events, xp.Revoked))
		if !xp.LastSeen.IsZero() {
			lipgloss.Fprintln(out, fmt.Sprintf("Last XP:    %s", xp.LastSeen.Local().Format("2006-01-02 15:04")))
		}
		lipgloss.Fprintln(out, fmt.Sprintf("Goals:      %d active, %d completed, %d archived", sum.Active, sum.Completed, sum.Archived))

		var bestTitle string
		var best, current int
		for _, g := range visibleGoals(e.svc.Goals()) {
			for _, s := range g.Steps {
				if !s.Frequency.Recurring() {
					continue
				}
				if n := tracking.LongestStreak(s); n > best {
					best, bestTitle = n, s.Title
				}
				current += tracking.CurrentStreak(s, today)
			}
		}
		if best > 0 {
			lipgloss.Fprintln(out, fmt.Sprintf("Best run:   %s %s",
				theme.Streak.Render(fmt.Sprint(best)), theme.Hint.Render("("+bestTitle+")")))
			lipgloss.Fprintln(out, fmt.Sprintf("Live runs:  %d periods across all steps", current))
		}

		recent, err := e.svc.Ledger().Recent(ctx, limit)
		if err != nil {
			return fmt.Errorf("query xp events: %w", err)
		}
		if len(recent) == 0 {
			return nil
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-16s  %6s  %6s  %s\n", "When", "XP", "Total", "Reason")
		fmt.Fprintln(out, strings.Repeat("─", 72))
		for _, r := range recent {
			fmt.Fprintf(out, "%-16s  %+6d  %6d  %s\n",
				r.Timestamp.Local().Format("2006-01-02 15:04"),
				r.Delta,
				r.Total,
				truncate(r.Reason, 40),
			)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 10, "Number of recent XP events to show")
}
