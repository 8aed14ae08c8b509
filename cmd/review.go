package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/ui/theme"
)

var reviewCmd = &cobra.Command{
	Use:   "review <goal>",
	Short: "Run a weekly review with the AI coach",
	Long: "Reflect on the past week and get suggested changes to a goal's plan. " +
		"Suggestions are only applied after confirmation.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reflection, _ := cmd.Flags().GetString("reflection")
		mood, _ := cmd.Flags().GetInt("mood")
		apply, _ := cmd.Flags().GetBool("apply")

		e, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		g, err := pickGoal(e.svc.Goals(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		in := bufio.NewScanner(cmd.InOrStdin())
		if reflection == "" {
			fmt.Fprintf(out, "How did the week go on %q?\n> ", g.Title)
			if in.Scan() {
				reflection = strings.TrimSpace(in.Text())
			}
		}
		if !cmd.Flags().Changed("mood") {
			fmt.Fprint(out, "How satisfied are you, 1-5? [3] ")
			if in.Scan() {
				if n, err := strconv.Atoi(strings.TrimSpace(in.Text())); err == nil {
					mood = n
				}
			}
		}

		fmt.Fprintln(out, "Reviewing...")
		review, err := e.svc.WeeklyReview(cmd.Context(), g.ID, reflection, mood)
		if err := handleIntentErr(cmd, err); err != nil {
			return err
		}
		if review == nil {
			return fmt.Errorf("goal %q no longer exists", g.Title)
		}

		printReview(out, g, *review)
		if len(review.Modifications) == 0 && len(review.NewSteps) == 0 {
			return nil
		}

		if !apply {
			fmt.Fprint(out, "\nApply these changes? [y/N] ")
			if !in.Scan() || !strings.EqualFold(strings.TrimSpace(in.Text()), "y") {
				fmt.Fprintln(out, "Discarded.")
				return nil
			}
		}

		updated, _, err := e.svc.ApplyReview(cmd.Context(), g.ID, *review)
		if err := handleIntentErr(cmd, err); err != nil {
			return err
		}
		fmt.Fprintln(out)
		printGoal(out, updated, e.svc.Today())
		return nil
	},
}

// printReview shows the analysis and the proposed changes against the
// current steps.
func printReview(w io.Writer, g model.Goal, r model.ReviewResponse) {
	fmt.Fprintln(w)
	lipgloss.Fprintln(w, theme.Title.Render("Coach's analysis"))
	lipgloss.Fprintln(w, theme.Body.Render(r.Analysis))

	if len(r.Modifications) > 0 {
		fmt.Fprintln(w)
		lipgloss.Fprintln(w, theme.Subtitle.Render("Suggested changes"))
		for _, m := range r.Modifications {
			i := g.StepIndex(m.StepID)
			if i < 0 {
				continue
			}
			lipgloss.Fprintln(w, fmt.Sprintf("  %d. %s", i+1, g.Steps[i].Title))
			for _, c := range describeChanges(m.Changes) {
				lipgloss.Fprintln(w, "     "+theme.Hint.Render(c))
			}
		}
	}

	if len(r.NewSteps) > 0 {
		fmt.Fprintln(w)
		lipgloss.Fprintln(w, theme.Subtitle.Render("New steps"))
		for _, s := range r.NewSteps {
			lipgloss.Fprintln(w, fmt.Sprintf("  + %s %s", s.Title,
				theme.Hint.Render(fmt.Sprintf("(%s, %s)", s.Frequency, s.Difficulty))))
		}
	}
}

func describeChanges(c model.StepChanges) []string {
	var out []string
	if c.Title != nil {
		out = append(out, "title → "+*c.Title)
	}
	if c.Description != nil {
		out = append(out, "description → "+*c.Description)
	}
	if c.Difficulty != nil {
		out = append(out, "difficulty → "+string(*c.Difficulty))
	}
	if c.Deadline != nil {
		out = append(out, "deadline → "+*c.Deadline)
	}
	return out
}

func init() {
	reviewCmd.Flags().StringP("reflection", "r", "", "How the week went")
	reviewCmd.Flags().Int("mood", 3, "Satisfaction with the week, 1-5")
	reviewCmd.Flags().Bool("apply", false, "Apply suggestions without asking")
}
