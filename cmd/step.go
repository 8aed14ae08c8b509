package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/tracking"
	"github.com/abhisek/goalpath/internal/ui/components"
	"github.com/abhisek/goalpath/internal/ui/theme"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Check in, edit and reorder the steps of a goal",
}

var stepToggleCmd = &cobra.Command{
	Use:     "toggle <goal> <step>",
	Aliases: []string{"done", "check"},
	Short:   "Toggle today's completion of a step",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		g, err := pickGoal(e.svc.Goals(), args[0])
		if err != nil {
			return err
		}
		s, pos, err := pickStep(g, args[1])
		if err != nil {
			return err
		}

		before := e.svc.Preferences().TotalXP
		res, ok, err := e.svc.ToggleStep(cmd.Context(), g.ID, s.ID)
		if err := handleIntentErr(cmd, err); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("step %q no longer exists", s.Title)
		}

		today := e.svc.Today()
		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, components.StepLine(pos+1, res.Step, today))
		if tracking.IsSatisfied(res.Step, today) && res.Step.Frequency.Recurring() {
			if n := tracking.CurrentStreak(res.Step, today); n > 1 {
				lipgloss.Fprintln(out, theme.Streak.Render(fmt.Sprintf("%d %s streak!", n, strings.ToLower(res.Step.Frequency.PeriodName()))))
			}
		}
		printXP(out, res.Preferences.TotalXP-before, res.Preferences.TotalXP)
		lipgloss.Fprintln(out, components.NewProgressBar(res.Goal.Title, res.Goal.Progress, true, barWidth).View())
		return nil
	},
}

var stepAddCmd = &cobra.Command{
	Use:   "add <goal> <title>",
	Short: "Add a step by hand",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		step, err := stepFromFlags(cmd, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		g, err := pickGoal(e.svc.Goals(), args[0])
		if err != nil {
			return err
		}
		updated, changed, err := e.svc.AddStep(cmd.Context(), g.ID, step)
		if err := handleIntentErr(cmd, err); err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("goal %q no longer exists", g.Title)
		}
		n := len(updated.Steps)
		lipgloss.Fprintln(cmd.OutOrStdout(), components.StepLine(n, updated.Steps[n-1], e.svc.Today()))
		return nil
	},
}

func stepFromFlags(cmd *cobra.Command, title string) (model.Step, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Step{}, fmt.Errorf("step title is required")
	}
	desc, _ := cmd.Flags().GetString("description")
	est, _ := cmd.Flags().GetString("time")
	diff, _ := cmd.Flags().GetString("difficulty")
	freq, _ := cmd.Flags().GetString("frequency")
	deadline, _ := cmd.Flags().GetString("deadline")

	step := model.Step{
		ID:            model.NewID(),
		Title:         title,
		Description:   desc,
		EstimatedTime: est,
		Difficulty:    model.Difficulty(titleCase(diff)),
		Frequency:     model.Frequency(titleCase(freq)),
	}
	if !step.Difficulty.Valid() {
		return model.Step{}, fmt.Errorf("--difficulty must be one of %v", model.AllDifficulties())
	}
	if !step.Frequency.Valid() {
		return model.Step{}, fmt.Errorf("--frequency must be one of %v", model.AllFrequencies())
	}
	if deadline != "" {
		d, err := calendar.Parse(deadline)
		if err != nil {
			return model.Step{}, fmt.Errorf("--deadline: %w", err)
		}
		step.Deadline = d.String()
	}
	return step, nil
}

func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

var stepDeleteCmd = &cobra.Command{
	Use:     "delete <goal> <step>",
	Aliases: []string{"rm"},
	Short:   "Delete a step",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		g, err := pickGoal(e.svc.Goals(), args[0])
		if err != nil {
			return err
		}
		s, _, err := pickStep(g, args[1])
		if err != nil {
			return err
		}
		updated, _, err := e.svc.DeleteStep(cmd.Context(), g.ID, s.ID)
		if err := handleIntentErr(cmd, err); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q.\n", s.Title)
		lipgloss.Fprintln(cmd.OutOrStdout(), components.NewProgressBar(updated.Title, updated.Progress, true, barWidth).View())
		return nil
	},
}

var stepMoveCmd = &cobra.Command{
	Use:   "move <goal> <step> <position>",
	Short: "Move a step to a new position (1-based)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("position must be a number: %w", err)
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		g, err := pickGoal(e.svc.Goals(), args[0])
		if err != nil {
			return err
		}
		s, _, err := pickStep(g, args[1])
		if err != nil {
			return err
		}
		updated, changed, err := e.svc.MoveStep(cmd.Context(), g.ID, s.ID, to-1)
		if err := handleIntentErr(cmd, err); err != nil {
			return err
		}
		if !changed {
			fmt.Fprintln(cmd.OutOrStdout(), "Step is already there.")
			return nil
		}
		printGoal(cmd.OutOrStdout(), updated, e.svc.Today())
		return nil
	},
}

var stepDeadlineCmd = &cobra.Command{
	Use:   "deadline <goal> <step> [date]",
	Short: "Set or clear a step deadline",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		remove, _ := cmd.Flags().GetBool("clear")
		var deadline string
		switch {
		case remove:
		case len(args) == 3:
			d, err := calendar.Parse(args[2])
			if err != nil {
				return err
			}
			deadline = d.String()
		default:
			return fmt.Errorf("give a date (YYYY-MM-DD) or --clear")
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		g, err := pickGoal(e.svc.Goals(), args[0])
		if err != nil {
			return err
		}
		s, pos, err := pickStep(g, args[1])
		if err != nil {
			return err
		}
		updated, _, err := e.svc.SetStepDeadline(cmd.Context(), g.ID, s.ID, deadline)
		if err := handleIntentErr(cmd, err); err != nil {
			return err
		}
		if pos >= len(updated.Steps) {
			return nil
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), components.StepLine(pos+1, updated.Steps[pos], e.svc.Today()))
		return nil
	},
}

var stepBreakdownCmd = &cobra.Command{
	Use:   "breakdown <goal> <step>",
	Short: "Ask the AI coach to split a step into sub-steps",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		g, err := pickGoal(e.svc.Goals(), args[0])
		if err != nil {
			return err
		}
		s, pos, err := pickStep(g, args[1])
		if err != nil {
			return err
		}
		updated, changed, err := e.svc.BreakDownStep(cmd.Context(), g.ID, s.ID)
		if err := handleIntentErr(cmd, err); err != nil {
			return err
		}
		if !changed {
			return nil
		}
		out := cmd.OutOrStdout()
		step := updated.Steps[pos]
		lipgloss.Fprintln(out, components.StepLine(pos+1, step, e.svc.Today()))
		for _, ss := range step.SubSteps {
			lipgloss.Fprintln(out, components.SubStepLine(ss))
		}
		return nil
	},
}

var stepSubCmd = &cobra.Command{
	Use:   "sub <goal> <step> <sub-step>",
	Short: "Toggle a sub-step",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		g, err := pickGoal(e.svc.Goals(), args[0])
		if err != nil {
			return err
		}
		s, pos, err := pickStep(g, args[1])
		if err != nil {
			return err
		}
		ss, err := pickSubStep(s, args[2])
		if err != nil {
			return err
		}
		updated, changed, err := e.svc.ToggleSubStep(cmd.Context(), g.ID, s.ID, ss.ID)
		if err := handleIntentErr(cmd, err); err != nil {
			return err
		}
		if !changed {
			return nil
		}
		for _, sub := range updated.Steps[pos].SubSteps {
			if sub.ID == ss.ID {
				lipgloss.Fprintln(cmd.OutOrStdout(), components.SubStepLine(sub))
			}
		}
		return nil
	},
}

func init() {
	stepAddCmd.Flags().String("description", "", "What the step involves")
	stepAddCmd.Flags().String("time", "", "Estimated time, e.g. \"30 mins\"")
	stepAddCmd.Flags().String("difficulty", string(model.DifficultyMedium), "Easy, Medium or Hard")
	stepAddCmd.Flags().String("frequency", string(model.FrequencyOnce), "Once, Daily, Weekly or Monthly")
	stepAddCmd.Flags().String("deadline", "", "Deadline (YYYY-MM-DD)")

	stepDeadlineCmd.Flags().Bool("clear", false, "Remove the deadline")

	stepCmd.AddCommand(stepToggleCmd)
	stepCmd.AddCommand(stepAddCmd)
	stepCmd.AddCommand(stepDeleteCmd)
	stepCmd.AddCommand(stepMoveCmd)
	stepCmd.AddCommand(stepDeadlineCmd)
	stepCmd.AddCommand(stepBreakdownCmd)
	stepCmd.AddCommand(stepSubCmd)
}
