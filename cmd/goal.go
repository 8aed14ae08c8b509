package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/goals"
	"github.com/abhisek/goalpath/internal/planner"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Create and manage goals",
}

var goalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List goals, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		list := e.svc.Goals()
		if len(list) == 0 {
			fmt.Fprintln(out, "No goals yet. Create one with: goalpath goal new \"<title>\"")
			return nil
		}

		n := 0
		for _, g := range list {
			if g.Archived {
				if all {
					printGoalRow(out, 0, g)
				}
				continue
			}
			n++
			printGoalRow(out, n, g)
		}

		sum := e.svc.Summary()
		fmt.Fprintf(out, "\n%d active, %d completed", sum.Active, sum.Completed)
		if sum.Archived > 0 && !all {
			fmt.Fprintf(out, ", %d archived (use --all)", sum.Archived)
		}
		fmt.Fprintln(out)
		return nil
	},
}

var goalNewCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Plan a new goal with the AI coach",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")
		motivation, _ := cmd.Flags().GetString("motivation")
		deadline, _ := cmd.Flags().GetString("deadline")
		skip, _ := cmd.Flags().GetBool("skip-questions")

		if deadline != "" {
			d, err := calendar.Parse(deadline)
			if err != nil {
				return fmt.Errorf("--deadline: %w", err)
			}
			deadline = d.String()
		}

		e, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		var answers []planner.QA
		if !skip {
			in := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprintln(out, "A few questions first (leave blank to skip):")
			for _, q := range e.svc.ClarifyingQuestions(ctx, title, motivation) {
				fmt.Fprintf(out, "\n%s\n> ", q)
				if !in.Scan() {
					break
				}
				if a := strings.TrimSpace(in.Text()); a != "" {
					answers = append(answers, planner.QA{Question: q, Answer: a})
				}
			}
			fmt.Fprintln(out)
		}

		fmt.Fprintln(out, "Drafting your plan...")
		g, err := e.svc.CreateGoal(ctx, goals.NewGoalRequest{
			Title:      title,
			Motivation: motivation,
			Deadline:   deadline,
			Answers:    answers,
		})
		if err := handleIntentErr(cmd, err); err != nil {
			return err
		}

		fmt.Fprintln(out)
		printGoal(out, g, e.svc.Today())
		return nil
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show <goal>",
	Short: "Show a goal and its steps",
	Args:  cobra.ExactArgs(1),
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
		printGoal(cmd.OutOrStdout(), g, e.svc.Today())
		return nil
	},
}

var goalMoreCmd = &cobra.Command{
	Use:   "more <goal>",
	Short: "Ask the AI coach for additional steps",
	Args:  cobra.ExactArgs(1),
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
		before := len(g.Steps)

		updated, changed, err := e.svc.GenerateMoreSteps(cmd.Context(), g.ID)
		if err := handleIntentErr(cmd, err); err != nil {
			return err
		}
		if !changed {
			fmt.Fprintln(cmd.OutOrStdout(), "No new steps suggested.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d steps.\n\n", len(updated.Steps)-before)
		printGoal(cmd.OutOrStdout(), updated, e.svc.Today())
		return nil
	},
}

func archiveCmd(use, short string, archived bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <goal>",
		Short: short,
		Args:  cobra.ExactArgs(1),
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
			_, changed, err := e.svc.SetArchived(cmd.Context(), g.ID, archived)
			if err := handleIntentErr(cmd, err); err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "%q is already %sd.\n", g.Title, use)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%sd %q.\n", strings.ToUpper(use[:1])+use[1:], g.Title)
			return nil
		},
	}
}

var goalDeleteCmd = &cobra.Command{
	Use:   "delete <goal>",
	Short: "Delete a goal permanently",
	Args:  cobra.ExactArgs(1),
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
		if _, err := e.svc.DeleteGoal(cmd.Context(), g.ID); err != nil {
			return handleIntentErr(cmd, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q.\n", g.Title)
		return nil
	},
}

// handleIntentErr downgrades persistence failures to a warning: the change
// is already applied locally. Other errors are returned.
func handleIntentErr(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	var pe *goals.PersistError
	if errors.As(err, &pe) {
		warnPersist(cmd.ErrOrStderr(), err)
		return nil
	}
	var ese *goals.ExternalServiceError
	if errors.As(err, &ese) {
		return fmt.Errorf("AI coach unavailable: %w", err)
	}
	return err
}

func init() {
	goalListCmd.Flags().BoolP("all", "a", false, "Include archived goals")

	goalNewCmd.Flags().StringP("motivation", "m", "", "Why this goal matters to you")
	goalNewCmd.Flags().StringP("deadline", "d", "", "Target date (YYYY-MM-DD)")
	goalNewCmd.Flags().Bool("skip-questions", false, "Skip the clarifying questions")

	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalNewCmd)
	goalCmd.AddCommand(goalShowCmd)
	goalCmd.AddCommand(goalMoreCmd)
	goalCmd.AddCommand(archiveCmd("archive", "Hide a goal from the default list", true))
	goalCmd.AddCommand(archiveCmd("restore", "Bring back an archived goal", false))
	goalCmd.AddCommand(goalDeleteCmd)
}
