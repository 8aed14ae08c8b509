package cmd

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/ui/theme"
)

var prefsCmd = &cobra.Command{
	Use:     "prefs",
	Aliases: []string{"preferences"},
	Short:   "Show or change your preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		printPrefs(cmd.OutOrStdout(), e.cfg.UserID, e.svc.Preferences())
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change display name, coach persona or theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch model.PreferencesPatch
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			name = strings.TrimSpace(name)
			patch.DisplayName = &name
		}
		if cmd.Flags().Changed("persona") {
			v, _ := cmd.Flags().GetString("persona")
			p, err := parsePersona(v)
			if err != nil {
				return err
			}
			patch.AIPersona = &p
		}
		if cmd.Flags().Changed("dark") {
			dark, _ := cmd.Flags().GetBool("dark")
			patch.DarkMode = &dark
		}
		if patch.Empty() {
			return fmt.Errorf("nothing to change; see --help")
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		prefs, err := e.svc.UpdatePreferences(cmd.Context(), patch)
		if err := handleIntentErr(cmd, err); err != nil {
			return err
		}
		printPrefs(cmd.OutOrStdout(), e.cfg.UserID, prefs)
		return nil
	},
}

// parsePersona accepts a persona name in any case, with or without spaces.
func parsePersona(v string) (model.Persona, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(v), " ", ""))
	for _, p := range model.AllPersonas() {
		if strings.ToLower(strings.ReplaceAll(string(p), " ", "")) == key {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown persona %q (want one of %v)", v, model.AllPersonas())
}

func printPrefs(w io.Writer, userID string, p model.Preferences) {
	name := p.DisplayName
	if name == "" {
		name = theme.Hint.Render("(not set)")
	}
	mode := "light"
	if p.DarkMode {
		mode = "dark"
	}
	lipgloss.Fprintln(w, fmt.Sprintf("User:     %s", userID))
	lipgloss.Fprintln(w, fmt.Sprintf("Name:     %s", name))
	lipgloss.Fprintln(w, fmt.Sprintf("Coach:    %s", p.AIPersona))
	lipgloss.Fprintln(w, fmt.Sprintf("Theme:    %s", mode))
	lipgloss.Fprintln(w, fmt.Sprintf("Total XP: %d", p.TotalXP))
}

func init() {
	prefsSetCmd.Flags().String("name", "", "Display name")
	prefsSetCmd.Flags().String("persona", "", "Coach persona: Motivational, Drill Sergeant or Analytical")
	prefsSetCmd.Flags().Bool("dark", false, "Use the dark theme")

	prefsCmd.AddCommand(prefsSetCmd)
}
