package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/goalpath/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "goalpath",
	Short: "AI-planned goals with daily check-ins",
	Long: "goalpath turns an ambition into a scheduled plan of action steps and tracks " +
		"completion, streaks and progress over time.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToday(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides GOALPATH_DB env var)")
	rootCmd.PersistentFlags().String("user", "", "User id (overrides GOALPATH_USER env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a .env file to load")

	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then GOALPATH_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
