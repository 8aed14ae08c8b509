package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/goalpath/internal/app"
)

var boardCmd = &cobra.Command{
	Use:     "board",
	Aliases: []string{"tui"},
	Short:   "Interactive check-in board",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		return app.Run(e.svc)
	},
}
