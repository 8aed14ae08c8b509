package cmd

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the goalpath version and build details",
	Run: func(cmd *cobra.Command, args []string) {
		short, _ := cmd.Flags().GetBool("short")
		info, _ := debug.ReadBuildInfo()
		printVersion(cmd.OutOrStdout(), info, short)
	},
}

func printVersion(w io.Writer, info *debug.BuildInfo, short bool) {
	if short {
		fmt.Fprintln(w, version)
		return
	}
	fmt.Fprintln(w, "goalpath", version)
	if info == nil {
		return
	}
	fmt.Fprintf(w, "go:      %s\n", info.GoVersion)
	settings := map[string]string{}
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	if rev := settings["vcs.revision"]; rev != "" {
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if settings["vcs.modified"] == "true" {
			rev += " (modified)"
		}
		fmt.Fprintf(w, "commit:  %s\n", rev)
	}
	if at := settings["vcs.time"]; at != "" {
		fmt.Fprintf(w, "built:   %s\n", at)
	}
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version number")
}
