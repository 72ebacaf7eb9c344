package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd shows the build provenance for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of overtime.",
	Long: `Display the release version, git commit and build timestamp of this
binary, plus the Go runtime it was compiled with. Include this output
when reporting bugs so results can be matched to a release.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("overtime %s (commit %s, built %s, %s)\n",
			version, commit, date, runtime.Version())
	},
}
