package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the swapbot CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "swapbot version %s\n", version)
		if c := buildCommit(); c != "" {
			fmt.Fprintf(w, "commit %s\n", c)
		}
		fmt.Fprintln(w, "https://github.com/rustyeddy/swapbot")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildCommit is the VCS revision stamped into the binary, if any.
func buildCommit() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
