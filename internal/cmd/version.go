package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fixgen version %s\n", Version)
		fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", Commit)
		fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", Date)
		fmt.Fprintf(cmd.OutOrStdout(), "go version: %s\n", runtime.Version())
		fmt.Fprintf(cmd.OutOrStdout(), "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
