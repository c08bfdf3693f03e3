package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/changekit/changekit/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "changekit %s\n", build.Version)
		fmt.Fprintf(out, "  commit:     %s\n", build.Commit)
		fmt.Fprintf(out, "  built:      %s\n", build.BuildDate)
		fmt.Fprintf(out, "  go version: %s\n", runtime.Version())
		fmt.Fprintf(out, "  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
