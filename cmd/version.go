package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/sitegen/internal/version"
)

var (
	versionFormat   string
	versionShort    bool
	versionDetailed bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for sitegen: the version, the commit it was
built from, the build time, the Go version, and the target platform.

Examples:
  sitegen version              # Show version and platform
  sitegen version --short      # Show the version only
  sitegen version --detailed   # Show every build field
  sitegen version -f json      # Output as JSON`,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	addFormatFlag(versionCmd, &versionFormat)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "Show detailed version information")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	info := version.Get()

	return writeReport(cmd.OutOrStdout(), versionFormat, info, func(w io.Writer) error {
		switch {
		case versionShort:
			_, err := fmt.Fprintln(w, info.Short())
			return err
		case versionDetailed:
			kind := "development"
			if info.IsRelease() {
				kind = "release"
			}
			_, err := fmt.Fprintf(w, "%s\nBuild type: %s\n", info.Detailed(), kind)
			return err
		default:
			_, err := fmt.Fprintf(w, "sitegen %s\nGo: %s\nPlatform: %s\n", info.Short(), info.GoVersion, info.Platform)
			return err
		}
	})
}
