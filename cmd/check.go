package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/conneroisu/sitegen/internal/linkcheck"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify links and leftover directives in the built output",
	Long: `Parse every HTML file in the output directory and report:

- root-relative links and image sources whose target was not generated
- root-relative links that bypass the deployment base path
- directive syntax that survived into the rendered text

The command exits non-zero when anything is found.

Examples:
  sitegen build && sitegen check
  sitegen check --base-path /docs/ --format json`,
	RunE: runCheck,
}

var checkFormat string

func init() {
	rootCmd.AddCommand(checkCmd)

	addFormatFlag(checkCmd, &checkFormat)
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := loadSite(cmd)
	if err != nil {
		return err
	}

	checker := linkcheck.New(afero.NewOsFs(), s.output, s.basePath, s.logger)
	report, err := checker.Check(cmd.Context())
	if err != nil {
		return err
	}

	err = writeReport(cmd.OutOrStdout(), checkFormat, report, func(w io.Writer) error {
		for _, f := range report.Findings {
			if _, err := fmt.Fprintf(w, "%s: %s %s\n", f.File, f.Kind, f.Target); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "Checked %d files, %d links, %d problems\n", report.Files, report.Links, len(report.Findings))
		return err
	})
	if err != nil {
		return err
	}

	if !report.OK() {
		return fmt.Errorf("%d problems found in %s", len(report.Findings), s.output)
	}
	return nil
}
