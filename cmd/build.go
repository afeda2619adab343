package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/sitegen/internal/build"
	"github.com/conneroisu/sitegen/internal/jsondata"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Render every page into the output directory",
	Long: `Render every page template, expand detail-page collections, copy static
assets, mirror data files, and write the image index.

On success the generated output paths are printed, one per line. The first
template error stops the build and is reported as a single diagnostic line.

Examples:
  sitegen build                       # Build into dist/
  sitegen build --clean               # Remove the output directory first
  sitegen build --base-path /docs/    # Build for a sub-path deployment
  sitegen build --dry-run -f json     # Render in memory and print the manifest`,
	RunE: runBuild,
}

var buildBindings = map[string]string{"clean": "clean"}

var (
	buildFormat string
	buildDryRun bool
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().Bool("clean", false, "Remove the output directory before building")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Render in memory without writing the output directory")
	addFormatFlag(buildCmd, &buildFormat)

	bindFlags(buildCmd, buildBindings, false)
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := loadSite(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := buildSite(ctx, s, buildDryRun)
	if err != nil {
		return err
	}

	return writeReport(cmd.OutOrStdout(), buildFormat, result, func(w io.Writer) error {
		for _, p := range result.Paths() {
			if _, err := fmt.Fprintln(w, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// buildSite runs one build of s. A dry run publishes into memory.
func buildSite(ctx context.Context, s *site, dryRun bool) (*build.Result, error) {
	var publisher build.Publisher = build.NewAtomicPublisher(s.output)
	if dryRun {
		publisher = build.NewFsPublisher(afero.NewMemMapFs(), s.output)
	}

	builder := build.New(s.cfg, s.src, publisher, s.logger)
	return builder.Build(ctx, build.Options{
		BasePath: s.basePath,
		Clean:    s.cfg.Clean,
	})
}

// writeReport prints v in the requested format. Text output is delegated to text.
func writeReport(w io.Writer, format string, v interface{}, text func(io.Writer) error) error {
	switch format {
	case "json":
		return jsondata.Encode(w, v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case "text", "":
		return text(w)
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", format)
	}
}
