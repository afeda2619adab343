package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/sitegen/internal/config"
	siteerrors "github.com/conneroisu/sitegen/internal/errors"
	"github.com/conneroisu/sitegen/internal/logging"
)

var (
	cfgFile string

	// configErr holds a failure to read an explicitly requested config file.
	configErr error
)

// rootBindings maps persistent flags to configuration keys.
var rootBindings = map[string]string{
	"log-level":  "log_level",
	"log-format": "log_format",
	"source":     "source",
	"output":     "output",
	"base-path":  "base_path",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sitegen",
	Short: "A directive-based static site generator",
	Long: `sitegen renders a tree of HTML page templates into a static site.

Templates use a small directive language:
  @include('partials.header')    Splice in another template
  @layout('layouts.main')        Wrap the page in a layout
  {{ content }}                  Where a layout receives the page body
  @json('data.items', items)     Bind a JSON data file to a variable
  @foreach $items ... @endforeach
                                 Repeat a block for every element
  @jsonvar $items                Emit a variable as JSON
  {{ name }}                     Substitute a value

Quick Start:
  sitegen build                  Render the site into dist/
  sitegen watch                  Rebuild whenever a source file changes
  sitegen check                  Verify links in the rendered output
  sitegen version                Show build information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// reportError prints a single diagnostic line. Build failures keep their
// taxonomy prefix so scripts can match on the kind.
func reportError(w io.Writer, err error) {
	var be *siteerrors.BuildError
	if errors.As(err, &be) {
		fmt.Fprintln(w, siteerrors.Diagnostic(err))
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .sitegen.yml, can also use SITEGEN_CONFIG_FILE env var)")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.StringP("source", "s", config.DefaultSource, "content root directory")
	flags.StringP("output", "o", config.DefaultOutput, "output directory")
	flags.String("base-path", "", "deployment base path (default: detected from the environment)")

	bindFlags(rootCmd, rootBindings, true)

	AddFlagValidation(rootCmd, "log-format", ValidateChoice("log format", "text", "json"), true)
	AddFlagValidation(rootCmd, "log-level", func(v string) error {
		_, err := logging.ParseLevel(v)
		return err
	}, true)
}

// initConfig initializes the configuration system.
//
// Configuration file priority (highest to lowest):
//  1. --config flag
//  2. SITEGEN_CONFIG_FILE environment variable
//  3. .sitegen.yml in the current directory
//
// A .env file is loaded first so it can supply SITEGEN_* variables. Variables
// already present in the environment are never overwritten.
func initConfig() {
	configErr = nil

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		configErr = fmt.Errorf("loading .env: %w", err)
		return
	}

	explicit := true
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SITEGEN_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		explicit = false
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sitegen")
	}

	viper.SetEnvPrefix("SITEGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("reading config: %w", err)
		}
	}
}

// site is everything a command needs to operate on one content tree.
type site struct {
	cfg      *config.Config
	src      afero.Fs
	output   string
	basePath string
	logger   logging.Logger
}

// loadSite loads the configuration and prepares the content filesystem,
// rooted at the absolute source directory.
func loadSite(cmd *cobra.Command) (*site, error) {
	if configErr != nil {
		return nil, siteerrors.Wrap(configErr, siteerrors.KindConfig, "invalid configuration")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, siteerrors.Wrap(err, siteerrors.KindConfig, "invalid configuration")
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, siteerrors.Wrap(err, siteerrors.KindConfig, "invalid configuration")
	}

	root, err := filepath.Abs(cfg.Source)
	if err != nil {
		return nil, siteerrors.WrapIO(err, cfg.Source, "resolving source directory")
	}
	output, err := filepath.Abs(cfg.Output)
	if err != nil {
		return nil, siteerrors.WrapIO(err, cfg.Output, "resolving output directory")
	}

	src := afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), root))

	basePath, err := config.ResolveBasePath(src, cfg, os.Getenv)
	if err != nil {
		return nil, siteerrors.Wrap(err, siteerrors.KindConfig, "invalid base path")
	}

	logger.Debug(cmd.Context(), "Configuration loaded",
		"source", root,
		"output", output,
		"base_path", basePath,
		"config_file", viper.ConfigFileUsed(),
	)

	return &site{
		cfg:      cfg,
		src:      src,
		output:   output,
		basePath: basePath,
		logger:   logger,
	}, nil
}

func newLogger(cfg *config.Config, w io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.LogFormat,
		Output: w,
	}), nil
}
