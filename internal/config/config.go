// Package config provides configuration management for sitegen using Viper
// for flexible loading from files, environment variables, and command-line
// flags.
//
// The configuration describes the content tree (pages, partials, layouts,
// data, static asset directories), the output directory, the detail-page
// collections, and the deployment base path.
package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/viper"

	"github.com/conneroisu/sitegen/internal/validation"
)

type Config struct {
	Source      string             `mapstructure:"source"`
	Output      string             `mapstructure:"output"`
	Pages       string             `mapstructure:"pages"`
	Partials    string             `mapstructure:"partials"`
	Layouts     string             `mapstructure:"layouts"`
	Data        string             `mapstructure:"data"`
	Static      []string           `mapstructure:"static"`
	BasePath    string             `mapstructure:"base_path"`
	ImageIndex  string             `mapstructure:"image_index"`
	Collections []CollectionConfig `mapstructure:"collections"`
	Clean       bool               `mapstructure:"clean"`
	LogLevel    string             `mapstructure:"log_level"`
	LogFormat   string             `mapstructure:"log_format"`
}

// CollectionConfig pairs one parametrized page template with a JSON list.
type CollectionConfig struct {
	Template string `mapstructure:"template"` // relative to the pages root, e.g. "projects/[id].html"
	Data     string `mapstructure:"data"`     // data name as accepted by @json
	IDField  string `mapstructure:"id_field"`
	Key      string `mapstructure:"key"` // optional: list lives under this key of a top-level object
	Var      string `mapstructure:"var"` // binding for the whole element, default "item"
}

// Defaults
const (
	DefaultSource     = "."
	DefaultOutput     = "dist"
	DefaultPages      = "pages"
	DefaultPartials   = "partials"
	DefaultLayouts    = "layouts"
	DefaultData       = "data"
	DefaultImageIndex = "data/images.json"
	DefaultItemVar    = "item"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle static set via env or flag (workaround for viper slice handling)
	if viper.IsSet("static") && len(config.Static) == 0 {
		config.Static = viper.GetStringSlice("static")
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Source == "" {
		config.Source = DefaultSource
	}
	if config.Output == "" {
		config.Output = DefaultOutput
	}
	if config.Pages == "" {
		config.Pages = DefaultPages
	}
	if config.Partials == "" {
		config.Partials = DefaultPartials
	}
	if config.Layouts == "" {
		config.Layouts = DefaultLayouts
	}
	if config.Data == "" {
		config.Data = DefaultData
	}
	if len(config.Static) == 0 {
		config.Static = []string{"assets"}
	}
	if config.ImageIndex == "" {
		config.ImageIndex = DefaultImageIndex
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	for i := range config.Collections {
		if config.Collections[i].Var == "" {
			config.Collections[i].Var = DefaultItemVar
		}
	}
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	for field, dir := range map[string]string{
		"source": config.Source,
		"output": config.Output,
	} {
		if err := validation.ValidateDir(dir); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}

	// Content roots are resolved beneath the source root.
	for field, dir := range map[string]string{
		"pages":       config.Pages,
		"partials":    config.Partials,
		"layouts":     config.Layouts,
		"data":        config.Data,
		"image_index": config.ImageIndex,
	} {
		if err := validateRelative(dir); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}

	for _, dir := range config.Static {
		if err := validateRelative(dir); err != nil {
			return fmt.Errorf("static: %w", err)
		}
	}

	if err := validation.ValidateBasePath(config.BasePath); err != nil {
		return fmt.Errorf("base_path: %w", err)
	}

	for i, c := range config.Collections {
		if c.Template == "" || c.Data == "" {
			return fmt.Errorf("collections[%d]: template and data are required", i)
		}
		if !strings.Contains(c.Template, "[") {
			return fmt.Errorf("collections[%d]: template %q has no [field] segment", i, c.Template)
		}
		if err := validateRelative(c.Template); err != nil {
			return fmt.Errorf("collections[%d]: %w", i, err)
		}
		if err := validation.ValidateLogicalName(c.Data); err != nil {
			return fmt.Errorf("collections[%d]: %w", i, err)
		}
	}

	return nil
}

func validateRelative(dir string) error {
	if err := validation.ValidateDir(dir); err != nil {
		return err
	}
	if path.IsAbs(dir) {
		return fmt.Errorf("should be relative to the source root: %s", dir)
	}
	return nil
}
