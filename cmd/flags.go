package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output formats understood by commands that print reports.
var reportFormats = []string{"text", "json", "yaml"}

// addFormatFlag registers the --format flag shared by report commands.
func addFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "format", "f", "text", "Output format ("+strings.Join(reportFormats, "|")+")")
	AddFlagValidation(cmd, "format", ValidateChoice("format", reportFormats...), false)
}

// bindFlags binds flags to viper configuration keys.
func bindFlags(cmd *cobra.Command, bindings map[string]string, persistent bool) {
	set := cmd.Flags()
	if persistent {
		set = cmd.PersistentFlags()
	}

	for flagName, configKey := range bindings {
		if flag := set.Lookup(flagName); flag != nil {
			if err := viper.BindPFlag(configKey, flag); err != nil {
				panic(fmt.Sprintf("binding --%s: %v", flagName, err))
			}
		}
	}
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error, persistent bool) {
	set := cmd.Flags()
	if persistent {
		set = cmd.PersistentFlags()
	}

	flag := set.Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidateChoice returns a validator accepting only the listed values.
func ValidateChoice(what string, allowed ...string) func(string) error {
	return func(val string) error {
		for _, a := range allowed {
			if val == a {
				return nil
			}
		}
		return fmt.Errorf("invalid %s %q, must be one of: %s", what, val, strings.Join(allowed, ", "))
	}
}
