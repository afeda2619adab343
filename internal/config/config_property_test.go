//go:build property
// +build property

package config

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestBasePathProperties tests base path normalization properties
func TestBasePathProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: normalized base paths always start and end with a slash
	properties.Property("normalized form is slash delimited", prop.ForAll(
		func(segments []string) bool {
			raw := strings.Join(segments, "/")
			got, err := normalizeBasePath(raw)
			if err != nil {
				return false
			}
			return strings.HasPrefix(got, "/") && strings.HasSuffix(got, "/") && !strings.Contains(got, "//")
		},
		gen.SliceOfN(3, gen.RegexMatch(`^[a-z0-9_-]{0,8}$`)),
	))

	// Property: normalization is idempotent
	properties.Property("normalization is idempotent", prop.ForAll(
		func(name string) bool {
			once, err := normalizeBasePath(name)
			if err != nil {
				return false
			}
			twice, err := normalizeBasePath(once)
			return err == nil && once == twice
		},
		gen.RegexMatch(`^/?[a-z0-9-]{1,12}/?$`),
	))

	properties.TestingRun(t)
}
