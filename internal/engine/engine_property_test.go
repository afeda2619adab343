//go:build property
// +build property

package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/afero"

	"github.com/conneroisu/sitegen/internal/logging"
	"github.com/conneroisu/sitegen/internal/resolver"
)

// TestPlaceholderProperties checks that unbound placeholders always render
// as the empty string.
func TestPlaceholderProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("unbound placeholders vanish", prop.ForAll(
		func(name, before, after string) bool {
			text := before + "{{ " + name + " }}" + after
			return Substitute(text, NewContext()) == before+after
		},
		gen.RegexMatch(`^[a-z_][a-z0-9_]{0,8}$`),
		gen.RegexMatch(`^[a-z <>/]{0,12}$`),
		gen.RegexMatch(`^[a-z <>/]{0,12}$`),
	))

	properties.Property("loops render one body per element", prop.ForAll(
		func(values []string) bool {
			items := make([]interface{}, len(values))
			for i, v := range values {
				items[i] = v
			}
			c := NewContext()
			c.Set("items", items)

			e := New(resolver.New(afero.NewMemMapFs(), "data", ""), logging.Nop())
			out, err := e.ExpandLoops(context.Background(), "@foreach $items <{{ value }}>@endforeach", c)
			if err != nil {
				return false
			}
			return out == "<"+strings.Join(values, "><")+">" || (len(values) == 0 && out == "")
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("rendering is idempotent", prop.ForAll(
		func(title string) bool {
			e := New(resolver.New(afero.NewMemMapFs(), "data", ""), logging.Nop())
			opts := Options{BasePath: "/site/", Presets: map[string]interface{}{"title": title}}
			page := `<a href="/x">{{ title }}</a>`

			first, err1 := e.RenderString(context.Background(), "p.html", page, opts)
			second, err2 := e.RenderString(context.Background(), "p.html", page, opts)
			return err1 == nil && err2 == nil && first == second
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
