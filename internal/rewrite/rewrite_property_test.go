//go:build property
// +build property

package rewrite

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRewriteProperties checks the URL classes the rewriter must leave alone
// and the ones it must prefix.
func TestRewriteProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("external urls are untouched", prop.ForAll(
		func(scheme, host, p string) bool {
			html := `<a href="` + scheme + host + "/" + p + `"><img src="//` + host + `/x.png"></a>`
			return HTML(html, "/repo/") == html
		},
		gen.OneConstOf("http://", "https://"),
		gen.RegexMatch(`^[a-z]{1,8}\.com$`),
		gen.RegexMatch(`^[a-z/]{0,12}$`),
	))

	properties.Property("every root relative url gains the prefix", prop.ForAll(
		func(p string) bool {
			html := `<img src="/` + p + `">`
			return HTML(html, "/site/") == `<img src="/site/`+p+`">`
		},
		gen.RegexMatch(`^[a-z][a-z/]{0,12}$`),
	))

	properties.Property("matching base tags are stable", prop.ForAll(
		func(base string) bool {
			html := `<base href="/` + base + `/">`
			return HTML(html, base) == html
		},
		gen.RegexMatch(`^[a-z]{1,8}$`),
	))

	properties.TestingRun(t)
}
