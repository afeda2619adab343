// Package rewrite prefixes root-relative URLs in rendered HTML and CSS with
// a deployment base path.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	attrPattern   = regexp.MustCompile(`\b(href|src)=(?:"(/[^"]*)"|'(/[^']*)')`)
	srcsetPattern = regexp.MustCompile(`\bsrcset=(?:"([^"]*)"|'([^']*)')`)
	cssURLPattern = regexp.MustCompile(`url\(\s*(?:"(/[^"]*)"|'(/[^']*)'|(/[^)'"\s]*))\s*\)`)
	basePattern   = regexp.MustCompile(`<base\s[^>]*\bhref=(?:"([^"]*)"|'([^']*)')[^>]*>`)
)

const baseSentinel = "\x00sitegen-base-%d\x00"

// Normalize returns base with exactly one leading and one trailing slash.
// The empty string maps to "/".
func Normalize(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return "/"
	}
	return "/" + base + "/"
}

// URL prefixes a single root-relative URL, including one that happens to
// start with base. External, protocol-relative and relative URLs are
// returned unchanged.
func URL(u, base string) string {
	base = Normalize(base)
	if base == "/" || !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") {
		return u
	}
	return base + strings.TrimPrefix(u, "/")
}

// HTML rewrites href, src, srcset and inline url() references in html.
// A <base> tag that already points at the base path is left as is.
func HTML(html, base string) string {
	base = Normalize(base)
	if base == "/" {
		return html
	}

	var protected []string
	html = basePattern.ReplaceAllStringFunc(html, func(tag string) string {
		groups := basePattern.FindStringSubmatch(tag)
		href := groups[1] + groups[2]
		if Normalize(href) != base || !strings.HasPrefix(href, "/") {
			return tag
		}
		protected = append(protected, tag)
		return sentinel(len(protected) - 1)
	})

	html = attrPattern.ReplaceAllStringFunc(html, func(m string) string {
		groups := attrPattern.FindStringSubmatch(m)
		if groups[2] != "" {
			return groups[1] + `="` + URL(groups[2], base) + `"`
		}
		return groups[1] + `='` + URL(groups[3], base) + `'`
	})

	html = srcsetPattern.ReplaceAllStringFunc(html, func(m string) string {
		groups := srcsetPattern.FindStringSubmatch(m)
		if strings.HasPrefix(m, `srcset="`) {
			return `srcset="` + Srcset(groups[1], base) + `"`
		}
		return `srcset='` + Srcset(groups[2], base) + `'`
	})

	html = CSS(html, base)

	for i, tag := range protected {
		html = strings.Replace(html, sentinel(i), tag, 1)
	}
	return html
}

// Srcset rewrites each comma-separated candidate of a srcset value.
func Srcset(value, base string) string {
	candidates := strings.Split(value, ",")
	for i, c := range candidates {
		trimmed := strings.TrimLeft(c, " \t\r\n")
		lead := c[:len(c)-len(trimmed)]

		u, descriptor := trimmed, ""
		if j := strings.IndexAny(trimmed, " \t\r\n"); j >= 0 {
			u, descriptor = trimmed[:j], trimmed[j:]
		}
		candidates[i] = lead + URL(u, base) + descriptor
	}
	return strings.Join(candidates, ",")
}

// CSS rewrites url() references in a stylesheet or inline style.
func CSS(css, base string) string {
	base = Normalize(base)
	if base == "/" {
		return css
	}

	return cssURLPattern.ReplaceAllStringFunc(css, func(m string) string {
		groups := cssURLPattern.FindStringSubmatch(m)
		switch {
		case groups[1] != "":
			return `url("` + URL(groups[1], base) + `")`
		case groups[2] != "":
			return `url('` + URL(groups[2], base) + `')`
		default:
			return `url(` + URL(groups[3], base) + `)`
		}
	})
}

func sentinel(i int) string {
	return fmt.Sprintf(baseSentinel, i)
}
