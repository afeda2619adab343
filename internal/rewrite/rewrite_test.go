package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"", "/"},
		{"/", "/"},
		{"repo", "/repo/"},
		{"/repo", "/repo/"},
		{"repo/", "/repo/"},
		{"/a/b/", "/a/b/"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestHTML(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "image src",
			input:    `<img src="/images/a.png">`,
			expected: `<img src="/repo/images/a.png">`,
		},
		{
			name:     "link href single quotes",
			input:    `<a href='/about.html'>About</a>`,
			expected: `<a href='/repo/about.html'>About</a>`,
		},
		{
			name:     "external https untouched",
			input:    `<a href="https://example.com/x">x</a>`,
			expected: `<a href="https://example.com/x">x</a>`,
		},
		{
			name:     "protocol relative untouched",
			input:    `<script src="//cdn.example.com/lib.js"></script>`,
			expected: `<script src="//cdn.example.com/lib.js"></script>`,
		},
		{
			name:     "relative untouched",
			input:    `<img src="images/a.png">`,
			expected: `<img src="images/a.png">`,
		},
		{
			name:     "srcset candidates",
			input:    `<img srcset="/a.png 1x, /b.png 2x, https://cdn.example.com/c.png 3x">`,
			expected: `<img srcset="/repo/a.png 1x, /repo/b.png 2x, https://cdn.example.com/c.png 3x">`,
		},
		{
			name:     "inline style url",
			input:    `<div style="background: url(/img/bg.jpg)"></div>`,
			expected: `<div style="background: url(/repo/img/bg.jpg)"></div>`,
		},
		{
			name:     "base tag protected",
			input:    `<head><base href="/repo/" /><link href="/style.css"></head>`,
			expected: `<head><base href="/repo/" /><link href="/repo/style.css"></head>`,
		},
		{
			name:     "section named like the base",
			input:    `<a href="/repo/docs/">docs</a>`,
			expected: `<a href="/repo/repo/docs/">docs</a>`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, HTML(tc.input, "/repo/"))
		})
	}
}

func TestHTMLRootBaseIsIdentity(t *testing.T) {
	input := `<img src="/images/a.png"><base href="/">`
	assert.Equal(t, input, HTML(input, "/"))
	assert.Equal(t, input, HTML(input, ""))
}

func TestHTMLSectionSharingBaseName(t *testing.T) {
	input := `<a href="/blog/post.html">Post</a><a href='/blog/1.html'>Prev</a><img srcset="/blog/a.png 2x">`
	assert.Equal(t,
		`<a href="/blog/blog/post.html">Post</a><a href='/blog/blog/1.html'>Prev</a><img srcset="/blog/blog/a.png 2x">`,
		HTML(input, "/blog/"))
}

func TestHTMLProtectsOnlyBaseTags(t *testing.T) {
	input := `<base href="/repo/"><base href="/other/"><a href="https://example.com/x">x</a>`
	once := HTML(input, "/repo/")
	assert.Equal(t, `<base href="/repo/"><base href="/repo/other/"><a href="https://example.com/x">x</a>`, once)
	assert.Equal(t, `<base href="/repo/">`, HTML(`<base href="/repo/">`, "/repo/"))
}

func TestCSS(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare", `body{background:url(/img/a.png)}`, `body{background:url(/repo/img/a.png)}`},
		{"double quoted", `src: url("/fonts/x.woff2")`, `src: url("/repo/fonts/x.woff2")`},
		{"single quoted", `url( '/x.svg' )`, `url('/repo/x.svg')`},
		{"external", `url(https://example.com/a.png)`, `url(https://example.com/a.png)`},
		{"protocol relative", `url(//cdn.example.com/a.png)`, `url(//cdn.example.com/a.png)`},
		{"data uri", `url(data:image/png;base64,AAAA)`, `url(data:image/png;base64,AAAA)`},
		{"relative", `url(../img/a.png)`, `url(../img/a.png)`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CSS(tc.input, "/repo/"))
		})
	}
}

func TestURL(t *testing.T) {
	assert.Equal(t, "/repo/x", URL("/x", "/repo/"))
	assert.Equal(t, "/repo/", URL("/", "/repo/"))
	assert.Equal(t, "/repo/repo", URL("/repo", "/repo/"))
	assert.Equal(t, "/blog/blog/post.html", URL("/blog/post.html", "/blog/"))
	assert.Equal(t, "mailto:a@b.c", URL("mailto:a@b.c", "/repo/"))
	assert.Equal(t, "#top", URL("#top", "/repo/"))
}
