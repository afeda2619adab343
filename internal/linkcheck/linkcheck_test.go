package linkcheck

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/sitegen/internal/logging"
)

func outputTree(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestCheckRootSite(t *testing.T) {
	fs := outputTree(t, map[string]string{
		"dist/index.html": `<a href="/about/">About</a><a href="/docs">Docs</a><img src="/img/a.png" srcset="/img/a.png 1x, /img/missing.png 2x">` +
			`<a href="https://example.com/">ext</a><a href="#top">top</a><a href="/index.html?x=1#y">self</a>`,
		"dist/about/index.html": `<link href="/style.css"><script src="//cdn.example.com/x.js"></script>`,
		"dist/docs.html":        `<p>@include('partials.footer')</p>`,
		"dist/notes.html":       `<p>@json('items.json', my-list)</p>`,
		"dist/img/a.png":        "png",
	})

	report, err := New(fs, "dist", "/", logging.Nop()).Check(context.Background())
	require.NoError(t, err)

	expected := []Finding{
		{File: "dist/about/index.html", Kind: BrokenLink, Target: "/style.css"},
		{File: "dist/docs.html", Kind: LeftoverDirective, Target: "@include('partials.footer')"},
		{File: "dist/index.html", Kind: BrokenLink, Target: "/img/missing.png"},
		{File: "dist/notes.html", Kind: LeftoverDirective, Target: "@json('items.json', my-list)"},
	}
	if diff := cmp.Diff(expected, report.Findings); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, report.Files)
	assert.Equal(t, 7, report.Links)
	assert.False(t, report.OK())
}

func TestCheckBasePath(t *testing.T) {
	fs := outputTree(t, map[string]string{
		"dist/index.html":   `<base href="/repo/"><a href="/repo/posts/1.html">one</a><a href="/repo/">home</a><a href="/posts/1.html">unprefixed</a>`,
		"dist/posts/1.html": `<a href="/repo">home</a>`,
	})

	report, err := New(fs, "dist", "/repo/", logging.Nop()).Check(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Findings, 1)
	assert.Equal(t, Finding{File: "dist/index.html", Kind: OutsideBase, Target: "/posts/1.html"}, report.Findings[0])
}

func TestCheckCleanTree(t *testing.T) {
	fs := outputTree(t, map[string]string{
		"dist/index.html": `<a href="/">home</a>`,
	})

	report, err := New(fs, "dist", "", nil).Check(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.NotNil(t, report.Findings)
}

func TestCheckMissingRoot(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), "dist", "/", nil).Check(context.Background())
	assert.Error(t, err)
}
