package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siteerrors "github.com/conneroisu/sitegen/internal/errors"
)

func TestRenderEndToEnd(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"layouts/base.html": "<html>{{ content }}</html>",
		"data/items.json":   `[{"name":"X"},{"name":"Y"}]`,
	})

	page := "@layout('layouts.base')\n@json('items.json', list)\n<ul>@foreach $list <li>{{ name }}</li>@endforeach</ul>"

	out, err := render(t, e, page, Options{})
	require.NoError(t, err)
	assert.Equal(t, "<html><ul><li>X</li><li>Y</li></ul></html>", out)
}

func TestRenderFromFilesystem(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"pages/index.html":     "@include('partials.header')<p>{{ greeting }}</p>",
		"partials/header.html": "<h1>{{ base_path }}</h1>",
	})

	out, err := e.Render(context.Background(), "pages/index.html", Options{
		Presets: map[string]interface{}{"greeting": "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "<h1>/</h1><p>hello</p>", out)

	_, err = e.Render(context.Background(), "pages/missing.html", Options{})
	assert.True(t, siteerrors.IsKind(err, siteerrors.KindIO))
}

func TestRenderIdempotent(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"layouts/main.html":  "<body>@include('partials.nav'){{ content }}<script>@jsonvar $posts</script></body>",
		"partials/nav.html":  `<nav><a href="/">{{ title }}</a></nav>`,
		"data/posts.json":    `[{"title":"One","slug":"one"},{"title":"Two","slug":"two"}]`,
		"data/settings.json": `{"ignored": true}`,
	})

	page := "@layout('layouts.main')\n@json('posts')\n@foreach $posts <a href=\"/posts/{{ slug }}.html\">{{ title }}</a>@endforeach"
	opts := Options{BasePath: "/repo/", Presets: map[string]interface{}{"title": "Blog"}}

	first, err := render(t, e, page, opts)
	require.NoError(t, err)
	second, err := render(t, e, page, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, `<a href="/repo/">Blog</a>`)
	assert.Contains(t, first, `<a href="/repo/posts/one.html">One</a>`)
}

func TestRenderIncludeFixedPoint(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"partials/outer.html": "<div>@include('partials.inner')</div>",
		"partials/inner.html": "<span>{{ who }}</span>",
	})
	opts := Options{Presets: map[string]interface{}{"who": "me"}}

	viaIncludes, err := render(t, e, "<main>@include('partials.outer')</main>", opts)
	require.NoError(t, err)
	oneLevel, err := render(t, e, "<main><div>@include('partials.inner')</div></main>", opts)
	require.NoError(t, err)
	inlined, err := render(t, e, "<main><div><span>{{ who }}</span></div></main>", opts)
	require.NoError(t, err)

	assert.Equal(t, inlined, viaIncludes)
	assert.Equal(t, inlined, oneLevel)
}

func TestRenderLayout(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"layouts/site.html":    "@include('partials.head')<main>{{ content }}</main>@foreach $menu <i>{{ value }}</i>@endforeach",
		"partials/head.html":   "<title>{{ title }}</title>",
		"layouts/noslot.html":  "<html></html>",
		"partials/nested.html": "@layout('layouts.noslot')\n<em>nested</em>",
		"data/menu.json":       `["a","b"]`,
	})

	t.Run("layout shares page context", func(t *testing.T) {
		out, err := render(t, e, "@layout('layouts.site')\n@json('menu')\n<p>{{ title }}</p>", Options{
			Presets: map[string]interface{}{"title": "T"},
		})
		require.NoError(t, err)
		assert.Equal(t, "<title>T</title><main><p>T</p></main><i>a</i><i>b</i>", out)
	})

	t.Run("layout without slot", func(t *testing.T) {
		out, err := render(t, e, "@layout('layouts.noslot')\n<p>lost</p>", Options{})
		require.NoError(t, err)
		assert.Equal(t, "<html></html>", out)
	})

	t.Run("layout in partial is ignored", func(t *testing.T) {
		out, err := render(t, e, "<div>@include('partials.nested')</div>", Options{})
		require.NoError(t, err)
		assert.Equal(t, "<div><em>nested</em></div>", out)
	})

	t.Run("only the first layout counts", func(t *testing.T) {
		out, err := render(t, e, "@layout('layouts.noslot')\n@layout('layouts.site')\nbody", Options{})
		require.NoError(t, err)
		assert.Equal(t, "<html></html>", out)
	})

	t.Run("missing layout", func(t *testing.T) {
		_, err := render(t, e, "@layout('layouts.nope')\nbody", Options{})
		assert.True(t, siteerrors.IsKind(err, siteerrors.KindTemplateNotFound))
	})
}

func TestRenderPlaceholders(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"data/site.json": `{"name":"ignored"}`,
	})

	out, err := render(t, e, "<p>[{{ missing }}][{{ site }}][{{ base_path }}]</p>@json('site')", Options{})
	require.NoError(t, err)
	assert.Equal(t, "<p>[][][/]</p>", out)
}

func TestRenderBasePath(t *testing.T) {
	e := newTestEngine(t, nil)
	opts := Options{
		BasePath: "/repo/",
		Presets:  map[string]interface{}{"base_path": "/hijacked/"},
	}

	out, err := render(t, e,
		`<base href="/repo/" /><img src="/images/a.png"><a href="https://example.com/x">x</a><link href="{{ base_path }}style.css">`,
		opts)
	require.NoError(t, err)
	assert.Equal(t,
		`<base href="/repo/" /><img src="/repo/images/a.png"><a href="https://example.com/x">x</a><link href="/repo/style.css">`,
		out)
}

func TestRenderBasePathBinding(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"data/posts.json": `[{"slug":"one"},{"slug":"two"}]`,
	})

	page := "@json('posts')\n<a href=\"/blog/index.html\">all</a>@foreach $posts <a href=\"{{ base_path }}blog/{{ slug }}.html\">x</a>@endforeach<img srcset=\"{{ base_path }}a.png 2x\">"

	out, err := render(t, e, page, Options{BasePath: "/blog/"})
	require.NoError(t, err)
	assert.Equal(t,
		`<a href="/blog/blog/index.html">all</a><a href="/blog/blog/one.html">x</a><a href="/blog/blog/two.html">x</a><img srcset="/blog/a.png 2x">`,
		out)

	out, err = render(t, e, page, Options{})
	require.NoError(t, err)
	assert.Equal(t,
		`<a href="/blog/index.html">all</a><a href="/blog/one.html">x</a><a href="/blog/two.html">x</a><img srcset="/a.png 2x">`,
		out)
}

func TestRenderErrorsCarryPagePath(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"partials/bad.html": "@jsonvar $nope",
		"layouts/loop.html": "@foreach $nothing x@endforeach{{ content }}",
	})

	testCases := []struct {
		name   string
		source string
		kind   siteerrors.Kind
	}{
		{"loop error", "@foreach $x @endforeach", siteerrors.KindUndefinedLoopVariable},
		{"jsonvar from partial", "@include('partials.bad')", siteerrors.KindUndefinedJSONVar},
		{"layout error", "@layout('layouts.loop')\nbody", siteerrors.KindUndefinedLoopVariable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := render(t, e, tc.source, Options{})
			require.Error(t, err)

			var be *siteerrors.BuildError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tc.kind, be.Kind)
			assert.NotEmpty(t, be.Path)
		})
	}
}

func TestHasDirectives(t *testing.T) {
	assert.False(t, HasDirectives("<p>all rendered</p>"))
	assert.True(t, HasDirectives("<p>@include('x')</p>"))
	assert.True(t, HasDirectives("@foreach $a"))
	assert.True(t, HasDirectives("@jsonvar x"))
	assert.True(t, HasDirectives("<p>@include(partials.header)</p>"))
	assert.True(t, HasDirectives("<p>@json('items.json', my-list)</p>"))
	assert.False(t, HasDirectives("<p>mail me @ json(dot)com</p>"))
}
