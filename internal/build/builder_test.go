package build

import (
	"context"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/sitegen/internal/config"
	siteerrors "github.com/conneroisu/sitegen/internal/errors"
	"github.com/conneroisu/sitegen/internal/logging"
)

type testSite struct {
	src     afero.Fs
	out     afero.Fs
	cfg     *config.Config
	builder *Builder
}

func newTestSite(t *testing.T, files map[string]string) *testSite {
	t.Helper()

	src := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(src, name, []byte(content), 0o644))
	}

	cfg := config.Default()
	out := afero.NewMemMapFs()

	return &testSite{
		src:     src,
		out:     out,
		cfg:     cfg,
		builder: New(cfg, src, NewFsPublisher(out, cfg.Output), logging.Nop()),
	}
}

func (s *testSite) read(t *testing.T, name string) string {
	t.Helper()
	data, err := afero.ReadFile(s.out, name)
	require.NoError(t, err, name)
	return string(data)
}

func sampleSite() map[string]string {
	return map[string]string{
		"pages/index.html":               "@layout('layouts.base')\n<h1>{{ base_path }}</h1><img src=\"/assets/img/logo.png\">",
		"pages/about/team.html":          "<p>team</p>",
		"pages/projects/[id].html":       `<h1>{{ title }}</h1><a href="{{ prev_href }}">prev</a><a href="{{ next_href }}">next</a>`,
		"layouts/base.html":              "<html>{{ content }}</html>",
		"data/projects.json":             `[{"id":1,"title":"One"},{"id":2,"title":"Two"},{"id":3,"title":"Three"}]`,
		"assets/css/site.css":            "body{background:url(/assets/img/bg.png)}",
		"assets/img/logo.png":            "PNG",
		"assets/img/team_photo-2024.JPG": "JPEGDATA",
		"assets/js/app.js":               "console.log(1)",
	}
}

func TestBuildManifest(t *testing.T) {
	site := newTestSite(t, sampleSite())

	result, err := site.builder.Build(context.Background(), Options{})
	require.NoError(t, err)

	expected := []string{
		"dist/about/team.html",
		"dist/index.html",
		"dist/projects/1.html",
		"dist/projects/2.html",
		"dist/projects/3.html",
		"dist/assets/css/site.css",
		"dist/assets/img/logo.png",
		"dist/assets/img/team_photo-2024.JPG",
		"dist/assets/js/app.js",
		"dist/data/projects.json",
		"dist/data/images.json",
	}
	if diff := cmp.Diff(expected, result.Paths()); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "/", result.BasePath)
	assert.Equal(t, 2, result.Count(KindPage))
	assert.Equal(t, 3, result.Count(KindDetail))
	for _, e := range result.Manifest {
		assert.Equal(t, int64(len(site.read(t, e.Path))), e.Size, e.Path)
	}

	assert.Equal(t, "<html><h1>/</h1><img src=\"/assets/img/logo.png\"></html>", site.read(t, "dist/index.html"))
	assert.Equal(t, "body{background:url(/assets/img/bg.png)}", site.read(t, "dist/assets/css/site.css"))
	assert.Equal(t, sampleSite()["data/projects.json"], site.read(t, "dist/data/projects.json"))
}

func TestBuildDetailPageNavigation(t *testing.T) {
	site := newTestSite(t, sampleSite())

	_, err := site.builder.Build(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t,
		`<h1>One</h1><a href="">prev</a><a href="/projects/2.html">next</a>`,
		site.read(t, "dist/projects/1.html"))
	assert.Equal(t,
		`<h1>Two</h1><a href="/projects/1.html">prev</a><a href="/projects/3.html">next</a>`,
		site.read(t, "dist/projects/2.html"))
	assert.Equal(t,
		`<h1>Three</h1><a href="/projects/2.html">prev</a><a href="">next</a>`,
		site.read(t, "dist/projects/3.html"))
}

func TestBuildWithBasePath(t *testing.T) {
	site := newTestSite(t, sampleSite())

	result, err := site.builder.Build(context.Background(), Options{BasePath: "/repo/"})
	require.NoError(t, err)
	assert.Equal(t, "/repo/", result.BasePath)

	assert.Equal(t,
		"<html><h1>/repo/</h1><img src=\"/repo/assets/img/logo.png\"></html>",
		site.read(t, "dist/index.html"))
	assert.Equal(t,
		`<h1>Two</h1><a href="/repo/projects/1.html">prev</a><a href="/repo/projects/3.html">next</a>`,
		site.read(t, "dist/projects/2.html"))
	assert.Equal(t, "body{background:url(/repo/assets/img/bg.png)}", site.read(t, "dist/assets/css/site.css"))
	assert.Equal(t, "console.log(1)", site.read(t, "dist/assets/js/app.js"))
}

func TestBuildWithBasePathNamedLikeSection(t *testing.T) {
	site := newTestSite(t, sampleSite())

	_, err := site.builder.Build(context.Background(), Options{BasePath: "/projects/"})
	require.NoError(t, err)

	assert.Equal(t,
		`<h1>Two</h1><a href="/projects/projects/1.html">prev</a><a href="/projects/projects/3.html">next</a>`,
		site.read(t, "dist/projects/2.html"))
	assert.Equal(t,
		"<html><h1>/projects/</h1><img src=\"/projects/assets/img/logo.png\"></html>",
		site.read(t, "dist/index.html"))
}

func TestBuildImageIndex(t *testing.T) {
	site := newTestSite(t, sampleSite())

	_, err := site.builder.Build(context.Background(), Options{})
	require.NoError(t, err)

	var images []ImageEntry
	require.NoError(t, gojson.Unmarshal([]byte(site.read(t, "dist/data/images.json")), &images))

	expected := []ImageEntry{
		{Path: "/assets/img/logo.png", Name: "logo.png", Title: "Logo", Size: 3, Extension: ".png"},
		{Path: "/assets/img/team_photo-2024.JPG", Name: "team_photo-2024.JPG", Title: "Team Photo 2024", Size: 8, Extension: ".jpg"},
	}
	if diff := cmp.Diff(expected, images); diff != "" {
		t.Errorf("image index mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEmptyImageIndex(t *testing.T) {
	site := newTestSite(t, map[string]string{"pages/index.html": "hi"})

	_, err := site.builder.Build(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", site.read(t, "dist/data/images.json"))
}

func TestBuildFailsFast(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"pages/a.html": "a",
		"pages/b.html": "@foreach $nope x@endforeach",
		"pages/c.html": "c",
	})

	result, err := site.builder.Build(context.Background(), Options{})
	require.Error(t, err)
	assert.True(t, siteerrors.IsKind(err, siteerrors.KindUndefinedLoopVariable))
	assert.Contains(t, err.Error(), "pages/b.html")

	assert.Equal(t, []string{"dist/a.html"}, result.Paths())
	exists, _ := afero.Exists(site.out, "dist/c.html")
	assert.False(t, exists)
}

func TestBuildOverwritesStaleOutput(t *testing.T) {
	site := newTestSite(t, map[string]string{"pages/index.html": "short"})
	require.NoError(t, afero.WriteFile(site.out, "dist/index.html", []byte("a much longer previous build output"), 0o644))

	_, err := site.builder.Build(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "short", site.read(t, "dist/index.html"))
}

func TestBuildClean(t *testing.T) {
	site := newTestSite(t, map[string]string{"pages/index.html": "x"})
	require.NoError(t, afero.WriteFile(site.out, "dist/old.html", []byte("old"), 0o644))

	_, err := site.builder.Build(context.Background(), Options{})
	require.NoError(t, err)
	exists, _ := afero.Exists(site.out, "dist/old.html")
	assert.True(t, exists, "stale files survive without clean")

	_, err = site.builder.Build(context.Background(), Options{Clean: true})
	require.NoError(t, err)
	exists, _ = afero.Exists(site.out, "dist/old.html")
	assert.False(t, exists)
}

func TestBuildMissingPagesRoot(t *testing.T) {
	site := newTestSite(t, map[string]string{"partials/x.html": "x"})

	_, err := site.builder.Build(context.Background(), Options{})
	assert.True(t, siteerrors.IsKind(err, siteerrors.KindConfig))
}

func TestBuildCopiesDomainMarker(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"pages/index.html": "x",
		"CNAME":            "example.com\n",
	})

	_, err := site.builder.Build(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "example.com\n", site.read(t, "dist/CNAME"))
}

func TestBuildCancelled(t *testing.T) {
	site := newTestSite(t, sampleSite())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := site.builder.Build(ctx, Options{})
	require.Error(t, err)
	assert.Empty(t, result.Manifest)
}
