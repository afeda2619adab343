// Package engine renders one page through the directive pipeline:
// includes, layout selection, data binding, loops, inline JSON, layout
// injection, placeholders and base path rewriting.
package engine

import (
	"context"
	"strings"

	"github.com/spf13/afero"

	siteerrors "github.com/conneroisu/sitegen/internal/errors"
	"github.com/conneroisu/sitegen/internal/logging"
	"github.com/conneroisu/sitegen/internal/resolver"
	"github.com/conneroisu/sitegen/internal/rewrite"
)

// BasePathVar is the context binding that always holds the effective
// base path.
const BasePathVar = "base_path"

// basePathMarker stands in for the base path while the page is rendered.
// URLs spelled with {{ base_path }} are already prefixed, so the rewriter
// must not see them as root-relative.
const basePathMarker = "\uE000base_path\uE000"

// Engine renders pages. It holds no per-page state and is safe for
// concurrent use.
type Engine struct {
	resolver *resolver.Resolver
	logger   logging.Logger
}

// Options configure a single render.
type Options struct {
	// BasePath is the URL prefix of the deployed site. Empty means "/".
	BasePath string

	// Presets are bound before any @json directive runs, so data files may
	// overwrite them.
	Presets map[string]interface{}
}

// New creates an engine reading templates through r.
func New(r *resolver.Resolver, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Engine{
		resolver: r,
		logger:   logger.WithComponent("engine"),
	}
}

// Resolver returns the resolver the engine reads through.
func (e *Engine) Resolver() *resolver.Resolver {
	return e.resolver
}

// Render reads the page at pagePath (relative to the source root) and
// renders it.
func (e *Engine) Render(ctx context.Context, pagePath string, opts Options) (string, error) {
	raw, err := afero.ReadFile(e.resolver.Fs(), pagePath)
	if err != nil {
		return "", siteerrors.WrapIO(err, pagePath, "reading page")
	}
	return e.RenderString(ctx, pagePath, string(raw), opts)
}

// RenderString renders source as the page named name. name is used only in
// diagnostics.
func (e *Engine) RenderString(ctx context.Context, name, source string, opts Options) (string, error) {
	out, err := e.render(ctx, source, opts)
	if err != nil {
		return "", siteerrors.AtPath(err, name)
	}
	return out, nil
}

func (e *Engine) render(ctx context.Context, source string, opts Options) (string, error) {
	base := opts.BasePath
	if base == "" {
		base = "/"
	}

	layoutName, body, hasLayout := ExtractLayout(source)

	body, err := e.ExpandIncludes(ctx, body)
	if err != nil {
		return "", err
	}
	body = e.stripLayouts(ctx, body)
	if err := checkDirectives(body); err != nil {
		return "", err
	}

	binding := base
	if base != "/" {
		binding = basePathMarker
	}

	c := NewContext()
	c.Merge(opts.Presets)
	c.Set(BasePathVar, binding)

	if body, err = e.bindAndExpand(ctx, body, c); err != nil {
		return "", err
	}

	if hasLayout {
		if body, err = e.applyLayout(ctx, layoutName, body, c); err != nil {
			return "", err
		}
	}

	// Presets and data may not rebind the base path.
	c.Set(BasePathVar, binding)
	out := Substitute(body, c)

	if base != "/" {
		out = rewrite.HTML(out, base)
		out = strings.ReplaceAll(out, basePathMarker, base)
	}

	return out, nil
}

// bindAndExpand runs the data, loop and inline JSON passes over text.
func (e *Engine) bindAndExpand(ctx context.Context, text string, c Context) (string, error) {
	text, err := e.ApplyJSON(ctx, text, c)
	if err != nil {
		return "", err
	}

	text, err = e.ExpandLoops(ctx, text, c)
	if err != nil {
		return "", err
	}

	return ApplyJSONVars(text, c)
}

func (e *Engine) applyLayout(ctx context.Context, name, body string, c Context) (string, error) {
	resolved, layout, err := e.resolver.Read(name)
	if err != nil {
		return "", err
	}

	layout, err = e.ExpandIncludes(ctx, layout)
	if err != nil {
		return "", siteerrors.AtPath(err, resolved)
	}
	layout = e.stripLayouts(ctx, layout)
	if err := checkDirectives(layout); err != nil {
		return "", siteerrors.AtPath(err, resolved)
	}

	layout, err = e.bindAndExpand(ctx, layout, c)
	if err != nil {
		return "", siteerrors.AtPath(err, resolved)
	}

	out, ok := InjectContent(layout, body)
	if !ok {
		e.logger.Warn(ctx, nil, "Layout has no content slot; page body dropped",
			"layout", resolved, "slot", contentSlot)
		return out, nil
	}

	e.logger.Debug(ctx, "Layout applied", "layout", resolved)
	return out, nil
}

// HasDirectives reports whether text still carries directive syntax,
// including directives too malformed to render.
func HasDirectives(text string) bool {
	return directiveTokenPattern.MatchString(text) ||
		loopTokenPattern.MatchString(text)
}
