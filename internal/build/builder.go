// Package build walks a content tree and writes the rendered site.
//
// A build renders every page under the pages root, expands detail-page
// collections, copies static assets (rewriting stylesheet URLs), mirrors the
// JSON data files and writes an index of the image assets it saw. The first
// failure aborts the run.
package build

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/conneroisu/sitegen/internal/config"
	"github.com/conneroisu/sitegen/internal/engine"
	siteerrors "github.com/conneroisu/sitegen/internal/errors"
	"github.com/conneroisu/sitegen/internal/logging"
	"github.com/conneroisu/sitegen/internal/resolver"
)

// Builder runs site builds. A Builder may be reused for several runs, but
// runs must not overlap.
type Builder struct {
	cfg       *config.Config
	src       afero.Fs
	engine    *engine.Engine
	publisher Publisher
	logger    logging.Logger
}

// Options configure one build run.
type Options struct {
	// BasePath is the resolved deployment base path, "/" for a root site.
	BasePath string
	// Clean removes the output root before anything is written.
	Clean bool
}

// New creates a builder reading the content tree from src, whose root is
// the source directory.
func New(cfg *config.Config, src afero.Fs, publisher Publisher, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Nop()
	}

	r := resolver.New(src, cfg.Data, "", cfg.Partials, cfg.Layouts)

	return &Builder{
		cfg:       cfg,
		src:       src,
		engine:    engine.New(r, logger),
		publisher: publisher,
		logger:    logger.WithComponent("builder"),
	}
}

// run holds the state of one build.
type run struct {
	*Builder
	opts   Options
	result *Result
	images []ImageEntry
}

// Build renders the whole site. On failure the returned result holds the
// outputs written before the first error.
func (b *Builder) Build(ctx context.Context, opts Options) (*Result, error) {
	if opts.BasePath == "" {
		opts.BasePath = "/"
	}

	op := logging.StartOperation(b.logger, "build")
	start := time.Now()

	r := &run{
		Builder: b,
		opts:    opts,
		result:  &Result{BasePath: opts.BasePath},
		images:  make([]ImageEntry, 0),
	}

	err := r.execute(ctx)
	r.result.Duration = time.Since(start)
	if err != nil {
		op.EndWithError(ctx, err)
		return r.result, err
	}

	op.End(ctx, "outputs", len(r.result.Manifest), "base_path", opts.BasePath)
	return r.result, nil
}

func (r *run) execute(ctx context.Context) error {
	if r.opts.Clean {
		r.logger.Info(ctx, "Cleaning output directory", "dir", r.publisher.Root())
		if err := r.publisher.Clean(); err != nil {
			return err
		}
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"pages", r.buildPages},
		{"collections", r.buildCollections},
		{"static", r.copyStatic},
		{"data", r.mirrorData},
		{"images", r.writeImageIndex},
		{"domain", r.copyDomainMarker},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return siteerrors.Wrap(err, siteerrors.KindInternal, "build cancelled")
		}
		if err := step.fn(ctx); err != nil {
			return err
		}
	}

	return nil
}

// buildPages renders every plain page template under the pages root.
func (r *run) buildPages(ctx context.Context) error {
	pages, err := r.walk(r.cfg.Pages, func(p string) bool {
		return strings.HasSuffix(p, ".html") && !isParametrized(p)
	})
	if err != nil {
		return err
	}
	if pages == nil {
		return siteerrors.Newf(siteerrors.KindConfig, "pages directory %q does not exist", r.cfg.Pages)
	}

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		html, err := r.engine.Render(ctx, p, engine.Options{BasePath: r.opts.BasePath})
		if err != nil {
			r.logger.Error(ctx, err, "Page failed", "page", p)
			return err
		}

		rel := relTo(r.cfg.Pages, p)
		if err := r.publish(ctx, rel, []byte(html), KindPage); err != nil {
			return err
		}
	}

	return nil
}

func (r *run) publish(ctx context.Context, rel string, data []byte, kind string) error {
	written, err := r.publisher.Publish(rel, data)
	if err != nil {
		return err
	}

	r.result.Manifest = append(r.result.Manifest, ManifestEntry{
		Path: written,
		Size: int64(len(data)),
		Kind: kind,
	})
	r.logger.Info(ctx, "Output written", "path", written, "size", len(data), "kind", kind)
	return nil
}

// walk lists the files below root accepted by keep, in lexical order. A
// missing root yields a nil slice and no error.
func (r *run) walk(root string, keep func(string) bool) ([]string, error) {
	exists, err := afero.DirExists(r.src, root)
	if err != nil {
		return nil, siteerrors.WrapIO(err, root, "checking directory")
	}
	if !exists {
		return nil, nil
	}

	files := make([]string, 0)
	err = afero.Walk(r.src, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return siteerrors.WrapIO(err, p, "walking content tree")
		}
		if info.IsDir() {
			return nil
		}

		p = filepath.ToSlash(p)
		if keep(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// isParametrized reports whether a template file name carries a [field]
// segment and is therefore only rendered through a collection.
func isParametrized(p string) bool {
	base := path.Base(p)
	return strings.Contains(base, "[") && strings.Contains(base, "]")
}

// relTo strips root from p. Both are slash separated.
func relTo(root, p string) string {
	root = path.Clean(root)
	if root == "." {
		return p
	}
	return strings.TrimPrefix(p, root+"/")
}
