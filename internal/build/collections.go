package build

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"github.com/spf13/afero"
	"github.com/spf13/cast"

	"github.com/conneroisu/sitegen/internal/config"
	"github.com/conneroisu/sitegen/internal/engine"
	siteerrors "github.com/conneroisu/sitegen/internal/errors"
)

var fieldTemplatePattern = regexp.MustCompile(`^\[([A-Za-z_][A-Za-z0-9_]*)\]\.html$`)

// Preset names bound for every detail page.
const (
	PresetIndex    = "index"
	PresetValue    = "value"
	PresetPrevHref = "prev_href"
	PresetNextHref = "next_href"
	PresetPrevID   = "prev_id"
	PresetNextID   = "next_id"
)

// collection is one resolved detail-page expansion.
type collection struct {
	config.CollectionConfig
	templatePath string // relative to the source root
	outDir       string // relative to the output root
	discovered   bool
}

// detailPage is one element of a collection with its output location.
type detailPage struct {
	element interface{}
	id      string
	rel     string
}

func (r *run) buildCollections(ctx context.Context) error {
	collections, err := r.collections(ctx)
	if err != nil {
		return err
	}

	for _, c := range collections {
		if err := r.expand(ctx, c); err != nil {
			return siteerrors.AtPath(err, c.templatePath)
		}
	}

	return nil
}

// collections returns the configured collections, or discovers one per
// [field].html template when none are configured.
func (r *run) collections(ctx context.Context) ([]collection, error) {
	if len(r.cfg.Collections) > 0 {
		out := make([]collection, 0, len(r.cfg.Collections))
		for _, cc := range r.cfg.Collections {
			tmpl := path.Join(r.cfg.Pages, cc.Template)
			if cc.IDField == "" {
				if m := fieldTemplatePattern.FindStringSubmatch(path.Base(tmpl)); m != nil {
					cc.IDField = m[1]
				}
			}
			out = append(out, collection{
				CollectionConfig: cc,
				templatePath:     tmpl,
				outDir:           path.Dir(cc.Template),
			})
		}
		return out, nil
	}

	templates, err := r.walk(r.cfg.Pages, func(p string) bool {
		return fieldTemplatePattern.MatchString(path.Base(p))
	})
	if err != nil {
		return nil, err
	}

	out := make([]collection, 0, len(templates))
	for _, tmpl := range templates {
		dir := path.Dir(relTo(r.cfg.Pages, tmpl))
		if dir == "." {
			r.logger.Warn(ctx, nil, "Skipping parametrized template at the pages root; configure a collection for it",
				"template", tmpl)
			continue
		}

		out = append(out, collection{
			CollectionConfig: config.CollectionConfig{
				Template: relTo(r.cfg.Pages, tmpl),
				Data:     path.Join(r.cfg.Data, dir) + ".json",
				IDField:  fieldTemplatePattern.FindStringSubmatch(path.Base(tmpl))[1],
				Var:      config.DefaultItemVar,
			},
			templatePath: tmpl,
			outDir:       dir,
			discovered:   true,
		})
	}

	return out, nil
}

func (r *run) expand(ctx context.Context, c collection) error {
	if c.discovered {
		if exists, _ := afero.Exists(r.src, c.Data); !exists {
			r.logger.Warn(ctx, nil, "No data file for parametrized template", "template", c.templatePath, "data", c.Data)
			return nil
		}
	}

	items, err := r.loadCollection(c)
	if err != nil {
		return err
	}

	pages, err := r.detailPages(c, items)
	if err != nil {
		return err
	}

	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		html, err := r.engine.Render(ctx, c.templatePath, engine.Options{
			BasePath: r.opts.BasePath,
			Presets:  presets(c, pages, i),
		})
		if err != nil {
			r.logger.Error(ctx, err, "Detail page failed", "template", c.templatePath, "id", p.id)
			return err
		}

		if err := r.publish(ctx, p.rel, []byte(html), KindDetail); err != nil {
			return err
		}
	}

	r.logger.Debug(ctx, "Collection expanded", "template", c.templatePath, "pages", len(pages))
	return nil
}

// loadCollection reads the collection's JSON list.
func (r *run) loadCollection(c collection) ([]interface{}, error) {
	value, resolved, err := r.engine.LoadData(c.Data)
	if err != nil {
		return nil, err
	}

	if c.Key != "" {
		obj, ok := value.(map[string]interface{})
		if !ok {
			return nil, siteerrors.Newf(siteerrors.KindInvalidCollection,
				"%s: expected an object holding %q", resolved, c.Key)
		}
		value = obj[c.Key]
	}

	items, ok := engine.List(value)
	if !ok {
		return nil, siteerrors.Newf(siteerrors.KindInvalidCollection, "%s: expected a list of items", resolved)
	}

	return items, nil
}

// detailPages assigns an identifier and output path to every element.
func (r *run) detailPages(c collection, items []interface{}) ([]detailPage, error) {
	pages := make([]detailPage, len(items))
	seen := make(map[string]int, len(items))

	for i, element := range items {
		raw := element
		if obj, ok := element.(map[string]interface{}); ok {
			v, ok := obj[c.IDField]
			if !ok {
				return nil, siteerrors.Newf(siteerrors.KindInvalidCollection,
					"%s: item %d has no %q field", c.Data, i+1, c.IDField)
			}
			raw = v
		}

		id, err := cast.ToStringE(raw)
		if err != nil || strings.TrimSpace(id) == "" {
			return nil, siteerrors.Newf(siteerrors.KindInvalidCollection,
				"%s: item %d has an unusable %q value", c.Data, i+1, c.IDField)
		}

		name := slug.Make(id)
		if name == "" {
			return nil, siteerrors.Newf(siteerrors.KindInvalidCollection,
				"%s: item %d identifier %q produces an empty file name", c.Data, i+1, id)
		}
		if prev, dup := seen[name]; dup {
			return nil, siteerrors.Newf(siteerrors.KindInvalidCollection,
				"%s: items %d and %d both map to %s.html", c.Data, prev, i+1, name)
		}
		seen[name] = i + 1

		pages[i] = detailPage{
			element: element,
			id:      id,
			rel:     path.Join(c.outDir, name+".html"),
		}
	}

	return pages, nil
}

// presets builds the bindings of the i-th detail page.
func presets(c collection, pages []detailPage, i int) map[string]interface{} {
	p := pages[i]
	vars := make(map[string]interface{})

	if obj, ok := p.element.(map[string]interface{}); ok {
		for k, v := range obj {
			vars[k] = v
		}
	} else {
		vars[PresetValue] = p.element
	}

	varName := c.Var
	if varName == "" {
		varName = config.DefaultItemVar
	}
	vars[varName] = p.element
	vars[PresetIndex] = i + 1

	vars[PresetPrevHref], vars[PresetPrevID] = "", ""
	vars[PresetNextHref], vars[PresetNextID] = "", ""
	if i > 0 {
		vars[PresetPrevHref] = "/" + pages[i-1].rel
		vars[PresetPrevID] = pages[i-1].id
	}
	if i < len(pages)-1 {
		vars[PresetNextHref] = "/" + pages[i+1].rel
		vars[PresetNextID] = pages[i+1].id
	}

	return vars
}
