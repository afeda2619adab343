package build

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/sitegen/internal/config"
	siteerrors "github.com/conneroisu/sitegen/internal/errors"
	"github.com/conneroisu/sitegen/internal/jsondata"
	"github.com/conneroisu/sitegen/internal/rewrite"
)

// ImageEntry describes one image asset in the generated index.
type ImageEntry struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
}

var imageExtensions = map[string]bool{
	".avif": true,
	".bmp":  true,
	".gif":  true,
	".ico":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".svg":  true,
	".webp": true,
}

// copyStatic copies every static directory to the same relative location in
// the output. Stylesheets get their url() references rewritten.
func (r *run) copyStatic(ctx context.Context) error {
	for _, dir := range r.cfg.Static {
		files, err := r.walk(dir, func(string) bool { return true })
		if err != nil {
			return err
		}
		if files == nil {
			r.logger.Debug(ctx, "Static directory missing, skipping", "dir", dir)
			continue
		}

		for _, f := range files {
			data, err := afero.ReadFile(r.src, f)
			if err != nil {
				return siteerrors.WrapIO(err, f, "reading asset")
			}

			ext := strings.ToLower(path.Ext(f))
			if ext == ".css" {
				data = []byte(rewrite.CSS(string(data), r.opts.BasePath))
			}
			if imageExtensions[ext] {
				r.images = append(r.images, newImageEntry(f, int64(len(data))))
			}

			if err := r.publish(ctx, f, data, KindAsset); err != nil {
				return err
			}
		}
	}

	return nil
}

// mirrorData copies every JSON file under the data root unmodified, so
// client scripts can fetch the same data the pages were built from.
func (r *run) mirrorData(ctx context.Context) error {
	files, err := r.walk(r.cfg.Data, func(p string) bool {
		return strings.EqualFold(path.Ext(p), ".json")
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		if path.Clean(f) == path.Clean(r.cfg.ImageIndex) {
			continue
		}

		data, err := afero.ReadFile(r.src, f)
		if err != nil {
			return siteerrors.WrapIO(err, f, "reading data file")
		}
		if err := r.publish(ctx, f, data, KindData); err != nil {
			return err
		}
	}

	return nil
}

// writeImageIndex writes the image index sorted by path.
func (r *run) writeImageIndex(ctx context.Context) error {
	sort.Slice(r.images, func(i, j int) bool { return r.images[i].Path < r.images[j].Path })

	data, err := jsondata.MarshalIndent(r.images)
	if err != nil {
		return siteerrors.Wrap(err, siteerrors.KindInternal, "encoding image index")
	}

	return r.publish(ctx, r.cfg.ImageIndex, data, KindIndex)
}

// copyDomainMarker carries the custom-domain marker into the output so the
// hosting provider keeps serving the site from its domain.
func (r *run) copyDomainMarker(ctx context.Context) error {
	exists, err := afero.Exists(r.src, config.CustomDomainMarker)
	if err != nil {
		return siteerrors.WrapIO(err, config.CustomDomainMarker, "checking domain marker")
	}
	if !exists {
		return nil
	}

	data, err := afero.ReadFile(r.src, config.CustomDomainMarker)
	if err != nil {
		return siteerrors.WrapIO(err, config.CustomDomainMarker, "reading domain marker")
	}
	return r.publish(ctx, config.CustomDomainMarker, data, KindAsset)
}

func newImageEntry(p string, size int64) ImageEntry {
	name := path.Base(p)
	ext := path.Ext(name)

	return ImageEntry{
		Path:      "/" + p,
		Name:      name,
		Title:     humanize(strings.TrimSuffix(name, ext)),
		Size:      size,
		Extension: strings.ToLower(ext),
	}
}

// humanize turns a file stem such as "team_photo-2024" into "Team Photo 2024".
func humanize(stem string) string {
	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
