// Package resolver maps logical template and data names onto files in the
// content tree.
//
// A logical name is either dotted ("partials.header") or slash separated
// ("partials/header.html"). Candidate roots are tried in priority order and
// the first existing file wins.
package resolver

import (
	"os"
	"path"
	"strings"
	"sync"

	"github.com/spf13/afero"

	siteerrors "github.com/conneroisu/sitegen/internal/errors"
	"github.com/conneroisu/sitegen/internal/validation"
)

const (
	templateExt = ".html"
	dataExt     = ".json"
)

// Resolver resolves template names against an ordered set of roots.
// Paths are relative to the filesystem root, which is the content source.
type Resolver struct {
	fs       afero.Fs
	roots    []string
	dataRoot string

	mu    sync.Mutex
	cache map[string]string
}

// New creates a resolver. roots are tried in order; "" denotes the source
// root itself. dataRoot is preferred for dotted @json names.
func New(fs afero.Fs, dataRoot string, roots ...string) *Resolver {
	return &Resolver{
		fs:       fs,
		roots:    roots,
		dataRoot: dataRoot,
		cache:    make(map[string]string),
	}
}

// Fs returns the filesystem the resolver reads from.
func (r *Resolver) Fs() afero.Fs {
	return r.fs
}

// TemplatePath converts a logical name into a relative file path, appending
// .html when missing.
func TemplatePath(name string) string {
	name = strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"), "/")

	base := strings.TrimSuffix(name, templateExt)
	base = strings.ReplaceAll(base, ".", "/")

	return base + templateExt
}

// DataPath converts a data name into a relative file path, appending .json
// when missing. The boolean reports whether the name was in dotted form.
func DataPath(name string) (string, bool) {
	name = strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"), "/")

	dotted := !strings.Contains(name, "/")
	base := strings.TrimSuffix(name, dataExt)
	if dotted {
		base = strings.ReplaceAll(base, ".", "/")
	}

	return base + dataExt, dotted
}

// Candidates lists every path Resolve would try for name, in order.
func (r *Resolver) Candidates(name string) ([]string, error) {
	if err := validation.ValidateLogicalName(name); err != nil {
		return nil, err
	}

	rel := TemplatePath(name)
	candidates := make([]string, 0, len(r.roots))
	for _, root := range r.roots {
		candidates = append(candidates, joinRoot(root, rel))
	}

	return candidates, nil
}

// Resolve returns the first candidate path for name that exists.
func (r *Resolver) Resolve(name string) (string, error) {
	if err := validation.ValidateLogicalName(name); err != nil {
		return "", err
	}

	r.mu.Lock()
	cached, ok := r.cache[name]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	candidates, err := r.Candidates(name)
	if err != nil {
		return "", err
	}

	found, err := r.first(candidates)
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", siteerrors.TemplateNotFound(name, candidates)
	}

	r.mu.Lock()
	r.cache[name] = found
	r.mu.Unlock()

	return found, nil
}

// ResolveData finds a JSON data file. Dotted names prefer the data root;
// slash names prefer the source root.
func (r *Resolver) ResolveData(name string) (string, error) {
	if err := validation.ValidateLogicalName(name); err != nil {
		return "", err
	}

	rel, dotted := DataPath(name)
	underData := joinRoot(r.dataRoot, rel)

	candidates := []string{rel, underData}
	if dotted {
		candidates = []string{underData, rel}
	}
	if underData == rel {
		candidates = candidates[:1]
	}

	found, err := r.first(candidates)
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", siteerrors.TemplateNotFound(name, candidates)
	}

	return found, nil
}

// Read resolves name and returns its path and contents.
func (r *Resolver) Read(name string) (string, string, error) {
	resolved, err := r.Resolve(name)
	if err != nil {
		return "", "", err
	}

	content, err := afero.ReadFile(r.fs, resolved)
	if err != nil {
		return "", "", siteerrors.WrapIO(err, resolved, "reading template")
	}

	return resolved, string(content), nil
}

func (r *Resolver) first(candidates []string) (string, error) {
	for _, candidate := range candidates {
		info, err := r.fs.Stat(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", siteerrors.WrapIO(err, candidate, "checking candidate")
		}
		if !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}

func joinRoot(root, rel string) string {
	if root == "" || root == "." {
		return rel
	}
	return path.Join(root, rel)
}
