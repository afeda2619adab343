// Package linkcheck verifies a built output tree: every root-relative link
// must point at a file that was written, and no directive syntax may survive
// into the rendered text.
package linkcheck

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/net/html"

	"github.com/conneroisu/sitegen/internal/engine"
	siteerrors "github.com/conneroisu/sitegen/internal/errors"
	"github.com/conneroisu/sitegen/internal/logging"
	"github.com/conneroisu/sitegen/internal/rewrite"
)

// FindingKind classifies a problem found in the output.
type FindingKind string

const (
	// BrokenLink is a root-relative reference to a file that does not exist.
	BrokenLink FindingKind = "broken-link"
	// OutsideBase is a root-relative reference that skips the base path.
	OutsideBase FindingKind = "outside-base"
	// LeftoverDirective is directive syntax found in rendered text.
	LeftoverDirective FindingKind = "leftover-directive"
)

// Finding is one problem in one output file.
type Finding struct {
	File   string      `json:"file" yaml:"file"`
	Kind   FindingKind `json:"kind" yaml:"kind"`
	Target string      `json:"target,omitempty" yaml:"target,omitempty"`
}

// Report summarizes a check run.
type Report struct {
	Files    int       `json:"files" yaml:"files"`
	Links    int       `json:"links" yaml:"links"`
	Findings []Finding `json:"findings" yaml:"findings"`
}

// OK reports whether the check found nothing.
func (r *Report) OK() bool {
	return len(r.Findings) == 0
}

// Checker inspects the HTML files below an output root.
type Checker struct {
	fs       afero.Fs
	root     string
	basePath string
	logger   logging.Logger
}

// New creates a checker for the output tree at root on fs.
func New(fs afero.Fs, root, basePath string, logger logging.Logger) *Checker {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Checker{
		fs:       fs,
		root:     root,
		basePath: rewrite.Normalize(basePath),
		logger:   logger.WithComponent("linkcheck"),
	}
}

// Check walks the output tree and returns every finding, sorted by file.
func (c *Checker) Check(ctx context.Context) (*Report, error) {
	report := &Report{Findings: make([]Finding, 0)}

	err := afero.Walk(c.fs, c.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return siteerrors.WrapIO(err, p, "walking output")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}

		findings, links, err := c.checkFile(filepath.ToSlash(p))
		if err != nil {
			return err
		}
		report.Files++
		report.Links += links
		report.Findings = append(report.Findings, findings...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(report.Findings, func(i, j int) bool {
		return report.Findings[i].File < report.Findings[j].File
	})

	c.logger.Info(ctx, "Output checked", "files", report.Files, "links", report.Links, "findings", len(report.Findings))
	return report, nil
}

func (c *Checker) checkFile(p string) ([]Finding, int, error) {
	f, err := c.fs.Open(p)
	if err != nil {
		return nil, 0, siteerrors.WrapIO(err, p, "opening output")
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, 0, siteerrors.Wrap(err, siteerrors.KindInternal, "parsing "+p)
	}

	var findings []Finding
	links := 0

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if engine.HasDirectives(n.Data) {
				findings = append(findings, Finding{File: p, Kind: LeftoverDirective, Target: snippet(n.Data)})
			}
		case html.ElementNode:
			if n.Data == "base" {
				break
			}
			for _, u := range references(n) {
				links++
				if kind, bad := c.checkURL(u); bad {
					findings = append(findings, Finding{File: p, Kind: kind, Target: u})
				}
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			traverse(child)
		}
	}
	traverse(doc)

	return findings, links, nil
}

// references returns the root-relative URLs an element points at.
func references(n *html.Node) []string {
	var urls []string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "href", "src":
			urls = append(urls, attr.Val)
		case "srcset":
			for _, candidate := range strings.Split(attr.Val, ",") {
				if fields := strings.Fields(candidate); len(fields) > 0 {
					urls = append(urls, fields[0])
				}
			}
		}
	}

	rootRelative := urls[:0]
	for _, u := range urls {
		if strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
			rootRelative = append(rootRelative, u)
		}
	}
	return rootRelative
}

func (c *Checker) checkURL(u string) (FindingKind, bool) {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}

	if c.basePath != "/" {
		if !strings.HasPrefix(u, c.basePath) && u+"/" != c.basePath {
			return OutsideBase, true
		}
		u = "/" + strings.TrimPrefix(strings.TrimPrefix(u, strings.TrimSuffix(c.basePath, "/")), "/")
	}

	rel := strings.TrimPrefix(u, "/")
	candidates := []string{rel}
	switch {
	case rel == "" || strings.HasSuffix(rel, "/"):
		candidates = []string{rel + "index.html"}
	case path.Ext(rel) == "":
		candidates = append(candidates, rel+".html", rel+"/index.html")
	}

	for _, candidate := range candidates {
		target := path.Join(c.root, candidate)
		if info, err := c.fs.Stat(target); err == nil && !info.IsDir() {
			return "", false
		}
	}

	return BrokenLink, true
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		s = s[:60] + "..."
	}
	return s
}
