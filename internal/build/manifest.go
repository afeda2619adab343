package build

import (
	"sort"
	"time"
)

// ManifestEntry records one file written by a build.
type ManifestEntry struct {
	Path string `json:"path" yaml:"path"`
	Size int64  `json:"size" yaml:"size"`
	Kind string `json:"kind" yaml:"kind"`
}

// Output kinds reported in the manifest.
const (
	KindPage   = "page"
	KindDetail = "detail"
	KindAsset  = "asset"
	KindData   = "data"
	KindIndex  = "index"
)

// Result is the observable outcome of a build run.
type Result struct {
	BasePath string          `json:"base_path" yaml:"base_path"`
	Manifest []ManifestEntry `json:"manifest" yaml:"manifest"`
	Duration time.Duration   `json:"duration" yaml:"duration"`
}

// Paths lists the written paths in write order.
func (r *Result) Paths() []string {
	paths := make([]string, len(r.Manifest))
	for i, e := range r.Manifest {
		paths[i] = e.Path
	}
	return paths
}

// Count returns the number of outputs of the given kind.
func (r *Result) Count(kind string) int {
	n := 0
	for _, e := range r.Manifest {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// TotalSize sums the size of every output.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, e := range r.Manifest {
		total += e.Size
	}
	return total
}

// Sorted returns a copy of the manifest ordered by path.
func (r *Result) Sorted() []ManifestEntry {
	out := append([]ManifestEntry(nil), r.Manifest...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
