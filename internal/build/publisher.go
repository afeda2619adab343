package build

import (
	"bytes"
	"os"
	"path"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/spf13/afero"

	siteerrors "github.com/conneroisu/sitegen/internal/errors"
)

// Publisher writes build outputs. Every Publish replaces whatever was at the
// target path; content is never merged with a previous run.
type Publisher interface {
	// Publish writes data at rel (slash separated, relative to the output
	// root) and returns the path it was written to.
	Publish(rel string, data []byte) (string, error)
	// Clean removes the whole output root.
	Clean() error
	// Root returns the output root.
	Root() string
}

// FsPublisher writes into an afero filesystem. Existing files are removed
// before the new content is written.
type FsPublisher struct {
	fs   afero.Fs
	root string
}

// NewFsPublisher creates a publisher writing below root on fs.
func NewFsPublisher(fs afero.Fs, root string) *FsPublisher {
	return &FsPublisher{fs: fs, root: root}
}

func (p *FsPublisher) Publish(rel string, data []byte) (string, error) {
	target := path.Join(p.root, rel)

	if err := p.fs.MkdirAll(path.Dir(target), 0o755); err != nil {
		return "", siteerrors.WrapIO(err, target, "creating output directory")
	}
	if err := p.fs.Remove(target); err != nil && !os.IsNotExist(err) {
		return "", siteerrors.WrapIO(err, target, "removing stale output")
	}
	if err := afero.WriteFile(p.fs, target, data, 0o644); err != nil {
		return "", siteerrors.WrapIO(err, target, "writing output")
	}

	return target, nil
}

func (p *FsPublisher) Clean() error {
	if err := p.fs.RemoveAll(p.root); err != nil {
		return siteerrors.WrapIO(err, p.root, "cleaning output directory")
	}
	return nil
}

func (p *FsPublisher) Root() string {
	return p.root
}

// AtomicPublisher writes to the OS filesystem. Each file is written to a
// temporary sibling and renamed into place.
type AtomicPublisher struct {
	root string
}

// NewAtomicPublisher creates a publisher writing below root.
func NewAtomicPublisher(root string) *AtomicPublisher {
	return &AtomicPublisher{root: root}
}

func (p *AtomicPublisher) Publish(rel string, data []byte) (string, error) {
	target := filepath.Join(p.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", siteerrors.WrapIO(err, target, "creating output directory")
	}
	if err := atomic.WriteFile(target, bytes.NewReader(data)); err != nil {
		return "", siteerrors.WrapIO(err, target, "writing output")
	}

	return target, nil
}

func (p *AtomicPublisher) Clean() error {
	if err := os.RemoveAll(p.root); err != nil {
		return siteerrors.WrapIO(err, p.root, "cleaning output directory")
	}
	return nil
}

func (p *AtomicPublisher) Root() string {
	return p.root
}
