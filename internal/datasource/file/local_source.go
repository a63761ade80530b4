// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local is a filesystem data source that opens files from the local disk.
type Local struct{ path string }

// NewLocal returns a new Local data source bound to the provided filesystem
// path. The returned value is safe for concurrent use by multiple goroutines.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the configured path for reading and returns an io.ReadCloser.
//
// If ctx is already done, Open returns the context error without touching the
// filesystem. Filesystem errors are wrapped with the path while still
// permitting errors.Is checks (e.g., errors.Is(err, os.ErrNotExist)).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)
	return f, nil
}

// Dir resolves object names relative to a snapshot directory.
type Dir struct{ base string }

// NewDir returns a Dir rooted at base. An empty base means the working
// directory.
func NewDir(base string) *Dir { return &Dir{base: base} }

// Path returns the filesystem path for name. Absolute names are used as-is.
func (d *Dir) Path(name string) string {
	if filepath.IsAbs(name) || d.base == "" {
		return name
	}
	return filepath.Join(d.base, name)
}

// Open opens name below the directory.
func (d *Dir) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return NewLocal(d.Path(name)).Open(ctx)
}

// Close is a no-op; it exists so Dir satisfies the datasource store contract.
func (d *Dir) Close() error { return nil }
