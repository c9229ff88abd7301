// Package backend abstracts the storage underneath a repository: a flat
// key space supporting list/read/write/exists, implemented over a local
// filesystem or S3.
package backend

import (
	"context"
	"io"
)

// Backend is the storage surface a Repository is built over. Paths are
// forward-slash-separated and relative to the backend's configured root.
type Backend interface {
	// List returns the paths directly under prefix, one path segment deep
	// (directory-style listing), not a recursive walk.
	List(ctx context.Context, prefix string) ([]string, error)
	// Read opens path for streaming read. The caller must Close it.
	Read(ctx context.Context, path string) (io.ReadCloser, error)
	// Write streams r to path, replacing any existing content atomically
	// from a reader's perspective: a concurrent Read either sees the whole
	// old content or the whole new content, never a partial mix.
	Write(ctx context.Context, path string, r io.Reader) error
	// Exists reports whether path is present.
	Exists(ctx context.Context, path string) (bool, error)
}
