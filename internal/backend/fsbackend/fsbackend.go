// Package fsbackend implements backend.Backend over an afero.Fs, so
// production code runs against the real filesystem (afero.OsFs) while tests
// run against an in-memory one (afero.MemMapFs) without touching disk.
package fsbackend

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/binrep/binrep/internal/binreperr"
)

// FS wraps an afero.Fs rooted at a directory. Write stages content in a
// temp file inside the destination directory, then renames it into place,
// so a concurrent Read never observes a partially written file.
type FS struct {
	fs   afero.Fs
	root string
}

// New returns a Backend rooted at root, used as given; apply ExpandRoot
// first to expand "~" and "$VAR".
func New(fs afero.Fs, root string) *FS {
	return &FS{fs: fs, root: root}
}

// NewOS returns a Backend over the real filesystem rooted at root.
func NewOS(root string) *FS {
	return New(afero.NewOsFs(), root)
}

func (b *FS) abs(path string) string {
	return filepath.Join(b.root, filepath.FromSlash(path))
}

func (b *FS) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := b.abs(prefix)
	entries, err := afero.ReadDir(b.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, binreperr.Transport(err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out, nil
}

func (b *FS) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := b.fs.Open(b.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, binreperr.NotFound(path)
		}
		return nil, binreperr.Transport(err)
	}
	return f, nil
}

func (b *FS) Write(ctx context.Context, path string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest := b.abs(path)
	dir := filepath.Dir(dest)
	if err := b.fs.MkdirAll(dir, 0o755); err != nil {
		return binreperr.Transport(err)
	}

	tmp, err := afero.TempFile(b.fs, dir, ".binrep-tmp-"+filepath.Base(dest)+"-")
	if err != nil {
		return binreperr.Transport(err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		b.fs.Remove(tmpName)
		return binreperr.Transport(err)
	}
	if err := tmp.Close(); err != nil {
		b.fs.Remove(tmpName)
		return binreperr.Transport(err)
	}
	if err := b.fs.Rename(tmpName, dest); err != nil {
		b.fs.Remove(tmpName)
		return binreperr.Transport(err)
	}
	return nil
}

func (b *FS) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := afero.Exists(b.fs, b.abs(path))
	if err != nil {
		return false, binreperr.Transport(err)
	}
	return ok, nil
}

// ExpandRoot applies shell-style expansion to a configured root path: "~"
// expands to the user's home directory, "$VAR"/"${VAR}" expand from the
// environment.
func ExpandRoot(root string) (string, error) {
	if root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", binreperr.Config("cannot expand ~ in backend root", err)
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}
	return os.Expand(root, os.Getenv), nil
}
