// Package puller materializes a repository version's files into a
// destination directory atomically, verifying the manifest's signature
// before any download and each file's checksum during download.
package puller

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/binrep/binrep/internal/binreperr"
	"github.com/binrep/binrep/internal/hashutil"
	"github.com/binrep/binrep/internal/model"
	"github.com/binrep/binrep/internal/orchestrator"
	"github.com/binrep/binrep/internal/repository"
	"github.com/binrep/binrep/internal/signing"
)

// Result is what Pull returns on success.
type Result struct {
	Version string
	Files   []string
}

// Puller reads manifests and files through a Repository, and verifies
// signatures against a key table distinct from (but typically overlapping)
// the one the Repository signs with — a reader holds public/verification
// keys, a publisher holds signing keys.
type Puller struct {
	Repo        *repository.Repository
	VerifyKeys  signing.KeyTable
	MaxParallel int
}

// New constructs a Puller. maxParallel <= 0 uses the Puller's default
// per-file fan-out of 4.
func New(repo *repository.Repository, verifyKeys signing.KeyTable, maxParallel int) *Puller {
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &Puller{Repo: repo, VerifyKeys: verifyKeys, MaxParallel: maxParallel}
}

// Pull resolves req, verifies the manifest's signature, downloads every
// file into a staging directory inside destDir, and renames them into
// place only once every file has passed its checksum.
func (p *Puller) Pull(ctx context.Context, name, req, destDir string) (Result, error) {
	version, err := p.Repo.Resolve(ctx, name, req)
	if err != nil {
		return Result{}, err
	}

	manifest, err := p.Repo.ReadManifest(ctx, name, version)
	if err != nil {
		return Result{}, err
	}

	if err := signing.Verify(manifest.Signature, p.VerifyKeys, manifest.Files, name, version); err != nil {
		return Result{}, err
	}

	destDir, err = filepath.Abs(destDir)
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Result{}, err
	}
	staging, err := os.MkdirTemp(destDir, ".binrep-staging-")
	if err != nil {
		return Result{}, err
	}
	defer os.RemoveAll(staging)

	tasks := make([]orchestrator.Task, len(manifest.Files))
	for i, f := range manifest.Files {
		f := f
		tasks[i] = func(ctx context.Context) error {
			return p.fetchOne(ctx, name, version, f, staging)
		}
	}
	if err := orchestrator.RunAll(ctx, tasks, p.MaxParallel); err != nil {
		return Result{}, err
	}

	files := make([]string, len(manifest.Files))
	for i, f := range manifest.Files {
		src := filepath.Join(staging, f.Name)
		dst := filepath.Join(destDir, f.Name)
		if err := os.Rename(src, dst); err != nil {
			return Result{}, err
		}
		files[i] = dst
	}

	return Result{Version: version, Files: files}, nil
}

func (p *Puller) fetchOne(ctx context.Context, name, version string, f model.FileEntry, staging string) error {
	rc, err := p.Repo.Backend.Read(ctx, fmt.Sprintf("%s/%s/%s", name, version, f.Name))
	if err != nil {
		return err
	}
	defer rc.Close()

	dst := filepath.Join(staging, f.Name)
	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	tee, sum, err := hashutil.TeeSum(f.ChecksumMethod, rc)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if _, err := io.Copy(out, tee); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	got, err := sum()
	if err != nil {
		os.Remove(dst)
		return err
	}
	if !hashutil.Equal(got, f.Checksum) {
		os.Remove(dst)
		return binreperr.ChecksumMismatch(f.Name)
	}
	return nil
}
