// Package repository implements the high-level operations on an artifact
// namespace: listing artifacts and versions, resolving a version
// requirement, reading a manifest, and publishing a new version.
package repository

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/binrep/binrep/internal/backend"
	"github.com/binrep/binrep/internal/binreperr"
	"github.com/binrep/binrep/internal/hashutil"
	"github.com/binrep/binrep/internal/model"
	"github.com/binrep/binrep/internal/notify"
	"github.com/binrep/binrep/internal/semver"
	"github.com/binrep/binrep/internal/signing"
)

const artifactsIndexPath = "artifacts.sane"

// PublishParams configures how Publish hashes and signs a new version.
type PublishParams struct {
	ChecksumMethod  model.ChecksumMethod
	SignatureMethod model.SignatureMethod
	KeyID           string
}

// Input is one file submitted to Publish: Name is the leaf filename that
// will appear in the manifest, Content is streamed once.
type Input struct {
	Name    string
	Content io.Reader
}

// Repository is built over one Backend and the SANE codec.
type Repository struct {
	Backend  backend.Backend
	Keys     signing.KeyTable
	Log      *logrus.Entry
	Notifier notify.Notifier
}

// New constructs a Repository. log may be nil, in which case a discarding
// entry is used; the Notifier defaults to NoopNotifier and can be set on the
// returned value directly.
func New(b backend.Backend, keys signing.KeyTable, log *logrus.Entry) *Repository {
	if log == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		log = logrus.NewEntry(logger)
	}
	return &Repository{Backend: b, Keys: keys, Log: log, Notifier: notify.NoopNotifier{}}
}

func versionsIndexPath(name string) string {
	return path.Join(name, "versions.sane")
}

func manifestPath(name, version string) string {
	return path.Join(name, version, "artifact.sane")
}

func filePath(name, version, filename string) string {
	return path.Join(name, version, filename)
}

// ListArtifacts returns the repository's artifact names. A missing index
// yields an empty list, not an error.
func (r *Repository) ListArtifacts(ctx context.Context) ([]string, error) {
	data, err := readAll(ctx, r.Backend, artifactsIndexPath)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	idx, err := model.DecodeArtifactsIndex(data)
	if err != nil {
		return nil, err
	}
	return idx.Artifacts, nil
}

// ListVersions returns name's published versions, strict semver-ascending,
// with unparsable entries dropped (and logged).
func (r *Repository) ListVersions(ctx context.Context, name string) ([]string, error) {
	data, err := readAll(ctx, r.Backend, versionsIndexPath(name))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	idx, dropped, err := model.DecodeVersionsIndex(data)
	if err != nil {
		return nil, err
	}
	for _, d := range dropped {
		r.Log.WithField("artifact", name).Warn(d)
	}
	sorted := semver.Sort(idx.Versions)
	if len(sorted) != len(idx.Versions) {
		kept := make(map[string]bool, len(sorted))
		for _, v := range sorted {
			kept[v] = true
		}
		for _, v := range idx.Versions {
			if !kept[v] {
				r.Log.WithField("artifact", name).Warnf("dropping version entry %q (unparsable or duplicate)", v)
			}
		}
	}
	return sorted, nil
}

// Resolve picks the version req selects against name's published versions.
func (r *Repository) Resolve(ctx context.Context, name, req string) (string, error) {
	versions, err := r.ListVersions(ctx, name)
	if err != nil {
		return "", err
	}
	return semver.Resolve(name, req, versions)
}

// ReadManifest reads and decodes the manifest for name at version v.
func (r *Repository) ReadManifest(ctx context.Context, name, v string) (model.Manifest, error) {
	data, err := readAll(ctx, r.Backend, manifestPath(name, v))
	if err != nil {
		if isNotFound(err) {
			return model.Manifest{}, binreperr.VersionNotFound(name, v)
		}
		return model.Manifest{}, err
	}
	return model.DecodeManifest(data)
}

// Publish writes a new version: v must not already exist. Files are hashed
// while being uploaded (tee pattern), signed, and the manifest/versions
// index/artifacts index are written in that order so a reader can never
// observe a partial version.
func (r *Repository) Publish(ctx context.Context, name, v string, inputs []Input, params PublishParams) (model.Manifest, error) {
	exists, err := r.Backend.Exists(ctx, manifestPath(name, v))
	if err != nil {
		return model.Manifest{}, err
	}
	if exists {
		return model.Manifest{}, binreperr.AlreadyPublished(name, v)
	}

	files := make([]model.FileEntry, 0, len(inputs))
	for _, in := range inputs {
		tee, sum, err := hashutil.TeeSum(params.ChecksumMethod, in.Content)
		if err != nil {
			return model.Manifest{}, err
		}
		if err := r.Backend.Write(ctx, filePath(name, v, in.Name), tee); err != nil {
			return model.Manifest{}, err
		}
		checksum, err := sum()
		if err != nil {
			return model.Manifest{}, err
		}
		files = append(files, model.FileEntry{
			Name:           in.Name,
			Checksum:       checksum,
			ChecksumMethod: params.ChecksumMethod,
		})
	}

	sig, err := signing.Sign(params.SignatureMethod, params.KeyID, r.Keys, files)
	if err != nil {
		return model.Manifest{}, err
	}

	manifest := model.Manifest{Version: v, Files: files, Signature: sig}
	if err := r.Backend.Write(ctx, manifestPath(name, v), bytes.NewReader(model.EncodeManifest(manifest))); err != nil {
		return model.Manifest{}, err
	}

	if err := r.appendVersion(ctx, name, v); err != nil {
		return model.Manifest{}, err
	}
	if err := r.registerArtifact(ctx, name); err != nil {
		return model.Manifest{}, err
	}

	r.Log.WithField("artifact", name).WithField("version", v).Info("published version")
	if err := r.Notifier.Notify(ctx, notify.Event{Kind: notify.EventPublished, Artifact: name, Version: v}); err != nil {
		r.Log.WithError(err).Warn("notify: failed to report published version")
	}
	return manifest, nil
}

func (r *Repository) appendVersion(ctx context.Context, name, v string) error {
	data, err := readAll(ctx, r.Backend, versionsIndexPath(name))
	var versions []string
	if err == nil {
		idx, _, decErr := model.DecodeVersionsIndex(data)
		if decErr != nil {
			return decErr
		}
		versions = idx.Versions
	} else if !isNotFound(err) {
		return err
	}
	versions = append(versions, v)
	versions = semver.Sort(versions)
	return r.Backend.Write(ctx, versionsIndexPath(name), bytes.NewReader(model.EncodeVersionsIndex(model.VersionsIndex{Versions: versions})))
}

func (r *Repository) registerArtifact(ctx context.Context, name string) error {
	data, err := readAll(ctx, r.Backend, artifactsIndexPath)
	var names []string
	if err == nil {
		idx, decErr := model.DecodeArtifactsIndex(data)
		if decErr != nil {
			return decErr
		}
		names = idx.Artifacts
	} else if !isNotFound(err) {
		return err
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	names = append(names, name)
	return r.Backend.Write(ctx, artifactsIndexPath, bytes.NewReader(model.EncodeArtifactsIndex(model.ArtifactsIndex{Artifacts: names})))
}

func readAll(ctx context.Context, b backend.Backend, path string) ([]byte, error) {
	rc, err := b.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func isNotFound(err error) bool {
	berr, ok := err.(*binreperr.Error)
	return ok && berr.Code == binreperr.CodeNotFound
}
