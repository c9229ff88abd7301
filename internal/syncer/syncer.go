// Package syncer makes a pull idempotent: it compares the desired version
// against a sidecar state file in the destination directory and only pulls
// when something has actually changed.
package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/binrep/binrep/internal/dirlock"
	"github.com/binrep/binrep/internal/model"
	"github.com/binrep/binrep/internal/notify"
	"github.com/binrep/binrep/internal/puller"
)

// Result is what Sync returns.
type Result struct {
	Changed bool
	Version string
	Files   []string
}

// Syncer wraps a Puller with a per-artifact SyncState sidecar and an
// advisory lock on the destination directory.
type Syncer struct {
	Puller   *puller.Puller
	Notifier notify.Notifier
}

// New constructs a Syncer over an existing Puller. Notifier defaults to
// NoopNotifier and can be set on the returned value directly.
func New(p *puller.Puller) *Syncer {
	return &Syncer{Puller: p, Notifier: notify.NoopNotifier{}}
}

func sidecarPath(destDir, name string) string {
	return filepath.Join(destDir, fmt.Sprintf(".%s_sync.sane", name))
}

// Sync resolves req, and pulls only if the destination's recorded state
// doesn't already match: a different version, a missing sidecar, or any
// previously-installed file now absent all count as a change.
func (s *Syncer) Sync(ctx context.Context, name, req, destDir string) (Result, error) {
	destDir, err := filepath.Abs(destDir)
	if err != nil {
		return Result{}, err
	}

	lock, err := dirlock.Acquire(destDir)
	if err != nil {
		return Result{}, err
	}
	defer lock.Unlock()

	version, err := s.Puller.Repo.Resolve(ctx, name, req)
	if err != nil {
		return Result{}, err
	}

	state, ok := loadState(destDir, name)
	if ok && state.Version == version && allFilesPresent(destDir, state.Files) {
		files := make([]string, len(state.Files))
		for i, f := range state.Files {
			files[i] = filepath.Join(destDir, f)
		}
		return Result{Changed: false, Version: version, Files: files}, nil
	}

	result, err := s.Puller.Pull(ctx, name, req, destDir)
	if err != nil {
		return Result{}, err
	}

	names := make([]string, len(result.Files))
	for i, f := range result.Files {
		names[i] = filepath.Base(f)
	}
	if err := writeState(destDir, name, model.SyncState{Version: result.Version, Files: names}); err != nil {
		return Result{}, err
	}

	_ = s.Notifier.Notify(ctx, notify.Event{Kind: notify.EventSynced, Artifact: name, Version: result.Version})
	return Result{Changed: true, Version: result.Version, Files: result.Files}, nil
}

func loadState(destDir, name string) (model.SyncState, bool) {
	data, err := os.ReadFile(sidecarPath(destDir, name))
	if err != nil {
		return model.SyncState{}, false
	}
	state, err := model.DecodeSyncState(data)
	if err != nil {
		return model.SyncState{}, false
	}
	return state, true
}

func allFilesPresent(destDir string, files []string) bool {
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(destDir, f)); err != nil {
			return false
		}
	}
	return true
}

func writeState(destDir, name string, state model.SyncState) error {
	data := model.EncodeSyncState(state)
	tmp, err := os.CreateTemp(destDir, ".binrep-sync-tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, sidecarPath(destDir, name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
