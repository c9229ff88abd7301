package puller

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/binrep/binrep/internal/backend/fsbackend"
	"github.com/binrep/binrep/internal/model"
	"github.com/binrep/binrep/internal/repository"
	"github.com/binrep/binrep/internal/signing"
)

func setupRepo(t *testing.T) *repository.Repository {
	t.Helper()
	fs := fsbackend.New(afero.NewMemMapFs(), "/repo")
	keys := signing.KeyTable{"k1": {HMACSecret: []byte("secretsecretsecretsecretsecretse")}}
	repo := repository.New(fs, keys, nil)

	params := repository.PublishParams{ChecksumMethod: model.SHA256, SignatureMethod: model.HMACSHA256, KeyID: "k1"}
	_, err := repo.Publish(context.Background(), "demo", "1.0.0", []repository.Input{
		{Name: "hello", Content: strings.NewReader("Hello\n")},
	}, params)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	return repo
}

func TestPullMaterializesFiles(t *testing.T) {
	repo := setupRepo(t)
	verifyKeys := signing.KeyTable{"k1": {HMACSecret: []byte("secretsecretsecretsecretsecretse")}}
	p := New(repo, verifyKeys, 2)

	dest := t.TempDir()
	result, err := p.Pull(context.Background(), "demo", "latest", dest)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if result.Version != "1.0.0" {
		t.Errorf("version = %s", result.Version)
	}
	if len(result.Files) != 1 {
		t.Fatalf("files = %v", result.Files)
	}

	data, err := os.ReadFile(filepath.Join(dest, "hello"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "Hello\n" {
		t.Errorf("content = %q", data)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("staging directory not cleaned up, entries = %v", entries)
	}
}

func TestPullFailsOnBadSignature(t *testing.T) {
	repo := setupRepo(t)
	wrongKeys := signing.KeyTable{"k1": {HMACSecret: []byte("not-the-right-secret-not-the-rgt")}}
	p := New(repo, wrongKeys, 2)

	dest := t.TempDir()
	_, err := p.Pull(context.Background(), "demo", "latest", dest)
	if err == nil {
		t.Fatal("expected signature verification failure")
	}
}

func TestPullVersionNotFound(t *testing.T) {
	repo := setupRepo(t)
	keys := signing.KeyTable{"k1": {HMACSecret: []byte("secretsecretsecretsecretsecretse")}}
	p := New(repo, keys, 2)

	dest := t.TempDir()
	_, err := p.Pull(context.Background(), "demo", "9.9.9", dest)
	if err == nil {
		t.Fatal("expected VersionNotFound error")
	}
}
