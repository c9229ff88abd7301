package puller

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/binrep/binrep/internal/backend/mocks"
	"github.com/binrep/binrep/internal/binreperr"
	"github.com/binrep/binrep/internal/model"
	"github.com/binrep/binrep/internal/repository"
	"github.com/binrep/binrep/internal/signing"
)

// TestPullSurfacesBackendTransportError exercises a Backend.Read failure on
// the file-fetch path specifically (as opposed to the versions index or
// manifest reads, which must already have succeeded for Pull to get this
// far) — a case the in-memory fsbackend used elsewhere in this package can't
// easily produce, since it never fails except on a missing path.
func TestPullSurfacesBackendTransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockBackend := mocks.NewMockBackend(ctrl)

	keys := signing.KeyTable{"k1": {HMACSecret: []byte("secretsecretsecretsecretsecretse")}}
	files := []model.FileEntry{{
		Name:           "hello",
		Checksum:       "66a045b452102c59d840ec097d59d9467e13a3f34f6494e539ffd32c1bb35f18",
		ChecksumMethod: model.SHA256,
	}}
	sig, err := signing.Sign(model.HMACSHA256, "k1", keys, files)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	manifestBytes := model.EncodeManifest(model.Manifest{Version: "1.0.0", Files: files, Signature: sig})
	versionsBytes := model.EncodeVersionsIndex(model.VersionsIndex{Versions: []string{"1.0.0"}})

	mockBackend.EXPECT().Read(gomock.Any(), "demo/versions.sane").
		Return(io.NopCloser(bytes.NewReader(versionsBytes)), nil)
	mockBackend.EXPECT().Read(gomock.Any(), "demo/1.0.0/artifact.sane").
		Return(io.NopCloser(bytes.NewReader(manifestBytes)), nil)
	mockBackend.EXPECT().Read(gomock.Any(), "demo/1.0.0/hello").
		Return(nil, binreperr.Transport(errors.New("connection reset by peer")))

	repo := repository.New(mockBackend, keys, nil)
	p := New(repo, keys, 1)

	dest := t.TempDir()
	_, err = p.Pull(context.Background(), "demo", "latest", dest)
	if err == nil {
		t.Fatal("expected Pull to surface the backend transport error")
	}
}
