package model

import "testing"

func TestManifestRoundTrip(t *testing.T) {
	m := Manifest{
		Version: "1.0.0",
		Files: []FileEntry{
			{Name: "hello", Checksum: "66a045b452102c59d840ec097d59d9467e13a3f34f6494e539ffd32c1bb35f18", ChecksumMethod: SHA256},
		},
		Signature: Signature{KeyID: "k1", Signature: "c2lnbmF0dXJl", SignatureMethod: HMACSHA256},
	}

	data := EncodeManifest(m)
	got, err := DecodeManifest(data)
	if err != nil {
		t.Fatalf("DecodeManifest: %v", err)
	}
	if got.Version != m.Version {
		t.Errorf("Version = %q", got.Version)
	}
	if len(got.Files) != 1 || got.Files[0] != m.Files[0] {
		t.Errorf("Files = %+v", got.Files)
	}
	if got.Signature != m.Signature {
		t.Errorf("Signature = %+v", got.Signature)
	}
}

func TestArtifactsIndexRoundTrip(t *testing.T) {
	idx := ArtifactsIndex{Artifacts: []string{"demo", "other"}}
	data := EncodeArtifactsIndex(idx)
	got, err := DecodeArtifactsIndex(data)
	if err != nil {
		t.Fatalf("DecodeArtifactsIndex: %v", err)
	}
	if len(got.Artifacts) != 2 || got.Artifacts[0] != "demo" || got.Artifacts[1] != "other" {
		t.Errorf("Artifacts = %v", got.Artifacts)
	}
}

func TestArtifactsIndexMissingIsEmpty(t *testing.T) {
	got, err := DecodeArtifactsIndex([]byte(""))
	if err != nil {
		t.Fatalf("DecodeArtifactsIndex: %v", err)
	}
	if len(got.Artifacts) != 0 {
		t.Errorf("Artifacts = %v, want empty", got.Artifacts)
	}
}

func TestVersionsIndexDropsUnparsable(t *testing.T) {
	got, dropped, err := DecodeVersionsIndex([]byte(`versions = ["1.0.0", 2, "1.1.0"]` + "\n"))
	if err != nil {
		t.Fatalf("DecodeVersionsIndex: %v", err)
	}
	if len(got.Versions) != 2 {
		t.Errorf("Versions = %v", got.Versions)
	}
	if len(dropped) != 1 {
		t.Errorf("dropped = %v, want one entry", dropped)
	}
}

func TestSyncStateRoundTrip(t *testing.T) {
	s := SyncState{Version: "1.2.3", Files: []string{"a", "b"}}
	data := EncodeSyncState(s)
	got, err := DecodeSyncState(data)
	if err != nil {
		t.Fatalf("DecodeSyncState: %v", err)
	}
	if got.Version != s.Version {
		t.Errorf("Version = %q, want %q", got.Version, s.Version)
	}
	if len(got.Files) != len(s.Files) {
		t.Fatalf("Files = %v, want %v", got.Files, s.Files)
	}
	for i := range s.Files {
		if got.Files[i] != s.Files[i] {
			t.Errorf("Files[%d] = %q, want %q", i, got.Files[i], s.Files[i])
		}
	}
}
