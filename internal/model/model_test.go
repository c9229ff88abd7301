package model

import "testing"

func TestValidArtifactName(t *testing.T) {
	cases := map[string]bool{
		"demo":        true,
		"demo-app_1.0": true,
		"":            false,
		"demo/app":    false,
		"demo app":    false,
		"../etc":      false,
	}
	for name, want := range cases {
		if got := ValidArtifactName(name); got != want {
			t.Errorf("ValidArtifactName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestChecksumMethodValid(t *testing.T) {
	for _, m := range []ChecksumMethod{SHA256, SHA384, SHA512} {
		if !m.Valid() {
			t.Errorf("%s should be valid", m)
		}
	}
	if ChecksumMethod("MD5").Valid() {
		t.Fatal("MD5 should not be valid")
	}
}

func TestSignatureMethodIsHMAC(t *testing.T) {
	for _, m := range []SignatureMethod{HMACSHA256, HMACSHA384, HMACSHA512} {
		if !m.IsHMAC() {
			t.Errorf("%s should be HMAC", m)
		}
	}
	if Ed25519.IsHMAC() {
		t.Fatal("ED25519 should not be HMAC")
	}
}
