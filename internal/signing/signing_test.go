package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/binrep/binrep/internal/model"
)

func TestSignVerifyHMACSHA256(t *testing.T) {
	secret, err := base64.StdEncoding.DecodeString("okIy37MEOC8yCkCEcMbyVCYEWNZT7IV5wr+qQxFlYR0=")
	if err != nil {
		t.Fatalf("decode secret: %v", err)
	}
	keys := KeyTable{"k1": {HMACSecret: secret}}
	files := []model.FileEntry{
		{Name: "hello", Checksum: "66a045b452102c59d840ec097d59d9467e13a3f34f6494e539ffd32c1bb35f18", ChecksumMethod: model.SHA256},
	}

	sig, err := Sign(model.HMACSHA256, "k1", keys, files)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig.KeyID != "k1" || sig.SignatureMethod != model.HMACSHA256 {
		t.Fatalf("unexpected signature %+v", sig)
	}

	if err := Verify(sig, keys, files, "demo", "1.0.0"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsTamperedName(t *testing.T) {
	secret := []byte("secretsecretsecretsecretsecretse")
	keys := KeyTable{"k1": {HMACSecret: secret}}
	files := []model.FileEntry{{Name: "hello", Checksum: "abc123", ChecksumMethod: model.SHA256}}

	sig, err := Sign(model.HMACSHA256, "k1", keys, files)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tampered := []model.FileEntry{{Name: "hellp", Checksum: "abc123", ChecksumMethod: model.SHA256}}
	if err := Verify(sig, keys, tampered, "demo", "1.0.0"); err == nil {
		t.Fatal("expected verification failure for tampered name")
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	secret := []byte("secretsecretsecretsecretsecretse")
	keys := KeyTable{"k1": {HMACSecret: secret}}
	files := []model.FileEntry{{Name: "hello", Checksum: "abc123", ChecksumMethod: model.SHA256}}

	sig, err := Sign(model.HMACSHA256, "k1", keys, files)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sig.Signature = base64.StdEncoding.EncodeToString([]byte("not-the-right-signature-bytes!!"))

	if err := Verify(sig, keys, files, "demo", "1.0.0"); err == nil {
		t.Fatal("expected verification failure for tampered signature")
	}
}

func TestSignVerifyEd25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	signerKeys := KeyTable{"root": {Ed25519Priv: priv}}
	verifierKeys := KeyTable{"root": {Ed25519Pub: pub}}
	files := []model.FileEntry{{Name: "a.bin", Checksum: "deadbeef", ChecksumMethod: model.SHA256}}

	sig, err := Sign(model.Ed25519, "root", signerKeys, files)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(sig, verifierKeys, files, "demo", "2.0.0"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestSignUnknownKey(t *testing.T) {
	_, err := Sign(model.HMACSHA256, "missing", KeyTable{}, nil)
	if err == nil {
		t.Fatal("expected UnknownKey error")
	}
}

func TestSignMethodMismatch(t *testing.T) {
	keys := KeyTable{"k1": {HMACSecret: []byte("secret")}}
	_, err := Sign(model.Ed25519, "k1", keys, nil)
	if err == nil {
		t.Fatal("expected MethodMismatch error")
	}
}

func TestCanonicalBytesIgnoresChecksumMethod(t *testing.T) {
	a := []model.FileEntry{{Name: "x", Checksum: "c1", ChecksumMethod: model.SHA256}}
	b := []model.FileEntry{{Name: "x", Checksum: "c1", ChecksumMethod: model.SHA512}}
	if string(CanonicalBytes(a)) != string(CanonicalBytes(b)) {
		t.Fatal("canonical bytes must not depend on checksum_method")
	}
}

func TestCanonicalBytesOrderSensitive(t *testing.T) {
	a := []model.FileEntry{
		{Name: "x", Checksum: "c1"},
		{Name: "y", Checksum: "c2"},
	}
	b := []model.FileEntry{
		{Name: "y", Checksum: "c2"},
		{Name: "x", Checksum: "c1"},
	}
	if string(CanonicalBytes(a)) == string(CanonicalBytes(b)) {
		t.Fatal("canonical bytes must be sensitive to file order")
	}
}
