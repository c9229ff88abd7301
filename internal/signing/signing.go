// Package signing implements the canonical signature input for a manifest
// and dispatches signing/verification across the HMAC-SHAx and Ed25519
// families.
package signing

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"crypto/x509"
	"encoding/base64"
	"hash"

	"github.com/binrep/binrep/internal/binreperr"
	"github.com/binrep/binrep/internal/model"
)

// Key is a tagged union over the three key shapes binrep loads from config:
// a raw HMAC secret, an Ed25519 private key (publisher side), or an Ed25519
// public key (reader side). Exactly one field is non-nil.
type Key struct {
	HMACSecret    []byte
	Ed25519Priv   ed25519.PrivateKey
	Ed25519Pub    ed25519.PublicKey
}

// CompatibleWith reports whether k can be used with method, so mismatches
// surface at config-load time rather than at first sign/verify.
func (k Key) CompatibleWith(method model.SignatureMethod) bool {
	if method.IsHMAC() {
		return k.HMACSecret != nil
	}
	if method == model.Ed25519 {
		return k.Ed25519Priv != nil || k.Ed25519Pub != nil
	}
	return false
}

// KeyTable looks up a Key by the key_id referenced in a Signature.
type KeyTable map[string]Key

// HMACKeyFromBase64 decodes a base64 secret as loaded from a config's
// [hmac_keys] section.
func HMACKeyFromBase64(b64 string) (Key, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return Key{}, binreperr.Config("invalid base64 hmac key", err)
	}
	return Key{HMACSecret: raw}, nil
}

// Ed25519PrivateKeyFromPKCS8 parses a PKCS#8-encoded Ed25519 private key, as
// loaded from a publisher's [ed25519_keys] config entry.
func Ed25519PrivateKeyFromPKCS8(der []byte) (Key, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return Key{}, binreperr.Config("invalid pkcs8 ed25519 key", err)
	}
	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return Key{}, binreperr.Config("pkcs8 key is not ed25519", nil)
	}
	return Key{Ed25519Priv: priv}, nil
}

// Ed25519PublicKeyFromRaw wraps a raw 32-byte public key, as loaded from a
// reader's [ed25519_keys] config entry.
func Ed25519PublicKeyFromRaw(raw []byte) (Key, error) {
	if len(raw) != ed25519.PublicKeySize {
		return Key{}, binreperr.Config("ed25519 public key must be 32 bytes", nil)
	}
	return Key{Ed25519Pub: ed25519.PublicKey(raw)}, nil
}

// CanonicalBytes computes the UTF-8 byte string signed for files: the
// concatenation name1‖checksum1‖name2‖checksum2…, in manifest (publish)
// order, with no separators and no checksum_method. This is the one
// canonicalization rule the whole signing scheme rests on — it must never
// re-sort FileEntry, because publish order is itself part of what is
// attested.
func CanonicalBytes(files []model.FileEntry) []byte {
	var out []byte
	for _, f := range files {
		out = append(out, f.Name...)
		out = append(out, f.Checksum...)
	}
	return out
}

func newMAC(method model.SignatureMethod, secret []byte) (hash.Hash, error) {
	switch method {
	case model.HMACSHA256:
		return hmac.New(sha256.New, secret), nil
	case model.HMACSHA384:
		return hmac.New(sha512.New384, secret), nil
	case model.HMACSHA512:
		return hmac.New(sha512.New, secret), nil
	default:
		return nil, binreperr.New(binreperr.CategoryVerify, binreperr.CodeMethodMismatch, "not an hmac method")
	}
}

// Sign produces a Signature over files using keyID's entry in keys, per
// method.
func Sign(method model.SignatureMethod, keyID string, keys KeyTable, files []model.FileEntry) (model.Signature, error) {
	key, ok := keys[keyID]
	if !ok {
		return model.Signature{}, binreperr.UnknownKey(keyID)
	}
	if !key.CompatibleWith(method) {
		return model.Signature{}, binreperr.MethodMismatch(keyID, string(method))
	}

	canon := CanonicalBytes(files)

	var raw []byte
	if method.IsHMAC() {
		mac, err := newMAC(method, key.HMACSecret)
		if err != nil {
			return model.Signature{}, err
		}
		mac.Write(canon)
		raw = mac.Sum(nil)
	} else {
		if key.Ed25519Priv == nil {
			return model.Signature{}, binreperr.MethodMismatch(keyID, string(method))
		}
		raw = ed25519.Sign(key.Ed25519Priv, canon)
	}

	return model.Signature{
		KeyID:           keyID,
		Signature:       base64.StdEncoding.EncodeToString(raw),
		SignatureMethod: method,
	}, nil
}

// Verify recomputes the canonical bytes from files and checks sig against
// keys, failing UnknownKey, MethodMismatch, or BadSignature as appropriate.
// artifact and version are used only to annotate a BadSignature error.
func Verify(sig model.Signature, keys KeyTable, files []model.FileEntry, artifact, version string) error {
	key, ok := keys[sig.KeyID]
	if !ok {
		return binreperr.UnknownKey(sig.KeyID)
	}
	if !key.CompatibleWith(sig.SignatureMethod) {
		return binreperr.MethodMismatch(sig.KeyID, string(sig.SignatureMethod))
	}

	raw, err := base64.StdEncoding.DecodeString(sig.Signature)
	if err != nil {
		return binreperr.BadSignature(artifact, version)
	}

	canon := CanonicalBytes(files)

	if sig.SignatureMethod.IsHMAC() {
		mac, err := newMAC(sig.SignatureMethod, key.HMACSecret)
		if err != nil {
			return err
		}
		mac.Write(canon)
		want := mac.Sum(nil)
		if subtle.ConstantTimeCompare(want, raw) != 1 {
			return binreperr.BadSignature(artifact, version)
		}
		return nil
	}

	if key.Ed25519Pub == nil {
		return binreperr.MethodMismatch(sig.KeyID, string(sig.SignatureMethod))
	}
	if !ed25519.Verify(key.Ed25519Pub, canon, raw) {
		return binreperr.BadSignature(artifact, version)
	}
	return nil
}
