// Package hashutil computes and verifies the per-file checksums that back
// every FileEntry in a manifest.
package hashutil

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"

	"github.com/binrep/binrep/internal/binreperr"
	"github.com/binrep/binrep/internal/model"
)

// New returns a fresh hash.Hash for method, or an error if method is not one
// of the recognized checksum families.
func New(method model.ChecksumMethod) (hash.Hash, error) {
	switch method {
	case model.SHA256:
		return sha256.New(), nil
	case model.SHA384:
		return sha512.New384(), nil
	case model.SHA512:
		return sha512.New(), nil
	default:
		return nil, binreperr.New(binreperr.CategoryIntegrity, binreperr.CodeChecksumMismatch, "unknown checksum method").With("method", string(method))
	}
}

// Sum streams r through method's hash and returns the lowercase hex digest.
// Verify uses it; publishing uses TeeSum instead, so the same read that
// uploads a file also computes the checksum that goes into its FileEntry.
func Sum(method model.ChecksumMethod, r io.Reader) (string, error) {
	h, err := New(method)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", binreperr.Transport(err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// TeeSum wraps r so that every byte read through the returned reader is also
// fed into method's hash; call the returned func once r is fully drained
// (EOF reached) to get the digest without buffering the content twice.
func TeeSum(method model.ChecksumMethod, r io.Reader) (io.Reader, func() (string, error), error) {
	h, err := New(method)
	if err != nil {
		return nil, nil, err
	}
	tee := io.TeeReader(r, h)
	sum := func() (string, error) {
		return hex.EncodeToString(h.Sum(nil)), nil
	}
	return tee, sum, nil
}

// Verify streams r through method's hash and compares the result against
// want (exact match, so want must be lowercase hex), returning
// ChecksumMismatch on a discrepancy.
func Verify(method model.ChecksumMethod, r io.Reader, want string, file string) error {
	got, err := Sum(method, r)
	if err != nil {
		return err
	}
	if !Equal(got, want) {
		return binreperr.ChecksumMismatch(file)
	}
	return nil
}

// Equal does a constant-time comparison of two hex digests.
func Equal(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
