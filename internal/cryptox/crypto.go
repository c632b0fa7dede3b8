// Package cryptox computes content fingerprints for local task records.
package cryptox

import (
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

// FingerprintSize is the length in bytes of a fingerprint before hex encoding.
const FingerprintSize = blake2b.Size256

// Fingerprint returns the hex-encoded BLAKE2b-256 digest of everything read
// from r.
func Fingerprint(r io.Reader) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FingerprintOpener opens a source, fingerprints it and closes it.
func FingerprintOpener(open func() (io.ReadCloser, error)) (string, error) {
	rc, err := open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return Fingerprint(rc)
}
