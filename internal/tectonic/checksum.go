package tectonic

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// checksumBufferSize bounds memory use while digesting arbitrarily
// large inputs.
const checksumBufferSize = 8 * 1024

// ComputeSHA256 consumes r to completion and returns the lowercase hex
// encoding of the SHA-256 digest of its contents.
func ComputeSHA256(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, checksumBufferSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("compute checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum computes the SHA-256 digest of r and compares it,
// case-sensitively, against expected. A mismatch is reported as false,
// not as an error; the caller decides whether it is fatal.
func VerifyChecksum(r io.Reader, expected string) (bool, error) {
	actual, err := ComputeSHA256(r)
	if err != nil {
		return false, err
	}
	return actual == expected, nil
}
