// keyutils.go: Key and IV material generation, import/export, zeroization,
// fingerprinting, and constant-time comparison.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"
	"time"

	goerrors "github.com/agilira/go-errors"
)

// supportedKeyBits is the set of bit lengths GenerateKey accepts: 64
// (DES), 128 (AES-128), 192 (AES-192 and triple DES), 256 (AES-256).
var supportedKeyBits = map[int]bool{64: true, 128: true, 192: true, 256: true}

// GenerateKey produces cryptographically strong random key material of the
// given bit length, rounded up to whole bytes. Supported bit lengths are
// 64, 128, 192, and 256; anything else is ErrUnsupportedAlgorithm.
//
// The returned key is owned by the caller; the Service never retains it.
// Increments the keyGenerations counter.
//
// Example:
//
//	key, err := svc.GenerateKey(256) // 32 bytes, fits AES-256-GCM
func (s *Service) GenerateKey(bitLength int) (key []byte, err error) {
	start := time.Now()
	defer func() {
		s.report(OpKeyGeneration, "", 0, len(key), start, err)
	}()

	if !supportedKeyBits[bitLength] {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedAlgorithm,
			goerrors.New(ErrCodeUnsupportedAlgorithm, fmt.Sprintf("unsupported key length %d bits", bitLength)))
	}
	key, err = RandomBytes((bitLength + 7) / 8)
	if err != nil {
		return nil, err
	}
	return key, nil
}

// GenerateKeyEncoded generates a key and renders it with the given
// encoding, for callers storing keys in text-based configuration.
func (s *Service) GenerateKeyEncoded(bitLength int, enc Encoding) (string, error) {
	key, err := s.GenerateKey(bitLength)
	if err != nil {
		return "", err
	}
	defer Zeroize(key)
	encoded, err := enc.EncodeToString(key)
	if err != nil {
		s.reportError(OpKeyGeneration, "", err)
		return "", err
	}
	return encoded, nil
}

// GenerateIV produces a random IV of the fixed length the algorithm table
// prescribes: 16 bytes for all AES variants, 8 bytes for DES and triple
// DES. Unknown algorithms fail with ErrUnsupportedAlgorithm; the failure
// is reported to the observer and errors counter like every other
// operation failure.
func (s *Service) GenerateIV(alg Algorithm) ([]byte, error) {
	size, err := alg.IVSize()
	if err != nil {
		s.reportError(OpKeyGeneration, string(alg), err)
		return nil, err
	}
	iv, err := RandomBytes(size)
	if err != nil {
		s.reportError(OpKeyGeneration, string(alg), err)
		return nil, err
	}
	return iv, nil
}

// GenerateIVEncoded generates an IV and renders it with the given encoding.
func (s *Service) GenerateIVEncoded(alg Algorithm, enc Encoding) (string, error) {
	iv, err := s.GenerateIV(alg)
	if err != nil {
		return "", err
	}
	encoded, err := enc.EncodeToString(iv)
	if err != nil {
		s.reportError(OpKeyGeneration, string(alg), err)
		return "", err
	}
	return encoded, nil
}

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, invalidInput("random byte count must be positive")
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, wrapIO(err, "failed to read from the secure random source")
	}
	return b, nil
}

// ValidateKeyForAlgorithm checks that key has the exact length alg
// requires. Useful for validating imported keys before first use.
func ValidateKeyForAlgorithm(key []byte, alg Algorithm) error {
	spec, err := lookupCipherSpec(alg)
	if err != nil {
		return err
	}
	return validateKeySize(key, spec)
}

// Zeroize overwrites b with zeros in place so key material does not
// linger in memory after use.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// KeyFingerprint returns a 16-character hex identifier for a key: the
// first 8 bytes of its SHA-256. It identifies keys in logs and cache
// lookups without exposing the material. Empty keys yield "".
func KeyFingerprint(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	sum := sha256.Sum256(key)
	return fmt.Sprintf("%016x", sum[:8])
}

// TimingSafeEqual compares two byte sequences in constant time so the
// comparison duration does not leak which byte differed. It returns false
// immediately when the lengths differ, which leaks only the length.
// MAC tags and tokens have public lengths, so nothing secret escapes.
//
// Use this instead of bytes.Equal whenever either side is secret.
func TimingSafeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
