// digest.go: The digest engine, hashing and HMAC over byte buffers.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/hmac"
	"time"
)

// DigestOptions configures a Hash or HMAC call.
type DigestOptions struct {
	// Algorithm selects the digest algorithm. Empty uses the Service
	// default (SHA256 unless configured otherwise).
	Algorithm HashAlgorithm

	// Encoding controls how the string variants render the digest.
	// Empty means hex. The byte variants ignore it.
	Encoding Encoding
}

// Hash computes the digest of data. It is deterministic and involves no
// key: hashing the same bytes twice yields the same digest.
func (s *Service) Hash(data []byte, opts DigestOptions) (digest []byte, err error) {
	start := time.Now()
	alg := s.resolveHash(opts.Algorithm)
	defer func() {
		s.report(OpHash, string(alg), len(data), len(digest), start, err)
	}()

	provider, err := newHash(alg)
	if err != nil {
		return nil, err
	}
	h := provider()
	h.Write(data)
	digest = h.Sum(nil)
	return digest, nil
}

// HashString computes the digest of data and renders it with the Encoding
// option (hex when empty).
//
// Example:
//
//	sum, err := svc.HashString([]byte("payload"), crypto.DigestOptions{})
//	// sum is the lowercase hex SHA-256 of "payload"
func (s *Service) HashString(data []byte, opts DigestOptions) (string, error) {
	digest, err := s.Hash(data, opts)
	if err != nil {
		return "", err
	}
	rendered, err := s.encodeDigest(digest, opts.Encoding)
	if err != nil {
		s.reportError(OpHash, string(s.resolveHash(opts.Algorithm)), err)
		return "", err
	}
	return rendered, nil
}

// HMAC computes the keyed digest of data. For a fixed (data, key,
// algorithm) triple the output is deterministic; changing any of the three
// changes the output with overwhelming probability. The key must be
// non-empty but has no length requirement.
func (s *Service) HMAC(data, key []byte, opts DigestOptions) (mac []byte, err error) {
	start := time.Now()
	alg := s.resolveHash(opts.Algorithm)
	defer func() {
		s.report(OpHMAC, string(alg), len(data), len(mac), start, err)
	}()

	if len(key) == 0 {
		return nil, invalidInput("hmac key cannot be empty")
	}
	provider, err := newHash(alg)
	if err != nil {
		return nil, err
	}

	m := hmac.New(provider, key)
	m.Write(data)

	// Sum into pooled scratch, then copy out so the pool can reclaim it.
	sumBuf := getSmallBuffer(m.Size())
	defer putSmallBuffer(sumBuf)
	sum := m.Sum((*sumBuf)[:0])
	mac = make([]byte, len(sum))
	copy(mac, sum)
	return mac, nil
}

// HMACString computes the keyed digest of data and renders it with the
// Encoding option (hex when empty).
func (s *Service) HMACString(data, key []byte, opts DigestOptions) (string, error) {
	mac, err := s.HMAC(data, key, opts)
	if err != nil {
		return "", err
	}
	rendered, err := s.encodeDigest(mac, opts.Encoding)
	if err != nil {
		s.reportError(OpHMAC, string(s.resolveHash(opts.Algorithm)), err)
		return "", err
	}
	return rendered, nil
}

func (s *Service) resolveHash(alg HashAlgorithm) HashAlgorithm {
	if alg == "" {
		return s.defaultHash
	}
	return alg
}

func (s *Service) encodeDigest(digest []byte, enc Encoding) (string, error) {
	if enc == "" {
		enc = EncodingHex
	}
	return enc.EncodeToString(digest)
}
