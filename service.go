// service.go: The explicitly constructed cryptographic service core.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/cipher"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// Service is the cryptographic utility core. It bundles the cipher,
// digest, signature, and stream engines behind one instance that owns its
// operation counters and reports every operation to an injected Observer.
//
// Construct instances explicitly with New; there is no process-wide
// singleton. Two Services never share counters or cipher caches.
//
// All single-buffer operations are synchronous, CPU-bound, and safe for
// concurrent use: the only shared mutable state is the atomic stats
// counters and the lock-guarded AEAD cipher cache.
//
// Example:
//
//	svc := crypto.New(crypto.WithObserver(crypto.NewLogObserver(nil)))
//	key, _ := svc.GenerateKey(256)
//	result, err := svc.Encrypt([]byte("sensitive data"), key, crypto.EncryptOptions{})
type Service struct {
	observer    Observer
	defaultAlg  Algorithm
	defaultHash HashAlgorithm
	defaultSig  SignatureAlgorithm
	stats       opStats

	// AEAD cipher cache keyed by key fingerprint. Avoids the
	// aes.NewCipher + cipher.NewGCM overhead on hot encrypt/decrypt paths.
	cacheMu     sync.RWMutex
	cipherCache map[string]cipher.AEAD
}

// Option configures a Service during construction.
type Option func(*Service)

// WithObserver installs the observer that receives one OperationEvent per
// engine operation. The default observer discards events.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithDefaultAlgorithm sets the symmetric algorithm used when an options
// struct leaves Algorithm empty. The default is AES256GCM.
func WithDefaultAlgorithm(alg Algorithm) Option {
	return func(s *Service) { s.defaultAlg = alg }
}

// WithDefaultHash sets the digest algorithm used when DigestOptions leaves
// Algorithm empty. The default is SHA256.
func WithDefaultHash(alg HashAlgorithm) Option {
	return func(s *Service) { s.defaultHash = alg }
}

// WithDefaultSignatureAlgorithm sets the signature algorithm used when
// Sign/Verify options leave Algorithm empty. The default is RSASHA256.
func WithDefaultSignatureAlgorithm(alg SignatureAlgorithm) Option {
	return func(s *Service) { s.defaultSig = alg }
}

// New creates a Service with the given options applied over the defaults
// (AES-256-GCM, SHA-256, RSA-SHA256, no-op observer).
func New(opts ...Option) *Service {
	s := &Service{
		observer:    NopObserver{},
		defaultAlg:  AES256GCM,
		defaultHash: SHA256,
		defaultSig:  RSASHA256,
		cipherCache: make(map[string]cipher.AEAD),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats returns a point-in-time snapshot of the operation counters.
func (s *Service) Stats() StatsSnapshot {
	return s.stats.snapshot()
}

// ResetStats zeroes all operation counters and the cumulative duration.
func (s *Service) ResetStats() {
	s.stats.reset()
}

// report records one completed operation in the stats and forwards it to
// the observer. It runs before the operation's result reaches the caller.
func (s *Service) report(op Operation, algorithm string, inSize, outSize int, start time.Time, err error) {
	d := time.Since(start)
	s.stats.record(op, d, err)
	s.observer.OnOperation(OperationEvent{
		Operation:  op,
		Algorithm:  algorithm,
		InputSize:  inSize,
		OutputSize: outSize,
		Duration:   d,
		Timestamp:  timecache.CachedTime().UTC(),
		Err:        err,
	})
}

// reportError records a failure that happened outside an already-counted
// engine operation, such as a file write after a successful encrypt. The
// errors counter increments and the observer is notified; the operation
// counter is untouched so delegated operations are not double-counted.
func (s *Service) reportError(op Operation, algorithm string, err error) {
	s.stats.errors.Add(1)
	s.observer.OnOperation(OperationEvent{
		Operation: op,
		Algorithm: algorithm,
		Timestamp: timecache.CachedTime().UTC(),
		Err:       err,
	})
}

// cachedAEAD returns the cached GCM instance for key, creating and caching
// it on first use. The cache key is the key fingerprint, never the key
// material itself.
func (s *Service) cachedAEAD(key []byte, spec cipherSpec) (cipher.AEAD, error) {
	fingerprint := KeyFingerprint(key)

	s.cacheMu.RLock()
	if gcm, ok := s.cipherCache[fingerprint]; ok {
		s.cacheMu.RUnlock()
		return gcm, nil
	}
	s.cacheMu.RUnlock()

	block, err := spec.newBlock(key)
	if err != nil {
		return nil, wrapInvalidInput(err, "failed to create cipher")
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, spec.ivSize)
	if err != nil {
		return nil, wrapInvalidInput(err, "failed to create GCM mode")
	}

	s.cacheMu.Lock()
	s.cipherCache[fingerprint] = gcm
	s.cacheMu.Unlock()

	return gcm, nil
}
