// service_test.go: Test cases for the service core, stats, and observers.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	crypto "github.com/agilira/kryptos"
	"github.com/sirupsen/logrus"
)

// recordingObserver captures every event it receives. Safe for concurrent
// use, matching the Observer contract.
type recordingObserver struct {
	mu     sync.Mutex
	events []crypto.OperationEvent
}

func (r *recordingObserver) OnOperation(event crypto.OperationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) snapshot() []crypto.OperationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]crypto.OperationEvent{}, r.events...)
}

func TestStats_CountsEveryOperationKind(t *testing.T) {
	svc := crypto.New()
	key := sequentialKey(32)

	result, err := svc.Encrypt([]byte("counted"), key, crypto.EncryptOptions{})
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}
	if _, err := svc.Decrypt(result.Ciphertext, key, result.IV, crypto.DecryptOptions{AuthTag: result.AuthTag}); err != nil {
		t.Fatalf("Failed to decrypt: %v", err)
	}
	if _, err := svc.Hash([]byte("counted"), crypto.DigestOptions{}); err != nil {
		t.Fatalf("Failed to hash: %v", err)
	}
	if _, err := svc.HMAC([]byte("counted"), key, crypto.DigestOptions{}); err != nil {
		t.Fatalf("Failed to hmac: %v", err)
	}
	if _, err := svc.GenerateKey(128); err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	stats := svc.Stats()
	if stats.Encrypt != 1 {
		t.Errorf("Expected 1 encrypt, got %d", stats.Encrypt)
	}
	if stats.Decrypt != 1 {
		t.Errorf("Expected 1 decrypt, got %d", stats.Decrypt)
	}
	if stats.Hash != 1 {
		t.Errorf("Expected 1 hash, got %d", stats.Hash)
	}
	if stats.HMAC != 1 {
		t.Errorf("Expected 1 hmac, got %d", stats.HMAC)
	}
	if stats.KeyGenerations != 1 {
		t.Errorf("Expected 1 key generation, got %d", stats.KeyGenerations)
	}
	if stats.Errors != 0 {
		t.Errorf("Expected 0 errors, got %d", stats.Errors)
	}
}

func TestStats_FailedOperationsCountTwice(t *testing.T) {
	// A failed operation increments both its own counter and the errors
	// counter.
	svc := crypto.New()

	if _, err := svc.Encrypt([]byte("data"), []byte("short"), crypto.EncryptOptions{}); err == nil {
		t.Fatal("Expected encryption with a short key to fail")
	}

	stats := svc.Stats()
	if stats.Encrypt != 1 {
		t.Errorf("Expected the failed encrypt to be counted, got %d", stats.Encrypt)
	}
	if stats.Errors != 1 {
		t.Errorf("Expected 1 error, got %d", stats.Errors)
	}
}

func TestResetStats(t *testing.T) {
	svc := crypto.New()

	if _, err := svc.Hash([]byte("data"), crypto.DigestOptions{}); err != nil {
		t.Fatalf("Failed to hash: %v", err)
	}
	if svc.Stats().Hash != 1 {
		t.Fatal("Expected the hash to be counted before reset")
	}

	svc.ResetStats()
	stats := svc.Stats()
	if stats.Hash != 0 || stats.Errors != 0 || stats.TotalDuration != 0 {
		t.Errorf("Expected zeroed stats after reset, got %+v", stats)
	}
}

func TestStats_PerInstanceIsolation(t *testing.T) {
	first := crypto.New()
	second := crypto.New()

	if _, err := first.Hash([]byte("data"), crypto.DigestOptions{}); err != nil {
		t.Fatalf("Failed to hash: %v", err)
	}

	if second.Stats().Hash != 0 {
		t.Error("Expected a fresh instance to have untouched counters")
	}
}

func TestObserver_ReceivesSuccessEvents(t *testing.T) {
	rec := &recordingObserver{}
	svc := crypto.New(crypto.WithObserver(rec))
	key := sequentialKey(32)

	if _, err := svc.Encrypt([]byte("observed"), key, crypto.EncryptOptions{}); err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	events := rec.snapshot()
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	event := events[0]
	if event.Operation != crypto.OpEncrypt {
		t.Errorf("Expected encrypt operation, got %q", event.Operation)
	}
	if event.Algorithm != string(crypto.AES256GCM) {
		t.Errorf("Expected algorithm %q, got %q", crypto.AES256GCM, event.Algorithm)
	}
	if event.InputSize != len("observed") {
		t.Errorf("Expected input size %d, got %d", len("observed"), event.InputSize)
	}
	if event.OutputSize == 0 {
		t.Error("Expected a non-zero output size")
	}
	if event.Err != nil {
		t.Errorf("Expected no error on the event, got %v", event.Err)
	}
	if event.Timestamp.IsZero() {
		t.Error("Expected a timestamp on the event")
	}
}

func TestObserver_ReceivesFailureEvents(t *testing.T) {
	rec := &recordingObserver{}
	svc := crypto.New(crypto.WithObserver(rec))
	key := sequentialKey(32)

	ciphertext := []byte("not a real ciphertext")
	iv := sequentialKey(16)
	tag := sequentialKey(16)
	if _, err := svc.Decrypt(ciphertext, key, iv, crypto.DecryptOptions{AuthTag: tag}); !errors.Is(err, crypto.ErrAuthenticationFailed) {
		t.Fatalf("Expected ErrAuthenticationFailed, got %v", err)
	}

	events := rec.snapshot()
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Operation != crypto.OpDecrypt {
		t.Errorf("Expected decrypt operation, got %q", events[0].Operation)
	}
	if !errors.Is(events[0].Err, crypto.ErrAuthenticationFailed) {
		t.Errorf("Expected the event to carry the authentication error, got %v", events[0].Err)
	}
}

func TestObserver_ReceivesIVGenerationFailures(t *testing.T) {
	rec := &recordingObserver{}
	svc := crypto.New(crypto.WithObserver(rec))

	_, err := svc.GenerateIV(crypto.Algorithm("no-such-algorithm"))
	if !errors.Is(err, crypto.ErrUnsupportedAlgorithm) {
		t.Fatalf("Expected ErrUnsupportedAlgorithm, got %v", err)
	}

	events := rec.snapshot()
	if len(events) != 1 {
		t.Fatalf("Expected 1 event for the failed IV generation, got %d", len(events))
	}
	if events[0].Operation != crypto.OpKeyGeneration {
		t.Errorf("Expected keyGeneration operation, got %q", events[0].Operation)
	}
	if !errors.Is(events[0].Err, crypto.ErrUnsupportedAlgorithm) {
		t.Errorf("Expected the event to carry the unsupported-algorithm error, got %v", events[0].Err)
	}

	stats := svc.Stats()
	if stats.Errors != 1 {
		t.Errorf("Expected 1 error counted, got %d", stats.Errors)
	}
	if stats.KeyGenerations != 0 {
		t.Errorf("Expected no key generation counted for the failure, got %d", stats.KeyGenerations)
	}
}

func TestObserver_ReceivesEncodingFailures(t *testing.T) {
	rec := &recordingObserver{}
	svc := crypto.New(crypto.WithObserver(rec))
	key := sequentialKey(32)

	// The key is generated (and counted) before the encoding fails; the
	// failure still reaches the observer and the errors counter.
	if _, err := svc.GenerateKeyEncoded(256, crypto.Encoding("base32")); !errors.Is(err, crypto.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput for unknown encoding, got %v", err)
	}
	events := rec.snapshot()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events (generation then encoding failure), got %d", len(events))
	}
	if !errors.Is(events[1].Err, crypto.ErrInvalidInput) {
		t.Errorf("Expected the encoding failure on the second event, got %v", events[1].Err)
	}

	result, err := svc.Encrypt([]byte("payload"), key, crypto.EncryptOptions{})
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}
	_, err = svc.DecryptString(result.Ciphertext, key, result.IV, crypto.DecryptOptions{
		AuthTag:        result.AuthTag,
		OutputEncoding: crypto.Encoding("base32"),
	})
	if !errors.Is(err, crypto.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput for unknown output encoding, got %v", err)
	}

	events = rec.snapshot()
	last := events[len(events)-1]
	if last.Operation != crypto.OpDecrypt {
		t.Errorf("Expected the decrypt encoding failure to be reported as decrypt, got %q", last.Operation)
	}
	if !errors.Is(last.Err, crypto.ErrInvalidInput) {
		t.Errorf("Expected the event to carry the encoding error, got %v", last.Err)
	}

	stats := svc.Stats()
	if stats.Errors != 2 {
		t.Errorf("Expected 2 errors counted, got %d", stats.Errors)
	}
	if stats.Decrypt != 1 {
		t.Errorf("Expected the successful decrypt counted once, got %d", stats.Decrypt)
	}
}

func TestWithDefaultAlgorithm(t *testing.T) {
	svc := crypto.New(crypto.WithDefaultAlgorithm(crypto.AES128CBC))
	key := sequentialKey(16)

	result, err := svc.Encrypt([]byte("routed by default"), key, crypto.EncryptOptions{})
	if err != nil {
		t.Fatalf("Failed to encrypt with configured default: %v", err)
	}
	if result.Algorithm != crypto.AES128CBC {
		t.Errorf("Expected %s, got %s", crypto.AES128CBC, result.Algorithm)
	}
	if result.AuthTag != nil {
		t.Error("Expected no auth tag for a CBC default")
	}
}

func TestWithDefaultHash(t *testing.T) {
	svc := crypto.New(crypto.WithDefaultHash(crypto.SHA512))

	digest, err := svc.Hash([]byte("data"), crypto.DigestOptions{})
	if err != nil {
		t.Fatalf("Failed to hash: %v", err)
	}
	if len(digest) != 64 {
		t.Errorf("Expected a 64-byte SHA-512 digest, got %d bytes", len(digest))
	}
}

func TestWithObserver_NilKeepsDefault(t *testing.T) {
	svc := crypto.New(crypto.WithObserver(nil))

	// Must not panic with the nil observer rejected.
	if _, err := svc.Hash([]byte("data"), crypto.DigestOptions{}); err != nil {
		t.Fatalf("Failed to hash: %v", err)
	}
}

func TestLogObserver_EmitsWithoutPanic(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	logger.SetLevel(logrus.DebugLevel)

	svc := crypto.New(crypto.WithObserver(crypto.NewLogObserver(logger)))
	key := sequentialKey(32)

	if _, err := svc.Encrypt([]byte("logged"), key, crypto.EncryptOptions{}); err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}
	if _, err := svc.Encrypt([]byte("logged"), []byte("bad"), crypto.EncryptOptions{}); err == nil {
		t.Fatal("Expected encryption with a bad key to fail")
	}
}

func TestService_ConcurrentOperations(t *testing.T) {
	svc := crypto.New()
	key := sequentialKey(32)

	const goroutines = 8
	const perGoroutine = 25

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				result, err := svc.Encrypt([]byte("concurrent payload"), key, crypto.EncryptOptions{})
				if err != nil {
					t.Errorf("Failed to encrypt: %v", err)
					return
				}
				plaintext, err := svc.Decrypt(result.Ciphertext, key, result.IV, crypto.DecryptOptions{AuthTag: result.AuthTag})
				if err != nil {
					t.Errorf("Failed to decrypt: %v", err)
					return
				}
				if string(plaintext) != "concurrent payload" {
					t.Errorf("Unexpected plaintext %q", plaintext)
					return
				}
			}
		}()
	}
	wg.Wait()

	stats := svc.Stats()
	if stats.Encrypt != goroutines*perGoroutine {
		t.Errorf("Expected %d encrypts, got %d", goroutines*perGoroutine, stats.Encrypt)
	}
	if stats.Decrypt != goroutines*perGoroutine {
		t.Errorf("Expected %d decrypts, got %d", goroutines*perGoroutine, stats.Decrypt)
	}
	if stats.Errors != 0 {
		t.Errorf("Expected 0 errors, got %d", stats.Errors)
	}
}
