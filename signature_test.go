// signature_test.go: Test cases for the signature engine.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	crypto "github.com/agilira/kryptos"
)

func TestGenerateKeyPair_Defaults(t *testing.T) {
	svc := crypto.New()
	pair, err := svc.GenerateKeyPair(context.Background(), crypto.KeyPairOptions{})
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}
	if !strings.Contains(string(pair.PublicKey), "PUBLIC KEY") {
		t.Error("Expected a PEM public key block")
	}
	if !strings.Contains(string(pair.PrivateKey), "PRIVATE KEY") {
		t.Error("Expected a PEM private key block")
	}
}

func TestGenerateKeyPair_InvalidModulus(t *testing.T) {
	svc := crypto.New()
	_, err := svc.GenerateKeyPair(context.Background(), crypto.KeyPairOptions{ModulusLength: 512})
	if !errors.Is(err, crypto.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for a 512-bit modulus, got %v", err)
	}
}

func TestGenerateKeyPair_CancelledContext(t *testing.T) {
	svc := crypto.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.GenerateKeyPair(ctx, crypto.KeyPairOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	// Cancellation is the context's own error, deliberately outside the
	// package sentinel taxonomy.
	if errors.Is(err, crypto.ErrInvalidInput) || errors.Is(err, crypto.ErrKeyFormat) {
		t.Errorf("Expected the cancellation error to wrap no package sentinel, got %v", err)
	}
}

func TestSignVerify_RoundTrip(t *testing.T) {
	svc := crypto.New()
	pair, err := svc.GenerateKeyPair(context.Background(), crypto.KeyPairOptions{})
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	data := []byte("message requiring provenance")
	for _, alg := range []crypto.SignatureAlgorithm{crypto.RSASHA256, crypto.RSASHA512} {
		signature, err := svc.Sign(data, pair.PrivateKey, crypto.SignOptions{Algorithm: alg})
		if err != nil {
			t.Fatalf("Failed to sign with %s: %v", alg, err)
		}

		ok, err := svc.Verify(data, signature, pair.PublicKey, crypto.VerifyOptions{Algorithm: alg})
		if err != nil {
			t.Fatalf("Failed to verify with %s: %v", alg, err)
		}
		if !ok {
			t.Errorf("Expected a valid signature to verify with %s", alg)
		}

		ok, err = svc.Verify([]byte("tampered message"), signature, pair.PublicKey, crypto.VerifyOptions{Algorithm: alg})
		if err != nil {
			t.Fatalf("Unexpected error verifying tampered data: %v", err)
		}
		if ok {
			t.Errorf("Expected tampered data to fail verification with %s", alg)
		}
	}
}

func TestSign_Deterministic(t *testing.T) {
	svc := crypto.New()
	pair, err := svc.GenerateKeyPair(context.Background(), crypto.KeyPairOptions{})
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	data := []byte("pkcs1v15 is deterministic")
	first, err := svc.Sign(data, pair.PrivateKey, crypto.SignOptions{})
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}
	second, err := svc.Sign(data, pair.PrivateKey, crypto.SignOptions{})
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Expected identical signatures for identical input and key")
	}
}

func TestVerify_MismatchedKeyPair(t *testing.T) {
	svc := crypto.New()
	ctx := context.Background()
	signer, err := svc.GenerateKeyPair(ctx, crypto.KeyPairOptions{})
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}
	stranger, err := svc.GenerateKeyPair(ctx, crypto.KeyPairOptions{})
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	data := []byte("signed by one, checked against another")
	signature, err := svc.Sign(data, signer.PrivateKey, crypto.SignOptions{})
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}

	ok, err := svc.Verify(data, signature, stranger.PublicKey, crypto.VerifyOptions{})
	if err != nil {
		t.Fatalf("Unexpected error for mismatched key pair: %v", err)
	}
	if ok {
		t.Error("Expected verification to fail against the wrong public key")
	}
}

func TestVerify_MalformedInputs(t *testing.T) {
	svc := crypto.New()
	data := []byte("data")

	_, err := svc.Verify(data, []byte("sig"), []byte("not a pem block"), crypto.VerifyOptions{})
	if !errors.Is(err, crypto.ErrKeyFormat) {
		t.Errorf("Expected ErrKeyFormat for malformed public key, got %v", err)
	}

	pair, err := svc.GenerateKeyPair(context.Background(), crypto.KeyPairOptions{})
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}
	_, err = svc.Verify(data, []byte("sig"), pair.PublicKey, crypto.VerifyOptions{Algorithm: "rsa-md2"})
	if !errors.Is(err, crypto.ErrUnsupportedAlgorithm) {
		t.Errorf("Expected ErrUnsupportedAlgorithm, got %v", err)
	}

	_, err = svc.Sign(data, []byte("not a pem block"), crypto.SignOptions{})
	if !errors.Is(err, crypto.ErrKeyFormat) {
		t.Errorf("Expected ErrKeyFormat for malformed private key, got %v", err)
	}
	_, err = svc.Sign(data, nil, crypto.SignOptions{})
	if !errors.Is(err, crypto.ErrKeyFormat) {
		t.Errorf("Expected ErrKeyFormat for empty private key, got %v", err)
	}
}

func TestSignVerify_PassphraseProtectedKey(t *testing.T) {
	svc := crypto.New()
	passphrase := []byte("correct horse battery staple")
	pair, err := svc.GenerateKeyPair(context.Background(), crypto.KeyPairOptions{Passphrase: passphrase})
	if err != nil {
		t.Fatalf("Failed to generate protected key pair: %v", err)
	}

	data := []byte("protected signing key")
	signature, err := svc.Sign(data, pair.PrivateKey, crypto.SignOptions{Passphrase: passphrase})
	if err != nil {
		t.Fatalf("Failed to sign with passphrase: %v", err)
	}
	ok, err := svc.Verify(data, signature, pair.PublicKey, crypto.VerifyOptions{})
	if err != nil {
		t.Fatalf("Failed to verify: %v", err)
	}
	if !ok {
		t.Error("Expected signature from passphrase-protected key to verify")
	}

	// Wrong passphrase cannot decrypt the key.
	_, err = svc.Sign(data, pair.PrivateKey, crypto.SignOptions{Passphrase: []byte("wrong")})
	if !errors.Is(err, crypto.ErrKeyFormat) {
		t.Errorf("Expected ErrKeyFormat for wrong passphrase, got %v", err)
	}
}

func TestSignToString_VerifyString(t *testing.T) {
	svc := crypto.New()
	pair, err := svc.GenerateKeyPair(context.Background(), crypto.KeyPairOptions{})
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	data := []byte("textual signature transport")
	signature, err := svc.SignToString(data, pair.PrivateKey, crypto.SignOptions{Encoding: crypto.EncodingBase64URL})
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}

	ok, err := svc.VerifyString(data, signature, pair.PublicKey, crypto.VerifyOptions{SignatureEncoding: crypto.EncodingBase64URL})
	if err != nil {
		t.Fatalf("Failed to verify: %v", err)
	}
	if !ok {
		t.Error("Expected encoded signature round trip to verify")
	}

	ok, err = svc.VerifyString(data, "!!not-base64url!!", pair.PublicKey, crypto.VerifyOptions{SignatureEncoding: crypto.EncodingBase64URL})
	if err != nil {
		t.Fatalf("Unexpected error for undecodable signature: %v", err)
	}
	if ok {
		t.Error("Expected undecodable signature to fail verification")
	}
}
