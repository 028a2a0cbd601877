// signature.go: The signature engine, RSA key pair generation and
// PKCS#1 v1.5 sign/verify over PEM-encoded keys.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"fmt"
	"time"

	"go.step.sm/crypto/pemutil"
)

// DefaultModulusLength is the RSA modulus size in bits used when
// KeyPairOptions leaves ModulusLength zero.
const DefaultModulusLength = 2048

// KeyPair holds a freshly generated RSA key pair, PEM-encoded. The two
// halves are generated together; neither is derivable from the other
// through this API.
type KeyPair struct {
	// PublicKey is the PKIX "PUBLIC KEY" PEM block.
	PublicKey []byte

	// PrivateKey is the PKCS#8 "PRIVATE KEY" PEM block, encrypted with the
	// passphrase when one was supplied to GenerateKeyPair. Protecting an
	// unencrypted private key further is the caller's responsibility.
	PrivateKey []byte
}

// KeyPairOptions configures GenerateKeyPair.
type KeyPairOptions struct {
	// ModulusLength is the RSA modulus size in bits. Zero means
	// DefaultModulusLength. Supported range is 1024 to 8192; values below
	// 2048 are acceptable only for tests and legacy interop.
	ModulusLength int

	// Passphrase, when non-empty, encrypts the private key PEM at rest.
	Passphrase []byte
}

// SignOptions configures Sign.
type SignOptions struct {
	// Algorithm selects the signature scheme. Empty uses the Service
	// default (RSASHA256 unless configured otherwise).
	Algorithm SignatureAlgorithm

	// Passphrase decrypts an encrypted private key PEM.
	Passphrase []byte

	// Encoding controls how SignToString renders the signature.
	// Empty means base64. Sign itself always returns raw bytes.
	Encoding Encoding
}

// VerifyOptions configures Verify.
type VerifyOptions struct {
	// Algorithm selects the signature scheme. Empty uses the Service
	// default. It must match the algorithm the signature was created with.
	Algorithm SignatureAlgorithm

	// SignatureEncoding, when non-empty, tells VerifyString how to decode
	// a textual signature.
	SignatureEncoding Encoding
}

// GenerateKeyPair generates an RSA key pair.
//
// Key generation is CPU-bound and can take noticeable time for large
// moduli; callers that must not block should run it on their own
// goroutine. The context is checked before and after the expensive
// generation step so a cancelled caller does not pay for PEM encoding.
// Cancellation returns the context's own error (context.Canceled or
// context.DeadlineExceeded) unwrapped, not a package sentinel, so the
// standard context matching idioms work directly.
//
// Increments the keyGenerations counter.
func (s *Service) GenerateKeyPair(ctx context.Context, opts KeyPairOptions) (pair *KeyPair, err error) {
	start := time.Now()
	defer func() {
		s.report(OpKeyGeneration, "rsa", 0, 0, start, err)
	}()

	bits := opts.ModulusLength
	if bits == 0 {
		bits = DefaultModulusLength
	}
	if bits < 1024 || bits > 8192 {
		return nil, invalidInput(fmt.Sprintf("modulus length must be between 1024 and 8192 bits, got %d", bits))
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, wrapKeyFormat(err, "RSA key generation failed")
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	privOpts := []pemutil.Options{pemutil.WithPKCS8(true)}
	if len(opts.Passphrase) > 0 {
		privOpts = append(privOpts, pemutil.WithPassword(opts.Passphrase))
	}
	privBlock, err := pemutil.Serialize(priv, privOpts...)
	if err != nil {
		return nil, wrapKeyFormat(err, "failed to serialize private key")
	}
	pubBlock, err := pemutil.Serialize(priv.Public())
	if err != nil {
		return nil, wrapKeyFormat(err, "failed to serialize public key")
	}

	return &KeyPair{
		PublicKey:  pem.EncodeToMemory(pubBlock),
		PrivateKey: pem.EncodeToMemory(privBlock),
	}, nil
}

// Sign signs data with a PEM-encoded RSA private key using PKCS#1 v1.5.
// The signature is deterministic for a fixed (data, key, algorithm) triple.
// Malformed or wrongly decrypted key material is ErrKeyFormat.
func (s *Service) Sign(data, privateKeyPEM []byte, opts SignOptions) (signature []byte, err error) {
	start := time.Now()
	alg := s.resolveSignature(opts.Algorithm)
	defer func() {
		s.report(OpSign, string(alg), len(data), len(signature), start, err)
	}()

	h, err := signatureHash(alg)
	if err != nil {
		return nil, err
	}
	priv, err := parseRSAPrivateKey(privateKeyPEM, opts.Passphrase)
	if err != nil {
		return nil, err
	}

	hasher := h.New()
	hasher.Write(data)
	signature, err = rsa.SignPKCS1v15(rand.Reader, priv, h, hasher.Sum(nil))
	if err != nil {
		return nil, wrapKeyFormat(err, "signing failed")
	}
	return signature, nil
}

// SignToString signs data and renders the signature with the Encoding
// option (base64 when empty).
func (s *Service) SignToString(data, privateKeyPEM []byte, opts SignOptions) (string, error) {
	signature, err := s.Sign(data, privateKeyPEM, opts)
	if err != nil {
		return "", err
	}
	enc := opts.Encoding
	if enc == "" {
		enc = EncodingBase64
	}
	rendered, err := enc.EncodeToString(signature)
	if err != nil {
		s.reportError(OpSign, string(s.resolveSignature(opts.Algorithm)), err)
		return "", err
	}
	return rendered, nil
}

// Verify checks a PKCS#1 v1.5 signature against a PEM-encoded RSA public
// key. A mismatched or tampered signature returns (false, nil), never an
// error; errors are reserved for structurally invalid inputs such as
// malformed PEM or an unsupported algorithm.
func (s *Service) Verify(data, signature, publicKeyPEM []byte, opts VerifyOptions) (ok bool, err error) {
	start := time.Now()
	alg := s.resolveSignature(opts.Algorithm)
	defer func() {
		s.report(OpVerify, string(alg), len(data), 0, start, err)
	}()

	h, err := signatureHash(alg)
	if err != nil {
		return false, err
	}
	pub, err := parseRSAPublicKey(publicKeyPEM)
	if err != nil {
		return false, err
	}

	hasher := h.New()
	hasher.Write(data)
	if rsa.VerifyPKCS1v15(pub, h, hasher.Sum(nil), signature) != nil {
		return false, nil
	}
	return true, nil
}

// VerifyString decodes a textual signature with SignatureEncoding (base64
// when empty) and verifies it. Undecodable signatures return (false, nil):
// a signature that cannot even be decoded certainly does not verify.
func (s *Service) VerifyString(data []byte, signature string, publicKeyPEM []byte, opts VerifyOptions) (bool, error) {
	enc := opts.SignatureEncoding
	if enc == "" {
		enc = EncodingBase64
	}
	raw, err := enc.DecodeString(signature)
	if err != nil {
		return false, nil
	}
	return s.Verify(data, raw, publicKeyPEM, opts)
}

func (s *Service) resolveSignature(alg SignatureAlgorithm) SignatureAlgorithm {
	if alg == "" {
		return s.defaultSig
	}
	return alg
}

func parseRSAPrivateKey(privateKeyPEM, passphrase []byte) (*rsa.PrivateKey, error) {
	if len(privateKeyPEM) == 0 {
		return nil, keyFormat("private key PEM cannot be empty")
	}
	var opts []pemutil.Options
	if len(passphrase) > 0 {
		opts = append(opts, pemutil.WithPassword(passphrase))
	}
	key, err := pemutil.Parse(privateKeyPEM, opts...)
	if err != nil {
		return nil, wrapKeyFormat(err, "failed to parse private key PEM")
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, keyFormat(fmt.Sprintf("expected an RSA private key, got %T", key))
	}
	return priv, nil
}

func parseRSAPublicKey(publicKeyPEM []byte) (*rsa.PublicKey, error) {
	if len(publicKeyPEM) == 0 {
		return nil, keyFormat("public key PEM cannot be empty")
	}
	key, err := pemutil.Parse(publicKeyPEM)
	if err != nil {
		return nil, wrapKeyFormat(err, "failed to parse public key PEM")
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, keyFormat(fmt.Sprintf("expected an RSA public key, got %T", key))
	}
	return pub, nil
}
