// algorithm.go: Algorithm and encoding catalogs for the cryptographic engines.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	stdcrypto "crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/md5"  // #nosec G501 -- exposed for legacy interop, not recommended for new callers
	"crypto/sha1" // #nosec G505 -- exposed for legacy interop, not recommended for new callers
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
)

// Algorithm identifies a supported symmetric cipher algorithm and mode.
// The string values follow OpenSSL naming conventions.
type Algorithm string

// Supported symmetric algorithms.
const (
	// AES256GCM is AES-256 in Galois/Counter Mode. This is the default and
	// the only AEAD mode: encryption produces a 16-byte authentication tag
	// that decryption must verify before returning any plaintext.
	AES256GCM Algorithm = "aes-256-gcm"

	// AES256CBC is AES-256 in CBC mode with PKCS#7 padding.
	AES256CBC Algorithm = "aes-256-cbc"

	// AES192CBC is AES-192 in CBC mode with PKCS#7 padding.
	AES192CBC Algorithm = "aes-192-cbc"

	// AES128CBC is AES-128 in CBC mode with PKCS#7 padding.
	AES128CBC Algorithm = "aes-128-cbc"

	// DES is single DES in CBC mode. Retained for legacy interop only.
	DES Algorithm = "des"

	// TripleDES is three-key triple DES (EDE) in CBC mode. Legacy interop only.
	TripleDES Algorithm = "3des"
)

// GCMTagSize is the authentication tag length in bytes for AEAD algorithms.
const GCMTagSize = 16

// cipherSpec holds the fixed per-algorithm parameters. Lengths are never
// inferred from input buffer sizes; this table is the single source of truth.
type cipherSpec struct {
	keySize  int  // required key length in bytes
	ivSize   int  // fixed IV length in bytes
	tagSize  int  // authentication tag length in bytes, 0 for non-AEAD modes
	aead     bool // true for authenticated encryption modes
	newBlock func(key []byte) (cipher.Block, error)
}

var cipherSpecs = map[Algorithm]cipherSpec{
	AES256GCM: {keySize: 32, ivSize: 16, tagSize: GCMTagSize, aead: true, newBlock: aes.NewCipher},
	AES256CBC: {keySize: 32, ivSize: 16, newBlock: aes.NewCipher},
	AES192CBC: {keySize: 24, ivSize: 16, newBlock: aes.NewCipher},
	AES128CBC: {keySize: 16, ivSize: 16, newBlock: aes.NewCipher},
	DES:       {keySize: 8, ivSize: 8, newBlock: des.NewCipher},           // #nosec G405 -- legacy interop
	TripleDES: {keySize: 24, ivSize: 8, newBlock: des.NewTripleDESCipher}, // #nosec G405 -- legacy interop
}

// lookupCipherSpec resolves the parameter table entry for an algorithm.
func lookupCipherSpec(alg Algorithm) (cipherSpec, error) {
	spec, ok := cipherSpecs[alg]
	if !ok {
		return cipherSpec{}, unsupportedAlgorithm(string(alg))
	}
	return spec, nil
}

// Supported reports whether alg is a known symmetric algorithm.
func (a Algorithm) Supported() bool {
	_, ok := cipherSpecs[a]
	return ok
}

// AEAD reports whether alg is an authenticated encryption mode.
// Unknown algorithms report false.
func (a Algorithm) AEAD() bool {
	return cipherSpecs[a].aead
}

// KeySize returns the required key length in bytes for alg.
// It returns an error for unsupported algorithms.
func (a Algorithm) KeySize() (int, error) {
	spec, err := lookupCipherSpec(a)
	if err != nil {
		return 0, err
	}
	return spec.keySize, nil
}

// IVSize returns the fixed IV length in bytes for alg: 16 bytes for all
// AES variants (GCM included), 8 bytes for DES and triple DES.
// It returns an error for unsupported algorithms.
func (a Algorithm) IVSize() (int, error) {
	spec, err := lookupCipherSpec(a)
	if err != nil {
		return 0, err
	}
	return spec.ivSize, nil
}

// HashAlgorithm identifies a supported digest algorithm for Hash and HMAC.
type HashAlgorithm string

// Supported digest algorithms.
const (
	// SHA256 is the default digest algorithm.
	SHA256 HashAlgorithm = "sha-256"

	// SHA512 is SHA-2 with a 512-bit digest.
	SHA512 HashAlgorithm = "sha-512"

	// SHA1 is retained for legacy interop only.
	SHA1 HashAlgorithm = "sha-1"

	// MD5 is retained for legacy interop only.
	MD5 HashAlgorithm = "md5"
)

var hashProviders = map[HashAlgorithm]func() hash.Hash{
	SHA256: sha256.New,
	SHA512: sha512.New,
	SHA1:   sha1.New, // #nosec G401 -- legacy interop
	MD5:    md5.New,  // #nosec G401 -- legacy interop
}

// newHash resolves the hash constructor for alg.
func newHash(alg HashAlgorithm) (func() hash.Hash, error) {
	provider, ok := hashProviders[alg]
	if !ok {
		return nil, unsupportedAlgorithm(string(alg))
	}
	return provider, nil
}

// Supported reports whether alg is a known digest algorithm.
func (a HashAlgorithm) Supported() bool {
	_, ok := hashProviders[a]
	return ok
}

// SignatureAlgorithm identifies a supported RSA signature scheme.
type SignatureAlgorithm string

// Supported signature algorithms. Both use RSASSA-PKCS1-v1_5, so a
// signature is deterministic for a fixed (data, key, algorithm) triple.
const (
	// RSASHA256 is RSA PKCS#1 v1.5 over SHA-256. This is the default.
	RSASHA256 SignatureAlgorithm = "rsa-sha256"

	// RSASHA512 is RSA PKCS#1 v1.5 over SHA-512.
	RSASHA512 SignatureAlgorithm = "rsa-sha512"
)

var signatureHashes = map[SignatureAlgorithm]stdcrypto.Hash{
	RSASHA256: stdcrypto.SHA256,
	RSASHA512: stdcrypto.SHA512,
}

// signatureHash resolves the digest used by a signature algorithm.
func signatureHash(alg SignatureAlgorithm) (stdcrypto.Hash, error) {
	h, ok := signatureHashes[alg]
	if !ok {
		return 0, unsupportedAlgorithm(string(alg))
	}
	return h, nil
}

// Supported reports whether alg is a known signature algorithm.
func (a SignatureAlgorithm) Supported() bool {
	_, ok := signatureHashes[a]
	return ok
}

// Encoding names a presentation encoding for keys, IVs, digests, and
// signatures. Encodings never change cryptographic meaning; they only
// control how byte sequences cross a text boundary.
type Encoding string

// Supported encodings.
const (
	// EncodingHex is lowercase hexadecimal.
	EncodingHex Encoding = "hex"

	// EncodingBase64 is standard base64 with padding.
	EncodingBase64 Encoding = "base64"

	// EncodingBase64URL is URL-safe base64 without padding.
	EncodingBase64URL Encoding = "base64url"

	// EncodingUTF8 passes bytes through as a string without transformation.
	EncodingUTF8 Encoding = "utf8"

	// EncodingRaw is an alias of EncodingUTF8 kept for callers that think
	// in terms of raw bytes rather than text.
	EncodingRaw Encoding = "raw"
)

// EncodeToString renders b using the encoding.
// It returns an error for unsupported encodings.
func (e Encoding) EncodeToString(b []byte) (string, error) {
	switch e {
	case EncodingHex:
		return hex.EncodeToString(b), nil
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(b), nil
	case EncodingBase64URL:
		return base64.RawURLEncoding.EncodeToString(b), nil
	case EncodingUTF8, EncodingRaw:
		return string(b), nil
	default:
		return "", invalidInput(fmt.Sprintf("unsupported encoding %q", string(e)))
	}
}

// DecodeString is the inverse of EncodeToString.
func (e Encoding) DecodeString(s string) ([]byte, error) {
	switch e {
	case EncodingHex:
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, wrapInvalidInput(err, "failed to decode hex input")
		}
		return b, nil
	case EncodingBase64:
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, wrapInvalidInput(err, "failed to decode base64 input")
		}
		return b, nil
	case EncodingBase64URL:
		b, err := base64.RawURLEncoding.DecodeString(s)
		if err != nil {
			return nil, wrapInvalidInput(err, "failed to decode base64url input")
		}
		return b, nil
	case EncodingUTF8, EncodingRaw:
		return []byte(s), nil
	default:
		return nil, invalidInput(fmt.Sprintf("unsupported encoding %q", string(e)))
	}
}
