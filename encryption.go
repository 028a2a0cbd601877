// encryption.go: The symmetric cipher engine, authenticated (GCM) and
// block (CBC/DES) encryption behind one table-driven surface.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/cipher"
	"fmt"
	"time"
)

// EncryptOptions configures a single Encrypt call. Every recognized
// option is a field here; there are no dynamically merged option maps.
type EncryptOptions struct {
	// Algorithm selects the symmetric algorithm. Empty uses the Service
	// default (AES256GCM unless configured otherwise).
	Algorithm Algorithm

	// IV, when non-nil, is used instead of a freshly generated IV. It must
	// have the exact length the algorithm table prescribes.
	//
	// Reusing an IV under the same key breaks confidentiality for CBC and
	// destroys both confidentiality and authenticity for GCM. The engine
	// honors a caller-supplied IV without enforcing uniqueness; supplying
	// one for an AEAD algorithm is the caller's risk.
	IV []byte
}

// DecryptOptions configures a single Decrypt call.
type DecryptOptions struct {
	// Algorithm selects the symmetric algorithm. Empty uses the Service
	// default. It must match the algorithm the data was encrypted with.
	Algorithm Algorithm

	// AuthTag is the 16-byte authentication tag produced by Encrypt.
	// Mandatory for AEAD algorithms, ignored for block modes.
	AuthTag []byte

	// OutputEncoding controls how DecryptString renders the plaintext.
	// Empty means utf8. Decrypt itself always returns raw bytes.
	OutputEncoding Encoding
}

// EncryptionResult is the complete output of one Encrypt call. Decrypt
// consumes it whole: IV and AuthTag (when present) are required inputs,
// not optional hints.
type EncryptionResult struct {
	// Ciphertext is the encrypted payload without IV or tag framing.
	Ciphertext []byte

	// IV is the initialization vector the encryption ran with.
	IV []byte

	// AuthTag is the 16-byte GCM authentication tag. Nil for block modes.
	AuthTag []byte

	// Algorithm is the algorithm that produced this result.
	Algorithm Algorithm
}

// Encrypt encrypts data with the given key.
//
// The key length must match the algorithm exactly (32/24/16 bytes for
// AES-256/192/128, 8 for DES, 24 for triple DES). A fresh random IV is
// generated unless options supply one. For AES-256-GCM the result carries
// a 16-byte AuthTag that the caller must keep alongside the ciphertext;
// for CBC and DES modes AuthTag is nil and the plaintext is PKCS#7 padded
// before encryption.
//
// Empty plaintext is supported: GCM produces an empty ciphertext with a
// valid tag, block modes produce one padding block.
//
// Example:
//
//	result, err := svc.Encrypt(data, key, crypto.EncryptOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	// Persist result.Ciphertext, result.IV, and result.AuthTag together.
func (s *Service) Encrypt(data, key []byte, opts EncryptOptions) (result *EncryptionResult, err error) {
	start := time.Now()
	alg := s.resolveAlgorithm(opts.Algorithm)
	defer func() {
		outSize := 0
		if result != nil {
			outSize = len(result.Ciphertext)
		}
		s.report(OpEncrypt, string(alg), len(data), outSize, start, err)
	}()

	spec, err := lookupCipherSpec(alg)
	if err != nil {
		return nil, err
	}
	if err = validateKeySize(key, spec); err != nil {
		return nil, err
	}

	iv := opts.IV
	if iv == nil {
		if iv, err = RandomBytes(spec.ivSize); err != nil {
			return nil, err
		}
	} else if len(iv) != spec.ivSize {
		return nil, invalidInput(fmt.Sprintf("iv must be %d bytes for %s, got %d", spec.ivSize, alg, len(iv)))
	}

	if spec.aead {
		gcm, gcmErr := s.cachedAEAD(key, spec)
		if gcmErr != nil {
			return nil, gcmErr
		}
		sealed := gcm.Seal(nil, iv, data, nil) // #nosec G407 -- iv comes from crypto/rand unless the caller overrides it
		split := len(sealed) - spec.tagSize
		return &EncryptionResult{
			Ciphertext: sealed[:split:split],
			IV:         iv,
			AuthTag:    sealed[split:],
			Algorithm:  alg,
		}, nil
	}

	block, blockErr := spec.newBlock(key)
	if blockErr != nil {
		return nil, wrapInvalidInput(blockErr, "failed to create cipher")
	}
	padded := pkcs7Pad(data, block.BlockSize())
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return &EncryptionResult{
		Ciphertext: ciphertext,
		IV:         iv,
		Algorithm:  alg,
	}, nil
}

// Decrypt reverses Encrypt.
//
// For AEAD algorithms the AuthTag option is mandatory and is verified
// before any plaintext is returned: a missing tag is ErrInvalidInput, a
// mismatched or tampered tag is ErrAuthenticationFailed, and no partial
// plaintext is ever surfaced. For block modes the ciphertext must be a
// whole number of blocks and malformed padding surfaces as ErrInvalidInput.
func (s *Service) Decrypt(ciphertext, key, iv []byte, opts DecryptOptions) (plaintext []byte, err error) {
	start := time.Now()
	alg := s.resolveAlgorithm(opts.Algorithm)
	defer func() {
		s.report(OpDecrypt, string(alg), len(ciphertext), len(plaintext), start, err)
	}()

	spec, err := lookupCipherSpec(alg)
	if err != nil {
		return nil, err
	}
	if err = validateKeySize(key, spec); err != nil {
		return nil, err
	}
	if len(iv) != spec.ivSize {
		return nil, invalidInput(fmt.Sprintf("iv must be %d bytes for %s, got %d", spec.ivSize, alg, len(iv)))
	}

	if spec.aead {
		if len(opts.AuthTag) != spec.tagSize {
			return nil, invalidInput(fmt.Sprintf("authTag must be %d bytes for %s, got %d", spec.tagSize, alg, len(opts.AuthTag)))
		}
		gcm, gcmErr := s.cachedAEAD(key, spec)
		if gcmErr != nil {
			return nil, gcmErr
		}
		sealed := make([]byte, 0, len(ciphertext)+spec.tagSize)
		sealed = append(sealed, ciphertext...)
		sealed = append(sealed, opts.AuthTag...)
		plaintext, err = gcm.Open(nil, iv, sealed, nil)
		if err != nil {
			plaintext = nil
			return nil, authenticationFailed(err)
		}
		return plaintext, nil
	}

	block, blockErr := spec.newBlock(key)
	if blockErr != nil {
		return nil, wrapInvalidInput(blockErr, "failed to create cipher")
	}
	bs := block.BlockSize()
	if len(ciphertext) == 0 || len(ciphertext)%bs != 0 {
		return nil, invalidInput(fmt.Sprintf("ciphertext length %d is not a positive multiple of the %d-byte block size", len(ciphertext), bs))
	}
	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)
	plaintext, err = pkcs7Unpad(padded, bs)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

// EncryptString encrypts a plaintext string. It is a convenience wrapper
// around Encrypt that treats the string as UTF-8 bytes.
func (s *Service) EncryptString(plaintext string, key []byte, opts EncryptOptions) (*EncryptionResult, error) {
	return s.Encrypt([]byte(plaintext), key, opts)
}

// DecryptString decrypts and renders the plaintext with the OutputEncoding
// option (utf8 when empty). An unsupported encoding fails after the
// already-counted decrypt; the failure is reported via the errors counter
// and observer.
func (s *Service) DecryptString(ciphertext, key, iv []byte, opts DecryptOptions) (string, error) {
	plaintext, err := s.Decrypt(ciphertext, key, iv, opts)
	if err != nil {
		return "", err
	}
	enc := opts.OutputEncoding
	if enc == "" {
		enc = EncodingUTF8
	}
	rendered, err := enc.EncodeToString(plaintext)
	if err != nil {
		s.reportError(OpDecrypt, string(s.resolveAlgorithm(opts.Algorithm)), err)
		return "", err
	}
	return rendered, nil
}

// resolveAlgorithm applies the Service default for an empty algorithm option.
func (s *Service) resolveAlgorithm(alg Algorithm) Algorithm {
	if alg == "" {
		return s.defaultAlg
	}
	return alg
}

func validateKeySize(key []byte, spec cipherSpec) error {
	if len(key) == 0 {
		return invalidInput("key cannot be empty")
	}
	if len(key) != spec.keySize {
		return invalidInput(fmt.Sprintf("key must be %d bytes, got %d", spec.keySize, len(key)))
	}
	return nil
}

// pkcs7Pad appends PKCS#7 padding up to the next block boundary. Input
// that is already block-aligned gains one full padding block, so padding
// is always present and unambiguous.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// pkcs7Unpad strips PKCS#7 padding, validating every padding byte.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, invalidInput("padded data length is not a multiple of the block size")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize {
		return nil, invalidInput("malformed padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, invalidInput("malformed padding")
		}
	}
	return data[:len(data)-padLen], nil
}
