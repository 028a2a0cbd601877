// Package crypto is a cryptographic utility core for Go applications.
//
// It bundles the primitives that business services usually need behind a
// single explicitly constructed Service:
//   - Symmetric authenticated encryption (AES-256-GCM) and legacy block
//     modes (AES-CBC, DES, 3DES) with table-driven algorithm parameters
//   - Cryptographic hashing and HMAC (SHA-256/512, SHA-1, MD5)
//   - RSA key pair generation and PKCS#1 v1.5 digital signatures with
//     optional passphrase-encrypted private keys
//   - Stream and file encryption with a fixed IV/tag/ciphertext layout
//   - Constant-time comparison for secrets
//   - Argon2id and PBKDF2 key derivation
//   - Per-instance operation counters and a pluggable observer channel
//
// # Quick Start
//
//	svc := crypto.New()
//
//	key, err := svc.GenerateKey(256)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.Encrypt([]byte("sensitive data"), key, crypto.EncryptOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	plaintext, err := svc.Decrypt(result.Ciphertext, key, result.IV, crypto.DecryptOptions{
//		AuthTag: result.AuthTag,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// The EncryptionResult must be kept whole: the IV and, for GCM, the
// 16-byte authentication tag are required inputs to Decrypt.
//
// # Observability
//
// Every operation, successful or failed, is counted in the Service's
// stats and forwarded to the injected Observer before the result reaches
// the caller:
//
//	svc := crypto.New(crypto.WithObserver(crypto.NewLogObserver(nil)))
//	// ... operations ...
//	snapshot := svc.Stats()
//	fmt.Println(snapshot.Encrypt, snapshot.Errors)
//
// # Error Handling
//
// All failures wrap one of five sentinel errors, so callers can tell
// "your data is malformed" from "this data does not belong to this key":
//
//	_, err := svc.Decrypt(tampered, key, iv, crypto.DecryptOptions{AuthTag: tag})
//	if errors.Is(err, crypto.ErrAuthenticationFailed) {
//		// tampering detected; no plaintext was surfaced
//	}
//
// For rich error details the library integrates with
// github.com/agilira/go-errors.
//
// # Security Considerations
//
//   - AES-256-GCM is the default algorithm; CBC, DES, and 3DES exist for
//     interop with legacy artifacts only.
//   - IVs are generated from crypto/rand for every encryption. A caller
//     may supply its own IV, at its own risk: nonce reuse under GCM
//     destroys both confidentiality and authenticity.
//   - GCM decryption fails closed. A bad tag yields ErrAuthenticationFailed
//     and never partial plaintext.
//   - The core never persists key material; use Zeroize to wipe keys after
//     use and KeyFingerprint to reference them in logs.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package crypto
