// kdf.go: Key derivation for producing algorithm-sized key material from
// passwords and salts.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// Default Argon2id parameters. They balance security and derivation time
// for interactive use.
const (
	// DefaultKDFTime is the default Argon2id iteration count.
	DefaultKDFTime = 3

	// DefaultKDFMemory is the default Argon2id memory usage in MB.
	DefaultKDFMemory = 64

	// DefaultKDFThreads is the default Argon2id parallelism.
	DefaultKDFThreads = 4
)

// KDFParams customizes Argon2id derivation. Zero fields fall back to the
// package defaults.
type KDFParams struct {
	// Time is the iteration count. Zero means DefaultKDFTime.
	Time uint32

	// Memory is the memory usage in MB. Zero means DefaultKDFMemory.
	Memory uint32

	// Threads is the parallelism. Zero means DefaultKDFThreads.
	Threads uint8
}

// DeriveKey derives key material from a password and salt using Argon2id.
//
// The derived key has exactly keyLen bytes, so callers can size it to the
// symmetric algorithm they intend to use (32 for AES-256). Pass nil params
// for the secure defaults.
//
// Example:
//
//	salt, _ := crypto.RandomBytes(16)
//	key, err := crypto.DeriveKey([]byte("passphrase"), salt, 32, nil)
func DeriveKey(password, salt []byte, keyLen int, params *KDFParams) ([]byte, error) {
	if len(password) == 0 {
		return nil, invalidInput("password cannot be empty")
	}
	if len(salt) == 0 {
		return nil, invalidInput("salt cannot be empty")
	}
	if keyLen <= 0 {
		return nil, invalidInput("key length must be positive")
	}

	time := uint32(DefaultKDFTime)
	memory := uint32(DefaultKDFMemory * 1024)
	threads := uint8(DefaultKDFThreads)
	if params != nil {
		if params.Time > 0 {
			time = params.Time
		}
		if params.Memory > 0 {
			memory = params.Memory * 1024
		}
		if params.Threads > 0 {
			threads = params.Threads
		}
	}

	// Conversions are safe: keyLen is validated positive above.
	return argon2.IDKey(password, salt, time, memory, threads, uint32(keyLen)), nil // #nosec G115
}

// DeriveKeyDefault derives key material using Argon2id with the package
// defaults. Equivalent to DeriveKey with nil params.
func DeriveKeyDefault(password, salt []byte, keyLen int) ([]byte, error) {
	return DeriveKey(password, salt, keyLen, nil)
}

// DeriveKeyPBKDF2 derives key material using PBKDF2-SHA256. Kept for
// interop with systems that cannot use Argon2id; prefer DeriveKey for new
// deployments. At least 100000 iterations are recommended.
func DeriveKeyPBKDF2(password, salt []byte, iterations, keyLen int) ([]byte, error) {
	if len(password) == 0 {
		return nil, invalidInput("password cannot be empty")
	}
	if len(salt) == 0 {
		return nil, invalidInput("salt cannot be empty")
	}
	if iterations <= 0 {
		return nil, invalidInput("iterations must be positive")
	}
	if keyLen <= 0 {
		return nil, invalidInput("key length must be positive")
	}
	return pbkdf2.Key(password, salt, iterations, keyLen, sha256.New), nil
}
