// errors.go: Typed error surface for the cryptographic engines.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Public sentinel errors. Every failure returned by this package wraps
// exactly one of these, so callers can classify outcomes with errors.Is()
// without string matching:
//
//   - ErrInvalidInput: "your request is malformed" (wrong sizes, empty
//     keys, bad padding, undecodable encodings).
//   - ErrUnsupportedAlgorithm: the algorithm name, key length, or IV
//     length is not in the supported set.
//   - ErrAuthenticationFailed: "this data does not belong to this key".
//     GCM tag verification failed. No plaintext is ever returned alongside it.
//   - ErrKeyFormat: malformed PEM or key material passed to the signature
//     engine.
//   - ErrIO: a file or stream read/write failed in the stream adapter.
var (
	// ErrInvalidInput is returned for malformed inputs: wrong type or size,
	// empty or undersized keys and IVs, and malformed padding on decrypt.
	ErrInvalidInput = errors.New("kryptos: invalid input")

	// ErrUnsupportedAlgorithm is returned for unknown algorithm names or
	// unsupported key/IV lengths for the chosen algorithm.
	ErrUnsupportedAlgorithm = errors.New("kryptos: unsupported algorithm")

	// ErrAuthenticationFailed is returned when GCM tag verification fails.
	// Decryption fails closed: no partial plaintext is surfaced.
	ErrAuthenticationFailed = errors.New("kryptos: authentication failed")

	// ErrKeyFormat is returned for malformed PEM or key material passed to
	// Sign, Verify, or GenerateKeyPair.
	ErrKeyFormat = errors.New("kryptos: malformed key material")

	// ErrIO is returned when a file or stream operation fails to read or write.
	ErrIO = errors.New("kryptos: i/o failure")
)

// Error codes for rich error handling via github.com/agilira/go-errors.
const (
	ErrCodeInvalidInput         = "CRYPTO_INVALID_INPUT"
	ErrCodeUnsupportedAlgorithm = "CRYPTO_UNSUPPORTED_ALGORITHM"
	ErrCodeAuthFailed           = "CRYPTO_AUTH_FAILED"
	ErrCodeKeyFormat            = "CRYPTO_KEY_FORMAT"
	ErrCodeIO                   = "CRYPTO_IO"
)

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, goerrors.New(ErrCodeInvalidInput, msg))
}

func wrapInvalidInput(err error, msg string) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, goerrors.Wrap(err, ErrCodeInvalidInput, msg))
}

func unsupportedAlgorithm(name string) error {
	return fmt.Errorf("%w: %w", ErrUnsupportedAlgorithm,
		goerrors.New(ErrCodeUnsupportedAlgorithm, fmt.Sprintf("unsupported algorithm %q", name)))
}

func authenticationFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrAuthenticationFailed,
		goerrors.Wrap(err, ErrCodeAuthFailed, "GCM authentication failed (wrong key, tampered data, or tag mismatch)"))
}

func keyFormat(msg string) error {
	return fmt.Errorf("%w: %w", ErrKeyFormat, goerrors.New(ErrCodeKeyFormat, msg))
}

func wrapKeyFormat(err error, msg string) error {
	return fmt.Errorf("%w: %w", ErrKeyFormat, goerrors.Wrap(err, ErrCodeKeyFormat, msg))
}

func wrapIO(err error, msg string) error {
	return fmt.Errorf("%w: %w", ErrIO, goerrors.Wrap(err, ErrCodeIO, msg))
}
