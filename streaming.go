// streaming.go: The stream and file adapter. Encrypts and decrypts byte
// streams and files, framing the IV (and auth tag, when present) alongside
// the ciphertext.
//
// On-disk layout, byte-exact for interop with previously encrypted
// artifacts: [IV][auth tag, GCM only][ciphertext]. No version header and
// no length prefix; the ciphertext is the rest of the file.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	goerrors "github.com/agilira/go-errors"
)

// FileEncryptionReport summarizes one EncryptFile call.
type FileEncryptionReport struct {
	// Algorithm is the algorithm the file was encrypted with.
	Algorithm Algorithm

	// OriginalSize is the plaintext file size in bytes.
	OriginalSize int64

	// EncryptedSize is the written file size in bytes, framing included.
	EncryptedSize int64
}

// FileDecryptionReport summarizes one DecryptFile call.
type FileDecryptionReport struct {
	// Algorithm is the algorithm the file was decrypted with.
	Algorithm Algorithm

	// EncryptedSize is the input file size in bytes, framing included.
	EncryptedSize int64

	// DecryptedSize is the recovered plaintext size in bytes.
	DecryptedSize int64
}

// StreamInfo summarizes one stream operation.
type StreamInfo struct {
	// Algorithm is the algorithm the stream ran with.
	Algorithm Algorithm

	// IV is the initialization vector written to the output stream.
	// Nil for DecryptStream, which consumes the IV from the input.
	IV []byte

	// BytesRead is the number of payload bytes consumed from the input.
	BytesRead int64

	// BytesWritten is the number of bytes produced on the output,
	// IV framing included for EncryptStream.
	BytesWritten int64
}

// EncryptFile reads the whole input file, encrypts it in one engine call,
// and writes [IV][auth tag, GCM only][ciphertext] to outputPath, creating
// parent directories as needed.
//
// The encryption itself is counted as one encrypt operation; read/write
// failures surface as ErrIO and are reported to the observer.
func (s *Service) EncryptFile(inputPath, outputPath string, key []byte, opts EncryptOptions) (*FileEncryptionReport, error) {
	alg := s.resolveAlgorithm(opts.Algorithm)

	plaintext, err := os.ReadFile(inputPath) // #nosec G304 -- path is the caller's to choose
	if err != nil {
		err = wrapIO(err, "failed to read input file")
		s.reportError(OpEncrypt, string(alg), err)
		return nil, err
	}

	result, err := s.Encrypt(plaintext, key, opts)
	if err != nil {
		return nil, err
	}

	framed := make([]byte, 0, len(result.IV)+len(result.AuthTag)+len(result.Ciphertext))
	framed = append(framed, result.IV...)
	framed = append(framed, result.AuthTag...)
	framed = append(framed, result.Ciphertext...)

	if err := writeFileWithParents(outputPath, framed); err != nil {
		s.reportError(OpEncrypt, string(alg), err)
		return nil, err
	}

	return &FileEncryptionReport{
		Algorithm:     result.Algorithm,
		OriginalSize:  int64(len(plaintext)),
		EncryptedSize: int64(len(framed)),
	}, nil
}

// DecryptFile reads an encrypted file, splits off the fixed-length IV
// prefix (and, for GCM, the following 16-byte auth tag), decrypts the
// remainder, and writes the plaintext to outputPath, creating parent
// directories as needed.
//
// Authentication failures from the cipher engine propagate unchanged.
func (s *Service) DecryptFile(inputPath, outputPath string, key []byte, opts DecryptOptions) (*FileDecryptionReport, error) {
	alg := s.resolveAlgorithm(opts.Algorithm)
	spec, err := lookupCipherSpec(alg)
	if err != nil {
		s.reportError(OpDecrypt, string(alg), err)
		return nil, err
	}

	framed, err := os.ReadFile(inputPath) // #nosec G304 -- path is the caller's to choose
	if err != nil {
		err = wrapIO(err, "failed to read input file")
		s.reportError(OpDecrypt, string(alg), err)
		return nil, err
	}
	if len(framed) < spec.ivSize+spec.tagSize {
		err = invalidInput(fmt.Sprintf("encrypted file is %d bytes, shorter than its %d-byte framing", len(framed), spec.ivSize+spec.tagSize))
		s.reportError(OpDecrypt, string(alg), err)
		return nil, err
	}

	iv := framed[:spec.ivSize]
	opts.AuthTag = nil
	if spec.aead {
		opts.AuthTag = framed[spec.ivSize : spec.ivSize+spec.tagSize]
	}
	ciphertext := framed[spec.ivSize+spec.tagSize:]

	plaintext, err := s.Decrypt(ciphertext, key, iv, opts)
	if err != nil {
		return nil, err
	}

	if err := writeFileWithParents(outputPath, plaintext); err != nil {
		s.reportError(OpDecrypt, string(alg), err)
		return nil, err
	}

	return &FileDecryptionReport{
		Algorithm:     alg,
		EncryptedSize: int64(len(framed)),
		DecryptedSize: int64(len(plaintext)),
	}, nil
}

// EncryptStream writes the IV to the output, then pipes the input through
// a CBC cipher transform in chunks. The whole payload is never buffered in
// memory; backpressure follows the reader/writer pull model.
//
// AEAD algorithms are rejected: the stream layout carries no trailing tag
// frame, so a GCM stream could never be authenticated on decrypt. Use the
// file operations for authenticated encryption of large payloads.
//
// The caller owns both handles; the adapter never closes them.
func (s *Service) EncryptStream(r io.Reader, w io.Writer, key []byte, opts EncryptOptions) (info *StreamInfo, err error) {
	start := time.Now()
	alg := s.resolveAlgorithm(opts.Algorithm)
	var bytesIn, bytesOut int64
	defer func() {
		s.report(OpEncrypt, string(alg), int(bytesIn), int(bytesOut), start, err)
	}()

	spec, enc, iv, err := s.newStreamCipher(alg, key, opts.IV)
	if err != nil {
		return nil, err
	}
	bs := spec.ivSize // CBC block size equals the IV size for every supported block mode

	if _, err = w.Write(iv); err != nil {
		return nil, wrapIO(err, "failed to write iv to output stream")
	}
	bytesOut += int64(len(iv))

	buf := getChunkBuffer()
	defer putChunkBuffer(buf)
	work := *buf

	// off bytes at the front of work are read but not yet encrypted; the
	// tail below one block is carried until more input or EOF arrives.
	off := 0
	for {
		n, rerr := r.Read(work[off:])
		off += n
		bytesIn += int64(n)

		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return nil, wrapIO(rerr, "failed to read from input stream")
		}

		if full := off - off%bs; full > 0 && rerr == nil {
			enc.CryptBlocks(work[:full], work[:full])
			if _, err = w.Write(work[:full]); err != nil {
				return nil, wrapIO(err, "failed to write to output stream")
			}
			bytesOut += int64(full)
			copy(work, work[full:off])
			off -= full
		}

		if errors.Is(rerr, io.EOF) {
			final := pkcs7Pad(work[:off], bs)
			enc.CryptBlocks(final, final)
			if _, err = w.Write(final); err != nil {
				return nil, wrapIO(err, "failed to write final block to output stream")
			}
			bytesOut += int64(len(final))
			return &StreamInfo{Algorithm: alg, IV: iv, BytesRead: bytesIn, BytesWritten: bytesOut}, nil
		}
	}
}

// DecryptStream reads exactly the IV-length prefix off the input,
// buffering partial reads until that many bytes have arrived, then pipes
// the remaining ciphertext through a CBC decipher transform. The final
// block is held back until EOF so its padding can be stripped.
//
// AEAD algorithms are rejected, matching EncryptStream.
func (s *Service) DecryptStream(r io.Reader, w io.Writer, key []byte, opts DecryptOptions) (info *StreamInfo, err error) {
	start := time.Now()
	alg := s.resolveAlgorithm(opts.Algorithm)
	var bytesIn, bytesOut int64
	defer func() {
		s.report(OpDecrypt, string(alg), int(bytesIn), int(bytesOut), start, err)
	}()

	spec, err := lookupCipherSpec(alg)
	if err != nil {
		return nil, err
	}
	if spec.aead {
		return nil, streamModeUnsupported(alg)
	}
	if err = validateKeySize(key, spec); err != nil {
		return nil, err
	}

	iv := make([]byte, spec.ivSize)
	if _, err = io.ReadFull(r, iv); err != nil {
		return nil, wrapIO(err, "failed to read iv prefix from input stream")
	}
	bytesIn += int64(len(iv))

	block, blockErr := spec.newBlock(key)
	if blockErr != nil {
		return nil, wrapInvalidInput(blockErr, "failed to create cipher")
	}
	dec := cipher.NewCBCDecrypter(block, iv)
	bs := block.BlockSize()

	buf := getChunkBuffer()
	defer putChunkBuffer(buf)
	work := *buf

	off := 0
	for {
		n, rerr := r.Read(work[off:])
		off += n
		bytesIn += int64(n)

		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return nil, wrapIO(rerr, "failed to read from input stream")
		}

		if errors.Is(rerr, io.EOF) {
			if off == 0 || off%bs != 0 {
				return nil, invalidInput(fmt.Sprintf("ciphertext stream length is not a positive multiple of the %d-byte block size", bs))
			}
			dec.CryptBlocks(work[:off], work[:off])
			plain, padErr := pkcs7Unpad(work[:off], bs)
			if padErr != nil {
				return nil, padErr
			}
			if _, err = w.Write(plain); err != nil {
				return nil, wrapIO(err, "failed to write to output stream")
			}
			bytesOut += int64(len(plain))
			return &StreamInfo{Algorithm: alg, BytesRead: bytesIn, BytesWritten: bytesOut}, nil
		}

		// Hold back one full block plus any partial tail: the last block of
		// the stream carries the padding and must wait for EOF.
		if keep := bs + off%bs; off > keep {
			proc := off - keep
			dec.CryptBlocks(work[:proc], work[:proc])
			if _, err = w.Write(work[:proc]); err != nil {
				return nil, wrapIO(err, "failed to write to output stream")
			}
			bytesOut += int64(proc)
			copy(work, work[proc:off])
			off = keep
		}
	}
}

// newStreamCipher validates the stream algorithm and key and builds the
// CBC encrypter with a fresh or caller-supplied IV.
func (s *Service) newStreamCipher(alg Algorithm, key, callerIV []byte) (cipherSpec, cipher.BlockMode, []byte, error) {
	spec, err := lookupCipherSpec(alg)
	if err != nil {
		return cipherSpec{}, nil, nil, err
	}
	if spec.aead {
		return cipherSpec{}, nil, nil, streamModeUnsupported(alg)
	}
	if err := validateKeySize(key, spec); err != nil {
		return cipherSpec{}, nil, nil, err
	}

	iv := callerIV
	if iv == nil {
		if iv, err = RandomBytes(spec.ivSize); err != nil {
			return cipherSpec{}, nil, nil, err
		}
	} else if len(iv) != spec.ivSize {
		return cipherSpec{}, nil, nil, invalidInput(fmt.Sprintf("iv must be %d bytes for %s, got %d", spec.ivSize, alg, len(iv)))
	}

	block, blockErr := spec.newBlock(key)
	if blockErr != nil {
		return cipherSpec{}, nil, nil, wrapInvalidInput(blockErr, "failed to create cipher")
	}
	return spec, cipher.NewCBCEncrypter(block, iv), iv, nil
}

func streamModeUnsupported(alg Algorithm) error {
	return fmt.Errorf("%w: %w", ErrUnsupportedAlgorithm,
		goerrors.New(ErrCodeUnsupportedAlgorithm,
			fmt.Sprintf("%s is not supported for streaming: the stream layout carries no auth tag frame", alg)))
}

// writeFileWithParents writes data to path, creating parent directories.
func writeFileWithParents(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return wrapIO(err, "failed to create output directory")
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return wrapIO(err, "failed to write output file")
	}
	return nil
}
