// instrumentation.go: Operation counters and the pluggable observer channel.
//
// Every engine operation reports its outcome here before the result or
// error reaches the caller, so metrics stay accurate even when callers
// swallow errors. Applications plug in custom observers (Prometheus,
// StatsD, structured logging) for production monitoring.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Operation names an engine operation kind for stats and observer events.
type Operation string

// Operation kinds reported to observers and counted in stats.
const (
	OpEncrypt       Operation = "encrypt"
	OpDecrypt       Operation = "decrypt"
	OpHash          Operation = "hash"
	OpHMAC          Operation = "hmac"
	OpSign          Operation = "sign"
	OpVerify        Operation = "verify"
	OpKeyGeneration Operation = "keyGeneration"
)

// OperationEvent describes one completed engine operation, successful or
// failed. Events carry sizes and timing but never key material or plaintext.
type OperationEvent struct {
	// Operation is the operation kind (encrypt, decrypt, hash, ...).
	Operation Operation

	// Algorithm is the algorithm the operation ran with, when applicable.
	Algorithm string

	// InputSize is the input payload length in bytes.
	InputSize int

	// OutputSize is the produced payload length in bytes, 0 on failure.
	OutputSize int

	// Duration is the wall time the operation took.
	Duration time.Duration

	// Timestamp is when the operation completed, in UTC.
	Timestamp time.Time

	// Err is the typed error the operation is about to return, nil on success.
	Err error
}

// Observer receives one event per engine operation. Implementations must
// be safe for concurrent use and should be non-blocking: the engines call
// OnOperation synchronously on the caller's goroutine.
type Observer interface {
	OnOperation(event OperationEvent)
}

// NopObserver discards all events. It is the default observer.
type NopObserver struct{}

// OnOperation implements Observer.
func (NopObserver) OnOperation(OperationEvent) {}

// LogObserver emits one structured log line per operation using logrus.
// Successful operations log at debug level, failures at error level.
type LogObserver struct {
	logger *logrus.Logger
}

// NewLogObserver creates a LogObserver writing to the given logger.
// A nil logger uses the logrus standard logger.
func NewLogObserver(logger *logrus.Logger) *LogObserver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogObserver{logger: logger}
}

// OnOperation implements Observer.
func (o *LogObserver) OnOperation(event OperationEvent) {
	fields := logrus.Fields{
		"operation":   string(event.Operation),
		"algorithm":   event.Algorithm,
		"input_size":  event.InputSize,
		"output_size": event.OutputSize,
		"duration":    event.Duration,
	}
	if event.Err != nil {
		o.logger.WithFields(fields).WithError(event.Err).Error("crypto operation failed")
		return
	}
	o.logger.WithFields(fields).Debug("crypto operation completed")
}

// StatsSnapshot is a point-in-time copy of a Service's operation counters.
// Counters are monotonic between explicit resets and count failed
// operations as well as successful ones.
type StatsSnapshot struct {
	Encrypt        uint64        `json:"encrypt"`
	Decrypt        uint64        `json:"decrypt"`
	Hash           uint64        `json:"hash"`
	HMAC           uint64        `json:"hmac"`
	Sign           uint64        `json:"sign"`
	Verify         uint64        `json:"verify"`
	KeyGenerations uint64        `json:"keyGenerations"`
	Errors         uint64        `json:"errors"`
	TotalDuration  time.Duration `json:"totalDuration"`
}

// opStats holds the per-instance counters. All fields are atomics so
// concurrent operations never contend on a lock.
type opStats struct {
	encrypt        atomic.Uint64
	decrypt        atomic.Uint64
	hash           atomic.Uint64
	hmac           atomic.Uint64
	sign           atomic.Uint64
	verify         atomic.Uint64
	keyGenerations atomic.Uint64
	errors         atomic.Uint64
	totalNanos     atomic.Int64
}

func (s *opStats) counter(op Operation) *atomic.Uint64 {
	switch op {
	case OpEncrypt:
		return &s.encrypt
	case OpDecrypt:
		return &s.decrypt
	case OpHash:
		return &s.hash
	case OpHMAC:
		return &s.hmac
	case OpSign:
		return &s.sign
	case OpVerify:
		return &s.verify
	case OpKeyGeneration:
		return &s.keyGenerations
	default:
		return nil
	}
}

func (s *opStats) record(op Operation, d time.Duration, err error) {
	if c := s.counter(op); c != nil {
		c.Add(1)
	}
	if err != nil {
		s.errors.Add(1)
	}
	s.totalNanos.Add(d.Nanoseconds())
}

func (s *opStats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		Encrypt:        s.encrypt.Load(),
		Decrypt:        s.decrypt.Load(),
		Hash:           s.hash.Load(),
		HMAC:           s.hmac.Load(),
		Sign:           s.sign.Load(),
		Verify:         s.verify.Load(),
		KeyGenerations: s.keyGenerations.Load(),
		Errors:         s.errors.Load(),
		TotalDuration:  time.Duration(s.totalNanos.Load()),
	}
}

func (s *opStats) reset() {
	s.encrypt.Store(0)
	s.decrypt.Store(0)
	s.hash.Store(0)
	s.hmac.Store(0)
	s.sign.Store(0)
	s.verify.Store(0)
	s.keyGenerations.Store(0)
	s.errors.Store(0)
	s.totalNanos.Store(0)
}
