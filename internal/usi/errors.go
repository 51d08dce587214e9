package usi

import (
	"errors"
	"fmt"
)

// Supervisor-level failures.
var (
	ErrSpawnFailed         = errors.New("engine process could not be launched")
	ErrStreamCaptureFailed = errors.New("engine stream handle could not be captured")
	ErrNotStarted          = errors.New("engine not started")
	ErrAlreadyStarted      = errors.New("engine already started")
	ErrWriteFailed         = errors.New("write to engine stdin failed")
	ErrTimeout             = errors.New("timed out waiting for engine output")

	// ErrEngineExited is returned when the line queue is empty and the
	// engine's stdout stream has closed, so no further output can arrive.
	ErrEngineExited = errors.New("engine process exited")
)

// Session-level failures. Each wraps ErrTimeout so callers can match either
// the specific phase or the generic condition with errors.Is.
var (
	ErrHandshakeTimeout = fmt.Errorf("usi handshake: %w", ErrTimeout)
	ErrReadinessTimeout = fmt.Errorf("usi readiness check: %w", ErrTimeout)
	ErrSearchTimeout    = fmt.Errorf("usi search: %w", ErrTimeout)

	ErrNotReady = errors.New("session is not ready for a search")
)
