// Package engine exposes the bridge's caller-facing operations: initialize
// an engine, request a move, query readiness and shut down. It owns at most
// one engine at a time and serializes access to it, so callers never see
// interleaved protocol writes.
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hisui/usi-bridge/internal/engineopts"
	"github.com/hisui/usi-bridge/internal/usi"
	"github.com/hisui/usi-bridge/pkg/enginedto"
)

type Config struct {
	// EnginePath is the default binary; an Initialize request may override
	// it.
	EnginePath string

	// UseMock selects the deterministic stand-in instead of a real
	// subprocess.
	UseMock bool

	// OptionsFile optionally overrides the embedded setoption presets.
	OptionsFile string

	HandshakeTimeout time.Duration
	DefaultThinkMs   int
}

type Service struct {
	cfg    Config
	logger *zap.Logger
	hub    *telemetryHub

	// mu guards the mover slot; searchMu serializes move requests so a
	// readiness query never waits behind a thinking engine.
	mu          sync.Mutex
	searchMu    sync.Mutex
	mover       Mover
	sessionUUID string
}

func NewService(cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultThinkMs <= 0 {
		cfg.DefaultThinkMs = 1000
	}
	return &Service{
		cfg:    cfg,
		logger: logger,
		hub:    newTelemetryHub(),
	}
}

// Initialize starts an engine and brings it to the ready state. At most one
// engine runs at a time; a second Initialize without an intervening
// Shutdown is rejected.
func (s *Service) Initialize(path string) (*enginedto.InitResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mover != nil {
		return nil, enginedto.DomainError{
			Code:    enginedto.CodeAlreadyRunning,
			Message: "engine already initialized; shut it down first",
		}
	}

	mover, err := s.startMover(path)
	if err != nil {
		return nil, s.translate(err)
	}

	s.mover = mover
	s.sessionUUID = uuid.NewString()
	s.logger.Info("engine initialized",
		zap.String("session_uuid", s.sessionUUID),
		zap.Bool("mock", s.cfg.UseMock))

	return &enginedto.InitResponse{
		Status:      "engine initialized",
		SessionUUID: s.sessionUUID,
	}, nil
}

func (s *Service) startMover(path string) (Mover, error) {
	if s.cfg.UseMock {
		return newMockMover(), nil
	}

	if path == "" {
		path = s.cfg.EnginePath
	}
	if path == "" {
		return nil, enginedto.DomainError{
			Code:    enginedto.CodeBadRequest,
			Message: "no engine path configured or supplied",
		}
	}

	opts, err := engineopts.Load(s.cfg.OptionsFile)
	if err != nil {
		return nil, err
	}
	return startUSIMover(path, opts, s.cfg.HandshakeTimeout, s.hub, s.logger)
}

// BestMove forwards a move request to the running engine. A non-positive
// think time falls back to the configured default.
func (s *Service) BestMove(sfen string, moves []string, thinkMs int) (string, error) {
	s.mu.Lock()
	mover, sessionUUID := s.mover, s.sessionUUID
	s.mu.Unlock()

	if mover == nil {
		return "", enginedto.DomainError{
			Code:    enginedto.CodeNotRunning,
			Message: "engine not initialized",
		}
	}
	if thinkMs <= 0 {
		thinkMs = s.cfg.DefaultThinkMs
	}

	s.searchMu.Lock()
	defer s.searchMu.Unlock()

	start := time.Now()
	move, err := mover.BestMove(sfen, moves, thinkMs)
	if err != nil {
		s.logger.Warn("move request failed",
			zap.String("session_uuid", sessionUUID),
			zap.Error(err))
		return "", s.translate(err)
	}

	s.logger.Info("move resolved",
		zap.String("session_uuid", sessionUUID),
		zap.String("move", move),
		zap.Duration("took", time.Since(start)))
	return move, nil
}

// Shutdown stops the running engine. Shutting down an idle service is an
// error so the shell can surface "nothing to stop" to the user, matching
// Initialize's strictness in the other direction.
func (s *Service) Shutdown() (*enginedto.ShutdownResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mover == nil {
		return nil, enginedto.DomainError{
			Code:    enginedto.CodeNotRunning,
			Message: "engine not running",
		}
	}

	_ = s.mover.Quit()
	s.logger.Info("engine shut down", zap.String("session_uuid", s.sessionUUID))
	s.mover = nil
	s.sessionUUID = ""

	return &enginedto.ShutdownResponse{Status: "engine shutdown"}, nil
}

// Ready reports whether an engine is initialized and accepting searches.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mover != nil && s.mover.Ready()
}

// Close tears everything down unconditionally; used on daemon exit.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mover != nil {
		_ = s.mover.Quit()
		s.mover = nil
	}
}

// Subscribe attaches a listener to the analysis telemetry stream.
func (s *Service) Subscribe() (<-chan enginedto.SearchInfo, func()) {
	return s.hub.subscribe()
}

// translate maps core errors onto the caller-facing taxonomy. DomainErrors
// pass through untouched.
func (s *Service) translate(err error) error {
	var derr enginedto.DomainError
	if errors.As(err, &derr) {
		return derr
	}
	switch {
	case errors.Is(err, usi.ErrTimeout):
		return enginedto.DomainError{
			Code:      enginedto.CodeTimeout,
			Message:   err.Error(),
			Retryable: true,
		}
	case errors.Is(err, usi.ErrEngineExited):
		return enginedto.DomainError{
			Code:    enginedto.CodeNotRunning,
			Message: err.Error(),
		}
	default:
		return enginedto.DomainError{
			Code:    enginedto.CodeFailed,
			Message: err.Error(),
		}
	}
}
