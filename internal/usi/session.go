package usi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// handshakeLineTimeout bounds each wait for a line while driving the
	// usi/isready exchange.
	handshakeLineTimeout = 5 * time.Second

	// searchTimeoutBuffer is added to the requested think time before a
	// missing bestmove is treated as a failure.
	searchTimeoutBuffer = 5 * time.Second
)

// State is the session's position in its lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateStarting
	StateReady
	StateSearching
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateSearching:
		return "searching"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// InfoObserver receives thinking telemetry during a search. It is called
// from the searching goroutine and must not block.
type InfoObserver func(ThinkingInfo)

// Session drives the USI protocol over a supervised engine process:
// handshake, move search and shutdown as a small state machine with
// timeouts. All calls block the caller; access is expected to be
// serialized, one command in flight at a time.
type Session struct {
	sup      *Supervisor
	observer InfoObserver
	logger   *zap.Logger

	// stateMu guards only the state word so it can be read (readiness
	// queries) while a search blocks; it is never held across I/O.
	stateMu sync.Mutex
	state   State

	handshakeTimeout time.Duration
	searchBuffer     time.Duration
}

func NewSession(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		sup:              NewSupervisor(logger),
		state:            StateNotStarted,
		logger:           logger,
		handshakeTimeout: handshakeLineTimeout,
		searchBuffer:     searchTimeoutBuffer,
	}
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()
}

// transition moves from one state to another only if the session is still
// in from, reporting whether the swap happened.
func (s *Session) transition(from, to State) bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

// SetHandshakeTimeout overrides the per-line budget used while waiting for
// usiok and readyok.
func (s *Session) SetHandshakeTimeout(d time.Duration) {
	if d > 0 {
		s.handshakeTimeout = d
	}
}

// SetInfoObserver registers a sink for search telemetry. RequestMove still
// returns only the move token; the observer sees every info line the
// receive loop would otherwise discard.
func (s *Session) SetInfoObserver(fn InfoObserver) { s.observer = fn }

// Initialize starts the engine and performs the handshake: send "usi" and
// wait for usiok, then "isready" and wait for readyok. Lines that do not
// match the awaited acknowledgement (id, option, diagnostics) are
// discarded. On failure the session stays unusable and must be
// re-initialized or discarded.
func (s *Session) Initialize(path string) error {
	if err := s.sup.Start(path); err != nil {
		return err
	}
	s.setState(StateStarting)

	if err := s.sup.SendLine(BuildHandshake()); err != nil {
		return err
	}
	if err := s.awaitHandshakeAck(); err != nil {
		return err
	}

	if err := s.sup.SendLine(BuildIsReady()); err != nil {
		return err
	}
	if err := s.awaitReadyAck(); err != nil {
		return err
	}

	s.setState(StateReady)
	s.logger.Info("engine session ready")
	return nil
}

func (s *Session) awaitHandshakeAck() error {
	for {
		line, err := s.sup.ReceiveLine(s.handshakeTimeout)
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				return ErrHandshakeTimeout
			}
			return fmt.Errorf("awaiting usiok: %w", err)
		}
		if _, ok := Classify(line).(HandshakeAck); ok {
			return nil
		}
	}
}

func (s *Session) awaitReadyAck() error {
	for {
		line, err := s.sup.ReceiveLine(s.handshakeTimeout)
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				return ErrReadinessTimeout
			}
			return fmt.Errorf("awaiting readyok: %w", err)
		}
		if _, ok := Classify(line).(ReadyAck); ok {
			return nil
		}
	}
}

// EnsureReady performs a standalone isready/readyok exchange, used after
// option changes or usinewgame to confirm the engine is still responsive.
func (s *Session) EnsureReady() error {
	if err := s.sup.SendLine(BuildIsReady()); err != nil {
		return err
	}
	return s.awaitReadyAck()
}

// RequestMove transmits the position and a fixed-time search, then blocks
// until the engine reports its best move. Info lines feed the observer and
// are otherwise discarded; any other line that is not a bestmove is
// ignored. On timeout the caller decides whether to abandon or retry; the
// session does not auto-retry.
func (s *Session) RequestMove(sfen string, moves []string, thinkMs int) (string, error) {
	if !s.transition(StateReady, StateSearching) {
		return "", fmt.Errorf("%w: state=%s", ErrNotReady, s.State())
	}
	// The search either concludes back to Ready or the session was
	// terminated underneath us; never clobber Stopped.
	defer s.transition(StateSearching, StateReady)

	if err := s.sup.SendLine(BuildPosition(sfen, moves)); err != nil {
		return "", err
	}
	if err := s.sup.SendLine(BuildGoByoyomi(thinkMs)); err != nil {
		return "", err
	}

	lineTimeout := time.Duration(thinkMs)*time.Millisecond + s.searchBuffer
	for {
		line, err := s.sup.ReceiveLine(lineTimeout)
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				return "", fmt.Errorf("%w after %v", ErrSearchTimeout, lineTimeout)
			}
			return "", fmt.Errorf("awaiting bestmove: %w", err)
		}

		switch resp := Classify(line).(type) {
		case SearchInfo:
			if s.observer != nil {
				s.observer(resp.Info)
			}
		case BestMove:
			s.logger.Debug("bestmove received",
				zap.String("move", resp.Move),
				zap.String("ponder", resp.Ponder))
			return resp.Move, nil
		}
	}
}

// Halt asks the engine to stop thinking. It does not wait for a response:
// engines may or may not emit a bestmove immediately, and a caller that
// wants a deterministic result should rely on RequestMove's own timeout.
func (s *Session) Halt() error {
	return s.sup.SendLine(BuildStop())
}

// NewGame announces a new game to the engine.
func (s *Session) NewGame() error {
	return s.sup.SendLine(BuildNewGame())
}

// SetOption transmits a single engine option.
func (s *Session) SetOption(name, value string) error {
	return s.sup.SendLine(BuildSetOption(name, value))
}

// Terminate shuts the engine down from any state: quit, grace period, then
// an unconditional kill. Idempotent and safe before Initialize completes;
// teardown failures are swallowed.
func (s *Session) Terminate() error {
	_ = s.sup.Stop()
	s.setState(StateStopped)
	return nil
}
