package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/hisui/usi-bridge/internal/engineopts"
	"github.com/hisui/usi-bridge/internal/usi"
	"github.com/hisui/usi-bridge/pkg/enginedto"
)

func toSearchInfoDTO(info usi.ThinkingInfo) enginedto.SearchInfo {
	return enginedto.SearchInfo{
		Depth:   info.Depth,
		ScoreCP: info.ScoreCP,
		Nodes:   info.Nodes,
		NPS:     info.NPS,
		TimeMs:  info.TimeMS,
		PV:      info.PV,
	}
}

// usiMover backs the service with a real engine process driven over USI.
type usiMover struct {
	session *usi.Session
}

// startUSIMover spawns and handshakes the engine, applies the option
// presets, announces a new game and confirms readiness.
func startUSIMover(path string, opts []engineopts.Option, handshakeTimeout time.Duration, hub *telemetryHub, logger *zap.Logger) (*usiMover, error) {
	session := usi.NewSession(logger)
	session.SetHandshakeTimeout(handshakeTimeout)
	session.SetInfoObserver(func(info usi.ThinkingInfo) {
		hub.publish(toSearchInfoDTO(info))
	})

	if err := session.Initialize(path); err != nil {
		_ = session.Terminate()
		return nil, err
	}

	for _, opt := range opts {
		if err := session.SetOption(opt.Name, opt.Value); err != nil {
			_ = session.Terminate()
			return nil, err
		}
	}
	if err := session.NewGame(); err != nil {
		_ = session.Terminate()
		return nil, err
	}
	if err := session.EnsureReady(); err != nil {
		_ = session.Terminate()
		return nil, err
	}

	return &usiMover{session: session}, nil
}

func (m *usiMover) BestMove(sfen string, moves []string, thinkMs int) (string, error) {
	return m.session.RequestMove(sfen, moves, thinkMs)
}

func (m *usiMover) Ready() bool {
	switch m.session.State() {
	case usi.StateReady, usi.StateSearching:
		return true
	default:
		return false
	}
}

func (m *usiMover) Quit() error {
	return m.session.Terminate()
}
