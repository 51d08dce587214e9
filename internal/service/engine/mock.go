package engine

import (
	"errors"
	"strings"
	"sync/atomic"
)

// mockMover is a deterministic stand-in used when no engine binary is
// configured. It never touches the USI layer: moves come from a small
// lookup table keyed by the board part of the SFEN, with a fixed fallback.
type mockMover struct {
	ready atomic.Bool
}

var errMockNotReady = errors.New("mock engine not initialized")

// Known positions and a reasonable reply. Keys are the first four SFEN
// fields (board, side to move, hands, ply).
var mockOpeningMoves = map[string]string{
	"lnsgkgsnl/1b5r1/ppppppppp/9/9/9/PPPPPPPPP/1R5B1/LNSGKGSNL b - 1": "7g7f",
}

const mockFallbackMove = "7g7f"

func newMockMover() *mockMover {
	m := &mockMover{}
	m.ready.Store(true)
	return m
}

func (m *mockMover) BestMove(sfen string, moves []string, thinkMs int) (string, error) {
	if !m.ready.Load() {
		return "", errMockNotReady
	}

	fields := strings.Fields(sfen)
	if len(fields) >= 4 {
		key := strings.Join(fields[:4], " ")
		if move, ok := mockOpeningMoves[key]; ok {
			return move, nil
		}
	}
	return mockFallbackMove, nil
}

func (m *mockMover) Ready() bool { return m.ready.Load() }

func (m *mockMover) Quit() error {
	m.ready.Store(false)
	return nil
}
