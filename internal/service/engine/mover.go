package engine

// Mover is what the service needs from an engine backend: the real
// USI-driven session or the deterministic stand-in.
type Mover interface {
	// BestMove returns the engine's move for the position, thinking for at
	// most thinkMs milliseconds. SFEN and moves are opaque tokens.
	BestMove(sfen string, moves []string, thinkMs int) (string, error)

	// Ready reports whether the backend can accept a search.
	Ready() bool

	// Quit tears the backend down. Idempotent.
	Quit() error
}
