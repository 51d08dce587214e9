package enginedto

// InitRequest asks the bridge to start and handshake an engine. Path may be
// empty to use the server-configured binary.
type InitRequest struct {
	Path string `json:"path,omitempty"`
}

type InitResponse struct {
	Status      string `json:"status"`
	SessionUUID string `json:"session_uuid"`
}

// MoveRequest asks for the engine's move. SFEN and Moves are opaque tokens;
// the bridge does not validate shogi semantics.
type MoveRequest struct {
	SFEN   string   `json:"sfen"`
	Moves  []string `json:"moves,omitempty"`
	TimeMs int      `json:"time_ms,omitempty"`
}

type MoveResponse struct {
	Move string `json:"move"`
}

type ShutdownResponse struct {
	Status string `json:"status"`
}

type ReadyResponse struct {
	Ready bool `json:"ready"`
}

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
