package usi

import (
	"strconv"
	"strings"
)

// Response is one classified line of engine output. The variant set is
// closed: every line maps to exactly one of HandshakeAck, ReadyAck,
// BestMove, SearchInfo or Unrecognized.
type Response interface {
	usiResponse()
}

// HandshakeAck is the engine's "usiok" reply.
type HandshakeAck struct{}

// ReadyAck is the engine's "readyok" reply.
type ReadyAck struct{}

// BestMove carries the final move of a search. Ponder is empty when the
// engine supplied no ponder move.
type BestMove struct {
	Move   string
	Ponder string
}

// SearchInfo carries one line of thinking telemetry.
type SearchInfo struct {
	Info ThinkingInfo
}

// Unrecognized preserves a line that matched no known response. It is never
// an error: engines emit id/option/diagnostic lines freely.
type Unrecognized struct {
	Raw string
}

func (HandshakeAck) usiResponse() {}
func (ReadyAck) usiResponse()     {}
func (BestMove) usiResponse()     {}
func (SearchInfo) usiResponse()   {}
func (Unrecognized) usiResponse() {}

// ThinkingInfo holds the fields of an "info" line. Every field is
// independently optional because the wire format omits absent ones; nil
// means the engine did not report that value.
type ThinkingInfo struct {
	Depth   *int     `json:"depth,omitempty"`
	ScoreCP *int     `json:"score_cp,omitempty"`
	Nodes   *uint64  `json:"nodes,omitempty"`
	NPS     *uint64  `json:"nps,omitempty"`
	TimeMS  *int     `json:"time,omitempty"`
	PV      []string `json:"pv,omitempty"`
}

// Classify parses a single line of engine output. It never fails: malformed
// or partial lines degrade to Unrecognized or to a SearchInfo with missing
// fields, preserving liveness of the receive loops.
func Classify(line string) Response {
	trimmed := strings.TrimSpace(line)

	if trimmed == "" {
		return Unrecognized{}
	}
	if trimmed == "usiok" {
		return HandshakeAck{}
	}
	if trimmed == "readyok" {
		return ReadyAck{}
	}
	if strings.HasPrefix(trimmed, "bestmove") {
		return parseBestMove(trimmed)
	}
	if strings.HasPrefix(trimmed, "info") {
		return parseInfo(trimmed)
	}
	return Unrecognized{Raw: trimmed}
}

// parseBestMove handles "bestmove <move> [ponder <move>]".
func parseBestMove(line string) Response {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return Unrecognized{Raw: line}
	}
	res := BestMove{Move: parts[1]}
	if len(parts) >= 4 && parts[2] == "ponder" {
		res.Ponder = parts[3]
	}
	return res
}

// parseInfo scans "info depth <d> score cp <s> nodes <n> nps <nps>
// time <t> pv <moves...>". Keywords may appear in any order before pv;
// pv always consumes the remainder. Unrecognized keywords and numeric
// parse failures are skipped so the scan never stalls — info lines are
// best-effort telemetry, not control signals.
func parseInfo(line string) Response {
	parts := strings.Fields(line)
	var info ThinkingInfo

	i := 1 // skip the leading "info" tag
	for i < len(parts) {
		switch parts[i] {
		case "depth":
			if i+1 < len(parts) {
				if v, err := strconv.Atoi(parts[i+1]); err == nil {
					info.Depth = &v
				}
				i += 2
			} else {
				i++
			}
		case "score":
			// Only the cp subtype is recognized; mate and friends are
			// skipped token by token.
			if i+2 < len(parts) && parts[i+1] == "cp" {
				if v, err := strconv.Atoi(parts[i+2]); err == nil {
					info.ScoreCP = &v
				}
				i += 3
			} else {
				i++
			}
		case "nodes":
			if i+1 < len(parts) {
				if v, err := strconv.ParseUint(parts[i+1], 10, 64); err == nil {
					info.Nodes = &v
				}
				i += 2
			} else {
				i++
			}
		case "nps":
			if i+1 < len(parts) {
				if v, err := strconv.ParseUint(parts[i+1], 10, 64); err == nil {
					info.NPS = &v
				}
				i += 2
			} else {
				i++
			}
		case "time":
			if i+1 < len(parts) {
				if v, err := strconv.Atoi(parts[i+1]); err == nil {
					info.TimeMS = &v
				}
				i += 2
			} else {
				i++
			}
		case "pv":
			info.PV = append([]string(nil), parts[i+1:]...)
			i = len(parts)
		default:
			i++
		}
	}

	return SearchInfo{Info: info}
}
