package usi

import (
	"fmt"
	"strconv"
	"strings"
)

// Command builders return the exact wire line without a trailing newline;
// the supervisor appends line termination when sending. Inputs are
// interpolated verbatim: USI is whitespace-delimited, so callers must not
// pass tokens containing spaces.

func BuildHandshake() string { return "usi" }

func BuildIsReady() string { return "isready" }

// BuildPosition encodes "position sfen <sfen> [moves <m1> <m2> ...]".
// Both the SFEN and the moves are opaque tokens at this layer.
func BuildPosition(sfen string, moves []string) string {
	if len(moves) == 0 {
		return fmt.Sprintf("position sfen %s", sfen)
	}
	return fmt.Sprintf("position sfen %s moves %s", sfen, strings.Join(moves, " "))
}

// BuildGoByoyomi encodes a fixed per-move time allotment in milliseconds.
func BuildGoByoyomi(timeMs int) string {
	return fmt.Sprintf("go byoyomi %d", timeMs)
}

// BuildGoClock encodes remaining clock times and increments, all in
// milliseconds.
func BuildGoClock(blackTimeMs, whiteTimeMs, blackIncMs, whiteIncMs int) string {
	return fmt.Sprintf("go btime %d wtime %d binc %d winc %d",
		blackTimeMs, whiteTimeMs, blackIncMs, whiteIncMs)
}

func BuildGoDepth(depth int) string {
	return "go depth " + strconv.Itoa(depth)
}

func BuildStop() string { return "stop" }

func BuildQuit() string { return "quit" }

func BuildNewGame() string { return "usinewgame" }

func BuildSetOption(name, value string) string {
	return fmt.Sprintf("setoption name %s value %s", name, value)
}
