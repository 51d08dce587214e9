package usi

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeFakeEngine drops an executable shell script into a temp dir and
// returns its path. The script speaks just enough USI to drive the tests.
func writeFakeEngine(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-engine.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake engine: %v", err)
	}
	return path
}

// scriptedEngine answers the handshake and produces a short scripted search.
const scriptedEngine = `#!/bin/sh
while IFS= read -r line; do
  set -- $line
  case "$1" in
    usi)
      echo "id name faketuna"
      echo "id author nobody"
      echo "usiok"
      ;;
    isready)
      echo "readyok"
      ;;
    go)
      echo "info depth 1 score cp 24 nodes 120 nps 2400 time 50 pv 7g7f 3c3d"
      echo "info depth 2 score cp 31 pv 2g2f"
      echo "bestmove 2g2f ponder 8c8d"
      ;;
    quit)
      exit 0
      ;;
  esac
done
`

// echoEngine repeats every received line back on stdout.
const echoEngine = `#!/bin/sh
while IFS= read -r line; do
  echo "$line"
done
`

// exitingEngine terminates immediately without emitting anything.
const exitingEngine = `#!/bin/sh
exit 0
`

// silentEngine swallows all input and never answers.
const silentEngine = `#!/bin/sh
while IFS= read -r line; do
  :
done
`
