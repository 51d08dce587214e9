package usi

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// stopGracePeriod is how long Stop waits for the engine to exit on its
	// own after "quit" before killing it.
	stopGracePeriod = 100 * time.Millisecond

	// maxLineBytes bounds a single output line; deep pv lines from real
	// engines can exceed bufio.Scanner's default.
	maxLineBytes = 1 << 20
)

// Supervisor owns exactly one engine subprocess and its stream handles.
// A background reader drains stdout into the shared line queue for the
// lifetime of the process; stderr is forwarded to the logger. Send and
// receive are safe against concurrent Stop, but the protocol itself assumes
// one command in flight at a time — interleaving writers is the session's
// (or its caller's) responsibility.
type Supervisor struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	lines  *lineQueue
	exited chan struct{}
	logger *zap.Logger
}

func NewSupervisor(logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{
		lines:  newLineQueue(),
		logger: logger,
	}
}

// Start spawns the engine with stdin, stdout and stderr redirected into
// this process, then launches the background stdout reader. The reader
// appends every received line to the queue until the stream closes, at
// which point the exited channel is closed so receivers can distinguish a
// dead engine from a slow one.
func (s *Supervisor) Start(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return ErrAlreadyStarted
	}

	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: stdin: %v", ErrStreamCaptureFailed, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("%w: stdout: %v", ErrStreamCaptureFailed, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("%w: stderr: %v", ErrStreamCaptureFailed, err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.lines = newLineQueue()
	s.exited = make(chan struct{})

	go s.readOutput(stdout, s.lines, s.exited)
	go s.drainStderr(stderr)

	s.logger.Info("engine process started",
		zap.String("path", path),
		zap.Int("pid", cmd.Process.Pid))
	return nil
}

func (s *Supervisor) readOutput(stdout io.Reader, q *lineQueue, exited chan struct{}) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for scanner.Scan() {
		q.push(scanner.Text())
	}
	close(exited)
}

func (s *Supervisor) drainStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for scanner.Scan() {
		s.logger.Debug("engine stderr", zap.String("line", scanner.Text()))
	}
}

// SendLine writes text plus a line terminator to the engine's stdin. Pipe
// writes are unbuffered, so the command is delivered immediately.
func (s *Supervisor) SendLine(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendLocked(text)
}

func (s *Supervisor) sendLocked(text string) error {
	if s.stdin == nil {
		return ErrNotStarted
	}
	if _, err := io.WriteString(s.stdin, text+"\n"); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// ReceiveLine removes and returns the oldest buffered line, waiting up to
// timeout for one to arrive. An already-buffered line is returned
// immediately even when the timeout is zero or elapsed.
func (s *Supervisor) ReceiveLine(timeout time.Duration) (string, error) {
	s.mu.Lock()
	lines, exited := s.lines, s.exited
	s.mu.Unlock()
	return lines.pop(timeout, exited)
}

// Running reports whether a process is currently owned.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

// Stop asks the engine to quit, waits briefly for a voluntary exit, then
// unconditionally kills and reaps the process. Idempotent: stopping an
// already-stopped supervisor is a no-op success, and teardown failures on
// an already-dead process are swallowed.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil {
		return nil
	}

	_ = s.sendLocked(BuildQuit())

	select {
	case <-s.exited:
	case <-time.After(stopGracePeriod):
	}

	if s.stdin != nil {
		_ = s.stdin.Close()
	}
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()

	s.logger.Info("engine process stopped", zap.Int("pid", s.cmd.Process.Pid))
	s.cmd = nil
	s.stdin = nil
	return nil
}
