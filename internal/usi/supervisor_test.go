package usi

import (
	"errors"
	"testing"
	"time"
)

func TestSupervisorNotStarted(t *testing.T) {
	sup := NewSupervisor(nil)
	if sup.Running() {
		t.Fatalf("fresh supervisor reports running")
	}
	if err := sup.SendLine("usi"); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("SendLine before Start = %v, want ErrNotStarted", err)
	}
	if _, err := sup.ReceiveLine(30 * time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Fatalf("ReceiveLine before Start = %v, want ErrTimeout", err)
	}
}

func TestSupervisorSpawnFailed(t *testing.T) {
	sup := NewSupervisor(nil)
	err := sup.Start("/no/such/engine/binary")
	if !errors.Is(err, ErrSpawnFailed) {
		t.Fatalf("Start with bogus path = %v, want ErrSpawnFailed", err)
	}
	if sup.Running() {
		t.Fatalf("failed Start left supervisor running")
	}
}

func TestSupervisorSendReceive(t *testing.T) {
	path := writeFakeEngine(t, echoEngine)
	sup := NewSupervisor(nil)
	if err := sup.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = sup.Stop() })

	if err := sup.SendLine("hello engine"); err != nil {
		t.Fatalf("SendLine: %v", err)
	}
	line, err := sup.ReceiveLine(2 * time.Second)
	if err != nil {
		t.Fatalf("ReceiveLine: %v", err)
	}
	if line != "hello engine" {
		t.Fatalf("echoed line = %q", line)
	}
}

// Lines are delivered strictly oldest-first.
func TestSupervisorReceiveOrder(t *testing.T) {
	path := writeFakeEngine(t, echoEngine)
	sup := NewSupervisor(nil)
	if err := sup.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = sup.Stop() })

	for _, msg := range []string{"one", "two", "three"} {
		if err := sup.SendLine(msg); err != nil {
			t.Fatalf("SendLine(%q): %v", msg, err)
		}
	}
	for _, want := range []string{"one", "two", "three"} {
		line, err := sup.ReceiveLine(2 * time.Second)
		if err != nil {
			t.Fatalf("ReceiveLine: %v", err)
		}
		if line != want {
			t.Fatalf("line = %q, want %q", line, want)
		}
	}
}

// A zero timeout with an empty buffer fails fast with ErrTimeout.
func TestSupervisorReceiveZeroTimeout(t *testing.T) {
	path := writeFakeEngine(t, silentEngine)
	sup := NewSupervisor(nil)
	if err := sup.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = sup.Stop() })

	start := time.Now()
	_, err := sup.ReceiveLine(0)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("ReceiveLine(0) = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("zero timeout blocked for %v", elapsed)
	}
}

// When the engine dies, receivers get an explicit exit error instead of
// waiting out the full timeout.
func TestSupervisorEngineExit(t *testing.T) {
	path := writeFakeEngine(t, exitingEngine)
	sup := NewSupervisor(nil)
	if err := sup.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = sup.Stop() })

	_, err := sup.ReceiveLine(5 * time.Second)
	if !errors.Is(err, ErrEngineExited) {
		t.Fatalf("ReceiveLine after exit = %v, want ErrEngineExited", err)
	}
}

func TestSupervisorStopIdempotent(t *testing.T) {
	path := writeFakeEngine(t, scriptedEngine)
	sup := NewSupervisor(nil)
	if err := sup.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := sup.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := sup.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if sup.Running() {
		t.Fatalf("supervisor still running after Stop")
	}
	if err := sup.Stop(); err != nil {
		t.Fatalf("Stop on never-restarted supervisor: %v", err)
	}
}

func TestSupervisorStartTwice(t *testing.T) {
	path := writeFakeEngine(t, scriptedEngine)
	sup := NewSupervisor(nil)
	if err := sup.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = sup.Stop() })

	if err := sup.Start(path); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start = %v, want ErrAlreadyStarted", err)
	}
}
