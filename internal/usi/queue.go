package usi

import (
	"sync"
	"time"
)

// lineQueue is the shared ordered buffer between the background stdout
// reader (sole appender) and the foreground receive path (sole remover).
// It is unbounded: unconsumed info lines accumulate during a search and are
// drained one at a time. The wake channel carries at most one pending
// signal; the consumer re-checks the slice after every wakeup, so a
// coalesced signal can never lose a line.
type lineQueue struct {
	mu    sync.Mutex
	lines []string
	wake  chan struct{}
}

func newLineQueue() *lineQueue {
	return &lineQueue{wake: make(chan struct{}, 1)}
}

func (q *lineQueue) push(line string) {
	q.mu.Lock()
	q.lines = append(q.lines, line)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// pop removes and returns the oldest line. A non-empty queue returns
// immediately regardless of timeout. Otherwise it blocks until a line is
// pushed, the deadline passes (ErrTimeout), or closed is signalled with the
// queue still empty (ErrEngineExited). A nil closed channel never fires.
func (q *lineQueue) pop(timeout time.Duration, closed <-chan struct{}) (string, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if len(q.lines) > 0 {
			line := q.lines[0]
			q.lines = q.lines[1:]
			q.mu.Unlock()
			return line, nil
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-closed:
			// A line pushed just before stream closure may still be
			// pending; re-check once before reporting the exit.
			q.mu.Lock()
			empty := len(q.lines) == 0
			q.mu.Unlock()
			if empty {
				return "", ErrEngineExited
			}
		case <-deadline.C:
			return "", ErrTimeout
		}
	}
}
