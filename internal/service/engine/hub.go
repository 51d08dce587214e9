package engine

import (
	"sync"

	"github.com/hisui/usi-bridge/pkg/enginedto"
)

const subscriberBuffer = 64

// telemetryHub fans search telemetry out to any number of subscribers.
// Publishing never blocks: a subscriber whose buffer is full loses frames
// rather than stalling the session's receive loop.
type telemetryHub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan enginedto.SearchInfo
}

func newTelemetryHub() *telemetryHub {
	return &telemetryHub{subs: make(map[int]chan enginedto.SearchInfo)}
}

func (h *telemetryHub) publish(info enginedto.SearchInfo) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- info:
		default:
		}
	}
}

// subscribe registers a new listener and returns its channel plus a cancel
// function. Cancel closes the channel; ranging subscribers terminate.
func (h *telemetryHub) subscribe() (<-chan enginedto.SearchInfo, func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	ch := make(chan enginedto.SearchInfo, subscriberBuffer)
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if existing, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(existing)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}
