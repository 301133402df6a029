// Package events is the in-process progress event broker. The agent loop
// publishes run progress; the debug websocket endpoint subscribes.
package events

import (
	"sync"
	"time"
)

// Stage names for RunEvent.
const (
	StageSeeding  = "seeding"
	StageTurn     = "turn"
	StageToolCall = "tool_call"
	StageDone     = "done"
	StageFailed   = "failed"
)

// RunEvent is one progress notification for a profile run.
type RunEvent struct {
	RequestID string    `json:"request_id"`
	Stage     string    `json:"stage"`
	Detail    string    `json:"detail,omitempty"`
	Time      time.Time `json:"time"`
}

// Broker fans RunEvents out to subscribers over buffered channels.
// Publish never blocks: events for slow subscribers are dropped.
type Broker struct {
	mu   sync.Mutex
	subs map[chan RunEvent]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan RunEvent]struct{})}
}

// Publish delivers event to every current subscriber.
func (b *Broker) Publish(event RunEvent) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The caller must call the returned
// cancel function when done; the channel is closed on cancel.
func (b *Broker) Subscribe() (<-chan RunEvent, func()) {
	ch := make(chan RunEvent, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
