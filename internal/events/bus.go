package events

import (
	"sync"
	"time"
)

// Bus is a lightweight pub/sub broker using bounded channels. Publishing
// never blocks: when a subscriber's buffer is full the event is dropped
// for that subscriber, so slow observers cannot stall the trading loop.
type Bus struct {
	mu   sync.RWMutex
	subs []*subscription
}

type subscription struct {
	ch     chan Envelope
	topics map[Event]bool // nil means all topics
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a listener and returns its channel plus an
// unsubscribe function. An empty topics list subscribes to everything.
func (b *Bus) Subscribe(buffer int, topics ...Event) (<-chan Envelope, func()) {
	sub := &subscription{ch: make(chan Envelope, buffer)}
	if len(topics) > 0 {
		sub.topics = make(map[Event]bool, len(topics))
		for _, t := range topics {
			sub.topics[t] = true
		}
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s == sub {
				close(s.ch)
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
	}
	return sub.ch, unsub
}

// Publish fans the payload out to matching subscribers without blocking.
func (b *Bus) Publish(e Event, payload any) {
	env := Envelope{Type: e, Data: payload, At: time.Now().UTC()}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.topics != nil && !sub.topics[e] {
			continue
		}
		select {
		case sub.ch <- env:
		default:
			// drop if subscriber is slow; keep broker non-blocking
		}
	}
}
