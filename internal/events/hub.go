// Package events fans a stream of values out to any number of subscribers.
package events

import (
	"sync"
)

// DefaultBuffer is the per-subscriber channel size
const DefaultBuffer = 16

// Hub delivers each published value to every current subscriber. A full
// subscriber channel drops the value rather than blocking the publisher.
type Hub[T any] struct {
	mu     sync.RWMutex
	subs   map[chan T]struct{}
	buffer int
	closed bool
}

// NewHub creates a hub with the given subscriber buffer size
func NewHub[T any](buffer int) *Hub[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub[T]{subs: make(map[chan T]struct{}), buffer: buffer}
}

// Subscribe returns a channel of future values and a function that closes it.
// The cancel function is safe to call more than once.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
		})
	}
}

// Publish sends v to all subscribers and returns how many received it
func (h *Hub[T]) Publish(v T) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subs {
		select {
		case ch <- v:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the current subscriber count
func (h *Hub[T]) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later subscriptions get a closed channel.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
}
