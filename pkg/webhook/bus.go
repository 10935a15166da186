package webhook

import (
	"context"
	"sync"
)

// EventBus receives the typed events the dispatchers emit. Implementations
// must be safe for concurrent use.
type EventBus interface {
	Publish(ctx context.Context, event Event) error
}

// MemoryBus fans events out to in-process subscribers. Sends are
// non-blocking: a subscriber whose buffer is full misses the event rather
// than stalling the webhook response.
type MemoryBus struct {
	mu         sync.RWMutex
	subs       map[chan Event]struct{}
	bufferSize int
	closed     bool
}

// NewMemoryBus creates a MemoryBus. A minimum buffer of 1 is enforced so
// sends never block.
func NewMemoryBus(bufferSize int) *MemoryBus {
	return &MemoryBus{
		subs:       make(map[chan Event]struct{}),
		bufferSize: max(bufferSize, 1),
	}
}

// Subscribe registers a new subscriber. The subscription is removed and its
// channel closed when the context is cancelled or the bus is closed.
func (b *MemoryBus) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, b.bufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			b.unsubscribe(ch)
		}()
	}

	return ch
}

// Publish delivers the event to every subscriber whose buffer has room.
func (b *MemoryBus) Publish(_ context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Close shuts the bus down and closes all subscriber channels. Idempotent.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
	return nil
}

func (b *MemoryBus) unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}
