package player

import (
	"context"
	"sync"
	"time"
)

// mailbox is an unbounded FIFO of closures drained by the player loop.
// Posting never blocks, so backends may post from inside a call that is
// itself running on the loop.
type mailbox struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	closed  chan struct{}
	once    sync.Once
}

func newMailbox() *mailbox {
	return &mailbox{
		wake:   make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (m *mailbox) post(fn func()) {
	m.mu.Lock()
	m.pending = append(m.pending, fn)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *mailbox) drain() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := m.pending
	m.pending = nil
	return batch
}

func (m *mailbox) close() {
	m.once.Do(func() { close(m.closed) })
}

// run executes posted closures in order until ctx is done. tick is called
// on every value received from ticks; a nil channel never ticks.
func (m *mailbox) run(ctx context.Context, ticks <-chan time.Time, tick func()) {
	defer m.close()
	for {
		for _, fn := range m.drain() {
			fn()
		}
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
		case <-ticks:
			tick()
		}
	}
}

// call runs fn on the loop and waits for it to finish.
func (m *mailbox) call(fn func() error) error {
	done := make(chan error, 1)
	m.post(func() { done <- fn() })
	select {
	case err := <-done:
		return err
	case <-m.closed:
		return ErrClosed
	}
}
