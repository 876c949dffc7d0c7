package socketio

import (
	"sync"
	"time"
)

// change is a set of pending broadcast kinds.
type change uint8

const (
	changeState change = 1 << iota
	changeQueue
)

// BroadcastDebouncer collapses rapid player events into batched broadcasts.
// Changes within the window result in one broadcast per affected kind. A
// steady stream of changes still flushes once maxWait has passed since the
// first pending one.
type BroadcastDebouncer struct {
	window        time.Duration
	maxWait       time.Duration
	stateCallback func()
	queueCallback func()

	mu      sync.Mutex
	pending change
	since   time.Time
	timer   *time.Timer
	stopped bool
}

// NewBroadcastDebouncer creates a debouncer. A non-positive maxWait lets
// the window be extended indefinitely.
func NewBroadcastDebouncer(window, maxWait time.Duration, stateCallback, queueCallback func()) *BroadcastDebouncer {
	return &BroadcastDebouncer{
		window:        window,
		maxWait:       maxWait,
		stateCallback: stateCallback,
		queueCallback: queueCallback,
	}
}

// Trigger records a change. A queue change implies a state change since
// the current item moves with the queue.
func (d *BroadcastDebouncer) Trigger(c change) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || c == 0 {
		return
	}
	if c&changeQueue != 0 {
		c |= changeState
	}

	now := time.Now()
	if d.pending == 0 {
		d.since = now
	}
	d.pending |= c

	delay := d.window
	if d.maxWait > 0 {
		if left := d.since.Add(d.maxWait).Sub(now); left < delay {
			delay = max(left, 0)
		}
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, d.flush)
}

// flush fires callbacks for the pending kinds and resets them.
func (d *BroadcastDebouncer) flush() {
	d.mu.Lock()
	pending := d.pending
	d.pending = 0
	d.mu.Unlock()

	if pending&changeState != 0 && d.stateCallback != nil {
		d.stateCallback()
	}
	if pending&changeQueue != 0 && d.queueCallback != nil {
		d.queueCallback()
	}
}

// Stop prevents any further callbacks from firing.
func (d *BroadcastDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = 0
}
