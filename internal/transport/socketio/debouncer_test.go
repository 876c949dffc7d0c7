package socketio

import (
	"sync/atomic"
	"testing"
	"time"
)

type callCounts struct {
	state, queue atomic.Int32
}

func newCountingDebouncer(maxWait time.Duration) (*BroadcastDebouncer, *callCounts) {
	c := &callCounts{}
	d := NewBroadcastDebouncer(50*time.Millisecond, maxWait,
		func() { c.state.Add(1) },
		func() { c.queue.Add(1) },
	)
	return d, c
}

func TestDebouncer(t *testing.T) {
	tests := []struct {
		name      string
		triggers  []change
		wantState int32
		wantQueue int32
	}{
		{"rapid state events collapse", []change{changeState, changeState, changeState, changeState}, 1, 0},
		{"queue implies state", []change{changeQueue}, 1, 1},
		{"mixed events", []change{changeState, changeQueue, changeState, changeQueue}, 1, 1},
		{"empty change ignored", []change{0}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, c := newCountingDebouncer(0)
			defer d.Stop()

			for _, ch := range tt.triggers {
				d.Trigger(ch)
			}
			time.Sleep(100 * time.Millisecond)

			if got := c.state.Load(); got != tt.wantState {
				t.Errorf("state callbacks = %d, want %d", got, tt.wantState)
			}
			if got := c.queue.Load(); got != tt.wantQueue {
				t.Errorf("queue callbacks = %d, want %d", got, tt.wantQueue)
			}
		})
	}
}

func TestDebouncerSpreadEventsExtendWindow(t *testing.T) {
	d, c := newCountingDebouncer(0)
	defer d.Stop()

	// A volume slider being dragged
	for i := 0; i < 20; i++ {
		d.Trigger(changeState)
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if got := c.state.Load(); got != 1 {
		t.Errorf("expected 1 state callback for rapid events, got %d", got)
	}
}

func TestDebouncerMaxWaitFlushesSteadyStream(t *testing.T) {
	d, c := newCountingDebouncer(80 * time.Millisecond)
	defer d.Stop()

	// Triggers every 20ms never leave a quiet window of 50ms.
	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		d.Trigger(changeState)
		time.Sleep(20 * time.Millisecond)
	}

	if got := c.state.Load(); got < 2 {
		t.Errorf("expected periodic flushes during a steady stream, got %d", got)
	}
}

func TestDebouncerSeparateWindowsFireIndependently(t *testing.T) {
	d, c := newCountingDebouncer(0)
	defer d.Stop()

	d.Trigger(changeState)
	time.Sleep(100 * time.Millisecond)
	d.Trigger(changeState)
	time.Sleep(100 * time.Millisecond)

	if got := c.state.Load(); got != 2 {
		t.Errorf("expected 2 state callbacks for separate windows, got %d", got)
	}
}

func TestDebouncerStop(t *testing.T) {
	d, c := newCountingDebouncer(0)

	d.Trigger(changeState)
	d.Stop()
	d.Trigger(changeQueue)
	time.Sleep(100 * time.Millisecond)

	if got := c.state.Load() + c.queue.Load(); got != 0 {
		t.Errorf("expected no callbacks after stop, got %d", got)
	}
}
