package player

import (
	"context"
	"fmt"
	"time"
)

// AdapterEvents receives asynchronous notifications from a backend.
// Callbacks may be invoked from any goroutine.
type AdapterEvents struct {
	OnStateChange func(State)
	OnEnded       func()
}

// Adapter is the uniform playback capability of one backend instance.
// An adapter is bound to at most one item for its whole life.
type Adapter interface {
	// Load prepares item for playback and blocks until the backend is
	// ready or ctx is cancelled.
	Load(ctx context.Context, item *Item, events AdapterEvents) error
	Play() error
	Pause() error
	// Stop halts playback and releases the output binding.
	Stop() error
	Seek(pos time.Duration) error
	SetPlaybackRate(rate float64) error
	SetVolume(v float64) error
	Position() time.Duration
	// Duration returns false while the backend does not know it yet.
	Duration() (time.Duration, bool)
	State() State
	Rate() float64
	// SupportedRates returns the discrete rate set, or nil when any
	// positive rate is accepted.
	SupportedRates() []float64
}

// AdapterFactory creates a fresh adapter for an item kind.
type AdapterFactory func(kind Kind) (Adapter, error)

// Backends builds an AdapterFactory from one constructor per kind.
func Backends(local, remote func() Adapter) AdapterFactory {
	return func(kind Kind) (Adapter, error) {
		switch kind {
		case KindLocalFile:
			if local != nil {
				return local(), nil
			}
		case KindRemoteStream:
			if remote != nil {
				return remote(), nil
			}
		}
		return nil, fmt.Errorf("no backend for %s items", kind)
	}
}

// ClampVolume limits v to [0,1].
func ClampVolume(v float64) float64 {
	if v < 0 {
		return 0
	} else if v > 1 {
		return 1
	}
	return v
}
