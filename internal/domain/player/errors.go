package player

import (
	"errors"
	"fmt"
)

var (
	ErrLoad            = errors.New("load failed")
	ErrUnsupportedRate = errors.New("unsupported playback rate")
	ErrEmptyQueue      = errors.New("queue is empty")
	ErrEmptyHistory    = errors.New("no previous tracks in history")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNotQueued       = errors.New("item is not queued")
	ErrAlreadyQueued   = errors.New("item is already in the player")
	ErrNoSession       = errors.New("nothing is playing")
	ErrClosed          = errors.New("player closed")
)

// LoadError reports that a backend could not prepare an item.
type LoadError struct {
	Item *Item
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q: %v", e.Item.Title(), e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// RateError reports a rejected rate change.
type RateError struct {
	Rate      float64
	Supported []float64
}

func (e *RateError) Error() string {
	return fmt.Sprintf("playback rate %gx not supported (available: %v)", e.Rate, e.Supported)
}

func (e *RateError) Unwrap() error { return ErrUnsupportedRate }
