// Package stream plays remote video platform streams. The stream URL is
// resolved on load and handed to an audio Output.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edumarques81/turntable/internal/domain/player"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultPollInterval is how often the output status is sampled
	// when the output sends no change notifications.
	DefaultPollInterval = time.Second

	// settleWindow suppresses backend state reports right after a
	// command of ours, while the output still reports the old state.
	settleWindow = time.Second
)

var errNotRemote = errors.New("item is not a remote stream")

// URLResolver turns a stream id into a playable URL.
type URLResolver interface {
	StreamURL(ctx context.Context, id string) (string, time.Duration, error)
}

// Status is a sample of the output state.
type Status struct {
	State    player.State // Idle, Playing or Paused
	Elapsed  time.Duration
	Duration time.Duration // 0 if unknown
}

// Output is an audio sink able to play a URL. Load replaces whatever the
// output held and leaves it ready but not playing.
type Output interface {
	Load(ctx context.Context, url string) error
	Play() error
	Pause() error
	Stop() error
	Seek(pos time.Duration) error
	SetVolume(v float64) error
	SetRate(rate float64) error
	Rates() []float64
	Status(ctx context.Context) (Status, error)
	// Watch delivers a value whenever the player state may have changed.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

var _ player.Adapter = (*Adapter)(nil)

// Adapter is the player.Adapter for remote streams.
type Adapter struct {
	resolver     URLResolver
	output       Output
	pollInterval time.Duration

	mu          sync.Mutex
	events      player.AdapterEvents
	state       player.State
	elapsed     time.Duration
	sampledAt   time.Time
	duration    time.Duration
	hint        time.Duration
	rate        float64
	lastCommand time.Time
	cancel      context.CancelFunc
	stopped     bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithPollInterval sets the status sampling period.
func WithPollInterval(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.pollInterval = d
		}
	}
}

// NewAdapter creates an adapter bound to output.
func NewAdapter(resolver URLResolver, output Output, opts ...Option) *Adapter {
	a := &Adapter{
		resolver:     resolver,
		output:       output,
		pollInterval: DefaultPollInterval,
		state:        player.StateIdle,
		rate:         1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load resolves the stream URL and loads it into the output.
func (a *Adapter) Load(ctx context.Context, item *player.Item, events player.AdapterEvents) error {
	if item.Remote == nil {
		return errNotRemote
	}
	a.mu.Lock()
	a.events = events
	a.state = player.StateLoading
	a.mu.Unlock()

	url, dur, err := a.resolver.StreamURL(ctx, item.Remote.StreamID)
	if err != nil {
		return fmt.Errorf("resolve stream %s: %w", item.Remote.StreamID, err)
	}
	if dur <= 0 {
		dur = item.Remote.DurationHint
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return context.Canceled
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.output.Load(ctx, url); err != nil {
		return fmt.Errorf("load stream: %w", err)
	}

	a.hint = dur
	a.state = player.StatePaused
	a.elapsed = 0
	a.sampledAt = time.Now()
	watchCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.watch(watchCtx)

	log.Debug().Str("id", item.Remote.StreamID).Dur("duration", dur).Msg("Stream loaded")
	return nil
}

func (a *Adapter) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.output.Play(); err != nil {
		return err
	}
	a.sampledAt = time.Now()
	a.lastCommand = a.sampledAt
	a.state = player.StatePlaying
	return nil
}

func (a *Adapter) Pause() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.output.Pause(); err != nil {
		return err
	}
	a.elapsed = a.positionLocked()
	a.sampledAt = time.Now()
	a.lastCommand = a.sampledAt
	a.state = player.StatePaused
	return nil
}

// Stop halts the output and stops watching it. The adapter cannot be
// reused afterwards.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return nil
	}
	a.stopped = true
	if a.cancel != nil {
		a.cancel()
	}
	a.state = player.StateIdle
	return a.output.Stop()
}

func (a *Adapter) Seek(pos time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.output.Seek(pos); err != nil {
		return err
	}
	a.elapsed = pos
	a.sampledAt = time.Now()
	a.lastCommand = a.sampledAt
	return nil
}

func (a *Adapter) SetPlaybackRate(rate float64) error {
	if err := player.CheckRate(rate, a.output.Rates()); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.output.SetRate(rate); err != nil {
		return err
	}
	a.elapsed = a.positionLocked()
	a.sampledAt = time.Now()
	a.rate = rate
	return nil
}

func (a *Adapter) SetVolume(v float64) error {
	return a.output.SetVolume(player.ClampVolume(v))
}

// Position interpolates from the last output sample while playing.
func (a *Adapter) Position() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.positionLocked()
}

func (a *Adapter) positionLocked() time.Duration {
	pos := a.elapsed
	if a.state == player.StatePlaying {
		pos += time.Duration(float64(time.Since(a.sampledAt)) * a.rate)
	}
	if d := a.durationLocked(); d > 0 && pos > d {
		pos = d
	}
	return pos
}

func (a *Adapter) Duration() (time.Duration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d := a.durationLocked()
	return d, d > 0
}

func (a *Adapter) durationLocked() time.Duration {
	if a.duration > 0 {
		return a.duration
	}
	return a.hint
}

func (a *Adapter) State() player.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Adapter) Rate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rate
}

func (a *Adapter) SupportedRates() []float64 {
	return a.output.Rates()
}

// watch samples the output on every change notification and on a timer.
func (a *Adapter) watch(ctx context.Context) {
	changes, err := a.output.Watch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Output change notifications unavailable, polling only")
	}
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
		case <-ticker.C:
		}
		st, err := a.output.Status(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Debug().Err(err).Msg("Output status failed")
			}
			continue
		}
		a.apply(st)
	}
}

// apply folds a status sample into the adapter and reports what changed.
func (a *Adapter) apply(st Status) {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	if st.Duration > 0 {
		a.duration = st.Duration
	}
	prev := a.state
	settling := time.Since(a.lastCommand) < settleWindow

	var notify func()
	switch {
	case prev == player.StatePlaying && st.State == player.StateIdle && !settling:
		a.state = player.StateEnded
		a.elapsed = a.durationLocked()
		notify = a.events.OnEnded
	case prev == player.StateEnded:
	case st.State == player.StateIdle:
		// Loaded but not started yet.
	default:
		a.elapsed = st.Elapsed
		a.sampledAt = time.Now()
		if st.State != prev && !settling && (prev == player.StatePlaying || prev == player.StatePaused) {
			a.state = st.State
			if cb := a.events.OnStateChange; cb != nil {
				s := st.State
				notify = func() { cb(s) }
			}
		}
	}
	a.mu.Unlock()

	if notify != nil {
		notify()
	}
}
