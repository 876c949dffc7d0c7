package speaker

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/edumarques81/turntable/internal/domain/player"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/rs/zerolog/log"
)

// resampleQuality trades CPU for quality when changing rate.
const resampleQuality = 4

var errNotLocal = errors.New("item is not a local file")

var _ player.Adapter = (*Adapter)(nil)

// Adapter is the player.Adapter for local files. It accepts any positive
// playback rate.
type Adapter struct {
	sink Sink

	mu        sync.Mutex
	events    player.AdapterEvents
	streamer  beep.StreamSeekCloser
	format    beep.Format
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	volume    *effects.Volume
	state     player.State
	rate      float64
	stopped   bool
}

// NewAdapter creates an adapter that plays into sink.
func NewAdapter(sink Sink) *Adapter {
	return &Adapter{
		sink:  sink,
		state: player.StateIdle,
		rate:  1,
	}
}

// Load decodes the file and queues it on the sink, paused.
func (a *Adapter) Load(ctx context.Context, item *player.Item, events player.AdapterEvents) error {
	if item.Local == nil {
		return errNotLocal
	}
	streamer, format, err := Decode(item.Local.Path)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped || ctx.Err() != nil {
		streamer.Close()
		return context.Canceled
	}

	a.events = events
	a.streamer = streamer
	a.format = format
	a.resampler = beep.ResampleRatio(resampleQuality, a.ratio(a.rate), streamer)
	a.ctrl = &beep.Ctrl{Streamer: a.resampler, Paused: true}
	a.volume = &effects.Volume{Streamer: a.ctrl, Base: 2}

	if err := a.sink.Play(beep.Seq(a.volume, beep.Callback(func() {
		// Runs on the mixer with the sink locked.
		go a.finished()
	}))); err != nil {
		a.release()
		return err
	}

	a.state = player.StatePaused
	log.Debug().Str("path", item.Local.Path).Int("sampleRate", int(format.SampleRate)).
		Dur("duration", format.SampleRate.D(streamer.Len())).Msg("Local file loaded")
	return nil
}

// ratio converts a playback rate to a resampling ratio against the sink.
func (a *Adapter) ratio(rate float64) float64 {
	return rate * float64(a.format.SampleRate) / float64(a.sink.SampleRate())
}

func (a *Adapter) Play() error {
	return a.setPaused(false, player.StatePlaying)
}

func (a *Adapter) Pause() error {
	return a.setPaused(true, player.StatePaused)
}

func (a *Adapter) setPaused(paused bool, st player.State) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ctrl == nil {
		return nil
	}
	a.sink.Lock()
	a.ctrl.Paused = paused
	a.sink.Unlock()
	a.state = st
	return nil
}

// Stop detaches the file from the sink and closes it.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	a.release()
	a.state = player.StateIdle
	return nil
}

// release must be called with a.mu held.
func (a *Adapter) release() {
	if a.ctrl != nil {
		a.sink.Lock()
		a.ctrl.Streamer = nil
		a.sink.Unlock()
		a.ctrl = nil
	}
	if a.streamer != nil {
		if err := a.streamer.Close(); err != nil {
			log.Debug().Err(err).Msg("Closing decoder failed")
		}
		a.streamer = nil
	}
	a.resampler = nil
	a.volume = nil
}

func (a *Adapter) finished() {
	a.mu.Lock()
	if a.stopped || a.state != player.StatePlaying {
		a.mu.Unlock()
		return
	}
	a.state = player.StateEnded
	onEnded := a.events.OnEnded
	a.mu.Unlock()

	if onEnded != nil {
		onEnded()
	}
}

func (a *Adapter) Seek(pos time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.streamer == nil {
		return nil
	}
	n := a.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if last := a.streamer.Len() - 1; last >= 0 && n > last {
		n = last
	}

	a.sink.Lock()
	defer a.sink.Unlock()
	return a.streamer.Seek(n)
}

func (a *Adapter) SetPlaybackRate(rate float64) error {
	if err := player.CheckRate(rate, nil); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.rate = rate
	if a.resampler != nil {
		a.sink.Lock()
		a.resampler.SetRatio(a.ratio(rate))
		a.sink.Unlock()
	}
	return nil
}

// SetVolume maps a linear gain in [0,1] onto the base-2 volume effect.
func (a *Adapter) SetVolume(v float64) error {
	v = player.ClampVolume(v)
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.volume == nil {
		return nil
	}
	a.sink.Lock()
	a.volume.Silent = v == 0
	if v > 0 {
		a.volume.Volume = math.Log2(v)
	}
	a.sink.Unlock()
	return nil
}

func (a *Adapter) Position() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.streamer == nil {
		return 0
	}
	a.sink.Lock()
	pos := a.streamer.Position()
	a.sink.Unlock()
	return a.format.SampleRate.D(pos)
}

func (a *Adapter) Duration() (time.Duration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.streamer == nil {
		return 0, false
	}
	n := a.streamer.Len()
	return a.format.SampleRate.D(n), n > 0
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

// SupportedRates returns nil: local playback is continuously variable.
func (a *Adapter) SupportedRates() []float64 { return nil }
