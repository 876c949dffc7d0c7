package mpd

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/edumarques81/turntable/internal/domain/player"
	"github.com/edumarques81/turntable/internal/infra/stream"
	"github.com/fhs/gompd/v2/mpd"
)

// MPD has no tempo control.
var outputRates = []float64{1}

var _ stream.Output = (*Output)(nil)

// Output plays stream URLs through MPD. It owns the MPD queue: every load
// replaces it with the single stream.
type Output struct {
	client *Client

	mu          sync.Mutex
	started     bool
	pendingSeek time.Duration
}

// NewOutput creates an output on client.
func NewOutput(client *Client) *Output {
	return &Output{client: client}
}

func (o *Output) Load(ctx context.Context, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.started = false
	o.pendingSeek = 0
	if err := o.client.Stop(); err != nil {
		return err
	}
	if err := o.client.Clear(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return o.client.Add(url)
}

// Play starts the loaded stream or resumes it from pause.
func (o *Output) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return o.client.Pause(false)
	}
	if err := o.client.Play(0); err != nil {
		return err
	}
	o.started = true
	if o.pendingSeek > 0 {
		seek := o.pendingSeek
		o.pendingSeek = 0
		return o.client.Seek(seek)
	}
	return nil
}

func (o *Output) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		return nil
	}
	return o.client.Pause(true)
}

// Stop halts playback and empties the MPD queue.
func (o *Output) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.started = false
	if err := o.client.Stop(); err != nil {
		return err
	}
	return o.client.Clear()
}

// Seek moves within the stream. Before the first play the position is
// applied once playback starts.
func (o *Output) Seek(pos time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		o.pendingSeek = pos
		return nil
	}
	return o.client.Seek(pos)
}

// SetVolume maps v in [0,1] to the MPD mixer range.
func (o *Output) SetVolume(v float64) error {
	return o.client.SetVolume(int(player.ClampVolume(v)*100 + 0.5))
}

func (o *Output) SetRate(rate float64) error {
	return player.CheckRate(rate, outputRates)
}

func (o *Output) Rates() []float64 {
	return outputRates
}

func (o *Output) Status(ctx context.Context) (stream.Status, error) {
	attrs, err := o.client.Status()
	if err != nil {
		return stream.Status{}, err
	}
	return parseStatus(attrs), nil
}

// Watch forwards changes of the MPD player subsystem.
func (o *Output) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := o.client.Watch(ctx, "player")
	if err != nil {
		return nil, err
	}
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range events {
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, nil
}

// parseStatus converts MPD status attributes to a stream status.
func parseStatus(status mpd.Attrs) stream.Status {
	var st stream.Status

	switch status["state"] {
	case "play":
		st.State = player.StatePlaying
	case "pause":
		st.State = player.StatePaused
	default:
		st.State = player.StateIdle
	}

	// MPD reports seconds with decimals
	if elapsed, err := strconv.ParseFloat(status["elapsed"], 64); err == nil {
		st.Elapsed = time.Duration(elapsed * float64(time.Second))
	}
	if duration, err := strconv.ParseFloat(status["duration"], 64); err == nil && duration > 0 {
		st.Duration = time.Duration(duration * float64(time.Second))
	}
	return st
}
