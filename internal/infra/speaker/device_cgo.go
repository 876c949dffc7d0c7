//go:build (linux && cgo) || windows || darwin

package speaker

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

// Device is the system audio output. The speaker is initialised on the
// first Play.
type Device struct {
	sampleRate beep.SampleRate
	once       sync.Once
	err        error
}

// NewDevice creates the device sink.
func NewDevice(sampleRate beep.SampleRate) *Device {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Device{sampleRate: sampleRate}
}

func (d *Device) init() error {
	d.once.Do(func() {
		d.err = speaker.Init(d.sampleRate, d.sampleRate.N(time.Second/10))
		if d.err == nil {
			log.Info().Int("sampleRate", int(d.sampleRate)).Msg("Audio device initialised")
		}
	})
	return d.err
}

func (d *Device) SampleRate() beep.SampleRate { return d.sampleRate }

func (d *Device) Play(s beep.Streamer) error {
	if err := d.init(); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(s)
	return nil
}

func (d *Device) Lock() { speaker.Lock() }

func (d *Device) Unlock() { speaker.Unlock() }
