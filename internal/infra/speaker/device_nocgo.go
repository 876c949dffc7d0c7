//go:build !((linux && cgo) || windows || darwin)

package speaker

import (
	"errors"
	"sync"

	"github.com/gopxl/beep/v2"
)

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio requires cgo for native sound libraries.
const AudioAvailable = false

var errNoAudio = errors.New("audio output not available in this build")

// Device is a sink that refuses to play when cgo is disabled. Local
// files then fail to load and are skipped.
type Device struct {
	sampleRate beep.SampleRate
	mu         sync.Mutex
}

// NewDevice creates the device sink.
func NewDevice(sampleRate beep.SampleRate) *Device {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Device{sampleRate: sampleRate}
}

func (d *Device) SampleRate() beep.SampleRate { return d.sampleRate }

func (d *Device) Play(beep.Streamer) error { return errNoAudio }

func (d *Device) Lock() { d.mu.Lock() }

func (d *Device) Unlock() { d.mu.Unlock() }
