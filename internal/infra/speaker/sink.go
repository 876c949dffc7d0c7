package speaker

import "github.com/gopxl/beep/v2"

// DefaultSampleRate is the mixer rate every file is resampled to.
const DefaultSampleRate = beep.SampleRate(44100)

// Sink is the mixer adapters play into. Lock must be held while touching
// any streamer that was handed to Play.
type Sink interface {
	SampleRate() beep.SampleRate
	Play(s beep.Streamer) error
	Lock()
	Unlock()
}
