package player

import (
	"math"

	"github.com/samber/lo"
)

// Turntable speed presets in revolutions per minute.
const (
	Speed33 = 33.33
	Speed45 = 45.0
	Speed78 = 78.0
)

// Speeds lists the presets in display order.
var Speeds = []float64{Speed33, Speed45, Speed78}

// remoteSpeedRates maps presets to the nominal rates a stream backend
// is asked for. Streams only accept values from a discrete set, so there
// is no proportional fallback.
var remoteSpeedRates = map[float64]float64{
	Speed33: 1,
	Speed45: 1.25,
	Speed78: 2,
}

// RateForSpeed translates a turntable speed to the nominal playback rate
// for the given backend kind.
func RateForSpeed(kind Kind, rpm float64) (float64, error) {
	if rpm <= 0 || math.IsNaN(rpm) {
		return 0, &RateError{Rate: rpm}
	}
	if kind == KindLocalFile {
		return rpm / Speed33, nil
	}
	for preset, rate := range remoteSpeedRates {
		if math.Abs(preset-rpm) < 0.005 {
			return rate, nil
		}
	}
	return 0, &RateError{Rate: rpm, Supported: lo.Keys(remoteSpeedRates)}
}

// CheckRate validates rate against a discrete supported set. A nil set
// accepts any positive rate. Membership is exact.
func CheckRate(rate float64, supported []float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return &RateError{Rate: rate, Supported: supported}
	}
	if supported == nil {
		return nil
	}
	if !lo.Contains(supported, rate) {
		return &RateError{Rate: rate, Supported: supported}
	}
	return nil
}
