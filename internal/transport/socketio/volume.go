package socketio

import (
	"math"
	"sync/atomic"

	"github.com/edumarques81/turntable/internal/domain/player"
)

// Volume is the ambient volume control. Clients set it; the player reads
// it whenever a new session becomes ready.
type Volume struct {
	bits atomic.Uint64
}

// NewVolume creates a volume control at v.
func NewVolume(v float64) *Volume {
	vol := &Volume{}
	vol.Set(v)
	return vol
}

// Get returns the current value in [0,1].
func (v *Volume) Get() float64 {
	return math.Float64frombits(v.bits.Load())
}

// Set stores x clamped to [0,1] and returns the stored value.
func (v *Volume) Set(x float64) float64 {
	x = player.ClampVolume(x)
	v.bits.Store(math.Float64bits(x))
	return x
}
