// Package player provides the core player domain logic: the playback
// queue, history, the live playback session and the backend adapter contract.
package player

// State is the playback state of a session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Status constants for the transport-facing status string.
const (
	StatusPlay  = "play"
	StatusPause = "pause"
	StatusStop  = "stop"
)

// Status maps a state to the play/pause/stop status clients display.
func (s State) Status() string {
	switch s {
	case StatePlaying:
		return StatusPlay
	case StatePaused, StateLoading:
		return StatusPause
	default:
		return StatusStop
	}
}

// NowPlayingState is the reduced state the OS now-playing integration knows.
type NowPlayingState string

const (
	NowPlayingPlaying NowPlayingState = "playing"
	NowPlayingPaused  NowPlayingState = "paused"
	NowPlayingNone    NowPlayingState = "none"
)

// NowPlaying maps a session state to the now-playing playback state.
func (s State) NowPlaying() NowPlayingState {
	switch s {
	case StatePlaying:
		return NowPlayingPlaying
	case StatePaused:
		return NowPlayingPaused
	default:
		return NowPlayingNone
	}
}

// Snapshot is a point-in-time copy of the engine state.
type Snapshot struct {
	Current  *ItemInfo
	Queue    []ItemInfo
	History  []ItemInfo
	State    State
	Position float64 // seconds
	Duration float64 // seconds, 0 if unknown
	Rate     float64
	Volume   float64
}

// ToJSON returns the snapshot as a map suitable for the pushState event.
func (s Snapshot) ToJSON() map[string]interface{} {
	state := map[string]interface{}{
		"status":   s.State.Status(),
		"state":    s.State.String(),
		"seek":     int(s.Position * 1000),
		"duration": int(s.Duration),
		"rate":     s.Rate,
		"volume":   int(s.Volume*100 + 0.5),
		"position": 0,
		"title":    "",
		"artist":   "",
		"service":  "",
		"uri":      "",
		"albumart": "",
		"elapsed":  FormatTime(s.Position),
		"total":    FormatTime(s.Duration),
	}
	if c := s.Current; c != nil {
		state["title"] = c.Title
		state["artist"] = c.Artist
		state["service"] = c.Kind
		state["id"] = c.ID
		if c.StreamID != "" {
			state["uri"] = c.StreamID
		} else {
			state["uri"] = c.Path
		}
		if len(c.Artwork) > 0 {
			state["albumart"] = c.Artwork[0].Src
		}
	}
	return state
}
