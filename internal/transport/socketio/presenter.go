package socketio

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/turntable/internal/domain/player"
)

// The methods below run on the player loop. They only record and emit;
// anything that reads back from the player goes through the debouncer.

// OnQueueChanged implements player.Presenter.
func (s *Server) OnQueueChanged(q player.QueueSnapshot) {
	if q.Items == nil {
		q.Items = []player.ItemInfo{}
	}
	s.mu.Lock()
	s.lastQueue = q
	s.queueSet = true
	if q.Current == nil {
		s.nowPlay = nil
	}
	s.mu.Unlock()
	s.debouncer.Trigger(changeQueue)
}

// OnTransportStateChanged implements player.Presenter.
func (s *Server) OnTransportStateChanged(st player.State) {
	log.Debug().Str("state", st.String()).Msg("Transport state changed")
	s.debouncer.Trigger(changeState)
}

// OnProgress implements player.Presenter.
func (s *Server) OnProgress(current, total string, ratio float64) {
	s.io.Emit("pushProgress", map[string]interface{}{
		"current": current,
		"total":   total,
		"ratio":   ratio,
	})
}

// OnNotice implements player.Presenter.
func (s *Server) OnNotice(n player.Notice) {
	s.io.Emit("pushToastMessage", n)
}

// OnQueueExhausted implements player.Presenter.
func (s *Server) OnQueueExhausted() {
	s.io.Emit("pushQueueExhausted")
}

// OnMetadata implements player.NowPlaying.
func (s *Server) OnMetadata(m player.Metadata) {
	s.mu.Lock()
	s.nowPlay = &m
	s.mu.Unlock()
	s.io.Emit("pushNowPlaying", m)
}

// OnPlaybackState implements player.NowPlaying. Clients get the full
// transport state through pushState.
func (s *Server) OnPlaybackState(player.NowPlayingState) {}

// OnPosition implements player.NowPlaying. Position reaches clients
// through pushProgress.
func (s *Server) OnPosition(time.Duration, time.Duration, float64) {}

var (
	_ player.Presenter  = (*Server)(nil)
	_ player.NowPlaying = (*Server)(nil)
)
