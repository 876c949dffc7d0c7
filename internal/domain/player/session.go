package player

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Session binds one item to one adapter instance and drives the adapter
// through Loading, Paused, Playing and Ended. All methods run on the
// player loop; asynchronous completions are posted back to it.
type Session struct {
	gen     uint64
	item    *Item
	adapter Adapter
	state   State

	autoplay   bool
	startDelay time.Duration
	volume     func() float64

	post    func(func())
	onState func(*Session, State)
	onError func(*Session, error)

	cancel   context.CancelFunc
	timer    *time.Timer
	released bool
}

type sessionHooks struct {
	post    func(func())
	onState func(*Session, State)
	onError func(*Session, error)
}

func newSession(gen uint64, item *Item, adapter Adapter, startDelay time.Duration, volume func() float64, hooks sessionHooks) *Session {
	return &Session{
		gen:        gen,
		item:       item,
		adapter:    adapter,
		state:      StateIdle,
		startDelay: startDelay,
		volume:     volume,
		post:       hooks.post,
		onState:    hooks.onState,
		onError:    hooks.onError,
	}
}

// Generation identifies the session among all sessions of one Service.
func (s *Session) Generation() uint64 { return s.gen }

// Item returns the bound item.
func (s *Session) Item() *Item { return s.item }

// State returns the session state.
func (s *Session) State() State { return s.state }

// start begins loading the item. With autoplay set, playback starts once
// the backend is ready and the start delay has passed.
func (s *Session) start(autoplay bool) {
	s.autoplay = autoplay
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.setState(StateLoading)

	events := AdapterEvents{
		OnStateChange: func(st State) {
			s.post(func() { s.backendState(st) })
		},
		OnEnded: func() {
			s.post(s.ended)
		},
	}
	go func() {
		err := s.adapter.Load(ctx, s.item, events)
		s.post(func() { s.loaded(err) })
	}()
}

func (s *Session) loaded(err error) {
	if s.released {
		log.Debug().Uint64("session", s.gen).Msg("Discarding load result of released session")
		return
	}
	if err != nil {
		s.state = StateIdle
		s.onError(s, &LoadError{Item: s.item, Err: err})
		return
	}

	// Read now: the control may have moved while the backend was loading.
	volume := 1.0
	if s.volume != nil {
		volume = ClampVolume(s.volume())
	}
	if err := s.adapter.SetVolume(volume); err != nil {
		log.Warn().Err(err).Msg("Failed to apply volume to new session")
	}
	s.setState(StatePaused)
	if s.released || !s.autoplay {
		return
	}
	if s.startDelay <= 0 {
		s.play()
		return
	}
	s.timer = time.AfterFunc(s.startDelay, func() {
		s.post(func() {
			s.timer = nil
			if s.released || !s.autoplay || s.state != StatePaused {
				return
			}
			s.play()
		})
	})
}

func (s *Session) play() error {
	if s.released {
		return ErrNoSession
	}
	switch s.state {
	case StateLoading:
		s.autoplay = true
		return nil
	case StatePlaying:
		return nil
	case StatePaused:
	default:
		return ErrNoSession
	}
	s.stopTimer()
	if err := s.adapter.Play(); err != nil {
		return err
	}
	s.setState(StatePlaying)
	return nil
}

func (s *Session) pause() error {
	if s.released {
		return ErrNoSession
	}
	switch s.state {
	case StateLoading:
		s.autoplay = false
		return nil
	case StatePaused:
		// A pause during the start delay cancels the pending start.
		s.autoplay = false
		s.stopTimer()
		return nil
	case StatePlaying:
	default:
		return nil
	}
	if err := s.adapter.Pause(); err != nil {
		return err
	}
	s.setState(StatePaused)
	return nil
}

// stop releases the adapter. The session is dead afterwards and every
// later completion addressed to it is dropped.
func (s *Session) stop() {
	if s.released {
		return
	}
	s.released = true
	s.stopTimer()
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.adapter.Stop(); err != nil {
		log.Warn().Err(err).Str("title", s.item.Title()).Msg("Failed to release backend")
	}
	s.state = StateIdle
}

func (s *Session) ended() {
	if s.released {
		return
	}
	if s.state != StatePlaying && s.state != StatePaused {
		return
	}
	s.setState(StateEnded)
}

// backendState follows play/pause changes the backend made on its own.
func (s *Session) backendState(st State) {
	if s.released || st == s.state {
		return
	}
	if st != StatePlaying && st != StatePaused {
		return
	}
	if s.state != StatePlaying && s.state != StatePaused {
		return
	}
	s.setState(st)
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) setState(st State) {
	s.state = st
	if s.onState != nil {
		s.onState(s, st)
	}
}
