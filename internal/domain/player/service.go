package player

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Default timings.
const (
	DefaultStartDelay       = 1500 * time.Millisecond
	DefaultProgressInterval = time.Second
	DefaultSeekOffset       = 10 * time.Second
)

// User-facing notice texts.
const (
	msgQueueEmpty      = "Please add a track to the queue."
	msgNoMoreTracks    = "No more tracks in the queue."
	msgNoPrevious      = "No previous tracks in history."
	msgUnsupportedRate = "Unsupported speed selected."
)

// Options configures a Service.
type Options struct {
	// StartDelay is the grace period between a session becoming ready
	// and automatic playback.
	StartDelay time.Duration
	// ProgressInterval is the period of progress refreshes while playing.
	// Zero disables them.
	ProgressInterval time.Duration
	// SeekOffset is the step used by SeekForward and SeekBackward.
	SeekOffset time.Duration
	// Volume returns the ambient volume control value applied to every
	// new session. The presentation layer owns it.
	Volume func() float64
}

// DefaultOptions returns the stock timings.
func DefaultOptions() Options {
	return Options{
		StartDelay:       DefaultStartDelay,
		ProgressInterval: DefaultProgressInterval,
		SeekOffset:       DefaultSeekOffset,
	}
}

// Service is the queue and history engine. It owns the queue, the
// history, the current item and at most one live session.
//
// All state is confined to the goroutine running Run. Exported methods
// post work to that goroutine and wait for it, so they are safe to call
// from anywhere except from within a Presenter or NowPlaying callback.
type Service struct {
	backends AdapterFactory
	opts     Options
	box      *mailbox

	queue   Queue
	history History
	current *Item
	session *Session
	gen     uint64

	presenters []Presenter
	nowPlaying []NowPlaying
}

// NewService creates a player service that builds adapters with backends.
func NewService(backends AdapterFactory, opts Options) *Service {
	if opts.SeekOffset <= 0 {
		opts.SeekOffset = DefaultSeekOffset
	}
	if opts.StartDelay < 0 {
		opts.StartDelay = 0
	}
	return &Service{
		backends: backends,
		opts:     opts,
		box:      newMailbox(),
	}
}

// AddPresenter registers a presentation subscriber.
func (s *Service) AddPresenter(p Presenter) {
	s.box.post(func() { s.presenters = append(s.presenters, p) })
}

// AddNowPlaying registers a now-playing subscriber.
func (s *Service) AddNowPlaying(n NowPlaying) {
	s.box.post(func() { s.nowPlaying = append(s.nowPlaying, n) })
}

// Run processes commands and backend events until ctx is done. The live
// session is released on return.
func (s *Service) Run(ctx context.Context) error {
	var ticks <-chan time.Time
	if s.opts.ProgressInterval > 0 {
		ticker := time.NewTicker(s.opts.ProgressInterval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	log.Info().Msg("Player loop started")
	s.box.run(ctx, ticks, s.tick)
	s.release()
	log.Info().Msg("Player loop stopped")
	return ctx.Err()
}

// Enqueue appends items to the queue and starts playback if no session
// is live. A batch holding an item that is already current, queued or in
// history is rejected whole with ErrAlreadyQueued.
func (s *Service) Enqueue(items ...*Item) error {
	return s.box.call(func() error { return s.enqueue(items...) })
}

// Advance moves to the next queued item, archiving the current one.
func (s *Service) Advance() error {
	return s.box.call(func() error {
		s.advance()
		return nil
	})
}

// Skip stops the current item and advances.
func (s *Service) Skip() error {
	return s.box.call(s.skip)
}

// GoBack replays the most recent history item. The interrupted item goes
// back to the front of the queue.
func (s *Service) GoBack() error {
	return s.box.call(s.goBack)
}

// Remove removes item by identity from the queue, or stops it and
// advances when it is the current item.
func (s *Service) Remove(item *Item) error {
	return s.box.call(func() error { return s.remove(item) })
}

// RemoveByID removes the queued or current item with the given id.
func (s *Service) RemoveByID(id string) error {
	return s.box.call(func() error {
		if s.current != nil && s.current.ID == id {
			return s.remove(s.current)
		}
		item, ok := s.queue.Find(id)
		if !ok {
			return ErrNotQueued
		}
		return s.remove(item)
	})
}

// RemoveAt removes the queued item at pos.
func (s *Service) RemoveAt(pos int) error {
	return s.box.call(func() error {
		if _, err := s.queue.RemoveAt(pos); err != nil {
			return err
		}
		s.emitQueue()
		return nil
	})
}

// Reorder moves the queued item at from to position to.
func (s *Service) Reorder(from, to int) error {
	return s.box.call(func() error {
		if err := s.queue.Move(from, to); err != nil {
			return err
		}
		s.emitQueue()
		return nil
	})
}

// Clear empties the queue. The current item keeps playing.
func (s *Service) Clear() error {
	return s.box.call(func() error {
		s.queue.Clear()
		s.emitQueue()
		return nil
	})
}

// SetVolume forwards v, clamped to [0,1], to the live session.
func (s *Service) SetVolume(v float64) error {
	return s.box.call(func() error {
		if s.session == nil {
			return nil
		}
		return s.session.adapter.SetVolume(ClampVolume(v))
	})
}

// SetPlaybackRate forwards rate to the live session if its backend
// supports it.
func (s *Service) SetPlaybackRate(rate float64) error {
	return s.box.call(func() error { return s.setRate(rate) })
}

// SetSpeed translates a turntable speed for the current backend kind and
// applies the resulting rate.
func (s *Service) SetSpeed(rpm float64) error {
	return s.box.call(func() error {
		if s.session == nil {
			return nil
		}
		rate, err := RateForSpeed(s.current.Kind(), rpm)
		if err != nil {
			s.emitNotice(NoticeWarning, "Speed", msgUnsupportedRate)
			return err
		}
		return s.setRate(rate)
	})
}

// Seek moves the live session to pos, clamped to the item duration.
// It is a no-op while the duration is unknown.
func (s *Service) Seek(pos time.Duration) error {
	return s.box.call(func() error { return s.seek(pos) })
}

// SeekRatio seeks to a fraction of the item duration.
func (s *Service) SeekRatio(ratio float64) error {
	return s.box.call(func() error {
		if s.session == nil {
			return nil
		}
		dur, ok := s.session.adapter.Duration()
		if !ok || dur <= 0 {
			return nil
		}
		ratio = min(max(ratio, 0), 1)
		return s.seek(time.Duration(ratio * float64(dur)))
	})
}

// SeekBy seeks relative to the current position.
func (s *Service) SeekBy(offset time.Duration) error {
	return s.box.call(func() error {
		if s.session == nil {
			return nil
		}
		return s.seek(s.session.adapter.Position() + offset)
	})
}

// SeekForward skips ahead by the configured seek offset.
func (s *Service) SeekForward() error { return s.SeekBy(s.opts.SeekOffset) }

// SeekBackward skips back by the configured seek offset.
func (s *Service) SeekBackward() error { return s.SeekBy(-s.opts.SeekOffset) }

// Play resumes the live session, or starts the queue when idle.
func (s *Service) Play() error {
	return s.box.call(s.play)
}

// Pause pauses the live session.
func (s *Service) Pause() error {
	return s.box.call(func() error {
		if s.session == nil {
			return nil
		}
		return s.session.pause()
	})
}

// TogglePlayPause pauses when playing and plays otherwise.
func (s *Service) TogglePlayPause() error {
	return s.box.call(func() error {
		if s.session != nil && s.session.state == StatePlaying {
			return s.session.pause()
		}
		return s.play()
	})
}

// Stop releases the live session and puts the current item back at the
// front of the queue.
func (s *Service) Stop() error {
	return s.box.call(func() error {
		if s.session == nil {
			return nil
		}
		s.release()
		if s.current != nil {
			s.queue.PushFront(s.current)
			s.current = nil
		}
		s.emitState(StateIdle)
		s.emitProgress(true)
		s.emitQueue()
		return nil
	})
}

// Snapshot returns a copy of the engine state.
func (s *Service) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.box.call(func() error {
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

func (s *Service) enqueue(items ...*Item) error {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[*Item]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup || s.known(item) {
			log.Warn().Str("title", item.Title()).Msg("Rejecting item that is already in the player")
			return fmt.Errorf("%q: %w", item.Title(), ErrAlreadyQueued)
		}
		seen[item] = struct{}{}
	}
	s.queue.Append(items...)
	log.Info().Int("added", len(items)).Int("queued", s.queue.Len()).Msg("Enqueued items")
	s.emitQueue()
	if s.session == nil {
		s.advance()
	}
	return nil
}

// known reports whether item is current, queued or in history.
func (s *Service) known(item *Item) bool {
	return item == s.current || s.queue.IndexOf(item) >= 0 || s.history.Contains(item)
}

func (s *Service) advance() {
	if s.queue.Len() == 0 {
		if s.current == nil && s.session == nil {
			s.emitExhausted()
			return
		}
		s.release()
		if s.current != nil {
			s.history.Push(s.current)
			s.current = nil
		}
		log.Info().Msg("Queue exhausted")
		s.emitState(StateIdle)
		s.emitProgress(true)
		s.emitQueue()
		s.emitExhausted()
		return
	}

	s.release()
	if s.current != nil {
		s.history.Push(s.current)
		s.current = nil
	}
	for s.queue.Len() > 0 {
		next := s.queue.PopFront()
		s.current = next
		if s.bind(next) {
			s.emitQueue()
			return
		}
		s.current = nil
	}

	s.emitQueue()
	s.emitState(StateIdle)
	s.emitExhausted()
}

// bind opens a new session for item and starts it. It reports false when
// no backend could be created; the item is then dropped.
func (s *Service) bind(item *Item) bool {
	adapter, err := s.backends(item.Kind())
	if err != nil {
		log.Error().Err(err).Str("title", item.Title()).Msg("Failed to create backend")
		s.emitNotice(NoticeError, "Playback", "Could not play "+item.Title())
		return false
	}

	s.gen++
	s.session = newSession(s.gen, item, adapter, s.opts.StartDelay, s.opts.Volume, sessionHooks{
		post:    s.box.post,
		onState: s.sessionState,
		onError: s.sessionFailed,
	})
	log.Info().Str("kind", item.Kind().String()).Str("title", item.Title()).
		Uint64("session", s.gen).Msg("Starting session")
	s.emitMetadata(item)
	s.session.start(true)
	return true
}

func (s *Service) release() {
	if s.session == nil {
		return
	}
	s.session.stop()
	s.session = nil
}

func (s *Service) live(sess *Session) bool {
	return sess == s.session && sess.gen == s.gen
}

func (s *Service) sessionState(sess *Session, st State) {
	if !s.live(sess) {
		log.Debug().Uint64("session", sess.gen).Str("state", st.String()).Msg("Ignoring stale session event")
		return
	}
	s.emitState(st)
	switch st {
	case StateEnded:
		log.Info().Str("title", sess.item.Title()).Msg("Item ended")
		s.emitProgress(true)
		s.advance()
	case StatePlaying, StatePaused:
		s.emitProgress(false)
	}
}

func (s *Service) sessionFailed(sess *Session, err error) {
	if !s.live(sess) {
		return
	}
	log.Warn().Err(err).Str("title", sess.item.Title()).Msg("Dropping item after load failure")
	s.release()
	s.current = nil
	s.emitNotice(NoticeError, "Playback", "Could not play "+sess.item.Title())
	s.emitState(StateIdle)
	s.advance()
}

func (s *Service) skip() error {
	if s.queue.Len() == 0 && s.session == nil {
		s.emitNotice(NoticeInfo, "Queue", msgNoMoreTracks)
		return ErrEmptyQueue
	}
	s.advance()
	return nil
}

func (s *Service) goBack() error {
	prev := s.history.Pop()
	if prev == nil {
		s.emitNotice(NoticeInfo, "History", msgNoPrevious)
		return ErrEmptyHistory
	}
	s.release()
	if s.current != nil {
		s.queue.PushFront(s.current)
	}
	s.current = prev
	if !s.bind(prev) {
		s.current = nil
		s.advance()
		return nil
	}
	s.emitQueue()
	return nil
}

func (s *Service) remove(item *Item) error {
	if item == nil {
		return ErrNotQueued
	}
	if item == s.current {
		s.advance()
		return nil
	}
	idx := s.queue.IndexOf(item)
	if idx < 0 {
		return ErrNotQueued
	}
	if _, err := s.queue.RemoveAt(idx); err != nil {
		return err
	}
	s.emitQueue()
	return nil
}

func (s *Service) play() error {
	if s.session != nil {
		return s.session.play()
	}
	if s.queue.Len() == 0 {
		s.emitNotice(NoticeInfo, "Queue", msgQueueEmpty)
		return ErrEmptyQueue
	}
	s.advance()
	return nil
}

func (s *Service) setRate(rate float64) error {
	if s.session == nil {
		return nil
	}
	a := s.session.adapter
	if err := CheckRate(rate, a.SupportedRates()); err != nil {
		s.emitNotice(NoticeWarning, "Speed", msgUnsupportedRate)
		return err
	}
	if err := a.SetPlaybackRate(rate); err != nil {
		return err
	}
	log.Debug().Float64("rate", rate).Msg("Playback rate changed")
	s.emitProgress(false)
	return nil
}

func (s *Service) seek(pos time.Duration) error {
	if s.session == nil {
		return nil
	}
	a := s.session.adapter
	dur, ok := a.Duration()
	if !ok || dur <= 0 {
		return nil
	}
	pos = min(max(pos, 0), dur)
	if err := a.Seek(pos); err != nil {
		return err
	}
	s.emitProgress(false)
	return nil
}

func (s *Service) tick() {
	if s.session != nil && s.session.state == StatePlaying {
		s.emitProgress(false)
	}
}

func (s *Service) snapshot() Snapshot {
	snap := Snapshot{
		Queue:   infos(s.queue.Items()),
		History: infos(s.history.Items()),
		State:   StateIdle,
		Rate:    1,
		Volume:  1,
	}
	if s.opts.Volume != nil {
		snap.Volume = ClampVolume(s.opts.Volume())
	}
	if s.current != nil {
		info := s.current.Info()
		snap.Current = &info
	}
	if s.session != nil {
		a := s.session.adapter
		snap.State = s.session.state
		snap.Position = a.Position().Seconds()
		if dur, ok := a.Duration(); ok {
			snap.Duration = dur.Seconds()
		}
		snap.Rate = a.Rate()
	}
	return snap
}
