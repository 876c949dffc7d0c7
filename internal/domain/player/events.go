package player

import "time"

// NoticeLevel classifies a user-facing notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message for the user. Notices are not faults: an empty
// queue on skip is reported here and nowhere else.
type Notice struct {
	Level   NoticeLevel `json:"type"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

// QueueSnapshot is what presentation layers render for the queue.
type QueueSnapshot struct {
	Current *ItemInfo  `json:"current"`
	Items   []ItemInfo `json:"items"`
}

// Presenter receives presentation refresh notifications.
// Methods are called on the player loop and must not block or call back
// into the Service synchronously.
type Presenter interface {
	OnQueueChanged(QueueSnapshot)
	OnTransportStateChanged(State)
	OnProgress(current, total string, ratio float64)
	OnNotice(Notice)
	OnQueueExhausted()
}

// NowPlaying receives updates for the OS-level now-playing display.
// The same calling rules as Presenter apply.
type NowPlaying interface {
	OnMetadata(Metadata)
	OnPlaybackState(NowPlayingState)
	OnPosition(current, duration time.Duration, rate float64)
}

func (s *Service) emitQueue() {
	snap := QueueSnapshot{Items: infos(s.queue.Items())}
	if s.current != nil {
		info := s.current.Info()
		snap.Current = &info
	}
	for _, p := range s.presenters {
		p.OnQueueChanged(snap)
	}
}

func (s *Service) emitState(st State) {
	for _, p := range s.presenters {
		p.OnTransportStateChanged(st)
	}
	for _, n := range s.nowPlaying {
		n.OnPlaybackState(st.NowPlaying())
	}
}

func (s *Service) emitNotice(level NoticeLevel, title, msg string) {
	n := Notice{Level: level, Title: title, Message: msg}
	for _, p := range s.presenters {
		p.OnNotice(n)
	}
}

func (s *Service) emitExhausted() {
	for _, p := range s.presenters {
		p.OnQueueExhausted()
	}
}

func (s *Service) emitMetadata(item *Item) {
	m := item.Metadata()
	for _, n := range s.nowPlaying {
		n.OnMetadata(m)
	}
}

// emitProgress publishes the live position. With reset set it publishes
// the zeroed display used when nothing is loaded.
func (s *Service) emitProgress(reset bool) {
	var pos, dur time.Duration
	rate := 1.0
	if !reset && s.session != nil {
		pos = s.session.adapter.Position()
		dur, _ = s.session.adapter.Duration()
		rate = s.session.adapter.Rate()
	}
	ratio := 0.0
	if dur > 0 {
		ratio = float64(pos) / float64(dur)
		if ratio > 1 {
			ratio = 1
		}
	}
	cur, total := FormatTime(pos.Seconds()), FormatTime(dur.Seconds())
	for _, p := range s.presenters {
		p.OnProgress(cur, total, ratio)
	}
	if reset || dur <= 0 {
		return
	}
	for _, n := range s.nowPlaying {
		n.OnPosition(pos, dur, rate)
	}
}
