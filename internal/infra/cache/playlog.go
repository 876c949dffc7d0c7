package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/turntable/internal/domain/player"
)

const playLogBuffer = 64

// PlayLog records every item that becomes current. It is registered as a
// player presenter; writes happen on its own goroutine so the player loop
// never waits on the database.
type PlayLog struct {
	dao     *DAO
	entries chan *PlayEntry
	lastID  string
}

// NewPlayLog creates a play log writing through dao.
func NewPlayLog(dao *DAO) *PlayLog {
	return &PlayLog{dao: dao, entries: make(chan *PlayEntry, playLogBuffer)}
}

// Run writes queued entries until ctx is done.
func (l *PlayLog) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-l.entries:
			if err := l.dao.InsertPlay(e); err != nil {
				log.Warn().Err(err).Str("title", e.Title).Msg("Failed to record play")
			}
		}
	}
}

// Recent returns the latest entries, newest first.
func (l *PlayLog) Recent(limit int) ([]*PlayEntry, error) {
	return l.dao.RecentPlays(limit)
}

// OnQueueChanged records the current item when it changes.
func (l *PlayLog) OnQueueChanged(q player.QueueSnapshot) {
	if q.Current == nil {
		l.lastID = ""
		return
	}
	if q.Current.ID == l.lastID {
		return
	}
	l.lastID = q.Current.ID

	e := &PlayEntry{
		ItemID:    q.Current.ID,
		Kind:      q.Current.Kind,
		Title:     q.Current.Title,
		Artist:    q.Current.Artist,
		StreamID:  q.Current.StreamID,
		Path:      q.Current.Path,
		StartedAt: time.Now(),
	}
	select {
	case l.entries <- e:
	default:
		log.Warn().Str("title", e.Title).Msg("Play log backlog full, dropping entry")
	}
}

func (l *PlayLog) OnTransportStateChanged(player.State) {}
func (l *PlayLog) OnProgress(string, string, float64)   {}
func (l *PlayLog) OnNotice(player.Notice)               {}
func (l *PlayLog) OnQueueExhausted()                    {}

var _ player.Presenter = (*PlayLog)(nil)
