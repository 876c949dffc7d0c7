// Package desktop shows player notices as desktop notifications through
// org.freedesktop.Notifications.
package desktop

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/turntable/internal/domain/player"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod = "org.freedesktop.Notifications.Notify"

	backlog = 16
)

// caller is the part of dbus.BusObject the notifier needs.
type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Notifier is a player.Presenter that forwards notices. Each notice
// replaces the previous bubble.
type Notifier struct {
	app     string
	obj     caller
	conn    *dbus.Conn
	notices chan player.Notice
	lastID  uint32
}

// Connect opens a session bus connection for app.
func Connect(app string) (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	n := newNotifier(app, conn.Object(notifyDest, notifyPath))
	n.conn = conn
	return n, nil
}

func newNotifier(app string, obj caller) *Notifier {
	return &Notifier{app: app, obj: obj, notices: make(chan player.Notice, backlog)}
}

// Run sends queued notices until ctx is done.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case notice := <-n.notices:
			if err := n.send(notice); err != nil {
				log.Warn().Err(err).Str("title", notice.Title).Msg("Desktop notification failed")
			}
		}
	}
}

func (n *Notifier) send(notice player.Notice) error {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgency(notice.Level)),
	}
	call := n.obj.Call(notifyMethod, 0,
		n.app,          // app_name
		n.lastID,       // replaces_id
		"",             // app_icon
		notice.Title,   // summary
		notice.Message, // body
		[]string{},     // actions
		hints,
		int32(-1), // expire_timeout (-1 = server default)
	)
	if call.Err != nil {
		return call.Err
	}
	return call.Store(&n.lastID)
}

// Close closes the bus connection.
func (n *Notifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}

// OnNotice implements player.Presenter.
func (n *Notifier) OnNotice(notice player.Notice) {
	select {
	case n.notices <- notice:
	default:
		log.Debug().Str("title", notice.Title).Msg("Notification backlog full, dropping notice")
	}
}

func (n *Notifier) OnQueueChanged(player.QueueSnapshot)  {}
func (n *Notifier) OnTransportStateChanged(player.State) {}
func (n *Notifier) OnProgress(string, string, float64)   {}
func (n *Notifier) OnQueueExhausted()                    {}

// urgency maps a notice level to the notification spec's urgency byte.
func urgency(level player.NoticeLevel) byte {
	switch level {
	case player.NoticeError:
		return 2
	case player.NoticeWarning:
		return 1
	default:
		return 0
	}
}

var _ player.Presenter = (*Notifier)(nil)
