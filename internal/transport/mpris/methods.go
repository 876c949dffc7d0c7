package mpris

import (
	"errors"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
)

var errOpenURI = errors.New("opening URIs is not supported")

// root implements org.mpris.MediaPlayer2. The player has no window.
type root struct{}

func (root) Raise() *dbus.Error { return nil }
func (root) Quit() *dbus.Error  { return nil }

// mprisPlayer implements the org.mpris.MediaPlayer2.Player methods.
type mprisPlayer struct {
	ctl    Controller
	seeked func(time.Duration)
}

func (p *mprisPlayer) Next() *dbus.Error      { return p.do("Next", p.ctl.Skip) }
func (p *mprisPlayer) Previous() *dbus.Error  { return p.do("Previous", p.ctl.GoBack) }
func (p *mprisPlayer) Pause() *dbus.Error     { return p.do("Pause", p.ctl.Pause) }
func (p *mprisPlayer) PlayPause() *dbus.Error { return p.do("PlayPause", p.ctl.TogglePlayPause) }
func (p *mprisPlayer) Stop() *dbus.Error      { return p.do("Stop", p.ctl.Stop) }
func (p *mprisPlayer) Play() *dbus.Error      { return p.do("Play", p.ctl.Play) }

// Seek moves by offset microseconds and announces where it landed.
func (p *mprisPlayer) Seek(offset int64) *dbus.Error {
	d := time.Duration(offset) * time.Microsecond
	if err := p.do("Seek", func() error { return p.ctl.SeekBy(d) }); err != nil {
		return err
	}
	if p.seeked == nil {
		return nil
	}
	snap, err := p.ctl.Snapshot()
	if err != nil {
		log.Debug().Err(err).Msg("Failed to read position after seek")
		return nil
	}
	p.seeked(time.Duration(snap.Position * float64(time.Second)))
	return nil
}

// SetPosition moves to an absolute position in microseconds.
func (p *mprisPlayer) SetPosition(_ dbus.ObjectPath, pos int64) *dbus.Error {
	if pos < 0 {
		return nil
	}
	d := time.Duration(pos) * time.Microsecond
	if err := p.do("SetPosition", func() error { return p.ctl.Seek(d) }); err != nil {
		return err
	}
	if p.seeked != nil {
		p.seeked(d)
	}
	return nil
}

// OpenUri is not supported; items come in through the catalog.
func (p *mprisPlayer) OpenUri(string) *dbus.Error {
	return dbus.MakeFailedError(errOpenURI)
}

func (p *mprisPlayer) do(method string, fn func() error) *dbus.Error {
	log.Debug().Str("method", method).Msg("MPRIS call")
	if err := fn(); err != nil {
		log.Warn().Err(err).Str("method", method).Msg("MPRIS call failed")
		return dbus.MakeFailedError(err)
	}
	return nil
}
