// Package mpris publishes the player on the session bus as an MPRIS media
// player, so desktop media keys and now-playing widgets can drive it.
package mpris

import (
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/turntable/internal/domain/player"
)

const (
	busNamePrefix = "org.mpris.MediaPlayer2."
	objectPath    = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootIface     = "org.mpris.MediaPlayer2"
	playerIface   = "org.mpris.MediaPlayer2.Player"
)

// Controller is what media keys can do to the player.
type Controller interface {
	Play() error
	Pause() error
	TogglePlayPause() error
	Stop() error
	Skip() error
	GoBack() error
	Seek(pos time.Duration) error
	SeekBy(offset time.Duration) error
	SetVolume(v float64) error
	Snapshot() (player.Snapshot, error)
}

// VolumeControl is the shared volume setting, also driven by web clients.
type VolumeControl interface {
	Get() float64
	Set(v float64) float64
}

// Server is an exported MPRIS player. It implements player.NowPlaying.
type Server struct {
	conn   *dbus.Conn
	props  *prop.Properties
	name   string
	track  atomic.Uint64
	ctl    Controller
	volume VolumeControl
}

// Start connects to the session bus and claims
// org.mpris.MediaPlayer2.<name>.
func Start(name, identity string, ctl Controller, volume VolumeControl) (*Server, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	s := &Server{conn: conn, name: busNamePrefix + name, ctl: ctl, volume: volume}
	if err := s.export(identity); err != nil {
		conn.Close()
		return nil, err
	}

	reply, err := conn.RequestName(s.name, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %s already taken", s.name)
	}

	log.Info().Str("name", s.name).Msg("MPRIS player registered")
	return s, nil
}

func (s *Server) export(identity string) error {
	r := &root{}
	p := &mprisPlayer{ctl: s.ctl, seeked: s.seeked}

	if err := s.conn.Export(r, objectPath, rootIface); err != nil {
		return fmt.Errorf("failed to export %s: %w", rootIface, err)
	}
	if err := s.conn.Export(p, objectPath, playerIface); err != nil {
		return fmt.Errorf("failed to export %s: %w", playerIface, err)
	}

	props, err := prop.Export(s.conn, objectPath, s.properties(identity))
	if err != nil {
		return fmt.Errorf("failed to export properties: %w", err)
	}
	s.props = props

	node := &introspect.Node{
		Name: string(objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{Name: rootIface, Methods: introspect.Methods(r), Properties: props.Introspection(rootIface)},
			{Name: playerIface, Methods: introspect.Methods(p), Properties: props.Introspection(playerIface)},
		},
	}
	return s.conn.Export(introspect.NewIntrospectable(node), objectPath, "org.freedesktop.DBus.Introspectable")
}

func (s *Server) properties(identity string) prop.Map {
	volume := 1.0
	if s.volume != nil {
		volume = s.volume.Get()
	}
	return prop.Map{
		rootIface: {
			"CanQuit":             {Value: false, Emit: prop.EmitConst},
			"CanRaise":            {Value: false, Emit: prop.EmitConst},
			"HasTrackList":        {Value: false, Emit: prop.EmitConst},
			"Identity":            {Value: identity, Emit: prop.EmitConst},
			"SupportedUriSchemes": {Value: []string{"file", "https"}, Emit: prop.EmitConst},
			"SupportedMimeTypes":  {Value: []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav"}, Emit: prop.EmitConst},
		},
		playerIface: {
			"PlaybackStatus": {Value: "Stopped", Emit: prop.EmitTrue},
			"LoopStatus":     {Value: "None", Emit: prop.EmitConst},
			"Rate":           {Value: 1.0, Emit: prop.EmitTrue},
			"Shuffle":        {Value: false, Emit: prop.EmitConst},
			"Metadata":       {Value: map[string]dbus.Variant{}, Emit: prop.EmitTrue},
			"Volume":         {Value: volume, Writable: true, Emit: prop.EmitTrue, Callback: s.writeVolume},
			"Position":       {Value: int64(0), Emit: prop.EmitFalse},
			"MinimumRate":    {Value: 0.5, Emit: prop.EmitConst},
			"MaximumRate":    {Value: 2.0, Emit: prop.EmitConst},
			"CanGoNext":      {Value: true, Emit: prop.EmitConst},
			"CanGoPrevious":  {Value: true, Emit: prop.EmitConst},
			"CanPlay":        {Value: true, Emit: prop.EmitConst},
			"CanPause":       {Value: true, Emit: prop.EmitConst},
			"CanSeek":        {Value: true, Emit: prop.EmitConst},
			"CanControl":     {Value: true, Emit: prop.EmitConst},
		},
	}
}

// OnMetadata implements player.NowPlaying.
func (s *Server) OnMetadata(m player.Metadata) {
	id := dbus.ObjectPath(fmt.Sprintf("/org/turntable/track/%d", s.track.Add(1)))
	s.set("Metadata", metadataMap(id, m))
}

// OnPlaybackState implements player.NowPlaying.
func (s *Server) OnPlaybackState(st player.NowPlayingState) {
	s.set("PlaybackStatus", playbackStatus(st))
}

// OnPosition implements player.NowPlaying.
func (s *Server) OnPosition(current, _ time.Duration, rate float64) {
	if s.props == nil {
		return
	}
	s.set("Position", current.Microseconds())
	if s.props.GetMust(playerIface, "Rate") != rate {
		s.set("Rate", rate)
	}
	// Web clients change the volume without going through the bus.
	if s.volume != nil {
		if v := s.volume.Get(); s.props.GetMust(playerIface, "Volume") != v {
			s.set("Volume", v)
		}
	}
}

// writeVolume handles a client setting the Volume property.
func (s *Server) writeVolume(c *prop.Change) *dbus.Error {
	v, ok := c.Value.(float64)
	if !ok {
		return dbus.MakeFailedError(fmt.Errorf("volume must be a double, got %T", c.Value))
	}
	if s.volume != nil {
		v = s.volume.Set(v)
	} else {
		v = player.ClampVolume(v)
	}
	log.Debug().Float64("volume", v).Msg("MPRIS volume change")
	if err := s.ctl.SetVolume(v); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (s *Server) set(property string, v any) {
	if s.props == nil {
		return
	}
	s.props.SetMust(playerIface, property, v)
}

func (s *Server) seeked(pos time.Duration) {
	if err := s.conn.Emit(objectPath, playerIface+".Seeked", pos.Microseconds()); err != nil {
		log.Debug().Err(err).Msg("Failed to emit Seeked")
	}
}

// Close releases the bus name and the connection.
func (s *Server) Close() error {
	if _, err := s.conn.ReleaseName(s.name); err != nil {
		log.Debug().Err(err).Msg("Failed to release MPRIS bus name")
	}
	return s.conn.Close()
}

func playbackStatus(st player.NowPlayingState) string {
	switch st {
	case player.NowPlayingPlaying:
		return "Playing"
	case player.NowPlayingPaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

func metadataMap(id dbus.ObjectPath, m player.Metadata) map[string]dbus.Variant {
	md := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(id),
		"xesam:title":   dbus.MakeVariant(m.Title),
		"xesam:artist":  dbus.MakeVariant([]string{m.Artist}),
		"xesam:album":   dbus.MakeVariant(m.Album),
	}
	if m.Duration > 0 {
		md["mpris:length"] = dbus.MakeVariant(m.Duration.Microseconds())
	}
	// Relative routes only make sense to web clients.
	for _, a := range m.Artwork {
		if u, err := url.Parse(a.Src); err == nil && u.Scheme != "" {
			md["mpris:artUrl"] = dbus.MakeVariant(a.Src)
			break
		}
	}
	return md
}

var _ player.NowPlaying = (*Server)(nil)
