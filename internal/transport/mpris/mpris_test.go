package mpris

import (
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"

	"github.com/edumarques81/turntable/internal/domain/player"
)

type fakeController struct {
	calls    []string
	seek     time.Duration
	volume   float64
	position float64
	err      error
}

func (c *fakeController) call(name string) error {
	c.calls = append(c.calls, name)
	return c.err
}

func (c *fakeController) Play() error            { return c.call("Play") }
func (c *fakeController) Pause() error           { return c.call("Pause") }
func (c *fakeController) TogglePlayPause() error { return c.call("TogglePlayPause") }
func (c *fakeController) Stop() error            { return c.call("Stop") }
func (c *fakeController) Skip() error            { return c.call("Skip") }
func (c *fakeController) GoBack() error          { return c.call("GoBack") }

func (c *fakeController) Seek(pos time.Duration) error {
	c.seek = pos
	return c.call("Seek")
}

func (c *fakeController) SeekBy(offset time.Duration) error {
	c.seek = offset
	return c.call("SeekBy")
}

func (c *fakeController) SetVolume(v float64) error {
	c.volume = v
	return c.call("SetVolume")
}

func (c *fakeController) Snapshot() (player.Snapshot, error) {
	return player.Snapshot{Position: c.position}, nil
}

type fakeVolume struct{ v float64 }

func (f *fakeVolume) Get() float64 { return f.v }

func (f *fakeVolume) Set(v float64) float64 {
	f.v = player.ClampVolume(v)
	return f.v
}

func TestPlayerMethodsMapToController(t *testing.T) {
	tests := []struct {
		name string
		call func(p *mprisPlayer) *dbus.Error
		want string
	}{
		{"Next", (*mprisPlayer).Next, "Skip"},
		{"Previous", (*mprisPlayer).Previous, "GoBack"},
		{"Pause", (*mprisPlayer).Pause, "Pause"},
		{"PlayPause", (*mprisPlayer).PlayPause, "TogglePlayPause"},
		{"Stop", (*mprisPlayer).Stop, "Stop"},
		{"Play", (*mprisPlayer).Play, "Play"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := &fakeController{}
			p := &mprisPlayer{ctl: ctl}
			if err := tt.call(p); err != nil {
				t.Fatalf("%s returned %v", tt.name, err)
			}
			if len(ctl.calls) != 1 || ctl.calls[0] != tt.want {
				t.Errorf("Expected %s, got %v", tt.want, ctl.calls)
			}
		})
	}
}

func TestSeekUsesMicroseconds(t *testing.T) {
	ctl := &fakeController{}
	p := &mprisPlayer{ctl: ctl}

	if err := p.Seek(-10_000_000); err != nil {
		t.Fatalf("Seek returned %v", err)
	}
	if ctl.seek != -10*time.Second {
		t.Errorf("Expected -10s offset, got %s", ctl.seek)
	}
}

func TestSeekEmitsSeekedWithLandingPosition(t *testing.T) {
	ctl := &fakeController{position: 42.5}
	var seeked []time.Duration
	p := &mprisPlayer{ctl: ctl, seeked: func(d time.Duration) { seeked = append(seeked, d) }}

	if err := p.Seek(10_000_000); err != nil {
		t.Fatalf("Seek returned %v", err)
	}
	if len(seeked) != 1 || seeked[0] != 42500*time.Millisecond {
		t.Errorf("Expected one Seeked at 42.5s, got %v", seeked)
	}

	ctl.err = errors.New("nothing is playing")
	p.Seek(10_000_000)
	if len(seeked) != 1 {
		t.Errorf("Failed seek should not emit Seeked, got %v", seeked)
	}
}

func TestWriteVolume(t *testing.T) {
	ctl := &fakeController{}
	vol := &fakeVolume{v: 1}
	s := &Server{ctl: ctl, volume: vol}

	if err := s.writeVolume(&prop.Change{Value: 0.4}); err != nil {
		t.Fatalf("writeVolume returned %v", err)
	}
	if vol.v != 0.4 || ctl.volume != 0.4 {
		t.Errorf("Expected 0.4 everywhere, got control %v player %v", vol.v, ctl.volume)
	}

	s.writeVolume(&prop.Change{Value: 1.7})
	if vol.v != 1 || ctl.volume != 1 {
		t.Errorf("Volume not clamped: control %v player %v", vol.v, ctl.volume)
	}

	if err := s.writeVolume(&prop.Change{Value: "loud"}); err == nil {
		t.Error("Expected an error for a non-double volume")
	}
}

func TestVolumePropertyStartsFromControl(t *testing.T) {
	s := &Server{volume: &fakeVolume{v: 0.3}}
	v := s.properties("Turntable")[playerIface]["Volume"]
	if v.Value != 0.3 || !v.Writable || v.Callback == nil {
		t.Errorf("Unexpected Volume property %+v", v)
	}
}

func TestSetPositionEmitsSeeked(t *testing.T) {
	ctl := &fakeController{}
	var seeked time.Duration
	p := &mprisPlayer{ctl: ctl, seeked: func(d time.Duration) { seeked = d }}

	if err := p.SetPosition("/org/turntable/track/1", 90_000_000); err != nil {
		t.Fatalf("SetPosition returned %v", err)
	}
	if ctl.seek != 90*time.Second || seeked != 90*time.Second {
		t.Errorf("Expected seek to 90s, got %s (seeked %s)", ctl.seek, seeked)
	}

	ctl.calls = nil
	p.SetPosition("/org/turntable/track/1", -1)
	if len(ctl.calls) != 0 {
		t.Errorf("Negative positions should be ignored, got %v", ctl.calls)
	}
}

func TestControllerErrorsBecomeDBusErrors(t *testing.T) {
	ctl := &fakeController{err: errors.New("no previous tracks")}
	p := &mprisPlayer{ctl: ctl}

	if err := p.Previous(); err == nil {
		t.Error("Expected a D-Bus error")
	}
	if err := p.OpenUri("file:///music/a.mp3"); err == nil {
		t.Error("OpenUri should fail")
	}
}

func TestPlaybackStatus(t *testing.T) {
	tests := map[player.NowPlayingState]string{
		player.NowPlayingPlaying: "Playing",
		player.NowPlayingPaused:  "Paused",
		player.NowPlayingNone:    "Stopped",
	}
	for st, want := range tests {
		if got := playbackStatus(st); got != want {
			t.Errorf("playbackStatus(%s) = %s, want %s", st, got, want)
		}
	}
}

func TestMetadataMap(t *testing.T) {
	m := player.Metadata{
		Title:    "Song",
		Artist:   "Band",
		Album:    player.UnknownAlbum,
		Artwork:  []player.Artwork{{Src: "https://img/1.jpg"}},
		Duration: 3 * time.Minute,
	}
	md := metadataMap("/org/turntable/track/7", m)

	if got := md["xesam:title"].Value(); got != "Song" {
		t.Errorf("Unexpected title %v", got)
	}
	if got, ok := md["xesam:artist"].Value().([]string); !ok || len(got) != 1 || got[0] != "Band" {
		t.Errorf("Unexpected artist %v", md["xesam:artist"].Value())
	}
	if got := md["mpris:length"].Value(); got != int64(180_000_000) {
		t.Errorf("Unexpected length %v", got)
	}
	if got := md["mpris:artUrl"].Value(); got != "https://img/1.jpg" {
		t.Errorf("Unexpected artUrl %v", got)
	}
	if got := md["mpris:trackid"].Value(); got != dbus.ObjectPath("/org/turntable/track/7") {
		t.Errorf("Unexpected trackid %v", got)
	}

	local := metadataMap("/t/2", player.Metadata{Artwork: []player.Artwork{
		{Src: "/api/v1/cover?track=a.flac"},
		{Src: "file:///music/cover.jpg"},
	}})
	if got := local["mpris:artUrl"].Value(); got != "file:///music/cover.jpg" {
		t.Errorf("Relative artwork should be skipped, got %v", got)
	}

	bare := metadataMap("/t/1", player.Metadata{Title: "Live"})
	if _, ok := bare["mpris:length"]; ok {
		t.Error("Unknown duration should not be published")
	}
}

func TestServerWithoutBusIgnoresUpdates(t *testing.T) {
	s := &Server{}
	s.OnMetadata(player.Metadata{Title: "x"})
	s.OnPlaybackState(player.NowPlayingPlaying)
	s.OnPosition(time.Second, time.Minute, 1)
}
