package socketio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edumarques81/turntable/internal/domain/player"
)

// fakePlayer records the calls it receives.
type fakePlayer struct {
	mu    sync.Mutex
	calls []string
	err   error
	snap  player.Snapshot
}

func (p *fakePlayer) record(format string, args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
	return p.err
}

func (p *fakePlayer) last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return ""
	}
	return p.calls[len(p.calls)-1]
}

func (p *fakePlayer) Play() error                     { return p.record("Play") }
func (p *fakePlayer) Pause() error                    { return p.record("Pause") }
func (p *fakePlayer) TogglePlayPause() error          { return p.record("TogglePlayPause") }
func (p *fakePlayer) Stop() error                     { return p.record("Stop") }
func (p *fakePlayer) Skip() error                     { return p.record("Skip") }
func (p *fakePlayer) GoBack() error                   { return p.record("GoBack") }
func (p *fakePlayer) Seek(pos time.Duration) error    { return p.record("Seek %s", pos) }
func (p *fakePlayer) SeekRatio(r float64) error       { return p.record("SeekRatio %g", r) }
func (p *fakePlayer) SeekForward() error              { return p.record("SeekForward") }
func (p *fakePlayer) SeekBackward() error             { return p.record("SeekBackward") }
func (p *fakePlayer) SetVolume(v float64) error       { return p.record("SetVolume %g", v) }
func (p *fakePlayer) SetSpeed(rpm float64) error      { return p.record("SetSpeed %g", rpm) }
func (p *fakePlayer) SetPlaybackRate(r float64) error { return p.record("SetPlaybackRate %g", r) }
func (p *fakePlayer) RemoveByID(id string) error      { return p.record("RemoveByID %s", id) }
func (p *fakePlayer) RemoveAt(pos int) error          { return p.record("RemoveAt %d", pos) }
func (p *fakePlayer) Reorder(from, to int) error      { return p.record("Reorder %d %d", from, to) }
func (p *fakePlayer) Clear() error                    { return p.record("Clear") }

func (p *fakePlayer) Snapshot() (player.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap, nil
}

// fakeCatalog records added links and files.
type fakeCatalog struct {
	mu    sync.Mutex
	urls  []string
	files []string
	err   error
}

func (c *fakeCatalog) AddURL(_ context.Context, raw string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.urls = append(c.urls, raw)
	return 1, nil
}

func (c *fakeCatalog) AddFiles(paths ...string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.files = append(c.files, paths...)
	return len(paths), nil
}
