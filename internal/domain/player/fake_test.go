package player

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeAdapter is a scripted backend.
type fakeAdapter struct {
	mu sync.Mutex

	kind     Kind
	item     *Item
	events   AdapterEvents
	gate     chan error
	loadErr  error
	state    State
	pos      time.Duration
	dur      time.Duration
	durKnown bool
	rate     float64
	rates    []float64
	volume   float64
	played   int
	stopped  bool
	seeks    []time.Duration

	// ignoreCtx makes Load finish only when gated, like a backend that
	// cannot abort a fetch in flight.
	ignoreCtx bool
}

func (a *fakeAdapter) Load(ctx context.Context, item *Item, events AdapterEvents) error {
	a.mu.Lock()
	a.item = item
	a.events = events
	gate, err, ignoreCtx := a.gate, a.loadErr, a.ignoreCtx
	a.mu.Unlock()

	if gate != nil && ignoreCtx {
		err = <-gate
	} else if gate != nil {
		select {
		case err = <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.state = StatePaused
	a.mu.Unlock()
	return nil
}

func (a *fakeAdapter) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.played++
	a.state = StatePlaying
	return nil
}

func (a *fakeAdapter) Pause() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = StatePaused
	return nil
}

func (a *fakeAdapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.state = StateIdle
	return nil
}

func (a *fakeAdapter) Seek(pos time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pos = pos
	a.seeks = append(a.seeks, pos)
	return nil
}

func (a *fakeAdapter) SetPlaybackRate(rate float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := CheckRate(rate, a.rates); err != nil {
		return err
	}
	a.rate = rate
	return nil
}

func (a *fakeAdapter) SetVolume(v float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.volume = v
	return nil
}

func (a *fakeAdapter) Position() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pos
}

func (a *fakeAdapter) Duration() (time.Duration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dur, a.durKnown
}

func (a *fakeAdapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *fakeAdapter) Rate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rate
}

func (a *fakeAdapter) SupportedRates() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rates
}

func (a *fakeAdapter) end() {
	a.mu.Lock()
	ev := a.events
	a.mu.Unlock()
	ev.OnEnded()
}

func (a *fakeAdapter) isStopped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopped
}

func (a *fakeAdapter) currentVolume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume
}

func (a *fakeAdapter) playCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.played
}

// fakeBackends hands out fakeAdapters and remembers them.
type fakeBackends struct {
	mu        sync.Mutex
	created   []*fakeAdapter
	configure func(n int, a *fakeAdapter)
}

func (b *fakeBackends) factory(kind Kind) (Adapter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a := &fakeAdapter{kind: kind, rate: 1}
	if kind == KindRemoteStream {
		a.rates = []float64{0.5, 1, 1.25, 1.5, 2}
	}
	if b.configure != nil {
		b.configure(len(b.created), a)
	}
	b.created = append(b.created, a)
	return a, nil
}

func (b *fakeBackends) adapter(n int) *fakeAdapter {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n >= len(b.created) {
		return nil
	}
	return b.created[n]
}

func (b *fakeBackends) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.created)
}

// recorder captures presenter and now-playing notifications.
type recorder struct {
	mu        sync.Mutex
	queues    []QueueSnapshot
	states    []State
	notices   []Notice
	exhausted int
	metadata  []Metadata
	progress  int
}

func (r *recorder) OnQueueChanged(q QueueSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queues = append(r.queues, q)
}

func (r *recorder) OnTransportStateChanged(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *recorder) OnProgress(string, string, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress++
}

func (r *recorder) OnNotice(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) OnQueueExhausted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exhausted++
}

func (r *recorder) OnMetadata(m Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metadata = append(r.metadata, m)
}

func (r *recorder) OnPlaybackState(NowPlayingState) {}

func (r *recorder) OnPosition(time.Duration, time.Duration, float64) {}

func (r *recorder) lastNotice() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

func (r *recorder) stateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *recorder) exhaustedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exhausted
}

// startService runs a Service with fake backends until the test ends.
func startService(t *testing.T, opts Options, configure func(int, *fakeAdapter)) (*Service, *fakeBackends, *recorder) {
	t.Helper()
	backends := &fakeBackends{configure: configure}
	svc := NewService(backends.factory, opts)
	rec := &recorder{}
	svc.AddPresenter(rec)
	svc.AddNowPlaying(rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return svc, backends, rec
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitState(t *testing.T, svc *Service, want State) Snapshot {
	t.Helper()
	var snap Snapshot
	waitFor(t, "state "+want.String(), func() bool {
		var err error
		snap, err = svc.Snapshot()
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		return snap.State == want
	})
	return snap
}

func local(name string) *Item {
	return NewLocalFile(LocalFile{Path: "/music/" + name})
}

func remote(id, title string) *Item {
	return NewRemoteStream(RemoteStream{StreamID: id, Title: title})
}

func titles(infos []ItemInfo) []string {
	out := make([]string, len(infos))
	for i, in := range infos {
		out[i] = in.Title
	}
	return out
}
