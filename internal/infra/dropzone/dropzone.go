// Package dropzone enqueues audio files that appear in a watched folder.
package dropzone

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/edumarques81/turntable/internal/domain/catalog"
)

// DefaultSettle is how long a file must stay unchanged before it is
// enqueued. Copies in progress keep producing write events.
const DefaultSettle = 500 * time.Millisecond

// Adder accepts local files for the queue.
type Adder interface {
	AddFiles(paths ...string) (int, error)
}

// Watcher watches one directory.
type Watcher struct {
	dir    string
	adder  Adder
	settle time.Duration

	pending map[string]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period before a new file is enqueued.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// New creates a watcher for dir.
func New(dir string, adder Adder, opts ...Option) *Watcher {
	w := &Watcher{
		dir:     dir,
		adder:   adder,
		settle:  DefaultSettle,
		pending: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directory until ctx is done. The directory is created
// if missing. Files already present when Run starts are ignored.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create drop folder: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	log.Info().Str("dir", w.dir).Msg("Drop folder watcher started")

	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Drop folder watcher stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event, time.Now())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Drop folder watcher error")
		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event, now time.Time) {
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.pending, event.Name)
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if !catalog.IsAudioFile(event.Name) {
			return
		}
		if fi, err := os.Stat(event.Name); err != nil || fi.IsDir() {
			return
		}
		w.pending[event.Name] = now
	}
}

// flush enqueues every pending file that has been quiet for the settle
// period, in name order.
func (w *Watcher) flush(now time.Time) {
	ready := lo.Filter(lo.Keys(w.pending), func(path string, _ int) bool {
		return now.Sub(w.pending[path]) >= w.settle
	})
	if len(ready) == 0 {
		return
	}
	sort.Strings(ready)
	for _, path := range ready {
		delete(w.pending, path)
	}

	n, err := w.adder.AddFiles(ready...)
	if err != nil {
		log.Warn().Err(err).Strs("files", ready).Msg("Failed to enqueue dropped files")
		return
	}
	log.Info().Int("count", n).Msg("Enqueued dropped files")
}
