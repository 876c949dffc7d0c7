package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/edumarques81/turntable/internal/domain/player"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// DefaultLookupTimeout bounds every metadata lookup.
const DefaultLookupTimeout = 10 * time.Second

// Service resolves user input and hands the resulting items to the player.
type Service struct {
	resolver Resolver
	player   Enqueuer
	timeout  time.Duration
	covers   Covers
}

// Covers supplies artwork for local files.
type Covers interface {
	Artwork(path string) []player.Artwork
}

// Option configures a Service.
type Option func(*Service)

// WithCovers attaches cover artwork to local files as they are added.
func WithCovers(c Covers) Option {
	return func(s *Service) {
		s.covers = c
	}
}

// NewService creates a catalog service. A non-positive timeout selects
// DefaultLookupTimeout.
func NewService(resolver Resolver, p Enqueuer, timeout time.Duration, opts ...Option) *Service {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	s := &Service{
		resolver: resolver,
		player:   p,
		timeout:  timeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddURL parses a video or playlist link and enqueues what it names.
// It returns the number of items enqueued.
func (s *Service) AddURL(ctx context.Context, raw string) (int, error) {
	link, err := ParseURL(raw)
	if err != nil {
		return 0, err
	}
	if link.IsPlaylist() {
		return s.AddPlaylist(ctx, link.PlaylistID)
	}
	if err := s.AddVideo(ctx, link.VideoID); err != nil {
		return 0, err
	}
	return 1, nil
}

// AddVideo resolves a single stream and enqueues it.
func (s *Service) AddVideo(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	meta, err := s.resolver.ResolveItem(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("id", id).Msg("Video lookup failed")
		return fmt.Errorf("%w: %w", ErrMetadataUnavailable, err)
	}
	if meta.StreamID == "" {
		meta.StreamID = id
	}
	return s.player.Enqueue(meta.Item())
}

// AddPlaylist resolves every page of a playlist and enqueues all entries
// in one batch. A failure on any page enqueues nothing.
func (s *Service) AddPlaylist(ctx context.Context, id string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var all []Metadata
	pager := s.resolver.ResolvePlaylist(ctx, id)
	for pages := 0; !pager.Done(); pages++ {
		page, err := pager.Next(ctx)
		if err != nil {
			log.Warn().Err(err).Str("playlist", id).Int("page", pages).Msg("Playlist lookup failed")
			return 0, fmt.Errorf("%w: %w", ErrMetadataUnavailable, err)
		}
		all = append(all, page...)
	}
	if len(all) == 0 {
		return 0, fmt.Errorf("playlist %s: %w", id, ErrNotFound)
	}

	items := lo.Map(all, func(m Metadata, _ int) *player.Item { return m.Item() })
	log.Info().Str("playlist", id).Int("items", len(items)).Msg("Enqueuing playlist")
	if err := s.player.Enqueue(items...); err != nil {
		return 0, err
	}
	return len(items), nil
}

// AddFiles enqueues the audio files among paths in order. Other files are
// skipped. It returns the number of items enqueued.
func (s *Service) AddFiles(paths ...string) (int, error) {
	audio := lo.Filter(paths, func(p string, _ int) bool { return IsAudioFile(p) })
	if len(audio) == 0 {
		if len(paths) > 0 {
			return 0, fmt.Errorf("%s: %w", filepath.Base(paths[0]), ErrNotAudio)
		}
		return 0, nil
	}
	if skipped := len(paths) - len(audio); skipped > 0 {
		log.Debug().Int("skipped", skipped).Msg("Ignoring non-audio files")
	}

	items := lo.Map(audio, func(p string, _ int) *player.Item {
		f := player.LocalFile{Path: p}
		if s.covers != nil {
			f.Artwork = s.covers.Artwork(p)
		}
		return player.NewLocalFile(f)
	})
	if err := s.player.Enqueue(items...); err != nil {
		return 0, err
	}
	return len(items), nil
}
