package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/edumarques81/turntable/internal/domain/catalog"
)

// DefaultStreamTTL is how long resolved stream metadata stays fresh.
const DefaultStreamTTL = 7 * 24 * time.Hour

// Resolver is a read-through cache in front of a catalog.Resolver.
// Cache failures are logged and never fail a lookup.
type Resolver struct {
	next catalog.Resolver
	dao  *DAO
	ttl  time.Duration
	now  func() time.Time
}

// NewResolver wraps next with the cache. A ttl <= 0 uses DefaultStreamTTL.
func NewResolver(next catalog.Resolver, dao *DAO, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultStreamTTL
	}
	return &Resolver{next: next, dao: dao, ttl: ttl, now: time.Now}
}

// ResolveItem serves fresh cached metadata, or asks the wrapped resolver
// and stores the answer.
func (r *Resolver) ResolveItem(ctx context.Context, id string) (catalog.Metadata, error) {
	cached, err := r.dao.GetStream(id)
	if err != nil {
		log.Warn().Err(err).Str("id", id).Msg("Stream cache lookup failed")
	}
	if cached != nil && r.now().Sub(cached.FetchedAt) < r.ttl {
		log.Debug().Str("id", id).Msg("Stream metadata served from cache")
		return fromCached(cached), nil
	}

	m, err := r.next.ResolveItem(ctx, id)
	if err != nil {
		return catalog.Metadata{}, err
	}
	if err := r.dao.UpsertStream(toCached(m, r.now())); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("Failed to cache stream metadata")
	}
	return m, nil
}

// ResolvePlaylist always asks the wrapped resolver; every entry it returns
// is cached for later single lookups.
func (r *Resolver) ResolvePlaylist(ctx context.Context, id string) catalog.PlaylistPager {
	return &cachingPager{next: r.next.ResolvePlaylist(ctx, id), r: r}
}

type cachingPager struct {
	next catalog.PlaylistPager
	r    *Resolver
}

func (p *cachingPager) Next(ctx context.Context) ([]catalog.Metadata, error) {
	page, err := p.next.Next(ctx)
	if err != nil {
		return nil, err
	}
	now := p.r.now()
	streams := lo.Map(page, func(m catalog.Metadata, _ int) *CachedStream {
		return toCached(m, now)
	})
	if err := p.r.dao.UpsertStreams(streams); err != nil {
		log.Warn().Err(err).Int("count", len(streams)).Msg("Failed to cache playlist page")
	}
	return page, nil
}

func (p *cachingPager) Done() bool { return p.next.Done() }

func toCached(m catalog.Metadata, now time.Time) *CachedStream {
	s := &CachedStream{
		ID:        m.StreamID,
		Title:     m.Title,
		Artist:    m.Artist,
		Album:     m.Album,
		Duration:  m.Duration,
		FetchedAt: now,
	}
	if len(m.Artwork) > 0 {
		s.ArtworkSrc = m.Artwork[0].Src
	}
	return s
}

func fromCached(s *CachedStream) catalog.Metadata {
	return catalog.Metadata{
		StreamID: s.ID,
		Title:    s.Title,
		Artist:   s.Artist,
		Album:    s.Album,
		Artwork:  catalog.NewArtwork(s.ArtworkSrc),
		Duration: s.Duration,
	}
}

var _ catalog.Resolver = (*Resolver)(nil)
