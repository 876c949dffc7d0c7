// Package catalog turns user input (video links, playlists, local files)
// into queue items.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/edumarques81/turntable/internal/domain/player"
)

// Common errors
var (
	// ErrMetadataUnavailable indicates the lookup failed or timed out.
	// Nothing is enqueued when it is returned.
	ErrMetadataUnavailable = errors.New("metadata unavailable")

	// ErrNotFound indicates the video or playlist does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidURL indicates the input is not a recognised video link
	ErrInvalidURL = errors.New("invalid video URL")

	// ErrNotAudio indicates a local file is not an audio file
	ErrNotAudio = errors.New("not an audio file")
)

// Metadata describes one remote stream.
type Metadata struct {
	StreamID string
	Title    string
	Artist   string
	Album    string
	Artwork  []player.Artwork
	Duration time.Duration // 0 if unknown
}

// Item builds a queue item from the metadata.
func (m Metadata) Item() *player.Item {
	return player.NewRemoteStream(player.RemoteStream{
		StreamID:     m.StreamID,
		Title:        m.Title,
		Artist:       m.Artist,
		Album:        m.Album,
		Artwork:      m.Artwork,
		DurationHint: m.Duration,
	})
}

// Resolver looks up metadata for streams and playlists.
type Resolver interface {
	ResolveItem(ctx context.Context, id string) (Metadata, error)
	ResolvePlaylist(ctx context.Context, id string) PlaylistPager
}

// PlaylistPager walks the pages of a playlist. Next returns the next page
// until Done reports that no continuation is left.
type PlaylistPager interface {
	Next(ctx context.Context) ([]Metadata, error)
	Done() bool
}

// Enqueuer accepts new queue items.
type Enqueuer interface {
	Enqueue(items ...*player.Item) error
}

// Thumbnail defaults for stream artwork.
const (
	ArtworkSizes = "512x512"
	ArtworkType  = "image/jpeg"
)

// NewArtwork returns the artwork list for a single thumbnail URL.
func NewArtwork(src string) []player.Artwork {
	if src == "" {
		return nil
	}
	return []player.Artwork{{Src: src, Sizes: ArtworkSizes, Type: ArtworkType}}
}
