// Package ytdlp wraps the yt-dlp binary. It resolves playable audio URLs
// for streams and doubles as a keyless metadata resolver.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/edumarques81/turntable/internal/domain/catalog"
	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog/log"
)

// AudioFormat prefers opus, then m4a, then anything with audio.
const AudioFormat = "ba[acodec^=opus]/ba[ext=m4a]/bestaudio/best"

var errNoInfo = errors.New("yt-dlp returned no info")

// Extractor runs yt-dlp.
type Extractor struct {
	cookies string
	install bool
	once    sync.Once
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCookies passes a cookies file to yt-dlp.
func WithCookies(path string) Option {
	return func(e *Extractor) {
		e.cookies = path
	}
}

// WithInstall downloads yt-dlp on first use when it is not on PATH.
func WithInstall(on bool) Option {
	return func(e *Extractor) {
		e.install = on
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) ensureInstalled(ctx context.Context) {
	if !e.install {
		return
	}
	e.once.Do(func() {
		if _, err := ytdlp.Install(ctx, nil); err != nil {
			log.Warn().Err(err).Msg("yt-dlp install failed; relying on PATH")
		}
	})
}

func (e *Extractor) command() *ytdlp.Command {
	cmd := ytdlp.New().NoCheckCertificates()
	if e.cookies != "" {
		cmd = cmd.Cookies(e.cookies)
	}
	return cmd
}

func (e *Extractor) run(ctx context.Context, cmd *ytdlp.Command, url string) ([]*ytdlp.ExtractedInfo, error) {
	e.ensureInstalled(ctx)

	res, err := cmd.Run(ctx, url)
	if err != nil {
		if strings.Contains(err.Error(), "Video unavailable") {
			return nil, fmt.Errorf("yt-dlp %s: %w", url, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("yt-dlp run: %w", err)
	}
	infos, err := res.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("parse yt-dlp json: %w", err)
	}
	if len(infos) == 0 || infos[0] == nil {
		return nil, errNoInfo
	}
	return infos, nil
}

// StreamURL returns a direct audio URL for a video id and the duration
// yt-dlp reports, or 0 when it does not know it.
func (e *Extractor) StreamURL(ctx context.Context, videoID string) (string, time.Duration, error) {
	infos, err := e.run(ctx, e.command().Format(AudioFormat).DumpJSON(), catalog.WatchURL(videoID))
	if err != nil {
		return "", 0, err
	}
	info := infos[0]
	url := audioURL(info)
	if url == "" {
		return "", 0, fmt.Errorf("no playable format for %s", videoID)
	}
	log.Debug().Str("id", videoID).Msg("Resolved stream URL")
	return url, seconds(info.Duration), nil
}

// ResolveItem fetches metadata for one video.
func (e *Extractor) ResolveItem(ctx context.Context, id string) (catalog.Metadata, error) {
	infos, err := e.run(ctx, e.command().SkipDownload().DumpJSON(), catalog.WatchURL(id))
	if err != nil {
		return catalog.Metadata{}, err
	}
	return metadata(infos[0]), nil
}

// ResolvePlaylist returns a single-page pager over a flat playlist dump.
func (e *Extractor) ResolvePlaylist(ctx context.Context, id string) catalog.PlaylistPager {
	return &playlistPager{extractor: e, playlistID: id}
}

type playlistPager struct {
	extractor  *Extractor
	playlistID string
	done       bool
}

func (p *playlistPager) Next(ctx context.Context) ([]catalog.Metadata, error) {
	url := "https://www.youtube.com/playlist?list=" + p.playlistID
	infos, err := p.extractor.run(ctx, p.extractor.command().FlatPlaylist().DumpJSON(), url)
	if err != nil {
		return nil, err
	}
	p.done = true

	entries := infos
	if len(infos[0].Entries) > 0 {
		entries = infos[0].Entries
	}
	var page []catalog.Metadata
	for _, en := range entries {
		if en == nil || en.ID == "" {
			continue
		}
		page = append(page, metadata(en))
	}
	log.Debug().Str("playlist", p.playlistID).Int("videos", len(page)).Msg("Fetched playlist")
	return page, nil
}

func (p *playlistPager) Done() bool { return p.done }

func metadata(info *ytdlp.ExtractedInfo) catalog.Metadata {
	artist := str(info.Uploader)
	if artist == "" {
		artist = "Unknown Artist"
	}
	return catalog.Metadata{
		StreamID: info.ID,
		Title:    str(info.Title),
		Artist:   artist,
		Artwork:  catalog.NewArtwork(thumbnail(info.Thumbnails)),
		Duration: seconds(info.Duration),
	}
}

// audioURL picks the best playable URL: requested formats first, then the
// top-level url, then any listed format.
func audioURL(info *ytdlp.ExtractedInfo) string {
	for _, rf := range info.RequestedFormats {
		if rf != nil && strings.HasPrefix(rf.URL, "http") {
			return rf.URL
		}
	}
	if u := str(info.URL); strings.HasPrefix(u, "http") {
		return u
	}
	for _, f := range info.Formats {
		if f != nil && strings.HasPrefix(f.URL, "http") {
			return f.URL
		}
	}
	return ""
}

// thumbnail returns the last listed thumbnail, which yt-dlp orders best.
func thumbnail(ts []*ytdlp.ExtractedThumbnail) string {
	for i := len(ts) - 1; i >= 0; i-- {
		if ts[i] != nil && ts[i].URL != "" {
			return ts[i].URL
		}
	}
	return ""
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func seconds(p *float64) time.Duration {
	if p == nil || *p <= 0 {
		return 0
	}
	return time.Duration(*p * float64(time.Second))
}
