// Package youtube provides a YouTube Data API v3 metadata resolver.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/edumarques81/turntable/internal/domain/catalog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the Data API base URL
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// DefaultTimeout for HTTP requests
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit keeps well inside the daily quota
	DefaultRateLimit = 5 // 5 requests per second

	// PageSize is the largest page the playlistItems endpoint returns
	PageSize = 50
)

// Common errors
var (
	// ErrRateLimited indicates the quota or rate limit was exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTemporaryFailure indicates a temporary upstream failure
	ErrTemporaryFailure = errors.New("temporary failure")
)

// Client resolves video and playlist metadata through the Data API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rateLimiter
	userAgent  string
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRateLimit sets the rate limit in requests per second.
func WithRateLimit(rps int) Option {
	return func(c *Client) {
		c.limiter = newRateLimiter(rps)
	}
}

// NewClient creates a Data API client using apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: newRateLimiter(DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ResolveItem fetches the snippet of one video.
func (c *Client) ResolveItem(ctx context.Context, id string) (catalog.Metadata, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("id", id)

	var resp videoListResponse
	if err := c.get(ctx, "videos", q, &resp); err != nil {
		return catalog.Metadata{}, err
	}
	if len(resp.Items) == 0 {
		return catalog.Metadata{}, fmt.Errorf("video %s: %w", id, catalog.ErrNotFound)
	}

	v := resp.Items[0]
	artist := v.Snippet.ChannelTitle
	if artist == "" {
		artist = unknownArtist
	}
	log.Debug().Str("id", v.ID).Str("title", v.Snippet.Title).Msg("Resolved video")
	return catalog.Metadata{
		StreamID: v.ID,
		Title:    v.Snippet.Title,
		Artist:   artist,
		Artwork:  catalog.NewArtwork(v.Snippet.Thumbnails.best()),
	}, nil
}

// ResolvePlaylist returns a pager over the videos of a playlist.
func (c *Client) ResolvePlaylist(ctx context.Context, id string) catalog.PlaylistPager {
	return &playlistPager{client: c, playlistID: id}
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	q.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// Success
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", endpoint, catalog.ErrNotFound)
	case http.StatusTooManyRequests:
		log.Warn().Str("endpoint", endpoint).Msg("YouTube rate limit exceeded")
		return ErrRateLimited
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		log.Warn().Int("status", resp.StatusCode).Msg("YouTube temporary error")
		return ErrTemporaryFailure
	default:
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("youtube api (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

type playlistPager struct {
	client     *Client
	playlistID string
	pageToken  string
	started    bool
}

// Next fetches the next page. Entries that are not videos are skipped.
func (p *playlistPager) Next(ctx context.Context) ([]catalog.Metadata, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("playlistId", p.playlistID)
	q.Set("maxResults", fmt.Sprint(PageSize))
	if p.pageToken != "" {
		q.Set("pageToken", p.pageToken)
	}

	var resp playlistItemsResponse
	if err := p.client.get(ctx, "playlistItems", q, &resp); err != nil {
		return nil, err
	}
	p.started = true
	p.pageToken = resp.NextPageToken

	var page []catalog.Metadata
	for _, it := range resp.Items {
		if it.Snippet.ResourceID.Kind != kindVideo {
			continue
		}
		artist := it.Snippet.VideoOwnerChannelTitle
		if artist == "" {
			artist = unknownArtist
		}
		page = append(page, catalog.Metadata{
			StreamID: it.Snippet.ResourceID.VideoID,
			Title:    it.Snippet.Title,
			Artist:   artist,
			Artwork:  catalog.NewArtwork(it.Snippet.Thumbnails.best()),
		})
	}
	log.Debug().Str("playlist", p.playlistID).Int("videos", len(page)).
		Bool("more", p.pageToken != "").Msg("Fetched playlist page")
	return page, nil
}

// Done reports whether the last page has been fetched.
func (p *playlistPager) Done() bool {
	return p.started && p.pageToken == ""
}

// rateLimiter spaces requests at a fixed interval
type rateLimiter struct {
	mu          sync.Mutex
	interval    time.Duration
	lastRequest time.Time
}

func newRateLimiter(requestsPerSecond int) *rateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRateLimit
	}
	return &rateLimiter{
		interval: time.Second / time.Duration(requestsPerSecond),
	}
}

// Wait blocks until a request can be made
func (r *rateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	nextAllowed := r.lastRequest.Add(r.interval)

	if now.Before(nextAllowed) {
		select {
		case <-time.After(nextAllowed.Sub(now)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.lastRequest = time.Now()
	return nil
}
