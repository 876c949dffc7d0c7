package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	validURLPattern = regexp.MustCompile(`^(https?://)?(www\.youtube\.com|youtu\.?be)/.+$`)
	videoIDPattern  = regexp.MustCompile(`(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	playlistPattern = regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`)
)

// Link is a parsed video platform link. A link naming both a playlist
// and a video is treated as a playlist.
type Link struct {
	VideoID    string
	PlaylistID string
}

// IsPlaylist reports whether the link refers to a playlist.
func (l Link) IsPlaylist() bool { return l.PlaylistID != "" }

// ParseURL extracts the video or playlist id from a link.
func ParseURL(raw string) (Link, error) {
	raw = strings.TrimSpace(raw)
	if !validURLPattern.MatchString(raw) {
		return Link{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	if m := playlistPattern.FindStringSubmatch(raw); m != nil {
		return Link{PlaylistID: m[1]}, nil
	}
	if m := videoIDPattern.FindStringSubmatch(raw); m != nil {
		return Link{VideoID: m[1]}, nil
	}
	return Link{}, fmt.Errorf("%w: no video id in %q", ErrInvalidURL, raw)
}

// WatchURL returns the canonical watch page for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
