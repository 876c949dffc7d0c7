package ytdlp

import (
	"testing"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

func ptr[T any](v T) *T { return &v }

func TestAudioURL(t *testing.T) {
	tests := []struct {
		name string
		info *ytdlp.ExtractedInfo
		want string
	}{
		{
			name: "requested format first",
			info: &ytdlp.ExtractedInfo{
				RequestedFormats: []*ytdlp.ExtractedFormat{{URL: "https://rr1.googlevideo.com/a"}},
				URL:              ptr("https://rr1.googlevideo.com/top"),
			},
			want: "https://rr1.googlevideo.com/a",
		},
		{
			name: "top level url",
			info: &ytdlp.ExtractedInfo{URL: ptr("https://rr1.googlevideo.com/top")},
			want: "https://rr1.googlevideo.com/top",
		},
		{
			name: "formats fallback",
			info: &ytdlp.ExtractedInfo{
				Formats: []*ytdlp.ExtractedFormat{{URL: "manifest"}, {URL: "https://rr1.googlevideo.com/f"}},
			},
			want: "https://rr1.googlevideo.com/f",
		},
		{
			name: "nothing playable",
			info: &ytdlp.ExtractedInfo{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := audioURL(tt.info); got != tt.want {
				t.Errorf("audioURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetadata(t *testing.T) {
	info := &ytdlp.ExtractedInfo{
		ID:       "dQw4w9WgXcQ",
		Title:    ptr("Never Gonna Give You Up"),
		Duration: ptr(212.5),
		Thumbnails: []*ytdlp.ExtractedThumbnail{
			{URL: "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg"},
			{URL: "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg"},
		},
	}

	m := metadata(info)

	if m.StreamID != "dQw4w9WgXcQ" || m.Title != "Never Gonna Give You Up" {
		t.Errorf("unexpected metadata %+v", m)
	}
	if m.Artist != "Unknown Artist" {
		t.Errorf("expected placeholder artist, got %q", m.Artist)
	}
	if m.Duration != 212500*time.Millisecond {
		t.Errorf("duration = %v", m.Duration)
	}
	if len(m.Artwork) != 1 || m.Artwork[0].Src != "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg" {
		t.Errorf("unexpected artwork %v", m.Artwork)
	}
}
