package catalog

import (
	"errors"
	"testing"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		video    string
		playlist string
		wantErr  bool
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", "", false},
		{"watch with params", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ", "", false},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", "", false},
		{"no scheme", "www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", "", false},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", "", false},
		{"playlist", "https://www.youtube.com/playlist?list=PLx0sYbCqOb8TBPRdmBHs5Iftvv9TPboYG", "", "PLx0sYbCqOb8TBPRdmBHs5Iftvv9TPboYG", false},
		{"playlist wins over video", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123abc", "", "PL123abc", false},
		{"other host", "https://vimeo.com/123456", "", "", true},
		{"no id", "https://www.youtube.com/feed/trending", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := ParseURL(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURL) {
					t.Fatalf("expected ErrInvalidURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if link.VideoID != tt.video || link.PlaylistID != tt.playlist {
				t.Errorf("got %+v, want video=%q playlist=%q", link, tt.video, tt.playlist)
			}
		})
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected bool
	}{
		{"FLAC file", "Music/Album/01-Track.flac", true},
		{"MP3 file", "Music/Album/track.mp3", true},
		{"WAV file", "path/to/file.wav", true},
		{"OGG file", "music.ogg", true},
		{"Uppercase FLAC", "track.FLAC", true},
		{"Space in name", "01 - Black Coffee .mp3", true},
		{"Text file", "readme.txt", false},
		{"Image file", "cover.jpg", false},
		{"Playlist file", "playlist.m3u", false},
		{"No extension", "filename", false},
		{"Empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAudioFile(tt.uri); got != tt.expected {
				t.Errorf("IsAudioFile(%q) = %v, want %v", tt.uri, got, tt.expected)
			}
		})
	}
}
