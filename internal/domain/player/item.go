package player

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies which playback backend an item needs.
type Kind int

const (
	KindLocalFile Kind = iota
	KindRemoteStream
)

func (k Kind) String() string {
	switch k {
	case KindLocalFile:
		return "file"
	case KindRemoteStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Artwork is one image reference for an item.
type Artwork struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes,omitempty"`
	Type  string `json:"type,omitempty"`
}

// LocalFile is a locally supplied audio file.
type LocalFile struct {
	Path         string
	DisplayName  string
	Artist       string
	Album        string
	Artwork      []Artwork
	DurationHint time.Duration // 0 if unknown
}

// RemoteStream is an item streamed from the video platform.
type RemoteStream struct {
	StreamID     string
	Title        string
	Artist       string
	Album        string
	Artwork      []Artwork
	DurationHint time.Duration // 0 if unknown
}

// Item is one playable unit. Exactly one of Local or Remote is set.
// Items are compared by pointer: two items built from the same fields
// are different entries in the queue.
type Item struct {
	ID     string
	Local  *LocalFile
	Remote *RemoteStream
}

// NewLocalFile creates a queue item for a local audio file.
// An empty display name falls back to the file's base name.
func NewLocalFile(f LocalFile) *Item {
	if f.DisplayName == "" {
		f.DisplayName = filepath.Base(f.Path)
	}
	f.Artwork = append([]Artwork(nil), f.Artwork...)
	return &Item{ID: uuid.NewString(), Local: &f}
}

// NewRemoteStream creates a queue item for a remote stream.
func NewRemoteStream(r RemoteStream) *Item {
	r.Artwork = append([]Artwork(nil), r.Artwork...)
	return &Item{ID: uuid.NewString(), Remote: &r}
}

// Kind returns the backend kind the item needs.
func (i *Item) Kind() Kind {
	if i.Remote != nil {
		return KindRemoteStream
	}
	return KindLocalFile
}

// Title returns the display title.
func (i *Item) Title() string {
	if i.Remote != nil {
		return i.Remote.Title
	}
	if i.Local != nil {
		return strings.TrimSpace(i.Local.DisplayName)
	}
	return ""
}

// Metadata returns the now-playing metadata for the item, with the
// placeholder artist and album used when tags are missing.
func (i *Item) Metadata() Metadata {
	m := Metadata{Title: i.Title()}
	switch {
	case i.Remote != nil:
		m.Artist = i.Remote.Artist
		m.Album = i.Remote.Album
		m.Artwork = append([]Artwork(nil), i.Remote.Artwork...)
		m.Duration = i.Remote.DurationHint
	case i.Local != nil:
		m.Artist = i.Local.Artist
		m.Album = i.Local.Album
		m.Artwork = append([]Artwork(nil), i.Local.Artwork...)
		m.Duration = i.Local.DurationHint
	}
	if m.Artist == "" {
		m.Artist = UnknownArtist
	}
	if m.Album == "" {
		m.Album = UnknownAlbum
	}
	return m
}

// Placeholders used for items without tags.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// Metadata is what the now-playing integration displays.
type Metadata struct {
	Title    string        `json:"title"`
	Artist   string        `json:"artist"`
	Album    string        `json:"album"`
	Artwork  []Artwork     `json:"artwork"`
	Duration time.Duration `json:"-"`
}

// ItemInfo is the wire view of an item.
type ItemInfo struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist,omitempty"`
	StreamID string    `json:"streamId,omitempty"`
	Path     string    `json:"path,omitempty"`
	Artwork  []Artwork `json:"artwork,omitempty"`
	Duration int       `json:"duration"` // seconds, 0 if unknown
}

// Info returns the wire view of the item.
func (i *Item) Info() ItemInfo {
	info := ItemInfo{ID: i.ID, Kind: i.Kind().String(), Title: i.Title()}
	switch {
	case i.Remote != nil:
		info.Artist = i.Remote.Artist
		info.StreamID = i.Remote.StreamID
		info.Artwork = i.Remote.Artwork
		info.Duration = int(i.Remote.DurationHint.Seconds())
	case i.Local != nil:
		info.Artist = i.Local.Artist
		info.Path = i.Local.Path
		info.Artwork = i.Local.Artwork
		info.Duration = int(i.Local.DurationHint.Seconds())
	}
	return info
}
