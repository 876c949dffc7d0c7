package cache

import (
	"errors"
	"time"
)

// ErrNotOpen is returned when the database has not been opened.
var ErrNotOpen = errors.New("database not open")

// CachedStream represents a resolved remote stream in the cache.
type CachedStream struct {
	ID         string        `json:"id"`         // Video ID
	Title      string        `json:"title"`      // Video title
	Artist     string        `json:"artist"`     // Channel name
	Album      string        `json:"album"`      // Usually empty
	ArtworkSrc string        `json:"artworkSrc"` // Thumbnail URL
	Duration   time.Duration `json:"duration"`   // 0 if unknown
	FetchedAt  time.Time     `json:"fetchedAt"`  // When resolved
}

// PlayEntry is one row of the play history.
type PlayEntry struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"itemId"` // Queue entry identity
	Kind      string    `json:"kind"`   // "local" or "remote"
	Title     string    `json:"title"`
	Artist    string    `json:"artist,omitempty"`
	StreamID  string    `json:"streamId,omitempty"`
	Path      string    `json:"path,omitempty"`
	StartedAt time.Time `json:"startedAt"`
}

// CacheStats provides statistics about the cache.
type CacheStats struct {
	StreamCount   int       `json:"streamCount"`
	PlayCount     int       `json:"playCount"`
	SchemaVersion string    `json:"schemaVersion"`
	LastUpdated   time.Time `json:"lastUpdated"`
}
