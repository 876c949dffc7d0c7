package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// playTimeLayout has a fixed width so started_at sorts as text.
const playTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// DAO provides data access operations for the cache.
type DAO struct {
	db *DB
}

// NewDAO creates a new DAO instance.
func NewDAO(db *DB) *DAO {
	return &DAO{db: db}
}

// --- Stream Operations ---

// UpsertStream inserts or updates a resolved stream.
func (dao *DAO) UpsertStream(s *CachedStream) error {
	db := dao.db.DB()
	if db == nil {
		return ErrNotOpen
	}

	fetchedAt := s.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	ts := fetchedAt.UTC().Format(time.RFC3339)

	_, err := db.Exec(`
		INSERT INTO streams (id, title, artist, album, artwork_src, duration, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = ?, artist = ?, album = ?, artwork_src = ?, duration = ?, fetched_at = ?
	`,
		s.ID, s.Title, s.Artist, s.Album, s.ArtworkSrc, s.Duration.Milliseconds(), ts,
		s.Title, s.Artist, s.Album, s.ArtworkSrc, s.Duration.Milliseconds(), ts,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stream %s: %w", s.ID, err)
	}
	dao.db.touch()
	return nil
}

// UpsertStreams stores a batch of streams in one transaction.
func (dao *DAO) UpsertStreams(streams []*CachedStream) error {
	db := dao.db.DB()
	if db == nil {
		return ErrNotOpen
	}
	if len(streams) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO streams (id, title, artist, album, artwork_src, duration, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, artist = excluded.artist, album = excluded.album,
			artwork_src = excluded.artwork_src, duration = excluded.duration,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, s := range streams {
		if _, err := stmt.Exec(s.ID, s.Title, s.Artist, s.Album, s.ArtworkSrc, s.Duration.Milliseconds(), now); err != nil {
			return fmt.Errorf("failed to upsert stream %s: %w", s.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	dao.db.touch()
	return nil
}

// GetStream retrieves a stream by video ID. It returns nil if the stream
// is not cached.
func (dao *DAO) GetStream(id string) (*CachedStream, error) {
	db := dao.db.DB()
	if db == nil {
		return nil, ErrNotOpen
	}

	s := &CachedStream{}
	var album, artwork sql.NullString
	var durationMs int64
	var fetchedAt string

	err := db.QueryRow(`
		SELECT id, title, artist, album, artwork_src, duration, fetched_at
		FROM streams WHERE id = ?
	`, id).Scan(&s.ID, &s.Title, &s.Artist, &album, &artwork, &durationMs, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.Album = album.String
	s.ArtworkSrc = artwork.String
	s.Duration = time.Duration(durationMs) * time.Millisecond
	s.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
	return s, nil
}

// PruneStreams deletes streams fetched before the cutoff.
func (dao *DAO) PruneStreams(before time.Time) (int64, error) {
	db := dao.db.DB()
	if db == nil {
		return 0, ErrNotOpen
	}
	res, err := db.Exec("DELETE FROM streams WHERE fetched_at < ?", before.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Play Log Operations ---

// InsertPlay appends an entry to the play history. A missing ID or start
// time is filled in.
func (dao *DAO) InsertPlay(e *PlayEntry) error {
	db := dao.db.DB()
	if db == nil {
		return ErrNotOpen
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO play_log (id, item_id, kind, title, artist, stream_id, path, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.ItemID, e.Kind, e.Title, e.Artist, e.StreamID, e.Path, e.StartedAt.UTC().Format(playTimeLayout))
	if err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}
	dao.db.touch()
	return nil
}

// RecentPlays returns the latest history entries, newest first.
func (dao *DAO) RecentPlays(limit int) ([]*PlayEntry, error) {
	db := dao.db.DB()
	if db == nil {
		return nil, ErrNotOpen
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	rows, err := db.Query(`
		SELECT id, item_id, kind, title, artist, stream_id, path, started_at
		FROM play_log ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*PlayEntry
	for rows.Next() {
		e := &PlayEntry{}
		var artist, streamID, path sql.NullString
		var startedAt string
		if err := rows.Scan(&e.ID, &e.ItemID, &e.Kind, &e.Title, &artist, &streamID, &path, &startedAt); err != nil {
			return nil, err
		}
		e.Artist = artist.String
		e.StreamID = streamID.String
		e.Path = path.String
		e.StartedAt, _ = time.Parse(playTimeLayout, startedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LogCacheStats logs cache statistics.
func (dao *DAO) LogCacheStats() {
	stats, err := dao.db.GetStats()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get cache stats")
		return
	}

	log.Info().
		Int("streams", stats.StreamCount).
		Int("plays", stats.PlayCount).
		Str("schema", stats.SchemaVersion).
		Msg("Cache statistics")
}
