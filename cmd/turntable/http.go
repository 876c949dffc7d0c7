package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/turntable/internal/domain/artwork"
	"github.com/edumarques81/turntable/internal/domain/player"
	"github.com/edumarques81/turntable/internal/infra/cache"
	"github.com/edumarques81/turntable/internal/version"
)

type snapshotSource interface {
	Snapshot() (player.Snapshot, error)
}

type historySource interface {
	Recent(limit int) ([]*cache.PlayEntry, error)
}

type pinger interface {
	Ping() error
}

type coverSource interface {
	FindCover(trackPath string) string
}

type thumbnailSource interface {
	Thumbnail(coverPath string, size int) (string, error)
}

// routes holds what the HTTP endpoints read from. history may be nil
// when the cache is off.
type routes struct {
	socket    http.Handler
	snapshots snapshotSource
	history   historySource
	covers    coverSource
	thumbs    thumbnailSource
	mpd       pinger
	staticDir string
}

// newMux builds the HTTP routes.
func newMux(rt routes) *http.ServeMux {
	mux := http.NewServeMux()
	snaps, history, mpd, staticDir := rt.snapshots, rt.history, rt.mpd, rt.staticDir

	if rt.socket != nil {
		mux.Handle("/socket.io/", rt.socket)
	}

	// Health check. MPD only backs remote streams, so its absence degrades
	// rather than fails the service.
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok", "mpd": "connected"}
		if err := mpd.Ping(); err != nil {
			status["mpd"] = "disconnected"
		}
		writeJSON(w, http.StatusOK, status)
	})

	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, version.GetInfo())
	})

	mux.HandleFunc("/api/v1/state", func(w http.ResponseWriter, r *http.Request) {
		snap, err := snaps.Snapshot()
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, snap.ToJSON())
	})

	mux.HandleFunc("/api/v1/history", func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			writeJSON(w, http.StatusOK, []*cache.PlayEntry{})
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := history.Recent(limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []*cache.PlayEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	})

	mux.HandleFunc(artwork.CoverRoute, func(w http.ResponseWriter, r *http.Request) {
		track := r.URL.Query().Get("track")
		if track == "" {
			http.Error(w, "track parameter required", http.StatusBadRequest)
			return
		}
		cover := rt.covers.FindCover(track)
		if cover == "" {
			log.Debug().Str("track", track).Msg("Cover not found")
			http.Error(w, "cover not found", http.StatusNotFound)
			return
		}
		if size := artwork.ParseSize(r.URL.Query().Get("size")); size > 0 && rt.thumbs != nil {
			thumb, err := rt.thumbs.Thumbnail(cover, size)
			if err != nil {
				log.Warn().Err(err).Str("cover", cover).Msg("Thumbnail failed, serving original")
			} else {
				cover = thumb
			}
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeFile(w, r, cover)
	})

	// Serve static files if directory specified (SPA mode)
	if staticDir != "" {
		log.Info().Str("dir", staticDir).Msg("Serving static files")
		fs := http.FileServer(http.Dir(staticDir))
		index := filepath.Join(staticDir, "index.html")
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				http.ServeFile(w, r, index)
				return
			}
			if _, err := os.Stat(filepath.Join(staticDir, filepath.Clean(r.URL.Path))); os.IsNotExist(err) {
				http.ServeFile(w, r, index)
				return
			}
			fs.ServeHTTP(w, r)
		})
	}

	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}
