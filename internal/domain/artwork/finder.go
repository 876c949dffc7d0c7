// Package artwork finds cover images next to local audio files.
package artwork

import (
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/edumarques81/turntable/internal/domain/player"
	"github.com/rs/zerolog/log"
)

// CoverRoute is the HTTP path that serves a track's cover.
const CoverRoute = "/api/v1/cover"

// CoverNames defines common artwork filenames in priority order.
var CoverNames = []string{
	"cover",
	"folder",
	"front",
	"album",
	"artwork",
}

// CoverExtensions defines supported image extensions.
var CoverExtensions = []string{
	".jpg",
	".jpeg",
	".png",
	".webp",
}

// Finder searches the filesystem for cover images.
type Finder struct {
	root      string
	maxLevels int
}

// Option configures a Finder.
type Option func(*Finder)

// WithRoot stops the upward search at dir.
func WithRoot(dir string) Option {
	return func(f *Finder) {
		if abs, err := filepath.Abs(dir); err == nil {
			f.root = abs
		}
	}
}

// NewFinder creates a Finder. By default it looks in the track directory
// and its parent, which covers multi-disc layouts.
func NewFinder(opts ...Option) *Finder {
	f := &Finder{maxLevels: 1}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindCover returns the cover image for the track at trackPath, or "" if
// there is none.
func (f *Finder) FindCover(trackPath string) string {
	if trackPath == "" {
		return ""
	}
	abs, err := filepath.Abs(trackPath)
	if err != nil {
		return ""
	}

	dir := filepath.Dir(abs)
	for level := 0; level <= f.maxLevels; level++ {
		if f.root != "" && !within(dir, f.root) {
			break
		}
		if p := searchDirectory(dir); p != "" {
			log.Debug().Str("track", trackPath).Str("cover", p).Int("level", level).Msg("Found cover")
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Artwork returns the artwork references for a local track: the HTTP
// route first for web clients, then a file URL for desktop integrations.
func (f *Finder) Artwork(trackPath string) []player.Artwork {
	cover := f.FindCover(trackPath)
	if cover == "" {
		return nil
	}
	typ := mime.TypeByExtension(strings.ToLower(filepath.Ext(cover)))
	return []player.Artwork{
		{Src: CoverRoute + "?track=" + url.QueryEscape(trackPath), Type: typ},
		{Src: (&url.URL{Scheme: "file", Path: cover}).String(), Type: typ},
	}
}

func within(dir, root string) bool {
	rel, err := filepath.Rel(root, dir)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// searchDirectory searches a single directory for artwork files.
func searchDirectory(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	images := make(map[string]string) // lowercased name -> actual name
	var first string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "._") {
			continue
		}
		lower := strings.ToLower(entry.Name())
		if !isImage(lower) {
			continue
		}
		images[lower] = entry.Name()
		if first == "" {
			first = entry.Name()
		}
	}

	for _, name := range CoverNames {
		for _, ext := range CoverExtensions {
			if actual, ok := images[name+ext]; ok {
				return filepath.Join(dir, actual)
			}
		}
	}
	// Any image will do.
	if first != "" {
		return filepath.Join(dir, first)
	}
	return ""
}

func isImage(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range CoverExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
