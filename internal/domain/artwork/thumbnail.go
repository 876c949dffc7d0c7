package artwork

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder
	"image/jpeg"
	_ "image/png" // PNG decoder
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Thumbnail edge lengths offered by the cover route.
const (
	ThumbSmall  = 150
	ThumbMedium = 300
	ThumbLarge  = 500
)

// ParseSize maps a size query value ("small", "medium", "large" or a pixel
// count) to a thumbnail edge. It returns 0 for the original image.
func ParseSize(v string) int {
	switch v {
	case "":
		return 0
	case "small":
		return ThumbSmall
	case "medium":
		return ThumbMedium
	case "large":
		return ThumbLarge
	}
	n, err := strconv.Atoi(v)
	switch {
	case err != nil || n <= 0:
		return 0
	case n <= ThumbSmall:
		return ThumbSmall
	case n <= ThumbMedium:
		return ThumbMedium
	default:
		return ThumbLarge
	}
}

// Thumbnailer scales covers down and keeps the results on disk.
type Thumbnailer struct {
	dir string
}

// NewThumbnailer creates a Thumbnailer that stores files under dir.
func NewThumbnailer(dir string) *Thumbnailer {
	return &Thumbnailer{dir: dir}
}

// Thumbnail returns the path of a JPEG no larger than size on either edge.
// Thumbnails are keyed by source path and modification time, so an
// updated cover gets a fresh one.
func (t *Thumbnailer) Thumbnail(coverPath string, size int) (string, error) {
	info, err := os.Stat(coverPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(t.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	sum := sha1.Sum([]byte(coverPath + "|" + info.ModTime().UTC().String()))
	thumbPath := filepath.Join(t.dir, fmt.Sprintf("%s_%d.jpg", hex.EncodeToString(sum[:8]), size))
	if _, err := os.Stat(thumbPath); err == nil {
		return thumbPath, nil
	}

	src, err := os.Open(coverPath)
	if err != nil {
		return "", fmt.Errorf("failed to open cover: %w", err)
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		return "", fmt.Errorf("failed to decode cover: %w", err)
	}
	log.Debug().Str("cover", coverPath).Str("format", format).Int("size", size).Msg("Generating thumbnail")

	// Write to a temp file first so a concurrent request never serves a
	// partial image.
	tmp, err := os.CreateTemp(t.dir, "thumb-*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create thumbnail file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := jpeg.Encode(tmp, resize(img, size), &jpeg.Options{Quality: 85}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), thumbPath); err != nil {
		return "", err
	}
	return thumbPath, nil
}

// resize scales an image to fit within maxSize, keeping the aspect ratio.
// Images already small enough are returned as is.
func resize(src image.Image, maxSize int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSize && h <= maxSize {
		return src
	}

	var newW, newH int
	if w > h {
		newW = maxSize
		newH = max(1, h*maxSize/w)
	} else {
		newH = maxSize
		newW = max(1, w*maxSize/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
