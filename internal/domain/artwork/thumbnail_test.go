package artwork_test

import (
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/edumarques81/turntable/internal/domain/artwork"
)

func createTestImage(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, image.White)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Thumbnail not found: %v", err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatalf("Failed to decode thumbnail: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestThumbnailer_Thumbnail(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "cover.jpg")
	createTestImage(t, source, 800, 600)

	thumbs := artwork.NewThumbnailer(filepath.Join(dir, "thumbs"))
	path, err := thumbs.Thumbnail(source, artwork.ThumbSmall)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	if w, h := decodeSize(t, path); w != 150 || h != 112 {
		t.Errorf("Thumbnail size = %dx%d, want 150x112", w, h)
	}

	again, err := thumbs.Thumbnail(source, artwork.ThumbSmall)
	if err != nil || again != path {
		t.Errorf("Second call should reuse %s, got %s (%v)", path, again, err)
	}

	medium, err := thumbs.Thumbnail(source, artwork.ThumbMedium)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}
	if medium == path {
		t.Error("Different sizes should not share a file")
	}
}

func TestThumbnailer_SmallSourceKeepsSize(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "cover.jpg")
	createTestImage(t, source, 100, 80)

	path, err := artwork.NewThumbnailer(dir).Thumbnail(source, artwork.ThumbLarge)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}
	if w, h := decodeSize(t, path); w != 100 || h != 80 {
		t.Errorf("Thumbnail size = %dx%d, want 100x80", w, h)
	}
}

func TestThumbnailer_Errors(t *testing.T) {
	dir := t.TempDir()
	thumbs := artwork.NewThumbnailer(dir)

	if _, err := thumbs.Thumbnail(filepath.Join(dir, "missing.jpg"), artwork.ThumbSmall); err == nil {
		t.Error("Expected error for missing cover")
	}

	bogus := filepath.Join(dir, "bogus.jpg")
	if err := os.WriteFile(bogus, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := thumbs.Thumbnail(bogus, artwork.ThumbSmall); err == nil {
		t.Error("Expected error for undecodable cover")
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"small", artwork.ThumbSmall},
		{"medium", artwork.ThumbMedium},
		{"large", artwork.ThumbLarge},
		{"64", artwork.ThumbSmall},
		{"200", artwork.ThumbMedium},
		{"2000", artwork.ThumbLarge},
		{"-1", 0},
		{"huge", 0},
	}
	for _, tt := range tests {
		if got := artwork.ParseSize(tt.in); got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
