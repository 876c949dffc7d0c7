package artwork

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFinder_FindCover(t *testing.T) {
	tests := []struct {
		name  string
		files []string // relative to the temp dir
		track string
		want  string // "" for no cover
	}{
		{
			name:  "cover in track dir",
			files: []string{"Album/cover.jpg", "Album/01.flac"},
			track: "Album/01.flac",
			want:  "Album/cover.jpg",
		},
		{
			name:  "cover in parent dir",
			files: []string{"Album/cover.jpg", "Album/CD1/01.flac"},
			track: "Album/CD1/01.flac",
			want:  "Album/cover.jpg",
		},
		{
			name:  "priority order",
			files: []string{"Album/folder.png", "Album/cover.jpg", "Album/01.mp3"},
			track: "Album/01.mp3",
			want:  "Album/cover.jpg",
		},
		{
			name:  "case insensitive",
			files: []string{"Album/COVER.JPG", "Album/01.mp3"},
			track: "Album/01.mp3",
			want:  "Album/COVER.JPG",
		},
		{
			name:  "any image fallback",
			files: []string{"Album/scan.png", "Album/01.mp3"},
			track: "Album/01.mp3",
			want:  "Album/scan.png",
		},
		{
			name:  "skips AppleDouble files",
			files: []string{"Album/._cover.jpg", "Album/01.mp3"},
			track: "Album/01.mp3",
			want:  "",
		},
		{
			name:  "too far up",
			files: []string{"Album/cover.jpg", "Album/Disc/Side/01.mp3"},
			track: "Album/Disc/Side/01.mp3",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, filepath.Join(dir, f))
			}

			got := NewFinder().FindCover(filepath.Join(dir, tt.track))
			want := ""
			if tt.want != "" {
				want = filepath.Join(dir, tt.want)
			}
			if got != want {
				t.Errorf("FindCover = %q, want %q", got, want)
			}
		})
	}
}

func TestFinder_RootBoundary(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "cover.jpg"))
	track := filepath.Join(dir, "music", "01.mp3")
	touch(t, track)

	if got := NewFinder().FindCover(track); got == "" {
		t.Fatal("Expected the parent cover without a root")
	}
	if got := NewFinder(WithRoot(filepath.Join(dir, "music"))).FindCover(track); got != "" {
		t.Errorf("Search escaped the root: %q", got)
	}
}

func TestFinder_Artwork(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "front.png"))
	track := filepath.Join(dir, "a b.flac")
	touch(t, track)

	art := NewFinder().Artwork(track)
	if len(art) != 2 {
		t.Fatalf("Expected 2 artwork refs, got %d", len(art))
	}
	if !strings.HasPrefix(art[0].Src, CoverRoute+"?track=") || strings.Contains(art[0].Src, " ") {
		t.Errorf("Unexpected route ref %q", art[0].Src)
	}
	if !strings.HasPrefix(art[1].Src, "file://") || !strings.HasSuffix(art[1].Src, "front.png") {
		t.Errorf("Unexpected file ref %q", art[1].Src)
	}
	if art[0].Type != "image/png" {
		t.Errorf("Type = %q, want image/png", art[0].Type)
	}

	if NewFinder().Artwork(filepath.Join(t.TempDir(), "x.mp3")) != nil {
		t.Error("Expected no artwork without a cover")
	}
}
