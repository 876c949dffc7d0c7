package version_test

import (
	"testing"

	"github.com/edumarques81/turntable/internal/version"
)

func TestVersionInfo(t *testing.T) {
	t.Run("Version should not be empty", func(t *testing.T) {
		if version.Version == "" {
			t.Error("Version should not be empty")
		}
	})

	t.Run("Name should be Turntable", func(t *testing.T) {
		if version.Name != "Turntable" {
			t.Errorf("Expected name 'Turntable', got '%s'", version.Name)
		}
	})
}

func TestGetInfo(t *testing.T) {
	info := version.GetInfo()

	if info.Name != version.Name {
		t.Errorf("Expected name '%s', got '%s'", version.Name, info.Name)
	}
	if info.Version != version.Version {
		t.Errorf("Expected version '%s', got '%s'", version.Version, info.Version)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		info version.Info
		want string
	}{
		{"plain", version.Info{Name: "Turntable", Version: "1.2.3"}, "Turntable v1.2.3"},
		{"short commit", version.Info{Name: "Turntable", Version: "1.2.3", GitCommit: "abc"}, "Turntable v1.2.3 (abc)"},
		{"long commit", version.Info{Name: "Turntable", Version: "1.2.3", GitCommit: "0123456789abcdef"}, "Turntable v1.2.3 (0123456)"},
		{"build time", version.Info{Name: "Turntable", Version: "1.2.3", BuildTime: "2026-01-01"}, "Turntable v1.2.3 built 2026-01-01"},
		{"modified tree", version.Info{Name: "Turntable", Version: "1.2.3", GitCommit: "0123456789", Modified: true}, "Turntable v1.2.3 (0123456-dirty)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	info := version.Info{Name: "Turntable", Version: "0.1.0"}
	if got := info.UserAgent(); got != "Turntable/0.1.0" {
		t.Errorf("UserAgent() = %q", got)
	}
}
