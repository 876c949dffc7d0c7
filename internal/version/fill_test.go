package version

import (
	"runtime/debug"
	"testing"
)

func TestFillFromBuildSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "fedcba9876543210"},
		{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	var fromVCS Info
	fromVCS.fill(settings)
	if fromVCS.GitCommit != "fedcba9876543210" || fromVCS.BuildTime != "2026-10-01T12:00:00Z" || !fromVCS.Modified {
		t.Errorf("Unexpected info %+v", fromVCS)
	}

	stamped := Info{GitCommit: "abc1234", BuildTime: "release"}
	stamped.fill(settings)
	if stamped.GitCommit != "abc1234" || stamped.BuildTime != "release" {
		t.Errorf("ldflags values should win, got %+v", stamped)
	}
}
