// Package version reports which turntable build is running.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Overridden with -ldflags "-X .../internal/version.Version=...".
var (
	Name      = "Turntable"
	Version   = "0.1.0"
	BuildTime = ""
	GitCommit = ""
)

// Info describes the running build. It is served on /api/v1/version.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	BuildTime string `json:"buildTime,omitempty"`
	GitCommit string `json:"gitCommit,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

// GetInfo returns the build info. Commit and time not stamped through
// ldflags are taken from the VCS settings the go tool embeds.
func GetInfo() Info {
	info := Info{Name: Name, Version: Version, BuildTime: BuildTime, GitCommit: GitCommit}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.fill(bi.Settings)
	}
	return info
}

func (i *Info) fill(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if i.GitCommit == "" {
				i.GitCommit = s.Value
			}
		case "vcs.time":
			if i.BuildTime == "" {
				i.BuildTime = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
}

// String renders the info for `turntable version`.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s v%s", i.Name, i.Version)
	if i.GitCommit != "" {
		commit := i.GitCommit[:min(7, len(i.GitCommit))]
		if i.Modified {
			commit += "-dirty"
		}
		fmt.Fprintf(&b, " (%s)", commit)
	}
	if i.BuildTime != "" {
		fmt.Fprintf(&b, " built %s", i.BuildTime)
	}
	return b.String()
}

// UserAgent identifies turntable to remote APIs.
func (i Info) UserAgent() string {
	return i.Name + "/" + i.Version
}
