// Package config loads turntable settings from a TOML file and the
// environment.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	MPD      MPDConfig      `toml:"mpd"`
	Player   PlayerConfig   `toml:"player"`
	Remote   RemoteConfig   `toml:"remote"`
	Cache    CacheConfig    `toml:"cache"`
	Dropzone DropzoneConfig `toml:"dropzone"`
	MPRIS    MPRISConfig    `toml:"mpris"`
	Notify   NotifyConfig   `toml:"notify"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig holds HTTP and Socket.io settings.
type ServerConfig struct {
	Port       string `toml:"port"`
	StaticDir  string `toml:"static_dir"`
	MaxClients int    `toml:"max_clients"` // concurrent non-local clients
}

// MPDConfig holds the connection to the MPD instance that plays remote
// streams.
type MPDConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
}

// PlayerConfig holds queue engine timings.
type PlayerConfig struct {
	StartDelay       Duration `toml:"start_delay"`
	ProgressInterval Duration `toml:"progress_interval"`
	SeekOffset       Duration `toml:"seek_offset"`
	Volume           int      `toml:"volume"` // initial volume, 0-100
}

// RemoteConfig holds video platform settings.
type RemoteConfig struct {
	APIKey        string   `toml:"api_key"` // Data API key; yt-dlp is used when empty
	LookupTimeout Duration `toml:"lookup_timeout"`
	Cookies       string   `toml:"cookies"`
	InstallYtdlp  bool     `toml:"install_ytdlp"`
}

// CacheConfig holds the metadata cache and play log settings.
type CacheConfig struct {
	Path      string   `toml:"path"`
	StreamTTL Duration `toml:"stream_ttl"`
	Disabled  bool     `toml:"disabled"`
}

// DropzoneConfig holds the drop folder settings. An empty dir disables it.
type DropzoneConfig struct {
	Dir    string   `toml:"dir"`
	Settle Duration `toml:"settle"`
}

// MPRISConfig holds the desktop media player integration settings.
type MPRISConfig struct {
	Enabled bool   `toml:"enabled"`
	Name    string `toml:"name"`
}

// NotifyConfig holds desktop notification settings.
type NotifyConfig struct {
	Desktop bool `toml:"desktop"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a string such as "1.5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
