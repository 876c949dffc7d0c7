package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from the standard location with environment
// overrides. A missing file yields the defaults.
// Search order: $XDG_CONFIG_HOME/turntable/config.toml, ~/.config/turntable/config.toml
func Load() (*Config, error) {
	path := findConfigFile()
	if path == "" {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific file path. Keys absent
// from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdgConfig = filepath.Join(home, ".config")
	}

	p := filepath.Join(xdgConfig, "turntable", "config.toml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("TURNTABLE_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("TURNTABLE_STATIC_DIR"); v != "" {
		cfg.Server.StaticDir = v
	}

	// MPD
	if v := os.Getenv("TURNTABLE_MPD_HOST"); v != "" {
		cfg.MPD.Host = v
	}
	if v := os.Getenv("TURNTABLE_MPD_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.MPD.Port = i
		}
	}
	if v := os.Getenv("TURNTABLE_MPD_PASSWORD"); v != "" {
		cfg.MPD.Password = v
	}

	// Remote
	if v := os.Getenv("TURNTABLE_YOUTUBE_API_KEY"); v != "" {
		cfg.Remote.APIKey = v
	}

	// Cache
	if v := os.Getenv("TURNTABLE_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}

	// Dropzone
	if v := os.Getenv("TURNTABLE_DROPZONE_DIR"); v != "" {
		cfg.Dropzone.Dir = v
	}

	// Log
	if v := os.Getenv("TURNTABLE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
