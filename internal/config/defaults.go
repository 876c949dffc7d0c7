package config

import "time"

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       "3001",
			MaxClients: 4,
		},
		MPD: MPDConfig{
			Host: "localhost",
			Port: 6600,
		},
		Player: PlayerConfig{
			StartDelay:       Duration{1500 * time.Millisecond},
			ProgressInterval: Duration{time.Second},
			SeekOffset:       Duration{10 * time.Second},
			Volume:           100,
		},
		Remote: RemoteConfig{
			LookupTimeout: Duration{10 * time.Second},
		},
		Cache: CacheConfig{
			Path:      "data/turntable.db",
			StreamTTL: Duration{7 * 24 * time.Hour},
		},
		Dropzone: DropzoneConfig{
			Settle: Duration{500 * time.Millisecond},
		},
		MPRIS: MPRISConfig{
			Name: "turntable",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Server
	if c.Server.Port == "" {
		c.Server.Port = d.Server.Port
	}
	if c.Server.MaxClients == 0 {
		c.Server.MaxClients = d.Server.MaxClients
	}

	// MPD
	if c.MPD.Host == "" {
		c.MPD.Host = d.MPD.Host
	}
	if c.MPD.Port == 0 {
		c.MPD.Port = d.MPD.Port
	}

	// Player. A zero start delay means immediate playback and a zero
	// progress interval turns refreshes off, so both are only defaulted
	// through Default().
	if c.Player.SeekOffset.Duration == 0 {
		c.Player.SeekOffset = d.Player.SeekOffset
	}

	// Remote
	if c.Remote.LookupTimeout.Duration == 0 {
		c.Remote.LookupTimeout = d.Remote.LookupTimeout
	}

	// Cache
	if c.Cache.Path == "" {
		c.Cache.Path = d.Cache.Path
	}
	if c.Cache.StreamTTL.Duration == 0 {
		c.Cache.StreamTTL = d.Cache.StreamTTL
	}

	// Dropzone
	if c.Dropzone.Settle.Duration == 0 {
		c.Dropzone.Settle = d.Dropzone.Settle
	}

	// MPRIS
	if c.MPRIS.Name == "" {
		c.MPRIS.Name = d.MPRIS.Name
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
