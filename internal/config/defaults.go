package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Mopidy: MopidyConfig{
			Host: "localhost",
			Port: 6680,
		},
		Defaults: DefaultsConfig{
			Volume:      50,
			EnqueueMode: "replace",
			Repeat:      "off",
		},
		Discovery: DiscoveryConfig{
			Timeout: 5,
		},
		Tail: TailConfig{
			Interval: 1000,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Mopidy
	if c.Mopidy.Host == "" {
		c.Mopidy.Host = d.Mopidy.Host
	}
	if c.Mopidy.Port == 0 {
		c.Mopidy.Port = d.Mopidy.Port
	}

	// Defaults
	if c.Defaults.Volume == 0 {
		c.Defaults.Volume = d.Defaults.Volume
	}
	if c.Defaults.EnqueueMode == "" {
		c.Defaults.EnqueueMode = d.Defaults.EnqueueMode
	}
	if c.Defaults.Repeat == "" {
		c.Defaults.Repeat = d.Defaults.Repeat
	}

	// Discovery
	if c.Discovery.Timeout == 0 {
		c.Discovery.Timeout = d.Discovery.Timeout
	}

	// Tail
	if c.Tail.Interval == 0 {
		c.Tail.Interval = d.Tail.Interval
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
