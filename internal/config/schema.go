package config

// Config is the root configuration structure.
type Config struct {
	Mopidy    MopidyConfig    `toml:"mopidy"`
	Defaults  DefaultsConfig  `toml:"defaults"`
	Discovery DiscoveryConfig `toml:"discovery"`
	Tail      TailConfig      `toml:"tail"`
	TUI       TUIConfig       `toml:"tui"`
	Log       LogConfig       `toml:"log"`
}

// MopidyConfig holds server connection settings.
type MopidyConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DefaultsConfig holds default playback settings.
type DefaultsConfig struct {
	Volume      int    `toml:"volume"`
	EnqueueMode string `toml:"enqueue_mode"`
	Repeat      string `toml:"repeat"`
	Shuffle     bool   `toml:"shuffle"`
}

// DiscoveryConfig holds mDNS discovery settings.
type DiscoveryConfig struct {
	Timeout int `toml:"timeout"`
}

// TailConfig holds settings for tail/follow mode.
type TailConfig struct {
	Interval int `toml:"interval"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
