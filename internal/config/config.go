// Package config loads and validates indexctl's configuration.
package config

// Config is the complete indexctl configuration. It can be loaded from
// .indexctl/config.yml with environment variable overrides.
type Config struct {
	Remote      RemoteConfig      `yaml:"remote" mapstructure:"remote"`
	Chunking    ChunkingConfig    `yaml:"chunking" mapstructure:"chunking"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Watcher     WatcherConfig     `yaml:"watcher" mapstructure:"watcher"`
	Extensions  ExtensionsConfig  `yaml:"extensions" mapstructure:"extensions"`
}

// RemoteConfig configures the connection to the indexing service.
type RemoteConfig struct {
	TokenEnvVar string `yaml:"token_env_var" mapstructure:"token_env_var"`
	TimeoutSec  int    `yaml:"timeout_sec" mapstructure:"timeout_sec"`
}

// ChunkingConfig controls how file content is split for indexing.
type ChunkingConfig struct {
	MaxChars     int `yaml:"max_chars" mapstructure:"max_chars"`
	MinChars     int `yaml:"min_chars" mapstructure:"min_chars"`
	OverlapLines int `yaml:"overlap_lines" mapstructure:"overlap_lines"`
}

// ConcurrencyConfig bounds the scanner's in-flight work.
type ConcurrencyConfig struct {
	MaxInFlightFiles int `yaml:"max_in_flight_files" mapstructure:"max_in_flight_files"`
	BatchSize        int `yaml:"batch_size" mapstructure:"batch_size"`
}

// WatcherConfig controls the filesystem watcher.
type WatcherConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	DebounceMS int  `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// ExtensionsConfig defines which files are eligible for indexing.
type ExtensionsConfig struct {
	Code   []string `yaml:"code" mapstructure:"code"`
	Docs   []string `yaml:"docs" mapstructure:"docs"`
	Ignore []string `yaml:"ignore" mapstructure:"ignore"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Remote: RemoteConfig{
			TokenEnvVar: "INDEXCTL_TOKEN",
			TimeoutSec:  30,
		},
		Chunking: ChunkingConfig{
			MaxChars:     1000,
			MinChars:     200,
			OverlapLines: 5,
		},
		Concurrency: ConcurrencyConfig{
			MaxInFlightFiles: 10,
			BatchSize:        60,
		},
		Watcher: WatcherConfig{
			Enabled:    true,
			DebounceMS: 500,
		},
		Extensions: ExtensionsConfig{
			Code:   DefaultCodeExtensions(),
			Docs:   DefaultDocExtensions(),
			Ignore: DefaultIgnorePrefixes(),
		},
	}
}
