package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (INDEXCTL_*)
// 2. Config file (.indexctl/config.yml or .indexctl/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".indexctl")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("INDEXCTL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("remote.token_env_var")
	v.BindEnv("remote.timeout_sec")
	v.BindEnv("chunking.max_chars")
	v.BindEnv("chunking.min_chars")
	v.BindEnv("chunking.overlap_lines")
	v.BindEnv("concurrency.max_in_flight_files")
	v.BindEnv("concurrency.batch_size")
	v.BindEnv("watcher.enabled")
	v.BindEnv("watcher.debounce_ms")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("remote.token_env_var", d.Remote.TokenEnvVar)
	v.SetDefault("remote.timeout_sec", d.Remote.TimeoutSec)

	v.SetDefault("chunking.max_chars", d.Chunking.MaxChars)
	v.SetDefault("chunking.min_chars", d.Chunking.MinChars)
	v.SetDefault("chunking.overlap_lines", d.Chunking.OverlapLines)

	v.SetDefault("concurrency.max_in_flight_files", d.Concurrency.MaxInFlightFiles)
	v.SetDefault("concurrency.batch_size", d.Concurrency.BatchSize)

	v.SetDefault("watcher.enabled", d.Watcher.Enabled)
	v.SetDefault("watcher.debounce_ms", d.Watcher.DebounceMS)

	v.SetDefault("extensions.code", d.Extensions.Code)
	v.SetDefault("extensions.docs", d.Extensions.Docs)
	v.SetDefault("extensions.ignore", d.Extensions.Ignore)
}

// LoadConfig is a convenience function that creates a loader and loads
// config from the current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
