package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyTokenEnvVar indicates a missing remote token env var name.
	ErrEmptyTokenEnvVar = errors.New("empty remote token env var")

	// ErrInvalidTimeout indicates a non-positive remote timeout.
	ErrInvalidTimeout = errors.New("invalid remote timeout")

	// ErrInvalidChunkSize indicates invalid chunk size configuration.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidOverlap indicates invalid overlap configuration.
	ErrInvalidOverlap = errors.New("invalid overlap")

	// ErrInvalidConcurrency indicates invalid concurrency configuration.
	ErrInvalidConcurrency = errors.New("invalid concurrency setting")

	// ErrInvalidDebounce indicates an invalid watcher debounce window.
	ErrInvalidDebounce = errors.New("invalid watcher debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateRemote(&cfg.Remote); err != nil {
		errs = append(errs, err)
	}
	if err := validateChunking(&cfg.Chunking); err != nil {
		errs = append(errs, err)
	}
	if err := validateConcurrency(&cfg.Concurrency); err != nil {
		errs = append(errs, err)
	}
	if err := validateWatcher(&cfg.Watcher); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateRemote(cfg *RemoteConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.TokenEnvVar) == "" {
		errs = append(errs, fmt.Errorf("%w: token_env_var is required", ErrEmptyTokenEnvVar))
	}
	if cfg.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout_sec must be positive, got %d", ErrInvalidTimeout, cfg.TimeoutSec))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateChunking(cfg *ChunkingConfig) error {
	var errs []error

	if cfg.MaxChars <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_chars must be positive, got %d", ErrInvalidChunkSize, cfg.MaxChars))
	}
	if cfg.MinChars < 0 {
		errs = append(errs, fmt.Errorf("%w: min_chars cannot be negative, got %d", ErrInvalidChunkSize, cfg.MinChars))
	}
	if cfg.MaxChars > 0 && cfg.MinChars >= cfg.MaxChars {
		errs = append(errs, fmt.Errorf("%w: min_chars (%d) should be less than max_chars (%d)", ErrInvalidChunkSize, cfg.MinChars, cfg.MaxChars))
	}
	if cfg.OverlapLines < 0 {
		errs = append(errs, fmt.Errorf("%w: overlap_lines cannot be negative, got %d", ErrInvalidOverlap, cfg.OverlapLines))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateConcurrency(cfg *ConcurrencyConfig) error {
	var errs []error

	if cfg.MaxInFlightFiles <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_in_flight_files must be positive, got %d", ErrInvalidConcurrency, cfg.MaxInFlightFiles))
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > 60 {
		errs = append(errs, fmt.Errorf("%w: batch_size must be between 1 and 60, got %d", ErrInvalidConcurrency, cfg.BatchSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateWatcher(cfg *WatcherConfig) error {
	if cfg.DebounceMS < 0 {
		return fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.DebounceMS)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
