// Package config loads the scenario file the CLIs run: which built-in
// scenario preset to run, its random seed, and how many ticks to cap
// it at.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is a scenario run's configuration.
type Config struct {
	// Scenario names a preset registered in pkg/scenario.
	Scenario string `yaml:"scenario"`

	// Seed drives the conflict analyser's random-tags sampling and the
	// sequential pass's shuffle order. Zero means "pick 1".
	Seed int64 `yaml:"seed"`

	// MaxTicks is a tick cap for the run. Validate rejects a negative
	// value; nothing else reads it, so neither CLI stops a run after a
	// number of ticks (a run ends on Pause, Stop, an error, or the
	// timeout).
	MaxTicks int `yaml:"max_ticks"`

	// TickTimeout bounds how long a single run may block overall.
	// Empty means no timeout.
	TickTimeout string `yaml:"tick_timeout,omitempty"`

	// LogLevel is one of "info" or "error".
	LogLevel string `yaml:"log_level"`

	// Params carries scenario-specific integer knobs (channel capacity,
	// object counts, ...) — each preset documents the keys it reads.
	Params map[string]int `yaml:"params,omitempty"`
}

// Load reads and parses a scenario configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the configuration is well-formed. It deliberately
// doesn't know the scenario registry — pkg/scenario depends on this
// package, not the reverse — so an unknown scenario name surfaces from
// the CLI's lookup instead of from here.
func (c *Config) Validate() error {
	if c.Scenario == "" {
		return fmt.Errorf("scenario is required")
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("max_ticks must not be negative")
	}
	switch c.LogLevel {
	case "info", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	if c.TickTimeout != "" {
		if _, err := time.ParseDuration(c.TickTimeout); err != nil {
			return fmt.Errorf("invalid tick_timeout: %w", err)
		}
	}
	return nil
}

// Timeout parses TickTimeout, returning 0 (no timeout) if unset.
func (c *Config) Timeout() time.Duration {
	if c.TickTimeout == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.TickTimeout)
	return d
}
