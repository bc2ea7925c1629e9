// Package config handles loading and managing audit configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for an audit run.
type Config struct {
	Fetch   FetchConfig   `yaml:"fetch"`
	Scoring ScoringConfig `yaml:"scoring"`
}

// FetchConfig controls page acquisition.
type FetchConfig struct {
	TimeoutSeconds       int    `yaml:"timeout"`        // whole static fetch, seconds
	RenderTimeoutSeconds int    `yaml:"render_timeout"` // headless render budget, seconds
	RenderingEnabled     bool   `yaml:"rendering"`      // attempt headless rendering when needed
	UserAgent            string `yaml:"user_agent"`
	ProbeAIUserAgent     bool   `yaml:"probe_ai_user_agent"`
}

// ScoringConfig carries the tunable scoring knobs. Weights are fixed by the
// check registry; only the tier 2 threshold is operator-adjustable.
type ScoringConfig struct {
	Tier2Threshold float64 `yaml:"tier2_threshold"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			TimeoutSeconds:       30,
			RenderTimeoutSeconds: 25,
			RenderingEnabled:     true,
			UserAgent:            "Mozilla/5.0 (compatible; AEOScope/1.0; +https://aeoscope.dev/bot)",
			ProbeAIUserAgent:     true,
		},
		Scoring: ScoringConfig{
			Tier2Threshold: 0.8,
		},
	}
}

// Timeout returns the static fetch budget as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// RenderTimeout returns the headless render budget as a duration.
func (f FetchConfig) RenderTimeout() time.Duration {
	return time.Duration(f.RenderTimeoutSeconds) * time.Second
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Scoring.Tier2Threshold <= 0 || cfg.Scoring.Tier2Threshold > 1 {
		return nil, fmt.Errorf("tier2_threshold %v must be in (0,1]", cfg.Scoring.Tier2Threshold)
	}

	return cfg, nil
}

// FindConfigFile looks for .aeoscope/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".aeoscope", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
