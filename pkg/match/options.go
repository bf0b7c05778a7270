package match

import (
	"fmt"
	"strings"
)

// Strategy selects how conflicting candidates are pruned.
type Strategy string

const (
	// StrategySinglePass drops the lighter candidate of every conflicting pair in one pass
	// over the candidate snapshot.
	StrategySinglePass Strategy = "single-pass"

	// StrategyGreedy accepts candidates heaviest first and never reuses a peak.
	StrategyGreedy Strategy = "greedy"
)

// ParseStrategy parses a strategy name. The empty string selects StrategySinglePass.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategySinglePass:
		return StrategySinglePass, nil
	case StrategyGreedy:
		return StrategyGreedy, nil
	default:
		return "", fmt.Errorf("unknown match strategy %q (want %s or %s)", s, StrategySinglePass, StrategyGreedy)
	}
}

// Config holds matcher settings.
type Config struct {
	Strategy Strategy
	Workers  int  // goroutines for the candidate scans; <= 1 scans sequentially
	Strict   bool // fail instead of ranking NaN intensities lowest
}

// DefaultConfig returns the default matcher configuration.
func DefaultConfig() Config {
	return Config{
		Strategy: StrategySinglePass,
		Workers:  1,
	}
}

// Option modifies a Config.
type Option func(*Config)

// WithStrategy sets the conflict resolution strategy.
func WithStrategy(s Strategy) Option {
	return func(c *Config) { c.Strategy = s }
}

// WithWorkers sets the number of goroutines used for the candidate scans.
func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

// WithStrict makes NaN intensities an error.
func WithStrict(strict bool) Option {
	return func(c *Config) { c.Strict = strict }
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

func newConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c Config) validate() error {
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
