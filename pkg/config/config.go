// Package config provides configuration loading and structs for PeakMatch.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/PeakMatch/pkg/annotate"
	"github.com/ChrisMcGann/PeakMatch/pkg/fragment"
	"github.com/ChrisMcGann/PeakMatch/pkg/match"
	"github.com/ChrisMcGann/PeakMatch/pkg/proxi"
	"github.com/ChrisMcGann/PeakMatch/pkg/tolerance"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Tolerance ToleranceConfig `yaml:"tolerance"`
	Match     MatchConfig     `yaml:"match"`
	Annotate  AnnotateConfig  `yaml:"annotate"`
	Proxi     ProxiConfig     `yaml:"proxi"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ToleranceConfig holds the default tolerance window.
type ToleranceConfig struct {
	Unit string  `yaml:"unit"`
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// Window converts the configuration into a validated window.
func (t ToleranceConfig) Window() (tolerance.Window, error) {
	unit, err := tolerance.ParseUnit(t.Unit)
	if err != nil {
		return tolerance.Window{}, err
	}
	return tolerance.New(unit, t.Low, t.High)
}

// MatchConfig holds peak matching settings.
type MatchConfig struct {
	Strategy string `yaml:"strategy"`
	Workers  int    `yaml:"workers"`
	Strict   bool   `yaml:"strict"`
}

// Config converts the configuration into matcher settings.
func (m MatchConfig) Config() (match.Config, error) {
	strategy, err := match.ParseStrategy(m.Strategy)
	if err != nil {
		return match.Config{}, err
	}
	return match.Config{Strategy: strategy, Workers: m.Workers, Strict: m.Strict}, nil
}

// AnnotateConfig holds the default annotation policy.
type AnnotateConfig struct {
	Series  []string `yaml:"series"`
	Charges []int    `yaml:"charges"`
}

// Options converts the configuration into annotation options.
func (a AnnotateConfig) Options() ([]annotate.Option, error) {
	var opts []annotate.Option
	if len(a.Series) > 0 {
		series := make([]fragment.Series, 0, len(a.Series))
		for _, label := range a.Series {
			s, err := fragment.ParseSeries(label)
			if err != nil {
				return nil, err
			}
			series = append(series, s)
		}
		opts = append(opts, annotate.WithSeries(series...))
	}
	if len(a.Charges) > 0 {
		opts = append(opts, annotate.WithCharges(a.Charges...))
	}
	return opts, nil
}

// ProxiConfig holds PROXI retrieval settings.
type ProxiConfig struct {
	Sources []string      `yaml:"sources"`
	Timeout time.Duration `yaml:"timeout"`
}

// ClientOptions converts the configuration into PROXI client options.
func (p ProxiConfig) ClientOptions() ([]proxi.Option, error) {
	opts := []proxi.Option{proxi.WithTimeout(p.Timeout)}
	if len(p.Sources) > 0 {
		sources, err := proxi.ParseSources(p.Sources)
		if err != nil {
			return nil, err
		}
		opts = append(opts, proxi.WithSources(sources...))
	}
	return opts, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the config file at path and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks that every section converts cleanly.
func (c *Config) Validate() error {
	if _, err := c.Tolerance.Window(); err != nil {
		return fmt.Errorf("tolerance: %w", err)
	}
	if _, err := c.Match.Config(); err != nil {
		return fmt.Errorf("match: %w", err)
	}
	if c.Match.Workers < 0 {
		return fmt.Errorf("match: workers must not be negative, got %d", c.Match.Workers)
	}
	if _, err := c.Annotate.Options(); err != nil {
		return fmt.Errorf("annotate: %w", err)
	}
	if _, err := c.Proxi.ClientOptions(); err != nil {
		return fmt.Errorf("proxi: %w", err)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	return nil
}
