package config

import (
	"github.com/ChrisMcGann/PeakMatch/pkg/match"
	"github.com/ChrisMcGann/PeakMatch/pkg/proxi"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.AllowedOrigins == nil {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	// ±10 ppm when no window is configured
	if cfg.Tolerance.Unit == "" {
		cfg.Tolerance.Unit = "ppm"
		if cfg.Tolerance.Low == 0 && cfg.Tolerance.High == 0 {
			cfg.Tolerance.Low = -10
			cfg.Tolerance.High = 10
		}
	}
	if cfg.Match.Strategy == "" {
		cfg.Match.Strategy = string(match.StrategySinglePass)
	}
	if cfg.Match.Workers == 0 {
		cfg.Match.Workers = 1
	}
	if cfg.Annotate.Series == nil {
		cfg.Annotate.Series = []string{"b", "y"}
	}
	if cfg.Annotate.Charges == nil {
		cfg.Annotate.Charges = []int{1, 2, 3, 4}
	}
	if cfg.Proxi.Timeout == 0 {
		cfg.Proxi.Timeout = proxi.DefaultTimeout
	}
}
