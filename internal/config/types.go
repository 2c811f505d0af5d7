// Package config loads rekap settings from defaults, rekap.yaml, .env, the
// environment and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone names resolve on hosts without zoneinfo

	"github.com/spektr-org/rekap/engine"
)

// Default configuration values.
const (
	DefaultConfigFile = "rekap.yaml"
	DefaultEnvFile    = ".env"
	DefaultOutput     = "table"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultAddr       = ":8080"
	DefaultTimezone   = "UTC"

	DefaultPairsLimit      = 15
	DefaultVolumeLimit     = 20
	DefaultConversionLimit = 20
	DefaultInsightsLimit   = 10
)

// Output formats accepted by --output.
var OutputFormats = []string{"table", "json", "csv", "markdown"}

// Config holds every rekap setting.
type Config struct {
	File     string       `koanf:"file"`
	Sheet    string       `koanf:"sheet"`
	Output   string       `koanf:"output"`
	Verbose  bool         `koanf:"verbose"`
	Timezone string       `koanf:"timezone"`
	Log      LogConfig    `koanf:"log"`
	Server   ServerConfig `koanf:"server"`
	Status   StatusConfig `koanf:"status"`
	Limits   LimitsConfig `koanf:"limits"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text, json
}

// ServerConfig configures `rekap serve`.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// StatusConfig configures status interpretation.
type StatusConfig struct {
	// NotConverted is the status text meaning the RFQ did not become an order.
	NotConverted string `koanf:"not_converted"`
}

// LimitsConfig holds the default row caps of each view.
type LimitsConfig struct {
	Pairs      int `koanf:"pairs"`
	Volume     int `koanf:"volume"`
	Conversion int `koanf:"conversion"`
	Insights   int `koanf:"insights"`
}

// Defaults returns a Config with every default applied.
func Defaults() *Config {
	return &Config{
		File:     "RECAP PENAWARAN 2025.csv",
		Output:   DefaultOutput,
		Timezone: DefaultTimezone,
		Log:      LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Server:   ServerConfig{Addr: DefaultAddr},
		Status:   StatusConfig{NotConverted: engine.DefaultNotConvertedMarker},
		Limits: LimitsConfig{
			Pairs:      DefaultPairsLimit,
			Volume:     DefaultVolumeLimit,
			Conversion: DefaultConversionLimit,
			Insights:   DefaultInsightsLimit,
		},
	}
}

// Validate checks values the loader cannot type-check.
func (c *Config) Validate() error {
	if !contains(OutputFormats, c.Output) {
		return fmt.Errorf("invalid output format %q (want one of %s)", c.Output, strings.Join(OutputFormats, ", "))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("invalid log format %q (want text or json)", c.Log.Format)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	for name, v := range map[string]int{
		"limits.pairs":      c.Limits.Pairs,
		"limits.volume":     c.Limits.Volume,
		"limits.conversion": c.Limits.Conversion,
		"limits.insights":   c.Limits.Insights,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	return nil
}

// Location resolves Timezone. Empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// EngineOptions translates the settings that shape normalization.
func (c *Config) EngineOptions() []engine.Option {
	opts := []engine.Option{engine.WithNotConvertedMarker(c.Status.NotConverted)}
	if loc, err := c.Location(); err == nil {
		opts = append(opts, engine.WithLocation(loc))
	}
	return opts
}

// Limit returns the default row cap for an aggregate kind.
func (c *Config) Limit(kind engine.AggregateKind) int {
	switch kind {
	case engine.AggCustomerSalespersonCount, engine.AggCustomerSalespersonAmount:
		return c.Limits.Pairs
	case engine.AggCustomerVolume, engine.AggCustomerCount, engine.AggSalespersonCount:
		return c.Limits.Volume
	case engine.AggCustomerConversion:
		return c.Limits.Conversion
	default:
		return 0
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
