package engine

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Normalize() and Execute()
// ============================================================================

// DefaultNotConvertedMarker is the status text of an RFQ that did not become
// an order ("did not become a purchase order").
const DefaultNotConvertedMarker = "TIDAK JADI OC"

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Logger             *slog.Logger
	Location           *time.Location // zone for parsed calendar dates
	NotConvertedMarker string         // upper-cased status meaning "not converted"
}

// WithLogger routes engine logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithLocation sets the zone calendar dates and date serials are read in.
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		if loc != nil {
			c.Location = loc
		}
	}
}

// WithNotConvertedMarker replaces DefaultNotConvertedMarker.
func WithNotConvertedMarker(marker string) Option {
	return func(c *config) {
		if m := normalizeStatus(marker); m != "" {
			c.NotConvertedMarker = m
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		Location:           time.UTC,
		NotConvertedMarker: DefaultNotConvertedMarker,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func normalizeStatus(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
