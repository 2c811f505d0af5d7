package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable rekap reads.
const EnvPrefix = "REKAP_"

// sections are the nested config groups. An env var or flag starting with
// one of them addresses a key inside it: REKAP_LOG_LEVEL → log.level.
var sections = []string{"log", "server", "status", "limits"}

// Loaded is a Config plus where it came from.
type Loaded struct {
	*Config
	// FileUsed is the config file that was read, empty when none was.
	FileUsed string
}

// Load builds the Config.
// Precedence (highest to lowest): flags > env vars > .env > config file > defaults
//
// cfgFile may be empty, in which case ./rekap.yaml is read when present.
// Only flags that were explicitly set are applied.
func Load(cfgFile string, flags *pflag.FlagSet) (*Loaded, error) {
	k := koanf.New(".")

	// 1. Defaults
	d := Defaults()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"file":                 d.File,
		"sheet":                d.Sheet,
		"output":               d.Output,
		"verbose":              d.Verbose,
		"timezone":             d.Timezone,
		"log.level":            d.Log.Level,
		"log.format":           d.Log.Format,
		"server.addr":          d.Server.Addr,
		"status.not_converted": d.Status.NotConverted,
		"limits.pairs":         d.Limits.Pairs,
		"limits.volume":        d.Limits.Volume,
		"limits.conversion":    d.Limits.Conversion,
		"limits.insights":      d.Limits.Insights,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used, err := findConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. .env fills in variables the environment does not already set
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading %s: %w", DefaultEnvFile, err)
	}

	// 4. Environment (REKAP_ prefix)
	// Transform: REKAP_LIMITS_PAIRS -> limits.pairs
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return configKey(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags. Only flags naming a known key apply, so command-local flags
	// such as query's --status never shadow a config section.
	if flags != nil {
		known := make(map[string]bool)
		for _, key := range k.Keys() {
			known[key] = true
		}
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			// --log-level -> log.level; serve's --addr -> server.addr
			key := configKey(f.Name, "-")
			if key == "addr" {
				key = "server.addr"
			}
			if !known[key] {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Loaded{Config: &cfg, FileUsed: used}, nil
}

// findConfigFile returns the explicit path, or rekap.yaml / rekap.yml in the
// working directory when present. An explicit path must exist.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, name := range []string{DefaultConfigFile, "rekap.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

// configKey maps a flat name separated by sep onto the dotted key space.
// The separator after a section name becomes "."; the rest become "_".
func configKey(name, sep string) string {
	for _, s := range sections {
		if rest, ok := strings.CutPrefix(name, s+sep); ok {
			return s + "." + strings.ReplaceAll(rest, sep, "_")
		}
	}
	return strings.ReplaceAll(name, sep, "_")
}
