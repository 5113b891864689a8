package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the environment variables read by Load. Double
// underscore separates nesting levels so single underscores survive in key
// names, e.g. RESILIENCE_RETRY__MAX_ATTEMPTS maps to retry.max_attempts.
const EnvPrefix = "RESILIENCE_"

// Load builds the configuration from three layers in ascending priority:
// built-in defaults, the optional YAML file at path (skipped when empty or
// missing), and RESILIENCE_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
		}
	}

	if err := k.Load(envprovider.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":    "go-resilience",
		"app.version": "v1.0.0",
		"app.env":     EnvDevelopment,

		"log.level":  "info",
		"log.pretty": false,

		"retry.max_attempts": 3,
		"retry.base_delay":   "1s",
		"retry.max_delay":    "30s",
		"retry.multiplier":   2.0,
		"retry.jitter":       true,
		"retry.retryable_kinds": []string{
			"network", "timeout", "rate-limit", "service-unavailable", "internal",
		},

		"monitoring.enabled":        false,
		"monitoring.endpoint":       "",
		"monitoring.api_key":        "",
		"monitoring.batch_size":     10,
		"monitoring.flush_interval": "30s",
		"monitoring.timeout":        "5s",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
