// Package config loads and validates process configuration for the
// resilience components from defaults, an optional YAML file, and environment
// variables, in ascending priority.
package config

import (
	"time"

	"github.com/gaborage/go-resilience/fault"
	"github.com/gaborage/go-resilience/monitoring"
	"github.com/gaborage/go-resilience/retry"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

type Config struct {
	App        AppConfig        `koanf:"app"`
	Log        LogConfig        `koanf:"log"`
	Retry      RetryConfig      `koanf:"retry"`
	Monitoring MonitoringConfig `koanf:"monitoring"`
}

type AppConfig struct {
	Name    string `koanf:"name" validate:"required"`
	Version string `koanf:"version" validate:"required"`
	Env     string `koanf:"env" validate:"oneof=development staging production"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Pretty bool   `koanf:"pretty"`
}

type RetryConfig struct {
	MaxAttempts    int           `koanf:"max_attempts" validate:"min=1"`
	BaseDelay      time.Duration `koanf:"base_delay" validate:"gt=0"`
	MaxDelay       time.Duration `koanf:"max_delay" validate:"gtefield=BaseDelay"`
	Multiplier     float64       `koanf:"multiplier" validate:"gt=1"`
	Jitter         bool          `koanf:"jitter"`
	RetryableKinds []string      `koanf:"retryable_kinds"`
}

type MonitoringConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Endpoint      string        `koanf:"endpoint" validate:"required_if=Enabled true,omitempty,url"`
	APIKey        string        `koanf:"api_key"`
	BatchSize     int           `koanf:"batch_size" validate:"min=1"`
	FlushInterval time.Duration `koanf:"flush_interval" validate:"gt=0"`
	Timeout       time.Duration `koanf:"timeout" validate:"gt=0"`
}

// RetryPolicy converts the configured retry section into a retry.Policy.
func (c *Config) RetryPolicy() retry.Policy {
	kinds := make([]fault.Kind, 0, len(c.Retry.RetryableKinds))
	for _, k := range c.Retry.RetryableKinds {
		kinds = append(kinds, fault.Kind(k))
	}
	if len(kinds) == 0 {
		kinds = retry.Default().RetryableKinds
	}
	return retry.Policy{
		MaxAttempts:    c.Retry.MaxAttempts,
		BaseDelay:      c.Retry.BaseDelay,
		MaxDelay:       c.Retry.MaxDelay,
		Multiplier:     c.Retry.Multiplier,
		Jitter:         c.Retry.Jitter,
		RetryableKinds: kinds,
	}
}

// SinkConfig converts the configured monitoring section into a
// monitoring.Config carrying the app's routing tags.
func (c *Config) SinkConfig() monitoring.Config {
	return monitoring.Config{
		Endpoint:      c.Monitoring.Endpoint,
		APIKey:        c.Monitoring.APIKey,
		ServiceName:   c.App.Name,
		Environment:   c.App.Env,
		Version:       c.App.Version,
		BatchSize:     c.Monitoring.BatchSize,
		FlushInterval: c.Monitoring.FlushInterval,
		Timeout:       c.Monitoring.Timeout,
	}
}

// IsProduction reports whether the app is configured for production.
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}
