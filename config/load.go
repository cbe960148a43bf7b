package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds the terminal's runtime configuration.
type AppConfig struct {
	Env     string        `yaml:"env"`
	API     APIConfig     `yaml:"api"`
	Poll    PollConfig    `yaml:"poll"`
	Stream  StreamConfig  `yaml:"stream"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

type APIConfig struct {
	BaseURL        string  `yaml:"baseURL"`
	Token          string  `yaml:"token"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
	RestRate       float64 `yaml:"restRate"`  // REST rate limit: tokens per second
	RestBurst      int     `yaml:"restBurst"` // REST rate limit: max burst
}

type PollConfig struct {
	IntervalSeconds int `yaml:"intervalSeconds"`
}

type StreamConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the metrics server
}

type LogConfig struct {
	Level   string   `yaml:"level"`  // debug, info, warn, error
	Format  string   `yaml:"format"` // json or console
	Outputs []string `yaml:"outputs"`
}

// PollInterval returns the configured poll cadence, defaulting to 3s.
func (c AppConfig) PollInterval() time.Duration {
	if c.Poll.IntervalSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// RequestTimeout returns the REST timeout, defaulting to 10s.
func (c AppConfig) RequestTimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides sensitive fields from env
// vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("QE_API_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv("QE_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	return cfg, Validate(cfg)
}
