package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures required fields are present and sane.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.API.BaseURL == "" {
		return errors.New("api.baseURL is required")
	}
	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return fmt.Errorf("api.baseURL must be http(s), got %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds < 0 {
		return errors.New("api.timeoutSeconds must be >= 0")
	}
	if cfg.API.RestRate < 0 || cfg.API.RestBurst < 0 {
		return errors.New("api.restRate/restBurst must be >= 0")
	}
	if cfg.Poll.IntervalSeconds < 0 {
		return errors.New("poll.intervalSeconds must be >= 0")
	}
	if cfg.Stream.Enabled {
		if !strings.HasPrefix(cfg.Stream.Endpoint, "ws://") && !strings.HasPrefix(cfg.Stream.Endpoint, "wss://") {
			return fmt.Errorf("stream.endpoint must be ws(s), got %q", cfg.Stream.Endpoint)
		}
	}
	switch cfg.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", cfg.Log.Format)
	}
	return nil
}
