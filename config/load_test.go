package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

const validConfig = `
env: dev
api:
  baseURL: https://api.test
  token: secret
  timeoutSeconds: 5
  restRate: 5
  restBurst: 10
poll:
  intervalSeconds: 3
stream:
  enabled: true
  endpoint: wss://api.test/ws/orders
metrics:
  addr: ":9100"
log:
  level: info
  format: json
`

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Env != "dev" || cfg.API.Token != "secret" {
		t.Fatalf("unexpected cfg values: %+v", cfg)
	}
	if cfg.PollInterval() != 3*time.Second {
		t.Fatalf("unexpected poll interval %v", cfg.PollInterval())
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Fatalf("unexpected request timeout %v", cfg.RequestTimeout())
	}
}

func TestDefaults(t *testing.T) {
	cfg := AppConfig{}
	if cfg.PollInterval() != 3*time.Second {
		t.Fatalf("poll interval default should be 3s, got %v", cfg.PollInterval())
	}
	if cfg.RequestTimeout() != 10*time.Second {
		t.Fatalf("request timeout default should be 10s, got %v", cfg.RequestTimeout())
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, validConfig)
	t.Setenv("QE_API_TOKEN", "from-env")
	t.Setenv("QE_BASE_URL", "https://override.test")
	cfg, err := LoadWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Token != "from-env" || cfg.API.BaseURL != "https://override.test" {
		t.Fatalf("env overrides not applied: %+v", cfg.API)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		cfg  AppConfig
	}{
		{"missing env", AppConfig{API: APIConfig{BaseURL: "https://x"}}},
		{"missing base url", AppConfig{Env: "dev"}},
		{"bad scheme", AppConfig{Env: "dev", API: APIConfig{BaseURL: "ftp://x"}}},
		{"negative poll", AppConfig{Env: "dev", API: APIConfig{BaseURL: "https://x"}, Poll: PollConfig{IntervalSeconds: -1}}},
		{"stream without ws endpoint", AppConfig{Env: "dev", API: APIConfig{BaseURL: "https://x"}, Stream: StreamConfig{Enabled: true, Endpoint: "https://x"}}},
		{"bad log format", AppConfig{Env: "dev", API: APIConfig{BaseURL: "https://x"}, Log: LogConfig{Format: "xml"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Validate(tc.cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
