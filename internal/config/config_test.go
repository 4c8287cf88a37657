package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 53 {
		t.Errorf("Port = %d, want 53", cfg.Port)
	}
	if cfg.TimeoutSeconds != 10 {
		t.Errorf("TimeoutSeconds = %d, want 10", cfg.TimeoutSeconds)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.OutputDir != "./Reports" {
		t.Errorf("OutputDir = %q, want ./Reports", cfg.OutputDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err != nil {
		t.Errorf("Load() error = %v, want nil for a missing file", err)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dns-gather.yaml")
	content := `
server: 192.168.168.55
port: 5353
timeout_seconds: 25
workers: 2
output_dir: /tmp/reports
zones:
  - test.com
  - 1.168.192.in-addr.arpa
tsig:
  key_name: transfer-key
  secret: c2VjcmV0
  algorithm: hmac-sha512
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server != "192.168.168.55" {
		t.Errorf("Server = %q, want 192.168.168.55", cfg.Server)
	}
	if cfg.DiscoveryServer != "192.168.168.55" {
		t.Errorf("DiscoveryServer = %q, want fallback to Server", cfg.DiscoveryServer)
	}
	if cfg.Port != 5353 {
		t.Errorf("Port = %d, want 5353", cfg.Port)
	}
	if cfg.Timeout() != 25*time.Second {
		t.Errorf("Timeout() = %v, want 25s", cfg.Timeout())
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if len(cfg.Zones) != 2 || cfg.Zones[0] != "test.com" {
		t.Errorf("Zones = %v, want two configured zones", cfg.Zones)
	}
	if cfg.TSIG.KeyName != "transfer-key" || cfg.TSIG.Algorithm != "hmac-sha512" {
		t.Errorf("TSIG = %+v, want transfer-key/hmac-sha512", cfg.TSIG)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DNS_GATHER_SERVER", "10.1.1.1")
	t.Setenv("DNS_GATHER_PORT", "1053")
	t.Setenv("DNS_GATHER_WORKERS", "8")
	t.Setenv("DNS_GATHER_TSIG_KEYNAME", "env-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server != "10.1.1.1" {
		t.Errorf("Server = %q, want env override", cfg.Server)
	}
	if cfg.Port != 1053 {
		t.Errorf("Port = %d, want 1053", cfg.Port)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.TSIG.KeyName != "env-key" {
		t.Errorf("TSIG.KeyName = %q, want env-key", cfg.TSIG.KeyName)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing server", mutate: func(c *Config) { c.Server = "" }, wantErr: true},
		{name: "port too low", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.TimeoutSeconds = 0 }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:         "192.168.168.55",
				Port:           53,
				TimeoutSeconds: 10,
				Workers:        4,
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
