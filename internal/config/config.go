package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TSIG holds the optional transfer authentication key. The secret is the
// base64-encoded shared key; signing itself is handled by the DNS library.
type TSIG struct {
	KeyName   string `yaml:"key_name"`
	Secret    string `yaml:"secret"`
	Algorithm string `yaml:"algorithm"`
}

// Config holds the application configuration.
type Config struct {
	// DNS server configuration
	Server          string `yaml:"server"`
	DiscoveryServer string `yaml:"discovery_server"`
	Port            int    `yaml:"port"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	TSIG            TSIG   `yaml:"tsig"`

	// Zone selection: explicit list, or empty to enumerate from the server
	Zones []string `yaml:"zones"`

	// Gather configuration
	Workers   int    `yaml:"workers"`
	OutputDir string `yaml:"output_dir"`

	// Observability
	LogLevel    string `yaml:"log_level"`
	MetricsPort int    `yaml:"metrics_port"`
}

// Load reads configuration from an optional YAML file and applies
// environment variable overrides. A missing file is not an error; defaults
// plus environment are enough to run. Callers validate after applying any
// overrides of their own.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:           53,
		TimeoutSeconds: 10,
		Workers:        4,
		OutputDir:      "./Reports",
		LogLevel:       "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.DiscoveryServer == "" {
		cfg.DiscoveryServer = cfg.Server
	}

	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run
// without.
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server address is required (config 'server' or DNS_GATHER_SERVER)")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// Timeout returns the transfer timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func applyEnv(cfg *Config) {
	cfg.Server = getEnvOrDefault("DNS_GATHER_SERVER", cfg.Server)
	cfg.DiscoveryServer = getEnvOrDefault("DNS_GATHER_DISCOVERY_SERVER", cfg.DiscoveryServer)
	cfg.Port = parseInt(os.Getenv("DNS_GATHER_PORT"), cfg.Port)
	cfg.TimeoutSeconds = parseInt(os.Getenv("DNS_GATHER_TIMEOUT"), cfg.TimeoutSeconds)
	cfg.Workers = parseInt(os.Getenv("DNS_GATHER_WORKERS"), cfg.Workers)
	cfg.OutputDir = getEnvOrDefault("DNS_GATHER_OUTPUT_DIR", cfg.OutputDir)
	cfg.LogLevel = getEnvOrDefault("DNS_GATHER_LOG_LEVEL", cfg.LogLevel)
	cfg.MetricsPort = parseInt(os.Getenv("DNS_GATHER_METRICS_PORT"), cfg.MetricsPort)
	cfg.TSIG.KeyName = getEnvOrDefault("DNS_GATHER_TSIG_KEYNAME", cfg.TSIG.KeyName)
	cfg.TSIG.Secret = getEnvOrDefault("DNS_GATHER_TSIG_SECRET", cfg.TSIG.Secret)
	cfg.TSIG.Algorithm = getEnvOrDefault("DNS_GATHER_TSIG_ALGORITHM", cfg.TSIG.Algorithm)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	var result int
	fmt.Sscanf(value, "%d", &result)
	if result == 0 {
		return defaultValue
	}
	return result
}
