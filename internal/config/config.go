package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
)

// Config holds all CLI configuration
type Config struct {
	Server  string
	Key     string
	Secret  string
	Token   string
	Timeout time.Duration
	Log     LogConfig
}

type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	timeout, err := time.ParseDuration(getEnv("NIMBUS_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NIMBUS_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server:  serverForRegion(getEnv("NIMBUS_REGION", "us")),
		Key:     os.Getenv("NIMBUS_KEY"),
		Secret:  os.Getenv("NIMBUS_SECRET"),
		Token:   os.Getenv("NIMBUS_TOKEN"),
		Timeout: timeout,
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	// An explicit host wins over the region shorthand
	if server := os.Getenv("NIMBUS_SERVER"); server != "" {
		cfg.Server = server
	}

	return cfg, nil
}

// fileConfig mirrors the YAML configuration file shape
type fileConfig struct {
	Server   string `yaml:"server"`
	Region   string `yaml:"region"`
	Key      string `yaml:"key"`
	Secret   string `yaml:"secret"`
	Token    string `yaml:"token"`
	Timeout  string `yaml:"timeout"`
	LogLevel string `yaml:"log_level"`
}

// LoadFile overlays values from a YAML file onto cfg
func LoadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if file.Region != "" {
		cfg.Server = serverForRegion(file.Region)
	}
	if file.Server != "" {
		cfg.Server = file.Server
	}
	if file.Key != "" {
		cfg.Key = file.Key
	}
	if file.Secret != "" {
		cfg.Secret = file.Secret
	}
	if file.Token != "" {
		cfg.Token = file.Token
	}
	if file.Timeout != "" {
		timeout, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in config file: %w", err)
		}
		cfg.Timeout = timeout
	}
	if file.LogLevel != "" {
		cfg.Log.Level = file.LogLevel
	}
	return nil
}

// serverForRegion maps a region shorthand to its API host
func serverForRegion(region string) string {
	if strings.EqualFold(region, "eu") {
		return nimbus.ServerEU
	}
	return nimbus.ServerUS
}

// getEnv gets an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
