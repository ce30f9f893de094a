// File: internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type APIConfig struct {
	Account   string `yaml:"account"`
	APIID     string `yaml:"api_id"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"` // empty means production
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type SandboxConfig struct {
	Port      int               `yaml:"port"`
	Account   string            `yaml:"account"`
	APIID     string            `yaml:"api_id"`
	APISecret string            `yaml:"api_secret"`
	Balances  map[string]string `yaml:"balances"` // currency -> amount
	Users     []string          `yaml:"users"`    // accounts checkUser knows
}

type Config struct {
	API     APIConfig     `yaml:"api"`
	Log     LogConfig     `yaml:"log"`
	Sandbox SandboxConfig `yaml:"sandbox"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(configPath string, dev bool) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Sandbox.Port <= 0 {
		cfg.Sandbox.Port = 8880
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
