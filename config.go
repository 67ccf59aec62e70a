package moreremesas

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the file form of the client settings.
//
// Example:
//
//	host: https://www.moresistemas.com:7002
//	username: ${MOREREMESAS_USER}
//	password: ${MOREREMESAS_PASSWORD}
//	basePath: /HmgChile16
//	timeout: 30s
//	retry:
//	  maxAttempts: 4
//	  backoff: 500ms
//	  maxBackoff: 10s
//	token:
//	  safetyMargin: 60s
//	  rejectedCodes: ["401"]
type Config struct {
	Host     string        `yaml:"host"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	BasePath string        `yaml:"basePath"`
	Timeout  time.Duration `yaml:"timeout"`
	Debug    bool          `yaml:"debug"`

	Retry RetryConfig `yaml:"retry"`
	Token TokenConfig `yaml:"token"`
}

// RetryConfig holds the transport retry policy
type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	Backoff     time.Duration `yaml:"backoff"`
	MaxBackoff  time.Duration `yaml:"maxBackoff"`
}

// TokenConfig holds access token settings
type TokenConfig struct {
	SafetyMargin  time.Duration `yaml:"safetyMargin"`
	RejectedCodes []string      `yaml:"rejectedCodes"`
}

// LoadConfig reads configuration from a YAML file. ${VAR} references are
// expanded from the environment before parsing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses and validates YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	var chk checker
	chk.require("host", c.Host)
	chk.require("username", c.Username)
	chk.require("password", c.Password)
	chk.expect("timeout", c.Timeout >= 0)
	chk.expect("retry.maxAttempts", c.Retry.MaxAttempts >= 0)
	chk.expect("retry.backoff", c.Retry.Backoff >= 0)
	chk.expect("retry.maxBackoff", c.Retry.MaxBackoff >= 0)
	chk.expect("token.safetyMargin", c.Token.SafetyMargin >= 0)
	return chk.err("config")
}

// Options converts the file settings to client Options. Zero values take the client defaults.
func (c *Config) Options() Options {
	return Options{
		Username:           c.Username,
		Password:           c.Password,
		BasePath:           c.BasePath,
		Timeout:            c.Timeout,
		MaxAttempts:        c.Retry.MaxAttempts,
		Backoff:            c.Retry.Backoff,
		MaxBackoff:         c.Retry.MaxBackoff,
		TokenSafetyMargin:  c.Token.SafetyMargin,
		TokenRejectedCodes: c.Token.RejectedCodes,
		Debug:              c.Debug,
	}
}
