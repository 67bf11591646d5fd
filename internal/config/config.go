package config

import (
	"fmt"
	"strings"

	"ghpool-go/internal/constants"
)

// Config is the resolved runtime configuration: file values with defaults
// filled in and environment overrides applied.
type Config struct {
	// Server settings
	Port    int    `yaml:"port" json:"port"`
	Debug   bool   `yaml:"debug" json:"debug"`
	LogFile string `yaml:"log_file" json:"log_file"`

	// Pool settings
	BaseURL           string            `yaml:"base_url" json:"base_url"`
	Tokens            []string          `yaml:"tokens" json:"tokens"`
	TokenFile         string            `yaml:"token_file" json:"token_file"`
	RotationThreshold int               `yaml:"rotation_threshold" json:"rotation_threshold"`
	MaxRetries        int               `yaml:"max_retries" json:"max_retries"`
	DefaultHeaders    map[string]string `yaml:"default_headers" json:"default_headers"`

	// Management auth
	ManagementKey     string `yaml:"management_key" json:"management_key"`
	ManagementKeyHash string `yaml:"management_key_hash" json:"management_key_hash"`

	// Transport settings
	ProxyURL                 string `yaml:"proxy_url" json:"proxy_url"`
	DialTimeoutSec           int    `yaml:"dial_timeout_sec" json:"dial_timeout_sec"`
	TLSHandshakeTimeoutSec   int    `yaml:"tls_handshake_timeout_sec" json:"tls_handshake_timeout_sec"`
	ResponseHeaderTimeoutSec int    `yaml:"response_header_timeout_sec" json:"response_header_timeout_sec"`
	ExpectContinueTimeoutSec int    `yaml:"expect_continue_timeout_sec" json:"expect_continue_timeout_sec"`

	// Local throttle applied before each attempt
	ThrottleEnabled bool `yaml:"throttle_enabled" json:"throttle_enabled"`
	ThrottleRPS     int  `yaml:"throttle_rps" json:"throttle_rps"`
	ThrottleBurst   int  `yaml:"throttle_burst" json:"throttle_burst"`

	// Usage persistence
	UsageStorage            string `yaml:"usage_storage" json:"usage_storage"` // none|file|redis
	UsageFile               string `yaml:"usage_file" json:"usage_file"`
	UsagePersistIntervalSec int    `yaml:"usage_persist_interval_sec" json:"usage_persist_interval_sec"`
	RedisAddr               string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword           string `yaml:"redis_password" json:"redis_password"`
	RedisDB                 int    `yaml:"redis_db" json:"redis_db"`
	RedisPrefix             string `yaml:"redis_prefix" json:"redis_prefix"`
}

// Default returns a config with every defaulted field populated.
func Default() *Config {
	return &Config{
		Port:              8080,
		BaseURL:           constants.DefaultBaseURL,
		RotationThreshold: constants.DefaultRotationThreshold,
		MaxRetries:        constants.DefaultMaxRetries,
		UsageStorage:      "none",
		UsageFile:         "usage.json",
		RedisPrefix:       "ghpool:",
	}
}

// applyDefaults fills zero values that have non-zero defaults.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Port == 0 {
		c.Port = def.Port
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = def.BaseURL
	}
	if c.RotationThreshold == 0 {
		c.RotationThreshold = def.RotationThreshold
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = def.MaxRetries
	}
	if strings.TrimSpace(c.UsageStorage) == "" {
		c.UsageStorage = def.UsageStorage
	}
	if strings.TrimSpace(c.UsageFile) == "" {
		c.UsageFile = def.UsageFile
	}
	if strings.TrimSpace(c.RedisPrefix) == "" {
		c.RedisPrefix = def.RedisPrefix
	}
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	if len(c.Tokens) == 0 && strings.TrimSpace(c.TokenFile) == "" {
		return fmt.Errorf("no tokens configured: set tokens or token_file")
	}
	if c.RotationThreshold < 0 {
		return fmt.Errorf("rotation_threshold must not be negative, got %d", c.RotationThreshold)
	}
	if c.RotationThreshold >= constants.ServiceQuotaCeiling {
		return fmt.Errorf("rotation_threshold %d must be below the service quota ceiling %d",
			c.RotationThreshold, constants.ServiceQuotaCeiling)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	switch c.UsageStorage {
	case "none", "file", "redis":
	default:
		return fmt.Errorf("unknown usage_storage %q (want none, file or redis)", c.UsageStorage)
	}
	if c.UsageStorage == "redis" && strings.TrimSpace(c.RedisAddr) == "" {
		return fmt.Errorf("usage_storage redis requires redis_addr")
	}
	if c.ThrottleEnabled && c.ThrottleRPS <= 0 {
		return fmt.Errorf("throttle_rps must be positive when throttle is enabled")
	}
	return nil
}
