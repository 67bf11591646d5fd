package config

import (
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Environment variables override file values. Every key is prefixed with
// GHPOOL_, e.g. GHPOOL_TOKENS, GHPOOL_ROTATION_THRESHOLD.
const envPrefix = "GHPOOL_"

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.BaseURL, "BASE_URL")
	setString(&cfg.TokenFile, "TOKEN_FILE")
	setString(&cfg.LogFile, "LOG_FILE")
	setString(&cfg.ManagementKey, "MANAGEMENT_KEY")
	setString(&cfg.ManagementKeyHash, "MANAGEMENT_KEY_HASH")
	setString(&cfg.ProxyURL, "PROXY_URL")
	setString(&cfg.UsageStorage, "USAGE_STORAGE")
	setString(&cfg.UsageFile, "USAGE_FILE")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.RedisPrefix, "REDIS_PREFIX")

	setInt(&cfg.Port, "PORT")
	setInt(&cfg.RotationThreshold, "ROTATION_THRESHOLD")
	setInt(&cfg.MaxRetries, "MAX_RETRIES")
	setInt(&cfg.RedisDB, "REDIS_DB")
	setInt(&cfg.ThrottleRPS, "THROTTLE_RPS")
	setInt(&cfg.ThrottleBurst, "THROTTLE_BURST")
	setInt(&cfg.UsagePersistIntervalSec, "USAGE_PERSIST_INTERVAL_SEC")

	setBool(&cfg.Debug, "DEBUG")
	setBool(&cfg.ThrottleEnabled, "THROTTLE_ENABLED")

	// Comma-separated token list replaces the file value entirely.
	if raw, ok := lookup("TOKENS"); ok {
		var tokens []string
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tokens = append(tokens, t)
			}
		}
		cfg.Tokens = tokens
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Warnf("ignoring %s%s=%q: not an integer", envPrefix, key, v)
			return
		}
		*dst = n
	}
}

func setBool(dst *bool, key string) {
	if v, ok := lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Warnf("ignoring %s%s=%q: not a boolean", envPrefix, key, v)
			return
		}
		*dst = b
	}
}
