package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if _, err := ParseNetwork(string(cfg.Network)); err != nil {
		return err
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir is empty")
	}

	u, err := url.Parse(cfg.Proxy.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("proxy.url must be an http(s) URL, got %q", cfg.Proxy.URL)
	}
	if cfg.Proxy.Timeout <= 0 {
		return fmt.Errorf("proxy.timeout must be positive")
	}
	if cfg.Proxy.RateLimit < 0 {
		return fmt.Errorf("proxy.ratelimit must not be negative")
	}

	if cfg.Log.Level != "" && !validLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q is not one of trace, debug, info, warn, error", cfg.Log.Level)
	}
	return nil
}

func validLevel(level string) bool {
	switch strings.ToLower(level) {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}
