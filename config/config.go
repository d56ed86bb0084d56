// Package config handles erdwallet-cli configuration.
//
// Settings come from three layers, later ones winning:
//   - Per-network defaults
//   - The erdwallet.conf file in the data directory
//   - Command-line flags
//
// Chain rules (chain ID, gas schedule) are not configured here. They are a
// tx.NetworkConfig returned by NetworkRules or fetched from the proxy.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// NetworkType identifies which network the wallet talks to.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
	Devnet  NetworkType = "devnet"
)

// Config holds CLI runtime configuration.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	Proxy ProxyConfig

	Wallet WalletConfig

	Log LogConfig
}

// ProxyConfig holds the gateway connection settings.
type ProxyConfig struct {
	URL     string        `conf:"proxy.url"`
	Timeout time.Duration `conf:"proxy.timeout"`
	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64 `conf:"proxy.ratelimit"`
}

// WalletConfig holds key storage settings.
type WalletConfig struct {
	// KeystoreDir overrides <datadir>/<network>/keystore.
	KeystoreDir string `conf:"wallet.keystore"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.erdwallet
//	macOS:   ~/Library/Application Support/Erdwallet
//	Windows: %APPDATA%\Erdwallet
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".erdwallet"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Erdwallet")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Erdwallet")
		}
		return filepath.Join(home, "AppData", "Roaming", "Erdwallet")
	default:
		return filepath.Join(home, ".erdwallet")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// KeystoreDir returns the vault directory.
func (c *Config) KeystoreDir() string {
	if c.Wallet.KeystoreDir != "" {
		return c.Wallet.KeystoreDir
	}
	return filepath.Join(c.NetworkDataDir(), "keystore")
}

// OutboxDir returns the sent-transaction journal database directory.
func (c *Config) OutboxDir() string {
	return filepath.Join(c.NetworkDataDir(), "outbox")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "erdwallet.conf")
}
