package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"
)

// Version is the erdwallet-cli release.
const Version = "0.1.0"

// ErrHelp is returned by ParseFlags when -h or --help was given.
var ErrHelp = flag.ErrHelp

// Flags holds the global command-line flags that precede the subcommand.
type Flags struct {
	// Commands
	Version bool

	// Core
	Network string
	DataDir string
	Config  string

	// Proxy
	Proxy        string
	ProxyTimeout time.Duration
	ProxyRate    float64

	// Wallet
	Keystore string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args: the subcommand and its own flags.
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetLogJSON   bool
	SetProxyRate bool
}

// ParseFlags parses global flags from args (without the program name).
// Parsing stops at the first non-flag argument, the subcommand.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("erdwallet", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Commands
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network (mainnet, testnet or devnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// Proxy
	fs.StringVar(&f.Proxy, "proxy", "", "Proxy (gateway) URL")
	fs.DurationVar(&f.ProxyTimeout, "proxy-timeout", 0, "Proxy request timeout")
	fs.Float64Var(&f.ProxyRate, "proxy-rate", 0, "Proxy requests per second (0 = unlimited)")

	// Wallet
	fs.StringVar(&f.Keystore, "keystore", "", "Vault directory")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, ErrHelp
		}
		return nil, err
	}
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.SetProxyRate = isFlagSet(fs, "proxy-rate")
	f.Args = fs.Args()
	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(f.Network)
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Proxy
	if f.Proxy != "" {
		cfg.Proxy.URL = f.Proxy
	}
	if f.ProxyTimeout != 0 {
		cfg.Proxy.Timeout = f.ProxyTimeout
	}
	if f.SetProxyRate {
		cfg.Proxy.RateLimit = f.ProxyRate
	}

	// Wallet
	if f.Keystore != "" {
		cfg.Wallet.KeystoreDir = f.Keystore
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintGlobalUsage writes the global flag help to w.
func PrintGlobalUsage(w io.Writer) {
	fmt.Fprint(w, `Global flags:
  --network <net>        mainnet (default), testnet or devnet
  --datadir <path>       Data directory (default: ~/.erdwallet)
  --config, -c <path>    Config file (default: <datadir>/erdwallet.conf)
  --proxy <url>          Proxy URL (default depends on --network)
  --proxy-timeout <dur>  Proxy request timeout (default: 10s)
  --proxy-rate <n>       Proxy requests per second, 0 = unlimited (default: 10)
  --keystore <path>      Vault directory (default: <datadir>/<network>/keystore)
  --log-level <lvl>      trace, debug, info, warn (default), error
  --log-file <path>      Also write logs to this file
  --log-json             Log as JSON instead of console text
  --version              Show version information
`)
}

// Load builds the configuration with the following precedence:
// 1. Default values for the selected network
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Command-line flags
func Load(f *Flags) (*Config, error) {
	// Determine network first (needed for defaults).
	network := Mainnet
	if f.Network != "" {
		n, err := ParseNetwork(f.Network)
		if err != nil {
			return nil, err
		}
		network = n
	}

	cfg := Default(network)
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := f.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyFlags(cfg, f)

	// A network chosen by the file follows that network's gateway unless
	// the proxy URL was set explicitly.
	if cfg.Network != network && cfg.Proxy.URL == Default(network).Proxy.URL {
		cfg.Proxy.URL = Default(cfg.Network).Proxy.URL
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. It is safe to call on every start.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.NetworkDataDir(),
		cfg.LogsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}
