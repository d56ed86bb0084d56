package config

import "time"

// DefaultProxyTimeout bounds each gateway request.
const DefaultProxyTimeout = 10 * time.Second

// DefaultProxyRateLimit is the request rate allowed per second.
const DefaultProxyRateLimit = 10

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Proxy: ProxyConfig{
			URL:       "https://gateway.elrond.com",
			Timeout:   DefaultProxyTimeout,
			RateLimit: DefaultProxyRateLimit,
		},
		Log: LogConfig{
			Level: "warn",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Proxy.URL = "https://testnet-gateway.elrond.com"
	return cfg
}

// DefaultDevnet returns the default configuration for devnet.
func DefaultDevnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Devnet
	cfg.Proxy.URL = "https://devnet-gateway.elrond.com"
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	case Devnet:
		return DefaultDevnet()
	default:
		return DefaultMainnet()
	}
}
