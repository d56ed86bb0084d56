package config

import (
	"fmt"

	"github.com/Klingon-tech/erdwallet/pkg/tx"
)

// Chain IDs of the public networks.
const (
	MainnetChainID = "1"
	TestnetChainID = "T"
	DevnetChainID  = "D"
)

// baseRules is the gas schedule shared by all public networks.
var baseRules = tx.NetworkConfig{
	GasPerDataByte:        1500,
	MinGasLimit:           50000,
	MinGasPrice:           1000000000,
	MinTransactionVersion: 1,
}

// NetworkRules returns the offline chain rules for a network. Use them when
// the proxy is unreachable; the proxy's network/config is authoritative.
func NetworkRules(network NetworkType) (tx.NetworkConfig, error) {
	rules := baseRules
	switch network {
	case Mainnet:
		rules.ChainID = MainnetChainID
	case Testnet:
		rules.ChainID = TestnetChainID
	case Devnet:
		rules.ChainID = DevnetChainID
	default:
		return tx.NetworkConfig{}, fmt.Errorf("unknown network %q", network)
	}
	return rules, nil
}

// ParseNetwork maps a network name to its NetworkType.
func ParseNetwork(s string) (NetworkType, error) {
	switch NetworkType(s) {
	case Mainnet, Testnet, Devnet:
		return NetworkType(s), nil
	}
	return "", fmt.Errorf("network must be %q, %q or %q", Mainnet, Testnet, Devnet)
}
