package tx

// NetworkConfig holds the chain rules a transaction is built against. It is
// passed explicitly to the builder and validator; there is no package-level
// default. The JSON tags match the proxy's network/config response.
type NetworkConfig struct {
	ChainID               string `json:"erd_chain_id"`
	GasPerDataByte        uint64 `json:"erd_gas_per_data_byte"`
	MinGasLimit           uint64 `json:"erd_min_gas_limit"`
	MinGasPrice           uint64 `json:"erd_min_gas_price"`
	MinTransactionVersion uint32 `json:"erd_min_transaction_version"`
}
