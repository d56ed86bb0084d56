package tx

import (
	"math/big"
	"math/bits"
)

// ComputeGasLimit returns the minimum gas limit for a plain transfer carrying
// data: the network's base limit plus a fixed cost per data byte. A result
// that does not fit in uint64 is an InvalidTransaction error.
func ComputeGasLimit(cfg NetworkConfig, data []byte) (uint64, error) {
	hi, perData := bits.Mul64(cfg.GasPerDataByte, uint64(len(data)))
	if hi != 0 {
		return 0, invalid("%w: %d bytes at %d gas each", ErrGasOverflow, len(data), cfg.GasPerDataByte)
	}
	limit, carry := bits.Add64(cfg.MinGasLimit, perData, 0)
	if carry != 0 {
		return 0, invalid("%w: base %d plus %d for data", ErrGasOverflow, cfg.MinGasLimit, perData)
	}
	return limit, nil
}

// MaxFee returns gasLimit * gasPrice, the most the sender can be charged.
func MaxFee(t Transaction) *big.Int {
	fee := new(big.Int).SetUint64(t.GasLimit)
	return fee.Mul(fee, new(big.Int).SetUint64(t.GasPrice))
}
