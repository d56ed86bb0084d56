package tx

import (
	"errors"
	"math/big"
	"testing"

	"github.com/Klingon-tech/erdwallet/pkg/types"
)

func testNetwork() NetworkConfig {
	return NetworkConfig{
		ChainID:               "1",
		GasPerDataByte:        1500,
		MinGasLimit:           50000,
		MinGasPrice:           1000000000,
		MinTransactionVersion: 1,
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := baseTx(t).Validate(testNetwork()); err != nil {
		t.Errorf("valid tx should pass: %v", err)
	}
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Transaction, *NetworkConfig)
		want   error
	}{
		{"missing sender", func(tx *Transaction, _ *NetworkConfig) { tx.Sender = types.Address{} }, ErrMissingSender},
		{"missing receiver", func(tx *Transaction, _ *NetworkConfig) { tx.Receiver = types.Address{} }, ErrMissingReceiver},
		{"negative value", func(tx *Transaction, _ *NetworkConfig) { tx.Value = big.NewInt(-5) }, ErrNegativeValue},
		{"chain mismatch", func(tx *Transaction, _ *NetworkConfig) { tx.ChainID = "T" }, ErrChainIDMismatch},
		{"gas price", func(tx *Transaction, _ *NetworkConfig) { tx.GasPrice = 999999999 }, ErrGasPriceTooLow},
		{"gas limit", func(tx *Transaction, _ *NetworkConfig) { tx.GasLimit = 49999 }, ErrGasLimitTooLow},
		{"gas limit with data", func(tx *Transaction, _ *NetworkConfig) { tx.Data = []byte("foobar") }, ErrGasLimitTooLow},
		{"version", func(_ *Transaction, cfg *NetworkConfig) { cfg.MinTransactionVersion = 2 }, ErrVersionTooLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := baseTx(t)
			cfg := testNetwork()
			tt.mutate(&tx, &cfg)

			err := tx.Validate(cfg)
			if !errors.Is(err, ErrInvalidTransaction) {
				t.Errorf("Validate() error = %v, want ErrInvalidTransaction", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidate_EmptyChainIDAcceptsAny(t *testing.T) {
	cfg := testNetwork()
	cfg.ChainID = ""
	tx := baseTx(t)
	tx.ChainID = "local-testnet"
	if err := tx.Validate(cfg); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestValidate_NilValue(t *testing.T) {
	tx := baseTx(t)
	tx.Value = nil
	if err := tx.Validate(testNetwork()); err != nil {
		t.Errorf("nil value should be treated as zero: %v", err)
	}
}
