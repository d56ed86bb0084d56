package tx

import (
	"errors"
	"math"
	"math/big"
	"testing"
)

func TestComputeGasLimit(t *testing.T) {
	cfg := NetworkConfig{MinGasLimit: 50000, GasPerDataByte: 1500}
	tests := []struct {
		name string
		data []byte
		want uint64
	}{
		{"no data", nil, 50000},
		{"empty data", []byte{}, 50000},
		{"foobar", []byte("foobar"), 59000},
		{"for the book", []byte("for the book"), 68000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeGasLimit(cfg, tt.data)
			if err != nil {
				t.Fatalf("ComputeGasLimit() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ComputeGasLimit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeGasLimit_Overflow(t *testing.T) {
	tests := []struct {
		name string
		cfg  NetworkConfig
		data []byte
	}{
		{"product", NetworkConfig{MinGasLimit: 50000, GasPerDataByte: math.MaxUint64 / 2}, []byte("abc")},
		{"sum", NetworkConfig{MinGasLimit: math.MaxUint64 - 10, GasPerDataByte: 1500}, []byte("a")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeGasLimit(tt.cfg, tt.data)
			if !errors.Is(err, ErrInvalidTransaction) || !errors.Is(err, ErrGasOverflow) {
				t.Errorf("error = %v, want InvalidTransaction wrapping ErrGasOverflow", err)
			}
		})
	}

	// Validate must not accept a small gas limit under an overflowing rule.
	tx := Transaction{
		Value:    big.NewInt(1),
		Receiver: mustAddr(t, bobBech32),
		Sender:   mustAddr(t, aliceBech32),
		GasLimit: 50000,
		Data:     []byte("abc"),
		ChainID:  "1",
	}
	cfg := NetworkConfig{ChainID: "1", MinGasLimit: 50000, GasPerDataByte: math.MaxUint64 / 2}
	if err := tx.Validate(cfg); !errors.Is(err, ErrGasOverflow) {
		t.Errorf("Validate() error = %v, want ErrGasOverflow", err)
	}
	if _, err := NewBuilder(cfg).WithSender(tx.Sender).WithReceiver(tx.Receiver).WithData(tx.Data).Build(); !errors.Is(err, ErrGasOverflow) {
		t.Errorf("Build() error = %v, want ErrGasOverflow", err)
	}
}

func TestMaxFee(t *testing.T) {
	fee := MaxFee(Transaction{GasPrice: 1000000000, GasLimit: 50000})
	if fee.Cmp(big.NewInt(50000000000000)) != 0 {
		t.Errorf("MaxFee() = %s, want 50000000000000", fee)
	}

	// Product exceeds uint64.
	fee = MaxFee(Transaction{GasPrice: 1 << 40, GasLimit: 1 << 40})
	want := new(big.Int).Lsh(big.NewInt(1), 80)
	if fee.Cmp(want) != 0 {
		t.Errorf("MaxFee() = %s, want %s", fee, want)
	}
}
