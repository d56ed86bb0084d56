package tx

import (
	"math/big"

	"github.com/Klingon-tech/erdwallet/pkg/types"
)

// Builder assembles a Transaction against a NetworkConfig. It is a value:
// every With* method returns a new Builder and leaves the receiver as it
// was, so a partially filled builder can be reused as a template.
type Builder struct {
	cfg      NetworkConfig
	tx       Transaction
	gasPrice bool
	gasLimit bool
	chainID  bool
}

// NewBuilder starts a transaction for the given network rules.
func NewBuilder(cfg NetworkConfig) Builder {
	return Builder{cfg: cfg}
}

// WithNonce sets the sender's account nonce.
func (b Builder) WithNonce(nonce uint64) Builder {
	b.tx.Nonce = nonce
	return b
}

// WithValue sets the transferred amount. The value is copied.
func (b Builder) WithValue(v *big.Int) Builder {
	if v == nil {
		b.tx.Value = nil
	} else {
		b.tx.Value = new(big.Int).Set(v)
	}
	return b
}

// WithSender sets the sender address.
func (b Builder) WithSender(addr types.Address) Builder {
	b.tx.Sender = addr
	return b
}

// WithReceiver sets the receiver address.
func (b Builder) WithReceiver(addr types.Address) Builder {
	b.tx.Receiver = addr
	return b
}

// WithData sets the data payload. The bytes are copied.
func (b Builder) WithData(data []byte) Builder {
	if len(data) == 0 {
		b.tx.Data = nil
	} else {
		b.tx.Data = append([]byte(nil), data...)
	}
	return b
}

// WithGasPrice overrides the network minimum gas price.
func (b Builder) WithGasPrice(price uint64) Builder {
	b.tx.GasPrice = price
	b.gasPrice = true
	return b
}

// WithGasLimit overrides the computed gas limit.
func (b Builder) WithGasLimit(limit uint64) Builder {
	b.tx.GasLimit = limit
	b.gasLimit = true
	return b
}

// WithChainID overrides the network chain ID. Validate still requires it to
// match the config.
func (b Builder) WithChainID(chainID string) Builder {
	b.tx.ChainID = chainID
	b.chainID = true
	return b
}

// Build fills unset gas price, gas limit and chain ID from the network
// config, then validates the result.
func (b Builder) Build() (Transaction, error) {
	t := b.tx.Clone()
	if !b.gasPrice {
		t.GasPrice = b.cfg.MinGasPrice
	}
	if !b.gasLimit {
		limit, err := ComputeGasLimit(b.cfg, t.Data)
		if err != nil {
			return Transaction{}, err
		}
		t.GasLimit = limit
	}
	if !b.chainID {
		t.ChainID = b.cfg.ChainID
	}
	if err := t.Validate(b.cfg); err != nil {
		return Transaction{}, err
	}
	return t, nil
}
