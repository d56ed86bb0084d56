package proxy

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/Klingon-tech/erdwallet/pkg/tx"
	"github.com/Klingon-tech/erdwallet/pkg/types"
)

// envelope is the common response wrapper of every proxy endpoint.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

type networkConfigData struct {
	Config *tx.NetworkConfig `json:"config"`
}

type accountData struct {
	Account *accountJSON `json:"account"`
}

type accountJSON struct {
	Address  string `json:"address"`
	Nonce    uint64 `json:"nonce"`
	Balance  string `json:"balance"`
	Username string `json:"username,omitempty"`
}

type sendData struct {
	TxHash string `json:"txHash"`
}

type statusData struct {
	Status string `json:"status"`
}

// Account is the on-chain state of an address.
type Account struct {
	Address  types.Address
	Nonce    uint64
	Balance  *big.Int
	Username string
}

func (a *accountJSON) toAccount() (*Account, error) {
	addr, err := types.AddressFromBech32(a.Address)
	if err != nil {
		return nil, fmt.Errorf("account address: %w", err)
	}
	balance := new(big.Int)
	if a.Balance != "" {
		if _, ok := balance.SetString(a.Balance, 10); !ok {
			return nil, fmt.Errorf("invalid balance %q", a.Balance)
		}
	}
	return &Account{
		Address:  addr,
		Nonce:    a.Nonce,
		Balance:  balance,
		Username: a.Username,
	}, nil
}

// Transaction status values reported by the proxy.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusInvalid = "invalid"
)
