package outbox

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Klingon-tech/erdwallet/internal/log"
	"github.com/Klingon-tech/erdwallet/internal/proxy"
	"github.com/Klingon-tech/erdwallet/pkg/tx"
	"github.com/Klingon-tech/erdwallet/pkg/types"
)

// Broadcaster submits signed transactions to the network.
type Broadcaster interface {
	SendTransaction(ctx context.Context, signed *tx.SignedTransaction) (string, error)
}

// AccountSource reads on-chain account state.
type AccountSource interface {
	GetAccount(ctx context.Context, addr types.Address) (*proxy.Account, error)
}

// StatusSource reads the status of a broadcast transaction.
type StatusSource interface {
	GetTransactionStatus(ctx context.Context, txHash string) (string, error)
}

// Network is everything the Sender needs from the proxy. *proxy.Client
// implements it.
type Network interface {
	Broadcaster
	AccountSource
	StatusSource
}

// refreshConcurrency bounds the status queries RefreshPending has in flight.
const refreshConcurrency = 4

// Sender broadcasts transactions and journals the accepted ones.
type Sender struct {
	net   Network
	store *Store
	now   func() time.Time
}

// NewSender creates a Sender.
func NewSender(net Network, store *Store) *Sender {
	return &Sender{net: net, store: store, now: time.Now}
}

// Send broadcasts signed and records it. Nothing is recorded when the
// broadcast fails.
func (s *Sender) Send(ctx context.Context, signed *tx.SignedTransaction) (Record, error) {
	txHash, err := s.net.SendTransaction(ctx, signed)
	if err != nil {
		return Record{}, err
	}
	rec, err := s.store.Record(signed, txHash, s.now())
	if err != nil {
		// The network already has it; the journal is best effort from here.
		log.Outbox.Error().Err(err).Str("tx_hash", txHash).Msg("Broadcast succeeded but recording failed")
		return Record{TxHash: txHash}, fmt.Errorf("record %s: %w", txHash, err)
	}
	return rec, nil
}

// NextNonce returns the nonce the next transaction from addr should use.
func (s *Sender) NextNonce(ctx context.Context, addr types.Address) (uint64, error) {
	acct, err := s.net.GetAccount(ctx, addr)
	if err != nil {
		return 0, err
	}
	return acct.Nonce, nil
}

// Refresh asks the network for the status of a journaled transaction and
// stores it.
func (s *Sender) Refresh(ctx context.Context, txHash string) (Record, error) {
	if _, err := s.store.GetByTxHash(txHash); err != nil {
		return Record{}, err
	}
	status, err := s.net.GetTransactionStatus(ctx, txHash)
	if err != nil {
		return Record{}, err
	}
	if err := s.store.SetStatus(txHash, status); err != nil {
		return Record{}, err
	}
	return s.store.GetByTxHash(txHash)
}

// RefreshPending refreshes every journaled transaction from sender (all
// senders when empty) that has no final status yet. It returns how many
// records were updated. The first failure cancels the remaining queries.
func (s *Sender) RefreshPending(ctx context.Context, sender string) (int, error) {
	recs, _, err := s.store.List(sender, 0, 0)
	if err != nil {
		return 0, err
	}

	var updated atomic.Int64
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(refreshConcurrency)
	for _, rec := range recs {
		if rec.Status != "" && rec.Status != proxy.StatusPending {
			continue
		}
		txHash := rec.TxHash
		eg.Go(func() error {
			if _, err := s.Refresh(ctx, txHash); err != nil {
				log.Outbox.Warn().Err(err).Str("tx_hash", txHash).Msg("Status refresh failed")
				return err
			}
			updated.Add(1)
			return nil
		})
	}
	err = eg.Wait()
	return int(updated.Load()), err
}
