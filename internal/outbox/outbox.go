// Package outbox keeps a local journal of broadcast transactions.
package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Klingon-tech/erdwallet/internal/log"
	"github.com/Klingon-tech/erdwallet/internal/storage"
	"github.com/Klingon-tech/erdwallet/pkg/tx"
	"github.com/Klingon-tech/erdwallet/pkg/types"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("outbox: record not found")

// Record is one journal entry.
type Record struct {
	Hash    types.Hash `json:"hash"`
	TxHash  string     `json:"txHash"`
	Sender  string     `json:"sender"`
	Nonce   uint64     `json:"nonce"`
	Payload string     `json:"payload"`
	Status  string     `json:"status,omitempty"`
	SentAt  time.Time  `json:"sentAt"`
}

// Store is the journal. Key layout (under the "o/" namespace):
//
//	Record: "tx/<digest hex>"  → JSON Record
//	Index:  "hash/<txHash>"    → digest hex
//
// The digest is the BLAKE3 hash of the serialized signed transaction, so
// it is known before the network answers.
type Store struct {
	db *storage.PrefixDB
}

// NewStore creates a journal backed by db.
func NewStore(db storage.BatchDB) *Store {
	return &Store{db: storage.NewPrefixDB(db, []byte("o/"))}
}

func recordKey(digest types.Hash) []byte {
	return []byte("tx/" + digest.String())
}

func indexKey(txHash string) []byte {
	return []byte("hash/" + txHash)
}

// Record journals a signed transaction the network accepted under txHash.
// Recording the same transaction again replaces the previous entry.
func (s *Store) Record(signed *tx.SignedTransaction, txHash string, sentAt time.Time) (Record, error) {
	payload, err := signed.Serialize()
	if err != nil {
		return Record{}, err
	}
	digest, err := signed.Hash()
	if err != nil {
		return Record{}, err
	}
	t := signed.Transaction()
	rec := Record{
		Hash:    digest,
		TxHash:  txHash,
		Sender:  t.Sender.String(),
		Nonce:   t.Nonce,
		Payload: payload,
		SentAt:  sentAt.UTC(),
	}
	if err := s.put(rec); err != nil {
		return Record{}, err
	}
	log.Outbox.Debug().
		Str("digest", digest.String()).
		Str("tx_hash", txHash).
		Uint64("nonce", rec.Nonce).
		Msg("Transaction recorded")
	return rec, nil
}

// put writes the record and its index in one batch.
func (s *Store) put(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	b := s.db.NewBatch()
	if err := b.Put(recordKey(rec.Hash), data); err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	if rec.TxHash != "" {
		if err := b.Put(indexKey(rec.TxHash), []byte(rec.Hash.String())); err != nil {
			return fmt.Errorf("put index: %w", err)
		}
	}
	return b.Commit()
}

// Get returns the record for a content digest.
func (s *Store) Get(digest types.Hash) (Record, error) {
	data, err := s.db.Get(recordKey(digest))
	if errors.Is(err, storage.ErrNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("corrupt record %s: %w", digest, err)
	}
	return rec, nil
}

// GetByTxHash returns the record for a network transaction hash.
func (s *Store) GetByTxHash(txHash string) (Record, error) {
	data, err := s.db.Get(indexKey(txHash))
	if errors.Is(err, storage.ErrNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	digest, err := types.ParseHash(string(data))
	if err != nil {
		return Record{}, fmt.Errorf("corrupt index for %s: %w", txHash, err)
	}
	return s.Get(digest)
}

// SetStatus updates the last known network status of a record.
func (s *Store) SetStatus(txHash, status string) error {
	rec, err := s.GetByTxHash(txHash)
	if err != nil {
		return err
	}
	rec.Status = status
	return s.put(rec)
}

// List returns records newest first. A non-empty sender keeps only that
// sender's records. limit <= 0 means no limit. The second return value is
// the number of matching records before pagination.
func (s *Store) List(sender string, limit, offset int) ([]Record, int, error) {
	var all []Record
	err := s.db.ForEach([]byte("tx/"), func(key, value []byte) error {
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			log.Outbox.Warn().Str("key", string(key)).Err(err).Msg("Skipping corrupt record")
			return nil
		}
		if sender == "" || rec.Sender == sender {
			all = append(all, rec)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].SentAt.Equal(all[j].SentAt) {
			return all[i].SentAt.After(all[j].SentAt)
		}
		return all[i].Nonce > all[j].Nonce
	})

	total := len(all)
	if offset >= total {
		return []Record{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

// Clear removes every record and index entry.
func (s *Store) Clear() error {
	if err := s.db.DeleteAll(); err != nil {
		return err
	}
	log.Outbox.Info().Msg("Journal cleared")
	return nil
}
