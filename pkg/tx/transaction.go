// Package tx defines transactions, their canonical JSON form and signing.
//
// The canonical form is both the signed payload and the wire format, so the
// field order below is part of the protocol:
//
//	nonce, value, receiver, sender, gasPrice, gasLimit, [data], chainID, version, [signature]
package tx

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/Klingon-tech/erdwallet/pkg/crypto"
	"github.com/Klingon-tech/erdwallet/pkg/types"
)

// Version is the only transaction version this package produces.
const Version uint32 = 1

// Transaction is an unsigned transfer. It is a plain value; signing yields
// a separate SignedTransaction and never touches the receiver.
type Transaction struct {
	Nonce    uint64
	Value    *big.Int // nil means zero
	Receiver types.Address
	Sender   types.Address
	GasPrice uint64
	GasLimit uint64
	Data     []byte
	ChainID  string
}

// wireTx is the canonical JSON layout. Struct order is field order.
type wireTx struct {
	Nonce     uint64 `json:"nonce"`
	Value     string `json:"value"`
	Receiver  string `json:"receiver"`
	Sender    string `json:"sender"`
	GasPrice  uint64 `json:"gasPrice"`
	GasLimit  uint64 `json:"gasLimit"`
	Data      []byte `json:"data,omitempty"`
	ChainID   string `json:"chainID"`
	Version   uint32 `json:"version"`
	Signature string `json:"signature,omitempty"`
}

// Clone returns a deep copy.
func (t Transaction) Clone() Transaction {
	c := t
	if t.Value != nil {
		c.Value = new(big.Int).Set(t.Value)
	}
	if t.Data != nil {
		c.Data = append([]byte(nil), t.Data...)
	}
	return c
}

func (t Transaction) wire(signature []byte) (wireTx, error) {
	receiver, err := t.Receiver.Bech32()
	if err != nil {
		return wireTx{}, serializeErr(fmt.Errorf("receiver: %w", err))
	}
	sender, err := t.Sender.Bech32()
	if err != nil {
		return wireTx{}, serializeErr(fmt.Errorf("sender: %w", err))
	}

	value := "0"
	if t.Value != nil {
		if t.Value.Sign() < 0 {
			return wireTx{}, serializeErr(ErrNegativeValue)
		}
		value = t.Value.String()
	}

	w := wireTx{
		Nonce:    t.Nonce,
		Value:    value,
		Receiver: receiver,
		Sender:   sender,
		GasPrice: t.GasPrice,
		GasLimit: t.GasLimit,
		Data:     t.Data,
		ChainID:  t.ChainID,
		Version:  Version,
	}
	if len(signature) > 0 {
		w.Signature = hex.EncodeToString(signature)
	}
	return w, nil
}

func encodeWire(w wireTx) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return nil, serializeErr(err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// SigningBytes returns the canonical JSON of the unsigned transaction, the
// exact bytes that get signed.
func (t Transaction) SigningBytes() ([]byte, error) {
	w, err := t.wire(nil)
	if err != nil {
		return nil, err
	}
	return encodeWire(w)
}

// Serialize returns the canonical JSON of the unsigned transaction.
func (t Transaction) Serialize() (string, error) {
	b, err := t.SigningBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Sign signs the canonical payload and returns the signed transaction. The
// signer's public key must be the sender's.
func (t Transaction) Sign(signer crypto.Signer) (*SignedTransaction, error) {
	payload, err := t.SigningBytes()
	if err != nil {
		return nil, &TransactionError{Kind: CannotSign, Err: err}
	}
	pub := signer.PublicKey()
	if len(pub) != crypto.PublicKeySize {
		return nil, &TransactionError{Kind: CannotSign, Err: ErrNoSignerKey}
	}
	if !bytes.Equal(pub, t.Sender.PubKey()) {
		return nil, &TransactionError{Kind: CannotSign, Err: ErrSignerMismatch}
	}
	sig, err := signer.Sign(payload)
	if err != nil {
		return nil, &TransactionError{Kind: CannotSign, Err: err}
	}
	if len(sig) != crypto.SignatureSize {
		return nil, &TransactionError{Kind: CannotSign, Err: fmt.Errorf("%w: %d bytes", ErrInvalidSignature, len(sig))}
	}
	return &SignedTransaction{tx: t.Clone(), signature: sig}, nil
}

// SignWithSeed signs with the Ed25519 key expanded from a 32-byte seed.
func (t Transaction) SignWithSeed(seed []byte) (*SignedTransaction, error) {
	key, err := crypto.PrivateKeyFromSeed(seed)
	if err != nil {
		return nil, &TransactionError{Kind: CannotSign, Err: err}
	}
	defer key.Zero()
	return t.Sign(key)
}

// SignedTransaction is a transaction together with the signature over its
// canonical unsigned form. It is immutable.
type SignedTransaction struct {
	tx        Transaction
	signature []byte
}

// Transaction returns a copy of the unsigned transaction.
func (s *SignedTransaction) Transaction() Transaction {
	return s.tx.Clone()
}

// Signature returns a copy of the raw 64-byte signature.
func (s *SignedTransaction) Signature() []byte {
	return append([]byte(nil), s.signature...)
}

// SignatureHex returns the lowercase hex signature.
func (s *SignedTransaction) SignatureHex() string {
	return hex.EncodeToString(s.signature)
}

// Serialize returns the canonical JSON with the signature as the last field.
func (s *SignedTransaction) Serialize() (string, error) {
	b, err := s.bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *SignedTransaction) bytes() ([]byte, error) {
	w, err := s.tx.wire(s.signature)
	if err != nil {
		return nil, err
	}
	return encodeWire(w)
}

// MarshalJSON implements json.Marshaler with the canonical form.
func (s *SignedTransaction) MarshalJSON() ([]byte, error) {
	return s.bytes()
}

// Hash returns the BLAKE3-256 digest of the serialized signed transaction.
// It identifies the transaction locally; it is not the network hash.
func (s *SignedTransaction) Hash() (types.Hash, error) {
	b, err := s.bytes()
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.Hash(b), nil
}

// Resign signs the embedded unsigned transaction again. The old signature
// takes no part in the new payload.
func (s *SignedTransaction) Resign(signer crypto.Signer) (*SignedTransaction, error) {
	return s.tx.Sign(signer)
}

// ParseSigned decodes a signed transaction from its wire JSON. The input must
// be in canonical form (surrounding whitespace aside): the bytes that get
// broadcast are the bytes that were signed.
func ParseSigned(data []byte) (*SignedTransaction, error) {
	var w wireTx
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, invalid("decode: %w", err)
	}

	if w.Version != Version {
		return nil, invalid("unsupported version %d", w.Version)
	}
	receiver, err := types.AddressFromBech32(w.Receiver)
	if err != nil {
		return nil, invalid("receiver: %w", err)
	}
	sender, err := types.AddressFromBech32(w.Sender)
	if err != nil {
		return nil, invalid("sender: %w", err)
	}
	value, ok := new(big.Int).SetString(w.Value, 10)
	if !ok || value.Sign() < 0 {
		return nil, invalid("bad value %q", w.Value)
	}
	sig, err := hex.DecodeString(w.Signature)
	if err != nil || len(sig) != crypto.SignatureSize {
		return nil, invalid("%w: %q", ErrInvalidSignature, w.Signature)
	}

	s := &SignedTransaction{
		tx: Transaction{
			Nonce:    w.Nonce,
			Value:    value,
			Receiver: receiver,
			Sender:   sender,
			GasPrice: w.GasPrice,
			GasLimit: w.GasLimit,
			Data:     w.Data,
			ChainID:  w.ChainID,
		},
		signature: sig,
	}
	canonical, err := s.bytes()
	if err != nil {
		return nil, invalid("%w", err)
	}
	if !bytes.Equal(canonical, bytes.TrimSpace(data)) {
		return nil, invalid("%w", ErrNotCanonical)
	}
	return s, nil
}
