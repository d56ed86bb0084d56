package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SeedSize is the length of an Ed25519 private key seed.
const SeedSize = ed25519.SeedSize

// PublicKeySize is the length of an Ed25519 public key.
const PublicKeySize = ed25519.PublicKeySize

// SignatureSize is the length of an Ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// Signer signs arbitrary messages with an Ed25519 key.
type Signer interface {
	// Sign produces a deterministic RFC 8032 signature over the raw message.
	Sign(message []byte) ([]byte, error)
	// PublicKey returns the 32-byte public key.
	PublicKey() []byte
}

// PrivateKey wraps an Ed25519 key expanded from a 32-byte seed.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GenerateKey creates a new random Ed25519 private key.
func GenerateKey() (*PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromSeed creates a PrivateKey from a 32-byte seed.
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("private key seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// Sign produces an Ed25519 signature over message.
func (pk *PrivateKey) Sign(message []byte) ([]byte, error) {
	if len(pk.key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key is zeroed or uninitialized")
	}
	return ed25519.Sign(pk.key, message), nil
}

// PublicKey returns the 32-byte public key, or nil once the key is zeroed.
func (pk *PrivateKey) PublicKey() []byte {
	if len(pk.key) != ed25519.PrivateKeySize {
		return nil
	}
	pub := make([]byte, ed25519.PublicKeySize)
	copy(pub, pk.key[SeedSize:])
	return pub
}

// Seed returns a copy of the 32-byte seed, or nil once the key is zeroed.
func (pk *PrivateKey) Seed() []byte {
	if len(pk.key) != ed25519.PrivateKeySize {
		return nil
	}
	return pk.key.Seed()
}

// Zero securely zeroes the private key memory.
func (pk *PrivateKey) Zero() {
	for i := range pk.key {
		pk.key[i] = 0
	}
	pk.key = nil
}

// PublicKeyFromSeed derives the Ed25519 public key for a 32-byte seed.
func PublicKeyFromSeed(seed []byte) ([]byte, error) {
	pk, err := PrivateKeyFromSeed(seed)
	if err != nil {
		return nil, err
	}
	defer pk.Zero()
	return pk.PublicKey(), nil
}

// Sign signs message with the key expanded from seed and returns the
// lowercase hex signature.
func Sign(seed, message []byte) (string, error) {
	pk, err := PrivateKeyFromSeed(seed)
	if err != nil {
		return "", err
	}
	defer pk.Zero()
	sig, err := pk.Sign(message)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}
