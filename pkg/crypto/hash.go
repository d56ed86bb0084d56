// Package crypto provides the Ed25519 signing primitive and content hashing.
package crypto

import (
	"github.com/Klingon-tech/erdwallet/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// AddressFromPubKey derives the account address for an Ed25519 public key.
// On this chain the address is the public key itself.
func AddressFromPubKey(pubKey []byte) (types.Address, error) {
	return types.AddressFromPubKey(pubKey)
}

// AddressFromSeed derives the account address for an Ed25519 seed.
func AddressFromSeed(seed []byte) (types.Address, error) {
	pub, err := PublicKeyFromSeed(seed)
	if err != nil {
		return types.Address{}, err
	}
	return types.AddressFromPubKey(pub)
}
