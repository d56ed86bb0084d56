package wallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/Klingon-tech/erdwallet/pkg/crypto"
	"github.com/Klingon-tech/erdwallet/pkg/types"
)

// Derivation path constants.
// Full path: m/44'/508'/0'/0'/account' (every segment hardened).
const (
	// HardenedOffset is added to every path segment. Ed25519 has no
	// non-hardened derivation, so there is no other kind of child.
	HardenedOffset uint32 = 0x80000000

	// PurposeBIP44 is the BIP-44 purpose field.
	PurposeBIP44 = 44

	// CoinTypeEGLD is the registered SLIP-44 coin type.
	CoinTypeEGLD = 508

	// masterSecret keys the HMAC that produces the master key (SLIP-10).
	masterSecret = "ed25519 seed"
)

// HDKey is one step of the hardened derivation chain: a 32-byte key and
// its 32-byte chain code.
type HDKey struct {
	key       [32]byte
	chainCode [32]byte
	depth     uint8
}

// NewMasterKey creates the master key from a 64-byte seed:
// HMAC-SHA512(key="ed25519 seed", seed).
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, deriveErr("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	return splitDigest(hmacSHA512([]byte(masterSecret), seed), 0), nil
}

// DeriveChild derives the hardened child at index. The hardened offset is
// applied here; callers pass the plain index.
func (k *HDKey) DeriveChild(index uint32) (*HDKey, error) {
	if index >= HardenedOffset {
		return nil, deriveErr("child index %d already has the hardened bit set", index)
	}
	if k.depth == 255 {
		return nil, deriveErr("maximum derivation depth reached")
	}

	var msg [1 + 32 + 4]byte
	msg[0] = 0x00
	copy(msg[1:33], k.key[:])
	binary.BigEndian.PutUint32(msg[33:], index|HardenedOffset)

	child := splitDigest(hmacSHA512(k.chainCode[:], msg[:]), k.depth+1)
	zero(msg[:])
	return child, nil
}

// DerivePath derives a key along a sequence of indices.
func (k *HDKey) DerivePath(indices ...uint32) (*HDKey, error) {
	current := k
	for _, idx := range indices {
		child, err := current.DeriveChild(idx)
		if current != k {
			current.Zero()
		}
		if err != nil {
			return nil, err
		}
		current = child
	}
	return current, nil
}

// DeriveAccount derives the key at m/44'/508'/0'/0'/account'.
func (k *HDKey) DeriveAccount(accountIndex uint32) (*HDKey, error) {
	return k.DerivePath(AccountPath(accountIndex)...)
}

// PrivateKeyBytes returns a copy of the 32-byte key. At the end of the
// account path this is the Ed25519 signing seed.
func (k *HDKey) PrivateKeyBytes() []byte {
	out := make([]byte, 32)
	copy(out, k.key[:])
	return out
}

// ChainCode returns a copy of the 32-byte chain code.
func (k *HDKey) ChainCode() []byte {
	out := make([]byte, 32)
	copy(out, k.chainCode[:])
	return out
}

// PublicKeyBytes returns the Ed25519 public key of this key's seed.
func (k *HDKey) PublicKeyBytes() ([]byte, error) {
	return crypto.PublicKeyFromSeed(k.key[:])
}

// Signer returns a crypto.PrivateKey backed by this key.
func (k *HDKey) Signer() (*crypto.PrivateKey, error) {
	return crypto.PrivateKeyFromSeed(k.key[:])
}

// Address returns the account address of this key.
func (k *HDKey) Address() (types.Address, error) {
	return crypto.AddressFromSeed(k.key[:])
}

// Depth returns the derivation depth (0 for master).
func (k *HDKey) Depth() uint8 {
	return k.depth
}

// Zero wipes the key and chain code.
func (k *HDKey) Zero() {
	zero(k.key[:])
	zero(k.chainCode[:])
}

// AccountPath returns the unhardened path segments for an account index.
func AccountPath(accountIndex uint32) []uint32 {
	return []uint32{PurposeBIP44, CoinTypeEGLD, 0, 0, accountIndex}
}

// DerivationPath returns the textual path for an account index,
// e.g. m/44'/508'/0'/0'/3'.
func DerivationPath(accountIndex uint32) string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, seg := range AccountPath(accountIndex) {
		fmt.Fprintf(&sb, "/%d'", seg)
	}
	return sb.String()
}

// DeriveKeys derives the Ed25519 signing seed and public key for an account
// of a mnemonic. The mnemonic is not validated against the wordlist.
func DeriveKeys(mnemonic string, accountIndex uint32) (privateKey, publicKey []byte, err error) {
	seed, err := MnemonicToSeed(mnemonic)
	if err != nil {
		return nil, nil, err
	}
	defer zero(seed)
	return DeriveKeysFromSeed(seed, accountIndex)
}

// DeriveKeysFromSeed is DeriveKeys for an already computed BIP-39 seed.
func DeriveKeysFromSeed(seed []byte, accountIndex uint32) (privateKey, publicKey []byte, err error) {
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, nil, err
	}
	defer master.Zero()

	acct, err := master.DeriveAccount(accountIndex)
	if err != nil {
		return nil, nil, err
	}
	defer acct.Zero()

	pub, err := acct.PublicKeyBytes()
	if err != nil {
		return nil, nil, &KeyDerivationError{Kind: CannotDeriveKeys, Err: err}
	}
	return acct.PrivateKeyBytes(), pub, nil
}

func hmacSHA512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func splitDigest(digest []byte, depth uint8) *HDKey {
	k := &HDKey{depth: depth}
	copy(k.key[:], digest[:32])
	copy(k.chainCode[:], digest[32:])
	zero(digest)
	return k
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
