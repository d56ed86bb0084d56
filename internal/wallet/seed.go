package wallet

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// SeedSize is the length of a derived seed in bytes (512 bits).
const SeedSize = 64

// MnemonicToSeed derives the 512-bit BIP-39 seed of a mnemonic with an empty
// passphrase: PBKDF2-HMAC-SHA512, salt "mnemonic", 2048 iterations. The
// phrase is not checked against the wordlist.
func MnemonicToSeed(mnemonic string) ([]byte, error) {
	if strings.TrimSpace(mnemonic) == "" {
		return nil, deriveErr("empty mnemonic")
	}
	return bip39.NewSeed(mnemonic, ""), nil
}

// SeedFromMnemonic derives a 512-bit seed from a mnemonic and optional
// passphrase after validating the mnemonic's words and checksum.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, deriveErr("invalid mnemonic")
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, &KeyDerivationError{Kind: CannotDeriveKeys, Err: fmt.Errorf("derive seed: %w", err)}
	}
	return seed, nil
}
