// Package wallet implements mnemonic handling, hardened Ed25519 key
// derivation and encrypted key storage.
package wallet

import (
	"fmt"
	"io"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicEntropyBits is the entropy size for 24-word mnemonics.
const MnemonicEntropyBits = 256

// GenerateMnemonic creates a new 24-word BIP-39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", &KeyDerivationError{Kind: CannotGenerateMnemonic, Err: fmt.Errorf("generate entropy: %w", err)}
	}
	return mnemonicFromEntropy(entropy)
}

// GenerateMnemonicFrom creates a 24-word mnemonic from entropy read from r.
func GenerateMnemonicFrom(r io.Reader) (string, error) {
	entropy := make([]byte, MnemonicEntropyBits/8)
	if _, err := io.ReadFull(r, entropy); err != nil {
		return "", &KeyDerivationError{Kind: CannotGenerateMnemonic, Err: fmt.Errorf("read entropy: %w", err)}
	}
	return mnemonicFromEntropy(entropy)
}

func mnemonicFromEntropy(entropy []byte) (string, error) {
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", &KeyDerivationError{Kind: CannotGenerateMnemonic, Err: fmt.Errorf("generate mnemonic: %w", err)}
	}
	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic is valid per BIP-39
// (correct word count, valid words, valid checksum).
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}
