package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Klingon-tech/erdwallet/internal/log"
	"github.com/Klingon-tech/erdwallet/pkg/types"
)

const (
	walletExt     = ".wallet"
	vaultVersion  = 1
	walletDirPerm = 0700
	walletPerm    = 0600
)

// ErrWalletNotFound is returned when a named wallet has no file.
var ErrWalletNotFound = errors.New("wallet not found")

// ErrWalletExists is returned by Create when the name is taken.
var ErrWalletExists = errors.New("wallet already exists")

// vaultFile is the on-disk JSON format for an encrypted wallet.
type vaultFile struct {
	Version       int            `json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	EncryptedSeed []byte         `json:"encrypted_seed"`
	Accounts      []AccountEntry `json:"accounts"`
}

// AccountEntry stores metadata for a derived account. Address is bech32.
type AccountEntry struct {
	Index   uint32 `json:"index"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Keystore manages encrypted wallets in a directory. Each wallet holds one
// BIP-39 seed and the accounts derived from it so far.
type Keystore struct {
	path string
}

// NewKeystore creates a keystore that reads/writes to the given directory.
// The directory is created if it doesn't exist.
func NewKeystore(path string) (*Keystore, error) {
	if err := os.MkdirAll(path, walletDirPerm); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{path: path}, nil
}

// Dir returns the keystore directory.
func (ks *Keystore) Dir() string {
	return ks.path
}

func (ks *Keystore) walletPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid wallet name %q", name)
	}
	return filepath.Join(ks.path, name+walletExt), nil
}

// Create stores a new wallet sealing seed under password. Account 0 is
// derived and recorded as "default".
func (ks *Keystore) Create(name string, seed, password []byte, params EncryptionParams) error {
	path, err := ks.walletPath(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %q", ErrWalletExists, name)
	}

	acct, err := NewAccount(seed, 0, "default")
	if err != nil {
		return err
	}

	encrypted, err := Encrypt(seed, password, params)
	if err != nil {
		return fmt.Errorf("encrypt seed: %w", err)
	}

	vf := vaultFile{
		Version:       vaultVersion,
		CreatedAt:     time.Now().UTC(),
		EncryptedSeed: encrypted,
		Accounts:      []AccountEntry{acct.Entry()},
	}
	if err := writeVault(path, &vf); err != nil {
		return err
	}

	log.Wallet.Info().Str("wallet", name).Str("address", acct.Entry().Address).Msg("Wallet created")
	return nil
}

// Load decrypts a wallet and returns the seed bytes.
func (ks *Keystore) Load(name string, password []byte) ([]byte, error) {
	vf, _, err := ks.read(name)
	if err != nil {
		return nil, err
	}

	seed, err := Decrypt(vf.EncryptedSeed, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt wallet %q: %w", name, err)
	}
	if len(seed) != SeedSize {
		zero(seed)
		return nil, fmt.Errorf("wallet %q holds a %d-byte seed, want %d", name, len(seed), SeedSize)
	}
	return seed, nil
}

// DeriveAccount unlocks the wallet, derives the account at index and
// records it under label. Re-deriving an index already present returns the
// stored entry.
func (ks *Keystore) DeriveAccount(name string, password []byte, index uint32, label string) (AccountEntry, error) {
	seed, err := ks.Load(name, password)
	if err != nil {
		return AccountEntry{}, err
	}
	defer zero(seed)

	acct, err := NewAccount(seed, index, label)
	if err != nil {
		return AccountEntry{}, err
	}
	entry := acct.Entry()
	if err := ks.AddAccount(name, entry); err != nil {
		return AccountEntry{}, err
	}

	accounts, err := ks.ListAccounts(name)
	if err != nil {
		return AccountEntry{}, err
	}
	for _, a := range accounts {
		if a.Index == index {
			return a, nil
		}
	}
	return entry, nil
}

// AddAccount records a derived account in the wallet metadata.
func (ks *Keystore) AddAccount(name string, acct AccountEntry) error {
	if _, err := types.AddressFromBech32(acct.Address); err != nil {
		return fmt.Errorf("account %d: %w", acct.Index, err)
	}

	vf, path, err := ks.read(name)
	if err != nil {
		return err
	}

	for _, existing := range vf.Accounts {
		if existing.Index == acct.Index {
			if existing.Address == acct.Address {
				return nil
			}
			return fmt.Errorf("account index %d already recorded with address %s", acct.Index, existing.Address)
		}
	}

	vf.Accounts = append(vf.Accounts, acct)
	sort.Slice(vf.Accounts, func(i, j int) bool { return vf.Accounts[i].Index < vf.Accounts[j].Index })
	if err := writeVault(path, vf); err != nil {
		return err
	}

	log.Wallet.Debug().Str("wallet", name).Uint32("index", acct.Index).Str("address", acct.Address).Msg("Account added")
	return nil
}

// ListAccounts returns the account entries for a wallet, ordered by index.
func (ks *Keystore) ListAccounts(name string) ([]AccountEntry, error) {
	vf, _, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	return vf.Accounts, nil
}

// NextAccountIndex returns one past the highest recorded account index.
func (ks *Keystore) NextAccountIndex(name string) (uint32, error) {
	accounts, err := ks.ListAccounts(name)
	if err != nil {
		return 0, err
	}
	var next uint32
	for _, a := range accounts {
		if a.Index >= next {
			next = a.Index + 1
		}
	}
	return next, nil
}

// List returns the names of all wallet files in the keystore, sorted.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.path)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := strings.CutSuffix(e.Name(), walletExt); ok && n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a wallet file.
func (ks *Keystore) Delete(name string) error {
	path, err := ks.walletPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrWalletNotFound, name)
		}
		return fmt.Errorf("delete wallet: %w", err)
	}
	log.Wallet.Info().Str("wallet", name).Msg("Wallet deleted")
	return nil
}

func (ks *Keystore) read(name string) (*vaultFile, string, error) {
	path, err := ks.walletPath(name)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %q", ErrWalletNotFound, name)
		}
		return nil, "", fmt.Errorf("read wallet: %w", err)
	}
	var vf vaultFile
	if err := json.Unmarshal(data, &vf); err != nil {
		return nil, "", fmt.Errorf("parse wallet: %w", err)
	}
	if vf.Version != vaultVersion {
		return nil, "", fmt.Errorf("unsupported wallet version: %d", vf.Version)
	}
	return &vf, path, nil
}

func writeVault(path string, vf *vaultFile) error {
	data, err := json.MarshalIndent(vf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := os.WriteFile(path, data, walletPerm); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}
