package wallet

import "github.com/Klingon-tech/erdwallet/pkg/types"

// Account represents a derived wallet account.
type Account struct {
	Index   uint32
	Name    string
	Address types.Address
}

// NewAccount derives the account at index from a BIP-39 seed.
func NewAccount(seed []byte, index uint32, name string) (Account, error) {
	_, pub, err := DeriveKeysFromSeed(seed, index)
	if err != nil {
		return Account{}, err
	}
	addr, err := types.AddressFromPubKey(pub)
	if err != nil {
		return Account{}, &KeyDerivationError{Kind: CannotDeriveKeys, Err: err}
	}
	return Account{Index: index, Name: name, Address: addr}, nil
}

// Entry converts the account into its keystore metadata form.
func (a Account) Entry() AccountEntry {
	return AccountEntry{Index: a.Index, Name: a.Name, Address: a.Address.String()}
}
