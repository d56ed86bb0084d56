package wallet

import (
	"bytes"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/erdwallet/pkg/crypto"
	"github.com/Klingon-tech/erdwallet/pkg/types"
)

const pemTypePrefix = "PRIVATE KEY for "

// ErrInvalidPEM is returned for PEM data that holds no usable key block.
var ErrInvalidPEM = errors.New("invalid pem key file")

// EncodePEM renders seed as a PEM block labelled with its bech32 address.
// The block body is the hex text of seed||pubkey.
func EncodePEM(seed []byte) ([]byte, error) {
	pk, err := crypto.PrivateKeyFromSeed(seed)
	if err != nil {
		return nil, err
	}
	defer pk.Zero()

	pub := pk.PublicKey()
	addr, err := types.AddressFromPubKey(pub)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, 0, crypto.SeedSize+len(pub))
	raw = append(raw, seed...)
	raw = append(raw, pub...)
	defer zero(raw)

	block := &pem.Block{
		Type:  pemTypePrefix + addr.String(),
		Bytes: []byte(hex.EncodeToString(raw)),
	}
	return pem.EncodeToMemory(block), nil
}

// DecodePEM returns the signing seed stored in the index-th key block of
// data. The public key half, when present, must agree with the seed, as
// must the label when it is an address.
func DecodePEM(data []byte, index int) ([]byte, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: negative index %d", ErrInvalidPEM, index)
	}

	rest := data
	for i := 0; ; i++ {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			if i == 0 {
				return nil, ErrInvalidPEM
			}
			return nil, fmt.Errorf("%w: index %d out of range (%d keys)", ErrInvalidPEM, index, i)
		}
		if i == index {
			return decodePEMBlock(block)
		}
	}
}

func decodePEMBlock(block *pem.Block) ([]byte, error) {
	label, ok := strings.CutPrefix(block.Type, pemTypePrefix)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected block type %q", ErrInvalidPEM, block.Type)
	}

	raw, err := hex.DecodeString(string(bytes.TrimSpace(block.Bytes)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPEM, err)
	}
	defer zero(raw)

	switch len(raw) {
	case crypto.SeedSize, crypto.SeedSize + types.PubKeySize:
	default:
		return nil, fmt.Errorf("%w: key material is %d bytes", ErrInvalidPEM, len(raw))
	}

	seed := make([]byte, crypto.SeedSize)
	copy(seed, raw)

	pub, err := crypto.PublicKeyFromSeed(seed)
	if err != nil {
		zero(seed)
		return nil, err
	}
	if len(raw) > crypto.SeedSize && !bytes.Equal(raw[crypto.SeedSize:], pub) {
		zero(seed)
		return nil, fmt.Errorf("%w: public key does not match seed", ErrInvalidPEM)
	}
	addr, err := types.AddressFromPubKey(pub)
	if err != nil {
		zero(seed)
		return nil, err
	}
	// Hand-written files may carry a nickname instead of an address.
	if types.IsValidBech32(label) && addr.String() != label {
		zero(seed)
		return nil, ErrWrongAccount
	}
	return seed, nil
}

// SavePEM writes seed as a PEM key file with 0600 permissions.
func SavePEM(path string, seed []byte) error {
	data, err := EncodePEM(seed)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, walletPerm); err != nil {
		return fmt.Errorf("write pem: %w", err)
	}
	return nil
}

// LoadPEM reads the index-th key of the PEM file at path.
func LoadPEM(path string, index int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pem: %w", err)
	}
	return DecodePEM(data, index)
}
