package types

import (
	"encoding/hex"
	"encoding/json"
	"strings"
)

// PubKeySize is the length of an account public key in bytes.
const PubKeySize = 32

// HRP is the bech32 human-readable part of every account address.
const HRP = "erd"

// Address is an account address: a 32-byte Ed25519 public key, cached as
// lowercase hex. The zero value is the unset address; it cannot be encoded.
// Addresses are immutable and safe to share between goroutines.
type Address struct {
	pubKey [PubKeySize]byte
	hex    string
}

// AddressFromHex creates an address from a 64-character lowercase hex public
// key. The input must survive a decode/encode round trip unchanged, which
// rejects uppercase or odd-length input.
func AddressFromHex(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, &AddressError{Kind: HexRoundTripMismatch, Detail: "decode hex", Err: err}
	}
	if hex.EncodeToString(b) != s {
		return Address{}, addrErr(HexRoundTripMismatch, "%q is not canonical hex", s)
	}
	if len(b) != PubKeySize {
		return Address{}, addrErr(InvalidLength, "public key must be %d bytes, got %d", PubKeySize, len(b))
	}
	return newAddress(b), nil
}

// AddressFromPubKey creates an address from raw public key bytes.
func AddressFromPubKey(pub []byte) (Address, error) {
	if len(pub) != PubKeySize {
		return Address{}, addrErr(InvalidLength, "public key must be %d bytes, got %d", PubKeySize, len(pub))
	}
	return newAddress(pub), nil
}

// AddressFromBech32 decodes an "erd1..." string. Upper- and lowercase forms
// are both accepted.
func AddressFromBech32(s string) (Address, error) {
	hrp, data, err := Bech32Decode(s)
	if err != nil {
		return Address{}, err
	}
	if hrp != HRP {
		return Address{}, addrErr(BadHrp, "got %q, want %q", hrp, HRP)
	}
	pub, err := ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, err
	}
	if len(pub) != PubKeySize {
		return Address{}, addrErr(InvalidLength, "public key must be %d bytes, got %d", PubKeySize, len(pub))
	}
	return newAddress(pub), nil
}

// ParseAddress accepts either a bech32 address or a 64-character hex public key.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, addrErr(EmptyAddress, "empty string")
	}
	if len(s) == 2*PubKeySize && !strings.HasPrefix(strings.ToLower(s), HRP+"1") {
		return AddressFromHex(s)
	}
	return AddressFromBech32(s)
}

// IsValidBech32 reports whether s decodes to an address. It is the only
// function in this package that discards address errors.
func IsValidBech32(s string) bool {
	_, err := AddressFromBech32(s)
	return err == nil
}

func newAddress(pub []byte) Address {
	var a Address
	copy(a.pubKey[:], pub)
	a.hex = hex.EncodeToString(pub)
	return a
}

// IsEmpty returns true for the unset address.
func (a Address) IsEmpty() bool {
	return a.hex == ""
}

// Hex returns the hex-encoded public key, or "" for the unset address.
func (a Address) Hex() string {
	return a.hex
}

// PubKey returns a copy of the public key bytes, or nil for the unset address.
func (a Address) PubKey() []byte {
	if a.IsEmpty() {
		return nil
	}
	b := make([]byte, PubKeySize)
	copy(b, a.pubKey[:])
	return b
}

// Bech32 returns the "erd1..." encoding of the address.
func (a Address) Bech32() (string, error) {
	if a.IsEmpty() {
		return "", ErrEmptyAddress
	}
	conv, err := ConvertBits(a.pubKey[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	return Bech32Encode(HRP, conv)
}

// String returns the bech32 address, or "" for the unset address.
func (a Address) String() string {
	s, err := a.Bech32()
	if err != nil {
		return ""
	}
	return s
}

// MarshalJSON encodes the address as a bech32 string ("" when unset).
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a bech32 or hex string into an address.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*a = Address{}
		return nil
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
