package types

import "fmt"

// AddressErrorKind discriminates the ways an address or bech32 string can be
// malformed.
type AddressErrorKind int

const (
	InvalidLength AddressErrorKind = iota + 1
	InvalidCharacters
	InconsistentCasing
	MissingHrp
	InvalidChecksum
	BadHrp
	CannotConvertBits
	HexRoundTripMismatch
	// EmptyAddress is returned when an unset Address is encoded.
	EmptyAddress
)

var addressErrorKindNames = map[AddressErrorKind]string{
	InvalidLength:        "invalid length",
	InvalidCharacters:    "invalid characters",
	InconsistentCasing:   "inconsistent casing",
	MissingHrp:           "missing hrp",
	InvalidChecksum:      "invalid checksum",
	BadHrp:               "bad hrp",
	CannotConvertBits:    "cannot convert bits",
	HexRoundTripMismatch: "hex round-trip mismatch",
	EmptyAddress:         "empty address",
}

// String returns a short human-readable name for the kind.
func (k AddressErrorKind) String() string {
	if s, ok := addressErrorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("address error kind %d", int(k))
}

// AddressError is the single error type returned by the bech32 and address
// codecs. Kind is the discriminant; Detail carries context for humans.
type AddressError struct {
	Kind   AddressErrorKind
	Detail string
	Err    error
}

// Error implements error.
func (e *AddressError) Error() string {
	msg := "address: " + e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *AddressError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AddressError of the same kind, so the
// sentinels below work with errors.Is regardless of Detail.
func (e *AddressError) Is(target error) bool {
	t, ok := target.(*AddressError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidLength        = &AddressError{Kind: InvalidLength}
	ErrInvalidCharacters    = &AddressError{Kind: InvalidCharacters}
	ErrInconsistentCasing   = &AddressError{Kind: InconsistentCasing}
	ErrMissingHrp           = &AddressError{Kind: MissingHrp}
	ErrInvalidChecksum      = &AddressError{Kind: InvalidChecksum}
	ErrBadHrp               = &AddressError{Kind: BadHrp}
	ErrCannotConvertBits    = &AddressError{Kind: CannotConvertBits}
	ErrHexRoundTripMismatch = &AddressError{Kind: HexRoundTripMismatch}
	ErrEmptyAddress         = &AddressError{Kind: EmptyAddress}
)

func addrErr(kind AddressErrorKind, format string, args ...interface{}) *AddressError {
	return &AddressError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
