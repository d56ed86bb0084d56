package wallet

import "fmt"

// KeyDerivationErrorKind discriminates key derivation failures.
type KeyDerivationErrorKind int

const (
	CannotGenerateMnemonic KeyDerivationErrorKind = iota + 1
	CannotDeriveKeys
)

// String returns a short human-readable name for the kind.
func (k KeyDerivationErrorKind) String() string {
	switch k {
	case CannotGenerateMnemonic:
		return "cannot generate mnemonic"
	case CannotDeriveKeys:
		return "cannot derive keys"
	default:
		return fmt.Sprintf("key derivation error kind %d", int(k))
	}
}

// KeyDerivationError wraps a failure of mnemonic generation or key derivation.
type KeyDerivationError struct {
	Kind KeyDerivationErrorKind
	Err  error
}

// Error implements error.
func (e *KeyDerivationError) Error() string {
	if e.Err == nil {
		return "wallet: " + e.Kind.String()
	}
	return "wallet: " + e.Kind.String() + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *KeyDerivationError) Unwrap() error {
	return e.Err
}

// Is matches any KeyDerivationError of the same kind.
func (e *KeyDerivationError) Is(target error) bool {
	t, ok := target.(*KeyDerivationError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrCannotGenerateMnemonic = &KeyDerivationError{Kind: CannotGenerateMnemonic}
	ErrCannotDeriveKeys       = &KeyDerivationError{Kind: CannotDeriveKeys}
)

func deriveErr(format string, args ...interface{}) error {
	return &KeyDerivationError{Kind: CannotDeriveKeys, Err: fmt.Errorf(format, args...)}
}
