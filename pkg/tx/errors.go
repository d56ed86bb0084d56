package tx

import (
	"errors"
	"fmt"
)

// TransactionErrorKind discriminates transaction failures.
type TransactionErrorKind int

const (
	// CannotSerialize: the transaction has no canonical form, usually
	// because an address is unset or invalid. Wraps the address error.
	CannotSerialize TransactionErrorKind = iota + 1
	// CannotSign: signing failed. Wraps a CannotSerialize error or the
	// signer's own failure.
	CannotSign
	// InvalidTransaction: the transaction breaks a network rule.
	InvalidTransaction
)

// String returns a short human-readable name for the kind.
func (k TransactionErrorKind) String() string {
	switch k {
	case CannotSerialize:
		return "cannot serialize transaction"
	case CannotSign:
		return "cannot sign transaction"
	case InvalidTransaction:
		return "invalid transaction"
	default:
		return fmt.Sprintf("transaction error kind %d", int(k))
	}
}

// TransactionError is the single error type returned by this package.
type TransactionError struct {
	Kind TransactionErrorKind
	Err  error
}

// Error implements error.
func (e *TransactionError) Error() string {
	if e.Err == nil {
		return "tx: " + e.Kind.String()
	}
	return "tx: " + e.Kind.String() + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// Is matches any TransactionError of the same kind.
func (e *TransactionError) Is(target error) bool {
	t, ok := target.(*TransactionError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrCannotSerialize    = &TransactionError{Kind: CannotSerialize}
	ErrCannotSign         = &TransactionError{Kind: CannotSign}
	ErrInvalidTransaction = &TransactionError{Kind: InvalidTransaction}
)

// Rule violations reported inside InvalidTransaction errors.
var (
	ErrMissingSender    = errors.New("sender is not set")
	ErrMissingReceiver  = errors.New("receiver is not set")
	ErrNegativeValue    = errors.New("value is negative")
	ErrChainIDMismatch  = errors.New("chain ID mismatch")
	ErrGasPriceTooLow   = errors.New("gas price below network minimum")
	ErrGasLimitTooLow   = errors.New("gas limit below required minimum")
	ErrGasOverflow      = errors.New("gas limit overflows uint64")
	ErrVersionTooLow    = errors.New("version below network minimum")
	ErrSignerMismatch   = errors.New("signer key does not belong to sender")
	ErrInvalidSignature = errors.New("malformed signature")
	ErrNoSignerKey      = errors.New("signer has no key")
	ErrNotCanonical     = errors.New("not in canonical form")
)

func serializeErr(err error) error {
	return &TransactionError{Kind: CannotSerialize, Err: err}
}

func invalid(format string, args ...interface{}) error {
	return &TransactionError{Kind: InvalidTransaction, Err: fmt.Errorf(format, args...)}
}
