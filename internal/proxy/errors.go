package proxy

import (
	"fmt"
	"strings"
)

// NetworkError reports a failed call to the proxy: transport failure,
// non-2xx status, an error field in the response envelope, or an
// undecodable body.
type NetworkError struct {
	Op      string // e.g. "GET address/erd1..."
	Status  int    // HTTP status, 0 if no response was received
	Code    string // envelope code, if any
	Message string // envelope error text, if any
	Err     error  // underlying cause, if any
}

// Error implements error.
func (e *NetworkError) Error() string {
	var sb strings.Builder
	sb.WriteString("proxy: ")
	sb.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&sb, ": status %d", e.Status)
	}
	if e.Code != "" {
		fmt.Fprintf(&sb, ": code %s", e.Code)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is matches any *NetworkError, so errors.Is(err, ErrNetwork) tells
// network failures apart from local ones.
func (e *NetworkError) Is(target error) bool {
	_, ok := target.(*NetworkError)
	return ok
}

// ErrNetwork is the sentinel for errors.Is comparisons.
var ErrNetwork = &NetworkError{}
