package services

import (
	"errors"
	"fmt"
)

// UpstreamError marks a network or parse failure talking to an external
// provider. Callers fall back to cached or default data; the request
// boundary maps it to a gateway status.
type UpstreamError struct {
	Provider string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstreamErr(provider string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Err: err}
}

func upstreamStatusErr(provider string, status int) *UpstreamError {
	return &UpstreamError{Provider: provider, Status: status}
}

// SelectionError reports an out-of-range or malformed choice index. Its
// message is shown to the client verbatim.
type SelectionError struct {
	Message string
}

func (e *SelectionError) Error() string { return e.Message }

var (
	// ErrNotFound means no entity matched above the confidence or data threshold.
	ErrNotFound = errors.New("not found")
	// ErrNoFinancialData means both statement sources were empty.
	ErrNoFinancialData = errors.New("no financial data available")
)
