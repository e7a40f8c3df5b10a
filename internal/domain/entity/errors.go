package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for caller-input and provider throttling failures.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrRateLimited     = errors.New("provider rate limit exceeded")
)

// ProviderError is a non-2xx provider response other than a rate limit.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider request failed with status %d: %s", e.Status, e.Body)
}

// TransportError wraps a network or response-decoding failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PersistenceError wraps a durable-storage read or write failure. It is
// logged and swallowed at the persistence boundary, never surfaced to the
// store's callers.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsRetryable reports whether the orchestrator may retry the failure.
// Only transport failures qualify; rate limits and provider errors are
// surfaced as-is.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
