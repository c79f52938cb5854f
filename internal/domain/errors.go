package domain

import "errors"

var (
	// ErrInvalidArgument signals a missing or malformed caller argument.
	// It is always reported before any network call.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrProviderUnavailable signals an unreachable, failing or timed-out embedding provider.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	// ErrStoreUnavailable signals an unreachable vector store or a protocol-level store error.
	ErrStoreUnavailable = errors.New("vector store unavailable")
	// ErrNotFound signals a missing record. Facade operations turn it into an absent result.
	ErrNotFound = errors.New("not found")
)
