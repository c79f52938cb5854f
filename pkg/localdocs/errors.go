package localdocs

import "github.com/kailas-cloud/localdocs/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArgument     = domain.ErrInvalidArgument
	ErrProviderUnavailable = domain.ErrProviderUnavailable
	ErrStoreUnavailable    = domain.ErrStoreUnavailable
	ErrNotFound            = domain.ErrNotFound
)
