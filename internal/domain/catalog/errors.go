package catalog

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownService = errors.New("unknown_service")
	ErrInvalidCatalog = errors.New("invalid catalog")
)
