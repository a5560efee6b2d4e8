package repository

import "errors"

// Sentinel kinds for snapshot loading errors.
var (
	ErrLoadCatalog   = errors.New("load catalog")
	ErrLoadProviders = errors.New("load providers")
	ErrInvalidRecord = errors.New("invalid record")
)
