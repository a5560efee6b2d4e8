package cache

import "errors"

// Sentinel error kinds for this package.
var (
	ErrMiss   = errors.New("cache miss")
	ErrDecode = errors.New("cache entry undecodable")
)
