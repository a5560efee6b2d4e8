package probe

import "errors"

// Sentinel kinds for probe failures.
var (
	ErrUnhealthy = errors.New("service unhealthy")
	ErrRequest   = errors.New("request failed")
	ErrStatus    = errors.New("unexpected status")
)
