package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrBackpressure = errors.New("collaborator queue full")
	ErrStopped      = errors.New("worker pool stopped")
)
