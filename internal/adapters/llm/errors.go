package llm

import "errors"

// Sentinel error kinds for this package.
var (
	ErrTransport = errors.New("llm transport failed")
	ErrStatus    = errors.New("llm returned error status")
	ErrEnvelope  = errors.New("llm response envelope invalid")
)
