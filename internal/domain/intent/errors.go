package intent

import "errors"

// Sentinel error kinds carried in Outcome.Err when the model reply is unusable.
var (
	ErrMalformedReply = errors.New("malformed model reply")
	ErrEmptyReply     = errors.New("model returned no candidates")
)
