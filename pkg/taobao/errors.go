package taobao

import (
	"errors"
	"fmt"
)

// Sentinel failures surfaced by the client. All of them are recoverable:
// callers degrade to an empty result set instead of aborting the request.
var (
	ErrTimeout          = errors.New("taobao: request timed out")
	ErrConnection       = errors.New("taobao: connection failed")
	ErrMalformed        = errors.New("taobao: malformed response")
	ErrNotFound         = errors.New("taobao: not found")
	ErrInvalidImageData = errors.New("taobao: invalid image data")
)

// UpstreamError carries the provider-reported error envelope.
type UpstreamError struct {
	Code    string
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("taobao: upstream error %s: %s", e.Code, e.Message)
}
