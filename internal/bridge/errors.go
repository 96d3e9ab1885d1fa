package bridge

import "errors"

var (
	ErrToolNotFound    = errors.New("bridge: tool not found")
	ErrHostUnavailable = errors.New("bridge: host session unavailable")
	ErrZeroProgress    = errors.New("bridge: progress span is zero")
	ErrInvalidProgress = errors.New("bridge: progress is not finite")
)
