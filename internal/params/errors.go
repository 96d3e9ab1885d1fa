package params

import (
	"errors"
	"fmt"
)

var (
	ErrParameterCountMismatch   = errors.New("params: parameter count mismatch")
	ErrUnknownParameterName     = errors.New("params: unknown parameter name")
	ErrDuplicateParameterName   = errors.New("params: duplicate parameter name")
	ErrTypeConversion           = errors.New("params: type conversion failed")
	ErrUnsupportedParameterType = errors.New("params: unsupported parameter type")
)

// Error is a marshalling failure. Message is the orchestrator-facing text.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
