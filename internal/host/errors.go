package host

import (
	"fmt"
	"strings"
)

// Frame is one call-stack entry of a tool failure.
type Frame struct {
	File     string
	Line     int
	Function string
}

// ToolError is a failure raised while a tool ran. Frames are ordered
// outermost first, as a traceback prints them.
type ToolError struct {
	Type    string
	Message string
	Frames  []Frame
	Err     error
}

func (e *ToolError) Error() string {
	typ := strings.TrimSpace(e.Type)
	if typ == "" {
		typ = "ToolError"
	}
	return fmt.Sprintf("%s: %s", typ, e.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
