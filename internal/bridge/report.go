package bridge

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"unicode"

	"github.com/danmuck/modellerbridge/internal/host"
)

// FormatRuntimeError renders err as the RuntimeError payload: a
// "<Type>: <message>" header followed by the call stack, innermost frame
// first.
func FormatRuntimeError(err error) string {
	typ, msg, frames := describeError(err)
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n\nStack trace below:", typ, msg)
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		fmt.Fprintf(&b, "\n  File '%s', line %d, in %s", f.File, f.Line, f.Function)
	}
	return b.String()
}

func describeError(err error) (string, string, []host.Frame) {
	if err == nil {
		return "Error", "", nil
	}
	var te *host.ToolError
	if errors.As(err, &te) {
		typ := strings.TrimSpace(te.Type)
		if typ == "" {
			typ = "ToolError"
		}
		return typ, te.Message, te.Frames
	}
	return errorTypeName(err), err.Error(), nil
}

// errorTypeName is the bare Go type name of err, or "Error" for unexported
// types such as the ones errors.New and fmt.Errorf return.
func errorTypeName(err error) string {
	name := strings.TrimLeft(fmt.Sprintf("%T", err), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		return "Error"
	}
	return name
}

// panicError converts a recovered panic into a ToolError carrying the
// panicking goroutine's stack, outermost frame first.
func panicError(recovered any) *host.ToolError {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var inner []host.Frame
	for {
		f, more := frames.Next()
		if f.Function != "" && !strings.HasPrefix(f.Function, "runtime.") {
			inner = append(inner, host.Frame{File: f.File, Line: f.Line, Function: f.Function})
		}
		if !more {
			break
		}
	}
	outer := make([]host.Frame, len(inner))
	for i, f := range inner {
		outer[len(inner)-1-i] = f
	}

	te := &host.ToolError{Type: "Panic", Message: fmt.Sprint(recovered), Frames: outer}
	if err, ok := recovered.(error); ok {
		te.Err = err
	}
	return te
}

// formatResult renders a tool return value for RunCompleteWithValue.
func formatResult(v any) string {
	switch r := v.(type) {
	case string:
		return r
	case bool:
		return formatBool(r)
	case float64:
		return strconv.FormatFloat(r, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(r), 'g', -1, 32)
	case fmt.Stringer:
		return r.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func toolNotFoundMessage(namespace string) string {
	return "A tool with the following namespace could not be found: " + namespace
}

func hostUnavailableError() error {
	return &host.ToolError{
		Type:    "HostSessionError",
		Message: "host session unavailable",
		Err:     ErrHostUnavailable,
	}
}
