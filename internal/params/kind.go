package params

import (
	"fmt"
	"strings"
)

// Kind is a declared primitive parameter type.
type Kind string

const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
	KindBool   Kind = "bool"
)

// Spec is one declared tool parameter. Declared order is authoritative.
type Spec struct {
	Name string
	Type string
}

// Value is one coerced argument. Typed holds int64, float64, string or bool.
type Value struct {
	Name  string
	Kind  Kind
	Raw   string
	Typed any
}

// ParseKind resolves a declared type name.
func ParseKind(declared string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(declared))) {
	case KindInt:
		return KindInt, true
	case KindFloat:
		return KindFloat, true
	case KindString:
		return KindString, true
	case KindBool:
		return KindBool, true
	default:
		return "", false
	}
}

// Names returns the declared parameter names in order.
func Names(specs []Spec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Name
	}
	return out
}

// Describe renders values as {name:raw} pairs for run-history entries.
func Describe(values []Value) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "{%s:%s}", v.Name, v.Raw)
	}
	return b.String()
}
