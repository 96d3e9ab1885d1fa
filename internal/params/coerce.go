package params

import (
	"strconv"
	"strings"
)

var (
	truthy = map[string]struct{}{"true": {}, "t": {}, "tru": {}, "tr": {}}
	falsy  = map[string]struct{}{"false": {}, "f": {}, "fals": {}, "fal": {}}
)

// Coerce converts raw values, already in declared order, to their declared
// types. Nothing is returned unless every value converts.
func Coerce(tool string, specs []Spec, raws []string) ([]Value, error) {
	if len(specs) != len(raws) {
		return nil, newError(
			ErrParameterCountMismatch,
			"The tool '%s' was executed with the wrong number of arguments: expected %d, got %d.",
			tool, len(specs), len(raws),
		)
	}

	kinds := make([]Kind, len(specs))
	for i, spec := range specs {
		kind, ok := ParseKind(spec.Type)
		if !ok {
			return nil, newError(
				ErrUnsupportedParameterType,
				"The parameter '%s' of the tool '%s' uses the type '%s', which is not supported by this bridge!",
				spec.Name, tool, spec.Type,
			)
		}
		kinds[i] = kind
	}

	out := make([]Value, len(specs))
	for i, spec := range specs {
		typed, err := convert(kinds[i], raws[i])
		if err != nil {
			return nil, err
		}
		out[i] = Value{Name: spec.Name, Kind: kinds[i], Raw: raws[i], Typed: typed}
	}
	return out, nil
}

func convert(kind Kind, raw string) (any, error) {
	switch kind {
	case KindInt:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, newError(ErrTypeConversion, "Unable to convert '%s' to an integer!", raw)
		}
		return v, nil
	case KindFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, newError(ErrTypeConversion, "Unable to convert '%s' to a float!", raw)
		}
		return v, nil
	case KindBool:
		v, err := ParseBool(raw)
		if err != nil {
			return nil, err
		}
		return v, nil
	case KindString:
		return raw, nil
	default:
		return nil, newError(ErrUnsupportedParameterType, "The type '%s' is not recognized by this bridge!", string(kind))
	}
}

// ParseBool matches the case-insensitive truthy and falsy prefixes of
// "true" and "false" that the orchestrator accepts.
func ParseBool(raw string) (bool, error) {
	lower := strings.ToLower(raw)
	if _, ok := truthy[lower]; ok {
		return true, nil
	}
	if _, ok := falsy[lower]; ok {
		return false, nil
	}
	return false, newError(ErrTypeConversion, "Unable to convert '%s' to a bool!", raw)
}
