package params

import (
	"fmt"
	"strings"
)

// Reconcile reorders sent name/value pairs into the declared order and
// returns the raw values aligned with expected. tool only labels messages.
func Reconcile(tool string, expected, names, values []string) ([]string, error) {
	if len(names) != len(values) {
		return nil, newError(
			ErrParameterCountMismatch,
			"The tool '%s' was sent %d parameter names but %d parameter values!",
			tool, len(names), len(values),
		)
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return nil, newError(
				ErrDuplicateParameterName,
				"The parameter '%s' was sent more than once while calling the tool '%s'!",
				name, tool,
			)
		}
		seen[name] = struct{}{}
	}

	index := make(map[string]int, len(expected))
	for i, name := range expected {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := index[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	missing := make([]string, 0)
	for _, name := range expected {
		if _, ok := seen[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(names) != len(expected) {
		return nil, newError(ErrParameterCountMismatch, "%s", mismatchMessage(tool, unknown, missing))
	}
	if len(unknown) > 0 {
		return nil, newError(ErrUnknownParameterName, "%s", mismatchMessage(tool, unknown, missing))
	}

	ordered := make([]string, len(expected))
	for i, name := range names {
		ordered[index[name]] = values[i]
	}
	return ordered, nil
}

func mismatchMessage(tool string, unknown, missing []string) string {
	lines := make([]string, 0, len(unknown)+len(missing))
	for _, name := range unknown {
		lines = append(lines, fmt.Sprintf("Unable to find a parameter called '%s' in the tool '%s' that was sent!", name, tool))
	}
	for _, name := range missing {
		lines = append(lines, fmt.Sprintf("A parameter called '%s' was not sent while calling the tool '%s'!", name, tool))
	}
	if len(lines) == 0 {
		return fmt.Sprintf("The tool '%s' was called with the wrong number of parameters!", tool)
	}
	return strings.Join(lines, "\r\n")
}
