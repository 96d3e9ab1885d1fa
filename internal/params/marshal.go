package params

// FromPositional tokenizes a single parameter string and coerces the tokens
// in declared order.
func FromPositional(tool string, specs []Spec, raw string) ([]Value, error) {
	return Coerce(tool, specs, BreakIntoParameters(raw))
}

// FromNamed reconciles sent name/value pairs against the declared order and
// coerces the result.
func FromNamed(tool string, specs []Spec, names, values []string) ([]Value, error) {
	ordered, err := Reconcile(tool, Names(specs), names, values)
	if err != nil {
		return nil, err
	}
	return Coerce(tool, specs, ordered)
}
