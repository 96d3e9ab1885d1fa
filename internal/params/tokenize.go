package params

import "strings"

type tokenState int

const (
	stateIdle tokenState = iota
	stateUnquoted
	stateQuoted
)

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// BreakIntoParameters splits a positional parameter string into tokens.
// Whitespace separates tokens; a double quote opens a token that runs to the
// next double quote. There are no escapes. A token still open at the end of
// input is kept, and runs of whitespace never produce empty tokens. A quoted
// token that is open but has no characters at end of input is dropped.
func BreakIntoParameters(s string) []string {
	tokens := make([]string, 0, 8)
	var cur strings.Builder
	building := false
	state := stateIdle

	for _, c := range s {
		switch state {
		case stateIdle:
			if c == '"' {
				state = stateQuoted
			} else if !isSpace(c) {
				cur.WriteRune(c)
				building = true
				state = stateUnquoted
			}
		case stateUnquoted:
			if isSpace(c) {
				tokens = append(tokens, cur.String())
				cur.Reset()
				building = false
				state = stateIdle
			} else {
				cur.WriteRune(c)
			}
		case stateQuoted:
			if c == '"' {
				tokens = append(tokens, cur.String())
				cur.Reset()
				building = false
				state = stateIdle
			} else {
				cur.WriteRune(c)
				building = true
			}
		}
	}
	if building {
		tokens = append(tokens, cur.String())
	}
	return tokens
}
