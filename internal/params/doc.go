// Package params turns an inbound parameter payload into the typed, ordered
// argument list a tool declares.
//
// Ownership boundary:
// - positional tokenizing of a single parameter string
// - reconciling sent parameter names against declared order
// - coercing raw text to each declared primitive type
//
// Every failure is an *Error whose message is fit to send back to the
// orchestrator verbatim; errors.Is matches its sentinel.
package params
