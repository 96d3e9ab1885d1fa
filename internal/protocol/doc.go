// Package protocol owns the bridge's signal contract.
//
// Ownership boundary:
// - inbound and outbound signal codes
// - signal naming for logs and metrics
//
// Byte-level framing lives in protocol/wire. Signal values are shared with
// the orchestrator and must never be renumbered.
package protocol
