// Package wire owns the byte-level framing shared by both bridge streams.
//
// Ownership boundary:
// - base-128 varint length prefixes
// - length-prefixed text in the session's fixed encoding
// - unprefixed little-endian int32/float32 values
//
// Every read distinguishes a peer that closed cleanly between values
// (ErrStreamClosed) from one that stopped mid-value (ErrProtocolDesync).
// Both are fatal to the session.
package wire
