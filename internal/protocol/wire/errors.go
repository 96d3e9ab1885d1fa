package wire

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrStreamClosed     = errors.New("wire: stream closed")
	ErrProtocolDesync   = errors.New("wire: protocol desync")
	ErrUnknownEncoding  = errors.New("wire: unknown text encoding")
	ErrVarintOverflow   = fmt.Errorf("%w: varint overflows 64 bits", ErrProtocolDesync)
	ErrTextTooLarge     = fmt.Errorf("%w: text frame exceeds limit", ErrProtocolDesync)
	ErrOddWideTextBytes = fmt.Errorf("%w: odd byte count for utf-16 text", ErrProtocolDesync)
)

// IsFatal reports whether err means the session can no longer use the stream.
func IsFatal(err error) bool {
	return errors.Is(err, ErrStreamClosed) || errors.Is(err, ErrProtocolDesync)
}

// classifyRead maps a low-level read failure to the wire taxonomy. consumed is
// the number of bytes of the current value already read.
func classifyRead(err error, consumed, want int) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStreamClosed) || errors.Is(err, ErrProtocolDesync) {
		return err
	}
	if consumed == 0 && (errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)) {
		return ErrStreamClosed
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: short read (%d of %d bytes)", ErrProtocolDesync, consumed, want)
	}
	return fmt.Errorf("%w: %v", ErrStreamClosed, err)
}
