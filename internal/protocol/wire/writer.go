package wire

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// Writer encodes frames onto the outbound stream. Writes are buffered until
// Flush. It is not safe for concurrent use; callers serialize whole messages.
type Writer struct {
	w       *bufio.Writer
	enc     Encoding
	scratch [MaxVarintLen]byte
}

func NewWriter(w io.Writer, enc Encoding) *Writer {
	return &Writer{w: bufio.NewWriter(w), enc: enc}
}

// WriteVarint writes n as base-128 groups with the continuation bit on every
// byte but the last. Zero is a single zero byte.
func (w *Writer) WriteVarint(n uint64) error {
	b := AppendVarint(w.scratch[:0], n)
	_, err := w.w.Write(b)
	return err
}

// WriteText writes the encoded byte length of s followed by the encoded bytes.
func (w *Writer) WriteText(s string) error {
	payload, err := encodeText(w.enc, s)
	if err != nil {
		return err
	}
	if err := w.WriteVarint(uint64(len(payload))); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err = w.w.Write(payload)
	return err
}

func (w *Writer) WriteInt32(v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := w.w.Write(buf[:])
	return err
}

func (w *Writer) WriteFloat32(v float32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	_, err := w.w.Write(buf[:])
	return err
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}

// AppendVarint appends the varint encoding of n to dst.
func AppendVarint(dst []byte, n uint64) []byte {
	return binary.AppendUvarint(dst, n)
}
