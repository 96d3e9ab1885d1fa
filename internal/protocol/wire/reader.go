package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxVarintLen is the longest encoding of a 64-bit varint.
const MaxVarintLen = binary.MaxVarintLen64

// Limits constrains decode memory use.
type Limits struct {
	MaxTextBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		MaxTextBytes: 64 * 1024 * 1024,
	}
}

// Reader decodes frames from the inbound stream. It is owned by a single
// goroutine and is not safe for concurrent use.
type Reader struct {
	r      *bufio.Reader
	enc    Encoding
	limits Limits
}

func NewReader(r io.Reader, enc Encoding, limits Limits) *Reader {
	if limits.MaxTextBytes == 0 {
		limits = DefaultLimits()
	}
	return &Reader{r: bufio.NewReader(r), enc: enc, limits: limits}
}

// ReadVarint reads one base-128 unsigned integer, least-significant group first.
func (r *Reader) ReadVarint() (uint64, error) {
	return ReadVarint(r.r)
}

// ReadText reads a varint byte length followed by that many encoded bytes.
func (r *Reader) ReadText() (string, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	if n > r.limits.MaxTextBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTextTooLarge, n)
	}
	buf := make([]byte, n)
	got, err := io.ReadFull(r.r, buf)
	if err != nil {
		// the length prefix already started this value
		return "", classifyRead(err, got+1, int(n)+1)
	}
	return decodeText(r.enc, buf)
}

// ReadInt32 reads a fixed 4-byte little-endian signed integer.
func (r *Reader) ReadInt32() (int32, error) {
	var buf [4]byte
	got, err := io.ReadFull(r.r, buf[:])
	if err != nil {
		return 0, classifyRead(err, got, len(buf))
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// ReadFloat32 reads a fixed 4-byte little-endian IEEE-754 float.
func (r *Reader) ReadFloat32() (float32, error) {
	var buf [4]byte
	got, err := io.ReadFull(r.r, buf[:])
	if err != nil {
		return 0, classifyRead(err, got, len(buf))
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:])), nil
}

// ReadVarint decodes one varint from any byte reader.
func ReadVarint(r io.ByteReader) (uint64, error) {
	var x uint64
	var s uint
	for i := 0; i < MaxVarintLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i > 0 && errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return 0, classifyRead(err, i, i+1)
		}
		if b < 0x80 {
			if i == MaxVarintLen-1 && b > 1 {
				return 0, ErrVarintOverflow
			}
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, ErrVarintOverflow
}
