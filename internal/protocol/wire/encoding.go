package wire

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Encoding is the fixed text encoding of one session.
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingUTF16LE Encoding = "utf-16le"
)

// ParseEncoding accepts the config spellings of a supported encoding.
func ParseEncoding(raw string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "utf-16le", "utf16le", "utf-16", "utf16", "wide":
		return EncodingUTF16LE, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, raw)
	}
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func encodeText(enc Encoding, s string) ([]byte, error) {
	switch enc {
	case EncodingUTF8, "":
		return []byte(s), nil
	case EncodingUTF16LE:
		return utf16le.NewEncoder().Bytes([]byte(s))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, string(enc))
	}
}

func decodeText(enc Encoding, b []byte) (string, error) {
	switch enc {
	case EncodingUTF8, "":
		return string(b), nil
	case EncodingUTF16LE:
		if len(b)%2 != 0 {
			return "", ErrOddWideTextBytes
		}
		out, err := utf16le.NewDecoder().Bytes(b)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrProtocolDesync, err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, string(enc))
	}
}
