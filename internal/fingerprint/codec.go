package fingerprint

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrDecode is returned when no codec in the chain can decode a file. The
// caller excludes the file from consolidation and fingerprinting; the batch
// continues.
var ErrDecode = errors.New("content not decodable by any known codec")

type codec struct {
	name   string
	decode func([]byte) (string, error)
}

// codecChain is tried in order; the first codec that decodes without error
// wins. ISO-8859-1 accepts every byte value, so the chain only fails outright
// on content every codec rejects (NUL bytes, i.e. binary payloads).
var codecChain = []codec{
	{"utf-8", decodeUTF8},
	{"windows-1252", decodeWindows1252},
	{"iso-8859-1", decodeLatin1},
}

// Decode runs the codec fallback chain over raw bytes
func Decode(raw []byte) (string, error) {
	if bytes.IndexByte(raw, 0x00) >= 0 {
		return "", fmt.Errorf("%w: content contains NUL bytes", ErrDecode)
	}
	for _, c := range codecChain {
		if s, err := c.decode(raw); err == nil {
			return s, nil
		}
	}
	return "", ErrDecode
}

func decodeUTF8(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", errors.New("invalid UTF-8")
	}
	return string(raw), nil
}

// windows-1252 leaves five code points undefined; reject those instead of
// silently emitting replacement runes.
var cp1252Undefined = map[byte]bool{0x81: true, 0x8D: true, 0x8F: true, 0x90: true, 0x9D: true}

func decodeWindows1252(raw []byte) (string, error) {
	for _, b := range raw {
		if cp1252Undefined[b] {
			return "", fmt.Errorf("undefined windows-1252 byte 0x%02X", b)
		}
	}
	return charmap.Windows1252.NewDecoder().String(string(raw))
}

func decodeLatin1(raw []byte) (string, error) {
	return charmap.ISO8859_1.NewDecoder().String(string(raw))
}
