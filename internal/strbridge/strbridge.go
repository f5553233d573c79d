// Package strbridge converts between caller-native text (UTF-8, as all Go
// strings are) and the database's internal text encoding (UTF-16 in wide
// mode, or a single-byte/UTF-8 ANSI charset), per the driver's two build
// modes (spec §6 Character encoding).
//
// The teacher hand-rolls UTF-16 encode/decode with manual surrogate-pair
// arithmetic (stringToUTF16, utf16ToString in convert.go/rows.go). This
// package replaces that with golang.org/x/text's transcoding machinery for
// any full-string transcode, keeping the hand-rolled approach only where a
// single code unit must be inspected in place (e.g. truncation retry
// loops that only need to know if a lone low surrogate was cut).
package strbridge

import (
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Mode selects the database-side text encoding.
type Mode int

const (
	// Wide mode: native text is UTF-16 (the vendor's NCHAR/NVARCHAR wire
	// format, and CHAR/VARCHAR2 under a Unicode NLS_LANG).
	Wide Mode = iota
	// ANSI mode: native text is a single-byte charset, or UTF-8 when
	// NLS_LANG names a UTF8 charset.
	ANSI
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ToDB encodes s from UTF-8 into the database's wire encoding for mode.
func ToDB(s string, mode Mode) ([]byte, error) {
	switch mode {
	case Wide:
		return EncodeWide(s)
	default:
		return []byte(s), nil
	}
}

// EncodeWide returns the little-endian UTF-16 bytes for s.
func EncodeWide(s string) ([]byte, error) {
	out, _, err := transform.String(utf16LE.NewEncoder(), s)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// DecodeWide decodes little-endian UTF-16 bytes into a UTF-8 string.
func DecodeWide(b []byte) (string, error) {
	out, _, err := transform.Bytes(utf16LE.NewDecoder(), b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// FromDB decodes database-encoded bytes into a UTF-8 string for mode.
func FromDB(b []byte, mode Mode) (string, error) {
	switch mode {
	case Wide:
		return DecodeWide(b)
	default:
		return string(b), nil
	}
}

// RuneWidth16 reports how many UTF-16 code units r occupies — 1 for the
// BMP, 2 for a surrogate pair. Used by piecewise LOB/LONG code that must
// reason about character-vs-unit counts without a full transcode.
func RuneWidth16(r rune) int {
	if utf16.IsSurrogate(r) {
		return 2
	}
	if r > 0xFFFF {
		return 2
	}
	return 1
}
