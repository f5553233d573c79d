package lob

import (
	"github.com/go-ocilib/ocigo/internal/strbridge"
)

// LongKind distinguishes a character LONG from a binary LONG RAW.
type LongKind int

const (
	LongChar LongKind = iota
	LongBinary
)

// PieceSource supplies successive pieces of a LONG column's value as the
// vendor fetch call returns them. Implemented by the root package's
// statement/result-set machinery.
type PieceSource interface {
	// NextPiece returns the next piece's bytes (in the session charset
	// for LongChar) and whether this was the last piece.
	NextPiece() (piece []byte, last bool, err error)
}

// Long implements the piecewise LONG column engine (C11): it concatenates
// pieces into a growing buffer, tracks size (in database text bytes) and
// piecesize (the last piece's byte length), and exposes a character- or
// byte-oriented Read that mirrors the LOB engine's unit discipline (spec
// §4.7).
type Long struct {
	Kind      LongKind
	buf       []byte
	size      int // accumulated database-native bytes
	pieceSize int // last piece's byte length
	readOff   int // read cursor, in database-native byte units
}

// NewLong returns an empty Long ready to accumulate pieces.
func NewLong(kind LongKind) *Long {
	return &Long{Kind: kind}
}

// Fetch drains src to completion, growing the internal buffer as pieces
// arrive.
func (l *Long) Fetch(src PieceSource) error {
	for {
		piece, last, err := src.NextPiece()
		if err != nil {
			return err
		}
		l.buf = append(l.buf, piece...)
		l.pieceSize = len(piece)
		l.size += len(piece)
		if last {
			return nil
		}
	}
}

// Size reports the accumulated size in database-native bytes.
func (l *Long) Size() int { return l.size }

// PieceSize reports the last piece's byte length.
func (l *Long) PieceSize() int { return l.pieceSize }

// ReconcileWideHost converts the buffer in place from UTF-16 to UTF-32 when
// the host expresses wide characters as UTF-32 (a rare platform quirk
// detected at environment init, spec §4.7). sizeOfDBChar is 2 for a UTF-16
// session charset.
func (l *Long) ReconcileWideHost(sizeOfDBChar int) error {
	if l.Kind != LongChar || sizeOfDBChar != 2 {
		return nil
	}
	s, err := strbridge.DecodeWide(l.buf[:l.size])
	if err != nil {
		return err
	}
	runes := []rune(s)
	out := make([]byte, 0, len(runes)*4)
	for _, r := range runes {
		out = append(out,
			byte(r), byte(r>>8), byte(r>>16), byte(r>>24))
	}
	l.buf = out
	l.size = len(out)
	return nil
}

// Read returns up to min(len, remaining) host units starting at the
// current offset and advances it. For LongChar, len and the returned
// count are in host-character units; the internal offset bookkeeping
// remains in database-character-byte units, matching spec §4.7's note
// that the two are deliberately different units.
func (l *Long) Read(n int) ([]byte, error) {
	if l.Kind == LongBinary {
		remaining := l.size - l.readOff
		if n > remaining {
			n = remaining
		}
		out := l.buf[l.readOff : l.readOff+n]
		l.readOff += n
		return out, nil
	}

	s, err := strbridge.DecodeWide(l.buf[l.readOff:l.size])
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	if n > len(runes) {
		n = len(runes)
	}
	want := string(runes[:n])
	consumed, err := strbridge.EncodeWide(want)
	if err != nil {
		return nil, err
	}
	l.readOff += len(consumed)
	return []byte(want), nil
}
