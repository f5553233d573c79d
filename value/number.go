// Package value implements the data-model types of component C9: Date,
// Timestamp, Interval, Number, Reference, Object, Collection, and Vector.
// Each is a plain Go value that holds no vendor descriptor (Number keeps
// its decimal text); descriptors for binds are built from these values by
// the statement layer, so there are no owned or borrowed variants here.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number mirrors the teacher's Decimal type (types.go), generalized to the
// vendor's internal NUMBER encoding and its documented infinity sentinels.
// Grounded on spec §4.5's "unified conversion function" and the round-trip
// law in §8: translate(translate(v, k'), k) = v for all representable v.
type Number struct {
	text string // canonical fixed-point or sentinel text form
}

const (
	posInfinityText = "~"
	negInfinityText = "-~"
)

// NewNumberFromFloat64 builds a Number from a float64, using the vendor's
// sentinel text for +/-Inf.
func NewNumberFromFloat64(f float64) Number {
	switch {
	case math.IsInf(f, 1):
		return Number{text: posInfinityText}
	case math.IsInf(f, -1):
		return Number{text: negInfinityText}
	default:
		return Number{text: strconv.FormatFloat(f, 'f', -1, 64)}
	}
}

// NewNumberFromInt64 builds a Number from an exact integer.
func NewNumberFromInt64(i int64) Number {
	return Number{text: strconv.FormatInt(i, 10)}
}

// ParseNumber parses the vendor's fixed-point text representation,
// including the documented "~" / "-~" infinity sentinels.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == posInfinityText || s == negInfinityText {
		return Number{text: s}, nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return Number{}, fmt.Errorf("value: invalid number text %q: %w", s, err)
	}
	return Number{text: s}, nil
}

// IsPosInfinity reports whether this Number is the vendor's "infinity".
func (n Number) IsPosInfinity() bool { return n.text == posInfinityText }

// IsNegInfinity reports whether this Number is the vendor's "negative infinity".
func (n Number) IsNegInfinity() bool { return n.text == negInfinityText }

// Float64 converts to float64; infinities convert to math.Inf.
func (n Number) Float64() (float64, error) {
	switch n.text {
	case posInfinityText:
		return math.Inf(1), nil
	case negInfinityText:
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(n.text, 64)
}

// Int64 converts to int64; fails for non-integral or infinite values,
// yielding a type-mismatch condition the caller maps to Kind.
func (n Number) Int64() (int64, error) {
	if n.IsPosInfinity() || n.IsNegInfinity() {
		return 0, fmt.Errorf("value: cannot convert infinity to int64")
	}
	f, err := strconv.ParseFloat(n.text, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("value: %q is not an integral number", n.text)
	}
	return int64(f), nil
}

// String returns the canonical text form, including sentinel strings.
func (n Number) String() string { return n.text }
