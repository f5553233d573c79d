package value

import (
	"encoding/hex"
	"fmt"
)

// Reference wraps a vendor REF pointer. to_hex_string/hex_size are spec §8
// round-trip-law members: "for all references r: to_hex_string(r) ∈
// [0-9a-f]* and hex_size(r) = length(to_hex_string(r))". Grounded on the
// teacher's GUID byte-swapping String() in convert.go, generalized from a
// fixed 16-byte GUID to an arbitrary-length opaque REF byte string.
type Reference struct {
	raw []byte
}

// NewReference wraps raw REF bytes as fetched from a locator column.
func NewReference(raw []byte) Reference {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return Reference{raw: cp}
}

// HexString returns the lowercase hex encoding of the REF's raw bytes.
func (r Reference) HexString() string {
	return hex.EncodeToString(r.raw)
}

// HexSize returns length(HexString()) without allocating the string,
// satisfying the spec's literal round-trip law.
func (r Reference) HexSize() int {
	return len(r.raw) * 2
}

// ParseReferenceHex is the inverse of HexString.
func ParseReferenceHex(s string) (Reference, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Reference{}, fmt.Errorf("value: invalid reference hex %q: %w", s, err)
	}
	return Reference{raw: b}, nil
}

// Bytes returns the raw REF bytes.
func (r Reference) Bytes() []byte { return r.raw }

// Object wraps a named SQL object type instance: an ordered set of
// attribute values plus a null-indicator per attribute; it holds no vendor
// object or indicator pointer. Grounded on spec §3's "Object"
// entry and §4.5's "for object columns, additionally allocate an
// object-indicator pointer array".
type Object struct {
	TypeName   string
	Attrs      []string
	Values     []any
	NullAttrs  []bool
}

// Attr returns the value of the named attribute, or (nil, false) if the
// attribute is NULL or unknown.
func (o Object) Attr(name string) (any, bool) {
	for i, a := range o.Attrs {
		if a == name {
			if o.NullAttrs[i] {
				return nil, false
			}
			return o.Values[i], true
		}
	}
	return nil, false
}

// Collection wraps a VARRAY or nested-table instance (spec §3).
type Collection struct {
	ElemTypeName string
	Elems        []any
	NullElems    []bool
	IsVarray     bool // false ⇒ nested table
}

// Len reports the number of elements (including trailing NULLs for a
// nested table that has not been compacted).
func (c Collection) Len() int { return len(c.Elems) }

// VectorFormat names the element encoding of a VECTOR column (23ai).
type VectorFormat int

const (
	VectorFloat32 VectorFormat = iota
	VectorFloat64
	VectorInt8
	VectorBinary
)

// Vector wraps Oracle 23ai's VECTOR datatype (SPEC_FULL.md §3 Vector;
// grounded on original_source's vector.c, gated by the environment's
// vector capability flag inferred in internal/oci).
type Vector struct {
	Format  VectorFormat
	Float32 []float32
	Float64 []float64
	Int8    []int8
}

// Dims reports the vector's dimensionality for its active format.
func (v Vector) Dims() int {
	switch v.Format {
	case VectorFloat32:
		return len(v.Float32)
	case VectorFloat64:
		return len(v.Float64)
	case VectorInt8, VectorBinary:
		return len(v.Int8)
	default:
		return 0
	}
}
