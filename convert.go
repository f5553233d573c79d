package ocigo

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
	"unsafe"

	"github.com/go-ocilib/ocigo/internal/oci"
	"github.com/go-ocilib/ocigo/internal/strbridge"
	"github.com/go-ocilib/ocigo/value"
)

// GUID is a 16-byte identifier bound as Oracle RAW(16), the common home for
// SYS_GUID()-populated columns. Kept from the teacher's convert.go (same
// byte layout, same ParseGUID), but no longer byte-swapped to Microsoft's
// mixed-endian GUID wire format since Oracle RAW columns are opaque bytes
// with no vendor-mandated internal ordering.
type GUID [16]byte

// ParseGUID parses a GUID string in the format xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx.
func ParseGUID(s string) (GUID, error) {
	s = stripHyphens(s)
	if len(s) != 32 {
		return GUID{}, fmt.Errorf("ocigo: invalid GUID length: %d", len(s))
	}
	var g GUID
	for i := 0; i < 16; i++ {
		hi, err := hexVal(s[i*2])
		if err != nil {
			return GUID{}, err
		}
		lo, err := hexVal(s[i*2+1])
		if err != nil {
			return GUID{}, err
		}
		g[i] = byte(hi<<4 | lo)
	}
	return g, nil
}

func stripHyphens(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

func hexVal(c byte) (int64, error) {
	switch {
	case c >= '0' && c <= '9':
		return int64(c - '0'), nil
	case c >= 'a' && c <= 'f':
		return int64(c-'a') + 10, nil
	case c >= 'A' && c <= 'F':
		return int64(c-'A') + 10, nil
	default:
		return 0, fmt.Errorf("ocigo: invalid hex digit %q", c)
	}
}

// Bind is the result of converting one Go value into its OCI bind
// representation: an external datatype code (the SQLT_* family; unlike
// ODBC, OCI has no separate "C type"/"SQL type" pair, only one external
// type per bind call), a flat byte buffer for scalar values, a null
// indicator, and — for descriptor-backed types OCI cannot bind as raw
// bytes (TIMESTAMP [WITH TIME ZONE], INTERVAL) — a Descriptor
// payload that the statement layer turns into a real OCI descriptor via
// OCIDescriptorAlloc plus the matching OCIDateTimeConstruct/
// OCIIntervalSetYearMonth/etc call, since constructing those requires a
// live environment handle this package does not hold.
type Bind struct {
	Buffer     []byte
	SQLType    int32
	Size       int // column size hint (chars for text, bytes otherwise)
	Scale      int32
	Indicator  int16
	Descriptor interface{}
}

// TimestampPayload is the Descriptor value for value.Timestamp/TimestampTZ
// and time.Time binds.
type TimestampPayload struct {
	Y, Mo, D, H, Mi, S int
	Nanosecond         int
	OffsetMinutes      int // meaningful only when WithTZ is set
	WithTZ             bool
}

// IntervalYMPayload is the Descriptor value for value.IntervalYearMonth binds.
type IntervalYMPayload struct {
	Years, Months int
	Negative      bool
}

// IntervalDSPayload is the Descriptor value for value.IntervalDaySecond binds.
type IntervalDSPayload struct {
	Days, Hours, Minutes, Seconds, Nanoseconds int
	Negative                                   bool
}

func nullBind(sqlType int32) *Bind {
	return &Bind{SQLType: sqlType, Indicator: oci.NullIndicator}
}

func putInt(size int, v int64) []byte {
	buf := make([]byte, size)
	switch size {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(buf, uint64(v))
	}
	return buf
}

// convertToOCI converts a Go value to its OCI bind representation. mode
// selects the wire text encoding (wide UTF-16 vs. ANSI) applied to string
// values, per the environment's configured character encoding (spec §6).
func convertToOCI(v interface{}, mode strbridge.Mode) (*Bind, error) {
	if v == nil {
		return nullBind(oci.SQLT_STR), nil
	}

	switch x := v.(type) {
	case bool:
		n := int64(0)
		if x {
			n = 1
		}
		return &Bind{Buffer: putInt(4, n), SQLType: oci.SQLT_INT, Size: 4}, nil

	case int:
		return &Bind{Buffer: putInt(8, int64(x)), SQLType: oci.SQLT_INT, Size: 8}, nil
	case int8:
		return &Bind{Buffer: putInt(1, int64(x)), SQLType: oci.SQLT_INT, Size: 1}, nil
	case int16:
		return &Bind{Buffer: putInt(2, int64(x)), SQLType: oci.SQLT_INT, Size: 2}, nil
	case int32:
		return &Bind{Buffer: putInt(4, int64(x)), SQLType: oci.SQLT_INT, Size: 4}, nil
	case int64:
		return &Bind{Buffer: putInt(8, x), SQLType: oci.SQLT_INT, Size: 8}, nil
	case uint:
		return &Bind{Buffer: putInt(8, int64(x)), SQLType: oci.SQLT_UIN, Size: 8}, nil
	case uint8:
		return &Bind{Buffer: putInt(1, int64(x)), SQLType: oci.SQLT_UIN, Size: 1}, nil
	case uint16:
		return &Bind{Buffer: putInt(2, int64(x)), SQLType: oci.SQLT_UIN, Size: 2}, nil
	case uint32:
		return &Bind{Buffer: putInt(4, int64(x)), SQLType: oci.SQLT_UIN, Size: 4}, nil
	case uint64:
		// Binds as decimal text to avoid overflowing OCI's signed native
		// integer bind for values above math.MaxInt64, mirroring the
		// teacher's same fallback for uint64.
		n := value.NewNumberFromFloat64(float64(x)).String()
		return stringBind(n, strbridge.ANSI)

	case float32:
		bits := math.Float32bits(x)
		return &Bind{Buffer: putInt(4, int64(bits)), SQLType: oci.SQLT_FLT, Size: 4}, nil
	case float64:
		bits := math.Float64bits(x)
		return &Bind{Buffer: putInt(8, int64(bits)), SQLType: oci.SQLT_FLT, Size: 8}, nil

	case string:
		return stringBind(x, mode)

	case []byte:
		if len(x) == 0 {
			return &Bind{SQLType: oci.SQLT_BIN, Indicator: 0}, nil
		}
		return &Bind{Buffer: append([]byte(nil), x...), SQLType: oci.SQLT_BIN, Size: len(x)}, nil

	case GUID:
		return &Bind{Buffer: append([]byte(nil), x[:]...), SQLType: oci.SQLT_BIN, Size: 16}, nil

	case time.Time:
		ts := value.NewTimestampFromTime(x)
		return timestampBind(ts, 0, false), nil

	case value.Number:
		return stringBind(x.String(), strbridge.ANSI)

	case value.Date:
		ts := value.Timestamp{Date: x}
		return timestampBind(ts, 0, false), nil

	case value.Timestamp:
		return timestampBind(x, 0, false), nil

	case value.TimestampTZ:
		return timestampBind(x.Timestamp, x.OffsetMinutes, true), nil

	case value.IntervalYearMonth:
		return &Bind{
			SQLType: oci.SQLT_INTERVAL_YM,
			Descriptor: IntervalYMPayload{
				Years: x.Years, Months: x.Months, Negative: x.Negative,
			},
		}, nil

	case value.IntervalDaySecond:
		return &Bind{
			SQLType: oci.SQLT_INTERVAL_DS,
			Descriptor: IntervalDSPayload{
				Days: x.Days, Hours: x.Hours, Minutes: x.Minutes,
				Seconds: x.Seconds, Nanoseconds: x.Nanoseconds, Negative: x.Negative,
			},
		}, nil

	case value.Reference:
		return &Bind{Buffer: append([]byte(nil), x.Bytes()...), SQLType: oci.SQLT_REF, Size: len(x.Bytes())}, nil

	case value.Vector:
		buf, err := encodeVector(x)
		if err != nil {
			return nil, err
		}
		return &Bind{Buffer: buf, SQLType: oci.SQLT_VECTOR, Size: len(buf)}, nil

	default:
		return stringBind(fmt.Sprintf("%v", x), strbridge.ANSI)
	}
}

func stringBind(s string, mode strbridge.Mode) (*Bind, error) {
	buf, err := strbridge.ToDB(s, mode)
	if err != nil {
		return nil, fmt.Errorf("ocigo: encoding bind text: %w", err)
	}
	charCount := len([]rune(s))
	return &Bind{Buffer: buf, SQLType: oci.SQLT_STR, Size: charCount}, nil
}

func timestampBind(ts value.Timestamp, offsetMinutes int, withTZ bool) *Bind {
	sqlType := int32(oci.SQLT_TIMESTAMP)
	if withTZ {
		sqlType = oci.SQLT_TIMESTAMP_TZ
	}
	return &Bind{
		SQLType: sqlType,
		Descriptor: TimestampPayload{
			Y: ts.Year, Mo: ts.Month, D: ts.Day,
			H: ts.Hour, Mi: ts.Minute, S: ts.Second,
			Nanosecond: ts.Nanosecond, OffsetMinutes: offsetMinutes, WithTZ: withTZ,
		},
	}
}

// encodeVector serializes a value.Vector into the wire layout consumed by
// OCIVectorToStr's inverse (a leading format tag byte followed by the raw
// little-endian element buffer). convertToOCI calls it without consulting
// the environment's vector capability flag (internal/oci.Capabilities.Vector).
func encodeVector(v value.Vector) ([]byte, error) {
	switch v.Format {
	case value.VectorFloat32:
		buf := make([]byte, 1+4*len(v.Float32))
		buf[0] = byte(value.VectorFloat32)
		for i, f := range v.Float32 {
			binary.LittleEndian.PutUint32(buf[1+i*4:], math.Float32bits(f))
		}
		return buf, nil
	case value.VectorFloat64:
		buf := make([]byte, 1+8*len(v.Float64))
		buf[0] = byte(value.VectorFloat64)
		for i, f := range v.Float64 {
			binary.LittleEndian.PutUint64(buf[1+i*8:], math.Float64bits(f))
		}
		return buf, nil
	case value.VectorInt8, value.VectorBinary:
		buf := make([]byte, 1+len(v.Int8))
		buf[0] = byte(v.Format)
		for i, b := range v.Int8 {
			buf[1+i] = byte(b)
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("ocigo: unsupported vector format %d", v.Format)
	}
}

// BindArray holds a column-major buffer for array-DML bind parameters
// (spec §4.4 "array DML"), grounded on the teacher's ColumnBuffer/
// AllocateColumnArray. Unlike the teacher's per-Go-type buffer (separate
// []int64/[]float64/etc slices), every element here is flattened into one
// []byte of ElemSize stride, matching how OCIBindByName's array-bind mode
// expects a single contiguous buffer regardless of element type.
type BindArray struct {
	Data       []byte
	SQLType    int32
	ElemSize   int
	Indicators []int16
}

// AllocateBindArray builds a BindArray for one bind position across
// numRows, inferring the element type from the first non-nil value.
func AllocateBindArray(values []interface{}, numRows int, mode strbridge.Mode) (*BindArray, error) {
	if numRows == 0 {
		return nil, nil
	}

	var typeHint interface{}
	for _, v := range values {
		if v != nil {
			typeHint = v
			break
		}
	}

	arr := &BindArray{Indicators: make([]int16, numRows)}

	if typeHint == nil {
		arr.ElemSize = 256
		arr.SQLType = oci.SQLT_STR
		arr.Data = make([]byte, numRows*arr.ElemSize)
		for i := range arr.Indicators {
			arr.Indicators[i] = oci.NullIndicator
		}
		return arr, nil
	}

	switch typeHint.(type) {
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		arr.ElemSize = 8
		arr.SQLType = oci.SQLT_INT
		arr.Data = make([]byte, numRows*8)
		for i, v := range values {
			if v == nil {
				arr.Indicators[i] = oci.NullIndicator
				continue
			}
			n, err := toInt64(v)
			if err != nil {
				return nil, err
			}
			copy(arr.Data[i*8:], putInt(8, n))
		}

	case float32, float64:
		arr.ElemSize = 8
		arr.SQLType = oci.SQLT_FLT
		arr.Data = make([]byte, numRows*8)
		for i, v := range values {
			if v == nil {
				arr.Indicators[i] = oci.NullIndicator
				continue
			}
			f, err := toFloat64(v)
			if err != nil {
				return nil, err
			}
			copy(arr.Data[i*8:], putInt(8, int64(math.Float64bits(f))))
		}

	case []byte:
		maxLen := 1
		for _, v := range values {
			if b, ok := v.([]byte); ok && len(b) > maxLen {
				maxLen = len(b)
			}
		}
		arr.ElemSize = maxLen
		arr.SQLType = oci.SQLT_BIN
		arr.Data = make([]byte, numRows*maxLen)
		for i, v := range values {
			if v == nil {
				arr.Indicators[i] = oci.NullIndicator
				continue
			}
			b, ok := v.([]byte)
			if !ok {
				return nil, fmt.Errorf("ocigo: array bind value %T is not []byte", v)
			}
			copy(arr.Data[i*maxLen:], b)
			arr.Indicators[i] = int16(len(b))
		}

	default:
		encoded := make([][]byte, numRows)
		maxLen := 1
		for i, v := range values {
			if v == nil {
				continue
			}
			s := fmt.Sprintf("%v", v)
			b, err := strbridge.ToDB(s, mode)
			if err != nil {
				return nil, err
			}
			encoded[i] = b
			if len(b) > maxLen {
				maxLen = len(b)
			}
		}
		arr.ElemSize = maxLen
		arr.SQLType = oci.SQLT_STR
		arr.Data = make([]byte, numRows*maxLen)
		for i, v := range values {
			if v == nil {
				arr.Indicators[i] = oci.NullIndicator
				continue
			}
			copy(arr.Data[i*maxLen:], encoded[i])
			arr.Indicators[i] = int16(len(encoded[i]))
		}
	}

	return arr, nil
}

func toInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	default:
		return 0, fmt.Errorf("ocigo: value %v is not an integer", v)
	}
}

func toFloat64(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	default:
		return 0, fmt.Errorf("ocigo: value %v is not a float", v)
	}
}

// BufferPtr returns a pointer to b's backing array, or 0 for an empty/nil
// buffer, for passing to purego-bound OCI calls expecting a C pointer.
func BufferPtr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// SQLTypeName returns a human-readable name for an OCI external datatype
// code, used by Rows.ColumnTypeDatabaseTypeName (rows.go).
func SQLTypeName(sqlType int32) string {
	switch sqlType {
	case oci.SQLT_CHR:
		return "CHAR"
	case oci.SQLT_NUM:
		return "NUMBER"
	case oci.SQLT_INT:
		return "INT"
	case oci.SQLT_FLT:
		return "FLOAT"
	case oci.SQLT_STR:
		return "STRING"
	case oci.SQLT_VNU:
		return "VARNUM"
	case oci.SQLT_LNG:
		return "LONG"
	case oci.SQLT_VCS:
		return "VARCHAR"
	case oci.SQLT_DAT:
		return "DATE"
	case oci.SQLT_BIN:
		return "RAW"
	case oci.SQLT_LBI:
		return "LONG RAW"
	case oci.SQLT_UIN:
		return "UNSIGNED INT"
	case oci.SQLT_RDD:
		return "ROWID"
	case oci.SQLT_RSET:
		return "CURSOR"
	case oci.SQLT_CLOB:
		return "CLOB"
	case oci.SQLT_BLOB:
		return "BLOB"
	case oci.SQLT_BFILEE:
		return "BFILE"
	case oci.SQLT_CFILEE:
		return "CFILE"
	case oci.SQLT_TIMESTAMP:
		return "TIMESTAMP"
	case oci.SQLT_TIMESTAMP_TZ:
		return "TIMESTAMP WITH TIME ZONE"
	case oci.SQLT_TIMESTAMP_LTZ:
		return "TIMESTAMP WITH LOCAL TIME ZONE"
	case oci.SQLT_INTERVAL_YM:
		return "INTERVAL YEAR TO MONTH"
	case oci.SQLT_INTERVAL_DS:
		return "INTERVAL DAY TO SECOND"
	case oci.SQLT_NTY:
		return "OBJECT"
	case oci.SQLT_REF:
		return "REF"
	case oci.SQLT_VECTOR:
		return "VECTOR"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", sqlType)
	}
}
