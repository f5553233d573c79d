package ocigo

// ParamDirection specifies the direction of a bind parameter (spec §3
// Bind: "direction (in/out/in-out)").
type ParamDirection int

const (
	ParamInput ParamDirection = iota
	ParamOutput
	ParamInputOutput
)

// OutputParam wraps a value for OUT or IN-OUT parameter binding to a
// PL/SQL block or stored procedure call. Grounded on the teacher's
// OutputParam (types.go), kept verbatim in shape since the binding
// ergonomics it expresses (type-hint-driven buffer allocation, optional
// explicit size) apply unchanged to OCI's register-bind mechanism (spec
// §3 Statement: "register binds set for OUT parameters").
type OutputParam struct {
	// Value holds the initial value (InputOutput) or a type hint (Output).
	Value interface{}
	// Direction distinguishes Output from InputOutput.
	Direction ParamDirection
	// Size is the buffer size for variable-length types; 0 selects a
	// default (4000 bytes for both strings and []byte,
	// defaultOutputBufferSize).
	Size int
}

// NewOutputParam creates an output-only parameter with a type hint.
func NewOutputParam(typeHint interface{}) OutputParam {
	return OutputParam{Value: typeHint, Direction: ParamOutput}
}

// NewOutputParamWithSize creates an output-only parameter with an explicit
// buffer size.
func NewOutputParamWithSize(typeHint interface{}, size int) OutputParam {
	return OutputParam{Value: typeHint, Direction: ParamOutput, Size: size}
}

// NewInputOutputParam creates a bidirectional parameter with an initial
// value.
func NewInputOutputParam(value interface{}) OutputParam {
	return OutputParam{Value: value, Direction: ParamInputOutput}
}

// NewInputOutputParamWithSize creates a bidirectional parameter with an
// explicit buffer size.
func NewInputOutputParamWithSize(value interface{}, size int) OutputParam {
	return OutputParam{Value: value, Direction: ParamInputOutput, Size: size}
}

// BatchError is one row's failure within an array-DML batch (spec §4.4
// "Array DML error mode": "each sub-error records its row offset within
// the iteration").
type BatchError struct {
	RowOffset int
	Err       error
}

// BatchResult holds the outcome of an array-DML execute (spec's "batch"
// object in end-to-end scenario 2).
type BatchResult struct {
	Count        int64 // total rows affected across the batch
	RowsAffected []int64
	Errors       []BatchError
}

// HasErrors reports whether any row in the batch failed.
func (r *BatchResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ScrollMode selects a result set's scroll capability (spec §4.4 exec
// modes: "scrollable-read-only"; §4.5 "scrollable-cursor flag").
// Grounded on the teacher's CursorType, collapsed from ODBC's four cursor
// models to the two OCI actually exposes for read-only use: forward-only
// and scrollable.
type ScrollMode int

const (
	ScrollForwardOnly ScrollMode = iota
	ScrollScrollable
)

// ExecMode selects prepare/execute side effects (spec §4.4 "Exec modes").
type ExecMode int

const (
	ExecDefault ExecMode = iota
	ExecDescribeOnly
	ExecParseOnly
	ExecScrollableReadOnly
)

// SeekFrom mirrors lob.SeekWhence for the statement-level scrollable-fetch
// API (spec §4.5 fetch_seek), kept as a distinct type since a result set's
// "current row" and a LOB's "byte/char offset" are different domains even
// though both use start/current/end semantics.
type SeekFrom int

const (
	SeekFromStart SeekFrom = iota
	SeekFromCurrent
	SeekFromEnd
)

// TxMode distinguishes a local transaction from a distributed (XA) one
// (spec §4.3 "Transactions").
type TxMode int

const (
	TxLocal TxMode = iota
	TxDistributed
)

// SessionMode selects the authentication mode for Connect (spec §4.3
// "create(db, user, password, mode)... normal, SYSDBA, SYSOPER, XA").
type SessionMode int

const (
	SessionNormal SessionMode = iota
	SessionSysDBA
	SessionSysOper
	SessionXA
)
