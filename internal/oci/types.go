// Package oci is the raw vendor symbol table: OCI handle/descriptor type
// aliases, attribute and datatype constants, and the dynamic loader that
// resolves each entry point by name against the shared library (spec §4.2,
// §6 Vendor library boundary).
//
// Nothing in this package understands connections, statements, or result
// sets — it only knows how to call OCI and report which symbols exist.
// Higher layers (the root ocigo package, value, lob, typeinfo, aq, notify,
// directpath) build the driver's object model on top of it.
package oci

import "unsafe"

// Handle is an opaque OCI handle or descriptor pointer as seen from Go.
type Handle = uintptr

// Return codes (OCI_* constants from oci_defs.h / oci_api.h).
const (
	Success           = 0
	SuccessWithInfo   = 1
	NoData            = 100
	Error             = -1
	Invalid           = -2
	StillExecuting    = -3123
	ContinueOperation = -24200
)

// Handle-type codes (OCIHandleAlloc htype argument).
const (
	HTypeEnv = iota + 1
	HTypeError
	HTypeSvcCtx
	HTypeStmt
	HTypeBind
	HTypeDefine
	HTypeServer
	HTypeSession
	HTypeTrans
	HTypeComplexObject
	HTypeSecurity
	HTypeSubscription
	HTypeDirPath
	HTypeProc
	HTypeAQEnq
	HTypeAQDeq
	HTypeAQMsgProps
	HTypeAQAgent
)

// Descriptor-type codes (OCIDescriptorAlloc dtype argument).
const (
	DTypeLob = iota + 50
	DTypeSnap
	DTypeResult
	DTypeParam
	DTypeRowid
	DTypeComplexObjectComp
	DTypeFile
	DTypeAQEnqOptions
	DTypeAQDeqOptions
	DTypeAQMsgProps
	DTypeAQAgent
	DTypeInterval
	DTypeTimestamp
	DTypeTimestampTZ
	DTypeTimestampLTZ
	DTypeUcb
	DTypeChDes
	DTypeTableChDes
	DTypeRowChDes
)

// Environment creation mode bits (OCI_* mode flags).
const (
	ModeDefault  = 0x00
	ModeThreaded = 0x01
	ModeObject   = 0x02
	ModeEvents   = 0x04
	ModeNoMutex  = 0x80
)

// Session/auth mode (sessbegin credentials and modes).
const (
	CredRDBMS  = 1
	CredExt    = 2
	CredProxy  = 3
	AuthDefault = 0x00
	AuthSysDba  = 0x02
	AuthSysOper = 0x04
)

// Attribute codes (subset actually consumed by this driver; full table is
// ~200 entries per spec §1's Non-goals — out of scope to enumerate).
const (
	AttrDataSize     = 1
	AttrDataType     = 2
	AttrDispSize     = 3
	AttrName         = 4
	AttrPrecision    = 5
	AttrScale        = 6
	AttrIsNull       = 7
	AttrServer       = 6
	AttrSession      = 7
	AttrTrans        = 8
	AttrRowCount     = 9
	AttrParamCount   = 18
	AttrUsername     = 22
	AttrPassword     = 23
	AttrStmtType     = 24
	AttrInternalName = 41
	AttrExternalName = 42
	AttrXID          = 43
	AttrPrefetchRows = 112
	AttrPrefetchMemory = 113
	AttrCharsetForm  = 32
	AttrClientInfo   = 368
	AttrModule       = 366
	AttrAction       = 367
	AttrClientIdentifier = 278
	AttrDBOp         = 438
	AttrCurrentPos   = 111
	AttrLobEmpty     = 45
	AttrChunkSize    = 92
	AttrNumDMLErrors = 162
)

// OCIStmtExecute mode bit requesting per-row DML error collection for
// array binds (spec §4.4 "Array DML error mode").
const ModeBatchErrors = 0x0080

// SQL datatype codes (OCI external datatype codes).
const (
	SQLT_CHR   = 1
	SQLT_NUM   = 2
	SQLT_INT   = 3
	SQLT_FLT   = 4
	SQLT_STR   = 5
	SQLT_VNU   = 6
	SQLT_LNG   = 8
	SQLT_VCS   = 9
	SQLT_DAT   = 12
	SQLT_BIN   = 23
	SQLT_LBI   = 24
	SQLT_UIN   = 68
	SQLT_RDD   = 104
	SQLT_RSET  = 116
	SQLT_CLOB  = 112
	SQLT_BLOB  = 113
	SQLT_BFILEE = 114
	SQLT_CFILEE = 115
	SQLT_TIMESTAMP    = 187
	SQLT_TIMESTAMP_TZ = 188
	SQLT_INTERVAL_YM  = 189
	SQLT_INTERVAL_DS  = 190
	SQLT_TIMESTAMP_LTZ = 232
	SQLT_NTY   = 108
	SQLT_REF   = 110
	SQLT_VECTOR = 127
)

// Statement type codes (returned by AttrStmtType describe).
const (
	StmtSelect = 1
	StmtUpdate = 2
	StmtDelete = 3
	StmtInsert = 4
	StmtCreate = 5
	StmtDrop   = 6
	StmtAlter  = 7
	StmtBegin  = 8
	StmtDeclare = 9
	StmtMerge  = 16
	StmtCall   = 10
)

// Bind/fetch direction.
const (
	DataIn    = 1
	DataOut   = 2
	DataInOut = 3
)

// Fetch orientation (OCIStmtFetch2 mode).
const (
	FetchNext    = 0x02
	FetchFirst   = 0x04
	FetchLast    = 0x08
	FetchPrior   = 0x10
	FetchAbsolute = 0x20
	FetchRelative = 0x40
)

// Null indicator sentinel.
const NullIndicator = -1

// Two's complement infinity sentinels for the vendor's decimal-number
// encoding (spec §4.5: "~" / "-~" round-trip strings).
const (
	NumberPosInfinityText = "~"
	NumberNegInfinityText = "-~"
)

// VersionTier is one of the recognized vendor runtime tiers (spec §6).
type VersionTier int

const (
	Ver8_0 VersionTier = iota
	Ver8_1
	Ver9_0
	Ver9_2
	Ver10_1
	Ver10_2
	Ver11_1
	Ver11_2
	Ver12_1
	Ver18_1
	Ver18_3
	Ver19_3
	Ver21_3
	Ver23_4
	VerUnsupported
)

func (v VersionTier) String() string {
	names := [...]string{
		"8.0", "8.1", "9.0", "9.2", "10.1", "10.2", "11.1", "11.2",
		"12.1", "18.1", "18.3", "19.3", "21.3", "23.4", "unsupported",
	}
	if int(v) < 0 || int(v) >= len(names) {
		return "unsupported"
	}
	return names[v]
}

// ptrOf is a tiny helper used by callers marshaling Go values into the
// unsafe.Pointer arguments purego.RegisterLibFunc-bound functions expect.
func ptrOf(v *byte) unsafe.Pointer { return unsafe.Pointer(v) }
