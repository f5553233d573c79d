package oci

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

// Table is the single typed table of resolved OCI entry points (spec §9:
// "the ~200 function pointers in the source collapse to a single typed
// table populated at init, plus a small set of capability booleans derived
// from presence checks"). Only the entry points this driver actually calls
// are declared; the rest of OCI's surface is out of scope per spec §1.
type Table struct {
	EnvNlsCreate   func(envhpp *Handle, mode uint32, ctx, malocfn, ralocfn, mfreefn uintptr, xtramemsz uintptr, usrmempp uintptr, charset, ncharset uint16) int32
	HandleAlloc    func(parenth Handle, hndlpp *Handle, htype uint32, xtramemsz uintptr, usrmempp uintptr) int32
	HandleFree     func(hndlp Handle, htype uint32) int32
	DescriptorAlloc func(parenth Handle, descpp *Handle, dtype uint32, xtramemsz uintptr, usrmempp uintptr) int32
	DescriptorFree func(descp Handle, dtype uint32) int32
	AttrSet        func(trgthndlp Handle, trghndltyp uint32, attributep uintptr, size uint32, attrtype uint32, errhp Handle) int32
	AttrGet        func(trgthndlp Handle, trghndltyp uint32, attributep uintptr, sizep *uint32, attrtype uint32, errhp Handle) int32
	ErrorGet       func(hndlp Handle, recordno uint32, sqlstate *byte, errcodep *int32, bufp *byte, bufsiz uint32, htype uint32) int32
	ParamGet       func(hndlp Handle, htype uint32, errhp Handle, parmdpp *Handle, pos uint32) int32

	ServerAttach  func(srvhp Handle, errhp Handle, dblink *byte, dblinkLen int32, mode uint32) int32
	ServerDetach  func(srvhp Handle, errhp Handle, mode uint32) int32
	SessionBegin  func(svchp Handle, errhp Handle, usrhp Handle, credt uint32, mode uint32) int32
	SessionEnd    func(svchp Handle, errhp Handle, usrhp Handle, mode uint32) int32

	TransCommit   func(svchp Handle, errhp Handle, flags uint32) int32
	TransRollback func(svchp Handle, errhp Handle, flags uint32) int32
	TransStart    func(svchp Handle, errhp Handle, timeout uint32, flags uint32) int32

	StmtPrepare2 func(svchp Handle, stmthp *Handle, errhp Handle, stmt *byte, stmtLen uint32, key *byte, keyLen uint32, language, mode uint32) int32
	StmtRelease  func(stmthp Handle, errhp Handle, key *byte, keyLen uint32, mode uint32) int32
	StmtExecute  func(svchp Handle, stmthp Handle, errhp Handle, iters uint32, rowoff uint32, snapIn, snapOut uintptr, mode uint32) int32
	StmtFetch2   func(stmthp Handle, errhp Handle, nrows uint32, orientation uint16, offset int32, mode uint32) int32
	BindByPos    func(stmthp Handle, bindpp *Handle, errhp Handle, position uint32, valuep uintptr, valueSz int32, dty uint16, indp uintptr, alenp uintptr, rcodep uintptr, maxarrLen uint32, curelep *uint32, mode uint32) int32
	BindByName   func(stmthp Handle, bindpp *Handle, errhp Handle, placeholder *byte, placeholderLen int32, valuep uintptr, valueSz int32, dty uint16, indp uintptr, alenp uintptr, rcodep uintptr, maxarrLen uint32, curelep *uint32, mode uint32) int32
	DefineByPos  func(stmthp Handle, defnpp *Handle, errhp Handle, position uint32, valuep uintptr, valueSz int32, dty uint16, indp uintptr, rlenp uintptr, rcodep uintptr, mode uint32) int32
	Break        func(svchp Handle, errhp Handle) int32
	Reset        func(svchp Handle, errhp Handle) int32

	LobRead2   func(svchp Handle, errhp Handle, locp Handle, bytecntp, charcntp *uint64, offset uint64, bufp uintptr, bufl uint64, piece uint8, ctxp uintptr, cbfp uintptr, csid uint16, csfrm uint8) int32
	LobWrite2  func(svchp Handle, errhp Handle, locp Handle, bytecntp, charcntp *uint64, offset uint64, bufp uintptr, bufl uint64, piece uint8, ctxp uintptr, cbfp uintptr, csid uint16, csfrm uint8) int32
	LobGetLength2 func(svchp Handle, errhp Handle, locp Handle, lenp *uint64) int32
	LobTrim2   func(svchp Handle, errhp Handle, locp Handle, newlen uint64) int32
	LobErase2  func(svchp Handle, errhp Handle, locp Handle, amount *uint64, offset uint64) int32
	LobAppend  func(svchp Handle, errhp Handle, dstLocp, srcLocp Handle) int32
	LobCreateTemporary func(svchp Handle, errhp Handle, locp Handle, csid uint16, csfrm uint8, lobtype uint8, cache uint8, duration uint16) int32
	LobFreeTemporary func(svchp Handle, errhp Handle, locp Handle) int32
	LobFileOpen  func(svchp Handle, errhp Handle, filep Handle, mode uint8) int32
	LobFileClose func(svchp Handle, errhp Handle, filep Handle) int32
	LobFileExists func(svchp Handle, errhp Handle, filep Handle, flag *uint8) int32
	LobFileIsOpen func(svchp Handle, errhp Handle, filep Handle, flag *uint8) int32
	LobFileSetName func(envhp Handle, errhp Handle, filepp *Handle, dirAlias *byte, dAlLen uint16, filename *byte, fLen uint16) int32
	LobFileGetName func(envhp Handle, errhp Handle, filep Handle, dirAlias *byte, dAlLen *uint16, filename *byte, fLen *uint16) int32

	DateTimeConstruct    func(hndl Handle, errhp Handle, datetime Handle, year int16, month, day, hour, min, sec uint8, fsec uint32, timezone *byte, timezoneLength uint64) int32
	DateTimeGetDate      func(hndl Handle, errhp Handle, datetime Handle, year *int16, month, day *uint8) int32
	DateTimeGetTime      func(hndl Handle, errhp Handle, datetime Handle, hour, min, sec *uint8, fsec *uint32) int32
	IntervalSetYearMonth func(hndl Handle, errhp Handle, yr, mnth int32, result Handle) int32
	IntervalSetDaySecond func(hndl Handle, errhp Handle, dy, hr, mm, ss, fsec int32, result Handle) int32
	IntervalGetYearMonth func(hndl Handle, errhp Handle, yr, mnth *int32, result Handle) int32
	IntervalGetDaySecond func(hndl Handle, errhp Handle, dy, hr, mm, ss, fsec *int32, result Handle) int32

	// version-gated entry points; presence alone is a capability signal.
	VectorToStr func(envhp Handle, errhp Handle, vec Handle, buf *byte, bufLen *uint32) int32 // 23.4+
	LobGetOpt   func(svchp Handle, errhp Handle, locp Handle, ctype uint32, opt uintptr) int32 // 21.3+ result-length-get
	SodaBulkInsert func() int32                                                                // 19.3+
	StmtGetNextResult func(stmthp Handle, errhp Handle, result *Handle, rtype *uint32, mode uint32) int32 // 12.1+
}

// Capabilities records which optional OCI entry points resolved at load
// time (spec §4.2 "Symbol loading contract": missing symbols become
// capability flags, not errors).
type Capabilities struct {
	Vector       bool // 23.4+: vector datatype
	ResultLength bool // 21.3+: LOB result-length-get
	SodaBulk     bool // 19.3+: SODA bulk insert
	NextResult   bool // 12.1+: implicit/nested result sets
}

// Tier derives the runtime version tier from which optional symbols
// resolved, per spec §4.2's inference rule.
func (c Capabilities) Tier() VersionTier {
	switch {
	case c.Vector:
		return Ver23_4
	case c.ResultLength:
		return Ver21_3
	case c.SodaBulk:
		return Ver19_3
	case c.NextResult:
		return Ver12_1
	default:
		return VerUnsupported
	}
}

var (
	libHandle uintptr
	initOnce  sync.Once
	initErr   error
	table     Table
	caps      Capabilities
)

// ErrLoadLibrary is returned when the vendor shared library cannot be
// opened (spec error kind loading-shared-lib).
type ErrLoadLibrary struct {
	Path string
	Err  error
}

func (e *ErrLoadLibrary) Error() string {
	return fmt.Sprintf("oci: failed to load shared library %q: %v", e.Path, e.Err)
}

func (e *ErrLoadLibrary) Unwrap() error { return e.Err }

// ErrLoadSymbol is returned when a mandatory symbol is missing (spec error
// kind loading-symbols). Optional symbols never produce this error — they
// silently clear the corresponding Capabilities bit instead.
type ErrLoadSymbol struct {
	Symbol string
	Err    error
}

func (e *ErrLoadSymbol) Error() string {
	return fmt.Sprintf("oci: failed to resolve mandatory symbol %q: %v", e.Symbol, e.Err)
}

// Init loads the shared library at libPath (or the platform default if
// empty) and resolves every OCI symbol. Safe to call more than once; only
// the first call does work.
func Init(libPath string) (*Table, Capabilities, error) {
	initOnce.Do(func() {
		initErr = doInit(libPath)
	})
	return &table, caps, initErr
}

func doInit(libPath string) error {
	if libPath == "" {
		libPath = defaultLibraryPath()
	}
	h, err := loadOCILibrary(libPath)
	if err != nil {
		return &ErrLoadLibrary{Path: libPath, Err: err}
	}
	libHandle = h

	mustReg := func(fptr interface{}, name string) {
		if initErr != nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				initErr = &ErrLoadSymbol{Symbol: name, Err: fmt.Errorf("%v", r)}
			}
		}()
		purego.RegisterLibFunc(fptr, libHandle, name)
	}
	tryReg := func(fptr interface{}, name string) (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		purego.RegisterLibFunc(fptr, libHandle, name)
		return true
	}

	mustReg(&table.EnvNlsCreate, "OCIEnvNlsCreate")
	mustReg(&table.HandleAlloc, "OCIHandleAlloc")
	mustReg(&table.HandleFree, "OCIHandleFree")
	mustReg(&table.DescriptorAlloc, "OCIDescriptorAlloc")
	mustReg(&table.DescriptorFree, "OCIDescriptorFree")
	mustReg(&table.AttrSet, "OCIAttrSet")
	mustReg(&table.AttrGet, "OCIAttrGet")
	mustReg(&table.ErrorGet, "OCIErrorGet")
	mustReg(&table.ParamGet, "OCIParamGet")
	mustReg(&table.ServerAttach, "OCIServerAttach")
	mustReg(&table.ServerDetach, "OCIServerDetach")
	mustReg(&table.SessionBegin, "OCISessionBegin")
	mustReg(&table.SessionEnd, "OCISessionEnd")
	mustReg(&table.TransCommit, "OCITransCommit")
	mustReg(&table.TransRollback, "OCITransRollback")
	mustReg(&table.TransStart, "OCITransStart")
	mustReg(&table.StmtPrepare2, "OCIStmtPrepare2")
	mustReg(&table.StmtRelease, "OCIStmtRelease")
	mustReg(&table.StmtExecute, "OCIStmtExecute")
	mustReg(&table.StmtFetch2, "OCIStmtFetch2")
	mustReg(&table.BindByPos, "OCIBindByPos")
	mustReg(&table.BindByName, "OCIBindByName")
	mustReg(&table.DefineByPos, "OCIDefineByPos")
	mustReg(&table.Break, "OCIBreak")
	mustReg(&table.Reset, "OCIReset")
	mustReg(&table.LobRead2, "OCILobRead2")
	mustReg(&table.LobWrite2, "OCILobWrite2")
	mustReg(&table.LobGetLength2, "OCILobGetLength2")
	mustReg(&table.LobTrim2, "OCILobTrim2")
	mustReg(&table.LobErase2, "OCILobErase2")
	mustReg(&table.LobAppend, "OCILobAppend")
	mustReg(&table.LobCreateTemporary, "OCILobCreateTemporary")
	mustReg(&table.LobFreeTemporary, "OCILobFreeTemporary")
	mustReg(&table.LobFileOpen, "OCILobFileOpen")
	mustReg(&table.LobFileClose, "OCILobFileClose")
	mustReg(&table.LobFileExists, "OCILobFileExists")
	mustReg(&table.LobFileIsOpen, "OCILobFileIsOpen")
	mustReg(&table.LobFileSetName, "OCILobFileSetName")
	mustReg(&table.LobFileGetName, "OCILobFileGetName")
	mustReg(&table.DateTimeConstruct, "OCIDateTimeConstruct")
	mustReg(&table.DateTimeGetDate, "OCIDateTimeGetDate")
	mustReg(&table.DateTimeGetTime, "OCIDateTimeGetTime")
	mustReg(&table.IntervalSetYearMonth, "OCIIntervalSetYearMonth")
	mustReg(&table.IntervalSetDaySecond, "OCIIntervalSetDaySecond")
	mustReg(&table.IntervalGetYearMonth, "OCIIntervalGetYearMonth")
	mustReg(&table.IntervalGetDaySecond, "OCIIntervalGetDaySecond")

	if initErr != nil {
		return initErr
	}

	caps.Vector = tryReg(&table.VectorToStr, "OCIVectorToStr")
	caps.ResultLength = tryReg(&table.LobGetOpt, "OCILobGetOci1")
	caps.SodaBulk = tryReg(&table.SodaBulkInsert, "OCISodaBulkInsert")
	caps.NextResult = tryReg(&table.StmtGetNextResult, "OCIStmtGetNextResult")

	return nil
}

// Loaded reports whether Init has already completed successfully.
func Loaded() bool {
	return initErr == nil && libHandle != 0
}
