package ocigo

import (
	"database/sql/driver"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"github.com/go-ocilib/ocigo/internal/oci"
	"github.com/go-ocilib/ocigo/internal/strbridge"
	"github.com/go-ocilib/ocigo/lob"
)

// defineCharWidth is the per-character buffer multiplier applied
// when defining a column as text (spec §4.5 "Column metadata" describes
// size in characters; OCI's wide mode needs up to 4 bytes per character).
const defineCharWidth = 4

// colMeta is one result-set column's describe metadata, fetched via
// OCIParamGet + OCIAttrGet against the statement handle (spec §4.5).
type colMeta struct {
	name      string
	sqlType   int32 // the server's native external datatype code
	size      int
	precision int
	scale     int32
	nullable  bool
}

// Rows implements driver.Rows over one executed OCI statement's result
// set (component C13, spec §4.5). Grounded on the teacher's Rows
// (rows.go), with SQLDescribeCol/SQLGetData replaced by
// OCIParamGet/OCIAttrGet for metadata and OCIDefineByPos/OCIStmtFetch2
// for data, and every scalar column defined back as character data
// (SQLT_STR) so the vendor library performs the NUMBER/DATE/TIMESTAMP to
// text conversion itself rather than this driver re-implementing the
// vendor's internal NUMBER/DATE wire formats.
type Rows struct {
	stmt      *Stmt
	cols      []colMeta
	closed    bool
	closeStmt bool

	buffers   [][]byte
	lens      []int32
	indicators []int16
	locators  []oci.Handle
}

// newRows describes the statement's result set columns and defines every
// position's fetch buffer.
func newRows(stmt *Stmt, closeStmt bool) (*Rows, error) {
	table := stmt.conn.env.table

	var numCols uint32
	var sz uint32
	table.AttrGet(stmt.stmth, oci.HTypeStmt, uintptrOfUint32(&numCols), &sz, oci.AttrParamCount, stmt.conn.errh)

	r := &Rows{stmt: stmt, closeStmt: closeStmt}
	if numCols == 0 {
		return r, nil
	}

	r.cols = make([]colMeta, numCols)
	r.buffers = make([][]byte, numCols)
	r.lens = make([]int32, numCols)
	r.indicators = make([]int16, numCols)
	r.locators = make([]oci.Handle, numCols)

	for i := uint32(0); i < numCols; i++ {
		var parmh oci.Handle
		rc := table.ParamGet(stmt.stmth, oci.HTypeStmt, stmt.conn.errh, &parmh, i+1)
		if err := stmt.conn.env.checkRC(rc, stmt.conn.errh, "OCIParamGet", Source{Kind: "statement", Object: stmt}); err != nil {
			return nil, err
		}

		meta := describeParam(table, stmt.conn.errh, parmh)
		r.cols[i] = meta
		table.DescriptorFree(parmh, oci.DTypeParam)

		if err := r.defineColumn(uint32(i+1), meta); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func describeParam(table *oci.Table, errh oci.Handle, parmh oci.Handle) colMeta {
	var meta colMeta
	var sz uint32

	var nameBuf uintptr
	var nameLen uint32
	table.AttrGet(parmh, oci.DTypeParam, uintptrOfPtr(&nameBuf), &nameLen, oci.AttrName, errh)
	if nameLen > 0 && nameBuf != 0 {
		b := unsafe.Slice((*byte)(unsafe.Pointer(nameBuf)), int(nameLen))
		meta.name = string(b)
	}

	var dataType uint16
	table.AttrGet(parmh, oci.DTypeParam, uintptrOfPtr(&dataType), &sz, oci.AttrDataType, errh)
	meta.sqlType = int32(dataType)

	var dataSize uint16
	table.AttrGet(parmh, oci.DTypeParam, uintptrOfPtr(&dataSize), &sz, oci.AttrDataSize, errh)
	meta.size = int(dataSize)

	var precision int16
	table.AttrGet(parmh, oci.DTypeParam, uintptrOfPtr(&precision), &sz, oci.AttrPrecision, errh)
	meta.precision = int(precision)

	var scale int8
	table.AttrGet(parmh, oci.DTypeParam, uintptrOfPtr(&scale), &sz, oci.AttrScale, errh)
	meta.scale = int32(scale)

	var isNull uint8
	table.AttrGet(parmh, oci.DTypeParam, uintptrOfPtr(&isNull), &sz, oci.AttrIsNull, errh)
	meta.nullable = isNull != 0

	return meta
}

// defineColumn allocates position's fetch buffer and issues
// OCIDefineByPos. LOB/FILE columns define into a locator descriptor;
// everything else defines as SQLT_STR text, letting the vendor library
// perform its own NUMBER/DATE/TIMESTAMP-to-text conversion.
func (r *Rows) defineColumn(pos uint32, meta colMeta) error {
	table := r.stmt.conn.env.table
	idx := pos - 1

	switch meta.sqlType {
	case oci.SQLT_BLOB, oci.SQLT_CLOB, oci.SQLT_BFILEE, oci.SQLT_CFILEE:
		var locp oci.Handle
		rc := table.DescriptorAlloc(r.stmt.conn.env.envh, &locp, oci.DTypeLob, 0, 0)
		if err := r.stmt.conn.env.checkRC(rc, r.stmt.conn.errh, "OCIDescriptorAlloc(lob)", Source{Kind: "result-set", Object: r}); err != nil {
			return err
		}
		r.locators[idx] = locp
		var defh oci.Handle
		rc = table.DefineByPos(r.stmt.stmth, &defh, r.stmt.conn.errh, pos,
			uintptrOfPtr(&r.locators[idx]), int32(unsafe.Sizeof(locp)), uint16(meta.sqlType),
			uintptrOfInt16(&r.indicators[idx]), 0, 0, oci.ModeDefault)
		return r.stmt.conn.env.checkRC(rc, r.stmt.conn.errh, "OCIDefineByPos(lob)", Source{Kind: "result-set", Object: r})

	case oci.SQLT_BIN, oci.SQLT_LBI:
		n := meta.size
		if n <= 0 {
			n = 2000
		}
		buf := make([]byte, n)
		r.buffers[idx] = buf
		var defh oci.Handle
		rc := table.DefineByPos(r.stmt.stmth, &defh, r.stmt.conn.errh, pos,
			BufferPtr(buf), int32(len(buf)), uint16(oci.SQLT_BIN),
			uintptrOfInt16(&r.indicators[idx]), uintptrOfPtr(&r.lens[idx]), 0, oci.ModeDefault)
		return r.stmt.conn.env.checkRC(rc, r.stmt.conn.errh, "OCIDefineByPos", Source{Kind: "result-set", Object: r})

	default:
		n := textDefineSize(meta)
		buf := make([]byte, n)
		r.buffers[idx] = buf
		var defh oci.Handle
		rc := table.DefineByPos(r.stmt.stmth, &defh, r.stmt.conn.errh, pos,
			BufferPtr(buf), int32(len(buf)), uint16(oci.SQLT_STR),
			uintptrOfInt16(&r.indicators[idx]), uintptrOfPtr(&r.lens[idx]), 0, oci.ModeDefault)
		return r.stmt.conn.env.checkRC(rc, r.stmt.conn.errh, "OCIDefineByPos", Source{Kind: "result-set", Object: r})
	}
}

func textDefineSize(meta colMeta) int {
	switch meta.sqlType {
	case oci.SQLT_NUM, oci.SQLT_VNU:
		return meta.precision + 20
	case oci.SQLT_DAT:
		return 40
	case oci.SQLT_TIMESTAMP, oci.SQLT_TIMESTAMP_TZ, oci.SQLT_TIMESTAMP_LTZ:
		return 64
	case oci.SQLT_INTERVAL_YM, oci.SQLT_INTERVAL_DS:
		return 48
	case oci.SQLT_RDD:
		return 20
	default:
		n := meta.size * defineCharWidth
		if n < 256 {
			n = 256
		}
		if n > 65536 {
			n = 65536
		}
		return n
	}
}

// Columns returns the column names.
func (r *Rows) Columns() []string {
	names := make([]string, len(r.cols))
	for i, c := range r.cols {
		names[i] = c.name
	}
	return names
}

// Close releases define buffers and, when owned, the underlying statement.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	for _, locp := range r.locators {
		if locp != 0 {
			r.stmt.conn.env.table.DescriptorFree(locp, oci.DTypeLob)
		}
	}

	if r.closeStmt && r.stmt != nil {
		return r.stmt.Close()
	}
	return nil
}

// Next fetches the next row.
func (r *Rows) Next(dest []driver.Value) error {
	if r.closed {
		return io.EOF
	}
	if len(r.cols) == 0 {
		return io.EOF
	}

	table := r.stmt.conn.env.table
	rc := table.StmtFetch2(r.stmt.stmth, r.stmt.conn.errh, 1, oci.FetchNext, 0, oci.ModeDefault)
	if rc == oci.NoData {
		return io.EOF
	}
	if err := r.stmt.conn.env.checkRC(rc, r.stmt.conn.errh, "OCIStmtFetch2", Source{Kind: "result-set", Object: r}); err != nil {
		return err
	}

	mode := r.stmt.conn.env.Mode()
	for i := range r.cols {
		if i >= len(dest) {
			break
		}
		dest[i] = r.columnValue(i, mode)
	}
	return nil
}

func (r *Rows) columnValue(idx int, mode strbridge.Mode) driver.Value {
	if r.indicators[idx] == oci.NullIndicator {
		return nil
	}

	meta := r.cols[idx]
	switch meta.sqlType {
	case oci.SQLT_BLOB, oci.SQLT_CLOB, oci.SQLT_BFILEE, oci.SQLT_CFILEE:
		return r.lobValue(idx, meta)
	case oci.SQLT_BIN, oci.SQLT_LBI:
		n := int(r.lens[idx])
		if n > len(r.buffers[idx]) {
			n = len(r.buffers[idx])
		}
		out := make([]byte, n)
		copy(out, r.buffers[idx][:n])
		return out
	default:
		return textColumnValue(r.buffers[idx], int(r.lens[idx]), meta, mode)
	}
}

func (r *Rows) lobValue(idx int, meta colMeta) driver.Value {
	var kind lob.Kind
	switch meta.sqlType {
	case oci.SQLT_BLOB:
		kind = lob.KindBLOB
	case oci.SQLT_CLOB:
		kind = lob.KindCLOB
	case oci.SQLT_BFILEE:
		kind = lob.KindBFILE
	default:
		kind = lob.KindCFILE
	}
	locAdapter := newOCILocator(r.stmt.conn, r.locators[idx], kind)
	if kind == lob.KindBFILE || kind == lob.KindCFILE {
		return lob.NewFile(kind, &fileAdapter{ociLocator: locAdapter})
	}
	return lob.New(kind, locAdapter)
}

// fileAdapter adds the FILE-only operations lob.FileLocator needs on top
// of ociLocator's common LOB operations.
type fileAdapter struct {
	*ociLocator
}

func (f *fileAdapter) Open() error {
	rc := f.conn.env.table.LobFileOpen(f.conn.svch, f.conn.errh, f.locp, 1)
	return f.conn.env.checkRC(rc, f.conn.errh, "OCILobFileOpen", Source{Kind: "lob", Object: f})
}

func (f *fileAdapter) IsOpen() (bool, error) {
	var flag uint8
	rc := f.conn.env.table.LobFileIsOpen(f.conn.svch, f.conn.errh, f.locp, &flag)
	if err := f.conn.env.checkRC(rc, f.conn.errh, "OCILobFileIsOpen", Source{Kind: "lob", Object: f}); err != nil {
		return false, err
	}
	return flag != 0, nil
}

func (f *fileAdapter) Close() error {
	rc := f.conn.env.table.LobFileClose(f.conn.svch, f.conn.errh, f.locp)
	return f.conn.env.checkRC(rc, f.conn.errh, "OCILobFileClose", Source{Kind: "lob", Object: f})
}

func (f *fileAdapter) Exists() (bool, error) {
	var flag uint8
	rc := f.conn.env.table.LobFileExists(f.conn.svch, f.conn.errh, f.locp, &flag)
	if err := f.conn.env.checkRC(rc, f.conn.errh, "OCILobFileExists", Source{Kind: "lob", Object: f}); err != nil {
		return false, err
	}
	return flag != 0, nil
}

func (f *fileAdapter) SetName(dirAlias, fileName string) error {
	dir := []byte(dirAlias)
	name := []byte(fileName)
	rc := f.conn.env.table.LobFileSetName(f.conn.env.envh, f.conn.errh, &f.locp,
		&dir[0], uint16(len(dir)), &name[0], uint16(len(name)))
	return f.conn.env.checkRC(rc, f.conn.errh, "OCILobFileSetName", Source{Kind: "lob", Object: f})
}

func (f *fileAdapter) DirectoryAndName() (string, string, error) {
	dir := make([]byte, 30)
	name := make([]byte, 255)
	dirLen := uint16(len(dir))
	nameLen := uint16(len(name))
	rc := f.conn.env.table.LobFileGetName(f.conn.env.envh, f.conn.errh, f.locp,
		&dir[0], &dirLen, &name[0], &nameLen)
	if err := f.conn.env.checkRC(rc, f.conn.errh, "OCILobFileGetName", Source{Kind: "lob", Object: f}); err != nil {
		return "", "", err
	}
	return string(dir[:dirLen]), string(name[:nameLen]), nil
}

// textColumnValue converts a define-as-SQLT_STR buffer back to a Go
// value, parsing numeric and date/timestamp text per category. Grounded
// on the teacher's getString for the text path; the numeric/date parse
// step replaces the teacher's SQL_C_* typed GetData calls since every
// column here was defined as character data.
func textColumnValue(buf []byte, length int, meta colMeta, mode strbridge.Mode) driver.Value {
	if length > len(buf) {
		length = len(buf)
	}
	text, err := strbridge.FromDB(buf[:length], mode)
	if err != nil {
		text = string(buf[:length])
	}
	text = strings.TrimRight(text, " ")

	switch meta.sqlType {
	case oci.SQLT_NUM, oci.SQLT_VNU:
		if meta.scale == 0 {
			if n, err := strconv.ParseInt(text, 10, 64); err == nil {
				return n
			}
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil && meta.precision > 0 && meta.precision <= 15 {
			return f
		}
		return text
	case oci.SQLT_DAT, oci.SQLT_TIMESTAMP, oci.SQLT_TIMESTAMP_LTZ:
		if t, err := parseOracleTimestamp(text); err == nil {
			return t
		}
		return text
	case oci.SQLT_TIMESTAMP_TZ:
		if t, err := parseOracleTimestampTZ(text); err == nil {
			return t
		}
		return text
	default:
		return text
	}
}

// parseOracleTimestamp parses text produced by the environment's default
// DATE/TIMESTAMP format (spec §6 Format strings): "YYYY-MM-DD
// HH24:MI:SS[.FF]".
func parseOracleTimestamp(text string) (time.Time, error) {
	if strings.Contains(text, ".") {
		return time.Parse("2006-01-02 15:04:05.999999999", text)
	}
	return time.Parse("2006-01-02 15:04:05", text)
}

// parseOracleTimestampTZ parses text produced by the TIMESTAMP WITH TIME
// ZONE default format: "YYYY-MM-DD HH24:MI:SS.FF TZR".
func parseOracleTimestampTZ(text string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04:05.999999999 -07:00", text)
}

// ColumnTypeScanType returns the Go type suitable for scanning into.
func (r *Rows) ColumnTypeScanType(index int) reflect.Type {
	if index < 0 || index >= len(r.cols) {
		return reflect.TypeOf(new(interface{})).Elem()
	}
	switch r.cols[index].sqlType {
	case oci.SQLT_NUM, oci.SQLT_VNU:
		if r.cols[index].scale == 0 {
			return reflect.TypeOf(int64(0))
		}
		return reflect.TypeOf(float64(0))
	case oci.SQLT_DAT, oci.SQLT_TIMESTAMP, oci.SQLT_TIMESTAMP_TZ, oci.SQLT_TIMESTAMP_LTZ:
		return reflect.TypeOf(time.Time{})
	case oci.SQLT_BIN, oci.SQLT_LBI:
		return reflect.TypeOf([]byte{})
	default:
		return reflect.TypeOf("")
	}
}

// ColumnTypeDatabaseTypeName returns the database type name.
func (r *Rows) ColumnTypeDatabaseTypeName(index int) string {
	if index < 0 || index >= len(r.cols) {
		return ""
	}
	return SQLTypeName(r.cols[index].sqlType)
}

// ColumnTypeLength returns the declared length of variable-length columns.
func (r *Rows) ColumnTypeLength(index int) (int64, bool) {
	if index < 0 || index >= len(r.cols) {
		return 0, false
	}
	switch r.cols[index].sqlType {
	case oci.SQLT_CHR, oci.SQLT_STR, oci.SQLT_VCS, oci.SQLT_BIN, oci.SQLT_LBI, oci.SQLT_LNG:
		return int64(r.cols[index].size), true
	}
	return 0, false
}

// ColumnTypeNullable returns whether a column is nullable.
func (r *Rows) ColumnTypeNullable(index int) (bool, bool) {
	if index < 0 || index >= len(r.cols) {
		return false, false
	}
	return r.cols[index].nullable, true
}

// ColumnTypePrecisionScale returns the precision and scale of a NUMBER
// column.
func (r *Rows) ColumnTypePrecisionScale(index int) (int64, int64, bool) {
	if index < 0 || index >= len(r.cols) {
		return 0, 0, false
	}
	meta := r.cols[index]
	if meta.sqlType != oci.SQLT_NUM && meta.sqlType != oci.SQLT_VNU {
		return 0, 0, false
	}
	return int64(meta.precision), int64(meta.scale), true
}

// HasNextResultSet reports whether the environment's runtime supports
// implicit result sets (spec §4.5); it does not check whether one follows.
func (r *Rows) HasNextResultSet() bool {
	return r.stmt.conn.env.Capabilities().NextResult
}

// NextResultSet advances to the next implicit result set.
func (r *Rows) NextResultSet() error {
	if !r.stmt.conn.env.Capabilities().NextResult {
		return io.EOF
	}
	var result oci.Handle
	var rtype uint32
	rc := r.stmt.conn.env.table.StmtGetNextResult(r.stmt.stmth, r.stmt.conn.errh, &result, &rtype, oci.ModeDefault)
	if rc == oci.NoData {
		return io.EOF
	}
	return r.stmt.conn.env.checkRC(rc, r.stmt.conn.errh, "OCIStmtGetNextResult", Source{Kind: "result-set", Object: r})
}

var (
	_ driver.Rows                           = (*Rows)(nil)
	_ driver.RowsColumnTypeScanType         = (*Rows)(nil)
	_ driver.RowsColumnTypeDatabaseTypeName = (*Rows)(nil)
	_ driver.RowsColumnTypeLength           = (*Rows)(nil)
	_ driver.RowsColumnTypeNullable         = (*Rows)(nil)
	_ driver.RowsColumnTypePrecisionScale   = (*Rows)(nil)
	_ driver.RowsNextResultSet              = (*Rows)(nil)
)
