package ocigo

import (
	"context"
	"database/sql/driver"
	"fmt"
	"math"
	"strings"
	"sync"
	"unsafe"

	"github.com/go-ocilib/ocigo/internal/oci"
	"github.com/go-ocilib/ocigo/internal/strbridge"
	"github.com/go-ocilib/ocigo/value"
)

// defaultOutputBufferSize is used for an OUT/IN-OUT bind whose caller
// supplied no explicit Size (spec §3 Bind "direction"); matches the
// teacher's same default for unsized string/binary output buffers.
const defaultOutputBufferSize = 4000

// boundParam tracks one bind position's live buffer across execute and,
// for OUT/IN-OUT binds, the post-execute indicator/length needed to
// convert the buffer back to a Go value (spec §3 Bind "register binds set
// for OUT parameters").
type boundParam struct {
	position   int
	bind       *Bind
	indicator  int16
	alen       uint32
	direction  ParamDirection
	descriptor oci.Handle // non-zero for TIMESTAMP/INTERVAL descriptor-backed binds
}

// Stmt implements driver.Stmt over one prepared OCI statement handle
// (component C12, spec §4.4). Grounded on the teacher's Stmt (stmt.go),
// with ODBC's SQLBindParameter/SQLExecute pair replaced by
// OCIBindByPos/OCIBindByName and OCIStmtExecute, and the teacher's
// rewrite-to-positional named-parameter handling replaced by native
// OCIBindByName (see params.go).
type Stmt struct {
	conn     *Conn
	stmth    oci.Handle
	query    string
	names    *BindNames
	stmtType int

	mu     sync.Mutex
	closed bool

	params []boundParam

	execMode    ExecMode
	returningRowIDBind bool
}

// Close releases the prepared statement handle.
func (s *Stmt) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.freeDescriptorsLocked()
	if s.stmth != 0 {
		s.conn.env.table.StmtRelease(s.stmth, s.conn.errh, nil, 0, oci.ModeDefault)
		s.stmth = 0
	}
	s.params = nil
	return nil
}

// freeDescriptorsLocked releases every descriptor-backed bind's live OCI
// descriptor (TIMESTAMP/TIMESTAMP WITH TIME ZONE/INTERVAL) from the
// previous bindArgsLocked call.
func (s *Stmt) freeDescriptorsLocked() {
	table := s.conn.env.table
	for _, p := range s.params {
		if p.descriptor == 0 {
			continue
		}
		dtype := uint32(oci.DTypeTimestamp)
		switch p.bind.SQLType {
		case oci.SQLT_TIMESTAMP_TZ:
			dtype = oci.DTypeTimestampTZ
		case oci.SQLT_INTERVAL_YM, oci.SQLT_INTERVAL_DS:
			dtype = oci.DTypeInterval
		}
		table.DescriptorFree(p.descriptor, dtype)
	}
}

// NumInput returns the number of placeholder parameters.
func (s *Stmt) NumInput() int {
	if s.names != nil {
		return s.names.names.Len()
	}
	return -1
}

// Exec executes a prepared statement without returning rows.
func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), namedValuesFromValues(args))
}

func namedValuesFromValues(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, a := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: a}
	}
	return out
}

// ExecContext executes a prepared statement that doesn't return rows,
// binding args, running OCIStmtExecute, and retrieving any OUT/IN-OUT
// parameter values and row count.
func (s *Stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, driver.ErrBadConn
	}

	ctx, span := startSpan(ctx, "ocigo.exec", s.conn.trace, s.query)
	var execErr error
	defer func() { endSpan(span, execErr) }()

	if err := s.bindArgsLocked(args); err != nil {
		execErr = err
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		execErr = err
		return nil, err
	}

	done := make(chan struct{})
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				s.conn.env.table.Break(s.conn.svch, s.conn.errh)
			case <-done:
			}
		}()
	}
	rc := s.conn.env.table.StmtExecute(s.conn.svch, s.stmth, s.conn.errh, iterCount(s.stmtType), 0, 0, 0, oci.ModeDefault)
	close(done)
	if err := s.conn.env.checkRC(rc, s.conn.errh, "OCIStmtExecute", Source{Kind: "statement", Object: s}); err != nil {
		if ctx.Err() != nil {
			execErr = ctx.Err()
			return nil, execErr
		}
		execErr = err
		return nil, err
	}

	var rowCount uint32
	var sz uint32
	s.conn.env.table.AttrGet(s.stmth, oci.HTypeStmt, uintptrOfUint32(&rowCount), &sz, oci.AttrRowCount, s.conn.errh)

	outVals, rowID := s.retrieveOutputLocked()

	if err := s.conn.commitIfAutocommit(); err != nil {
		execErr = err
		return nil, err
	}

	return &Result{rowsAffected: int64(rowCount), returningRowID: rowID, outputParams: outVals}, nil
}

// Query executes a prepared statement that returns rows.
func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), namedValuesFromValues(args))
}

// QueryContext executes a prepared statement that returns rows.
func (s *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, driver.ErrBadConn
	}

	ctx, span := startSpan(ctx, "ocigo.query", s.conn.trace, s.query)
	var queryErr error
	defer func() { endSpan(span, queryErr) }()

	if err := s.bindArgsLocked(args); err != nil {
		queryErr = err
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		queryErr = err
		return nil, err
	}

	rc := s.conn.env.table.StmtExecute(s.conn.svch, s.stmth, s.conn.errh, 0, 0, 0, 0, oci.ModeDefault)
	if err := s.conn.env.checkRC(rc, s.conn.errh, "OCIStmtExecute", Source{Kind: "statement", Object: s}); err != nil {
		queryErr = err
		return nil, err
	}

	return newRows(s, false)
}

// iterCount selects the execute iteration count: SELECT statements are
// executed with 0 iterations (OCI defers to OCIStmtFetch2), everything
// else with 1.
func iterCount(stmtType int) uint32 {
	if stmtType == oci.StmtSelect {
		return 0
	}
	return 1
}

func (s *Stmt) bindArgsLocked(args []driver.NamedValue) error {
	s.freeDescriptorsLocked()
	s.params = nil
	mode := s.conn.env.Mode()

	for _, arg := range args {
		direction := ParamInput
		actual := arg.Value
		outSize := 0
		if op, ok := arg.Value.(OutputParam); ok {
			direction = op.Direction
			actual = op.Value
			outSize = op.Size
		}

		var bind *Bind
		var err error
		if direction == ParamInput {
			bind, err = convertToOCI(actual, mode)
		} else {
			bind, err = allocateOutputBind(actual, outSize, direction, mode)
		}
		if err != nil {
			return err
		}

		bp := boundParam{bind: bind, direction: direction}
		if direction != ParamInput {
			bp.alen = uint32(len(bind.Buffer))
		}

		if bind.Descriptor != nil {
			dh, err := s.buildDescriptorBind(bind)
			if err != nil {
				return err
			}
			bp.descriptor = dh
		}

		if err := s.bindOne(arg, bp); err != nil {
			return err
		}
	}
	return nil
}

// buildDescriptorBind turns a Bind's Descriptor payload (TIMESTAMP,
// TIMESTAMP WITH TIME ZONE, or INTERVAL) into a live OCI descriptor via
// OCIDescriptorAlloc plus the matching construct call, since OCI has no
// way to bind these types as raw bytes.
func (s *Stmt) buildDescriptorBind(bind *Bind) (oci.Handle, error) {
	table := s.conn.env.table
	env := s.conn.env

	switch p := bind.Descriptor.(type) {
	case TimestampPayload:
		dtype := uint32(oci.DTypeTimestamp)
		if p.WithTZ {
			dtype = oci.DTypeTimestampTZ
		}
		var dh oci.Handle
		rc := table.DescriptorAlloc(env.envh, &dh, dtype, 0, 0)
		if err := env.checkRC(rc, s.conn.errh, "OCIDescriptorAlloc(timestamp)", Source{Kind: "statement", Object: s}); err != nil {
			return 0, err
		}
		var tzPtr *byte
		var tzLen uint64
		if p.WithTZ {
			tz := []byte(formatTZOffset(p.OffsetMinutes))
			tzPtr = &tz[0]
			tzLen = uint64(len(tz))
		}
		rc = table.DateTimeConstruct(env.envh, s.conn.errh, dh,
			int16(p.Y), uint8(p.Mo), uint8(p.D), uint8(p.H), uint8(p.Mi), uint8(p.S),
			uint32(p.Nanosecond), tzPtr, tzLen)
		if err := env.checkRC(rc, s.conn.errh, "OCIDateTimeConstruct", Source{Kind: "statement", Object: s}); err != nil {
			table.DescriptorFree(dh, dtype)
			return 0, err
		}
		return dh, nil

	case IntervalYMPayload:
		var dh oci.Handle
		rc := table.DescriptorAlloc(env.envh, &dh, oci.DTypeInterval, 0, 0)
		if err := env.checkRC(rc, s.conn.errh, "OCIDescriptorAlloc(interval)", Source{Kind: "statement", Object: s}); err != nil {
			return 0, err
		}
		years, months := p.Years, p.Months
		if p.Negative {
			years, months = -years, -months
		}
		rc = table.IntervalSetYearMonth(env.envh, s.conn.errh, int32(years), int32(months), dh)
		if err := env.checkRC(rc, s.conn.errh, "OCIIntervalSetYearMonth", Source{Kind: "statement", Object: s}); err != nil {
			table.DescriptorFree(dh, oci.DTypeInterval)
			return 0, err
		}
		return dh, nil

	case IntervalDSPayload:
		var dh oci.Handle
		rc := table.DescriptorAlloc(env.envh, &dh, oci.DTypeInterval, 0, 0)
		if err := env.checkRC(rc, s.conn.errh, "OCIDescriptorAlloc(interval)", Source{Kind: "statement", Object: s}); err != nil {
			return 0, err
		}
		days, hours, mins, secs, nsec := p.Days, p.Hours, p.Minutes, p.Seconds, p.Nanoseconds
		if p.Negative {
			days, hours, mins, secs, nsec = -days, -hours, -mins, -secs, -nsec
		}
		rc = table.IntervalSetDaySecond(env.envh, s.conn.errh, int32(days), int32(hours), int32(mins), int32(secs), int32(nsec), dh)
		if err := env.checkRC(rc, s.conn.errh, "OCIIntervalSetDaySecond", Source{Kind: "statement", Object: s}); err != nil {
			table.DescriptorFree(dh, oci.DTypeInterval)
			return 0, err
		}
		return dh, nil

	default:
		return 0, newError(KindArgumentInvalidValue, "bind", "unsupported descriptor payload type")
	}
}

// formatTZOffset renders a UTC offset in minutes as OCIDateTimeConstruct's
// expected "+HH:MI"/"-HH:MI" timezone text.
func formatTZOffset(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

func (s *Stmt) bindOne(arg driver.NamedValue, bp boundParam) error {
	var dataPtr uintptr
	valueSz := int32(len(bp.bind.Buffer))
	if bp.descriptor != 0 {
		dataPtr = uintptrOfPtr(&bp.descriptor)
		valueSz = int32(unsafe.Sizeof(bp.descriptor))
	} else if len(bp.bind.Buffer) > 0 {
		dataPtr = BufferPtr(bp.bind.Buffer)
	}
	if bp.direction != ParamInput && bp.descriptor == 0 && valueSz == 0 {
		valueSz = int32(bp.alen)
	}

	indicator := bp.bind.Indicator
	var bindh oci.Handle
	var rc int32
	table := s.conn.env.table

	if arg.Name != "" {
		name := []byte(arg.Name)
		rc = table.BindByName(s.stmth, &bindh, s.conn.errh,
			&name[0], int32(len(name)),
			dataPtr, valueSz, uint16(bp.bind.SQLType),
			uintptrOfInt16(&indicator), uintptrOfUint32(&bp.alen), 0,
			0, nil, oci.ModeDefault)
	} else {
		rc = table.BindByPos(s.stmth, &bindh, s.conn.errh,
			uint32(arg.Ordinal),
			dataPtr, valueSz, uint16(bp.bind.SQLType),
			uintptrOfInt16(&indicator), uintptrOfUint32(&bp.alen), 0,
			0, nil, oci.ModeDefault)
	}
	bp.indicator = indicator
	bp.position = arg.Ordinal
	s.params = append(s.params, bp)

	return s.conn.env.checkRC(rc, s.conn.errh, "OCIBindByPos/Name", Source{Kind: "statement", Object: s})
}

// allocateOutputBind builds a Bind suitable for an OUT or IN-OUT
// parameter, sized either from the caller's explicit size or a
// type-appropriate default (spec §3 Bind).
func allocateOutputBind(typeHint interface{}, size int, direction ParamDirection, mode strbridge.Mode) (*Bind, error) {
	switch v := typeHint.(type) {
	case nil, string:
		n := size
		if n == 0 {
			n = defaultOutputBufferSize
		}
		buf := make([]byte, n)
		if direction == ParamInputOutput {
			if s, ok := v.(string); ok {
				copy(buf, s)
			}
		}
		return &Bind{Buffer: buf, SQLType: oci.SQLT_STR, Size: n}, nil

	case []byte:
		n := size
		if n == 0 {
			n = defaultOutputBufferSize
		}
		buf := make([]byte, n)
		if direction == ParamInputOutput {
			copy(buf, v)
		}
		return &Bind{Buffer: buf, SQLType: oci.SQLT_BIN, Size: n}, nil

	default:
		in, err := convertToOCI(typeHint, mode)
		if err != nil {
			return nil, err
		}
		if len(in.Buffer) == 0 {
			in.Buffer = make([]byte, 8)
		}
		return in, nil
	}
}

// retrieveOutputLocked converts every OUT/IN-OUT bind's post-execute
// buffer back to a Go value, and — when the statement text includes a
// "RETURNING ROWID INTO" clause — returns the hex ROWID text for
// Result.LastInsertId.
func (s *Stmt) retrieveOutputLocked() ([]interface{}, string) {
	var outVals []interface{}
	var rowID string
	hasReturningRowID := strings.Contains(strings.ToUpper(s.query), "RETURNING ROWID INTO")

	maxIdx := -1
	for _, p := range s.params {
		if p.direction != ParamInput && p.position-1 > maxIdx {
			maxIdx = p.position - 1
		}
	}
	if maxIdx >= 0 {
		outVals = make([]interface{}, maxIdx+1)
	}

	for _, p := range s.params {
		if p.direction == ParamInput {
			continue
		}
		var val interface{}
		if p.indicator == oci.NullIndicator {
			val = nil
		} else if p.descriptor != 0 {
			val = s.decodeDescriptorLocked(p)
		} else {
			val = decodeScalar(p.bind.Buffer, p.bind.SQLType, p.alen, s.conn.env.Mode())
		}
		outVals[p.position-1] = val
		if hasReturningRowID {
			if s, ok := val.(string); ok {
				rowID = s
			}
		}
	}
	return outVals, rowID
}

// decodeDescriptorLocked reads an OUT/IN-OUT TIMESTAMP/INTERVAL bind's live
// descriptor back into a value package type, the inverse of
// buildDescriptorBind.
func (s *Stmt) decodeDescriptorLocked(p boundParam) interface{} {
	table := s.conn.env.table
	env := s.conn.env

	switch p.bind.SQLType {
	case oci.SQLT_TIMESTAMP, oci.SQLT_TIMESTAMP_TZ:
		var year int16
		var month, day, hour, minute, sec uint8
		var fsec uint32
		table.DateTimeGetDate(env.envh, s.conn.errh, p.descriptor, &year, &month, &day)
		rc := table.DateTimeGetTime(env.envh, s.conn.errh, p.descriptor, &hour, &minute, &sec, &fsec)
		if err := env.checkRC(rc, s.conn.errh, "OCIDateTimeGetTime", Source{Kind: "statement", Object: s}); err != nil {
			return nil
		}
		ts := value.Timestamp{
			Date: value.Date{
				Year: int(year), Month: int(month), Day: int(day),
				Hour: int(hour), Minute: int(minute), Second: int(sec),
			},
			Nanosecond: int(fsec),
		}
		if p.bind.SQLType == oci.SQLT_TIMESTAMP_TZ {
			return value.TimestampTZ{Timestamp: ts}
		}
		return ts

	case oci.SQLT_INTERVAL_YM:
		var yr, mnth int32
		rc := table.IntervalGetYearMonth(env.envh, s.conn.errh, &yr, &mnth, p.descriptor)
		if err := env.checkRC(rc, s.conn.errh, "OCIIntervalGetYearMonth", Source{Kind: "statement", Object: s}); err != nil {
			return nil
		}
		neg := yr < 0 || mnth < 0
		if yr < 0 {
			yr = -yr
		}
		if mnth < 0 {
			mnth = -mnth
		}
		return value.IntervalYearMonth{Years: int(yr), Months: int(mnth), Negative: neg}

	case oci.SQLT_INTERVAL_DS:
		var dy, hr, mm, ss, fsec int32
		rc := table.IntervalGetDaySecond(env.envh, s.conn.errh, &dy, &hr, &mm, &ss, &fsec, p.descriptor)
		if err := env.checkRC(rc, s.conn.errh, "OCIIntervalGetDaySecond", Source{Kind: "statement", Object: s}); err != nil {
			return nil
		}
		neg := dy < 0 || hr < 0 || mm < 0 || ss < 0 || fsec < 0
		if dy < 0 {
			dy = -dy
		}
		if hr < 0 {
			hr = -hr
		}
		if mm < 0 {
			mm = -mm
		}
		if ss < 0 {
			ss = -ss
		}
		if fsec < 0 {
			fsec = -fsec
		}
		return value.IntervalDaySecond{Days: int(dy), Hours: int(hr), Minutes: int(mm), Seconds: int(ss), Nanoseconds: int(fsec), Negative: neg}

	default:
		return nil
	}
}

// decodeScalar converts a raw OCI bind buffer back to a Go value for
// OUT/IN-OUT parameter retrieval.
func decodeScalar(buf []byte, sqlType int32, length uint32, mode strbridge.Mode) interface{} {
	n := int(length)
	if n > len(buf) {
		n = len(buf)
	}
	switch sqlType {
	case oci.SQLT_STR, oci.SQLT_CHR:
		s, err := strbridge.FromDB(buf[:n], mode)
		if err != nil {
			return string(buf[:n])
		}
		return s
	case oci.SQLT_BIN, oci.SQLT_LBI:
		out := make([]byte, n)
		copy(out, buf[:n])
		return out
	case oci.SQLT_INT:
		return decodeIntBuffer(buf)
	case oci.SQLT_FLT:
		return decodeFloatBuffer(buf)
	default:
		out := make([]byte, n)
		copy(out, buf[:n])
		return out
	}
}

func decodeIntBuffer(buf []byte) int64 {
	var v int64
	for i := len(buf) - 1; i >= 0; i-- {
		v = (v << 8) | int64(buf[i])
	}
	return v
}

func decodeFloatBuffer(buf []byte) float64 {
	bits := uint64(decodeIntBuffer(buf))
	if len(buf) == 4 {
		return float64(math.Float32frombits(uint32(bits)))
	}
	return math.Float64frombits(bits)
}

func uintptrOfInt16(p *int16) uintptr {
	return uintptrOfPtr(p)
}

// ExecBatch executes a prepared statement across many parameter sets in a
// single round trip using OCI array DML (spec §4.4 "Array DML"),
// collecting a per-row error wherever the vendor's OCI_BATCH_ERRORS mode
// reports one. Grounded on the teacher's ExecBatch (stmt.go): try array
// binding, fall back to row-by-row on anything array binding can't
// handle (non-uniform types, IN-OUT params, descriptor-backed binds).
func (s *Stmt) ExecBatch(ctx context.Context, paramSets [][]driver.NamedValue) (*BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, driver.ErrBadConn
	}
	if len(paramSets) == 0 {
		return &BatchResult{}, nil
	}

	numRows := len(paramSets)
	numParams := len(paramSets[0])
	result := &BatchResult{RowsAffected: make([]int64, numRows)}

	if numParams == 0 || !s.execBatchArrayBindingLocked(paramSets, numRows, numParams, result) {
		s.execBatchRowByRowLocked(ctx, paramSets, result)
	}
	return result, nil
}

// execBatchArrayBindingLocked attempts true OCI array-DML binding,
// binding one BindArray per parameter position with maxarrLen=numRows.
// Returns false when it cannot proceed (mixed OUT params, descriptor
// payloads, bind failure) so the caller falls back to row-by-row.
func (s *Stmt) execBatchArrayBindingLocked(paramSets [][]driver.NamedValue, numRows, numParams int, result *BatchResult) bool {
	table := s.conn.env.table
	mode := s.conn.env.Mode()

	for _, row := range paramSets {
		for _, p := range row {
			if _, ok := p.Value.(OutputParam); ok {
				return false // array binding only supports uniform IN binds
			}
			if b, err := convertToOCI(p.Value, mode); err != nil || b.Descriptor != nil {
				return false // descriptor-backed values are bound row by row
			}
		}
	}

	numErrs := uint32(numRows)
	if rc := table.AttrSet(s.stmth, oci.HTypeStmt, uintptrOfPtr(&numErrs), 0, oci.AttrNumDMLErrors, s.conn.errh); rc != oci.Success {
		return false
	}

	arrays := make([]*BindArray, numParams)
	names := make([]string, numParams)
	ordinals := make([]int, numParams)

	for col := 0; col < numParams; col++ {
		values := make([]interface{}, numRows)
		for row := 0; row < numRows; row++ {
			if col >= len(paramSets[row]) {
				return false
			}
			p := paramSets[row][col]
			values[row] = p.Value
			if row == 0 {
				names[col] = p.Name
				ordinals[col] = p.Ordinal
			}
		}
		arr, err := AllocateBindArray(values, numRows, mode)
		if err != nil || arr == nil {
			return false
		}
		arrays[col] = arr
	}

	for col, arr := range arrays {
		curelep := uint32(numRows)
		var bindh oci.Handle
		var rc int32
		if names[col] != "" {
			name := []byte(names[col])
			rc = table.BindByName(s.stmth, &bindh, s.conn.errh,
				&name[0], int32(len(name)),
				BufferPtr(arr.Data), int32(arr.ElemSize), uint16(arr.SQLType),
				uintptrOfPtr(&arr.Indicators[0]), 0, 0,
				uint32(numRows), &curelep, oci.ModeDefault)
		} else {
			rc = table.BindByPos(s.stmth, &bindh, s.conn.errh,
				uint32(ordinals[col]),
				BufferPtr(arr.Data), int32(arr.ElemSize), uint16(arr.SQLType),
				uintptrOfPtr(&arr.Indicators[0]), 0, 0,
				uint32(numRows), &curelep, oci.ModeDefault)
		}
		if err := s.conn.env.checkRC(rc, s.conn.errh, "OCIBindByPos/Name(array)", Source{Kind: "statement", Object: s}); err != nil {
			return false
		}
	}

	rc := table.StmtExecute(s.conn.svch, s.stmth, s.conn.errh, uint32(numRows), 0, 0, 0, oci.ModeBatchErrors)

	var rowCount uint32
	var sz uint32
	table.AttrGet(s.stmth, oci.HTypeStmt, uintptrOfUint32(&rowCount), &sz, oci.AttrRowCount, s.conn.errh)
	result.Count = int64(rowCount)

	switch rc {
	case oci.Success:
		for i := range result.RowsAffected {
			result.RowsAffected[i] = 1
		}
	case oci.SuccessWithInfo, oci.Error:
		s.collectBatchErrorsLocked(result)
		failed := make(map[int]bool, len(result.Errors))
		for _, e := range result.Errors {
			failed[e.RowOffset] = true
		}
		for i := range result.RowsAffected {
			if !failed[i] {
				result.RowsAffected[i] = 1
			}
		}
	default:
		err := s.conn.env.checkRC(rc, s.conn.errh, "OCIStmtExecute(batch)", Source{Kind: "statement", Object: s})
		for i := 0; i < numRows; i++ {
			result.Errors = append(result.Errors, BatchError{RowOffset: i, Err: err})
		}
	}

	s.conn.commitIfAutocommit()
	return true
}

// collectBatchErrorsLocked reads every per-row sub-error OCI recorded
// under OCI_BATCH_ERRORS mode via OCIParamGet(errh, OCI_HTYPE_ERROR, ...)
// against the row index, then OCIErrorGet on the row's own error handle.
func (s *Stmt) collectBatchErrorsLocked(result *BatchResult) {
	table := s.conn.env.table

	var numErrs uint32
	var sz uint32
	table.AttrGet(s.stmth, oci.HTypeStmt, uintptrOfUint32(&numErrs), &sz, oci.AttrNumDMLErrors, s.conn.errh)

	for i := uint32(0); i < numErrs; i++ {
		var rowErrh oci.Handle
		rc := table.ParamGet(s.conn.errh, oci.HTypeError, s.conn.errh, &rowErrh, i)
		if rc != oci.Success || rowErrh == 0 {
			continue
		}
		err := s.conn.env.checkRC(oci.Error, rowErrh, "OCIStmtExecute(row)", Source{Kind: "statement", Object: s})
		result.Errors = append(result.Errors, BatchError{RowOffset: int(i), Err: err})
	}
}

// execBatchRowByRowLocked executes each parameter set individually,
// used when array binding isn't applicable (OUT params, descriptor
// binds, non-uniform rows).
func (s *Stmt) execBatchRowByRowLocked(ctx context.Context, paramSets [][]driver.NamedValue, result *BatchResult) {
	for i, params := range paramSets {
		if err := s.bindArgsLocked(params); err != nil {
			result.Errors = append(result.Errors, BatchError{RowOffset: i, Err: err})
			continue
		}

		rc := s.conn.env.table.StmtExecute(s.conn.svch, s.stmth, s.conn.errh, iterCount(s.stmtType), 0, 0, 0, oci.ModeDefault)
		if err := s.conn.env.checkRC(rc, s.conn.errh, "OCIStmtExecute", Source{Kind: "statement", Object: s}); err != nil {
			result.Errors = append(result.Errors, BatchError{RowOffset: i, Err: err})
			continue
		}

		var rowCount uint32
		var sz uint32
		s.conn.env.table.AttrGet(s.stmth, oci.HTypeStmt, uintptrOfUint32(&rowCount), &sz, oci.AttrRowCount, s.conn.errh)
		result.RowsAffected[i] = int64(rowCount)
		result.Count += int64(rowCount)
	}
	s.conn.commitIfAutocommit()
}

var (
	_ driver.Stmt             = (*Stmt)(nil)
	_ driver.StmtExecContext  = (*Stmt)(nil)
	_ driver.StmtQueryContext = (*Stmt)(nil)
)
