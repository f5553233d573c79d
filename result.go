package ocigo

import (
	"database/sql/driver"
	"errors"
)

// Result implements driver.Result for INSERT/UPDATE/DELETE/MERGE and
// PL/SQL block execution.
type Result struct {
	rowsAffected int64
	// returningRowID holds the ROWID captured via a "RETURNING ROWID INTO"
	// bind, Oracle's analogue of an auto-increment id. Unlike MySQL/SQLite,
	// Oracle has no identity-query concept the driver can invoke on the
	// caller's behalf (dropped from the teacher's getLastInsertId/
	// LastInsertIdBehavior machinery), so LastInsertId only
	// succeeds when the statement text itself requested a ROWID back.
	returningRowID string
	outputParams   []interface{}
}

// ErrNoReturningRowID is returned by LastInsertId when the executed
// statement did not include a "RETURNING ROWID INTO" bind.
var ErrNoReturningRowID = errors.New("ocigo: statement did not RETURN a ROWID; Oracle has no implicit last-insert-id")

// LastInsertId returns the ROWID captured by a RETURNING ROWID INTO bind,
// packed into an int64 by reading its first 15 characters as hex digits
// (any other character counts as 0);
// callers that need the full ROWID string should bind an explicit OUT
// parameter instead and read it from OutputParams.
func (r *Result) LastInsertId() (int64, error) {
	if r.returningRowID == "" {
		return 0, ErrNoReturningRowID
	}
	var id int64
	for i := 0; i < len(r.returningRowID) && i < 15; i++ {
		id = (id << 4) | int64(hexDigit(r.returningRowID[i]))
	}
	return id & 0x7fffffffffffffff, nil
}

func hexDigit(c byte) int64 {
	switch {
	case c >= '0' && c <= '9':
		return int64(c - '0')
	case c >= 'a' && c <= 'f':
		return int64(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int64(c-'A') + 10
	default:
		return 0
	}
}

// RowsAffected returns the number of rows affected by the statement.
func (r *Result) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

// OutputParams returns the values of OUT/IN-OUT bind parameters after
// executing a PL/SQL block or a procedure call, in bind order.
func (r *Result) OutputParams() []interface{} {
	return r.outputParams
}

// OutputParam returns a single output parameter value by index (0-based).
func (r *Result) OutputParam(index int) interface{} {
	if index < 0 || index >= len(r.outputParams) {
		return nil
	}
	return r.outputParams[index]
}

var _ driver.Result = (*Result)(nil)
