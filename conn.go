package ocigo

import (
	"context"
	"database/sql/driver"
	"sync"
	"time"

	"github.com/go-ocilib/ocigo/internal/oci"
)

// Conn implements driver.Conn over one OCI service context (component C7,
// spec §4.3 Connection). Grounded on the teacher's Conn (conn.go), with
// env/dbc replaced by the OCI attach/session-begin handle triple
// (server, service context, user session) spec §4.3 describes.
type Conn struct {
	env   *Environment
	srvh  oci.Handle
	svch  oci.Handle
	userh oci.Handle
	errh  oci.Handle

	mu           sync.Mutex
	closed       bool
	inTx         bool
	autocommit   bool
	sessionTag   string
	queryTimeout time.Duration
	trace        TraceMetadata
}

// Prepare prepares a statement for execution.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

// PrepareContext prepares a statement, deriving its bind-name registry and
// OCI statement type (spec §4.4 "Statement execution").
func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, driver.ErrBadConn
	}
	return c.prepareLocked(query)
}

func (c *Conn) prepareLocked(query string) (*Stmt, error) {
	table := c.env.table
	qb := []byte(query)
	var qptr *byte
	if len(qb) > 0 {
		qptr = &qb[0]
	}

	var stmth oci.Handle
	rc := table.StmtPrepare2(c.svch, &stmth, c.errh, qptr, uint32(len(qb)), nil, 0, 1, oci.ModeDefault)
	if err := c.env.checkRC(rc, c.errh, "OCIStmtPrepare2", Source{Kind: "connection", Object: c}); err != nil {
		return nil, err
	}

	var stmtType uint32
	var attrSize uint32
	table.AttrGet(stmth, oci.HTypeStmt, uintptrOfUint32(&stmtType), &attrSize, oci.AttrStmtType, c.errh)

	names := ParseBindNames(query)

	return &Stmt{
		conn:     c,
		stmth:    stmth,
		query:    query,
		names:    names,
		stmtType: int(stmtType),
	}, nil
}

// Close detaches the session and server connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	table := c.env.table
	if c.svch != 0 && c.userh != 0 {
		table.SessionEnd(c.svch, c.errh, c.userh, oci.ModeDefault)
	}
	if c.srvh != 0 {
		table.ServerDetach(c.srvh, c.errh, oci.ModeDefault)
		table.HandleFree(c.srvh, oci.HTypeServer)
	}
	if c.userh != 0 {
		table.HandleFree(c.userh, oci.HTypeSession)
	}
	if c.svch != 0 {
		table.HandleFree(c.svch, oci.HTypeSvcCtx)
	}
	if c.errh != 0 {
		table.HandleFree(c.errh, oci.HTypeError)
	}
	c.env.errSlot.clearSource(c)
	return nil
}

// Begin starts a local transaction (deprecated path; use BeginTx).
func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx starts a local transaction via OCITransStart (spec §4.3
// Transactions). TxMode is not consulted; no distributed (global)
// transaction is started here.
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, driver.ErrBadConn
	}
	if c.inTx {
		return nil, newError(KindStatementStateInvalid, "BeginTx", "connection is already inside a transaction")
	}

	table := c.env.table
	rc := table.TransStart(c.svch, c.errh, 0, oci.ModeDefault)
	if err := c.env.checkRC(rc, c.errh, "OCITransStart", Source{Kind: "connection", Object: c}); err != nil {
		return nil, err
	}
	c.autocommit = false
	c.inTx = true
	return &Tx{conn: c}, nil
}

// Ping verifies the connection is still alive by round-tripping a no-op
// OCI call through the existing service context.
func (c *Conn) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return driver.ErrBadConn
	}
	stmt, err := c.prepareLocked("SELECT 1 FROM DUAL")
	if err != nil {
		return driver.ErrBadConn
	}
	defer stmt.Close()
	rc := c.env.table.StmtExecute(c.svch, stmt.stmth, c.errh, 1, 0, 0, 0, oci.ModeDefault)
	if rc != oci.Success && rc != oci.SuccessWithInfo {
		return driver.ErrBadConn
	}
	return nil
}

// ExecContext executes a query without returning rows.
func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	stmt, err := c.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	return stmt.(*Stmt).ExecContext(ctx, args)
}

// QueryContext executes a query that returns rows.
func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	stmt, err := c.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.(*Stmt).QueryContext(ctx, args)
	if err != nil {
		stmt.Close()
		return nil, err
	}
	rows.(*Rows).closeStmt = true
	return rows, nil
}

// ResetSession is called by database/sql before reusing a pooled
// connection (spec §5's session-pool "session_release" hook).
func (c *Conn) ResetSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.inTx {
		return driver.ErrBadConn
	}
	return nil
}

// IsValid reports whether the connection is usable.
func (c *Conn) IsValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.svch != 0
}

// CheckNamedValue accepts every value type this driver's convertToOCI
// understands (including the value package's types), deferring real
// validation to bind time.
func (c *Conn) CheckNamedValue(nv *driver.NamedValue) error {
	return nil
}

// SetAutocommit toggles autocommit mode for subsequent ExecContext calls
// outside of an explicit transaction (spec §4.3 "autocommit").
func (c *Conn) SetAutocommit(on bool) {
	c.mu.Lock()
	c.autocommit = on
	c.mu.Unlock()
}

// SetTraceMetadata pushes identifier/module/action/client-info/DB-operation
// onto the session (spec §4.3 Connection's "trace metadata" attribute) via
// OCIAttrSet, and stores it so trace.go's span helpers can tag the same
// values onto the OTel spans Exec/Query open.
func (c *Conn) SetTraceMetadata(meta TraceMetadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	table := c.env.table
	setStr := func(attr uint32, v string) error {
		if v == "" {
			return nil
		}
		b := []byte(v)
		rc := table.AttrSet(c.userh, oci.HTypeSession, uintptr(ptrOfByteSlice(b)), uint32(len(b)), attr, c.errh)
		return c.env.checkRC(rc, c.errh, "OCIAttrSet(trace)", Source{Kind: "connection", Object: c})
	}
	if err := setStr(oci.AttrClientIdentifier, meta.Identifier); err != nil {
		return err
	}
	if err := setStr(oci.AttrModule, meta.Module); err != nil {
		return err
	}
	if err := setStr(oci.AttrAction, meta.Action); err != nil {
		return err
	}
	if err := setStr(oci.AttrClientInfo, meta.ClientInfo); err != nil {
		return err
	}
	if err := setStr(oci.AttrDBOp, meta.DBOperation); err != nil {
		return err
	}
	c.trace = meta
	return nil
}

// commitIfAutocommit runs OCITransCommit after a non-transactional
// execute when autocommit is enabled.
func (c *Conn) commitIfAutocommit() error {
	c.mu.Lock()
	autocommit := c.autocommit && !c.inTx
	c.mu.Unlock()
	if !autocommit {
		return nil
	}
	rc := c.env.table.TransCommit(c.svch, c.errh, oci.ModeDefault)
	return c.env.checkRC(rc, c.errh, "OCITransCommit", Source{Kind: "connection", Object: c})
}

func uintptrOfUint32(p *uint32) uintptr {
	return uintptr(ptrOfUint32(p))
}

var (
	_ driver.Conn               = (*Conn)(nil)
	_ driver.ConnPrepareContext = (*Conn)(nil)
	_ driver.ConnBeginTx        = (*Conn)(nil)
	_ driver.Pinger             = (*Conn)(nil)
	_ driver.ExecerContext      = (*Conn)(nil)
	_ driver.QueryerContext     = (*Conn)(nil)
	_ driver.SessionResetter    = (*Conn)(nil)
	_ driver.Validator          = (*Conn)(nil)
)
