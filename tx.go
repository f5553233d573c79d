package ocigo

import (
	"database/sql/driver"

	"github.com/go-ocilib/ocigo/internal/oci"
)

// Tx implements driver.Tx over one OCI transaction (component C7, spec
// §4.3 Transactions). Grounded on the teacher's Tx (tx.go), with
// SQLEndTran(SQL_COMMIT/SQL_ROLLBACK) replaced by OCITransCommit/
// OCITransRollback.
type Tx struct {
	conn *Conn
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()

	if !t.conn.inTx {
		return nil
	}

	rc := t.conn.env.table.TransCommit(t.conn.svch, t.conn.errh, oci.ModeDefault)
	t.conn.inTx = false
	t.conn.autocommit = true
	return t.conn.env.checkRC(rc, t.conn.errh, "OCITransCommit", Source{Kind: "connection", Object: t.conn})
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()

	if !t.conn.inTx {
		return nil
	}

	rc := t.conn.env.table.TransRollback(t.conn.svch, t.conn.errh, oci.ModeDefault)
	t.conn.inTx = false
	t.conn.autocommit = true
	return t.conn.env.checkRC(rc, t.conn.errh, "OCITransRollback", Source{Kind: "connection", Object: t.conn})
}

var _ driver.Tx = (*Tx)(nil)
