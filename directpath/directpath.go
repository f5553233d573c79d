// Package directpath implements bulk loading that bypasses the SQL layer
// (C14, spec §4.9).
package directpath

import (
	"fmt"

	"github.com/google/uuid"
)

// State is a position in the direct-path load state machine (spec §4.9).
type State int

const (
	StateNotPrepared State = iota
	StatePrepared
	StateConverted
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateNotPrepared:
		return "not-prepared"
	case StatePrepared:
		return "prepared"
	case StateConverted:
		return "converted"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Status distinguishes a convert/load_stream outcome (spec §4.9: "a status
// distinguishing success, partial (some rows erred), and fatal").
type Status int

const (
	StatusSuccess Status = iota
	StatusPartial
	StatusFatal
)

// ColumnDef describes one target column's conversion format (spec §3).
type ColumnDef struct {
	Name      string
	Format    string
	MaxSize   int
}

// RowError records a per-row conversion failure (spec §4.9: "errors may be
// per-row").
type RowError struct {
	Row     int
	Col     int
	Message string
}

// ErrInvalidTransition reports a state-machine violation (Kind
// KindDirectPathState in the root package's taxonomy).
type ErrInvalidTransition struct {
	From, Attempted State
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("directpath: invalid transition from %s via %s", e.From, e.Attempted)
}

// Backend is the OCI direct-path call surface; implemented by the root
// package.
type Backend interface {
	Convert(batch [][]any) (Status, []RowError, error)
	LoadStream() (Status, error)
	Finish() error
	Abort() error
}

// Context drives one direct-path load (spec §4.9, SPEC_FULL.md §3).
type Context struct {
	BatchID    string
	Table      string
	ArraySize  int
	Columns    []ColumnDef

	state   State
	backend Backend
	batch   [][]any
}

// NewContext returns a Context in state not-prepared.
func NewContext(table string, arraySize int, backend Backend) *Context {
	return &Context{BatchID: uuid.NewString(), Table: table, ArraySize: arraySize, backend: backend, state: StateNotPrepared}
}

// State reports the current state.
func (c *Context) State() State { return c.state }

// Prepare fixes the column layout. Valid only from not-prepared.
func (c *Context) Prepare(columns []ColumnDef) error {
	if c.state != StateNotPrepared {
		return &ErrInvalidTransition{From: c.state, Attempted: StatePrepared}
	}
	c.Columns = columns
	c.batch = make([][]any, c.ArraySize)
	for i := range c.batch {
		c.batch[i] = make([]any, len(columns))
	}
	c.state = StatePrepared
	return nil
}

// SetEntry fills one column of one row in the pending batch. Valid from
// prepared or converted; entries set while converted are cleared by the
// following LoadStream together with the rest of the batch.
func (c *Context) SetEntry(row, col int, value any) error {
	if c.state != StatePrepared && c.state != StateConverted {
		return &ErrInvalidTransition{From: c.state, Attempted: StatePrepared}
	}
	if row < 0 || row >= len(c.batch) {
		return fmt.Errorf("directpath: row %d out of range [0,%d)", row, len(c.batch))
	}
	if col < 0 || col >= len(c.Columns) {
		return fmt.Errorf("directpath: col %d out of range [0,%d)", col, len(c.Columns))
	}
	c.batch[row][col] = value
	return nil
}

// Convert validates the current batch. Must be called before LoadStream
// (spec §4.9 invariant: "convert and load_stream must be called in that
// order per batch").
func (c *Context) Convert() (Status, []RowError, error) {
	if c.state != StatePrepared {
		return StatusFatal, nil, &ErrInvalidTransition{From: c.state, Attempted: StateConverted}
	}
	status, rowErrs, err := c.backend.Convert(c.batch)
	if err != nil {
		return StatusFatal, rowErrs, err
	}
	c.state = StateConverted
	return status, rowErrs, nil
}

// LoadStream flushes the converted batch to the server. Must follow
// Convert.
func (c *Context) LoadStream() (Status, error) {
	if c.state != StateConverted {
		return StatusFatal, &ErrInvalidTransition{From: c.state, Attempted: StateConverted}
	}
	status, err := c.backend.LoadStream()
	if err != nil {
		return StatusFatal, err
	}
	// Ready for the next batch's SetEntry calls.
	for i := range c.batch {
		for j := range c.batch[i] {
			c.batch[i][j] = nil
		}
	}
	c.state = StatePrepared
	return status, nil
}

// Finish commits the load and terminates the context.
func (c *Context) Finish() error {
	if c.state == StateTerminated {
		return &ErrInvalidTransition{From: c.state, Attempted: StateTerminated}
	}
	if err := c.backend.Finish(); err != nil {
		return err
	}
	c.state = StateTerminated
	return nil
}

// Abort discards the load and terminates the context.
func (c *Context) Abort() error {
	if c.state == StateTerminated {
		return &ErrInvalidTransition{From: c.state, Attempted: StateTerminated}
	}
	if err := c.backend.Abort(); err != nil {
		return err
	}
	c.state = StateTerminated
	return nil
}
