// Package memstat tracks typed allocation counters and produces the leak
// report that Environment.Cleanup emits (C4, spec §4.2).
package memstat

import (
	"fmt"
	"sync/atomic"
)

// Kind tags a counted allocation category.
type Kind int

const (
	Handles Kind = iota
	Descriptors
	Objects
	Bytes
	numKinds
)

func (k Kind) String() string {
	switch k {
	case Handles:
		return "handles"
	case Descriptors:
		return "descriptors"
	case Objects:
		return "objects"
	case Bytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Counters holds one atomic counter per Kind. The zero value is ready to
// use. A single Counters is shared by the whole Environment (the spec's
// "non-zero handle/descriptor/object counters and... byte counter").
type Counters struct {
	n [numKinds]int64
}

// Add adjusts the counter for kind by delta (negative on release).
func (c *Counters) Add(kind Kind, delta int64) {
	atomic.AddInt64(&c.n[kind], delta)
}

// Get returns the current value for kind.
func (c *Counters) Get(kind Kind) int64 {
	return atomic.LoadInt64(&c.n[kind])
}

// Report is the leak-report snapshot returned by Cleanup.
type Report struct {
	Handles     int64
	Descriptors int64
	Objects     int64
	Bytes       int64
}

// Clean reports whether every counter is back to zero.
func (r Report) Clean() bool {
	return r.Handles == 0 && r.Descriptors == 0 && r.Objects == 0 && r.Bytes == 0
}

func (r Report) String() string {
	if r.Clean() {
		return "memstat: clean"
	}
	return fmt.Sprintf("memstat: %d handles, %d descriptors, %d objects, %d bytes unfreed",
		r.Handles, r.Descriptors, r.Objects, r.Bytes)
}

// Snapshot returns the current state of every counter as a Report.
func (c *Counters) Snapshot() Report {
	return Report{
		Handles:     c.Get(Handles),
		Descriptors: c.Get(Descriptors),
		Objects:     c.Get(Objects),
		Bytes:       c.Get(Bytes),
	}
}
