// Package aq implements Oracle Advanced Queuing enqueue/dequeue (C14, spec
// §4.8).
package aq

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Navigation selects which message dequeue retrieves (spec §4.8).
type Navigation int

const (
	NavFirst Navigation = iota
	NavNext
	NavSpecific
)

// Visibility controls when an enqueue/dequeue becomes visible to others.
type Visibility int

const (
	VisibilityImmediate Visibility = iota
	VisibilityOnCommit
)

// ErrQueueTimeout is the queue-timeout condition (spec §7, Kind
// KindQueueTimeout in the root package's taxonomy); it is not itself the
// Error type so this package stays independent of the root package's
// import graph.
var ErrQueueTimeout = errors.New("aq: dequeue timed out")

// Message is a single AQ message (spec §4.8).
type Message struct {
	ID             string
	Payload        []byte
	ObjectPayload  any // non-nil when the queue carries typed objects
	Correlation    string
	ExceptionQueue string
	SenderAgent    string
	Enqueued       time.Time
}

// EncodePayload msgpack-encodes v as the message's raw-bytes payload, for
// queues that carry arbitrary Go values instead of a pre-serialized
// []byte or a typed SQL object (SPEC_FULL.md §2 Ambient stack, AQ payload
// encoding).
func EncodePayload(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// DecodePayload is the inverse of EncodePayload.
func DecodePayload(b []byte, out any) error {
	return msgpack.Unmarshal(b, out)
}

// DequeueOptions configures Dequeue (spec §4.8).
type DequeueOptions struct {
	Navigation   Navigation
	MessageID    string // used when Navigation == NavSpecific
	Visibility   Visibility
	WaitTimeout  time.Duration // -1 = forever, 0 = no-wait
	ConsumerName string        // for multi-consumer queues
}

// NoWait reports whether this options set requests immediate return on an
// empty queue, which suppresses ErrQueueTimeout from being a user-visible
// error per spec §7 ("not surfaced as a user error when the caller
// configured no-wait").
func (o DequeueOptions) NoWait() bool { return o.WaitTimeout == 0 }

// Driver is the minimal OCI surface aq needs; implemented by the root
// package against a live connection.
type Driver interface {
	Enqueue(queue string, msg *Message, vis Visibility) error
	Dequeue(queue string, opts DequeueOptions) (*Message, error)
}

// Queue is a named AQ queue bound to a Driver.
type Queue struct {
	Name   string
	driver Driver
}

// NewQueue returns a Queue named name, backed by driver.
func NewQueue(name string, driver Driver) *Queue {
	return &Queue{Name: name, driver: driver}
}

// Enqueue posts msg to the queue, assigning a correlation id via uuid if
// the caller left one unset.
func (q *Queue) Enqueue(msg *Message, vis Visibility) error {
	if msg.Correlation == "" {
		msg.Correlation = uuid.NewString()
	}
	if msg.Enqueued.IsZero() {
		msg.Enqueued = time.Now()
	}
	return q.driver.Enqueue(q.Name, msg, vis)
}

// Dequeue retrieves the next matching message, or returns ErrQueueTimeout
// on an empty queue — except when opts.NoWait() is true, in which case the
// caller is expected to treat a nil, nil result as "no message available"
// rather than an error (spec §7's suppression rule).
func (q *Queue) Dequeue(opts DequeueOptions) (*Message, error) {
	msg, err := q.driver.Dequeue(q.Name, opts)
	if err != nil {
		if errors.Is(err, ErrQueueTimeout) && opts.NoWait() {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}
