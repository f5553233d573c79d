package ocigo

import (
	"fmt"
	"sync"

	"github.com/agnivade/levenshtein"
)

// Kind classifies an Error per spec §7's taxonomy.
type Kind int

const (
	KindVendor Kind = iota
	KindLibraryLogic
	KindQueueTimeout
	KindNotAvailable
	KindNotInitialized
	KindNullPointer
	KindArgumentOutOfRange
	KindArgumentInvalidValue
	KindTypeMismatch
	KindStatementStateInvalid
	KindStatementNotScrollable
	KindDirectPathState
	KindItemNotFound
	KindLoadingSharedLib
	KindLoadingSymbols
	KindUnfreedData
	KindUnfreedBytes
	KindSessionLost
	KindInterrupted
	KindExternalBindingNotAllowed
)

func (k Kind) String() string {
	names := [...]string{
		"vendor", "library-logic", "queue-timeout", "not-available",
		"not-initialized", "null-pointer", "argument-out-of-range",
		"argument-invalid-value", "type-mismatch", "statement-state-invalid",
		"statement-not-scrollable", "direct-path-state", "item-not-found",
		"loading-shared-lib", "loading-symbols", "unfreed-data",
		"unfreed-bytes", "session-lost", "interrupted",
		"external-binding-not-allowed",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "unknown"
	}
	return names[k]
}

// Source tags the kind of driver object that raised an Error, so a
// listener can inspect context without a type switch on Source itself.
type Source struct {
	Kind   string // "connection", "statement", "result-set", "lob", ...
	Object any
}

// Error is the driver's unified error record (spec §7).
type Error struct {
	Kind       Kind
	Code       int32 // vendor numeric code when Kind == KindVendor, else 0
	Source     Source
	RowOffset  int // set when raised within an array-DML iteration; -1 otherwise
	Location   string
	Message    string
	Suggestion string // nearest registered name, for item-not-found only
}

func (e *Error) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("ocigo: %s: %s (did you mean %q?)", e.Kind, e.Message, e.Suggestion)
	}
	if e.Kind == KindVendor {
		return fmt.Sprintf("ocigo: vendor error ORA-%05d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("ocigo: %s: %s", e.Kind, e.Message)
}

func newError(kind Kind, location, message string) *Error {
	return &Error{Kind: kind, Location: location, Message: message, RowOffset: -1}
}

// NullPointerError reports a NULL argument where one is not permitted.
func NullPointerError(location, arg string) *Error {
	return newError(KindNullPointer, location, fmt.Sprintf("argument %q must not be nil", arg))
}

// InvalidValueError reports an out-of-enum argument value.
func InvalidValueError(location, arg string, value any) *Error {
	return newError(KindArgumentInvalidValue, location, fmt.Sprintf("argument %q has invalid value %v", arg, value))
}

// ItemNotFoundError reports a named-lookup miss, attaching the closest
// registered name (by Levenshtein edit distance) as a Suggestion when one
// is within a reasonable distance of the query.
func ItemNotFoundError(location, kind, name string, candidates []string) *Error {
	e := newError(KindItemNotFound, location, fmt.Sprintf("%s %q not found", kind, name))
	e.Suggestion = nearestName(name, candidates)
	return e
}

func nearestName(name string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		// Only suggest names that are plausibly a typo, not an unrelated
		// name: distance must not exceed half the query's length plus one.
		if d > len(name)/2+1 {
			continue
		}
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// VendorError wraps an OCI error-handle diagnostic (ORA-xxxxx) as an Error.
func VendorError(location string, code int32, message string, src Source) *Error {
	return &Error{Kind: KindVendor, Code: code, Source: src, RowOffset: -1, Location: location, Message: message}
}

// currentError is the thread-local current-error slot (spec §5: "The
// current-error slot is thread-local"). Go has no native thread-local
// storage; this slot is a single mutex-guarded most-recent error held per
// Environment and shared by every goroutine using it, so it is not kept
// per goroutine: a later error from any goroutine replaces an earlier one.
type errorSlot struct {
	mu  sync.Mutex
	cur *Error
}

func (s *errorSlot) set(e *Error) {
	s.mu.Lock()
	s.cur = e
	s.mu.Unlock()
}

func (s *errorSlot) get() *Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// clearSource drops any stored error whose Source.Object is obj, matching
// holder.Release step (d): "clear any reference that still points at this
// smart handle."
func (s *errorSlot) clearSource(obj any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil && s.cur.Source.Object == obj {
		s.cur = nil
	}
}
