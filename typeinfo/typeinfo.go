// Package typeinfo implements the describe cache (C8): describing
// tables/types/collections and caching column metadata keyed by qualified
// name, so concurrent describes of the same object collapse to a single
// round trip (spec §4.5 "Column metadata", §8 "describe once, reuse").
package typeinfo

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/go-ocilib/ocigo/internal/hashindex"
)

// Category is a column's translated internal category (spec §4.5).
type Category int

const (
	CategoryNumeric Category = iota
	CategoryText
	CategoryRaw
	CategoryDate
	CategoryTimestamp
	CategoryInterval
	CategoryLOB
	CategoryFile
	CategoryLong
	CategoryCursor
	CategoryObject
	CategoryCollection
	CategoryReference
	CategoryBoolean
	CategoryVector
)

// Column is a single column/attribute descriptor, populated by DESCRIBE
// (spec §4.5).
type Column struct {
	Name         string
	SQLCode      int
	Category     Category
	Subtype      string // e.g. "BLOB" vs "CLOB", "timestamp" vs "timestamp-tz"
	Precision    int
	Scale        int
	Size         int
	Nullable     bool
	CharsetForm  int
	Fields       []Column // non-nil for structured (object) types
}

// TypeInfo is the describe result for a table, a named SQL object type, or
// a collection type.
type TypeInfo struct {
	QualifiedName string
	Columns       []Column
	names         *hashindex.Index
}

// ColumnIndex returns the 0-based index of the named column.
func (t *TypeInfo) ColumnIndex(name string) (int, bool) {
	if t.names == nil {
		t.names = hashindex.New()
		for i, c := range t.Columns {
			t.names.Add(c.Name, i)
		}
	}
	pos, ok := t.names.Positions(name)
	if !ok || len(pos) == 0 {
		return 0, false
	}
	return pos[0], true
}

// Names returns every column name, in describe order.
func (t *TypeInfo) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// DescribeFunc performs the actual OCI DESCRIBE call for a qualified name;
// supplied by the root package, which owns the service-context handle.
type DescribeFunc func(qualifiedName string) (*TypeInfo, error)

// Cache caches TypeInfo by qualified name, deduplicating concurrent
// describes of the same name via singleflight (spec §4's "cache column
// metadata", generalized to avoid a thundering herd of identical DESCRIBE
// round trips).
type Cache struct {
	describe DescribeFunc

	mu    sync.RWMutex
	byKey map[string]*TypeInfo

	group singleflight.Group
}

// NewCache returns a Cache that calls describe on a miss.
func NewCache(describe DescribeFunc) *Cache {
	return &Cache{describe: describe, byKey: make(map[string]*TypeInfo)}
}

// Get returns the cached TypeInfo for qualifiedName, describing it on a
// miss. Concurrent Get calls for the same name share one describe call.
func (c *Cache) Get(qualifiedName string) (*TypeInfo, error) {
	c.mu.RLock()
	if ti, ok := c.byKey[qualifiedName]; ok {
		c.mu.RUnlock()
		return ti, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(qualifiedName, func() (interface{}, error) {
		ti, err := c.describe(qualifiedName)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.byKey[qualifiedName] = ti
		c.mu.Unlock()
		return ti, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TypeInfo), nil
}

// Invalidate drops qualifiedName from the cache, forcing the next Get to
// re-describe.
func (c *Cache) Invalidate(qualifiedName string) {
	c.mu.Lock()
	delete(c.byKey, qualifiedName)
	c.mu.Unlock()
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}
