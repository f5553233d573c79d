// Package hashindex provides named lookup for bind names, column names,
// and other small string-keyed registries used throughout the driver.
//
// The specification scopes the hash-table implementation itself out
// ("the hash-table utility (specified only by its contract)"); this
// package satisfies the contract — stable insertion order, O(1) average
// lookup, case-sensitive exact match — over Go's built-in map rather than
// inventing a custom table.
package hashindex

// Index maps names to one or more positions, preserving first-seen order
// of distinct names. It mirrors the shape of the teacher's
// NamedParams.Positions map, generalized into a reusable registry for
// bind names (C12) and column names (C13).
type Index struct {
	order []string
	pos   map[string][]int
}

// New returns an empty Index.
func New() *Index {
	return &Index{pos: make(map[string][]int)}
}

// Add records an occurrence of name at position p. The first time name is
// seen it is appended to Names().
func (idx *Index) Add(name string, p int) {
	if _, ok := idx.pos[name]; !ok {
		idx.order = append(idx.order, name)
	}
	idx.pos[name] = append(idx.pos[name], p)
}

// Positions returns every recorded position for name, in insertion order.
func (idx *Index) Positions(name string) ([]int, bool) {
	v, ok := idx.pos[name]
	return v, ok
}

// Names returns every distinct name in first-seen order.
func (idx *Index) Names() []string {
	return idx.order
}

// Len reports the number of distinct names.
func (idx *Index) Len() int { return len(idx.order) }
