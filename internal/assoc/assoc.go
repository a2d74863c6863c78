// Package assoc implements the per-method association map shared by the
// AST, CFG, and PDG passes: a mapping from IR entity identity to the
// ordered list of CPG nodes produced for it.
package assoc

import "github.com/plume-oss/plume-driver/internal/cpg"

// Map binds IR entities (by reference identity — any Go pointer or
// comparable value used as an opaque key) to the ordered sequence of nodes
// produced for them. The zero value is not usable; use New.
type Map struct {
	data  map[any][]*cpg.Node
	order []any
	seen  map[any]bool
}

// New returns an empty association map.
func New() *Map {
	return &Map{
		data: make(map[any][]*cpg.Node),
		seen: make(map[any]bool),
	}
}

func (m *Map) markSeen(key any) {
	if !m.seen[key] {
		m.seen[key] = true
		m.order = append(m.order, key)
	}
}

// Append concatenates nodes to the existing sequence for key, creating the
// entry if absent.
func (m *Map) Append(key any, nodes ...*cpg.Node) {
	if len(nodes) == 0 {
		return
	}
	m.markSeen(key)
	m.data[key] = append(m.data[key], nodes...)
}

// Insert inserts nodes at position at within the existing sequence for
// key. If no entry exists yet, this is equivalent to Append.
func (m *Map) Insert(key any, at int, nodes ...*cpg.Node) {
	if len(nodes) == 0 {
		return
	}
	m.markSeen(key)
	existing := m.data[key]
	if at < 0 {
		at = 0
	}
	if at > len(existing) {
		at = len(existing)
	}
	merged := make([]*cpg.Node, 0, len(existing)+len(nodes))
	merged = append(merged, existing[:at]...)
	merged = append(merged, nodes...)
	merged = append(merged, existing[at:]...)
	m.data[key] = merged
}

// Get returns the sequence recorded for key, or nil if absent.
func (m *Map) Get(key any) []*cpg.Node {
	return m.data[key]
}

// Keys returns every key with at least one recorded node, in the order
// each was first seen.
func (m *Map) Keys() []any {
	out := make([]any, len(m.order))
	copy(out, m.order)
	return out
}

// Clear discards every entry, leaving the map empty.
func (m *Map) Clear() {
	m.data = make(map[any][]*cpg.Node)
	m.order = nil
	m.seen = make(map[any]bool)
}
