// Package delta implements the append-only delta-graph builder: the
// lowering core's sole output. A DeltaGraph is an ordered log of node and
// edge additions with no deduplication; duplicate edges emitted by the
// core (the PDG pass re-asserts ARGUMENT edges already emitted during AST)
// are allowed by design and must be deduplicated by the consumer at apply
// time if required.
package delta

import "github.com/plume-oss/plume-driver/internal/cpg"

// OpKind distinguishes the two operations a DeltaGraph can carry.
type OpKind int

const (
	OpNodeAdd OpKind = iota
	OpEdgeAdd
)

// Op is one entry in the delta log.
type Op struct {
	Kind OpKind

	// Valid when Kind == OpNodeAdd.
	Node *cpg.Node

	// Valid when Kind == OpEdgeAdd.
	Src, Dst *cpg.Node
	Label    cpg.EdgeKind
}

// DeltaGraph is the immutable result of a Builder: an ordered log of
// operations intended for bulk application to a backend store.
type DeltaGraph struct {
	Ops []Op
}

// Builder accumulates node and edge additions in emission order.
type Builder struct {
	ops []Op
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddNode records a node addition and returns the same node, so callers
// can chain construction and registration in one expression.
func (b *Builder) AddNode(n *cpg.Node) *cpg.Node {
	if n == nil {
		return nil
	}
	b.ops = append(b.ops, Op{Kind: OpNodeAdd, Node: n})
	return n
}

// AddEdge records an edge addition. A nil endpoint is silently dropped —
// it means an earlier step already skipped the corresponding node (a
// MissingAssociation or MissingTypeNode outcome) and the edge has nothing
// to attach to.
func (b *Builder) AddEdge(src, dst *cpg.Node, label cpg.EdgeKind) {
	if src == nil || dst == nil {
		return
	}
	b.ops = append(b.ops, Op{Kind: OpEdgeAdd, Src: src, Dst: dst, Label: label})
}

// Build returns the accumulated log as an immutable DeltaGraph. The
// builder remains usable afterward; Build snapshots the log seen so far.
func (b *Builder) Build() *DeltaGraph {
	ops := make([]Op, len(b.ops))
	copy(ops, b.ops)
	return &DeltaGraph{Ops: ops}
}
