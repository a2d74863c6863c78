// Package lower implements the method-body lowering core: the AST, CFG,
// and PDG passes plus the containment sweep that together turn a single
// Jimple-like ir.Method into a cpg DeltaGraph.
package lower

import (
	"github.com/plume-oss/plume-driver/internal/assoc"
	"github.com/plume-oss/plume-driver/internal/cpg"
	"github.com/plume-oss/plume-driver/internal/delta"
	"github.com/plume-oss/plume-driver/internal/extern"
	"github.com/plume-oss/plume-driver/internal/ir"
)

// passState is the fresh per-method state described in §5: a builder, an
// association map, a locals/params map, and nothing shared across methods
// except the read-only external collaborators.
type passState struct {
	method       *ir.Method
	assoc        *assoc.Map
	builder      *delta.Builder
	methodIdx    extern.MethodIndex
	typeIdx      extern.TypeIndex
	evalStrategy extern.EvalStrategyFunc
	warnf        func(format string, args ...any)

	methodNode       *cpg.Node
	blockNode        *cpg.Node
	methodReturnNode *cpg.Node

	// paramNodes maps a this/parameter local to its METHOD_PARAMETER_IN
	// node. An IDENTIFIER referencing one of these locals REF-edges to
	// this node, never to a LOCAL (invariant 3).
	paramNodes    map[*ir.Local]*cpg.Node
	paramOutNodes map[*ir.Local]*cpg.Node

	// localNodes maps every other declared local to its LOCAL node.
	localNodes map[*ir.Local]*cpg.Node

	orderCounters map[*cpg.Node]int
}

func newPassState(m *ir.Method, methodIdx extern.MethodIndex, typeIdx extern.TypeIndex, evalStrategy extern.EvalStrategyFunc, warnf func(format string, args ...any)) *passState {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	if evalStrategy == nil {
		evalStrategy = extern.DefaultEvalStrategy
	}
	return &passState{
		method:        m,
		assoc:         assoc.New(),
		builder:       delta.NewBuilder(),
		methodIdx:     methodIdx,
		typeIdx:       typeIdx,
		evalStrategy:  evalStrategy,
		warnf:         warnf,
		paramNodes:    make(map[*ir.Local]*cpg.Node),
		paramOutNodes: make(map[*ir.Local]*cpg.Node),
		localNodes:    make(map[*ir.Local]*cpg.Node),
		orderCounters: make(map[*cpg.Node]int),
	}
}

// create tags n with the method whose lowering produced it and records
// the node addition.
func (p *passState) create(n *cpg.Node) *cpg.Node {
	n.OwnerMethodFullName = p.method.FullName
	return p.builder.AddNode(n)
}

// registerStub records a node addition for a stub the external MethodIndex
// handed back pre-built (METHOD, BLOCK, METHOD_RETURN), tagging it with the
// owning method the same way create does for core-built nodes. A nil stub
// (MissingAssociation, §7) is a no-op.
func (p *passState) registerStub(n *cpg.Node) {
	if n == nil {
		return
	}
	n.OwnerMethodFullName = p.method.FullName
	p.builder.AddNode(n)
}

// addAST emits parent -AST-> child, assigning child's 1-based sibling
// order within parent (invariant 6).
func (p *passState) addAST(parent, child *cpg.Node) {
	if parent == nil || child == nil {
		return
	}
	p.orderCounters[parent]++
	child.Order = p.orderCounters[parent]
	p.builder.AddEdge(parent, child, cpg.AST)
}

// addASTReverse emits an AST edge without touching Order, in either
// direction the caller asks for. Used only for the MonitorStmt/ThrowStmt
// reversed-direction shape preserved verbatim per §9.
func (p *passState) addASTReverse(from, to *cpg.Node) {
	p.builder.AddEdge(from, to, cpg.AST)
}

// addEvalType emits an EVAL_TYPE edge to the registered type node for
// n's TypeFullName, or omits it silently if the type registry has no
// entry yet (MissingTypeNode, §7).
func (p *passState) addEvalType(n *cpg.Node) {
	if n == nil || n.TypeFullName == "" || p.typeIdx == nil {
		return
	}
	if t := p.typeIdx.TypeNode(n.TypeFullName); t != nil {
		p.builder.AddEdge(n, t, cpg.EvalType)
	}
}

func (p *passState) warn(format string, args ...any) {
	p.warnf(format, args...)
}

// localNodeFor resolves the node an IDENTIFIER referencing local should
// REF to: the parameter-in node if local is a this/parameter binding,
// otherwise the plain LOCAL node. Returns nil if local is unknown to
// this method (MissingAssociation, §7).
func (p *passState) localNodeFor(local *ir.Local) *cpg.Node {
	if local == nil {
		return nil
	}
	if n, ok := p.paramNodes[local]; ok {
		return n
	}
	return p.localNodes[local]
}
