package lower

import (
	"github.com/plume-oss/plume-driver/internal/cpg"
	"github.com/plume-oss/plume-driver/internal/ir"
)

// pdgPass implements §4.6: REF edges from every IDENTIFIER to the
// declaration node of the local it names, and a re-assertion of ARGUMENT
// edges for if-conditions and invocation statements.
func (p *passState) pdgPass() {
	p.emitRefEdges()
	p.emitArgumentReassertions()
}

// emitRefEdges walks every local known to the method and REF-edges each
// IDENTIFIER recorded for it back to the declaration node at index 0 of
// its association — a LOCAL for plain locals, a METHOD_PARAMETER_IN for
// this/parameter bindings.
func (p *passState) emitRefEdges() {
	for _, l := range p.method.Locals() {
		nodes := p.assoc.Get(l)
		if len(nodes) == 0 {
			continue
		}
		declNode := nodes[0]
		for _, n := range nodes[1:] {
			if n == nil || n.Label != cpg.Identifier {
				continue
			}
			p.builder.AddEdge(n, declNode, cpg.Ref)
		}
	}
}

// emitArgumentReassertions locates the CALL within the association of
// every IfStmt and InvokeStmt and emits call -ARGUMENT-> n for every
// other node in that same association. This re-asserts edges already
// emitted during AST lowering; duplicates are tolerated by the consumer
// (§4.6, §7 SchemaViolationOnApply).
func (p *passState) emitArgumentReassertions() {
	for _, s := range p.method.Body {
		switch s.(type) {
		case *ir.IfStmt, *ir.InvokeStmt:
			p.reassertArguments(s)
		}
	}
}

func (p *passState) reassertArguments(s ir.Stmt) {
	nodes := p.assoc.Get(s)
	var call *cpg.Node
	for _, n := range nodes {
		if n != nil && n.Label == cpg.Call {
			call = n
			break
		}
	}
	if call == nil {
		return
	}
	for _, n := range nodes {
		if n == nil || n == call {
			continue
		}
		p.builder.AddEdge(call, n, cpg.Argument)
	}
}
