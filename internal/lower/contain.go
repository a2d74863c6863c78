package lower

import "github.com/plume-oss/plume-driver/internal/cpg"

// containmentSweep implements §4.7: every node recorded anywhere in the
// association map, other than the stub-owned nodes and LOCALs, gets
// exactly one METHOD -CONTAINS-> node edge. The association map is
// discarded afterward.
func (p *passState) containmentSweep() {
	exclude := make(map[*cpg.Node]bool)
	if p.methodNode != nil {
		exclude[p.methodNode] = true
	}
	if p.blockNode != nil {
		exclude[p.blockNode] = true
	}
	if p.methodReturnNode != nil {
		exclude[p.methodReturnNode] = true
	}
	for _, n := range p.paramNodes {
		exclude[n] = true
	}
	for _, n := range p.paramOutNodes {
		exclude[n] = true
	}
	for _, n := range p.localNodes {
		exclude[n] = true
	}

	// The general no-dedup policy (§9) does not apply here: invariant 1
	// requires exactly one CONTAINS edge per node, and the same node
	// commonly appears under more than one association key (e.g. an
	// assignment's left-hand IDENTIFIER is recorded both under its local
	// and under the statement).
	seen := make(map[*cpg.Node]bool)
	for _, key := range p.assoc.Keys() {
		for _, n := range p.assoc.Get(key) {
			if n == nil || exclude[n] || seen[n] {
				continue
			}
			seen[n] = true
			p.builder.AddEdge(p.methodNode, n, cpg.Contains)
		}
	}
	p.assoc.Clear()
}
