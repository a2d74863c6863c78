package lower

import (
	"github.com/plume-oss/plume-driver/internal/cpg"
	"github.com/plume-oss/plume-driver/internal/ir"
)

// cfgPass implements §4.5: it wires CFG edges between the per-statement
// subgraphs the AST pass already built, using ir.Method's head/successor
// structure to find the inter-statement shape.
func (p *passState) cfgPass() {
	for _, h := range p.method.Heads() {
		if entry := p.entryFor(h); entry != nil && p.methodNode != nil {
			p.builder.AddEdge(p.methodNode, entry, cpg.CFG)
		}
	}

	for _, s := range p.method.Body {
		switch stmt := s.(type) {
		case *ir.ReturnStmt:
			p.wireReturnCFG(s)
		case *ir.ReturnVoidStmt:
			p.wireReturnCFG(s)
		case *ir.LookupSwitchStmt:
			p.wireSwitchCFG(s, stmt.Targets, stmt.Default)
		case *ir.TableSwitchStmt:
			p.wireSwitchCFG(s, stmt.Targets, stmt.Default)
		case *ir.IfStmt:
			exit := p.ifExitFor(s)
			if exit == nil {
				continue
			}
			for _, succ := range p.method.Succs(s) {
				if entry := p.entryFor(succ); entry != nil {
					p.builder.AddEdge(exit, entry, cpg.CFG)
				}
			}
		case *ir.ThrowStmt:
			// Control terminates at a throw (§4.5); no outgoing CFG edge
			// regardless of what a decoded batch's successors list says.
		default:
			exit := p.exitFor(s)
			if exit == nil {
				continue
			}
			for _, succ := range p.method.Succs(s) {
				if entry := p.entryFor(succ); entry != nil {
					p.builder.AddEdge(exit, entry, cpg.CFG)
				}
			}
		}
	}
}

func (p *passState) wireReturnCFG(s ir.Stmt) {
	exit := p.exitFor(s)
	if exit == nil || p.methodReturnNode == nil {
		return
	}
	p.builder.AddEdge(exit, p.methodReturnNode, cpg.CFG)
}

// wireSwitchCFG emits cond -CFG-> jumpTarget for every case and the
// default, and jumpTarget -CFG-> its target's entry (§4.5). assoc[s] is
// laid out as [condEntry, switchNode, jt0, jt1, ..., jtN-1, jtDefault]
// (§4.4); nodes[0] is the condition's CFG source.
func (p *passState) wireSwitchCFG(s ir.Stmt, targets []ir.Stmt, def ir.Stmt) {
	nodes := p.assoc.Get(s)
	if len(nodes) == 0 {
		return
	}
	cond := nodes[0]

	const jtStart = 2
	for i, target := range targets {
		idx := jtStart + i
		if idx >= len(nodes) {
			break
		}
		p.builder.AddEdge(cond, nodes[idx], cpg.CFG)
		if entry := p.entryFor(target); entry != nil {
			p.builder.AddEdge(nodes[idx], entry, cpg.CFG)
		}
	}

	defJT := nodes[len(nodes)-1]
	p.builder.AddEdge(cond, defJT, cpg.CFG)
	if entry := p.entryFor(def); entry != nil {
		p.builder.AddEdge(defJT, entry, cpg.CFG)
	}
}

// entryFor resolves the node a predecessor's outgoing CFG edge should
// target for statement s. Array-store assignments re-key to the
// indexAccess call's base-evaluation entry rather than the outer
// assignment's own association (§4.5, §9): assoc[stmt][0] there is the
// indexAccess CALL, which would skip straight past base/index evaluation.
func (p *passState) entryFor(s ir.Stmt) *cpg.Node {
	if s == nil {
		return nil
	}
	if as, ok := s.(*ir.AssignStmt); ok {
		if ar, ok2 := as.Left.(*ir.ArrayRef); ok2 {
			if nodes := p.assoc.Get(ar); len(nodes) > 0 {
				return nodes[0]
			}
		}
	}
	nodes := p.assoc.Get(s)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// exitFor resolves the node representing s's last CFG action: the
// trailing element of its association. Unlike entryFor this needs no
// array-store special case — the outer assignment CALL is always the
// last thing evaluated regardless of the left-hand shape.
func (p *passState) exitFor(s ir.Stmt) *cpg.Node {
	if s == nil {
		return nil
	}
	nodes := p.assoc.Get(s)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[len(nodes)-1]
}

// ifExitFor resolves an If statement's CFG source. lowerIf lays out
// assoc[if] as [condEntry, condRoot, ifNode] (stmt.go), and the CFG
// source for an If is the condition's CALL, not the CONTROL_STRUCTURE
// node itself — spec.md:134, spec.md:204.
func (p *passState) ifExitFor(s ir.Stmt) *cpg.Node {
	nodes := p.assoc.Get(s)
	if len(nodes) < 2 {
		return nil
	}
	return nodes[1]
}
