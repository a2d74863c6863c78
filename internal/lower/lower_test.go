package lower

import (
	"testing"

	"github.com/plume-oss/plume-driver/internal/cpg"
	"github.com/plume-oss/plume-driver/internal/delta"
	"github.com/plume-oss/plume-driver/internal/extern"
	"github.com/plume-oss/plume-driver/internal/ir"
)

func countOps(dg *delta.DeltaGraph) (nodes, edges int) {
	for _, op := range dg.Ops {
		switch op.Kind {
		case delta.OpNodeAdd:
			nodes++
		case delta.OpEdgeAdd:
			edges++
		}
	}
	return
}

func edgesOf(dg *delta.DeltaGraph, label cpg.EdgeKind) []delta.Op {
	var out []delta.Op
	for _, op := range dg.Ops {
		if op.Kind == delta.OpEdgeAdd && op.Label == label {
			out = append(out, op)
		}
	}
	return out
}

func nodesWithLabel(dg *delta.DeltaGraph, label cpg.NodeLabel) []*cpg.Node {
	var out []*cpg.Node
	for _, op := range dg.Ops {
		if op.Kind == delta.OpNodeAdd && op.Node.Label == label {
			out = append(out, op.Node)
		}
	}
	return out
}

// addMethod builds `add(a, b)` returning a+b: an instance method with a
// single assignment followed by a return, exercising the Identity/Assign
// rule, the binary-operator shape, and the plain linear-successor path.
func addMethod() *ir.Method {
	this := &ir.Local{Name: "r0", Type: "demo.Calc"}
	a := &ir.Local{Name: "i0", Type: "int"}
	b := &ir.Local{Name: "i1", Type: "int"}
	sum := &ir.Local{Name: "$i2", Type: "int"}

	m := ir.NewMethod("demo.Calc.add(int,int)int", "demo.Calc", "int", this, []*ir.Local{a, b}, ir.Position{Line: 1})

	thisId := &ir.IdentityStmt{P: ir.Position{Line: 1}, Local: this, Ref: &ir.IdentityRefValue{Kind: "this", Type: "demo.Calc"}}
	aId := &ir.IdentityStmt{P: ir.Position{Line: 1}, Local: a, Ref: &ir.IdentityRefValue{Kind: "parameter", Index: 0, Type: "int"}}
	bId := &ir.IdentityStmt{P: ir.Position{Line: 1}, Local: b, Ref: &ir.IdentityRefValue{Kind: "parameter", Index: 1, Type: "int"}}
	assign := &ir.AssignStmt{
		P:     ir.Position{Line: 2},
		Left:  &ir.LocalValue{Local: sum},
		Right: &ir.BinopExpr{Op: "add", Left: &ir.LocalValue{Local: a}, Right: &ir.LocalValue{Local: b}},
	}
	ret := &ir.ReturnStmt{P: ir.Position{Line: 3}, Operand: &ir.LocalValue{Local: sum}}

	for _, s := range []ir.Stmt{thisId, aId, bId, assign, ret} {
		m.AddStmt(s)
	}
	m.MarkHead(thisId)
	m.SetSuccessors(thisId, aId)
	m.SetSuccessors(aId, bId)
	m.SetSuccessors(bId, assign)
	m.SetSuccessors(assign, ret)
	return m
}

// maxMethod builds `max(a, b)`: an If with two terminal Return branches,
// exercising the If-specific CFG wiring over ir.Method.Succs.
func maxMethod() *ir.Method {
	this := &ir.Local{Name: "r0", Type: "demo.Calc"}
	a := &ir.Local{Name: "i0", Type: "int"}
	b := &ir.Local{Name: "i1", Type: "int"}

	m := ir.NewMethod("demo.Calc.max(int,int)int", "demo.Calc", "int", this, []*ir.Local{a, b}, ir.Position{Line: 10})

	thisId := &ir.IdentityStmt{P: ir.Position{Line: 10}, Local: this, Ref: &ir.IdentityRefValue{Kind: "this", Type: "demo.Calc"}}
	aId := &ir.IdentityStmt{P: ir.Position{Line: 10}, Local: a, Ref: &ir.IdentityRefValue{Kind: "parameter", Index: 0, Type: "int"}}
	bId := &ir.IdentityStmt{P: ir.Position{Line: 10}, Local: b, Ref: &ir.IdentityRefValue{Kind: "parameter", Index: 1, Type: "int"}}
	ifStmt := &ir.IfStmt{P: ir.Position{Line: 11}, Condition: &ir.ConditionExpr{Op: "greaterThan", Left: &ir.LocalValue{Local: a}, Right: &ir.LocalValue{Local: b}}}
	retA := &ir.ReturnStmt{P: ir.Position{Line: 12}, Operand: &ir.LocalValue{Local: a}}
	retB := &ir.ReturnStmt{P: ir.Position{Line: 13}, Operand: &ir.LocalValue{Local: b}}

	for _, s := range []ir.Stmt{thisId, aId, bId, ifStmt, retA, retB} {
		m.AddStmt(s)
	}
	m.MarkHead(thisId)
	m.SetSuccessors(thisId, aId)
	m.SetSuccessors(aId, bId)
	m.SetSuccessors(bId, ifStmt)
	m.SetSuccessors(ifStmt, retA, retB)
	return m
}

// storeMethod builds `store(a, v)`: `a[0] = v`, exercising the array-store
// CFG re-keying quirk (§4.5, §9): the CFG entry for the assignment must
// resolve to the base-evaluation node, not the indexAccess CALL.
func storeMethod() *ir.Method {
	this := &ir.Local{Name: "r0", Type: "demo.Calc"}
	arr := &ir.Local{Name: "i0", Type: "int[]"}
	v := &ir.Local{Name: "i1", Type: "int"}

	m := ir.NewMethod("demo.Calc.store(int[],int)void", "demo.Calc", "void", this, []*ir.Local{arr, v}, ir.Position{Line: 20})

	thisId := &ir.IdentityStmt{P: ir.Position{Line: 20}, Local: this, Ref: &ir.IdentityRefValue{Kind: "this", Type: "demo.Calc"}}
	arrId := &ir.IdentityStmt{P: ir.Position{Line: 20}, Local: arr, Ref: &ir.IdentityRefValue{Kind: "parameter", Index: 0, Type: "int[]"}}
	vId := &ir.IdentityStmt{P: ir.Position{Line: 20}, Local: v, Ref: &ir.IdentityRefValue{Kind: "parameter", Index: 1, Type: "int"}}
	assign := &ir.AssignStmt{
		P:    ir.Position{Line: 21},
		Left: &ir.ArrayRef{Base: &ir.LocalValue{Local: arr}, Index: &ir.Constant{Code: "0", Type: "int"}},
		Right: &ir.LocalValue{Local: v},
	}
	ret := &ir.ReturnVoidStmt{P: ir.Position{Line: 22}}

	for _, s := range []ir.Stmt{thisId, arrId, vId, assign, ret} {
		m.AddStmt(s)
	}
	m.MarkHead(thisId)
	m.SetSuccessors(thisId, arrId)
	m.SetSuccessors(arrId, vId)
	m.SetSuccessors(vId, assign)
	m.SetSuccessors(assign, ret)
	return m
}

// switchMethod builds `pick(a)`: a TableSwitchStmt on `a` with one case
// and a default, both terminal Returns, exercising §4.5's switch CFG
// wiring: cond -CFG-> each jump target -CFG-> its successor entry.
func switchMethod() *ir.Method {
	this := &ir.Local{Name: "r0", Type: "demo.Calc"}
	a := &ir.Local{Name: "i0", Type: "int"}

	m := ir.NewMethod("demo.Calc.pick(int)int", "demo.Calc", "int", this, []*ir.Local{a}, ir.Position{Line: 30})

	thisId := &ir.IdentityStmt{P: ir.Position{Line: 30}, Local: this, Ref: &ir.IdentityRefValue{Kind: "this", Type: "demo.Calc"}}
	aId := &ir.IdentityStmt{P: ir.Position{Line: 30}, Local: a, Ref: &ir.IdentityRefValue{Kind: "parameter", Index: 0, Type: "int"}}
	retCase := &ir.ReturnStmt{P: ir.Position{Line: 32}, Operand: &ir.Constant{Code: "1", Type: "int"}}
	retDefault := &ir.ReturnStmt{P: ir.Position{Line: 34}, Operand: &ir.Constant{Code: "0", Type: "int"}}
	sw := &ir.TableSwitchStmt{P: ir.Position{Line: 31}, Key: &ir.LocalValue{Local: a}, Low: 0, Targets: []ir.Stmt{retCase}, Default: retDefault}

	for _, s := range []ir.Stmt{thisId, aId, sw, retCase, retDefault} {
		m.AddStmt(s)
	}
	m.MarkHead(thisId)
	m.SetSuccessors(thisId, aId)
	m.SetSuccessors(aId, sw)
	return m
}

// throwMethod builds `boom()`: raises an exception. Method.Succs(throw)
// is deliberately populated (simulating a malformed batch that supplies
// an explicit non-empty successors list for a Throw, §7) so the test
// fails against the bug where cfgPass's default case would have wired an
// outgoing CFG edge for it regardless.
func throwMethod() *ir.Method {
	this := &ir.Local{Name: "r0", Type: "demo.Calc"}
	exc := &ir.Local{Name: "i0", Type: "java.lang.Exception"}

	m := ir.NewMethod("demo.Calc.boom()void", "demo.Calc", "void", this, nil, ir.Position{Line: 40})

	thisId := &ir.IdentityStmt{P: ir.Position{Line: 40}, Local: this, Ref: &ir.IdentityRefValue{Kind: "this", Type: "demo.Calc"}}
	throw := &ir.ThrowStmt{P: ir.Position{Line: 41}, Operand: &ir.LocalValue{Local: exc}}
	unreachable := &ir.ReturnVoidStmt{P: ir.Position{Line: 42}}

	for _, s := range []ir.Stmt{thisId, throw, unreachable} {
		m.AddStmt(s)
	}
	m.MarkHead(thisId)
	m.SetSuccessors(thisId, throw)
	m.SetSuccessors(throw, unreachable)
	return m
}

func runFresh(t *testing.T, m *ir.Method) *delta.DeltaGraph {
	t.Helper()
	methodIdx := extern.NewInMemoryMethodIndex()
	methodIdx.Register(m.FullName, m.ReturnType)
	typeIdx := extern.NewInMemoryTypeIndex()
	var warnings []string
	dg := RunMethod(m, methodIdx, typeIdx, extern.DefaultEvalStrategy, func(format string, args ...any) {
		warnings = append(warnings, format)
	})
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	return dg
}

func TestRunMethod_Add(t *testing.T) {
	dg := runFresh(t, addMethod())

	params := nodesWithLabel(dg, cpg.MethodParameterIn)
	if len(params) != 3 {
		t.Fatalf("want 3 METHOD_PARAMETER_IN nodes (this, a, b), got %d", len(params))
	}

	calls := nodesWithLabel(dg, cpg.Call)
	var foundAssignment, foundAdd bool
	for _, c := range calls {
		switch c.Name {
		case "assignment":
			foundAssignment = true
		case "add":
			foundAdd = true
		}
	}
	if !foundAssignment {
		t.Error("want a CALL(assignment) node for the assignment statement")
	}
	if !foundAdd {
		t.Error("want a CALL(add) node for the binary operator")
	}

	cfgEdges := edgesOf(dg, cpg.CFG)
	if len(cfgEdges) == 0 {
		t.Error("want at least one CFG edge")
	}

	contains := edgesOf(dg, cpg.Contains)
	seenTargets := make(map[*cpg.Node]bool)
	for _, e := range contains {
		if seenTargets[e.Dst] {
			t.Fatalf("node %v has more than one CONTAINS edge (invariant 1 violated)", e.Dst)
		}
		seenTargets[e.Dst] = true
	}
}

func TestRunMethod_MaxWiresBothBranchesToMethodReturn(t *testing.T) {
	dg := runFresh(t, maxMethod())

	// Both RETURN nodes must eventually CFG to METHOD_RETURN.
	methodReturns := nodesWithLabel(dg, cpg.MethodReturn)
	if len(methodReturns) != 1 {
		t.Fatalf("want exactly 1 METHOD_RETURN node, got %d", len(methodReturns))
	}
	methodReturn := methodReturns[0]

	returns := nodesWithLabel(dg, cpg.Return)
	if len(returns) != 2 {
		t.Fatalf("want 2 RETURN nodes (one per branch), got %d", len(returns))
	}

	cfgEdges := edgesOf(dg, cpg.CFG)
	reachingReturn := 0
	for _, e := range cfgEdges {
		if e.Dst == methodReturn {
			reachingReturn++
		}
	}
	if reachingReturn != 2 {
		t.Errorf("want 2 CFG edges into METHOD_RETURN (one per branch), got %d", reachingReturn)
	}

	var ifNode, condCall *cpg.Node
	for _, op := range dg.Ops {
		if op.Kind != delta.OpNodeAdd {
			continue
		}
		if op.Node.Label == cpg.ControlStructure && op.Node.ControlStructureType == cpg.If {
			ifNode = op.Node
		}
		if op.Node.Label == cpg.Call && op.Node.Name == "greaterThan" {
			condCall = op.Node
		}
	}
	if ifNode == nil {
		t.Fatal("want exactly 1 CONTROL_STRUCTURE(IF) node")
	}
	if condCall == nil {
		t.Fatal("want a CALL(greaterThan) node for the if's condition")
	}

	// The If's outgoing CFG edges must originate from the condition's
	// CALL, not the CONTROL_STRUCTURE node itself (spec.md:134, spec.md:204).
	fromCond, fromIf := 0, 0
	for _, e := range cfgEdges {
		if e.Src == condCall && (e.Dst == retAEntry(dg) || e.Dst == retBEntry(dg)) {
			fromCond++
		}
		if e.Src == ifNode {
			fromIf++
		}
	}
	if fromCond != 2 {
		t.Errorf("want 2 CFG edges sourced from the condition CALL into the two branches, got %d", fromCond)
	}
	if fromIf != 0 {
		t.Errorf("want 0 CFG edges sourced from the CONTROL_STRUCTURE(IF) node itself, got %d", fromIf)
	}
}

// retAEntry/retBEntry locate the CFG entry of maxMethod's two branches:
// the operand IDENTIFIER a RETURN node has an ARGUMENT edge to,
// identified by its Code.
func retAEntry(dg *delta.DeltaGraph) *cpg.Node {
	return branchEntryForOperand(dg, "i0")
}

func retBEntry(dg *delta.DeltaGraph) *cpg.Node {
	return branchEntryForOperand(dg, "i1")
}

func branchEntryForOperand(dg *delta.DeltaGraph, code string) *cpg.Node {
	for _, e := range edgesOf(dg, cpg.Argument) {
		if e.Src.Label == cpg.Return && e.Dst.Code == code {
			return e.Dst
		}
	}
	return nil
}

func TestRunMethod_ArrayStoreCFGEntryIsBaseEvaluation(t *testing.T) {
	dg := runFresh(t, storeMethod())

	calls := nodesWithLabel(dg, cpg.Call)
	var indexAccess, vIdentity *cpg.Node
	for _, c := range calls {
		if c.Name == "indexAccess" && c.Line == 21 {
			indexAccess = c
		}
		// vId's own synthetic CALL(assignment), from the `v := @parameter1`
		// identity statement at line 20 — the predecessor whose CFG
		// successor edge must be re-keyed past the indexAccess CALL.
		if c.Name == "assignment" && c.Line == 20 {
			vIdentity = c
		}
	}
	if indexAccess == nil {
		t.Fatal("want a CALL(indexAccess) node for the array-store left-hand side")
	}
	if vIdentity == nil {
		t.Fatal("want a CALL(assignment) node for the v identity statement")
	}

	var baseIdentifier *cpg.Node
	for _, n := range nodesWithLabel(dg, cpg.Identifier) {
		if n.Code == "i0" && n.ArgumentIndex == 1 && n.Line == 21 {
			baseIdentifier = n
		}
	}
	if baseIdentifier == nil {
		t.Fatal("want an IDENTIFIER node for the array base at line 21")
	}

	cfgEdges := edgesOf(dg, cpg.CFG)
	var enteredBase, wentStraightToCall bool
	for _, e := range cfgEdges {
		if e.Src == vIdentity && e.Dst == baseIdentifier {
			enteredBase = true
		}
		if e.Src == vIdentity && e.Dst == indexAccess {
			wentStraightToCall = true
		}
	}
	if !enteredBase {
		t.Error("want a CFG edge from the v identity statement's CALL into the array base IDENTIFIER")
	}
	if wentStraightToCall {
		t.Error("the v identity statement's CFG successor must not skip straight to the indexAccess CALL")
	}
}

func TestRunMethod_SwitchWiresCondToEachJumpTarget(t *testing.T) {
	dg := runFresh(t, switchMethod())

	switches := nodesWithLabel(dg, cpg.ControlStructure)
	var switchNode *cpg.Node
	for _, n := range switches {
		if n.ControlStructureType == cpg.Switch {
			switchNode = n
		}
	}
	if switchNode == nil {
		t.Fatal("want exactly 1 CONTROL_STRUCTURE(SWITCH) node")
	}

	jumpTargets := nodesWithLabel(dg, cpg.JumpTarget)
	if len(jumpTargets) != 2 {
		t.Fatalf("want 2 JUMP_TARGET nodes (1 case + default), got %d", len(jumpTargets))
	}

	// The condition's CFG source is the key's IDENTIFIER, not the
	// CONTROL_STRUCTURE(SWITCH) node (same rule as the If fix, §4.5).
	idents := nodesWithLabel(dg, cpg.Identifier)
	var cond *cpg.Node
	for _, n := range idents {
		if n.Code == "i0" {
			cond = n
		}
	}
	if cond == nil {
		t.Fatal("want an IDENTIFIER node for the switch key")
	}

	cfgEdges := edgesOf(dg, cpg.CFG)
	condToJT := 0
	for _, jt := range jumpTargets {
		found := false
		for _, e := range cfgEdges {
			if e.Src == cond && e.Dst == jt {
				found = true
				condToJT++
			}
		}
		if !found {
			t.Errorf("want a CFG edge from the condition into JUMP_TARGET %q", jt.Name)
		}
	}
	if condToJT != 2 {
		t.Errorf("want 2 cond -CFG-> jumpTarget edges (1 case + default), got %d", condToJT)
	}

	fromSwitch := 0
	for _, e := range cfgEdges {
		if e.Src == switchNode {
			fromSwitch++
		}
	}
	if fromSwitch != 0 {
		t.Errorf("want 0 outgoing CFG edges from the CONTROL_STRUCTURE(SWITCH) node itself, got %d", fromSwitch)
	}

	literals := nodesWithLabel(dg, cpg.Literal)
	jtToEntry := 0
	for _, jt := range jumpTargets {
		for _, e := range cfgEdges {
			if e.Src == jt {
				for _, lit := range literals {
					if e.Dst == lit {
						jtToEntry++
					}
				}
			}
		}
	}
	if jtToEntry != 2 {
		t.Errorf("want 2 jumpTarget -CFG-> successor-entry edges (into the two branches' operand literals), got %d", jtToEntry)
	}
}

func TestRunMethod_ThrowHasNoOutgoingCFG(t *testing.T) {
	dg := runFresh(t, throwMethod())

	unknowns := nodesWithLabel(dg, cpg.Unknown)
	if len(unknowns) != 1 {
		t.Fatalf("want exactly 1 UNKNOWN node for the throw, got %d", len(unknowns))
	}
	throwExit := unknowns[0]

	cfgEdges := edgesOf(dg, cpg.CFG)
	for _, e := range cfgEdges {
		if e.Src == throwExit {
			t.Errorf("want zero outgoing CFG edges from the throw's UNKNOWN node (control terminates, §4.5), got one into %s", e.Dst.Label)
		}
	}
}

func TestRunMethod_PDGRefEdgesPointToDeclaration(t *testing.T) {
	dg := runFresh(t, addMethod())

	refEdges := edgesOf(dg, cpg.Ref)
	if len(refEdges) == 0 {
		t.Fatal("want at least one REF edge")
	}
	for _, e := range refEdges {
		switch e.Dst.Label {
		case cpg.MethodParameterIn, cpg.LocalNode:
		default:
			t.Errorf("REF edge target must be a declaration node (METHOD_PARAMETER_IN or LOCAL), got %s", e.Dst.Label)
		}
	}
}

func TestRunMethod_PanicIsRecoveredAndPartialGraphReturned(t *testing.T) {
	// An identity statement with a nil Local makes the AST pass dereference
	// nil while lowering its left-hand side; RunMethod must recover from
	// that panic and still return the graph built so far rather than
	// panicking out entirely.
	this := &ir.Local{Name: "r0", Type: "demo.Calc"}
	m := ir.NewMethod("demo.Calc.broken()void", "demo.Calc", "void", this, nil, ir.Position{})
	broken := &ir.IdentityStmt{P: ir.Position{Line: 1}, Local: nil, Ref: &ir.IdentityRefValue{Kind: "this", Type: "demo.Calc"}}
	m.AddStmt(broken)
	m.MarkHead(broken)

	methodIdx := extern.NewInMemoryMethodIndex()
	methodIdx.Register(m.FullName, m.ReturnType)
	typeIdx := extern.NewInMemoryTypeIndex()

	dg := RunMethod(m, methodIdx, typeIdx, extern.DefaultEvalStrategy, nil)
	if dg == nil {
		t.Fatal("RunMethod must always return a non-nil DeltaGraph, even for a degenerate method")
	}
}

func TestRunMethod_NodeCountsAreStable(t *testing.T) {
	dg := runFresh(t, addMethod())
	nodes, edges := countOps(dg)
	if nodes == 0 || edges == 0 {
		t.Fatalf("want nonzero nodes and edges, got nodes=%d edges=%d", nodes, edges)
	}
}
