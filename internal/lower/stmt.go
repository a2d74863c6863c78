package lower

import (
	"fmt"

	"github.com/plume-oss/plume-driver/internal/cpg"
	"github.com/plume-oss/plume-driver/internal/ir"
)

// astPass builds parameter and local nodes, then dispatches every body
// statement in textual order (§4.4).
func (p *passState) astPass() {
	p.methodNode = p.methodIdx.MethodNode(p.method.FullName)
	p.blockNode = p.methodIdx.BlockNode(p.method.FullName)
	p.methodReturnNode = p.methodIdx.MethodReturnNode(p.method.FullName)
	if p.methodNode == nil {
		p.warn("lower: missing METHOD stub for %s", p.method.FullName)
	}
	if p.blockNode == nil {
		p.warn("lower: missing BLOCK stub for %s", p.method.FullName)
	}
	if p.methodReturnNode == nil {
		p.warn("lower: missing METHOD_RETURN stub for %s", p.method.FullName)
	}
	// The external index hands back these stub nodes ready-made, but this
	// core is the only thing that ever emits a DeltaGraph for them — so it
	// must register them itself, or every edge touching them would target
	// a node the consumer never saw an OpNodeAdd for.
	p.registerStub(p.methodNode)
	p.registerStub(p.blockNode)
	p.registerStub(p.methodReturnNode)

	p.buildParameters()
	p.buildLocals()

	for _, s := range p.method.Body {
		p.lowerStmt(s)
	}
}

// buildParameters implements §4.4.1: a METHOD_PARAMETER_IN per parameter
// (plus "this" for instance methods), with a paired METHOD_PARAMETER_OUT
// when the evaluation strategy is by-reference.
func (p *passState) buildParameters() {
	var stored []*cpg.Node

	addParam := func(local *ir.Local, argIdx int) {
		strategy := p.evalStrategy(local.Type, false)
		in := p.mkParamIn(local, argIdx, strategy, p.method.Pos)
		p.addAST(p.methodNode, in)
		p.paramNodes[local] = in
		p.assoc.Append(local, in)
		stored = append(stored, in)
		if strategy == cpg.ByReference {
			out := p.mkParamOut(local, argIdx, p.method.Pos)
			p.addAST(p.methodNode, out)
			p.builder.AddEdge(in, out, cpg.ParameterLink)
			p.paramOutNodes[local] = out
			stored = append(stored, out)
		}
	}

	if p.method.ThisLocal != nil {
		addParam(p.method.ThisLocal, 0)
	}
	for i, param := range p.method.Params {
		addParam(param, i+1)
	}

	if p.methodIdx != nil {
		p.methodIdx.StoreMethodNode(p.method, stored)
	}
}

// buildLocals implements §4.4.1 item 2: a LOCAL node for every declared
// local that is not already bound to a parameter-in node.
func (p *passState) buildLocals() {
	for _, l := range p.method.Locals() {
		if _, isParam := p.paramNodes[l]; isParam {
			continue
		}
		node := p.mkLocal(l, p.method.Pos)
		p.addAST(p.blockNode, node)
		p.localNodes[l] = node
		p.assoc.Append(l, node)
	}
}

func (p *passState) lowerStmt(s ir.Stmt) {
	switch stmt := s.(type) {
	case *ir.IdentityStmt:
		p.lowerAssignLike(stmt, stmt.P, &ir.LocalValue{Local: stmt.Local}, stmt.Ref)
	case *ir.AssignStmt:
		p.lowerAssignLike(stmt, stmt.P, stmt.Left, stmt.Right)
	case *ir.IfStmt:
		p.lowerIf(stmt)
	case *ir.GotoStmt:
		node := p.mkControlStructure(cpg.Goto, "goto", stmt.P)
		p.addAST(p.blockNode, node)
		p.assoc.Append(stmt, node)
	case *ir.LookupSwitchStmt:
		p.lowerLookupSwitch(stmt)
	case *ir.TableSwitchStmt:
		p.lowerTableSwitch(stmt)
	case *ir.InvokeStmt:
		call, _ := p.lowerInvoke(stmt.Invoke, 0, stmt.P)
		p.addAST(p.blockNode, call)
		p.assoc.Insert(stmt, 0, call)
	case *ir.ReturnStmt:
		p.lowerReturn(stmt)
	case *ir.ReturnVoidStmt:
		ret := p.mkReturn(p.method.ReturnType, 0, stmt.P)
		p.addAST(p.blockNode, ret)
		p.assoc.Append(stmt, ret)
	case *ir.ThrowStmt:
		p.lowerThrowOrMonitor(stmt, stmt.P, stmt.Operand)
	case *ir.MonitorStmt:
		p.lowerThrowOrMonitor(stmt, stmt.P, stmt.Operand)
	case *ir.UnknownStmt:
		p.warn("lower: unknown statement kind %q, skipping", stmt.Text)
	default:
		p.warn("lower: unrecognized statement type %T, skipping", s)
	}
}

// lowerAssignLike implements the Identity/Assign rule of §4.4: both kinds
// bind a left-hand location to a right-hand value through a synthetic
// CALL(assignment).
func (p *passState) lowerAssignLike(stmtKey ir.Stmt, pos ir.Position, left, right ir.Value) {
	leftRoot, leftEntry := p.lowerLeft(left, pos)
	rightRoot, rightEntry := p.lowerOp(right, 2, pos)

	call := p.mkCall(callSpec{
		Name:           "assignment",
		Code:           "=",
		MethodFullName: operatorName("assignment"),
		Dispatch:       cpg.StaticDispatch,
		ArgIdx:         0,
	}, pos)
	p.addAST(p.blockNode, call)
	p.addAST(call, leftRoot)
	p.builder.AddEdge(call, leftRoot, cpg.Argument)
	p.addAST(call, rightRoot)
	p.builder.AddEdge(call, rightRoot, cpg.Argument)
	p.builder.AddEdge(leftRoot, rightEntry, cpg.CFG)
	p.builder.AddEdge(rightRoot, call, cpg.CFG)

	_ = leftEntry
	p.assoc.Append(stmtKey, leftRoot, rightRoot, call)
}

// lowerLeft lowers the left-hand side of an assignment per its shape:
// Local→IDENTIFIER, FieldRef→fieldAccess call, ArrayRef→indexAccess call,
// anything else→UNKNOWN (§4.4).
func (p *passState) lowerLeft(left ir.Value, pos ir.Position) (*cpg.Node, *cpg.Node) {
	switch lv := left.(type) {
	case *ir.LocalValue:
		n := p.mkIdentifier(lv.Local.Name, lv.Local.Type, pos, 1)
		p.assoc.Append(lv.Local, n)
		return n, n
	case *ir.StaticFieldRef:
		return p.lowerFieldAccess(lv, nil, lv.DeclaringClass, lv.FieldName, lv.FieldType, 1, pos)
	case *ir.InstanceFieldRef:
		return p.lowerFieldAccess(lv, lv.Base, lv.DeclaringClass, lv.FieldName, lv.FieldType, 1, pos)
	case *ir.ArrayRef:
		return p.lowerArrayRef(lv, 1, pos)
	default:
		p.warn("lower: unknown assignment-left shape %T", left)
		n := p.mkUnknown(fmt.Sprintf("%T", left), "", pos)
		return n, n
	}
}

func (p *passState) lowerIf(stmt *ir.IfStmt) {
	ifNode := p.mkControlStructure(cpg.If, "if", stmt.P)
	p.addAST(p.blockNode, ifNode)

	var condRoot, condEntry *cpg.Node
	if stmt.Condition != nil {
		condRoot, condEntry = p.lowerBinopLike(stmt.Condition.Op, stmt.Condition.Left, stmt.Condition.Right, 1, stmt.P)
	} else {
		p.warn("lower: if statement at line %d has no condition", stmt.P.Line)
	}
	p.addAST(ifNode, condRoot)
	p.builder.AddEdge(ifNode, condRoot, cpg.Condition)

	p.assoc.Append(stmt, condEntry, condRoot, ifNode)
}

func (p *passState) lowerLookupSwitch(stmt *ir.LookupSwitchStmt) {
	switchNode := p.mkControlStructure(cpg.Switch, "switch", stmt.P)
	p.addAST(p.blockNode, switchNode)

	condRoot, condEntry := p.lowerOp(stmt.Key, 1, stmt.P)
	p.addAST(switchNode, condRoot)
	p.builder.AddEdge(switchNode, condRoot, cpg.Condition)

	p.assoc.Append(stmt, switchNode)
	p.assoc.Insert(stmt, 0, condEntry)

	for _, v := range stmt.Lookups {
		jt := p.mkJumpTarget(fmt.Sprintf("case %d", v), int(v), stmt.P)
		p.addAST(switchNode, jt)
		p.assoc.Append(stmt, jt)
	}
	defJT := p.mkJumpTarget("default", len(stmt.Lookups)+2, stmt.P)
	p.addAST(switchNode, defJT)
	p.assoc.Append(stmt, defJT)
}

func (p *passState) lowerTableSwitch(stmt *ir.TableSwitchStmt) {
	switchNode := p.mkControlStructure(cpg.Switch, "switch", stmt.P)
	p.addAST(p.blockNode, switchNode)

	condRoot, condEntry := p.lowerOp(stmt.Key, 1, stmt.P)
	p.addAST(switchNode, condRoot)
	p.builder.AddEdge(switchNode, condRoot, cpg.Condition)

	p.assoc.Append(stmt, switchNode)
	p.assoc.Insert(stmt, 0, condEntry)

	for i := range stmt.Targets {
		jt := p.mkJumpTarget(fmt.Sprintf("case %d", i), i, stmt.P)
		p.addAST(switchNode, jt)
		p.assoc.Append(stmt, jt)
	}
	// Default argumentIndex is targets.size+2, not +1 — preserved
	// verbatim per the source model (§9).
	defJT := p.mkJumpTarget("default", len(stmt.Targets)+2, stmt.P)
	p.addAST(switchNode, defJT)
	p.assoc.Append(stmt, defJT)
}

func (p *passState) lowerReturn(stmt *ir.ReturnStmt) {
	operandRoot, operandEntry := p.lowerOp(stmt.Operand, 1, stmt.P)
	ret := p.mkReturn(p.method.ReturnType, 0, stmt.P)
	p.addAST(p.blockNode, ret)
	p.addAST(ret, operandRoot)
	p.builder.AddEdge(ret, operandRoot, cpg.Argument)
	p.builder.AddEdge(operandRoot, ret, cpg.CFG)

	_ = operandEntry
	p.assoc.Append(stmt, operandRoot, ret)
}

// lowerThrowOrMonitor implements the Throw/Monitor rule of §4.4,
// preserving the reversed AST direction noted in §9 verbatim.
func (p *passState) lowerThrowOrMonitor(stmtKey ir.Stmt, pos ir.Position, operand ir.Value) {
	operandRoot, operandEntry := p.lowerOp(operand, 0, pos)
	unk := p.mkUnknown("", "void", pos)
	p.builder.AddEdge(operandRoot, unk, cpg.CFG)
	p.addASTReverse(unk, operandRoot)
	p.addAST(p.blockNode, unk)

	_ = operandEntry
	p.assoc.Append(stmtKey, operandRoot, unk)
}
