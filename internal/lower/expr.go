package lower

import (
	"fmt"
	"strings"

	"github.com/plume-oss/plume-driver/internal/cpg"
	"github.com/plume-oss/plume-driver/internal/ir"
)

// operatorName formats one of the literal CALL operator names the spec
// pins exactly, e.g. "<operator>.assignment".
func operatorName(suffix string) string {
	return "<operator>." + suffix
}

// lowerOp is the expression lowerer: it recursively lowers an IR value to
// a node subgraph and returns (root, cfgEntry) so the caller can thread
// CFG edges across sibling operands. pos is the enclosing statement's
// position; values carry no position of their own.
func (p *passState) lowerOp(v ir.Value, childIdx int, pos ir.Position) (root, cfgEntry *cpg.Node) {
	switch val := v.(type) {
	case nil:
		return nil, nil

	case *ir.LocalValue:
		n := p.mkIdentifier(val.Local.Name, val.Local.Type, pos, childIdx)
		p.assoc.Append(val.Local, n)
		return n, n

	case *ir.Constant:
		n := p.mkLiteral(val.Code, val.Type, pos, childIdx)
		return n, n

	case *ir.IdentityRefValue:
		code := "@this"
		if val.Kind == "parameter" {
			code = fmt.Sprintf("@parameter%d", val.Index)
		}
		n := p.mkIdentifier(code, val.Type, pos, childIdx)
		return n, n

	case *ir.NewExpr:
		n := p.mkIdentifier("new "+val.Type, val.Type, pos, childIdx)
		return n, n

	case *ir.NewArrayExpr:
		n := p.mkIdentifier(fmt.Sprintf("newarray %s[]", val.ElementType), val.ElementType, pos, childIdx)
		return n, n

	case *ir.CaughtExceptionRef:
		n := p.mkIdentifier("@caughtexception", val.Type, pos, childIdx)
		return n, n

	case *ir.StaticFieldRef:
		return p.lowerFieldAccess(val, nil, val.DeclaringClass, val.FieldName, val.FieldType, childIdx, pos)

	case *ir.InstanceFieldRef:
		return p.lowerFieldAccess(val, val.Base, val.DeclaringClass, val.FieldName, val.FieldType, childIdx, pos)

	case *ir.BinopExpr:
		return p.lowerBinopLike(val.Op, val.Left, val.Right, childIdx, pos)

	case *ir.ConditionExpr:
		return p.lowerBinopLike(val.Op, val.Left, val.Right, childIdx, pos)

	case *ir.CastExpr:
		return p.lowerUnary("cast", val.Type, val.Operand, childIdx, pos)

	case *ir.InstanceOfExpr:
		return p.lowerUnary("instanceOf", "boolean", val.Operand, childIdx, pos)

	case *ir.LengthExpr:
		return p.lowerUnary("lengthOf", "int", val.Operand, childIdx, pos)

	case *ir.NegExpr:
		return p.lowerUnary("minus", "", val.Operand, childIdx, pos)

	case *ir.ArrayRef:
		return p.lowerArrayRef(val, childIdx, pos)

	case *ir.InvokeExpr:
		return p.lowerInvoke(val, childIdx, pos)

	default:
		p.warn("lower: unknown value shape %T, emitting UNKNOWN", v)
		n := p.mkUnknown(fmt.Sprintf("%T", v), "", pos)
		return n, n
	}
}

// lowerBinopLike lowers the shared shape of BinopExpr and ConditionExpr:
// CALL(op) with two AST/ARGUMENT children at argumentIndex 1 and 2; CFG
// internal to the call is left → right → call; the external cfg-entry is
// the cfg-entry returned by the left operand.
func (p *passState) lowerBinopLike(op string, left, right ir.Value, childIdx int, pos ir.Position) (*cpg.Node, *cpg.Node) {
	leftRoot, leftEntry := p.lowerOp(left, 1, pos)
	rightRoot, rightEntry := p.lowerOp(right, 2, pos)
	call := p.mkCall(callSpec{
		Name:           op,
		Code:           op,
		MethodFullName: operatorName(op),
		Dispatch:       cpg.StaticDispatch,
		ArgIdx:         childIdx,
	}, pos)
	p.addAST(call, leftRoot)
	p.builder.AddEdge(call, leftRoot, cpg.Argument)
	p.addAST(call, rightRoot)
	p.builder.AddEdge(call, rightRoot, cpg.Argument)
	p.builder.AddEdge(leftRoot, rightEntry, cpg.CFG)
	p.builder.AddEdge(rightRoot, call, cpg.CFG)
	return call, leftEntry
}

// lowerUnary lowers the shared shape of CastExpr/InstanceOfExpr/
// LengthExpr/NegExpr: CALL(op) with one AST/ARGUMENT child at
// argumentIndex 1; internal CFG child → call.
func (p *passState) lowerUnary(op, resultType string, operand ir.Value, childIdx int, pos ir.Position) (*cpg.Node, *cpg.Node) {
	childRoot, childEntry := p.lowerOp(operand, 1, pos)
	call := p.mkCall(callSpec{
		Name:           op,
		Code:           op,
		MethodFullName: operatorName(op),
		Dispatch:       cpg.StaticDispatch,
		TypeFullName:   resultType,
		ArgIdx:         childIdx,
	}, pos)
	p.addAST(call, childRoot)
	p.builder.AddEdge(call, childRoot, cpg.Argument)
	p.builder.AddEdge(childRoot, call, cpg.CFG)
	return call, childEntry
}

func (p *passState) lowerArrayRef(val *ir.ArrayRef, childIdx int, pos ir.Position) (*cpg.Node, *cpg.Node) {
	baseRoot, baseEntry := p.lowerOp(val.Base, 1, pos)
	idxRoot, idxEntry := p.lowerOp(val.Index, 2, pos)
	call := p.mkCall(callSpec{
		Name:           "indexAccess",
		Code:           "indexAccess",
		MethodFullName: operatorName("indexAccess"),
		Dispatch:       cpg.StaticDispatch,
		ArgIdx:         childIdx,
	}, pos)
	p.addAST(call, baseRoot)
	p.builder.AddEdge(call, baseRoot, cpg.Argument)
	p.addAST(call, idxRoot)
	p.builder.AddEdge(call, idxRoot, cpg.Argument)
	p.builder.AddEdge(baseRoot, idxEntry, cpg.CFG)
	p.builder.AddEdge(idxRoot, call, cpg.CFG)
	// Registered under the ArrayRef value itself, entry node first, so
	// the CFG pass's array-store re-keying rule (§4.5, §9) can resolve
	// the correct CFG entry point via assoc[assignStmt.Left][0] instead
	// of the outer assignment's own assoc[stmt][0] (which would be the
	// indexAccess call itself, skipping the base/index evaluation).
	p.assoc.Append(val, baseEntry, call)
	return call, baseEntry
}

func (p *passState) lowerFieldAccess(key ir.Value, base ir.Value, declClass, fieldName, fieldType string, childIdx int, pos ir.Position) (*cpg.Node, *cpg.Node) {
	call := p.mkCall(callSpec{
		Name:           "fieldAccess",
		Code:           declClass + "." + fieldName,
		MethodFullName: operatorName("fieldAccess"),
		Dispatch:       cpg.StaticDispatch,
		TypeFullName:   fieldType,
		ArgIdx:         childIdx,
	}, pos)

	var baseRoot, baseEntry *cpg.Node
	if base != nil {
		baseRoot, baseEntry = p.lowerOp(base, 1, pos)
	} else {
		baseRoot = p.mkIdentifier(declClass, declClass, pos, 1)
		baseEntry = baseRoot
	}
	fieldID := p.mkFieldIdentifier(canonicalFieldSig(declClass, fieldName, fieldType), 2, pos)

	p.addAST(call, baseRoot)
	p.builder.AddEdge(call, baseRoot, cpg.Argument)
	p.addAST(call, fieldID)
	p.builder.AddEdge(call, fieldID, cpg.Argument)
	p.builder.AddEdge(baseRoot, call, cpg.CFG)

	p.assoc.Append(key, baseRoot, fieldID)
	return call, baseEntry
}

func canonicalFieldSig(declClass, fieldName, fieldType string) string {
	return declClass + "." + fieldName + ":" + fieldType
}

func (p *passState) lowerInvoke(expr *ir.InvokeExpr, childIdx int, pos ir.Position) (*cpg.Node, *cpg.Node) {
	methodFullName := fmt.Sprintf("%s.%s:%s(%s)", expr.DeclaringClass, expr.Name, expr.ReturnType, strings.Join(expr.ParamTypes, ","))
	signature := fmt.Sprintf("%s(%s)", expr.ReturnType, strings.Join(expr.ParamTypes, ","))
	dispatch := cpg.DynamicDispatch
	if expr.Static {
		dispatch = cpg.StaticDispatch
	}
	call := p.mkCall(callSpec{
		Name:           expr.Name,
		Code:           methodFullName,
		MethodFullName: methodFullName,
		Signature:      signature,
		Dispatch:       dispatch,
		TypeFullName:   expr.ReturnType,
		ArgIdx:         childIdx,
	}, pos)

	var entry, chainTail *cpg.Node
	link := func(n *cpg.Node) {
		if n == nil {
			return
		}
		if entry == nil {
			entry = n
		}
		if chainTail != nil {
			p.builder.AddEdge(chainTail, n, cpg.CFG)
		}
		chainTail = n
	}

	if expr.Receiver != nil {
		if lv, ok := expr.Receiver.(*ir.LocalValue); ok {
			receiver := p.mkIdentifier(lv.Local.Name, lv.Local.Type, pos, 0)
			p.assoc.Append(lv.Local, receiver)
			p.addAST(call, receiver)
			p.builder.AddEdge(call, receiver, cpg.Argument)
			p.builder.AddEdge(call, receiver, cpg.Receiver)
			link(receiver)
		} else {
			p.warn("lower: unsupported invocation receiver shape for %s", methodFullName)
		}
	}

	argIdx := 1
	for _, a := range append(append([]ir.Value{}, expr.Args...), expr.BootstrapArgs...) {
		var argNode *cpg.Node
		switch av := a.(type) {
		case *ir.LocalValue:
			argNode = p.mkIdentifier(av.Local.Name, av.Local.Type, pos, argIdx)
			p.assoc.Append(av.Local, argNode)
		case *ir.Constant:
			argNode = p.mkLiteral(av.Code, av.Type, pos, argIdx)
		default:
			argIdx++
			continue
		}
		p.addAST(call, argNode)
		p.builder.AddEdge(call, argNode, cpg.Argument)
		link(argNode)
		argIdx++
	}

	if chainTail != nil {
		p.builder.AddEdge(chainTail, call, cpg.CFG)
	}
	if entry == nil {
		entry = call
	}

	p.assoc.Append(expr, call)
	if p.methodIdx != nil {
		p.methodIdx.AddCall(expr, call)
	}
	return call, entry
}
