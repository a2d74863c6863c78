package jsonir

import (
	"encoding/json"
	"fmt"

	"github.com/plume-oss/plume-driver/internal/ir"
)

// stmtMeta carries the successor/target information a statement's wire
// form names by body index, resolved to *ir.Stmt only after every
// statement in the body has its own IR node constructed.
type stmtMeta struct {
	succs   []int
	targets []int
	def     int
	hasDef  bool
}

// decodeStmt decodes one tagged statement envelope. It never resolves a
// body-index reference to another statement itself — that requires the
// full body to exist first — so it returns the raw indices via stmtMeta
// for the caller to patch in once every statement is built.
func decodeStmt(raw json.RawMessage, locals map[string]*ir.Local) (ir.Stmt, *stmtMeta, error) {
	var w stmtWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, nil, fmt.Errorf("decode statement: %w", err)
	}
	pos := ir.Position{Line: w.Line, Col: w.Col}

	value := func(r json.RawMessage) (ir.Value, error) { return DecodeValue(r, locals) }

	switch w.Kind {
	case "Identity":
		l, ok := locals[w.Local]
		if !ok {
			return nil, nil, fmt.Errorf("undeclared local %q", w.Local)
		}
		ref, err := value(w.Ref)
		if err != nil {
			return nil, nil, err
		}
		return &ir.IdentityStmt{P: pos, Local: l, Ref: ref}, metaFor(w), nil
	case "Assign":
		left, err := value(w.Left)
		if err != nil {
			return nil, nil, err
		}
		right, err := value(w.Right)
		if err != nil {
			return nil, nil, err
		}
		return &ir.AssignStmt{P: pos, Left: left, Right: right}, metaFor(w), nil
	case "If":
		cond, err := value(w.Cond)
		if err != nil {
			return nil, nil, err
		}
		condExpr, ok := cond.(*ir.ConditionExpr)
		if cond != nil && !ok {
			return nil, nil, fmt.Errorf("if condition must decode to a ConditionExpr, got %T", cond)
		}
		return &ir.IfStmt{P: pos, Condition: condExpr}, metaFor(w), nil
	case "Goto":
		return &ir.GotoStmt{P: pos}, metaFor(w), nil
	case "LookupSwitch":
		key, err := value(w.Key)
		if err != nil {
			return nil, nil, err
		}
		return &ir.LookupSwitchStmt{P: pos, Key: key, Lookups: w.Lookups}, metaFor(w), nil
	case "TableSwitch":
		key, err := value(w.Key)
		if err != nil {
			return nil, nil, err
		}
		return &ir.TableSwitchStmt{P: pos, Key: key, Low: w.Low}, metaFor(w), nil
	case "Invoke":
		invVal, err := value(w.Invoke)
		if err != nil {
			return nil, nil, err
		}
		inv, ok := invVal.(*ir.InvokeExpr)
		if invVal != nil && !ok {
			return nil, nil, fmt.Errorf("invoke statement's invoke must decode to an InvokeExpr, got %T", invVal)
		}
		return &ir.InvokeStmt{P: pos, Invoke: inv}, metaFor(w), nil
	case "Return":
		operand, err := value(w.Operand)
		if err != nil {
			return nil, nil, err
		}
		return &ir.ReturnStmt{P: pos, Operand: operand}, metaFor(w), nil
	case "ReturnVoid":
		return &ir.ReturnVoidStmt{P: pos}, metaFor(w), nil
	case "Throw":
		operand, err := value(w.Operand)
		if err != nil {
			return nil, nil, err
		}
		return &ir.ThrowStmt{P: pos, Operand: operand}, metaFor(w), nil
	case "Monitor":
		operand, err := value(w.Operand)
		if err != nil {
			return nil, nil, err
		}
		return &ir.MonitorStmt{P: pos, Operand: operand, Enter: w.Enter}, metaFor(w), nil
	case "Unknown", "":
		return &ir.UnknownStmt{P: pos, Text: w.Text}, metaFor(w), nil
	default:
		return nil, nil, fmt.Errorf("unknown statement kind %q", w.Kind)
	}
}

func metaFor(w stmtWire) *stmtMeta {
	return &stmtMeta{
		succs:   w.Succs,
		targets: w.Targets,
		def:     w.Default,
		hasDef:  w.HasDef,
	}
}
