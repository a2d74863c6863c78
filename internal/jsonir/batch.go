package jsonir

import (
	"encoding/json"
	"fmt"

	"github.com/plume-oss/plume-driver/internal/ir"
)

// DecodeMethod builds an *ir.Method from its wire declaration. Every
// local the body references must appear in ThisLocal, Params, or Locals
// — the decoder has no body-walking fallback, since it needs a complete
// name→*ir.Local registry before it can decode any statement.
func DecodeMethod(d MethodDecl) (*ir.Method, error) {
	locals := make(map[string]*ir.Local)
	var thisLocal *ir.Local
	if d.ThisLocal != nil {
		thisLocal = &ir.Local{Name: d.ThisLocal.Name, Type: d.ThisLocal.Type}
		locals[d.ThisLocal.Name] = thisLocal
	}
	params := make([]*ir.Local, len(d.Params))
	for i, p := range d.Params {
		l := &ir.Local{Name: p.Name, Type: p.Type}
		locals[p.Name] = l
		params[i] = l
	}
	for _, ld := range d.Locals {
		if _, exists := locals[ld.Name]; exists {
			continue
		}
		locals[ld.Name] = &ir.Local{Name: ld.Name, Type: ld.Type}
	}

	m := ir.NewMethod(d.FullName, d.DeclaringClass, d.ReturnType, thisLocal, params, ir.Position{})

	stmts := make([]ir.Stmt, len(d.Body))
	metas := make([]*stmtMeta, len(d.Body))
	for i, raw := range d.Body {
		s, meta, err := decodeStmt(raw, locals)
		if err != nil {
			return nil, fmt.Errorf("method %s, statement %d: %w", d.FullName, i, err)
		}
		stmts[i] = s
		metas[i] = meta
		m.AddStmt(s)
	}

	resolve := func(idx int) (ir.Stmt, error) {
		if idx < 0 || idx >= len(stmts) {
			return nil, fmt.Errorf("statement index %d out of range", idx)
		}
		return stmts[idx], nil
	}

	for i, s := range stmts {
		meta := metas[i]

		switch sw := s.(type) {
		case *ir.LookupSwitchStmt:
			targets, def, err := resolveSwitchTargets(meta, resolve)
			if err != nil {
				return nil, fmt.Errorf("method %s, statement %d: %w", d.FullName, i, err)
			}
			sw.Targets, sw.Default = targets, def
			continue
		case *ir.TableSwitchStmt:
			targets, def, err := resolveSwitchTargets(meta, resolve)
			if err != nil {
				return nil, fmt.Errorf("method %s, statement %d: %w", d.FullName, i, err)
			}
			sw.Targets, sw.Default = targets, def
			continue
		}

		succIdx := meta.succs
		if succIdx == nil {
			succIdx = defaultSuccessors(s, i, len(stmts))
		}
		var succs []ir.Stmt
		for _, idx := range succIdx {
			target, err := resolve(idx)
			if err != nil {
				return nil, fmt.Errorf("method %s, statement %d: %w", d.FullName, i, err)
			}
			succs = append(succs, target)
		}
		m.SetSuccessors(s, succs...)
	}

	if len(d.Heads) == 0 {
		if len(stmts) > 0 {
			m.MarkHead(stmts[0])
		}
	} else {
		for _, idx := range d.Heads {
			head, err := resolve(idx)
			if err != nil {
				return nil, fmt.Errorf("method %s: head %w", d.FullName, err)
			}
			m.MarkHead(head)
		}
	}

	return m, nil
}

// resolveSwitchTargets resolves a LookupSwitchStmt/TableSwitchStmt's
// Targets/Default from their body-index form. A missing "hasDefault"
// leaves Default nil, matching a switch with no default case.
func resolveSwitchTargets(meta *stmtMeta, resolve func(int) (ir.Stmt, error)) ([]ir.Stmt, ir.Stmt, error) {
	targets := make([]ir.Stmt, 0, len(meta.targets))
	for _, idx := range meta.targets {
		t, err := resolve(idx)
		if err != nil {
			return nil, nil, err
		}
		targets = append(targets, t)
	}
	var def ir.Stmt
	if meta.hasDef {
		d, err := resolve(meta.def)
		if err != nil {
			return nil, nil, err
		}
		def = d
	}
	return targets, def, nil
}

// defaultSuccessors implements the fall-through-to-next-statement rule
// for statement kinds with no explicit "succs" in the wire format.
// Terminal kinds (Return/ReturnVoid/Throw) have none; switches carry
// their own Targets/Default instead of using Method.Succs at all.
func defaultSuccessors(s ir.Stmt, i, n int) []int {
	switch s.(type) {
	case *ir.ReturnStmt, *ir.ReturnVoidStmt, *ir.ThrowStmt:
		return nil
	case *ir.GotoStmt:
		return nil
	default:
		if i+1 < n {
			return []int{i + 1}
		}
		return nil
	}
}

// DecodeBatch decodes every method in a Batch, in order. It does not
// touch an extern.TypeIndex/MethodIndex itself — the caller registers
// Batch.Types and each method's stub triple before lowering, per §6.
func DecodeBatch(data []byte) (*Batch, []*ir.Method, error) {
	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, nil, fmt.Errorf("decode batch: %w", err)
	}
	methods := make([]*ir.Method, 0, len(b.Methods))
	for _, md := range b.Methods {
		m, err := DecodeMethod(md)
		if err != nil {
			return nil, nil, err
		}
		methods = append(methods, m)
	}
	return &b, methods, nil
}
