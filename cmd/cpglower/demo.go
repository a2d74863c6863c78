package main

import "github.com/plume-oss/plume-driver/internal/ir"

// demoMethods builds a tiny in-memory batch used for smoke-testing when
// no -input path is given: a two-argument add and a two-argument max,
// exercising the Identity/Assign, binary-operator, and If/Return shapes
// without requiring a JSON fixture on disk.
func demoMethods() []*ir.Method {
	return []*ir.Method{demoAdd(), demoMax()}
}

func demoAdd() *ir.Method {
	this := &ir.Local{Name: "r0", Type: "demo.Calculator"}
	a := &ir.Local{Name: "i0", Type: "int"}
	b := &ir.Local{Name: "i1", Type: "int"}
	sum := &ir.Local{Name: "$i2", Type: "int"}

	m := ir.NewMethod("demo.Calculator.add(int,int)int", "demo.Calculator", "int", this, []*ir.Local{a, b}, ir.Position{Line: 1})

	thisId := &ir.IdentityStmt{P: ir.Position{Line: 1}, Local: this, Ref: &ir.IdentityRefValue{Kind: "this", Type: "demo.Calculator"}}
	aId := &ir.IdentityStmt{P: ir.Position{Line: 1}, Local: a, Ref: &ir.IdentityRefValue{Kind: "parameter", Index: 0, Type: "int"}}
	bId := &ir.IdentityStmt{P: ir.Position{Line: 1}, Local: b, Ref: &ir.IdentityRefValue{Kind: "parameter", Index: 1, Type: "int"}}
	assign := &ir.AssignStmt{
		P:    ir.Position{Line: 2},
		Left: &ir.LocalValue{Local: sum},
		Right: &ir.BinopExpr{
			Op:    "add",
			Left:  &ir.LocalValue{Local: a},
			Right: &ir.LocalValue{Local: b},
		},
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

func demoMax() *ir.Method {
	this := &ir.Local{Name: "r0", Type: "demo.Calculator"}
	a := &ir.Local{Name: "i0", Type: "int"}
	b := &ir.Local{Name: "i1", Type: "int"}

	m := ir.NewMethod("demo.Calculator.max(int,int)int", "demo.Calculator", "int", this, []*ir.Local{a, b}, ir.Position{Line: 10})

	thisId := &ir.IdentityStmt{P: ir.Position{Line: 10}, Local: this, Ref: &ir.IdentityRefValue{Kind: "this", Type: "demo.Calculator"}}
	aId := &ir.IdentityStmt{P: ir.Position{Line: 10}, Local: a, Ref: &ir.IdentityRefValue{Kind: "parameter", Index: 0, Type: "int"}}
	bId := &ir.IdentityStmt{P: ir.Position{Line: 10}, Local: b, Ref: &ir.IdentityRefValue{Kind: "parameter", Index: 1, Type: "int"}}
	ifStmt := &ir.IfStmt{
		P: ir.Position{Line: 11},
		Condition: &ir.ConditionExpr{
			Op:    "greaterThan",
			Left:  &ir.LocalValue{Local: a},
			Right: &ir.LocalValue{Local: b},
		},
	}
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
