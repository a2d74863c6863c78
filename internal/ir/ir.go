// Package ir models the Jimple-like three-address IR that the lowering core
// consumes. Statements and values are closed sets: every variant implements
// a marker method so a type switch over them is exhaustive by construction.
package ir

// Position carries the source line/column of a statement or method. Either
// field may be negative when the frontend has no position information.
type Position struct {
	Line, Col int
}

// Local is a named, typed variable. Identity is the pointer itself: two
// references to the same variable in the IR must share the same *Local.
type Local struct {
	Name string
	Type string
}

// Value is the closed set of expression kinds described in the spec's data
// model. Implementations live in values.go.
type Value interface {
	valueNode()
}

// Stmt is the closed set of statement kinds described in the spec's data
// model. Implementations live in stmts.go.
type Stmt interface {
	Pos() Position
	stmtNode()
}

// Method is the read-only input to the lowering core: a name, declaring
// type, parameter locals, a body of statements in textual order, and a
// precomputed successor graph over that body.
type Method struct {
	FullName       string
	DeclaringClass string
	ReturnType     string

	// ThisLocal is non-nil for instance methods; it is the receiver local
	// bound by the method's identity statement, kept separate from Params
	// because Jimple keeps "this" out of the parameter-local list.
	ThisLocal *Local
	Params    []*Local

	Body []Stmt
	Pos  Position

	heads   []Stmt
	headSet map[Stmt]bool
	succs   map[Stmt][]Stmt
}

// NewMethod constructs an empty method ready to receive a body via AddStmt.
func NewMethod(fullName, declaringClass, returnType string, thisLocal *Local, params []*Local, pos Position) *Method {
	return &Method{
		FullName:       fullName,
		DeclaringClass: declaringClass,
		ReturnType:     returnType,
		ThisLocal:      thisLocal,
		Params:         params,
		Pos:            pos,
		headSet:        make(map[Stmt]bool),
		succs:          make(map[Stmt][]Stmt),
	}
}

// AddStmt appends a statement to the method body, in textual order.
func (m *Method) AddStmt(s Stmt) {
	m.Body = append(m.Body, s)
}

// MarkHead records s as an entry point of the method.
func (m *Method) MarkHead(s Stmt) {
	if m.headSet[s] {
		return
	}
	m.headSet[s] = true
	m.heads = append(m.heads, s)
}

// SetSuccessors records the control-flow successors of s.
func (m *Method) SetSuccessors(s Stmt, succs ...Stmt) {
	m.succs[s] = succs
}

// Heads returns the method's entry statements in the order they were marked.
func (m *Method) Heads() []Stmt {
	return m.heads
}

// Succs returns the control-flow successors of s, or nil if none were set.
func (m *Method) Succs(s Stmt) []Stmt {
	return m.succs[s]
}

// Locals returns every distinct Local referenced anywhere in the method
// body, in first-occurrence order. The IR carries no separate locals list
// (Jimple bodies declare locals implicitly through use), so this walks the
// body once and collects pointer-identity-distinct locals.
func (m *Method) Locals() []*Local {
	seen := make(map[*Local]bool)
	var out []*Local
	add := func(l *Local) {
		if l == nil || seen[l] {
			return
		}
		seen[l] = true
		out = append(out, l)
	}
	var walkValue func(v Value)
	walkValue = func(v Value) {
		switch val := v.(type) {
		case nil:
			return
		case *LocalValue:
			add(val.Local)
		case *BinopExpr:
			walkValue(val.Left)
			walkValue(val.Right)
		case *ConditionExpr:
			walkValue(val.Left)
			walkValue(val.Right)
		case *CastExpr:
			walkValue(val.Operand)
		case *InstanceOfExpr:
			walkValue(val.Operand)
		case *LengthExpr:
			walkValue(val.Operand)
		case *NegExpr:
			walkValue(val.Operand)
		case *ArrayRef:
			walkValue(val.Base)
			walkValue(val.Index)
		case *NewArrayExpr:
			walkValue(val.Size)
		case *InstanceFieldRef:
			walkValue(val.Base)
		case *InvokeExpr:
			walkValue(val.Receiver)
			for _, a := range val.Args {
				walkValue(a)
			}
			for _, a := range val.BootstrapArgs {
				walkValue(a)
			}
		}
	}
	for _, s := range m.Body {
		switch stmt := s.(type) {
		case *IdentityStmt:
			add(stmt.Local)
		case *AssignStmt:
			walkValue(stmt.Left)
			walkValue(stmt.Right)
		case *IfStmt:
			if stmt.Condition != nil {
				walkValue(stmt.Condition)
			}
		case *LookupSwitchStmt:
			walkValue(stmt.Key)
		case *TableSwitchStmt:
			walkValue(stmt.Key)
		case *InvokeStmt:
			walkValue(stmt.Invoke)
		case *ReturnStmt:
			walkValue(stmt.Operand)
		case *ThrowStmt:
			walkValue(stmt.Operand)
		case *MonitorStmt:
			walkValue(stmt.Operand)
		}
	}
	return out
}
