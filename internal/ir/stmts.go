package ir

// IdentityStmt binds a this/parameter placeholder to a local, e.g.
// `this := @this: Foo` or `p0 := @parameter0: int`.
type IdentityStmt struct {
	P     Position
	Local *Local
	Ref   Value // an *IdentityRefValue
}

func (s *IdentityStmt) Pos() Position { return s.P }
func (s *IdentityStmt) stmtNode()     {}

// AssignStmt is a general assignment; Left is Local, StaticFieldRef,
// InstanceFieldRef, or ArrayRef.
type AssignStmt struct {
	P     Position
	Left  Value
	Right Value
}

func (s *AssignStmt) Pos() Position { return s.P }
func (s *AssignStmt) stmtNode()     {}

// IfStmt branches on a relational condition to one of its successors.
type IfStmt struct {
	P         Position
	Condition *ConditionExpr
}

func (s *IfStmt) Pos() Position { return s.P }
func (s *IfStmt) stmtNode()     {}

// GotoStmt is an unconditional branch; its successor carries the target.
type GotoStmt struct {
	P Position
}

func (s *GotoStmt) Pos() Position { return s.P }
func (s *GotoStmt) stmtNode()     {}

// LookupSwitchStmt dispatches on a key against an arbitrary set of literal
// lookup values, with Targets parallel to Lookups.
type LookupSwitchStmt struct {
	P       Position
	Key     Value
	Lookups []int64
	Targets []Stmt
	Default Stmt
}

func (s *LookupSwitchStmt) Pos() Position { return s.P }
func (s *LookupSwitchStmt) stmtNode()     {}

// TableSwitchStmt dispatches on a key against a contiguous ordinal range
// starting at Low.
type TableSwitchStmt struct {
	P       Position
	Key     Value
	Low     int64
	Targets []Stmt
	Default Stmt
}

func (s *TableSwitchStmt) Pos() Position { return s.P }
func (s *TableSwitchStmt) stmtNode()     {}

// InvokeStmt is a call made for its side effect; its result is discarded.
type InvokeStmt struct {
	P      Position
	Invoke *InvokeExpr
}

func (s *InvokeStmt) Pos() Position { return s.P }
func (s *InvokeStmt) stmtNode()     {}

// ReturnStmt returns a value.
type ReturnStmt struct {
	P       Position
	Operand Value
}

func (s *ReturnStmt) Pos() Position { return s.P }
func (s *ReturnStmt) stmtNode()     {}

// ReturnVoidStmt returns with no value.
type ReturnVoidStmt struct {
	P Position
}

func (s *ReturnVoidStmt) Pos() Position { return s.P }
func (s *ReturnVoidStmt) stmtNode()     {}

// ThrowStmt raises an exception.
type ThrowStmt struct {
	P       Position
	Operand Value
}

func (s *ThrowStmt) Pos() Position { return s.P }
func (s *ThrowStmt) stmtNode()     {}

// MonitorStmt enters or exits a monitor (synchronized block).
type MonitorStmt struct {
	P       Position
	Operand Value
	Enter   bool
}

func (s *MonitorStmt) Pos() Position { return s.P }
func (s *MonitorStmt) stmtNode()     {}

// UnknownStmt is the fallthrough for statement kinds outside the closed
// set; the AST pass skips it with a warning.
type UnknownStmt struct {
	P    Position
	Text string
}

func (s *UnknownStmt) Pos() Position { return s.P }
func (s *UnknownStmt) stmtNode()     {}
