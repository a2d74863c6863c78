// Package cpg defines the Code Property Graph node and edge model produced
// by the lowering core. Nodes are allocated as pointers and act as stable
// arena handles: two overlays (AST, CFG, PDG) can reference the same *Node,
// and an Edge is a separate record that never owns the nodes it connects.
package cpg

// NodeLabel is a node kind. The set is closed to what the method-body
// lowering core and its external collaborators produce.
type NodeLabel string

const (
	Method              NodeLabel = "METHOD"
	Block               NodeLabel = "BLOCK"
	MethodReturn        NodeLabel = "METHOD_RETURN"
	MethodParameterIn   NodeLabel = "METHOD_PARAMETER_IN"
	MethodParameterOut  NodeLabel = "METHOD_PARAMETER_OUT"
	LocalNode           NodeLabel = "LOCAL"
	Identifier          NodeLabel = "IDENTIFIER"
	Literal             NodeLabel = "LITERAL"
	Call                NodeLabel = "CALL"
	ControlStructure    NodeLabel = "CONTROL_STRUCTURE"
	JumpTarget          NodeLabel = "JUMP_TARGET"
	FieldIdentifier     NodeLabel = "FIELD_IDENTIFIER"
	Return              NodeLabel = "RETURN"
	Unknown             NodeLabel = "UNKNOWN"
	TypeRef             NodeLabel = "TYPE"
)

// EdgeKind is an edge label. The set is closed per the spec's edge model.
type EdgeKind string

const (
	AST            EdgeKind = "AST"
	CFG            EdgeKind = "CFG"
	Argument       EdgeKind = "ARGUMENT"
	Receiver       EdgeKind = "RECEIVER"
	Ref            EdgeKind = "REF"
	Condition      EdgeKind = "CONDITION"
	EvalType       EdgeKind = "EVAL_TYPE"
	Contains       EdgeKind = "CONTAINS"
	ParameterLink  EdgeKind = "PARAMETER_LINK"
)

// DispatchType is a CALL node's resolution strategy.
type DispatchType string

const (
	StaticDispatch  DispatchType = "STATIC_DISPATCH"
	DynamicDispatch DispatchType = "DYNAMIC_DISPATCH"
)

// EvaluationStrategy is a parameter's passing semantics.
type EvaluationStrategy string

const (
	ByValue     EvaluationStrategy = "BY_VALUE"
	ByReference EvaluationStrategy = "BY_REFERENCE"
	BySharing   EvaluationStrategy = "BY_SHARING"
)

// ControlStructureType distinguishes CONTROL_STRUCTURE nodes.
type ControlStructureType string

const (
	If     ControlStructureType = "IF"
	Switch ControlStructureType = "SWITCH"
	Goto   ControlStructureType = "GOTO"
)

// Node is a single CPG vertex. ID is left zero by the core; a consumer
// assigns it on insert (the core never invents stable string or integer
// identity of its own, per the spec's node model).
type Node struct {
	ID   int64
	Label NodeLabel

	Name          string
	Code          string
	TypeFullName  string
	Order         int
	ArgumentIndex int
	Line, Col     int

	// OwnerMethodFullName is the method this node was produced while
	// lowering, set uniformly by the core on every node it emits. Distinct
	// from MethodFullName: that field identifies a CALL node's callee (or
	// a METHOD node's own name), not which method's lowering produced the
	// node, so a caller/callee pair would otherwise collide under the
	// same column.
	OwnerMethodFullName string

	// CALL-specific.
	MethodFullName string
	Signature      string
	DispatchType   DispatchType

	// CONTROL_STRUCTURE-specific.
	ControlStructureType ControlStructureType

	// METHOD_PARAMETER_IN/OUT-specific.
	EvaluationStrategy EvaluationStrategy

	// FIELD_IDENTIFIER-specific.
	CanonicalName string
}

// Edge is a directed, labeled connection between two nodes.
type Edge struct {
	Src, Dst *Node
	Label    EdgeKind
}
