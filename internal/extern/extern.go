// Package extern declares the collaborators the lowering core treats as
// external per the spec's §6: the method-stub provider, the type-node
// registry, and the evaluation-strategy classifier. The core depends only
// on these interfaces, never on a concrete loader or backend, so that
// program-wide passes (namespace/type/member construction, bytecode
// loading, persistence) can be swapped without touching the core.
package extern

import (
	"github.com/plume-oss/plume-driver/internal/cpg"
	"github.com/plume-oss/plume-driver/internal/ir"
)

// MethodIndex is the read side of the method-stub provider: it hands back
// the pre-created METHOD, BLOCK, and METHOD_RETURN stub nodes for a
// method, and records the call index / parameter nodes the core produces.
//
// The spec describes this collaborator as a single methodStore(method)
// call returning a mixed Seq[Node] of stubs; it is split here into typed
// accessors (MethodNode/BlockNode/MethodReturnNode) because the core needs
// to address each stub kind individually (e.g. "connect the block to the
// return node", "CFG return to the method-return stub") and a mixed slice
// would force the core to re-discover each stub's kind by inspection.
type MethodIndex interface {
	MethodNode(fullName string) *cpg.Node
	BlockNode(fullName string) *cpg.Node
	MethodReturnNode(fullName string) *cpg.Node

	// AddCall registers a call node in the process-wide call index keyed
	// by the invocation it lowers.
	AddCall(invoke *ir.InvokeExpr, call *cpg.Node)

	// StoreMethodNode persists the parameter-in/out nodes the AST pass
	// produced for m, so later inter-procedural passes (out of scope
	// here) can find them.
	StoreMethodNode(m *ir.Method, params []*cpg.Node)
}

// TypeIndex is the read-only type-node registry.
type TypeIndex interface {
	// TypeNode returns the previously registered node for fullName, or
	// nil if type resolution has not reached it yet.
	TypeNode(fullName string) *cpg.Node
}

// EvalStrategyFunc is the evaluation-strategy classifier: a pure function
// from a type name (and whether the binding is a return value) to the
// parameter-passing semantics the core must record on parameter-in nodes.
type EvalStrategyFunc func(typeName string, isReturn bool) cpg.EvaluationStrategy

// DefaultEvalStrategy implements the rule given in §6: object and array
// types are by-reference; everything else (the primitive types) is
// by-value. isReturn is accepted for interface compatibility but does not
// change the classification — the core only relies on the tri-valued
// result, not on how a real frontend might special-case return binding.
func DefaultEvalStrategy(typeName string, isReturn bool) cpg.EvaluationStrategy {
	if isPrimitive(typeName) {
		return cpg.ByValue
	}
	return cpg.ByReference
}

func isPrimitive(typeName string) bool {
	switch typeName {
	case "boolean", "byte", "char", "short", "int", "long", "float", "double", "void":
		return true
	default:
		return false
	}
}
