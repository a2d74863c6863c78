package lower

import (
	"github.com/plume-oss/plume-driver/internal/cpg"
	"github.com/plume-oss/plume-driver/internal/ir"
)

// The node factory: typed constructors for every CPG node kind the core
// produces, with positional and semantic properties filled in up front so
// callers never touch a half-built *cpg.Node. Every constructor registers
// the node with the builder; those for node kinds that carry a type also
// attach its EVAL_TYPE edge (§4.3) before returning. CONTROL_STRUCTURE,
// JUMP_TARGET and FIELD_IDENTIFIER nodes get no EVAL_TYPE edge.

func (p *passState) mkIdentifier(name, typeFullName string, pos ir.Position, argIdx int) *cpg.Node {
	n := p.create(&cpg.Node{
		Label:         cpg.Identifier,
		Name:          name,
		Code:          name,
		TypeFullName:  typeFullName,
		ArgumentIndex: argIdx,
		Line:          pos.Line,
		Col:           pos.Col,
	})
	p.addEvalType(n)
	return n
}

func (p *passState) mkLiteral(code, typeFullName string, pos ir.Position, argIdx int) *cpg.Node {
	n := p.create(&cpg.Node{
		Label:         cpg.Literal,
		Code:          code,
		TypeFullName:  typeFullName,
		ArgumentIndex: argIdx,
		Line:          pos.Line,
		Col:           pos.Col,
	})
	p.addEvalType(n)
	return n
}

// callSpec bundles the varying fields of a CALL node so mkCall doesn't
// need a long positional argument list.
type callSpec struct {
	Name           string
	Code           string
	MethodFullName string
	Signature      string
	Dispatch       cpg.DispatchType
	TypeFullName   string
	ArgIdx         int
}

func (p *passState) mkCall(spec callSpec, pos ir.Position) *cpg.Node {
	n := p.create(&cpg.Node{
		Label:          cpg.Call,
		Name:           spec.Name,
		Code:           spec.Code,
		MethodFullName: spec.MethodFullName,
		Signature:      spec.Signature,
		DispatchType:   spec.Dispatch,
		TypeFullName:   spec.TypeFullName,
		ArgumentIndex:  spec.ArgIdx,
		Line:           pos.Line,
		Col:            pos.Col,
	})
	p.addEvalType(n)
	return n
}

func (p *passState) mkControlStructure(kind cpg.ControlStructureType, code string, pos ir.Position) *cpg.Node {
	return p.create(&cpg.Node{
		Label:                cpg.ControlStructure,
		ControlStructureType: kind,
		Code:                 code,
		Line:                 pos.Line,
		Col:                  pos.Col,
	})
}

func (p *passState) mkJumpTarget(name string, argIdx int, pos ir.Position) *cpg.Node {
	return p.create(&cpg.Node{
		Label:         cpg.JumpTarget,
		Name:          name,
		ArgumentIndex: argIdx,
		Line:          pos.Line,
		Col:           pos.Col,
	})
}

func (p *passState) mkFieldIdentifier(canonicalName string, argIdx int, pos ir.Position) *cpg.Node {
	return p.create(&cpg.Node{
		Label:         cpg.FieldIdentifier,
		Name:          canonicalName,
		CanonicalName: canonicalName,
		Code:          canonicalName,
		ArgumentIndex: argIdx,
		Line:          pos.Line,
		Col:           pos.Col,
	})
}

func (p *passState) mkReturn(typeFullName string, argIdx int, pos ir.Position) *cpg.Node {
	n := p.create(&cpg.Node{
		Label:         cpg.Return,
		TypeFullName:  typeFullName,
		ArgumentIndex: argIdx,
		Line:          pos.Line,
		Col:           pos.Col,
	})
	p.addEvalType(n)
	return n
}

func (p *passState) mkUnknown(code, typeFullName string, pos ir.Position) *cpg.Node {
	n := p.create(&cpg.Node{
		Label:        cpg.Unknown,
		Code:         code,
		TypeFullName: typeFullName,
		Line:         pos.Line,
		Col:          pos.Col,
	})
	p.addEvalType(n)
	return n
}

func (p *passState) mkLocal(l *ir.Local, pos ir.Position) *cpg.Node {
	n := p.create(&cpg.Node{
		Label:        cpg.LocalNode,
		Name:         l.Name,
		Code:         l.Name,
		TypeFullName: l.Type,
		Line:         pos.Line,
		Col:          pos.Col,
	})
	p.addEvalType(n)
	return n
}

func (p *passState) mkParamIn(l *ir.Local, argIdx int, strategy cpg.EvaluationStrategy, pos ir.Position) *cpg.Node {
	n := p.create(&cpg.Node{
		Label:              cpg.MethodParameterIn,
		Name:               l.Name,
		Code:               l.Type + " " + l.Name,
		TypeFullName:       l.Type,
		ArgumentIndex:      argIdx,
		EvaluationStrategy: strategy,
		Line:               pos.Line,
		Col:                pos.Col,
	})
	p.addEvalType(n)
	return n
}

func (p *passState) mkParamOut(l *ir.Local, argIdx int, pos ir.Position) *cpg.Node {
	n := p.create(&cpg.Node{
		Label:              cpg.MethodParameterOut,
		Name:               l.Name,
		Code:               l.Type + " " + l.Name,
		TypeFullName:       l.Type,
		ArgumentIndex:      argIdx,
		EvaluationStrategy: cpg.BySharing,
		Line:               pos.Line,
		Col:                pos.Col,
	})
	p.addEvalType(n)
	return n
}
