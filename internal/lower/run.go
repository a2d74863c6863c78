package lower

import (
	"github.com/plume-oss/plume-driver/internal/delta"
	"github.com/plume-oss/plume-driver/internal/extern"
	"github.com/plume-oss/plume-driver/internal/ir"
)

// RunMethod lowers a single method to a DeltaGraph, running the AST, CFG,
// and PDG passes followed by the containment sweep (§4, §5). Any panic
// raised inside a pass is caught once here; a warning is logged and the
// partial delta built so far is returned rather than propagated (§7).
func RunMethod(m *ir.Method, methodIdx extern.MethodIndex, typeIdx extern.TypeIndex, evalStrategy extern.EvalStrategyFunc, warnf func(format string, args ...any)) (dg *delta.DeltaGraph) {
	p := newPassState(m, methodIdx, typeIdx, evalStrategy, warnf)
	defer func() {
		if r := recover(); r != nil {
			p.warn("lower: panic while lowering %s: %v", m.FullName, r)
		}
		dg = p.builder.Build()
	}()

	p.astPass()
	p.cfgPass()
	p.pdgPass()
	p.containmentSweep()
	return
}
