package httpapi

import (
	"github.com/plume-oss/plume-driver/internal/cpg"
	"github.com/plume-oss/plume-driver/internal/store"
)

// nodeView is the JSON-friendly projection of a *cpg.Node; it exists so
// the wire format doesn't change shape if the internal Node struct gains
// fields the API has no business exposing.
type nodeView struct {
	ID                   int64  `json:"id"`
	Label                string `json:"label"`
	Name                 string `json:"name,omitempty"`
	Code                 string `json:"code,omitempty"`
	TypeFullName         string `json:"typeFullName,omitempty"`
	Order                int    `json:"order,omitempty"`
	ArgumentIndex        int    `json:"argumentIndex,omitempty"`
	Line                 int    `json:"line,omitempty"`
	Col                  int    `json:"col,omitempty"`
	OwnerMethodFullName  string `json:"ownerMethodFullName,omitempty"`
	MethodFullName       string `json:"methodFullName,omitempty"`
	Signature            string `json:"signature,omitempty"`
	DispatchType         string `json:"dispatchType,omitempty"`
	ControlStructureType string `json:"controlStructureType,omitempty"`
	EvaluationStrategy   string `json:"evaluationStrategy,omitempty"`
	CanonicalName        string `json:"canonicalName,omitempty"`
}

func viewNode(n *cpg.Node) *nodeView {
	if n == nil {
		return nil
	}
	return &nodeView{
		ID:                   n.ID,
		Label:                string(n.Label),
		Name:                 n.Name,
		Code:                 n.Code,
		TypeFullName:         n.TypeFullName,
		Order:                n.Order,
		ArgumentIndex:        n.ArgumentIndex,
		Line:                 n.Line,
		Col:                  n.Col,
		OwnerMethodFullName:  n.OwnerMethodFullName,
		MethodFullName:       n.MethodFullName,
		Signature:            n.Signature,
		DispatchType:         string(n.DispatchType),
		ControlStructureType: string(n.ControlStructureType),
		EvaluationStrategy:   string(n.EvaluationStrategy),
		CanonicalName:        n.CanonicalName,
	}
}

func viewNodes(nodes []*cpg.Node) []*nodeView {
	out := make([]*nodeView, len(nodes))
	for i, n := range nodes {
		out[i] = viewNode(n)
	}
	return out
}

func viewEdges(edges []store.Edge) []edgeView {
	out := make([]edgeView, len(edges))
	for i, e := range edges {
		out[i] = edgeView{Source: e.Source, Target: e.Target, Label: string(e.Label)}
	}
	return out
}
