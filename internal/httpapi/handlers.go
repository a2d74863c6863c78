package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// methodGraphResponse is the GET /api/method payload: the stored nodes
// one method's lowering produced and every edge touching them.
type methodGraphResponse struct {
	Nodes []*nodeView `json:"nodes"`
	Edges []edgeView  `json:"edges"`
}

type nodeGraphResponse struct {
	Node  *nodeView  `json:"node"`
	Edges []edgeView `json:"edges"`
}

type edgeView struct {
	Source int64  `json:"source"`
	Target int64  `json:"target"`
	Label  string `json:"label"`
}

func (a *App) handleMethods(w http.ResponseWriter, r *http.Request) {
	names, err := a.store.ListMethods()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, names)
}

func (a *App) handleMethod(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing query parameter name", http.StatusBadRequest)
		return
	}
	nodes, edges, err := a.store.MethodGraph(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if nodes == nil {
		http.Error(w, "method not found", http.StatusNotFound)
		return
	}
	writeJSON(w, methodGraphResponse{Nodes: viewNodes(nodes), Edges: viewEdges(edges)})
}

func (a *App) handleNode(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		http.Error(w, "missing query parameter id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	node, edges, err := a.store.NodeByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if node == nil {
		http.Error(w, "node not found", http.StatusNotFound)
		return
	}
	writeJSON(w, nodeGraphResponse{Node: viewNode(node), Edges: viewEdges(edges)})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
