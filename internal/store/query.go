package store

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/plume-oss/plume-driver/internal/cpg"
)

// Edge is a stored CPG edge, read back with integer node IDs rather than
// *cpg.Node pointers (the store, unlike the core, addresses nodes by the
// ID it assigned on insert).
type Edge struct {
	Source int64
	Target int64
	Label  cpg.EdgeKind
}

// ListMethods returns every distinct owning method full name that has at
// least one stored node, for the HTTP API's GET /api/methods. This keys
// off owner_method_full_name, not method_full_name — the latter also
// appears on CALL nodes to identify a callee, which would otherwise list
// invocation targets instead of the methods actually lowered.
func (s *Store) ListMethods() ([]string, error) {
	var names []string
	err := sqlitex.ExecuteTransient(s.conn,
		`SELECT DISTINCT owner_method_full_name FROM nodes WHERE owner_method_full_name IS NOT NULL ORDER BY owner_method_full_name`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				names = append(names, stmt.ColumnText(0))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("list methods: %w", err)
	}
	return names, nil
}

// MethodGraph returns every node whose owning method is fullName together
// with every edge that has at least one endpoint among them, for the HTTP
// API's GET /api/method.
func (s *Store) MethodGraph(fullName string) ([]*cpg.Node, []Edge, error) {
	nodes, err := s.queryNodes(nodeColumns+` FROM nodes WHERE owner_method_full_name = ? ORDER BY id`, fullName)
	if err != nil {
		return nil, nil, err
	}
	if len(nodes) == 0 {
		return nil, nil, nil
	}

	ids := make(map[int64]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}

	var edges []Edge
	err = sqlitex.ExecuteTransient(s.conn,
		`SELECT source, target, label FROM edges WHERE source IN (SELECT id FROM nodes WHERE owner_method_full_name = ?)
		    OR target IN (SELECT id FROM nodes WHERE owner_method_full_name = ?)`,
		&sqlitex.ExecOptions{
			Args: []any{fullName, fullName},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				e := Edge{Source: stmt.ColumnInt64(0), Target: stmt.ColumnInt64(1), Label: cpg.EdgeKind(stmt.ColumnText(2))}
				if ids[e.Source] || ids[e.Target] {
					edges = append(edges, e)
				}
				return nil
			},
		})
	if err != nil {
		return nil, nil, fmt.Errorf("method graph edges: %w", err)
	}
	return nodes, edges, nil
}

// NodeByID returns a single node and every edge touching it, for the HTTP
// API's GET /api/node.
func (s *Store) NodeByID(id int64) (*cpg.Node, []Edge, error) {
	nodes, err := s.queryNodes(nodeColumns+` FROM nodes WHERE id = ?`, id)
	if err != nil {
		return nil, nil, err
	}
	if len(nodes) == 0 {
		return nil, nil, nil
	}

	var edges []Edge
	err = sqlitex.ExecuteTransient(s.conn,
		`SELECT source, target, label FROM edges WHERE source = ? OR target = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id, id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				edges = append(edges, Edge{Source: stmt.ColumnInt64(0), Target: stmt.ColumnInt64(1), Label: cpg.EdgeKind(stmt.ColumnText(2))})
				return nil
			},
		})
	if err != nil {
		return nil, nil, fmt.Errorf("node edges: %w", err)
	}
	return nodes[0], edges, nil
}

// nodeColumns pins the column order scanNode relies on; every query that
// populates a *cpg.Node selects exactly these columns in this order.
const nodeColumns = `SELECT id, label, name, code, type_full_name, node_order, argument_index,
	line, col, owner_method_full_name, method_full_name, signature, dispatch_type,
	control_structure_type, evaluation_strategy, canonical_name`

func (s *Store) queryNodes(query string, args ...any) ([]*cpg.Node, error) {
	var nodes []*cpg.Node
	err := sqlitex.ExecuteTransient(s.conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			nodes = append(nodes, scanNode(stmt))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	return nodes, nil
}

func scanNode(stmt *sqlite.Stmt) *cpg.Node {
	return &cpg.Node{
		ID:                   stmt.ColumnInt64(0),
		Label:                cpg.NodeLabel(stmt.ColumnText(1)),
		Name:                 stmt.ColumnText(2),
		Code:                 stmt.ColumnText(3),
		TypeFullName:         stmt.ColumnText(4),
		Order:                stmt.ColumnInt(5),
		ArgumentIndex:        stmt.ColumnInt(6),
		Line:                 stmt.ColumnInt(7),
		Col:                  stmt.ColumnInt(8),
		OwnerMethodFullName:  stmt.ColumnText(9),
		MethodFullName:       stmt.ColumnText(10),
		Signature:            stmt.ColumnText(11),
		DispatchType:         cpg.DispatchType(stmt.ColumnText(12)),
		ControlStructureType: cpg.ControlStructureType(stmt.ColumnText(13)),
		EvaluationStrategy:   cpg.EvaluationStrategy(stmt.ColumnText(14)),
		CanonicalName:        stmt.ColumnText(15),
	}
}
