// Package store persists lowered method graphs to a SQLite file. It is
// the bulk-apply consumer the lowering core's DeltaGraph contract assumes
// (§6, §10): a transaction-per-method, append-only writer that assigns
// node IDs on insert and deduplicates edges the core may have re-emitted.
package store

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/plume-oss/plume-driver/internal/cpg"
	"github.com/plume-oss/plume-driver/internal/delta"
)

const ddl = `
CREATE TABLE IF NOT EXISTS nodes (
    id              INTEGER PRIMARY KEY,
    label           TEXT NOT NULL,
    name            TEXT,
    code            TEXT,
    type_full_name  TEXT,
    node_order      INTEGER,
    argument_index  INTEGER,
    line            INTEGER,
    col             INTEGER,
    owner_method_full_name TEXT,
    method_full_name TEXT,
    signature       TEXT,
    dispatch_type   TEXT,
    control_structure_type TEXT,
    evaluation_strategy    TEXT,
    canonical_name  TEXT
);

CREATE TABLE IF NOT EXISTS edges (
    source INTEGER NOT NULL,
    target INTEGER NOT NULL,
    label  TEXT NOT NULL,
    UNIQUE(source, target, label)
);

CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes(label);
CREATE INDEX IF NOT EXISTS idx_nodes_owner ON nodes(owner_method_full_name);
CREATE INDEX IF NOT EXISTS idx_nodes_method ON nodes(method_full_name);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source, label);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target, label);
`

// Store owns a single SQLite connection and assigns node IDs as it writes.
type Store struct {
	conn   *sqlite.Conn
	nextID int64
}

// Open opens the SQLite file at path, creating it if absent, and prepares
// its schema. Rows already in the file are kept; the IDs Apply assigns
// start at 1 for every Store.
func Open(path string) (*Store, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := sqlitex.ExecuteTransient(conn, "PRAGMA journal_mode = WAL", nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, ddl, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{conn: conn, nextID: 1}, nil
}

// OpenMemory opens an ephemeral in-memory database, for tests.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Apply assigns an ID to every NodeAdd operation's node, bulk-inserts the
// resulting nodes and (deduplicated) edges in one transaction, and
// returns the number of nodes and edges written. The core may emit the
// same edge more than once (§4.6, §7 SchemaViolationOnApply); dedup is
// the consumer's responsibility, not the core's.
func (s *Store) Apply(dg *delta.DeltaGraph) (nodeCount, edgeCount int, err error) {
	if dg == nil {
		return 0, 0, nil
	}

	endFn, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer endFn(&err)

	nodeStmt, err := s.conn.Prepare(`INSERT INTO nodes (
		id, label, name, code, type_full_name, node_order, argument_index,
		line, col, owner_method_full_name, method_full_name, signature,
		dispatch_type, control_structure_type, evaluation_strategy, canonical_name
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("prepare node insert: %w", err)
	}
	defer func() { _ = nodeStmt.Finalize() }()

	edgeStmt, err := s.conn.Prepare(`INSERT OR IGNORE INTO edges (source, target, label) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("prepare edge insert: %w", err)
	}
	defer func() { _ = edgeStmt.Finalize() }()

	for _, op := range dg.Ops {
		switch op.Kind {
		case delta.OpNodeAdd:
			if op.Node == nil || op.Node.ID != 0 {
				continue
			}
			op.Node.ID = s.nextID
			s.nextID++
			if err = bindNode(nodeStmt, op.Node); err != nil {
				return nodeCount, edgeCount, err
			}
			if _, err = nodeStmt.Step(); err != nil {
				return nodeCount, edgeCount, fmt.Errorf("insert node: %w", err)
			}
			if err = nodeStmt.Reset(); err != nil {
				return nodeCount, edgeCount, err
			}
			nodeCount++

		case delta.OpEdgeAdd:
			if op.Src == nil || op.Dst == nil {
				continue
			}
			edgeStmt.BindInt64(1, op.Src.ID)
			edgeStmt.BindInt64(2, op.Dst.ID)
			edgeStmt.BindText(3, string(op.Label))
			if _, err = edgeStmt.Step(); err != nil {
				return nodeCount, edgeCount, fmt.Errorf("insert edge: %w", err)
			}
			if err = edgeStmt.Reset(); err != nil {
				return nodeCount, edgeCount, err
			}
			if s.conn.Changes() > 0 {
				edgeCount++
			}
		}
	}

	return nodeCount, edgeCount, nil
}

func bindNode(stmt *sqlite.Stmt, n *cpg.Node) error {
	stmt.BindInt64(1, n.ID)
	stmt.BindText(2, string(n.Label))
	bindTextOrNull(stmt, 3, n.Name)
	bindTextOrNull(stmt, 4, n.Code)
	bindTextOrNull(stmt, 5, n.TypeFullName)
	bindIntOrNull(stmt, 6, n.Order)
	bindIntOrNull(stmt, 7, n.ArgumentIndex)
	bindIntOrNull(stmt, 8, n.Line)
	bindIntOrNull(stmt, 9, n.Col)
	bindTextOrNull(stmt, 10, n.OwnerMethodFullName)
	bindTextOrNull(stmt, 11, n.MethodFullName)
	bindTextOrNull(stmt, 12, n.Signature)
	bindTextOrNull(stmt, 13, string(n.DispatchType))
	bindTextOrNull(stmt, 14, string(n.ControlStructureType))
	bindTextOrNull(stmt, 15, string(n.EvaluationStrategy))
	bindTextOrNull(stmt, 16, n.CanonicalName)
	return nil
}

func bindTextOrNull(stmt *sqlite.Stmt, param int, val string) {
	if val == "" {
		stmt.BindNull(param)
	} else {
		stmt.BindText(param, val)
	}
}

func bindIntOrNull(stmt *sqlite.Stmt, param, val int) {
	if val == 0 {
		stmt.BindNull(param)
	} else {
		stmt.BindInt64(param, int64(val))
	}
}
