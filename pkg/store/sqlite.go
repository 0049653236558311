// Package store persists the knowledge graph in SQLite. The daemon loads
// the whole graph into memory at boot; the query path never touches the
// database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
)

// Store manages the SQLite connection and schema.
type Store struct {
	db *sql.DB
}

// NewStore initializes the SQLite database connection.
// It enables WAL mode for concurrency and durability.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	// Nodes keyed by (label, id); the property map lives in a JSON blob.
	// Edges reference their endpoints by (label, id) pairs; the unique
	// index mirrors the domain convention of at most one edge of a given
	// type between two nodes.
	query := `
	CREATE TABLE IF NOT EXISTS nodes (
		label TEXT NOT NULL,
		id TEXT NOT NULL,
		properties JSON NOT NULL DEFAULT '{}',
		PRIMARY KEY (label, id)
	);

	CREATE TABLE IF NOT EXISTS edges (
		from_label TEXT NOT NULL,
		from_id TEXT NOT NULL,
		type TEXT NOT NULL,
		to_label TEXT NOT NULL,
		to_id TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_edges_unique
		ON edges(from_label, from_id, type, to_label, to_id);

	CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_label, from_id, type);
	CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_label, to_id, type);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create graph tables: %w", err)
	}

	return nil
}

// UpsertNode inserts a node or replaces its properties when it already
// exists. The ingest path uses merge semantics so repeated population
// runs converge.
func (s *Store) UpsertNode(ctx context.Context, label graph.Label, id string, properties map[string]string) error {
	if properties == nil {
		properties = map[string]string{}
	}
	props, err := json.Marshal(properties)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO nodes (label, id, properties) VALUES (?, ?, ?)
		ON CONFLICT(label, id) DO UPDATE SET properties = excluded.properties`,
		string(label), id, string(props))
	if err != nil {
		return fmt.Errorf("failed to upsert node %s/%s: %w", label, id, err)
	}
	return nil
}

// InsertEdge records a directed typed edge. Duplicate edges are ignored.
func (s *Store) InsertEdge(ctx context.Context, from graph.NodeRef, to graph.NodeRef, typ graph.EdgeType) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO edges (from_label, from_id, type, to_label, to_id)
		VALUES (?, ?, ?, ?, ?)`,
		string(from.Label), from.ID, string(typ), string(to.Label), to.ID)
	if err != nil {
		return fmt.Errorf("failed to insert edge %s/%s -%s-> %s/%s: %w",
			from.Label, from.ID, typ, to.Label, to.ID, err)
	}
	return nil
}

// LoadGraph reads every node and edge in insertion (rowid) order and
// builds the in-memory graph. Referential integrity and edge endpoint
// typing are enforced by the graph during the build.
func (s *Store) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	g := graph.New()

	rows, err := s.db.QueryContext(ctx, `SELECT label, id, properties FROM nodes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to read nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label, id, propsJSON string
		if err := rows.Scan(&label, &id, &propsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan node row: %w", err)
		}
		var props map[string]string
		if err := json.Unmarshal([]byte(propsJSON), &props); err != nil {
			return nil, fmt.Errorf("corrupt properties for node %s/%s: %w", label, id, err)
		}
		if err := g.AddNode(graph.Label(label), id, props); err != nil {
			return nil, fmt.Errorf("failed to load node %s/%s: %w", label, id, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("node scan aborted: %w", err)
	}

	edgeRows, err := s.db.QueryContext(ctx, `
		SELECT from_label, from_id, type, to_label, to_id FROM edges ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to read edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var fromLabel, fromID, typ, toLabel, toID string
		if err := edgeRows.Scan(&fromLabel, &fromID, &typ, &toLabel, &toID); err != nil {
			return nil, fmt.Errorf("failed to scan edge row: %w", err)
		}
		from := graph.NodeRef{Label: graph.Label(fromLabel), ID: fromID}
		to := graph.NodeRef{Label: graph.Label(toLabel), ID: toID}
		if err := g.AddEdge(from, to, graph.EdgeType(typ)); err != nil {
			return nil, fmt.Errorf("failed to load edge: %w", err)
		}
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("edge scan aborted: %w", err)
	}

	return g, nil
}

// Stats returns node counts by label and edge counts by type.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		NodeCounts: make(map[string]int64),
		EdgeCounts: make(map[string]int64),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM nodes GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to count nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		var count int64
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("failed to scan node count: %w", err)
		}
		stats.NodeCounts[label] = count
		stats.TotalNodes += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM edges GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count edges: %w", err)
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var typ string
		var count int64
		if err := edgeRows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("failed to scan edge count: %w", err)
		}
		stats.EdgeCounts[typ] = count
		stats.TotalEdges += count
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// Clear removes every node and edge. Used before a full repopulation.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM edges`); err != nil {
		return fmt.Errorf("failed to clear edges: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}
	return nil
}
