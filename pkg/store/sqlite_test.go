package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "astrakg.db")
	s, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_Migrate(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"nodes", "edges"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Fatalf("table %q missing: %v", table, err)
		}
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertNode(ctx, graph.LabelSatellite, "insat-3d", map[string]string{"name": "INSAT-3D"}); err != nil {
		t.Fatalf("UpsertNode failed: %v", err)
	}
	if err := s.UpsertNode(ctx, graph.LabelProduct, "p1", map[string]string{"name": "p1"}); err != nil {
		t.Fatalf("UpsertNode failed: %v", err)
	}

	from := graph.NodeRef{Label: graph.LabelSatellite, ID: "insat-3d"}
	to := graph.NodeRef{Label: graph.LabelProduct, ID: "p1"}
	if err := s.InsertEdge(ctx, from, to, graph.EdgeProduces); err != nil {
		t.Fatalf("InsertEdge failed: %v", err)
	}
	// Duplicate edges are ignored, mirroring MERGE semantics.
	if err := s.InsertEdge(ctx, from, to, graph.EdgeProduces); err != nil {
		t.Fatalf("duplicate InsertEdge should be a no-op: %v", err)
	}

	g, err := s.LoadGraph(ctx)
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}

	node, err := g.GetNode(graph.LabelSatellite, "insat-3d")
	if err != nil {
		t.Fatalf("loaded graph missing node: %v", err)
	}
	if v, _ := node.Property("name"); v != "INSAT-3D" {
		t.Errorf("property round trip failed: %q", v)
	}

	if got := g.EdgeCount(graph.EdgeProduces); got != 1 {
		t.Errorf("expected 1 PRODUCES edge after dedupe, got %d", got)
	}
}

func TestStore_UpsertReplacesProperties(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertNode(ctx, graph.LabelRegion, "india", map[string]string{"name": "India", "type": "country"}); err != nil {
		t.Fatalf("UpsertNode failed: %v", err)
	}
	if err := s.UpsertNode(ctx, graph.LabelRegion, "india", map[string]string{"name": "India", "type": "subcontinent"}); err != nil {
		t.Fatalf("second UpsertNode failed: %v", err)
	}

	g, err := s.LoadGraph(ctx)
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	node, err := g.GetNode(graph.LabelRegion, "india")
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if v, _ := node.Property("type"); v != "subcontinent" {
		t.Errorf("upsert did not replace properties: %q", v)
	}
}

func TestStore_LoadGraph_DanglingEdge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertNode(ctx, graph.LabelSatellite, "sat-1", nil); err != nil {
		t.Fatalf("UpsertNode failed: %v", err)
	}
	from := graph.NodeRef{Label: graph.LabelSatellite, ID: "sat-1"}
	to := graph.NodeRef{Label: graph.LabelProduct, ID: "ghost"}
	if err := s.InsertEdge(ctx, from, to, graph.EdgeProduces); err != nil {
		t.Fatalf("InsertEdge failed: %v", err)
	}

	_, err := s.LoadGraph(ctx)
	var dangling *graph.DanglingReferenceError
	if !errors.As(err, &dangling) {
		t.Fatalf("expected DanglingReferenceError from load, got %v", err)
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertNode(ctx, graph.LabelSatellite, "sat-1", nil); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertNode(ctx, graph.LabelProduct, "p1", nil); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertNode(ctx, graph.LabelProduct, "p2", nil); err != nil {
		t.Fatal(err)
	}
	from := graph.NodeRef{Label: graph.LabelSatellite, ID: "sat-1"}
	if err := s.InsertEdge(ctx, from, graph.NodeRef{Label: graph.LabelProduct, ID: "p1"}, graph.EdgeProduces); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.NodeCounts["Product"] != 2 || stats.NodeCounts["Satellite"] != 1 {
		t.Errorf("node counts wrong: %v", stats.NodeCounts)
	}
	if stats.EdgeCounts["PRODUCES"] != 1 || stats.TotalEdges != 1 {
		t.Errorf("edge counts wrong: %v", stats.EdgeCounts)
	}
	if stats.TotalNodes != 3 {
		t.Errorf("total nodes = %d, want 3", stats.TotalNodes)
	}
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertNode(ctx, graph.LabelSatellite, "sat-1", nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalNodes != 0 || stats.TotalEdges != 0 {
		t.Errorf("expected empty store after Clear, got %+v", stats)
	}
}
