package reports

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"testing"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
	"github.com/gowri-arun/astraq-kg/pkg/query"
	"github.com/gowri-arun/astraq-kg/pkg/schema"
)

func testRunner(t *testing.T) QueryRunner {
	t.Helper()

	g := graph.New()
	add := func(label graph.Label, id string, props map[string]string) {
		t.Helper()
		if err := g.AddNode(label, id, props); err != nil {
			t.Fatal(err)
		}
	}
	link := func(fromLabel graph.Label, fromID string, toLabel graph.Label, toID string, typ graph.EdgeType) {
		t.Helper()
		err := g.AddEdge(
			graph.NodeRef{Label: fromLabel, ID: fromID},
			graph.NodeRef{Label: toLabel, ID: toID},
			typ,
		)
		if err != nil {
			t.Fatal(err)
		}
	}

	add(graph.LabelSatellite, "insat-3dr", map[string]string{"name": "INSAT-3DR"})
	add(graph.LabelSatellite, "oceansat-3", map[string]string{"name": "Oceansat-3"})
	add(graph.LabelProduct, "p1", map[string]string{"name": "Rainfall L2", "section": "data"})
	add(graph.LabelProduct, "p2", map[string]string{"name": "Winds L3", "section": "data"})
	add(graph.LabelParameter, "rainfall", map[string]string{"type": "rainfall"})
	add(graph.LabelParameter, "wind", map[string]string{"type": "wind"})

	link(graph.LabelSatellite, "insat-3dr", graph.LabelProduct, "p1", graph.EdgeProduces)
	link(graph.LabelSatellite, "oceansat-3", graph.LabelProduct, "p2", graph.EdgeProduces)
	link(graph.LabelProduct, "p1", graph.LabelParameter, "rainfall", graph.EdgeObserves)
	link(graph.LabelProduct, "p1", graph.LabelParameter, "wind", graph.EdgeObserves)
	link(graph.LabelProduct, "p2", graph.LabelParameter, "wind", graph.EdgeObserves)

	return query.NewExecutor(g, schema.Default())
}

func readCSV(t *testing.T, r io.Reader) [][]string {
	t.Helper()
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	return records
}

func TestInventoryReport(t *testing.T) {
	gen, err := NewReportGenerator(ReportTypeInventory, testRunner(t))
	if err != nil {
		t.Fatal(err)
	}

	out, err := gen.Generate(context.Background(), ReportParams{Format: ReportFormatCSV})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	records := readCSV(t, out)
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "s.name" {
		t.Errorf("unexpected header: %v", records[0])
	}
	// Rows are sorted by satellite name then product id.
	if records[1][0] != "INSAT-3DR" || records[1][1] != "p1" {
		t.Errorf("unexpected first row: %v", records[1])
	}
	if records[2][0] != "Oceansat-3" || records[2][1] != "p2" {
		t.Errorf("unexpected second row: %v", records[2])
	}
}

func TestInventoryReport_SatelliteFilter(t *testing.T) {
	gen := NewInventoryReport(testRunner(t))

	out, err := gen.Generate(context.Background(), ReportParams{
		Format:    ReportFormatCSV,
		Satellite: "Oceansat-3",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	records := readCSV(t, out)
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[1][0] != "Oceansat-3" {
		t.Errorf("unexpected row: %v", records[1])
	}
}

func TestCoverageReport(t *testing.T) {
	gen := NewCoverageReport(testRunner(t))

	out, err := gen.Generate(context.Background(), ReportParams{Format: ReportFormatCSV})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	records := readCSV(t, out)
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	// Aggregated parameter lists are joined with ";".
	if records[1][0] != "INSAT-3DR" || records[1][1] != "rainfall;wind" {
		t.Errorf("unexpected INSAT-3DR coverage: %v", records[1])
	}
	if records[2][0] != "Oceansat-3" || records[2][1] != "wind" {
		t.Errorf("unexpected Oceansat-3 coverage: %v", records[2])
	}
}

func TestReportJSONFormat(t *testing.T) {
	gen := NewInventoryReport(testRunner(t))

	out, err := gen.Generate(context.Background(), ReportParams{Format: ReportFormatJSON})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var payload struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	if err := json.NewDecoder(out).Decode(&payload); err != nil {
		t.Fatalf("decode json report: %v", err)
	}
	if len(payload.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(payload.Rows))
	}
}

func TestUnknownReportType(t *testing.T) {
	if _, err := NewReportGenerator("bogus", testRunner(t)); err == nil {
		t.Error("expected error for unknown report type")
	}
}
