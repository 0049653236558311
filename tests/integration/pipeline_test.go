package integration

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gowri-arun/astraq-kg/pkg/ingest"
	"github.com/gowri-arun/astraq-kg/pkg/query"
	"github.com/gowri-arun/astraq-kg/pkg/schema"
	"github.com/gowri-arun/astraq-kg/pkg/store"
)

// Exercises the full pipeline: parse a crawler metadata report, persist
// it, reload the graph from SQLite and answer canned queries over it.

const metadataReport = `=== DATA PRODUCTS (3) ===
3DIMG_L2B_HEM_Meteorological_and_Oceanographic_Satellite_Data_Archival_Centre.json: FOUND -> {'satellite': 'INSAT-3DR', 'parameter': 'Rainfall', 'region': 'India', 'product_type': 'data', 'keywords': ['rainfall', 'hydrology']}
O3_OCM_Chlorophyll_Meteorological_and_Oceanographic_Satellite_Data_Archival_Centre.json: FOUND -> {'satellite': 'Oceansat-3', 'parameter': 'Ocean', 'product_type': 'data'}
O3_SST_Regional.json: FOUND -> {'satellite': 'Oceansat-3', 'parameter': 'Ocean', 'region': 'India', 'product_type': 'data'}

=== SATELLITE / PRODUCT DOC PAGES (1) ===
INSAT-3DR_Introduction_Page.json: FOUND -> {'satellite': 'INSAT-3DR', 'doc_section': 'introduction'}
`

func buildExecutor(t *testing.T) (*query.Executor, *store.Store) {
	t.Helper()

	report, err := ingest.ParseReport(strings.NewReader(metadataReport))
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}

	st, err := store.NewStore(filepath.Join(t.TempDir(), "astrakg.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	// Populate twice: the pipeline must be idempotent.
	for i := 0; i < 2; i++ {
		if err := ingest.Populate(ctx, st, report); err != nil {
			t.Fatalf("Populate (run %d): %v", i+1, err)
		}
	}

	g, err := st.LoadGraph(ctx)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	return query.NewExecutor(g, schema.Default()), st
}

func runNamed(t *testing.T, exec *query.Executor, name string, params map[string]string) []query.Row {
	t.Helper()

	q, ok := query.Named(name)
	if !ok {
		t.Fatalf("unknown canned query %q", name)
	}
	req, err := q.Request(params)
	if err != nil {
		t.Fatalf("build request for %q: %v", name, err)
	}
	rows, err := exec.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("execute %q: %v", name, err)
	}
	return rows
}

func TestPipeline_StoreCounts(t *testing.T) {
	_, st := buildExecutor(t)

	stats, err := st.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if stats.NodeCounts["Satellite"] != 2 {
		t.Errorf("expected 2 satellites, got %d", stats.NodeCounts["Satellite"])
	}
	if stats.NodeCounts["Product"] != 4 {
		t.Errorf("expected 4 products, got %d", stats.NodeCounts["Product"])
	}
	if stats.NodeCounts["Parameter"] != 2 {
		t.Errorf("expected 2 parameters, got %d", stats.NodeCounts["Parameter"])
	}
	if stats.NodeCounts["Region"] != 1 {
		t.Errorf("expected 1 region, got %d", stats.NodeCounts["Region"])
	}
	if stats.EdgeCounts["PRODUCES"] != 4 {
		t.Errorf("expected 4 PRODUCES edges, got %d", stats.EdgeCounts["PRODUCES"])
	}
	if stats.EdgeCounts["OBSERVES"] != 3 {
		t.Errorf("expected 3 OBSERVES edges, got %d", stats.EdgeCounts["OBSERVES"])
	}
	if stats.EdgeCounts["COVERS"] != 2 {
		t.Errorf("expected 2 COVERS edges, got %d", stats.EdgeCounts["COVERS"])
	}
}

func TestPipeline_ParametersObservedBySatellite(t *testing.T) {
	exec, _ := buildExecutor(t)

	rows := runNamed(t, exec, "parameters_observed_by_satellite", map[string]string{
		"satellite": "INSAT-3DR",
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d: %v", len(rows), rows)
	}
	if rows[0]["par.type"] != "rainfall" {
		t.Errorf("expected rainfall, got %v", rows[0]["par.type"])
	}
}

func TestPipeline_SatellitesCoveringRegion(t *testing.T) {
	exec, _ := buildExecutor(t)

	rows := runNamed(t, exec, "satellites_covering_region", map[string]string{
		"region": "India",
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(rows), rows)
	}
	if rows[0]["s.name"] != "INSAT-3DR" || rows[1]["s.name"] != "Oceansat-3" {
		t.Errorf("unexpected satellites: %v", rows)
	}
}

func TestPipeline_ProductsPerSatellite(t *testing.T) {
	exec, _ := buildExecutor(t)

	rows := runNamed(t, exec, "products_per_satellite", nil)
	if len(rows) != 2 {
		t.Fatalf("expected 2 groups, got %d: %v", len(rows), rows)
	}

	oceansat := rows[1]
	if oceansat["s.name"] != "Oceansat-3" {
		t.Fatalf("unexpected group order: %v", rows)
	}
	ids, ok := oceansat["p.id"].([]string)
	if !ok {
		t.Fatalf("expected collected ids, got %T", oceansat["p.id"])
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 Oceansat-3 products, got %v", ids)
	}
}

func TestPipeline_DocPages(t *testing.T) {
	exec, _ := buildExecutor(t)

	rows := runNamed(t, exec, "doc_pages_for_satellite", map[string]string{
		"satellite": "INSAT-3DR",
		"section":   "introduction",
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 doc page, got %d: %v", len(rows), rows)
	}
	if rows[0]["p.display_name"] != "INSAT-3DR Introduction Page" {
		t.Errorf("unexpected display name %v", rows[0]["p.display_name"])
	}
}
