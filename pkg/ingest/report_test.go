package ingest

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
	"github.com/gowri-arun/astraq-kg/pkg/store"
)

const sampleReport = `
=== DATA PRODUCTS ===
Rain_L3_Grid_v2.json: FOUND -> {'satellite': 'INSAT-3DR', 'parameter': 'Rainfall', 'region': 'India', 'product_type': 'data', 'doc_section': None, 'keywords': ['rain', 'grid']}

=== SATELLITE / PRODUCT DOC PAGES ===
Oceansat-3_Introduction_Meteorological_and_Oceanographic_Satellite_Data_Archival_Centre.json: FOUND -> {'satellite': 'Oceansat-3', 'parameter': 'Ocean', 'region': None, 'product_type': 'doc', 'doc_section': 'Introduction', 'keywords': []}
Oceansat-3_Payloads_Meteorological_and_Oceanographic_Satellite_Data_Archival_Centre.json: FOUND -> {'satellite': 'Oceansat-3', 'parameter': None, 'region': None, 'product_type': 'doc', 'doc_section': 'Payloads', 'keywords': ['ocm', 'scat']}

=== GENERIC SITE PAGES ===
Data_Access_Policy.json: FOUND -> {'satellite': None, 'parameter': None, 'region': None, 'product_type': 'site_doc', 'doc_section': None, 'keywords': ['policy']}

some unrelated line without the marker
Broken_Entry.json: FOUND -> {not a dict
`

func TestParseReport(t *testing.T) {
	report, err := ParseReport(strings.NewReader(sampleReport))
	if err != nil {
		t.Fatalf("ParseReport failed: %v", err)
	}

	// Broken metadata is skipped, not fatal.
	if len(report.Products) != 4 {
		t.Fatalf("expected 4 products, got %d", len(report.Products))
	}

	if _, ok := report.Satellites["INSAT-3DR"]; !ok {
		t.Error("INSAT-3DR not extracted")
	}
	if sat := report.Satellites["Oceansat-3"]; sat.ID != "oceansat-3" {
		t.Errorf("satellite id not slugged: %q", sat.ID)
	}

	rain, ok := report.Parameters["rainfall"]
	if !ok {
		t.Fatal("rainfall parameter not normalized")
	}
	if rain.Category != "atmosphere" || rain.Unit != "mm/hr" {
		t.Errorf("rainfall normalization wrong: %+v", rain)
	}
	if ocean := report.Parameters["ocean_variable"]; ocean.Category != "ocean" {
		t.Errorf("ocean normalization wrong: %+v", ocean)
	}

	if region := report.Regions["India"]; region.ID != "india" || region.Type != "country" {
		t.Errorf("region extraction wrong: %+v", region)
	}

	intro := report.Products[1]
	if intro.DisplayName != "Oceansat-3 Introduction" {
		t.Errorf("display name cleanup wrong: %q", intro.DisplayName)
	}
	if intro.Section != "doc_pages" {
		t.Errorf("section bucket wrong: %q", intro.Section)
	}

	payloads := report.Products[2]
	if payloads.DocSection != "Payloads" {
		t.Errorf("doc_section wrong: %q", payloads.DocSection)
	}
	if !reflect.DeepEqual(payloads.Keywords, []string{"ocm", "scat"}) {
		t.Errorf("keywords wrong: %v", payloads.Keywords)
	}

	site := report.Products[3]
	if site.Section != "site_pages" || site.Satellite != "" {
		t.Errorf("site page parsed wrong: %+v", site)
	}
}

func TestParseMetaLiteral(t *testing.T) {
	meta, err := parseMetaLiteral(` {'a': 'x', 'b': None, 'c': ['one', 'two'], 'd': True, 'e': 42}`)
	if err != nil {
		t.Fatalf("parseMetaLiteral failed: %v", err)
	}
	if meta.str("a") != "x" {
		t.Errorf("string value wrong: %v", meta["a"])
	}
	if meta["b"] != nil {
		t.Errorf("None should map to nil, got %v", meta["b"])
	}
	if got := meta.list("c"); !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Errorf("list value wrong: %v", got)
	}
	if meta["d"] != true {
		t.Errorf("True should map to true, got %v", meta["d"])
	}

	if _, err := parseMetaLiteral("no braces here"); err == nil {
		t.Error("expected error for missing dict")
	}
}

func TestPopulate(t *testing.T) {
	report, err := ParseReport(strings.NewReader(sampleReport))
	if err != nil {
		t.Fatalf("ParseReport failed: %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "astrakg.db")
	s, err := store.NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := Populate(ctx, s, report); err != nil {
		t.Fatalf("Populate failed: %v", err)
	}
	// Idempotent: a second run must not fail or duplicate.
	if err := Populate(ctx, s, report); err != nil {
		t.Fatalf("second Populate failed: %v", err)
	}

	g, err := s.LoadGraph(ctx)
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}

	if got := g.NodeCount(graph.LabelSatellite); got != 2 {
		t.Errorf("satellite count = %d, want 2", got)
	}
	if got := g.NodeCount(graph.LabelProduct); got != 4 {
		t.Errorf("product count = %d, want 4", got)
	}
	if got := g.EdgeCount(graph.EdgeProduces); got != 3 {
		t.Errorf("PRODUCES count = %d, want 3", got)
	}
	if got := g.EdgeCount(graph.EdgeObserves); got != 2 {
		t.Errorf("OBSERVES count = %d, want 2", got)
	}
	if got := g.EdgeCount(graph.EdgeCovers); got != 1 {
		t.Errorf("COVERS count = %d, want 1", got)
	}

	refs := g.Neighbors(
		graph.NodeRef{Label: graph.LabelSatellite, ID: "insat-3dr"},
		graph.EdgeProduces, graph.DirectionOut)
	if len(refs) != 1 || refs[0].ID != "Rain_L3_Grid_v2.json" {
		t.Errorf("INSAT-3DR products wrong: %v", refs)
	}
}
