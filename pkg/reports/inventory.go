package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
	"github.com/gowri-arun/astraq-kg/pkg/query"
)

// InventoryReport lists every product in the archive with its producing
// satellite and catalog section.
type InventoryReport struct {
	runner QueryRunner
}

// NewInventoryReport creates a new InventoryReport generator.
func NewInventoryReport(r QueryRunner) *InventoryReport {
	return &InventoryReport{runner: r}
}

// Generate builds the inventory rows, optionally narrowed to one
// satellite by name.
func (g *InventoryReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	req := query.Request{
		AnchorLabel: graph.LabelSatellite,
		AnchorAlias: "s",
		Steps: []query.Step{
			{EdgeType: graph.EdgeProduces, TargetLabel: graph.LabelProduct, Alias: "p"},
		},
		Projection: []string{"s.name", "p.id", "p.name", "p.section"},
		OrderBy: []query.Order{
			{Column: "s.name"},
			{Column: "p.id"},
		},
	}
	if params.Satellite != "" {
		req.AnchorFilter = &query.Filter{Property: "name", Value: params.Satellite}
	}

	rows, err := g.runner.Execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("inventory query failed: %w", err)
	}
	return render(params.Format, req.Projection, rows)
}
