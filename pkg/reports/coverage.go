package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
	"github.com/gowri-arun/astraq-kg/pkg/query"
)

// CoverageReport summarizes which geophysical parameters each satellite
// observes, with the parameters of a satellite collected into one cell.
type CoverageReport struct {
	runner QueryRunner
}

// NewCoverageReport creates a new CoverageReport generator.
func NewCoverageReport(r QueryRunner) *CoverageReport {
	return &CoverageReport{runner: r}
}

func (g *CoverageReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	req := query.Request{
		AnchorLabel: graph.LabelSatellite,
		AnchorAlias: "s",
		Steps: []query.Step{
			{EdgeType: graph.EdgeProduces, TargetLabel: graph.LabelProduct, Alias: "p"},
			{EdgeType: graph.EdgeObserves, TargetLabel: graph.LabelParameter, Alias: "par"},
		},
		Projection: []string{"s.name", "par.type"},
		Aggregate:  &query.Aggregate{Column: "par.type", Distinct: true},
		OrderBy: []query.Order{
			{Column: "s.name"},
		},
	}
	if params.Satellite != "" {
		req.AnchorFilter = &query.Filter{Property: "name", Value: params.Satellite}
	}

	rows, err := g.runner.Execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("coverage query failed: %w", err)
	}
	return render(params.Format, req.Projection, rows)
}
