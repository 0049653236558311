package reports

import (
	"context"
	"io"

	"github.com/gowri-arun/astraq-kg/pkg/query"
)

type ReportType string

const (
	ReportTypeInventory ReportType = "inventory"
	ReportTypeCoverage  ReportType = "coverage"
)

type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatJSON ReportFormat = "json"
)

type ReportParams struct {
	Format ReportFormat
	// Satellite narrows the report to one satellite by name. Empty
	// means all satellites.
	Satellite string
}

// QueryRunner defines the data access required by reports.
type QueryRunner interface {
	Execute(ctx context.Context, req query.Request) ([]query.Row, error)
}

type Generator interface {
	Generate(ctx context.Context, params ReportParams) (io.Reader, error)
}
