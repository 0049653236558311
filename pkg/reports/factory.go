package reports

import (
	"fmt"
)

// NewReportGenerator creates a report generator based on the report type.
func NewReportGenerator(reportType ReportType, runner QueryRunner) (Generator, error) {
	switch reportType {
	case ReportTypeInventory:
		return NewInventoryReport(runner), nil
	case ReportTypeCoverage:
		return NewCoverageReport(runner), nil
	default:
		return nil, fmt.Errorf("unknown report type: %s", reportType)
	}
}
