package reports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gowri-arun/astraq-kg/pkg/query"
)

// render serializes query results in the requested format. CSV is the
// default; aggregate cells (lists) are joined with ";".
func render(format ReportFormat, columns []string, rows []query.Row) (io.Reader, error) {
	if format == ReportFormatJSON {
		buf := &bytes.Buffer{}
		payload := struct {
			Columns []string    `json:"columns"`
			Rows    []query.Row `json:"rows"`
		}{Columns: columns, Rows: rows}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
		return buf, nil
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	if err := writer.Write(columns); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = cellString(row[col])
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf, nil
}

func cellString(v query.Value) string {
	switch cell := v.(type) {
	case nil:
		return ""
	case string:
		return cell
	case []string:
		return strings.Join(cell, ";")
	default:
		return fmt.Sprint(cell)
	}
}
