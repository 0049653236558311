// Package ingest parses the MOSDAC metadata report and populates the
// graph store from it.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Satellite is a satellite entity extracted from the report.
type Satellite struct {
	ID   string
	Name string
}

// Parameter is a normalized observed parameter.
type Parameter struct {
	ID          string
	Type        string
	Category    string
	Unit        string
	DisplayName string
}

// Region is a coverage region.
type Region struct {
	ID   string
	Name string
	Type string
}

// Product is one catalogued product or documentation page.
type Product struct {
	ID          string
	Name        string
	DisplayName string
	Satellite   string
	Parameter   string
	Region      string
	ProductType string
	Section     string
	DocSection  string
	Keywords    []string
}

// Report is the parsed content of a metadata report file.
type Report struct {
	Satellites map[string]Satellite // keyed by satellite name
	Parameters map[string]Parameter // keyed by normalized type
	Regions    map[string]Region    // keyed by region name
	Products   []Product
}

// paramSpec normalizes a raw parameter string from the report.
type paramSpec struct {
	norm        string
	category    string
	unit        string
	displayName string
}

// paramMap maps raw parameter strings to normalized parameters.
var paramMap = map[string]paramSpec{
	"Rainfall":      {norm: "rainfall", category: "atmosphere", unit: "mm/hr", displayName: "Rainfall"},
	"Ocean":         {norm: "ocean_variable", category: "ocean", displayName: "Ocean parameters"},
	"Water":         {norm: "water_variable", category: "hydrology", displayName: "Water-related parameters"},
	"Cloud":         {norm: "cloud", category: "atmosphere", displayName: "Cloud-related parameters"},
	"Soil Moisture": {norm: "soil_moisture", category: "land", displayName: "Soil moisture"},
}

func normalizeParam(raw string) paramSpec {
	if spec, ok := paramMap[raw]; ok {
		return spec
	}
	return paramSpec{
		norm:        strings.ReplaceAll(strings.ToLower(raw), " ", "_"),
		displayName: raw,
	}
}

// sectionFor maps a report header line to its section bucket.
func sectionFor(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "=== DATA PRODUCTS"):
		return "data", true
	case strings.HasPrefix(line, "=== SATELLITE / PRODUCT DOC PAGES"):
		return "doc_pages", true
	case strings.HasPrefix(line, "=== GENERIC SITE PAGES"):
		return "site_pages", true
	case strings.HasPrefix(line, "=== OTHERS / UNCLASSIFIED"):
		return "other", true
	}
	return "", false
}

// ParseReport reads a metadata report. Lines of interest look like
//
//	<filename>.json: FOUND -> {'satellite': 'Oceansat-3', ...}
//
// grouped under "=== SECTION ===" headers. Malformed metadata literals
// are skipped, matching the tolerant behavior of the original pipeline.
func ParseReport(r io.Reader) (*Report, error) {
	report := &Report{
		Satellites: make(map[string]Satellite),
		Parameters: make(map[string]Parameter),
		Regions:    make(map[string]Region),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	currentSection := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if section, ok := sectionFor(line); ok {
			currentSection = section
			continue
		}

		left, right, found := strings.Cut(line, "FOUND ->")
		if !found {
			continue
		}

		productID := strings.TrimSpace(strings.SplitN(left, ".json", 2)[0]) + ".json"

		meta, err := parseMetaLiteral(right)
		if err != nil {
			continue
		}

		product := Product{
			ID:          productID,
			Name:        productID,
			DisplayName: productDisplayName(productID),
			Satellite:   meta.str("satellite"),
			Parameter:   meta.str("parameter"),
			Region:      meta.str("region"),
			ProductType: meta.str("product_type"),
			Section:     currentSection,
			DocSection:  meta.str("doc_section"),
			Keywords:    meta.list("keywords"),
		}
		report.Products = append(report.Products, product)

		if product.Satellite != "" {
			if _, exists := report.Satellites[product.Satellite]; !exists {
				report.Satellites[product.Satellite] = Satellite{
					ID:   slug(product.Satellite),
					Name: product.Satellite,
				}
			}
		}

		if product.Parameter != "" {
			spec := normalizeParam(product.Parameter)
			if _, exists := report.Parameters[spec.norm]; !exists {
				report.Parameters[spec.norm] = Parameter{
					ID:          strings.ReplaceAll(spec.norm, "_", "-"),
					Type:        spec.norm,
					Category:    spec.category,
					Unit:        spec.unit,
					DisplayName: spec.displayName,
				}
			}
		}

		if product.Region != "" {
			if _, exists := report.Regions[product.Region]; !exists {
				report.Regions[product.Region] = Region{
					ID:   slug(product.Region),
					Name: product.Region,
					Type: "country",
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read metadata report: %w", err)
	}
	return report, nil
}

// productDisplayName turns a long JSON filename into a short readable
// name: strip the site suffix, keep the first three underscore segments.
func productDisplayName(productID string) string {
	base := strings.TrimSuffix(productID, ".json")
	base = strings.ReplaceAll(base,
		"_Meteorological_and_Oceanographic_Satellite_Data_Archival_Centre", "")
	parts := strings.Split(base, "_")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, " ")
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
