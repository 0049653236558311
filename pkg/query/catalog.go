package query

import (
	"fmt"
	"sort"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
)

// NamedQuery is a canned request template addressable by name from the
// CLI and the MCP server. Params lists the placeholders the caller must
// supply.
type NamedQuery struct {
	Name        string
	Description string
	Params      []string
	build       func(params map[string]string) Request
}

// Request builds the structured request, failing if a required parameter
// is missing or empty.
func (q NamedQuery) Request(params map[string]string) (Request, error) {
	for _, p := range q.Params {
		if params[p] == "" {
			return Request{}, fmt.Errorf("query %q requires parameter %q", q.Name, p)
		}
	}
	return q.build(params), nil
}

// Named returns the canned query registered under name.
func Named(name string) (NamedQuery, bool) {
	q, ok := catalog[name]
	return q, ok
}

// Names returns all canned query names, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog returns every canned query, sorted by name.
func Catalog() []NamedQuery {
	queries := make([]NamedQuery, 0, len(catalog))
	for _, name := range Names() {
		queries = append(queries, catalog[name])
	}
	return queries
}

var catalog = map[string]NamedQuery{
	"list_satellites": {
		Name:        "list_satellites",
		Description: "All satellites with their status and orbit type, ordered by name",
		build: func(map[string]string) Request {
			return Request{
				AnchorLabel: graph.LabelSatellite,
				AnchorAlias: "s",
				Projection:  []string{"s.id", "s.name", "s.status", "s.orbit_type"},
				OrderBy:     []Order{{Column: "s.name"}},
			}
		},
	},

	"parameters_observed_by_satellite": {
		Name:        "parameters_observed_by_satellite",
		Description: "Parameters observed by a satellite's products",
		Params:      []string{"satellite"},
		build: func(params map[string]string) Request {
			return Request{
				AnchorLabel:  graph.LabelSatellite,
				AnchorAlias:  "s",
				AnchorFilter: &Filter{Property: "name", Value: params["satellite"]},
				Steps: []Step{
					{EdgeType: graph.EdgeProduces, TargetLabel: graph.LabelProduct, Alias: "p"},
					{EdgeType: graph.EdgeObserves, TargetLabel: graph.LabelParameter, Alias: "par"},
				},
				Projection: []string{"par.type", "par.display_name"},
				Distinct:   true,
				OrderBy:    []Order{{Column: "par.type"}},
			}
		},
	},

	"satellites_observing_parameter": {
		Name:        "satellites_observing_parameter",
		Description: "Satellites whose products observe a parameter type",
		Params:      []string{"parameter"},
		build: func(params map[string]string) Request {
			return Request{
				AnchorLabel:  graph.LabelParameter,
				AnchorAlias:  "par",
				AnchorFilter: &Filter{Property: "type", Value: params["parameter"]},
				Steps: []Step{
					{EdgeType: graph.EdgeObserves, Direction: graph.DirectionIn, TargetLabel: graph.LabelProduct, Alias: "p"},
					{EdgeType: graph.EdgeProduces, Direction: graph.DirectionIn, TargetLabel: graph.LabelSatellite, Alias: "s"},
				},
				Projection: []string{"s.name", "s.id"},
				Distinct:   true,
				OrderBy:    []Order{{Column: "s.name"}},
			}
		},
	},

	"products_per_satellite": {
		Name:        "products_per_satellite",
		Description: "Product ids collected per satellite",
		build: func(map[string]string) Request {
			return Request{
				AnchorLabel: graph.LabelSatellite,
				AnchorAlias: "s",
				Steps: []Step{
					{EdgeType: graph.EdgeProduces, TargetLabel: graph.LabelProduct, Alias: "p"},
				},
				Projection: []string{"s.name", "p.id"},
				Aggregate:  &Aggregate{Column: "p.id"},
				OrderBy:    []Order{{Column: "s.name"}},
			}
		},
	},

	"satellites_covering_region": {
		Name:        "satellites_covering_region",
		Description: "Satellites whose products cover a region",
		Params:      []string{"region"},
		build: func(params map[string]string) Request {
			return Request{
				AnchorLabel:  graph.LabelRegion,
				AnchorAlias:  "r",
				AnchorFilter: &Filter{Property: "name", Value: params["region"]},
				Steps: []Step{
					{EdgeType: graph.EdgeCovers, Direction: graph.DirectionIn, TargetLabel: graph.LabelProduct, Alias: "p"},
					{EdgeType: graph.EdgeProduces, Direction: graph.DirectionIn, TargetLabel: graph.LabelSatellite, Alias: "s"},
				},
				Projection: []string{"s.name"},
				Distinct:   true,
				OrderBy:    []Order{{Column: "s.name"}},
			}
		},
	},

	"regions_covered_by_satellite": {
		Name:        "regions_covered_by_satellite",
		Description: "Regions covered by a satellite's products",
		Params:      []string{"satellite"},
		build: func(params map[string]string) Request {
			return Request{
				AnchorLabel:  graph.LabelSatellite,
				AnchorAlias:  "s",
				AnchorFilter: &Filter{Property: "name", Value: params["satellite"]},
				Steps: []Step{
					{EdgeType: graph.EdgeProduces, TargetLabel: graph.LabelProduct, Alias: "p"},
					{EdgeType: graph.EdgeCovers, TargetLabel: graph.LabelRegion, Alias: "r"},
				},
				Projection: []string{"r.name"},
				Distinct:   true,
				OrderBy:    []Order{{Column: "r.name"}},
			}
		},
	},

	"products_by_category": {
		Name:        "products_by_category",
		Description: "Products observing parameters of a category (e.g. ocean)",
		Params:      []string{"category"},
		build: func(params map[string]string) Request {
			return Request{
				AnchorLabel:  graph.LabelParameter,
				AnchorAlias:  "par",
				AnchorFilter: &Filter{Property: "category", Value: params["category"]},
				Steps: []Step{
					{EdgeType: graph.EdgeObserves, Direction: graph.DirectionIn, TargetLabel: graph.LabelProduct, Alias: "p"},
				},
				Projection: []string{"p.display_name", "p.product_type"},
				Distinct:   true,
				OrderBy:    []Order{{Column: "p.display_name"}},
			}
		},
	},

	"doc_pages_for_satellite": {
		Name:        "doc_pages_for_satellite",
		Description: "Documentation pages for a satellite, optionally a single doc section",
		Params:      []string{"satellite", "section"},
		build: func(params map[string]string) Request {
			return Request{
				AnchorLabel:  graph.LabelSatellite,
				AnchorAlias:  "s",
				AnchorFilter: &Filter{Property: "name", Value: params["satellite"]},
				Steps: []Step{
					{
						EdgeType:    graph.EdgeProduces,
						TargetLabel: graph.LabelProduct,
						Alias:       "p",
						Filter:      &Filter{Property: "doc_section", Value: params["section"]},
					},
				},
				Projection: []string{"p.display_name", "p.doc_section"},
				OrderBy:    []Order{{Column: "p.display_name"}},
			}
		},
	},

	"common_parameters": {
		Name:        "common_parameters",
		Description: "Parameter types observed by products of both satellites",
		Params:      []string{"satellite1", "satellite2"},
		build: func(params map[string]string) Request {
			return Request{
				AnchorLabel:  graph.LabelSatellite,
				AnchorAlias:  "s1",
				AnchorFilter: &Filter{Property: "name", Value: params["satellite1"]},
				Steps: []Step{
					{EdgeType: graph.EdgeProduces, TargetLabel: graph.LabelProduct, Alias: "p1"},
					{EdgeType: graph.EdgeObserves, TargetLabel: graph.LabelParameter, Alias: "par"},
					{EdgeType: graph.EdgeObserves, Direction: graph.DirectionIn, TargetLabel: graph.LabelProduct, Alias: "p2"},
					{
						EdgeType:    graph.EdgeProduces,
						Direction:   graph.DirectionIn,
						TargetLabel: graph.LabelSatellite,
						Alias:       "s2",
						Filter:      &Filter{Property: "name", Value: params["satellite2"]},
					},
				},
				Projection: []string{"par.type"},
				Distinct:   true,
				OrderBy:    []Order{{Column: "par.type"}},
			}
		},
	},
}
