// Package schema holds the catalog of valid node labels, edge types and
// per-label property keys used to validate query requests before any
// traversal happens.
package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
)

// LabelSpec describes one node label.
type LabelSpec struct {
	Properties []string `json:"properties"`
}

// EdgeSpec describes the endpoint labels of one edge type.
type EdgeSpec struct {
	From graph.Label `json:"from"`
	To   graph.Label `json:"to"`
}

// Catalog enumerates the valid labels, edge types and property keys.
// It is configuration: loaded from a JSON file at boot, with Default()
// as the compiled-in fallback matching the MOSDAC ontology.
type Catalog struct {
	Labels map[graph.Label]LabelSpec   `json:"labels"`
	Edges  map[graph.EdgeType]EdgeSpec `json:"edges"`
}

// Default returns the catalog for the MOSDAC ontology as populated from
// the metadata report.
func Default() *Catalog {
	return &Catalog{
		Labels: map[graph.Label]LabelSpec{
			graph.LabelSatellite: {Properties: []string{"id", "name", "status", "orbit_type"}},
			graph.LabelProduct: {Properties: []string{
				"id", "name", "display_name", "product_type", "section", "doc_section", "keywords",
			}},
			graph.LabelParameter: {Properties: []string{"id", "type", "category", "unit", "display_name"}},
			graph.LabelRegion:    {Properties: []string{"id", "name", "type"}},
		},
		Edges: map[graph.EdgeType]EdgeSpec{
			graph.EdgeProduces: {From: graph.LabelSatellite, To: graph.LabelProduct},
			graph.EdgeObserves: {From: graph.LabelProduct, To: graph.LabelParameter},
			graph.EdgeCovers:   {From: graph.LabelProduct, To: graph.LabelRegion},
		},
	}
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse schema catalog: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	return &catalog, nil
}

// Validate checks internal consistency: every edge endpoint must name a
// declared label.
func (c *Catalog) Validate() error {
	if len(c.Labels) == 0 {
		return fmt.Errorf("schema catalog declares no labels")
	}
	for typ, spec := range c.Edges {
		if _, ok := c.Labels[spec.From]; !ok {
			return fmt.Errorf("edge %s references undeclared label %s", typ, spec.From)
		}
		if _, ok := c.Labels[spec.To]; !ok {
			return fmt.Errorf("edge %s references undeclared label %s", typ, spec.To)
		}
	}
	return nil
}

// HasLabel reports whether the label is declared.
func (c *Catalog) HasLabel(label graph.Label) bool {
	_, ok := c.Labels[label]
	return ok
}

// HasEdgeType reports whether the edge type is declared.
func (c *Catalog) HasEdgeType(typ graph.EdgeType) bool {
	_, ok := c.Edges[typ]
	return ok
}

// HasProperty reports whether key is a declared property of label.
func (c *Catalog) HasProperty(label graph.Label, key string) bool {
	spec, ok := c.Labels[label]
	if !ok {
		return false
	}
	for _, p := range spec.Properties {
		if p == key {
			return true
		}
	}
	return false
}

// EdgeEndpoints returns the declared (from, to) labels for an edge type.
func (c *Catalog) EdgeEndpoints(typ graph.EdgeType) (from, to graph.Label, ok bool) {
	spec, found := c.Edges[typ]
	if !found {
		return "", "", false
	}
	return spec.From, spec.To, true
}
