package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
	"github.com/gowri-arun/astraq-kg/pkg/store"
)

// Populate writes the parsed report into the graph store: parameters,
// regions and satellites first, then products with their PRODUCES,
// OBSERVES and COVERS edges. Runs are idempotent thanks to the store's
// merge semantics.
func Populate(ctx context.Context, s *store.Store, report *Report) error {
	for _, key := range sortedKeys(report.Parameters) {
		p := report.Parameters[key]
		props := map[string]string{
			"id":           p.ID,
			"type":         p.Type,
			"display_name": p.DisplayName,
		}
		if p.Category != "" {
			props["category"] = p.Category
		}
		if p.Unit != "" {
			props["unit"] = p.Unit
		}
		if err := s.UpsertNode(ctx, graph.LabelParameter, p.ID, props); err != nil {
			return fmt.Errorf("populate parameter %s: %w", p.ID, err)
		}
	}

	for _, key := range sortedKeys(report.Regions) {
		r := report.Regions[key]
		props := map[string]string{"id": r.ID, "name": r.Name, "type": r.Type}
		if err := s.UpsertNode(ctx, graph.LabelRegion, r.ID, props); err != nil {
			return fmt.Errorf("populate region %s: %w", r.ID, err)
		}
	}

	for _, key := range sortedKeys(report.Satellites) {
		sat := report.Satellites[key]
		props := map[string]string{"id": sat.ID, "name": sat.Name}
		if err := s.UpsertNode(ctx, graph.LabelSatellite, sat.ID, props); err != nil {
			return fmt.Errorf("populate satellite %s: %w", sat.ID, err)
		}
	}

	for _, product := range report.Products {
		props := map[string]string{
			"id":           product.ID,
			"name":         product.Name,
			"display_name": product.DisplayName,
		}
		if product.ProductType != "" {
			props["product_type"] = product.ProductType
		}
		if product.Section != "" {
			props["section"] = product.Section
		}
		if product.DocSection != "" {
			props["doc_section"] = product.DocSection
		}
		if len(product.Keywords) > 0 {
			props["keywords"] = strings.Join(product.Keywords, ",")
		}
		if err := s.UpsertNode(ctx, graph.LabelProduct, product.ID, props); err != nil {
			return fmt.Errorf("populate product %s: %w", product.ID, err)
		}

		productRef := graph.NodeRef{Label: graph.LabelProduct, ID: product.ID}

		if sat, ok := report.Satellites[product.Satellite]; ok {
			satRef := graph.NodeRef{Label: graph.LabelSatellite, ID: sat.ID}
			if err := s.InsertEdge(ctx, satRef, productRef, graph.EdgeProduces); err != nil {
				return fmt.Errorf("link %s -PRODUCES-> %s: %w", sat.ID, product.ID, err)
			}
		}

		if product.Parameter != "" {
			spec := normalizeParam(product.Parameter)
			if param, ok := report.Parameters[spec.norm]; ok {
				paramRef := graph.NodeRef{Label: graph.LabelParameter, ID: param.ID}
				if err := s.InsertEdge(ctx, productRef, paramRef, graph.EdgeObserves); err != nil {
					return fmt.Errorf("link %s -OBSERVES-> %s: %w", product.ID, param.ID, err)
				}
			}
		}

		if region, ok := report.Regions[product.Region]; ok {
			regionRef := graph.NodeRef{Label: graph.LabelRegion, ID: region.ID}
			if err := s.InsertEdge(ctx, productRef, regionRef, graph.EdgeCovers); err != nil {
				return fmt.Errorf("link %s -COVERS-> %s: %w", product.ID, region.ID, err)
			}
		}
	}

	return nil
}

// sortedKeys keeps population order deterministic across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
