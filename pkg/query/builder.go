package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
	"github.com/gowri-arun/astraq-kg/pkg/schema"
)

// Executor validates requests against the schema catalog, compiles them
// into plans and runs them against the graph. It is safe for concurrent
// use; execution never mutates the graph.
type Executor struct {
	graph   *graph.Graph
	catalog *schema.Catalog
}

// NewExecutor creates an executor over the given graph and catalog.
func NewExecutor(g *graph.Graph, catalog *schema.Catalog) *Executor {
	return &Executor{graph: g, catalog: catalog}
}

// Execute compiles and runs a request. An empty match yields an empty
// (non-nil) row slice, never an error. Executing the same request twice
// against an unchanged graph yields identical ordered output.
func (e *Executor) Execute(ctx context.Context, req Request) ([]Row, error) {
	start := time.Now()

	p, err := e.compile(req)
	if err != nil {
		QueryTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	rows, err := e.run(ctx, p)
	if err != nil {
		QueryTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	QueryTotal.WithLabelValues("ok").Inc()
	QueryDuration.Observe(time.Since(start).Seconds())
	return rows, nil
}

// compile validates every identifier in the request against the catalog
// and lowers it into the operator list consumed by the matcher. It fails
// fast naming the offending identifier rather than letting the matcher
// fail deep in traversal.
func (e *Executor) compile(req Request) (*plan, error) {
	if !e.catalog.HasLabel(req.AnchorLabel) {
		return nil, &SchemaValidationError{Identifier: string(req.AnchorLabel), Detail: "unknown anchor label"}
	}
	if req.AnchorAlias == "" {
		return nil, &SchemaValidationError{Identifier: "anchor_alias", Detail: "anchor alias is required"}
	}

	p := &plan{labels: []graph.Label{req.AnchorLabel}}
	aliasPos := map[string]int{req.AnchorAlias: 0}

	p.ops = append(p.ops, planOp{kind: opAnchor, anchorLabel: req.AnchorLabel})

	if req.AnchorFilter != nil {
		op, err := e.filterOp(0, req.AnchorLabel, *req.AnchorFilter)
		if err != nil {
			return nil, err
		}
		p.ops = append(p.ops, op)
	}

	for i, step := range req.Steps {
		dir := step.Direction
		if dir == "" {
			dir = graph.DirectionOut
		}
		if dir != graph.DirectionOut && dir != graph.DirectionIn {
			return nil, &SchemaValidationError{Identifier: string(step.Direction), Detail: "direction must be \"out\" or \"in\""}
		}
		if !e.catalog.HasEdgeType(step.EdgeType) {
			return nil, &SchemaValidationError{Identifier: string(step.EdgeType), Detail: "unknown edge type"}
		}
		if !e.catalog.HasLabel(step.TargetLabel) {
			return nil, &SchemaValidationError{Identifier: string(step.TargetLabel), Detail: "unknown target label"}
		}

		source := p.labels[len(p.labels)-1]
		from, to, _ := e.catalog.EdgeEndpoints(step.EdgeType)
		if dir == graph.DirectionOut && (from != source || to != step.TargetLabel) {
			return nil, &SchemaValidationError{
				Identifier: string(step.EdgeType),
				Detail:     fmt.Sprintf("cannot traverse %s -> %s outward (step %d)", source, step.TargetLabel, i),
			}
		}
		if dir == graph.DirectionIn && (to != source || from != step.TargetLabel) {
			return nil, &SchemaValidationError{
				Identifier: string(step.EdgeType),
				Detail:     fmt.Sprintf("cannot traverse %s -> %s inward (step %d)", source, step.TargetLabel, i),
			}
		}

		if step.Alias == "" {
			return nil, &SchemaValidationError{Identifier: fmt.Sprintf("steps[%d].alias", i), Detail: "step alias is required"}
		}
		if _, taken := aliasPos[step.Alias]; taken {
			return nil, &SchemaValidationError{Identifier: step.Alias, Detail: "duplicate alias"}
		}

		pos := len(p.labels)
		aliasPos[step.Alias] = pos
		p.labels = append(p.labels, step.TargetLabel)
		p.ops = append(p.ops, planOp{kind: opExpand, edgeType: step.EdgeType, direction: dir})

		if step.Filter != nil {
			op, err := e.filterOp(pos, step.TargetLabel, *step.Filter)
			if err != nil {
				return nil, err
			}
			p.ops = append(p.ops, op)
		}
	}

	if len(req.Projection) == 0 {
		return nil, &SchemaValidationError{Identifier: "projection", Detail: "projection must not be empty"}
	}

	columns := make([]column, 0, len(req.Projection))
	seenCol := make(map[string]bool, len(req.Projection))
	for _, name := range req.Projection {
		col, err := e.resolveColumn(name, aliasPos, p.labels)
		if err != nil {
			return nil, err
		}
		if seenCol[name] {
			return nil, &SchemaValidationError{Identifier: name, Detail: "duplicate projection column"}
		}
		seenCol[name] = true
		columns = append(columns, col)
	}
	p.ops = append(p.ops, planOp{kind: opProject, columns: columns, distinct: req.Distinct})

	if req.Aggregate != nil {
		var aggCol column
		found := false
		groups := make([]column, 0, len(columns)-1)
		for _, col := range columns {
			if col.name == req.Aggregate.Column {
				aggCol = col
				found = true
				continue
			}
			groups = append(groups, col)
		}
		if !found {
			return nil, &SchemaValidationError{Identifier: req.Aggregate.Column, Detail: "aggregate column must be projected"}
		}
		p.ops = append(p.ops, planOp{
			kind:            opAggregate,
			aggColumn:       aggCol,
			groupColumns:    groups,
			collectDistinct: req.Aggregate.Distinct,
		})
	}

	if len(req.OrderBy) > 0 {
		keys := make([]sortKey, 0, len(req.OrderBy))
		for _, order := range req.OrderBy {
			if !seenCol[order.Column] {
				return nil, &SchemaValidationError{Identifier: order.Column, Detail: "order by column must be projected"}
			}
			if req.Aggregate != nil && order.Column == req.Aggregate.Column {
				return nil, &SchemaValidationError{Identifier: order.Column, Detail: "cannot order by an aggregated column"}
			}
			keys = append(keys, sortKey{name: order.Column, descending: order.Descending})
		}
		p.ops = append(p.ops, planOp{kind: opSort, sortKeys: keys})
	}

	return p, nil
}

// filterOp validates the filter property against the schema for the
// label bound at position. An undeclared key is an UnknownPropertyError.
func (e *Executor) filterOp(position int, label graph.Label, f Filter) (planOp, error) {
	if !e.catalog.HasProperty(label, f.Property) {
		return planOp{}, &UnknownPropertyError{Label: label, Property: f.Property}
	}
	return planOp{kind: opFilter, position: position, property: f.Property, value: f.Value}, nil
}

// resolveColumn parses an "alias.property" column name and binds it to a
// chain position.
func (e *Executor) resolveColumn(name string, aliasPos map[string]int, labels []graph.Label) (column, error) {
	alias, property, ok := strings.Cut(name, ".")
	if !ok || alias == "" || property == "" {
		return column{}, &SchemaValidationError{Identifier: name, Detail: "column must be written alias.property"}
	}
	pos, ok := aliasPos[alias]
	if !ok {
		return column{}, &SchemaValidationError{Identifier: alias, Detail: "unknown alias"}
	}
	if !e.catalog.HasProperty(labels[pos], property) {
		return column{}, &SchemaValidationError{
			Identifier: name,
			Detail:     fmt.Sprintf("property %q is not defined for label %s", property, labels[pos]),
		}
	}
	return column{position: pos, property: property, name: name}, nil
}
