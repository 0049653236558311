// Package query compiles structured graph-query requests into plans and
// executes them against the in-memory knowledge graph.
package query

import (
	"github.com/gowri-arun/astraq-kg/pkg/graph"
)

// Filter restricts candidate nodes to those whose property equals the
// literal value. Matching is case-sensitive and exact.
type Filter struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// Step is one traversal hop in a pattern chain: follow edges of EdgeType
// in Direction to nodes of TargetLabel, bound under Alias.
type Step struct {
	EdgeType    graph.EdgeType  `json:"edge_type"`
	Direction   graph.Direction `json:"direction,omitempty"` // defaults to "out"
	TargetLabel graph.Label     `json:"target_label"`
	Alias       string          `json:"alias"`
	Filter      *Filter         `json:"filter,omitempty"`
}

// Aggregate gathers the named column's values per group of the remaining
// projected columns, preserving first-seen order.
type Aggregate struct {
	Column   string `json:"column"`
	Distinct bool   `json:"distinct,omitempty"`
}

// Order names a column to sort result rows by. Sorting is lexicographic
// and stable; Descending is carried for extensibility.
type Order struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending,omitempty"`
}

// Request is the structured query boundary of the core: a pattern chain
// anchored at AnchorLabel, plus projection, dedup, aggregation and
// ordering directives. Columns are written "alias.property".
type Request struct {
	AnchorLabel  graph.Label `json:"anchor_label"`
	AnchorAlias  string      `json:"anchor_alias"`
	AnchorFilter *Filter     `json:"anchor_filter,omitempty"`
	Steps        []Step      `json:"steps,omitempty"`
	Projection   []string    `json:"projection"`
	Distinct     bool        `json:"distinct,omitempty"`
	Aggregate    *Aggregate  `json:"aggregate,omitempty"`
	OrderBy      []Order     `json:"order_by,omitempty"`
}

// Value is a projected cell: a string for plain columns, an ordered
// []string for aggregated columns.
type Value any

// Row maps projected column names to values.
type Row map[string]Value
