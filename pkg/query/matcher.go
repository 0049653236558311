package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
)

// groupSep joins tuple cells into map keys. Unit separator keeps joined
// keys unambiguous for any printable property value.
const groupSep = "\x1f"

// run executes a compiled plan. Bindings are tuples of node refs, one
// per pattern-chain position; expansion follows inner-join semantics, so
// a binding that finds no matching neighbor is dropped.
func (e *Executor) run(ctx context.Context, p *plan) ([]Row, error) {
	var bindings [][]graph.NodeRef
	var projected *resultTable

	for _, op := range p.ops {
		// Deadline check between steps bounds runaway traversals.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("query aborted: %w", err)
		}

		switch op.kind {
		case opAnchor:
			for _, ref := range e.graph.NodesByLabel(op.anchorLabel) {
				bindings = append(bindings, []graph.NodeRef{ref})
			}

		case opFilter:
			kept := bindings[:0]
			for _, binding := range bindings {
				if e.nodeMatches(binding[op.position], op.property, op.value) {
					kept = append(kept, binding)
				}
			}
			bindings = kept

		case opExpand:
			var next [][]graph.NodeRef
			for _, binding := range bindings {
				last := binding[len(binding)-1]
				for _, neighbor := range e.graph.Neighbors(last, op.edgeType, op.direction) {
					grown := make([]graph.NodeRef, len(binding)+1)
					copy(grown, binding)
					grown[len(binding)] = neighbor
					next = append(next, grown)
				}
			}
			BindingsExpanded.Add(float64(len(next)))
			bindings = next

		case opProject:
			projected = e.project(bindings, op.columns, op.distinct)

		case opAggregate:
			projected = collect(projected, op.aggColumn, op.groupColumns, op.collectDistinct)

		case opSort:
			projected.sortBy(op.sortKeys)
		}
	}

	if projected == nil {
		return []Row{}, nil
	}
	return projected.toRows(), nil
}

// nodeMatches reports whether the node carries the property with exactly
// the given value. A node missing the property is a non-match.
func (e *Executor) nodeMatches(ref graph.NodeRef, property, value string) bool {
	node, ok := e.graph.Node(ref)
	if !ok {
		return false
	}
	v, ok := node.Property(property)
	return ok && v == value
}

// resultTable holds projected rows while aggregation and ordering run.
// Cells are strings until aggregation turns one column into []string.
type resultTable struct {
	columns []column
	rows    [][]Value
}

// project materializes binding tuples into rows of property values. A
// property declared in the schema but absent on a node projects as the
// empty string. DISTINCT dedupes full rows by the projected columns,
// keeping first occurrences.
func (e *Executor) project(bindings [][]graph.NodeRef, columns []column, distinct bool) *resultTable {
	table := &resultTable{columns: columns}
	seen := make(map[string]bool)

	for _, binding := range bindings {
		cells := make([]Value, len(columns))
		for i, col := range columns {
			cells[i] = e.propertyOf(binding[col.position], col.property)
		}
		if distinct {
			key := joinCells(cells)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		table.rows = append(table.rows, cells)
	}
	return table
}

func (e *Executor) propertyOf(ref graph.NodeRef, property string) string {
	node, ok := e.graph.Node(ref)
	if !ok {
		return ""
	}
	v, _ := node.Property(property)
	return v
}

// collect groups rows by the non-aggregated columns (in projection
// order) and gathers the aggregated column's values per group in
// first-seen order, optionally deduplicated.
func collect(table *resultTable, aggCol column, groups []column, distinct bool) *resultTable {
	groupIdx := make([]int, len(groups))
	for i, g := range groups {
		groupIdx[i] = table.indexOf(g.name)
	}
	aggIdx := table.indexOf(aggCol.name)

	out := &resultTable{columns: table.columns}
	rowFor := make(map[string]int)
	seenValue := make(map[string]bool)

	for _, cells := range table.rows {
		keyParts := make([]Value, len(groupIdx))
		for i, idx := range groupIdx {
			keyParts[i] = cells[idx]
		}
		key := joinCells(keyParts)

		idx, exists := rowFor[key]
		if !exists {
			grouped := make([]Value, len(cells))
			copy(grouped, cells)
			grouped[aggIdx] = []string{}
			idx = len(out.rows)
			out.rows = append(out.rows, grouped)
			rowFor[key] = idx
		}

		value, _ := cells[aggIdx].(string)
		if distinct {
			valueKey := key + groupSep + value
			if seenValue[valueKey] {
				continue
			}
			seenValue[valueKey] = true
		}
		out.rows[idx][aggIdx] = append(out.rows[idx][aggIdx].([]string), value)
	}
	return out
}

// sortBy sorts rows lexicographically by the named columns. The sort is
// stable, so ties keep their original order.
func (t *resultTable) sortBy(keys []sortKey) {
	idx := make([]int, len(keys))
	for i, key := range keys {
		idx[i] = t.indexOf(key.name)
	}

	sort.SliceStable(t.rows, func(a, b int) bool {
		for i, col := range idx {
			av, _ := t.rows[a][col].(string)
			bv, _ := t.rows[b][col].(string)
			if av == bv {
				continue
			}
			if keys[i].descending {
				return av > bv
			}
			return av < bv
		}
		return false
	})
}

func (t *resultTable) indexOf(name string) int {
	for i, col := range t.columns {
		if col.name == name {
			return i
		}
	}
	return -1
}

func (t *resultTable) toRows() []Row {
	rows := make([]Row, 0, len(t.rows))
	for _, cells := range t.rows {
		row := make(Row, len(t.columns))
		for i, col := range t.columns {
			row[col.name] = cells[i]
		}
		rows = append(rows, row)
	}
	return rows
}

func joinCells(cells []Value) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		s, _ := c.(string)
		parts[i] = s
	}
	return strings.Join(parts, groupSep)
}
