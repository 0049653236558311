package query

import (
	"github.com/gowri-arun/astraq-kg/pkg/graph"
)

// opKind tags the variant of a plan operator. The matcher handles each
// kind exhaustively; there is no operator class hierarchy.
type opKind int

const (
	opAnchor opKind = iota
	opExpand
	opFilter
	opProject
	opAggregate
	opSort
)

// column is a resolved projection column: the pattern-chain position it
// reads from, the property key it projects, and its display name
// ("alias.property").
type column struct {
	position int
	property string
	name     string
}

// sortKey is one ORDER BY column with its direction.
type sortKey struct {
	name       string
	descending bool
}

// planOp is a single operator. Only the fields of its kind are set.
type planOp struct {
	kind opKind

	// opAnchor
	anchorLabel graph.Label

	// opExpand
	edgeType  graph.EdgeType
	direction graph.Direction

	// opFilter: equality test on the node bound at position
	position int
	property string
	value    string

	// opProject
	columns  []column
	distinct bool

	// opAggregate
	aggColumn       column
	groupColumns    []column
	collectDistinct bool

	// opSort
	sortKeys []sortKey
}

// plan is a compiled, schema-validated query: an ordered operator list
// plus the label bound at each pattern-chain position.
type plan struct {
	ops    []planOp
	labels []graph.Label // label per chain position, anchor first
}
