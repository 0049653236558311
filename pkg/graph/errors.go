package graph

import "fmt"

// DuplicateNodeError is returned when a node with the same (label, id)
// already exists in the graph.
type DuplicateNodeError struct {
	Label Label
	ID    string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node %s/%s", e.Label, e.ID)
}

// DanglingReferenceError is returned when an edge references a node that
// does not exist in the graph.
type DanglingReferenceError struct {
	Ref NodeRef
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference %s/%s", e.Ref.Label, e.Ref.ID)
}

// InvalidEdgeTypeError is returned when an edge's endpoint labels do not
// match the label pair allowed for its type.
type InvalidEdgeTypeError struct {
	Type EdgeType
	From Label
	To   Label
}

func (e *InvalidEdgeTypeError) Error() string {
	return fmt.Sprintf("edge type %s cannot connect %s -> %s", e.Type, e.From, e.To)
}

// NotFoundError is returned by direct node lookups that miss.
type NotFoundError struct {
	Label Label
	ID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("node %s/%s not found", e.Label, e.ID)
}
