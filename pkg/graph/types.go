package graph

// Label identifies the semantic type of a node in the knowledge graph.
type Label string

const (
	LabelSatellite Label = "Satellite"
	LabelProduct   Label = "Product"
	LabelParameter Label = "Parameter"
	LabelRegion    Label = "Region"
)

// Labels lists every node label in the MOSDAC ontology.
func Labels() []Label {
	return []Label{LabelSatellite, LabelProduct, LabelParameter, LabelRegion}
}

// EdgeType identifies the semantic relationship between two nodes.
type EdgeType string

const (
	EdgeProduces EdgeType = "PRODUCES" // Satellite -> Product
	EdgeObserves EdgeType = "OBSERVES" // Product -> Parameter
	EdgeCovers   EdgeType = "COVERS"   // Product -> Region
)

// EdgeTypes lists every edge type in the MOSDAC ontology.
func EdgeTypes() []EdgeType {
	return []EdgeType{EdgeProduces, EdgeObserves, EdgeCovers}
}

// edgeEndpoints maps each edge type to its required (from, to) label pair.
var edgeEndpoints = map[EdgeType][2]Label{
	EdgeProduces: {LabelSatellite, LabelProduct},
	EdgeObserves: {LabelProduct, LabelParameter},
	EdgeCovers:   {LabelProduct, LabelRegion},
}

// Endpoints returns the (from, to) labels an edge of this type must connect.
// ok is false for unknown edge types.
func (t EdgeType) Endpoints() (from Label, to Label, ok bool) {
	pair, ok := edgeEndpoints[t]
	if !ok {
		return "", "", false
	}
	return pair[0], pair[1], true
}

// Direction selects which end of an edge a traversal follows.
type Direction string

const (
	DirectionOut Direction = "out" // follow edges from -> to
	DirectionIn  Direction = "in"  // follow edges to -> from
)

// NodeRef identifies a node by its (label, id) pair.
type NodeRef struct {
	Label Label  `json:"label"`
	ID    string `json:"id"`
}

// Node represents a vertex in the knowledge graph.
type Node struct {
	ID         string            `json:"id"`
	Label      Label             `json:"label"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Ref returns the node's identity.
func (n *Node) Ref() NodeRef {
	return NodeRef{Label: n.Label, ID: n.ID}
}

// Property returns the named property value. The second return is false
// when the node does not carry the property.
func (n *Node) Property(key string) (string, bool) {
	if n.Properties == nil {
		return "", false
	}
	v, ok := n.Properties[key]
	return v, ok
}

// Edge represents a directed typed connection between two nodes.
type Edge struct {
	From NodeRef  `json:"from"`
	To   NodeRef  `json:"to"`
	Type EdgeType `json:"type"`
}
