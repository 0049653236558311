// Package graph implements the in-memory typed knowledge graph for MOSDAC
// satellite, product, parameter and region entities.
//
// The graph is built once at load time and is read-mostly afterwards:
// writes are serialized behind an exclusive lock, while the query path
// takes shared locks only, so any number of queries may run concurrently.
package graph

import "sync"

// adjacencyKey indexes edges by one endpoint and the edge type.
type adjacencyKey struct {
	ref NodeRef
	typ EdgeType
}

// Graph owns all nodes and edges. Nodes are indexed by (label, id); edges
// are indexed by (from, type) and (to, type) for forward and backward
// traversal. Neighbor lists preserve edge insertion order.
type Graph struct {
	mu sync.RWMutex

	nodes   map[NodeRef]*Node
	byLabel map[Label][]NodeRef
	edges   []Edge
	out     map[adjacencyKey][]NodeRef
	in      map[adjacencyKey][]NodeRef
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[NodeRef]*Node),
		byLabel: make(map[Label][]NodeRef),
		out:     make(map[adjacencyKey][]NodeRef),
		in:      make(map[adjacencyKey][]NodeRef),
	}
}

// AddNode inserts a node. It fails with DuplicateNodeError if a node with
// the same (label, id) already exists; the graph is unchanged on failure.
func (g *Graph) AddNode(label Label, id string, properties map[string]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	ref := NodeRef{Label: label, ID: id}
	if _, exists := g.nodes[ref]; exists {
		return &DuplicateNodeError{Label: label, ID: id}
	}

	props := make(map[string]string, len(properties))
	for k, v := range properties {
		props[k] = v
	}

	g.nodes[ref] = &Node{ID: id, Label: label, Properties: props}
	g.byLabel[label] = append(g.byLabel[label], ref)
	return nil
}

// AddEdge inserts a directed typed edge. Both endpoints must already
// exist (DanglingReferenceError) and their labels must match the pair
// allowed for the edge type (InvalidEdgeTypeError). A failed insert
// leaves the graph unchanged.
func (g *Graph) AddEdge(from, to NodeRef, typ EdgeType) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[from]; !exists {
		return &DanglingReferenceError{Ref: from}
	}
	if _, exists := g.nodes[to]; !exists {
		return &DanglingReferenceError{Ref: to}
	}

	fromLabel, toLabel, ok := typ.Endpoints()
	if !ok || from.Label != fromLabel || to.Label != toLabel {
		return &InvalidEdgeTypeError{Type: typ, From: from.Label, To: to.Label}
	}

	g.edges = append(g.edges, Edge{From: from, To: to, Type: typ})
	g.out[adjacencyKey{ref: from, typ: typ}] = append(g.out[adjacencyKey{ref: from, typ: typ}], to)
	g.in[adjacencyKey{ref: to, typ: typ}] = append(g.in[adjacencyKey{ref: to, typ: typ}], from)
	return nil
}

// GetNode returns the node identified by (label, id), or NotFoundError.
// The returned node is a copy; mutating it does not affect the graph.
func (g *Graph) GetNode(label Label, id string) (*Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, exists := g.nodes[NodeRef{Label: label, ID: id}]
	if !exists {
		return nil, &NotFoundError{Label: label, ID: id}
	}
	return cloneNode(node), nil
}

// Node returns the node for ref without copying. The caller must treat
// the result as read-only. ok is false when the node is absent.
func (g *Graph) Node(ref NodeRef) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, exists := g.nodes[ref]
	return node, exists
}

// Neighbors returns the nodes reachable from ref over edges of the given
// type in the given direction, in edge insertion order. The returned
// slice is a copy and may be ranged over repeatedly.
func (g *Graph) Neighbors(ref NodeRef, typ EdgeType, dir Direction) []NodeRef {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var adj []NodeRef
	switch dir {
	case DirectionIn:
		adj = g.in[adjacencyKey{ref: ref, typ: typ}]
	default:
		adj = g.out[adjacencyKey{ref: ref, typ: typ}]
	}

	if len(adj) == 0 {
		return nil
	}
	result := make([]NodeRef, len(adj))
	copy(result, adj)
	return result
}

// NodesByLabel returns the refs of every node with the given label, in
// insertion order.
func (g *Graph) NodesByLabel(label Label) []NodeRef {
	g.mu.RLock()
	defer g.mu.RUnlock()

	refs := g.byLabel[label]
	if len(refs) == 0 {
		return nil
	}
	result := make([]NodeRef, len(refs))
	copy(result, refs)
	return result
}

// NodeCount returns the number of nodes with the given label.
func (g *Graph) NodeCount(label Label) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byLabel[label])
}

// EdgeCount returns the number of edges of the given type.
func (g *Graph) EdgeCount(typ EdgeType) int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	count := 0
	for _, e := range g.edges {
		if e.Type == typ {
			count++
		}
	}
	return count
}

// Snapshot is a point-in-time copy of the whole graph, used by the API
// and TUI explorer surfaces.
type Snapshot struct {
	Nodes []*Node `json:"nodes"`
	Edges []Edge  `json:"edges"`
}

// GetSnapshot returns a deep copy of the graph contents. Nodes appear in
// label order (Satellite, Product, Parameter, Region) then insertion
// order, edges in insertion order.
func (g *Graph) GetSnapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := &Snapshot{}
	for _, label := range Labels() {
		for _, ref := range g.byLabel[label] {
			snap.Nodes = append(snap.Nodes, cloneNode(g.nodes[ref]))
		}
	}
	snap.Edges = make([]Edge, len(g.edges))
	copy(snap.Edges, g.edges)
	return snap
}

func cloneNode(n *Node) *Node {
	props := make(map[string]string, len(n.Properties))
	for k, v := range n.Properties {
		props[k] = v
	}
	return &Node{ID: n.ID, Label: n.Label, Properties: props}
}
