package client

// The SDK carries its own wire types so that importing it does not drag
// in the server packages. Field names mirror the daemon's JSON schema.

// Filter is an exact-match predicate on one property.
type Filter struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// Step is one traversal hop in a query chain.
type Step struct {
	EdgeType    string  `json:"edge_type"`
	Direction   string  `json:"direction,omitempty"` // "out" (default) or "in"
	TargetLabel string  `json:"target_label"`
	Alias       string  `json:"alias"`
	Filter      *Filter `json:"filter,omitempty"`
}

// Aggregate collects one projected column into a list per group.
type Aggregate struct {
	Column   string `json:"column"`
	Distinct bool   `json:"distinct,omitempty"`
}

// Order sorts results by a projected column.
type Order struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending,omitempty"`
}

// Request is a structured query for POST /v1/query.
type Request struct {
	AnchorLabel  string     `json:"anchor_label"`
	AnchorAlias  string     `json:"anchor_alias"`
	AnchorFilter *Filter    `json:"anchor_filter,omitempty"`
	Steps        []Step     `json:"steps,omitempty"`
	Projection   []string   `json:"projection"`
	Distinct     bool       `json:"distinct,omitempty"`
	Aggregate    *Aggregate `json:"aggregate,omitempty"`
	OrderBy      []Order    `json:"order_by,omitempty"`
}

// Result holds the rows returned by a query.
type Result struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// QueryInfo describes one canned query offered by the daemon.
type QueryInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Params      []string `json:"params,omitempty"`
}

// Node is a single graph node as returned by GET /v1/nodes/{label}/{id}.
type Node struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Properties map[string]string `json:"properties"`
}

// NodeRef identifies a node inside a graph dump.
type NodeRef struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

// Edge is a typed relationship inside a graph dump.
type Edge struct {
	From NodeRef `json:"from"`
	To   NodeRef `json:"to"`
	Type string  `json:"type"`
}

// GraphDump is the full snapshot returned by GET /v1/graph.
type GraphDump struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Stats holds node and edge counts from GET /v1/stats.
type Stats struct {
	NodeCounts map[string]int64 `json:"node_counts"`
	EdgeCounts map[string]int64 `json:"edge_counts"`
	TotalNodes int64            `json:"total_nodes"`
	TotalEdges int64            `json:"total_edges"`
}

// Status is the health check response.
type Status struct {
	Status string `json:"status"`
}
