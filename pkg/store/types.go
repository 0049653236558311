package store

// Stats summarizes the persisted graph: node counts keyed by label and
// edge counts keyed by edge type.
type Stats struct {
	NodeCounts map[string]int64 `json:"node_counts"`
	EdgeCounts map[string]int64 `json:"edge_counts"`
	TotalNodes int64            `json:"total_nodes"`
	TotalEdges int64            `json:"total_edges"`
}
