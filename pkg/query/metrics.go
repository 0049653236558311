package query

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// QueryTotal counts executed queries by outcome.
	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astrakg_query_total",
			Help: "Total number of graph queries by outcome",
		},
		[]string{"status"},
	)

	// QueryDuration tracks end-to-end query execution time.
	QueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "astrakg_query_duration_seconds",
			Help:    "Graph query execution time in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// BindingsExpanded counts partial bindings produced by expansion steps.
	BindingsExpanded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "astrakg_bindings_expanded_total",
			Help: "Total partial bindings produced by pattern expansion",
		},
	)

	// GraphNodes tracks loaded node counts per label.
	GraphNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "astrakg_graph_nodes",
			Help: "Number of nodes in the loaded graph per label",
		},
		[]string{"label"},
	)

	// GraphEdges tracks loaded edge counts per type.
	GraphEdges = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "astrakg_graph_edges",
			Help: "Number of edges in the loaded graph per type",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(QueryTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(BindingsExpanded)
	prometheus.MustRegister(GraphNodes)
	prometheus.MustRegister(GraphEdges)
}
