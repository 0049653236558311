// Package api exposes the knowledge-graph query core over HTTP.
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gowri-arun/astraq-kg/pkg/graph"
	"github.com/gowri-arun/astraq-kg/pkg/query"
	"github.com/gowri-arun/astraq-kg/pkg/schema"
	"github.com/gowri-arun/astraq-kg/pkg/store"
)

// Context keys
type contextKey string

const traceIDKey contextKey = "trace_id"

// Interfaces for dependencies to enable mocking

// Executor runs compiled queries against the graph.
type Executor interface {
	Execute(ctx context.Context, req query.Request) ([]query.Row, error)
}

// StatsProvider returns persisted graph statistics.
type StatsProvider interface {
	Stats(ctx context.Context) (*store.Stats, error)
}

// ResultCache caches serialized query responses. Implementations must be
// fail-open: a broken cache degrades to direct execution.
type ResultCache interface {
	Get(ctx context.Context, req query.Request) ([]byte, bool)
	Set(ctx context.Context, req query.Request, response []byte)
}

// Server encapsulates the HTTP API server.
type Server struct {
	executor Executor
	graph    *graph.Graph
	catalog  *schema.Catalog
	stats    StatsProvider
	cache    ResultCache
	server   *http.Server

	queryTimeout time.Duration
}

// NewServer creates a new API server instance. addr defaults to :8091
// when empty.
func NewServer(executor Executor, g *graph.Graph, catalog *schema.Catalog, stats StatsProvider, addr string) *Server {
	s := &Server{
		executor: executor,
		graph:    g,
		catalog:  catalog,
		stats:    stats,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/v1/query", s.handleQuery)
	mux.HandleFunc("/v1/queries", s.handleQueryCatalog)
	mux.HandleFunc("/v1/queries/run", s.handleNamedQuery)
	mux.HandleFunc("/v1/nodes/", s.handleNode)
	mux.HandleFunc("/v1/graph", s.handleGraph)
	mux.HandleFunc("/v1/schema", s.handleSchema)
	mux.HandleFunc("/v1/stats", s.handleStats)

	// Middleware: Logging, Panic Recovery, Security Headers
	handler := withLogging(withRecovery(withSecureHeaders(mux)))

	if addr == "" {
		addr = ":8091"
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return s
}

// SetResultCache enables the optional query-result cache.
func (s *Server) SetResultCache(cache ResultCache) {
	s.cache = cache
}

// SetQueryTimeout bounds query execution. 0 means no bound.
func (s *Server) SetQueryTimeout(d time.Duration) {
	s.queryTimeout = d
}

// Start runs the HTTP server (blocking).
func (s *Server) Start() error {
	slog.Info("server_starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("server_stopping")
	return s.server.Shutdown(ctx)
}

// handleQuery executes a structured query request.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req query.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json_body"}`, http.StatusBadRequest)
		return
	}

	s.executeAndRespond(w, r, req)
}

// handleQueryCatalog lists the canned queries.
func (s *Server) handleQueryCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	infos := make([]NamedQueryInfo, 0)
	for _, q := range query.Catalog() {
		infos = append(infos, NamedQueryInfo{Name: q.Name, Description: q.Description, Params: q.Params})
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleNamedQuery runs a canned query by name.
func (s *Server) handleNamedQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var named NamedQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&named); err != nil {
		http.Error(w, `{"error":"invalid_json_body"}`, http.StatusBadRequest)
		return
	}

	q, ok := query.Named(named.Name)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown_query", Identifier: named.Name})
		return
	}
	req, err := q.Request(named.Params)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing_parameter", Detail: err.Error()})
		return
	}

	s.executeAndRespond(w, r, req)
}

// executeAndRespond runs the request, consulting the result cache when
// one is configured.
func (s *Server) executeAndRespond(w http.ResponseWriter, r *http.Request, req query.Request) {
	ctx := r.Context()
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, req); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "hit")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
	}

	rows, err := s.executor.Execute(ctx, req)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}

	response := QueryResponse{Columns: req.Projection, Rows: rows}
	body, err := json.Marshal(response)
	if err != nil {
		http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
		return
	}

	if s.cache != nil {
		s.cache.Set(ctx, req, body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// handleNode serves direct lookups: GET /v1/nodes/{label}/{id}.
func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/nodes/")
	label, id, ok := strings.Cut(rest, "/")
	if !ok || label == "" || id == "" {
		http.Error(w, `{"error":"bad_request","detail":"path must be /v1/nodes/{label}/{id}"}`, http.StatusBadRequest)
		return
	}

	if !s.catalog.HasLabel(graph.Label(label)) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "schema_validation", Identifier: label})
		return
	}

	node, err := s.graph.GetNode(graph.Label(label), id)
	if err != nil {
		var notFound *graph.NotFoundError
		if errors.As(err, &notFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Identifier: id})
			return
		}
		http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// handleGraph returns a snapshot of the whole graph.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.graph.GetSnapshot())
}

// handleSchema returns the active schema catalog.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.catalog)
}

// handleStats returns node and edge counts.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	stats, err := s.stats.Stats(r.Context())
	if err != nil {
		slog.Error("stats_query_failed", "trace_id", getTraceID(r.Context()), "error", err)
		http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// writeQueryError maps the query error taxonomy onto HTTP statuses.
// Validation faults name the offending identifier in the body.
func writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *query.SchemaValidationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:      "schema_validation",
			Identifier: validation.Identifier,
			Detail:     validation.Detail,
		})
		return
	}

	var unknown *query.UnknownPropertyError
	if errors.As(err, &unknown) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:      "unknown_property",
			Identifier: unknown.Property,
			Detail:     unknown.Error(),
		})
		return
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		writeJSON(w, http.StatusGatewayTimeout, ErrorResponse{Error: "query_timeout"})
		return
	}

	slog.Error("query_failed", "trace_id", getTraceID(r.Context()), "error", err)
	http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

// Middleware: Panic Recovery
func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic_recovered", "error", fmt.Sprint(err), "path", r.URL.Path)
				http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Middleware: Request Logging
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = generateTraceID()
		}

		ctx := context.WithValue(r.Context(), traceIDKey, traceID)
		r = r.WithContext(ctx)

		// Wrap writer to capture status code
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(ww, r)

		slog.Info("http_request",
			"trace_id", traceID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// Middleware: Secure Headers
func withSecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}

func generateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Fallback if random fails (unlikely)
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func getTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// statusWriter captures HTTP status code
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
