package api

import (
	"github.com/gowri-arun/astraq-kg/pkg/query"
	"github.com/gowri-arun/astraq-kg/pkg/schema"
	"github.com/gowri-arun/astraq-kg/pkg/store"
)

// QueryResponse matches the response for POST /v1/query.
type QueryResponse struct {
	Columns []string    `json:"columns"`
	Rows    []query.Row `json:"rows"`
}

// ErrorResponse is the uniform error body for 4xx/5xx responses.
type ErrorResponse struct {
	Error      string `json:"error"`
	Identifier string `json:"identifier,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// NamedQueryInfo describes one canned query for GET /v1/queries.
type NamedQueryInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Params      []string `json:"params,omitempty"`
}

// NamedQueryRequest matches the POST /v1/queries/run body schema.
type NamedQueryRequest struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

// StatsResponse matches the response for GET /v1/stats.
type StatsResponse = store.Stats

// SchemaResponse matches the response for GET /v1/schema.
type SchemaResponse = schema.Catalog
