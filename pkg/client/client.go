// Package client is the astrakg SDK: a thin HTTP client for the daemon's
// v1 API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// APIError is a structured error returned by the daemon.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Identifier string `json:"identifier,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("%s: %s (http %d)", e.Code, e.Identifier, e.StatusCode)
	}
	return fmt.Sprintf("%s (http %d)", e.Code, e.StatusCode)
}

// Client is the astrakg SDK client.
type Client struct {
	endpoint string
	http     *http.Client
	backoff  BackoffStrategy
	retries  int
}

// NewClient creates a new astrakg client.
// endpoint defaults to "http://127.0.0.1:8091" if empty.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = "http://127.0.0.1:8091"
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		backoff: DefaultBackoff(),
		retries: 2,
	}
}

// SetRetries overrides the number of retry attempts for idempotent
// requests. 0 disables retrying.
func (c *Client) SetRetries(n int) {
	if n < 0 {
		n = 0
	}
	c.retries = n
}

// Query posts a structured query and returns its rows.
func (c *Client) Query(ctx context.Context, req Request) (*Result, error) {
	var result Result
	if err := c.post(ctx, "/v1/query", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RunNamed runs a canned query by name with the given parameters.
func (c *Client) RunNamed(ctx context.Context, name string, params map[string]string) (*Result, error) {
	body := struct {
		Name   string            `json:"name"`
		Params map[string]string `json:"params,omitempty"`
	}{Name: name, Params: params}

	var result Result
	if err := c.post(ctx, "/v1/queries/run", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Queries lists the canned queries the daemon offers.
func (c *Client) Queries(ctx context.Context) ([]QueryInfo, error) {
	var infos []QueryInfo
	if err := c.get(ctx, "/v1/queries", &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// GetNode looks up one node by label and identifier.
func (c *Client) GetNode(ctx context.Context, label, id string) (*Node, error) {
	path := "/v1/nodes/" + url.PathEscape(label) + "/" + url.PathEscape(id)
	var node Node
	if err := c.get(ctx, path, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// GetGraph fetches a full snapshot of the graph.
func (c *Client) GetGraph(ctx context.Context) (*GraphDump, error) {
	var dump GraphDump
	if err := c.get(ctx, "/v1/graph", &dump); err != nil {
		return nil, err
	}
	return &dump, nil
}

// GetStats fetches node and edge counts.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.get(ctx, "/v1/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetSchema fetches the active schema catalog as raw JSON.
func (c *Client) GetSchema(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/v1/schema", &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Ping checks the health of the daemon.
func (c *Client) Ping(ctx context.Context) (Status, error) {
	var status Status
	if err := c.get(ctx, "/v1/health", &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// get issues an idempotent GET, retrying transient failures with
// exponential backoff.
func (c *Client) get(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff.Next(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+path, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("daemon unreachable: %w", err)
			continue
		}

		err = decodeResponse(resp, out)
		resp.Body.Close()
		// Retry only on upstream failures, not on client errors.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 500 {
			lastErr = err
			continue
		}
		return err
	}
	return lastErr
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "unexpected_status"}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err == nil && len(body) > 0 {
			// Best effort: keep the generic code if the body is not
			// the daemon's error shape.
			_ = json.Unmarshal(body, apiErr)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
