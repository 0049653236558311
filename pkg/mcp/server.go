package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gowri-arun/astraq-kg/pkg/client"
)

// Server adapts astrakg-d to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	apiClient *client.Client
}

// NewServer creates a new MCP server instance.
func NewServer(apiURL string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"astrakg",
			"1.0.0",
		),
		apiClient: client.NewClient(apiURL),
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	// astrakg://schema
	s.mcpServer.AddResource(mcp.NewResource(
		"astrakg://schema",
		"Knowledge Graph Schema",
		mcp.WithResourceDescription("Node labels, their properties, and the typed edges connecting them"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadSchema)

	// astrakg://stats
	s.mcpServer.AddResource(mcp.NewResource(
		"astrakg://stats",
		"Knowledge Graph Statistics",
		mcp.WithResourceDescription("Node and edge counts per label and edge type"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadStats)
}

// --- Tools ---

func (s *Server) registerTools() {
	// run_query
	s.mcpServer.AddTool(mcp.NewTool(
		"run_query",
		mcp.WithDescription("Run a canned knowledge-graph query by name. Use list_queries to discover names and parameters."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Canned query name (e.g., 'parameters_observed_by_satellite')")),
		mcp.WithString("params", mcp.Description("Query parameters as a JSON object (e.g., '{\"satellite\":\"INSAT-3DR\"}')")),
	), s.handleRunQuery)

	// list_queries
	s.mcpServer.AddTool(mcp.NewTool(
		"list_queries",
		mcp.WithDescription("List the canned queries the graph daemon offers, with their parameters."),
	), s.handleListQueries)

	// lookup_node
	s.mcpServer.AddTool(mcp.NewTool(
		"lookup_node",
		mcp.WithDescription("Fetch one graph node with all its properties."),
		mcp.WithString("label", mcp.Required(), mcp.Description("Node label: Satellite, Product, Parameter, or Region")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node identifier (e.g., 'insat-3dr')")),
	), s.handleLookupNode)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"astrakg-ontology",
		mcp.WithPromptDescription("Provides context about the MOSDAC satellite-data ontology"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadSchema(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	raw, err := s.apiClient.GetSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(raw),
		},
	}, nil
}

func (s *Server) handleReadStats(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := s.apiClient.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stats: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleRunQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := mcp.ParseString(request, "name", "")
	rawParams := mcp.ParseString(request, "params", "")

	params := map[string]string{}
	if rawParams != "" {
		if err := json.Unmarshal([]byte(rawParams), &params); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("params must be a JSON object of strings: %v", err)), nil
		}
	}

	result, err := s.apiClient.RunNamed(ctx, name, params)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleListQueries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := s.apiClient.Queries(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	var b strings.Builder
	for _, info := range infos {
		b.WriteString(info.Name)
		if len(info.Params) > 0 {
			fmt.Fprintf(&b, " (params: %s)", strings.Join(info.Params, ", "))
		}
		b.WriteString(": ")
		b.WriteString(info.Description)
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleLookupNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label := mcp.ParseString(request, "label", "")
	id := mcp.ParseString(request, "id", "")

	node, err := s.apiClient.GetNode(ctx, label, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	data, err := json.MarshalIndent(node, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal node: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "astrakg-ontology" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are interacting with astrakg, a read-mostly knowledge graph of the
MOSDAC satellite-data archive.

Ontology:
- Satellite: A mission (e.g., 'INSAT-3DR', 'Oceansat-3'). PRODUCES products.
- Product: A data product or documentation page. OBSERVES parameters and COVERS regions.
- Parameter: A geophysical quantity (e.g., 'rainfall', 'sea_surface_temperature').
- Region: A geographic area a product covers (e.g., 'India', 'Indian Ocean').

To answer questions about the archive, use 'list_queries' to see the canned
queries, then 'run_query' with the right parameters. Use 'lookup_node' to
inspect a single node's properties. Read astrakg://schema for the full
property catalog.
`

	return mcp.NewGetPromptResult(
		"astrakg-ontology",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}
