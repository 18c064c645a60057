package mcprpc

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps an mcp.Server registered with every search_* tool over one
// Engine, following the teacher's internal/mcp/server.go construction shape
// (mcp.NewServer, then one AddTool call per tool, then Run over stdio).
type Server struct {
	engine *Engine
	server *mcp.Server
}

// NewServer builds the MCP server and registers all nine tools against e.
func NewServer(e *Engine, name, version string) *Server {
	s := &Server{
		engine: e,
		server: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	e := s.engine
	add := func(name, desc string, schema *jsonschema.Schema, handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)) {
		s.server.AddTool(&mcp.Tool{Name: name, Description: desc, InputSchema: schema}, handler)
	}

	add("search_grep", "TF-IDF ranked token search over indexed file content.", grepSchema(), e.handleSearchGrep)
	add("search_find", "Recursive filename or content search with depth limiting.", findSchema(), e.handleSearchFind)
	add("search_fast", "Fast OR-pattern search over file and directory names.", fastSchema(), e.handleSearchFast)
	add("search_info", "Index readiness, counts, and active configuration.", infoSchema(), e.handleSearchInfo)
	add("search_reindex", "Force a full content (and definition) index rebuild.", reindexSchema(), e.handleSearchReindex)
	add("search_reindex_definitions", "Force a full definition index rebuild.", reindexSchema(), e.handleSearchReindexDefinitions)
	add("search_definitions", "Look up declared symbols by name, kind, attribute, base type, or location.", definitionsSchema(), e.handleSearchDefinitions)
	add("search_callers", "Walk the call graph up to callers or down to callees from a method.", callersSchema(), e.handleSearchCallers)
	add("search_help", "List tools or get detailed help for one.", helpSchema(), e.handleSearchHelp)
}

// Run starts the MCP server over stdio and blocks until ctx is canceled or
// the transport closes, mirroring the teacher's Server.Start.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
