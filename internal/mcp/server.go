package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jcdickinson/rustdown/internal/cas"
	"github.com/jcdickinson/rustdown/internal/db"
)

const instructions = `rustdown serves the Markdown documentation tree generated by
'rustdown extract'. Use list_pages to discover extracted items and get_page
to read a page by its Rust path (e.g. "serde::ser::Serialize").`

// Server exposes the generated documentation tree over MCP.
type Server struct {
	mcpServer  *server.MCPServer
	index      *db.Index
	outputRoot string
	store      *cas.Store
}

// NewServer builds the MCP surface over the page index. store may be nil;
// when set it serves pages whose output file has gone missing.
func NewServer(index *db.Index, outputRoot string, store *cas.Store) *Server {
	s := &Server{index: index, outputRoot: outputRoot, store: store}

	mcpServer := server.NewMCPServer(
		"rustdown",
		"0.1.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("list_pages",
			mcp.WithDescription("List extracted documentation pages: Rust path, kind, caption, and output file. Optionally filtered by package."),
			mcp.WithString("package",
				mcp.Description("Optional package name to filter by"),
			),
		),
		s.handleListPages,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_page",
			mcp.WithDescription("Read a generated documentation page by its Rust path (e.g. \"mycrate::module::Item\")."),
			mcp.WithString("path",
				mcp.Description("The \"::\"-joined Rust path of the item"),
				mcp.Required(),
			),
		),
		s.handleGetPage,
	)
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pkg, _ := args["package"].(string)

	pages, err := s.index.ListPages(pkg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing pages: %v", err)), nil
	}

	type entry struct {
		Path    string `json:"path"`
		Kind    string `json:"kind"`
		Caption string `json:"caption,omitempty"`
		File    string `json:"file"`
	}
	entries := make([]entry, 0, len(pages))
	for _, p := range pages {
		entries = append(entries, entry{Path: p.Path, Kind: p.Kind, Caption: p.Caption, File: p.File})
	}

	resultJSON, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleGetPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}

	page, err := s.index.GetPageByPath(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("looking up page: %v", err)), nil
	}
	if page == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no page extracted for %q", path)), nil
	}

	file := filepath.Join(s.outputRoot, filepath.FromSlash(page.File))
	if !strings.HasPrefix(filepath.Clean(file), filepath.Clean(s.outputRoot)) {
		return mcp.NewToolResultError("page file escapes the output root"), nil
	}

	content, err := os.ReadFile(file)
	if err != nil {
		if s.store != nil && page.ContentHash != "" && s.store.Has(page.ContentHash) {
			archived, archiveErr := s.store.Get(page.ContentHash)
			if archiveErr == nil {
				return mcp.NewToolResultText(archived), nil
			}
		}
		return mcp.NewToolResultError(fmt.Sprintf("reading page file: %v", err)), nil
	}

	return mcp.NewToolResultText(string(content)), nil
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}
