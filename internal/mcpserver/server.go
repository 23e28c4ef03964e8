// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes promptbox tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/promptbox/internal/models"
	"github.com/starford/promptbox/internal/projectservice"
)

// Server wraps the MCP server with promptbox tools.
type Server struct {
	mcp *server.MCPServer
	svc *projectservice.Service
}

// New creates a new MCP server with all promptbox tools registered.
func New(svc *projectservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Promptbox",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List prompt projects, newest first. Optionally filter by category."),
		mcp.WithString("category", mcp.Description("Optional category id to filter by")),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("read_project",
		mcp.WithDescription("Read a prompt project including its current content and version history."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Project id")),
	), s.readProject)

	s.mcp.AddTool(mcp.NewTool("search_projects",
		mcp.WithDescription("Full-text search through project names, descriptions, tags, and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchProjects)

	s.mcp.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a new prompt project in a category."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("category", mcp.Description("Category id (defaults to uncategorized)")),
		mcp.WithString("description", mcp.Description("Optional project description")),
	), s.createProject)

	s.mcp.AddTool(mcp.NewTool("add_version",
		mcp.WithDescription("Snapshot new content as the next version of a project. "+
			"The content also becomes the project's current content."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Prompt content to snapshot")),
	), s.addVersion)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List all categories ordered by sort order."),
	), s.listCategories)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := req.GetString("category", "")
	projects, err := s.svc.List(ctx, projectservice.ListFilter{Category: category})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(projects, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category := req.GetString("category", "uncategorized")
	description := req.GetString("description", "")

	p, err := s.svc.Create(ctx, category, models.ProjectCreate{Name: name, Description: description})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addVersion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.svc.AppendVersion(ctx, id, content, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats, err := s.svc.Categories(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(cats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
