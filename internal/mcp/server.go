// Package mcp wraps the kan data layer and exposes it as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/kan/internal/ai"
	"github.com/joescharf/kan/internal/models"
	"github.com/joescharf/kan/internal/store"
	"github.com/joescharf/kan/internal/views"
)

// Server exposes the store and AI orchestrator as MCP tools.
type Server struct {
	app *store.App
	ai  *ai.Orchestrator
}

// NewServer creates the MCP server wrapper.
func NewServer(app *store.App, orchestrator *ai.Orchestrator) *Server {
	return &Server{app: app, ai: orchestrator}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("kan", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.listIssuesTool())
	srv.AddTool(s.createIssueTool())
	srv.AddTool(s.moveIssueTool())
	srv.AddTool(s.suggestTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// kan_list_issues
func (s *Server) listIssuesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("kan_list_issues",
		mcp.WithDescription("List issues. Returns a JSON array with identifier, title, status, priority, and labels. All filters are optional and combine conjunctively."),
		mcp.WithString("status", mcp.Description("Filter by status: backlog, todo, in-progress, in-review, done, cancelled")),
		mcp.WithString("priority", mcp.Description("Filter by priority: urgent, high, medium, low, no-priority")),
		mcp.WithString("label", mcp.Description("Filter by label")),
		mcp.WithString("project", mcp.Description("Filter by project name or id")),
		mcp.WithString("search", mcp.Description("Free-text search over title, identifier, and description")),
	)
	return tool, s.handleListIssues
}

func (s *Server) handleListIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.app.Snapshot()
	if v := request.GetString("status", ""); v != "" {
		snap.Filter.Status = []models.Status{models.Status(v)}
	}
	if v := request.GetString("priority", ""); v != "" {
		snap.Filter.Priority = []models.Priority{models.Priority(v)}
	}
	if v := request.GetString("label", ""); v != "" {
		snap.Filter.Labels = []string{v}
	}
	if v := request.GetString("project", ""); v != "" {
		p, ok := s.app.FindProject(v)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("project %q not found", v)), nil
		}
		snap.CurrentProject = &p
	}
	snap.SearchQuery = request.GetString("search", "")

	type issueOut struct {
		Identifier string   `json:"identifier"`
		Title      string   `json:"title"`
		Status     string   `json:"status"`
		Priority   string   `json:"priority"`
		Labels     []string `json:"labels"`
	}

	issues := views.FilteredIssues(snap)
	out := make([]issueOut, len(issues))
	for i, issue := range issues {
		out[i] = issueOut{
			Identifier: issue.Identifier,
			Title:      issue.Title,
			Status:     string(issue.Status),
			Priority:   string(issue.Priority),
			Labels:     issue.Labels,
		}
	}

	raw, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(raw)), nil
}

// kan_create_issue
func (s *Server) createIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("kan_create_issue",
		mcp.WithDescription("Create a new issue. Returns the created issue with its assigned identifier."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Issue title")),
		mcp.WithString("description", mcp.Description("Issue description")),
		mcp.WithString("priority", mcp.Description("Priority: urgent, high, medium, low, no-priority (default medium)")),
		mcp.WithString("project", mcp.Description("Project name or id to file the issue under")),
	)
	return tool, s.handleCreateIssue
}

func (s *Server) handleCreateIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := request.GetString("title", "")
	opts := store.CreateOptions{}

	if v := request.GetString("description", ""); v != "" {
		opts.Description = &v
	}
	if v := request.GetString("priority", ""); v != "" {
		p := models.Priority(v)
		if !p.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("invalid priority %q", v)), nil
		}
		opts.Priority = p
	}
	if v := request.GetString("project", ""); v != "" {
		p, ok := s.app.FindProject(v)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("project %q not found", v)), nil
		}
		opts.ProjectID = &p.ID
	}

	issue, err := s.app.CreateIssue(title, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create issue: %v", err)), nil
	}

	raw, _ := json.MarshalIndent(issue, "", "  ")
	return mcp.NewToolResultText(string(raw)), nil
}

// kan_move_issue
func (s *Server) moveIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("kan_move_issue",
		mcp.WithDescription("Move an issue to a new status."),
		mcp.WithString("issue", mcp.Required(), mcp.Description("Issue id or identifier, e.g. LIN-3")),
		mcp.WithString("status", mcp.Required(), mcp.Description("Target status: backlog, todo, in-progress, in-review, done, cancelled")),
	)
	return tool, s.handleMoveIssue
}

func (s *Server) handleMoveIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := request.GetString("issue", "")
	status := models.Status(request.GetString("status", ""))
	if !status.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("invalid status %q", status)), nil
	}

	issue, ok := s.app.FindIssue(ref)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("issue %q not found", ref)), nil
	}
	if err := s.app.MoveIssue(issue.ID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("issue %q not found", ref)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("move issue: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Moved %s to %s", issue.Identifier, status)), nil
}

// kan_suggest
func (s *Server) suggestTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("kan_suggest",
		mcp.WithDescription("Run AI suggestions (labels, priority, duplicate check) for a draft issue against the current issue collection."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Draft issue title")),
		mcp.WithString("description", mcp.Description("Draft issue description")),
	)
	return tool, s.handleSuggest
}

func (s *Server) handleSuggest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := request.GetString("title", "")
	description := request.GetString("description", "")

	existing := make([]string, 0)
	for _, issue := range s.app.Issues() {
		existing = append(existing, issue.Title)
	}

	suggestion, err := s.ai.Suggest(ctx, title, description, existing)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("suggest: %v", err)), nil
	}

	out := map[string]any{
		"labels":     suggestion.Labels.Items,
		"priority":   string(suggestion.Priority),
		"duplicates": suggestion.Duplicates.Items,
	}
	raw, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(raw)), nil
}
