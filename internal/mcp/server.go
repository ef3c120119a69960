// Package mcp exposes the git-graph command as a Model Context Protocol tool.
package mcp

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rybkr/gitgraph/internal/command"
	"github.com/rybkr/gitgraph/internal/domain"
	"go.uber.org/zap"
)

// CommandRunner runs a named command against a host; command.Runner
// satisfies it.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, host domain.Host) (string, error)
}

// Server wraps the MCP server with the git-graph tool.
type Server struct {
	mcpServer *server.MCPServer
	runner    CommandRunner
	host      domain.Host
	logger    *zap.Logger
}

// NewServer creates an MCP server that answers for host. A nil host is
// allowed; every tool call then fails with command.ErrNoWorkspace.
func NewServer(runner CommandRunner, host domain.Host, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		runner: runner,
		host:   host,
		logger: logger,
	}

	mcpServer := server.NewMCPServer(
		"gitgraph",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	graphTool := mcp.NewTool(command.GitGraph,
		mcp.WithDescription("Return the commit graph of the attached repository as a JSON document"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of commits (default: 400, max: 2000)"),
		),
	)

	mcpServer.AddTool(graphTool, s.handleGitGraph)
}

func (s *Server) handleGitGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := limitArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.runner.Run(ctx, command.GitGraph, args, s.host)
	if err != nil {
		s.logger.Warn("git-graph tool failed", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(doc), nil
}

// limitArgs turns the optional limit argument into the command's
// positional arguments. Strings pass through so the command reports
// its own parse error.
func limitArgs(arguments map[string]any) ([]string, error) {
	raw, ok := arguments["limit"]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}, nil
	case int:
		return []string{strconv.Itoa(v)}, nil
	case string:
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("limit must be a number, got %T", raw)
	}
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
