// Package mcp exposes Jira operations as MCP tools over the Model Context
// Protocol.
package mcp

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"

	"gitlab.com/your-org/jira-mcp/internal/jira"
	"gitlab.com/your-org/jira-mcp/internal/state"
)

const serverVersion = "0.1.0"

// Dependencies bundles the services required for MCP server construction.
type Dependencies struct {
	Client *jira.Client
	Cache  *state.Cache
	Logger *slog.Logger
	// ReadOnly disables every tool that mutates Jira state.
	ReadOnly bool
}

// Tools wires the Jira client into MCP tool handlers.
type Tools struct {
	client  *jira.Client
	cache   *state.Cache
	logger  *slog.Logger
	siteURL string
}

// NewServer builds an MCP server with the Jira toolset registered. In
// read-only mode mutating tools are not registered at all, so clients never
// see them.
func NewServer(deps Dependencies) *server.MCPServer {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Cache == nil {
		deps.Cache = state.NewCache(0)
	}

	srv := server.NewMCPServer(
		"Jira MCP",
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions("Tools for reading and managing Jira issues, boards, sprints and worklogs."),
		server.WithRecovery(),
	)

	t := &Tools{
		client:  deps.Client,
		cache:   deps.Cache,
		logger:  deps.Logger,
		siteURL: strings.TrimRight(deps.Client.Settings().URL, "/"),
	}
	t.registerIssueTools(srv, deps.ReadOnly)
	t.registerSearchTools(srv)
	t.registerAgileTools(srv, deps.ReadOnly)
	t.registerWorkflowTools(srv, deps.ReadOnly)
	t.registerAttachmentTools(srv, deps.ReadOnly)
	return srv
}

// logCall returns a logger tagged with the tool name and a fresh invocation
// id so concurrent calls can be told apart in the stream.
func (t *Tools) logCall(tool string) *slog.Logger {
	return t.logger.With("tool", tool, "invocation", uuid.NewString())
}

func (t *Tools) browseURL(key string) string {
	return fmt.Sprintf("%s/browse/%s", t.siteURL, key)
}
