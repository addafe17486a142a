// ABOUTME: MCP server wiring the Bluesky tool catalog onto stdio transport.
// ABOUTME: Registers the fixed tool set and dispatches calls against the session client.

package mcp

import (
	"context"
	"errors"
	"log/slog"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389/bsky-mcp/internal/bluesky"
	"github.com/2389/bsky-mcp/internal/config"
	"github.com/google/uuid"
)

// serverName and serverVersion identify this server in the MCP handshake.
const (
	serverName    = "bsky-mcp"
	serverVersion = "1.0.0"
)

// mentionConcurrency bounds the parallel thread lookups inside
// get_unreplied_mentions. Parallelism stays internal to that one call; the
// single outward response is unaffected.
const mentionConcurrency = 4

// Server wraps the MCP server with the authenticated Bluesky session.
type Server struct {
	mcp    *gomcp.Server
	client bluesky.Client
	logger *slog.Logger
	limits config.Limits
}

// NewServer creates an MCP server with the full tool catalog registered
// against the given session client.
func NewServer(client bluesky.Client, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if client == nil {
		return nil, errors.New("bluesky client is required")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcp: gomcp.NewServer(&gomcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		}, nil),
		client: client,
		logger: logger,
		limits: cfg.Limits,
	}

	s.registerTools()
	return s, nil
}

// Serve runs the MCP server on stdio until the client disconnects or the
// context is cancelled. Requests are processed in arrival order.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio",
		"account", s.client.Handle(),
		"tools", len(catalog()),
	)
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}

// registerTools adds the fixed catalog to the server.
func (s *Server) registerTools() {
	addTool(s, getDidTool, s.handleGetDID)
	addTool(s, getProfileTool, s.handleGetProfile)
	addTool(s, getAuthorFeedTool, s.handleGetAuthorFeed)
	addTool(s, getPostThreadTool, s.handleGetPostThread)
	addTool(s, searchPostsTool, s.handleSearchPosts)
	addTool(s, listNotificationsTool, s.handleListNotifications)
	addTool(s, getUnrepliedMentionsTool, s.handleGetUnrepliedMentions)
	addTool(s, createPostTool, s.handleCreatePost)
}

// catalog enumerates every tool definition the server registers.
func catalog() []*gomcp.Tool {
	return []*gomcp.Tool{
		getDidTool,
		getProfileTool,
		getAuthorFeedTool,
		getPostThreadTool,
		searchPostsTool,
		listNotificationsTool,
		getUnrepliedMentionsTool,
		createPostTool,
	}
}

// addTool registers a typed handler behind the dispatch wrapper.
func addTool[In any](s *Server, tool *gomcp.Tool, h func(context.Context, In) (*gomcp.CallToolResult, error)) {
	gomcp.AddTool(s.mcp, tool, func(ctx context.Context, _ *gomcp.CallToolRequest, in In) (*gomcp.CallToolResult, any, error) {
		res := s.dispatch(ctx, tool.Name, func(ctx context.Context) (*gomcp.CallToolResult, error) {
			return h(ctx, in)
		})
		return res, nil, nil
	})
}

// dispatch runs one tool call with logging and error mapping. Handler errors
// (validation or upstream) become tool-level error results; the transport
// loop keeps reading subsequent requests either way.
func (s *Server) dispatch(ctx context.Context, name string, run func(context.Context) (*gomcp.CallToolResult, error)) *gomcp.CallToolResult {
	callID := uuid.New().String()
	s.logger.Debug("tools/call", "tool", name, "call_id", callID)

	res, err := run(ctx)
	if err != nil {
		s.logger.Warn("tool call failed",
			"tool", name,
			"call_id", callID,
			"error", err,
		)
		return errorResult("%s", remoteMessage(err))
	}

	s.logger.Debug("tools/call complete",
		"tool", name,
		"call_id", callID,
		"is_error", res.IsError,
	)
	return res
}

// pageSize clamps a requested page size into the configured bounds, applying
// the default when the caller omitted the parameter.
func (s *Server) pageSize(requested int64) int64 {
	if requested == 0 {
		return s.limits.DefaultPageSize
	}
	if requested < 1 {
		return 1
	}
	if requested > s.limits.MaxPageSize {
		return s.limits.MaxPageSize
	}
	return requested
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations marks tools that only read from the network.
func readOnlyAnnotations() *gomcp.ToolAnnotations {
	return &gomcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(true),
	}
}

// writeAnnotations marks tools that publish content (additive, not destructive).
func writeAnnotations() *gomcp.ToolAnnotations {
	return &gomcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(true),
	}
}
