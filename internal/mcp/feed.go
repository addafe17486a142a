// ABOUTME: Feed and thread tools: get_author_feed, get_post_thread.

package mcp

import (
	"context"

	appbsky "github.com/bluesky-social/indigo/api/bsky"
	"github.com/google/jsonschema-go/jsonschema"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389/bsky-mcp/internal/bluesky"
)

// Bounds for get_post_thread depth, mirroring the upstream lexicon.
const (
	defaultThreadDepth = 6
	maxThreadDepth     = 1000
)

// feedFilters are the author-feed filters the upstream service accepts.
var feedFilters = []any{
	"posts_with_replies",
	"posts_no_replies",
	"posts_with_media",
	"posts_and_author_threads",
}

var getAuthorFeedTool = &gomcp.Tool{
	Name:        "get_author_feed",
	Description: "Get a view of an actor's author feed (posts and reposts by the author)",
	Annotations: readOnlyAnnotations(),
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"actor": {
				Type:        "string",
				Description: "Handle or DID of the account to fetch the feed of",
			},
			"limit": {
				Type:        "integer",
				Description: "Number of posts to fetch (default 10)",
				Minimum:     floatPtr(1),
				Maximum:     floatPtr(100),
			},
			"cursor": {
				Type:        "string",
				Description: "Pagination cursor from a previous page",
			},
			"filter": {
				Type:        "string",
				Description: "Which post types to include",
				Enum:        feedFilters,
			},
		},
		Required: []string{"actor"},
	},
}

var getPostThreadTool = &gomcp.Tool{
	Name:        "get_post_thread",
	Description: "Get a post and its reply thread",
	Annotations: readOnlyAnnotations(),
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"uri": {
				Type:        "string",
				Description: "AT URI of the post (at://repo/app.bsky.feed.post/rkey)",
			},
			"depth": {
				Type:        "integer",
				Description: "How many levels of replies to include (default 6)",
				Minimum:     floatPtr(0),
				Maximum:     floatPtr(maxThreadDepth),
			},
		},
		Required: []string{"uri"},
	},
}

type authorFeedArgs struct {
	Actor  string `json:"actor"`
	Limit  int64  `json:"limit,omitempty"`
	Cursor string `json:"cursor,omitempty"`
	Filter string `json:"filter,omitempty"`
}

type postThreadArgs struct {
	URI   string `json:"uri"`
	Depth int64  `json:"depth,omitempty"`
}

// authorFeedResult is the page returned to the caller.
type authorFeedResult struct {
	Feed   []*appbsky.FeedDefs_FeedViewPost `json:"feed"`
	Cursor *string                          `json:"cursor,omitempty"`
}

func (s *Server) handleGetAuthorFeed(ctx context.Context, args authorFeedArgs) (*gomcp.CallToolResult, error) {
	if args.Actor == "" {
		return nil, validationError("actor is required")
	}

	out, err := s.client.GetAuthorFeed(ctx, args.Actor, args.Cursor, args.Filter, s.pageSize(args.Limit))
	if err != nil {
		return nil, err
	}

	return jsonResult(authorFeedResult{Feed: out.Feed, Cursor: out.Cursor})
}

func (s *Server) handleGetPostThread(ctx context.Context, args postThreadArgs) (*gomcp.CallToolResult, error) {
	if args.URI == "" {
		return nil, validationError("uri is required")
	}
	if _, err := bluesky.ParseURI(args.URI); err != nil {
		return nil, validationError("%v", err)
	}

	depth := args.Depth
	if depth == 0 {
		depth = defaultThreadDepth
	}
	if depth > maxThreadDepth {
		depth = maxThreadDepth
	}

	out, err := s.client.GetPostThread(ctx, args.URI, depth, 0)
	if err != nil {
		return nil, err
	}

	return jsonResult(out.Thread)
}

// floatPtr returns a pointer to a float64 value, for schema bounds.
func floatPtr(f float64) *float64 {
	return &f
}
