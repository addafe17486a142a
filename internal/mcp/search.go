// ABOUTME: Post search tool: search_posts.

package mcp

import (
	"context"

	appbsky "github.com/bluesky-social/indigo/api/bsky"
	"github.com/google/jsonschema-go/jsonschema"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var searchPostsTool = &gomcp.Tool{
	Name:        "search_posts",
	Description: "Search for posts matching a query",
	Annotations: readOnlyAnnotations(),
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				Description: "Search query string; Lucene-style syntax is supported upstream",
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
			"sort": {
				Type:        "string",
				Description: "Result ordering",
				Enum:        []any{"top", "latest"},
			},
		},
		Required: []string{"query"},
	},
}

type searchPostsArgs struct {
	Query  string `json:"query"`
	Limit  int64  `json:"limit,omitempty"`
	Cursor string `json:"cursor,omitempty"`
	Sort   string `json:"sort,omitempty"`
}

// searchPostsResult is the page returned to the caller.
type searchPostsResult struct {
	Posts     []*appbsky.FeedDefs_PostView `json:"posts"`
	Cursor    *string                      `json:"cursor,omitempty"`
	HitsTotal *int64                       `json:"hitsTotal,omitempty"`
}

func (s *Server) handleSearchPosts(ctx context.Context, args searchPostsArgs) (*gomcp.CallToolResult, error) {
	if args.Query == "" {
		return nil, validationError("query is required")
	}

	out, err := s.client.SearchPosts(ctx, args.Query, args.Cursor, args.Sort, s.pageSize(args.Limit))
	if err != nil {
		return nil, err
	}

	return jsonResult(searchPostsResult{
		Posts:     out.Posts,
		Cursor:    out.Cursor,
		HitsTotal: out.HitsTotal,
	})
}
