// ABOUTME: Shared test stubs for the tool handlers.
// ABOUTME: stubClient implements bluesky.Client with call counting and per-method hooks.

package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	appbsky "github.com/bluesky-social/indigo/api/bsky"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/2389/bsky-mcp/internal/bluesky"
	"github.com/2389/bsky-mcp/internal/config"
)

// stubClient is a bluesky.Client whose behavior is configured per test.
// Unset hooks return empty successful responses. Every call is counted so
// tests can assert that validation failures never reach the remote.
type stubClient struct {
	did    string
	handle string
	calls  map[string]int

	profileFn    func(ctx context.Context, actor string) (*appbsky.ActorDefs_ProfileViewDetailed, error)
	feedFn       func(ctx context.Context, actor, cursor, filter string, limit int64) (*appbsky.FeedGetAuthorFeed_Output, error)
	threadFn     func(ctx context.Context, uri string, depth, parentHeight int64) (*appbsky.FeedGetPostThread_Output, error)
	searchFn     func(ctx context.Context, query, cursor, sort string, limit int64) (*appbsky.FeedSearchPosts_Output, error)
	notifsFn     func(ctx context.Context, cursor string, limit int64) (*appbsky.NotificationListNotifications_Output, error)
	getPostFn    func(ctx context.Context, uri string) (*bluesky.PostRecord, error)
	createPostFn func(ctx context.Context, post *appbsky.FeedPost) (*bluesky.PostRef, error)
	resolveFn    func(ctx context.Context, handle string) (string, error)
}

var _ bluesky.Client = (*stubClient)(nil)

func newStubClient() *stubClient {
	return &stubClient{
		did:    "did:plc:me",
		handle: "me.test",
		calls:  make(map[string]int),
	}
}

func (c *stubClient) DID() string    { return c.did }
func (c *stubClient) Handle() string { return c.handle }

func (c *stubClient) GetProfile(ctx context.Context, actor string) (*appbsky.ActorDefs_ProfileViewDetailed, error) {
	c.calls["GetProfile"]++
	if c.profileFn != nil {
		return c.profileFn(ctx, actor)
	}
	return &appbsky.ActorDefs_ProfileViewDetailed{Did: "did:plc:stub", Handle: actor}, nil
}

func (c *stubClient) GetAuthorFeed(ctx context.Context, actor, cursor, filter string, limit int64) (*appbsky.FeedGetAuthorFeed_Output, error) {
	c.calls["GetAuthorFeed"]++
	if c.feedFn != nil {
		return c.feedFn(ctx, actor, cursor, filter, limit)
	}
	return &appbsky.FeedGetAuthorFeed_Output{}, nil
}

func (c *stubClient) GetPostThread(ctx context.Context, uri string, depth, parentHeight int64) (*appbsky.FeedGetPostThread_Output, error) {
	c.calls["GetPostThread"]++
	if c.threadFn != nil {
		return c.threadFn(ctx, uri, depth, parentHeight)
	}
	return &appbsky.FeedGetPostThread_Output{}, nil
}

func (c *stubClient) SearchPosts(ctx context.Context, query, cursor, sort string, limit int64) (*appbsky.FeedSearchPosts_Output, error) {
	c.calls["SearchPosts"]++
	if c.searchFn != nil {
		return c.searchFn(ctx, query, cursor, sort, limit)
	}
	return &appbsky.FeedSearchPosts_Output{}, nil
}

func (c *stubClient) ListNotifications(ctx context.Context, cursor string, limit int64) (*appbsky.NotificationListNotifications_Output, error) {
	c.calls["ListNotifications"]++
	if c.notifsFn != nil {
		return c.notifsFn(ctx, cursor, limit)
	}
	return &appbsky.NotificationListNotifications_Output{}, nil
}

func (c *stubClient) GetPost(ctx context.Context, uri string) (*bluesky.PostRecord, error) {
	c.calls["GetPost"]++
	if c.getPostFn != nil {
		return c.getPostFn(ctx, uri)
	}
	return &bluesky.PostRecord{
		Ref:  bluesky.PostRef{URI: uri, CID: "stub-cid"},
		Post: &appbsky.FeedPost{Text: "stub"},
	}, nil
}

func (c *stubClient) CreatePost(ctx context.Context, post *appbsky.FeedPost) (*bluesky.PostRef, error) {
	c.calls["CreatePost"]++
	if c.createPostFn != nil {
		return c.createPostFn(ctx, post)
	}
	return &bluesky.PostRef{URI: "at://did:plc:me/app.bsky.feed.post/new", CID: "new-cid"}, nil
}

func (c *stubClient) ResolveHandle(ctx context.Context, handle string) (string, error) {
	c.calls["ResolveHandle"]++
	if c.resolveFn != nil {
		return c.resolveFn(ctx, handle)
	}
	return "did:plc:resolved", nil
}

// remoteCalls sums every counted call, for "no remote call happened" checks.
func (c *stubClient) remoteCalls() int {
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

func newTestServer(t *testing.T, client *stubClient) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewServer(client, config.Default(), logger)
	require.NoError(t, err)
	return s
}

// resultText extracts the single text content block from a tool result.
func resultText(t *testing.T, res *gomcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*gomcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

// decodeResult unmarshals a JSON tool result into out.
func decodeResult(t *testing.T, res *gomcp.CallToolResult, out any) {
	t.Helper()
	require.False(t, res.IsError)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), out))
}
