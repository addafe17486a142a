// ABOUTME: Tests for the create_post tool handler.
// ABOUTME: Covers reply threading, facet handling, and argument validation.

package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/bsky-mcp/internal/bluesky"
)

func TestHandleCreatePost(t *testing.T) {
	client := newStubClient()
	var created *appbsky.FeedPost
	client.createPostFn = func(_ context.Context, post *appbsky.FeedPost) (*bluesky.PostRef, error) {
		created = post
		return &bluesky.PostRef{URI: "at://did:plc:me/app.bsky.feed.post/new", CID: "new-cid"}, nil
	}
	s := newTestServer(t, client)

	res, err := s.handleCreatePost(context.Background(), createPostArgs{Text: "hello world"})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "hello world", created.Text)
	assert.Nil(t, created.Reply)
	_, perr := time.Parse(time.RFC3339, created.CreatedAt)
	assert.NoError(t, perr, "createdAt must be RFC 3339")

	var got bluesky.PostRef
	decodeResult(t, res, &got)
	assert.Equal(t, "at://did:plc:me/app.bsky.feed.post/new", got.URI)
	assert.Equal(t, "new-cid", got.CID)
}

func TestHandleCreatePost_AutoDetectsFacets(t *testing.T) {
	client := newStubClient()
	var created *appbsky.FeedPost
	client.createPostFn = func(_ context.Context, post *appbsky.FeedPost) (*bluesky.PostRef, error) {
		created = post
		return &bluesky.PostRef{}, nil
	}
	s := newTestServer(t, client)

	_, err := s.handleCreatePost(context.Background(), createPostArgs{
		Text: "read https://example.com/docs now",
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	require.Len(t, created.Facets, 1)
	feat := created.Facets[0].Features[0]
	require.NotNil(t, feat.RichtextFacet_Link)
	assert.Equal(t, "https://example.com/docs", feat.RichtextFacet_Link.Uri)
	assert.Equal(t, int64(5), created.Facets[0].Index.ByteStart)
	assert.Equal(t, int64(29), created.Facets[0].Index.ByteEnd)
}

func TestHandleCreatePost_ReplyToTopLevelPost(t *testing.T) {
	const parentURI = "at://did:plc:alice/app.bsky.feed.post/root1"

	client := newStubClient()
	client.getPostFn = func(_ context.Context, uri string) (*bluesky.PostRecord, error) {
		require.Equal(t, parentURI, uri)
		return &bluesky.PostRecord{
			Ref:  bluesky.PostRef{URI: parentURI, CID: "cid-root"},
			Post: &appbsky.FeedPost{Text: "original"},
		}, nil
	}
	var created *appbsky.FeedPost
	client.createPostFn = func(_ context.Context, post *appbsky.FeedPost) (*bluesky.PostRef, error) {
		created = post
		return &bluesky.PostRef{}, nil
	}
	s := newTestServer(t, client)

	_, err := s.handleCreatePost(context.Background(), createPostArgs{
		Text:    "replying",
		ReplyTo: parentURI,
	})
	require.NoError(t, err)

	require.NotNil(t, created.Reply)
	assert.Equal(t, parentURI, created.Reply.Parent.Uri)
	assert.Equal(t, parentURI, created.Reply.Root.Uri, "top-level parent is its own root")
	assert.Equal(t, "cid-root", created.Reply.Root.Cid)
}

func TestHandleCreatePost_ReplyDeepInThread(t *testing.T) {
	const (
		rootURI   = "at://did:plc:alice/app.bsky.feed.post/root1"
		parentURI = "at://did:plc:bob/app.bsky.feed.post/mid2"
	)

	client := newStubClient()
	client.getPostFn = func(_ context.Context, uri string) (*bluesky.PostRecord, error) {
		require.Equal(t, parentURI, uri)
		return &bluesky.PostRecord{
			Ref: bluesky.PostRef{URI: parentURI, CID: "cid-mid"},
			Post: &appbsky.FeedPost{
				Text: "a reply partway down",
				Reply: &appbsky.FeedPost_ReplyRef{
					Root:   &comatproto.RepoStrongRef{Uri: rootURI, Cid: "cid-root"},
					Parent: &comatproto.RepoStrongRef{Uri: "at://did:plc:x/app.bsky.feed.post/other", Cid: "cid-x"},
				},
			},
		}, nil
	}
	var created *appbsky.FeedPost
	client.createPostFn = func(_ context.Context, post *appbsky.FeedPost) (*bluesky.PostRef, error) {
		created = post
		return &bluesky.PostRef{}, nil
	}
	s := newTestServer(t, client)

	_, err := s.handleCreatePost(context.Background(), createPostArgs{
		Text:    "chiming in",
		ReplyTo: parentURI,
	})
	require.NoError(t, err)

	require.NotNil(t, created.Reply)
	assert.Equal(t, parentURI, created.Reply.Parent.Uri)
	assert.Equal(t, rootURI, created.Reply.Root.Uri, "root comes from the parent's own reply ref")
	assert.Equal(t, "cid-root", created.Reply.Root.Cid)
}

func TestHandleCreatePost_ExplicitFacets(t *testing.T) {
	client := newStubClient()
	client.resolveFn = func(_ context.Context, handle string) (string, error) {
		assert.Equal(t, "alice.test", handle)
		return "did:plc:alice", nil
	}
	var created *appbsky.FeedPost
	client.createPostFn = func(_ context.Context, post *appbsky.FeedPost) (*bluesky.PostRef, error) {
		created = post
		return &bluesky.PostRef{}, nil
	}
	s := newTestServer(t, client)

	text := "cc @alice.test #golang"
	_, err := s.handleCreatePost(context.Background(), createPostArgs{
		Text: text,
		Facets: []facetArg{
			{Type: "mention", Value: "alice.test", ByteStart: 3, ByteEnd: 14},
			{Type: "tag", Value: "golang", ByteStart: 15, ByteEnd: 22},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	require.Len(t, created.Facets, 2)
	require.NotNil(t, created.Facets[0].Features[0].RichtextFacet_Mention)
	assert.Equal(t, "did:plc:alice", created.Facets[0].Features[0].RichtextFacet_Mention.Did)
	require.NotNil(t, created.Facets[1].Features[0].RichtextFacet_Tag)
	assert.Equal(t, "golang", created.Facets[1].Features[0].RichtextFacet_Tag.Tag)
}

func TestHandleCreatePost_Validation(t *testing.T) {
	tests := []struct {
		name string
		args createPostArgs
	}{
		{"missing text", createPostArgs{}},
		{"text too long", createPostArgs{Text: strings.Repeat("x", maxPostLength+1)}},
		{"bad reply uri", createPostArgs{Text: "hi", ReplyTo: "not-an-at-uri"}},
		{"bad facet type", createPostArgs{
			Text:   "hi there",
			Facets: []facetArg{{Type: "bold", Value: "hi", ByteStart: 0, ByteEnd: 2}},
		}},
		{"facet range past end", createPostArgs{
			Text:   "hi",
			Facets: []facetArg{{Type: "tag", Value: "hi", ByteStart: 0, ByteEnd: 10}},
		}},
		{"facet empty value", createPostArgs{
			Text:   "hi there",
			Facets: []facetArg{{Type: "link", Value: "", ByteStart: 0, ByteEnd: 2}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStubClient()
			s := newTestServer(t, client)

			_, err := s.handleCreatePost(context.Background(), tt.args)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errInvalidParams))
			assert.Zero(t, client.calls["CreatePost"], "nothing may be published on bad input")
		})
	}
}

func TestHandleCreatePost_ReplyTargetMissing(t *testing.T) {
	client := newStubClient()
	client.getPostFn = func(context.Context, string) (*bluesky.PostRecord, error) {
		return nil, errors.New("record not found")
	}
	s := newTestServer(t, client)

	_, err := s.handleCreatePost(context.Background(), createPostArgs{
		Text:    "hi",
		ReplyTo: "at://did:plc:alice/app.bsky.feed.post/gone",
	})
	require.Error(t, err)
	assert.Zero(t, client.calls["CreatePost"])
}
