// ABOUTME: Tests for reply reference resolution.
// ABOUTME: Verifies root vs parent computation across nested threads.

package bluesky

import (
	"context"
	"errors"
	"testing"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGetter serves post records from a fixed map keyed by AT URI.
type stubGetter struct {
	records map[string]*PostRecord
}

func (g *stubGetter) GetPost(_ context.Context, uri string) (*PostRecord, error) {
	rec, ok := g.records[uri]
	if !ok {
		return nil, errors.New("record not found")
	}
	return rec, nil
}

const (
	uriA = "at://did:plc:alice/app.bsky.feed.post/aaa"
	uriB = "at://did:plc:bob/app.bsky.feed.post/bbb"
)

func TestReplyRefs_TopLevelParent(t *testing.T) {
	// A is not itself a reply: replying to A makes A both parent and root.
	getter := &stubGetter{records: map[string]*PostRecord{
		uriA: {
			Ref:  PostRef{URI: uriA, CID: "cid-a"},
			Post: &appbsky.FeedPost{Text: "thread start"},
		},
	}}

	refs, err := ReplyRefs(context.Background(), getter, uriA)
	require.NoError(t, err)

	assert.Equal(t, uriA, refs.Parent.Uri)
	assert.Equal(t, "cid-a", refs.Parent.Cid)
	assert.Equal(t, uriA, refs.Root.Uri)
	assert.Equal(t, "cid-a", refs.Root.Cid)
}

func TestReplyRefs_NestedParent(t *testing.T) {
	// Thread A -> B; replying under B must set parent=B, root=A.
	getter := &stubGetter{records: map[string]*PostRecord{
		uriB: {
			Ref: PostRef{URI: uriB, CID: "cid-b"},
			Post: &appbsky.FeedPost{
				Text: "reply to A",
				Reply: &appbsky.FeedPost_ReplyRef{
					Root:   &comatproto.RepoStrongRef{Uri: uriA, Cid: "cid-a"},
					Parent: &comatproto.RepoStrongRef{Uri: uriA, Cid: "cid-a"},
				},
			},
		},
	}}

	refs, err := ReplyRefs(context.Background(), getter, uriB)
	require.NoError(t, err)

	assert.Equal(t, uriB, refs.Parent.Uri)
	assert.Equal(t, "cid-b", refs.Parent.Cid)
	assert.Equal(t, uriA, refs.Root.Uri)
	assert.Equal(t, "cid-a", refs.Root.Cid)
}

func TestReplyRefs_TargetNotFound(t *testing.T) {
	getter := &stubGetter{records: map[string]*PostRecord{}}

	_, err := ReplyRefs(context.Background(), getter, uriA)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reply target")
}
