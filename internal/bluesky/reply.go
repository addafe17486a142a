// ABOUTME: Reply reference resolution for post creation.
// ABOUTME: Computes the parent and thread-root strong refs for a reply target.

package bluesky

import (
	"context"
	"fmt"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
)

// ReplyRefs builds the reply block for a post created under parentURI.
// The parent ref always points at the target post. The root ref points at the
// thread's first post: when the target is itself a reply, its own root is
// reused; otherwise the target is the root. Getting the root wrong breaks
// thread display for every client of the network, so this is resolved from
// the actual parent record rather than trusted from the caller.
func ReplyRefs(ctx context.Context, getter PostGetter, parentURI string) (*appbsky.FeedPost_ReplyRef, error) {
	rec, err := getter.GetPost(ctx, parentURI)
	if err != nil {
		return nil, fmt.Errorf("resolving reply target: %w", err)
	}

	parent := &comatproto.RepoStrongRef{
		Uri: rec.Ref.URI,
		Cid: rec.Ref.CID,
	}

	root := parent
	if rec.Post.Reply != nil && rec.Post.Reply.Root != nil {
		root = &comatproto.RepoStrongRef{
			Uri: rec.Post.Reply.Root.Uri,
			Cid: rec.Post.Reply.Root.Cid,
		}
	}

	return &appbsky.FeedPost_ReplyRef{Parent: parent, Root: root}, nil
}
