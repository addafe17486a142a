// ABOUTME: Capability interface for the upstream Bluesky API.
// ABOUTME: Tool handlers depend on this, never on the wire client, so tests can stub it.

package bluesky

import (
	"context"

	appbsky "github.com/bluesky-social/indigo/api/bsky"
)

// PostRef identifies a post record by AT URI and content hash.
type PostRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// PostRecord is a fetched post record together with its reference.
type PostRecord struct {
	Ref  PostRef
	Post *appbsky.FeedPost
}

// Client is the capability surface the tool catalog is built on. All
// operations run against the single authenticated session; blocking calls
// take a context for cancellation.
type Client interface {
	// DID returns the session account's decentralized identifier.
	DID() string

	// Handle returns the session account's handle.
	Handle() string

	// GetProfile returns the detailed profile view for a handle or DID.
	GetProfile(ctx context.Context, actor string) (*appbsky.ActorDefs_ProfileViewDetailed, error)

	// GetAuthorFeed returns a page of posts and reposts by the actor.
	// filter selects the upstream feed filter; empty means the service default.
	GetAuthorFeed(ctx context.Context, actor, cursor, filter string, limit int64) (*appbsky.FeedGetAuthorFeed_Output, error)

	// GetPostThread returns the thread view around the post at uri.
	GetPostThread(ctx context.Context, uri string, depth, parentHeight int64) (*appbsky.FeedGetPostThread_Output, error)

	// SearchPosts returns posts matching the query.
	SearchPosts(ctx context.Context, query, cursor, sort string, limit int64) (*appbsky.FeedSearchPosts_Output, error)

	// ListNotifications returns a page of the session account's notifications.
	ListNotifications(ctx context.Context, cursor string, limit int64) (*appbsky.NotificationListNotifications_Output, error)

	// GetPost fetches the post record at the given AT URI.
	GetPost(ctx context.Context, uri string) (*PostRecord, error)

	// CreatePost writes a new post record to the session account's repo and
	// returns its reference.
	CreatePost(ctx context.Context, post *appbsky.FeedPost) (*PostRef, error)

	// ResolveHandle resolves a handle to its DID.
	ResolveHandle(ctx context.Context, handle string) (string, error)
}

// HandleResolver is the subset of Client needed to resolve mention facets.
type HandleResolver interface {
	ResolveHandle(ctx context.Context, handle string) (string, error)
}

// PostGetter is the subset of Client needed to resolve reply references.
type PostGetter interface {
	GetPost(ctx context.Context, uri string) (*PostRecord, error)
}
