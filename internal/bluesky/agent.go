// ABOUTME: XRPC-backed implementation of the Client capability interface.
// ABOUTME: Owns the authenticated session and its serialized token refresh.

package bluesky

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"
	"github.com/golang-jwt/jwt/v5"
)

// postCollection is the NSID of the Bluesky post record collection.
const postCollection = "app.bsky.feed.post"

// refreshSkew is how long before access token expiry a refresh is attempted.
const refreshSkew = time.Minute

// Agent is the production Client backed by an authenticated XRPC session.
type Agent struct {
	xc     *xrpc.Client
	logger *slog.Logger

	// mu serializes token refresh against in-flight API calls. API calls
	// hold the read side for their duration; a refresh takes the write side,
	// so at most one refresh runs and no call observes a half-swapped token.
	mu           sync.RWMutex
	accessExpiry time.Time
}

var _ Client = (*Agent)(nil)

// Login exchanges the identifier / app-password pair for a session with the
// service at host. One network round trip; any failure is returned as-is with
// no retry, matching the fail-fast startup contract.
func Login(ctx context.Context, host, identifier, password string, logger *slog.Logger) (*Agent, error) {
	if logger == nil {
		logger = slog.Default()
	}

	xc := &xrpc.Client{
		Host:   host,
		Client: &http.Client{Timeout: 30 * time.Second},
	}

	out, err := comatproto.ServerCreateSession(ctx, xc, &comatproto.ServerCreateSession_Input{
		Identifier: identifier,
		Password:   password,
	})
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	xc.Auth = &xrpc.AuthInfo{
		AccessJwt:  out.AccessJwt,
		RefreshJwt: out.RefreshJwt,
		Did:        out.Did,
		Handle:     out.Handle,
	}

	a := &Agent{
		xc:           xc,
		logger:       logger,
		accessExpiry: tokenExpiry(out.AccessJwt),
	}

	logger.Info("session created",
		"handle", out.Handle,
		"did", out.Did,
		"access_expiry", a.accessExpiry,
	)

	return a, nil
}

// DID returns the session account's DID.
func (a *Agent) DID() string {
	return a.xc.Auth.Did
}

// Handle returns the session account's handle.
func (a *Agent) Handle() string {
	return a.xc.Auth.Handle
}

func (a *Agent) GetProfile(ctx context.Context, actor string) (*appbsky.ActorDefs_ProfileViewDetailed, error) {
	var out *appbsky.ActorDefs_ProfileViewDetailed
	err := a.do(ctx, func(xc *xrpc.Client) error {
		var err error
		out, err = appbsky.ActorGetProfile(ctx, xc, actor)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching profile for %s: %w", actor, err)
	}
	return out, nil
}

func (a *Agent) GetAuthorFeed(ctx context.Context, actor, cursor, filter string, limit int64) (*appbsky.FeedGetAuthorFeed_Output, error) {
	var out *appbsky.FeedGetAuthorFeed_Output
	err := a.do(ctx, func(xc *xrpc.Client) error {
		var err error
		out, err = appbsky.FeedGetAuthorFeed(ctx, xc, actor, cursor, filter, false, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching author feed for %s: %w", actor, err)
	}
	return out, nil
}

func (a *Agent) GetPostThread(ctx context.Context, uri string, depth, parentHeight int64) (*appbsky.FeedGetPostThread_Output, error) {
	var out *appbsky.FeedGetPostThread_Output
	err := a.do(ctx, func(xc *xrpc.Client) error {
		var err error
		out, err = appbsky.FeedGetPostThread(ctx, xc, depth, parentHeight, uri)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching thread for %s: %w", uri, err)
	}
	return out, nil
}

func (a *Agent) SearchPosts(ctx context.Context, query, cursor, sort string, limit int64) (*appbsky.FeedSearchPosts_Output, error) {
	var out *appbsky.FeedSearchPosts_Output
	err := a.do(ctx, func(xc *xrpc.Client) error {
		var err error
		out, err = appbsky.FeedSearchPosts(ctx, xc, "", cursor, "", "", limit, "", query, "", sort, nil, "", "")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("searching posts: %w", err)
	}
	return out, nil
}

func (a *Agent) ListNotifications(ctx context.Context, cursor string, limit int64) (*appbsky.NotificationListNotifications_Output, error) {
	var out *appbsky.NotificationListNotifications_Output
	err := a.do(ctx, func(xc *xrpc.Client) error {
		var err error
		out, err = appbsky.NotificationListNotifications(ctx, xc, cursor, limit, false, nil, "")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return out, nil
}

func (a *Agent) GetPost(ctx context.Context, uri string) (*PostRecord, error) {
	parsed, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if parsed.Collection != postCollection {
		return nil, fmt.Errorf("not a post record: %s", uri)
	}

	var out *comatproto.RepoGetRecord_Output
	err = a.do(ctx, func(xc *xrpc.Client) error {
		var err error
		out, err = comatproto.RepoGetRecord(ctx, xc, "", parsed.Collection, parsed.Repo, parsed.RKey)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching record %s: %w", uri, err)
	}
	if out.Cid == nil {
		return nil, fmt.Errorf("record %s has no cid", uri)
	}

	post, ok := out.Value.Val.(*appbsky.FeedPost)
	if !ok {
		return nil, fmt.Errorf("record %s is not a post", uri)
	}

	return &PostRecord{
		Ref:  PostRef{URI: out.Uri, CID: *out.Cid},
		Post: post,
	}, nil
}

func (a *Agent) CreatePost(ctx context.Context, post *appbsky.FeedPost) (*PostRef, error) {
	post.LexiconTypeID = postCollection
	if post.CreatedAt == "" {
		post.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	input := &comatproto.RepoCreateRecord_Input{
		Collection: postCollection,
		Repo:       a.DID(),
		Record:     &lexutil.LexiconTypeDecoder{Val: post},
	}

	var out *comatproto.RepoCreateRecord_Output
	err := a.do(ctx, func(xc *xrpc.Client) error {
		var err error
		out, err = comatproto.RepoCreateRecord(ctx, xc, input)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	return &PostRef{URI: out.Uri, CID: out.Cid}, nil
}

func (a *Agent) ResolveHandle(ctx context.Context, handle string) (string, error) {
	var out *comatproto.IdentityResolveHandle_Output
	err := a.do(ctx, func(xc *xrpc.Client) error {
		var err error
		out, err = comatproto.IdentityResolveHandle(ctx, xc, handle)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("resolving handle %s: %w", handle, err)
	}
	return out.Did, nil
}

// do runs one API call, refreshing the session first if the access token is
// close to expiry. The call holds the read lock so a refresh cannot swap
// tokens underneath it.
func (a *Agent) do(ctx context.Context, call func(*xrpc.Client) error) error {
	if err := a.refreshIfNeeded(ctx); err != nil {
		return err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return call(a.xc)
}

// refreshIfNeeded refreshes the session when the access token expires within
// refreshSkew. The write lock guarantees at most one refresh in flight; a
// second caller blocked on the lock re-checks expiry and returns immediately.
func (a *Agent) refreshIfNeeded(ctx context.Context) error {
	a.mu.RLock()
	needed := a.needsRefresh()
	a.mu.RUnlock()
	if !needed {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.needsRefresh() {
		return nil
	}

	// refreshSession authenticates with the refresh token in place of the
	// access token, then hands back a fresh pair.
	access := a.xc.Auth.AccessJwt
	a.xc.Auth.AccessJwt = a.xc.Auth.RefreshJwt
	out, err := comatproto.ServerRefreshSession(ctx, a.xc)
	if err != nil {
		a.xc.Auth.AccessJwt = access
		return fmt.Errorf("refreshing session: %w", err)
	}

	a.xc.Auth.AccessJwt = out.AccessJwt
	a.xc.Auth.RefreshJwt = out.RefreshJwt
	a.accessExpiry = tokenExpiry(out.AccessJwt)

	a.logger.Debug("session refreshed", "access_expiry", a.accessExpiry)
	return nil
}

// needsRefresh reports whether the access token expires within refreshSkew.
// A zero expiry means the token carried no parseable exp claim; in that case
// we never refresh proactively and rely on the token being long-lived.
func (a *Agent) needsRefresh() bool {
	return !a.accessExpiry.IsZero() && time.Until(a.accessExpiry) <= refreshSkew
}

// tokenExpiry decodes the exp claim of a JWT without verifying its signature.
// Verification is the service's job; we only need the timestamp.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
