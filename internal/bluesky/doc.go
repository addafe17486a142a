// Package bluesky wraps the upstream Bluesky API behind a small capability
// interface so the tool layer never touches the wire client directly.
//
// # Overview
//
// The package owns exactly one piece of long-lived state: the authenticated
// session created by Login at process startup. Everything else is a stateless
// translation between tool parameters and XRPC calls.
//
// # Capability Interface
//
// Client enumerates the operations the tool catalog needs: identity, profile
// fetch, author feed, post thread, search, notification listing, record fetch,
// post creation, and handle resolution. Tests substitute a stub Client; the
// production implementation is Agent.
//
// # Session Lifetime
//
// Login performs com.atproto.server.createSession once and fails fast on any
// error; there is deliberately no retry or backoff at startup. The access
// token's exp claim is decoded (unverified) and the session is refreshed via
// com.atproto.server.refreshSession shortly before expiry. Refreshes are
// serialized: at most one is in flight, and concurrent API calls wait for it.
//
// # Rich Text
//
// DetectFacets finds links, @mentions, and #tags in post text with UTF-8 byte
// offsets; BuildFacets additionally resolves mention handles to DIDs, dropping
// mentions whose handle does not resolve rather than failing the post.
package bluesky
