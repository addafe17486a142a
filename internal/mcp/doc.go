// Package mcp exposes the Bluesky tool catalog over the Model Context
// Protocol.
//
// # Overview
//
// The package is a dispatcher: it declares a fixed set of tools with JSON
// schemas, validates arguments, invokes the bluesky.Client capability for
// the authenticated session, and serializes results. Transport framing
// (JSON-RPC envelopes, stdio line handling, tools/list) is the SDK's job.
//
// # Tools
//
// The catalog is fixed at construction time:
//
//   - get_did: the session account's DID
//   - get_profile: detailed profile view of an actor
//   - get_author_feed: page of posts and reposts by an actor
//   - get_post_thread: a post with its reply thread
//   - search_posts: posts matching a query
//   - list_notifications: page of the session account's notifications
//   - get_unreplied_mentions: mentions the session account has not replied to
//   - create_post: create a post, optionally as a reply with rich-text facets
//
// # Error Handling
//
// Validation failures and upstream failures both surface as tool-level error
// results; the stdio loop keeps reading. Only get_unreplied_mentions has
// partial-failure semantics: a mention whose enrichment lookup fails is
// excluded from the listing instead of failing the call.
//
// # Result Shape
//
// Results are JSON text content. Timestamp fields (keys ending in "At") are
// rewritten from service time to the local timezone before serialization.
package mcp
