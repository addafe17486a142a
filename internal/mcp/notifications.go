// ABOUTME: Notification tools: list_notifications, get_unreplied_mentions.
// ABOUTME: Mention filtering is a client-side enrichment over one notification page.

package mcp

import (
	"context"

	appbsky "github.com/bluesky-social/indigo/api/bsky"
	"github.com/google/jsonschema-go/jsonschema"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"
)

// reasonMention is the notification reason for being mentioned in a post.
const reasonMention = "mention"

var listNotificationsTool = &gomcp.Tool{
	Name:        "list_notifications",
	Description: "List the current user's notifications",
	Annotations: readOnlyAnnotations(),
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"limit": {
				Type:        "integer",
				Description: "Number of notifications to fetch (default 10)",
				Minimum:     floatPtr(1),
				Maximum:     floatPtr(100),
			},
			"cursor": {
				Type:        "string",
				Description: "Pagination cursor from a previous page",
			},
		},
	},
}

var getUnrepliedMentionsTool = &gomcp.Tool{
	Name:        "get_unreplied_mentions",
	Description: "List mentions of the current user that they have not replied to yet",
	Annotations: readOnlyAnnotations(),
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"limit": {
				Type:        "integer",
				Description: "Number of notifications to scan (default 10)",
				Minimum:     floatPtr(1),
				Maximum:     floatPtr(100),
			},
			"cursor": {
				Type:        "string",
				Description: "Pagination cursor from a previous page",
			},
		},
	},
}

type notificationsArgs struct {
	Limit  int64  `json:"limit,omitempty"`
	Cursor string `json:"cursor,omitempty"`
}

// mentionAuthor is the slimmed author view in mention listings.
type mentionAuthor struct {
	DID         string  `json:"did"`
	Handle      string  `json:"handle"`
	DisplayName *string `json:"displayName,omitempty"`
}

// mentionView is one unreplied mention in the tool result.
type mentionView struct {
	URI       string        `json:"uri"`
	CID       string        `json:"cid"`
	Author    mentionAuthor `json:"author"`
	Text      string        `json:"text,omitempty"`
	IndexedAt string        `json:"indexedAt"`
	IsRead    bool          `json:"isRead"`
}

// unrepliedMentionsResult is the page returned by get_unreplied_mentions.
// The cursor pages over notifications, not mentions: a page can legitimately
// come back empty while more notifications remain.
type unrepliedMentionsResult struct {
	Mentions []*mentionView `json:"mentions"`
	Cursor   *string        `json:"cursor,omitempty"`
}

func (s *Server) handleListNotifications(ctx context.Context, args notificationsArgs) (*gomcp.CallToolResult, error) {
	out, err := s.client.ListNotifications(ctx, args.Cursor, s.pageSize(args.Limit))
	if err != nil {
		return nil, err
	}

	return jsonResult(out)
}

func (s *Server) handleGetUnrepliedMentions(ctx context.Context, args notificationsArgs) (*gomcp.CallToolResult, error) {
	out, err := s.client.ListNotifications(ctx, args.Cursor, s.pageSize(args.Limit))
	if err != nil {
		return nil, err
	}

	var mentions []*appbsky.NotificationListNotifications_Notification
	for _, n := range out.Notifications {
		if n.Reason == reasonMention {
			mentions = append(mentions, n)
		}
	}

	// Enrich each mention with a thread lookup, in parallel but bounded.
	// views is indexed by mention position so the original order survives.
	views := make([]*mentionView, len(mentions))
	var g errgroup.Group
	g.SetLimit(mentionConcurrency)
	for i, n := range mentions {
		g.Go(func() error {
			replied, err := s.callerReplied(ctx, n.Uri)
			if err != nil {
				// Partial failure: drop this mention, keep the listing.
				s.logger.Warn("excluding mention from listing",
					"uri", n.Uri,
					"error", err,
				)
				return nil
			}
			if !replied {
				views[i] = newMentionView(n)
			}
			return nil
		})
	}
	_ = g.Wait()

	unreplied := make([]*mentionView, 0, len(views))
	for _, v := range views {
		if v != nil {
			unreplied = append(unreplied, v)
		}
	}

	return jsonResult(unrepliedMentionsResult{Mentions: unreplied, Cursor: out.Cursor})
}

// callerReplied reports whether the session account already has a direct
// reply under the post at uri.
func (s *Server) callerReplied(ctx context.Context, uri string) (bool, error) {
	out, err := s.client.GetPostThread(ctx, uri, 1, 0)
	if err != nil {
		return false, err
	}

	thread := out.Thread
	if thread == nil || thread.FeedDefs_ThreadViewPost == nil {
		// Deleted or blocked posts come back as other thread view variants.
		return false, nil
	}

	for _, reply := range thread.FeedDefs_ThreadViewPost.Replies {
		tv := reply.FeedDefs_ThreadViewPost
		if tv == nil || tv.Post == nil || tv.Post.Author == nil {
			continue
		}
		if tv.Post.Author.Did == s.client.DID() {
			return true, nil
		}
	}
	return false, nil
}

// newMentionView projects a notification into the mention listing shape.
func newMentionView(n *appbsky.NotificationListNotifications_Notification) *mentionView {
	v := &mentionView{
		URI:       n.Uri,
		CID:       n.Cid,
		IndexedAt: n.IndexedAt,
		IsRead:    n.IsRead,
	}
	if n.Author != nil {
		v.Author = mentionAuthor{
			DID:         n.Author.Did,
			Handle:      n.Author.Handle,
			DisplayName: n.Author.DisplayName,
		}
	}
	if n.Record != nil {
		if post, ok := n.Record.Val.(*appbsky.FeedPost); ok {
			v.Text = post.Text
		}
	}
	return v
}
