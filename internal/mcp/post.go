// ABOUTME: Post creation tool: create_post.
// ABOUTME: Handles reply references and rich-text facets (explicit or auto-detected).

package mcp

import (
	"context"
	"time"

	appbsky "github.com/bluesky-social/indigo/api/bsky"
	"github.com/google/jsonschema-go/jsonschema"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389/bsky-mcp/internal/bluesky"
)

// maxPostLength is the upstream grapheme limit; enforced here on bytes only
// as a cheap first check, the service enforces the real one.
const maxPostLength = 3000

var createPostTool = &gomcp.Tool{
	Name:        "create_post",
	Description: "Post a new message, optionally as a reply, with rich-text facets detected automatically unless supplied",
	Annotations: writeAnnotations(),
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text": {
				Type:        "string",
				Description: "Text content of the post",
			},
			"reply_to": {
				Type:        "string",
				Description: "AT URI of the post to reply to; thread root is resolved automatically",
			},
			"facets": {
				Type:        "array",
				Description: "Explicit rich-text facets; omit to auto-detect links, mentions, and tags",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"type": {
							Type:        "string",
							Description: "Facet feature kind",
							Enum:        []any{"link", "mention", "tag"},
						},
						"value": {
							Type:        "string",
							Description: "URI for links, handle or DID for mentions, tag text without # for tags",
						},
						"byte_start": {
							Type:        "integer",
							Description: "UTF-8 byte offset where the facet starts",
							Minimum:     floatPtr(0),
						},
						"byte_end": {
							Type:        "integer",
							Description: "UTF-8 byte offset just past the facet end",
							Minimum:     floatPtr(1),
						},
					},
					Required: []string{"type", "value", "byte_start", "byte_end"},
				},
			},
		},
		Required: []string{"text"},
	},
}

type facetArg struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	ByteStart int64  `json:"byte_start"`
	ByteEnd   int64  `json:"byte_end"`
}

type createPostArgs struct {
	Text    string     `json:"text"`
	ReplyTo string     `json:"reply_to,omitempty"`
	Facets  []facetArg `json:"facets,omitempty"`
}

func (s *Server) handleCreatePost(ctx context.Context, args createPostArgs) (*gomcp.CallToolResult, error) {
	if args.Text == "" {
		return nil, validationError("text is required")
	}
	if len(args.Text) > maxPostLength {
		return nil, validationError("text exceeds %d bytes", maxPostLength)
	}

	var reply *appbsky.FeedPost_ReplyRef
	if args.ReplyTo != "" {
		if _, err := bluesky.ParseURI(args.ReplyTo); err != nil {
			return nil, validationError("reply_to: %v", err)
		}
		refs, err := bluesky.ReplyRefs(ctx, s.client, args.ReplyTo)
		if err != nil {
			return nil, err
		}
		reply = refs
	}

	var facets []*appbsky.RichtextFacet
	if len(args.Facets) > 0 {
		cands, err := facetCandidates(args.Facets, int64(len(args.Text)))
		if err != nil {
			return nil, err
		}
		facets = bluesky.ResolveFacets(ctx, s.client, cands)
	} else {
		facets = bluesky.BuildFacets(ctx, s.client, args.Text)
	}

	post := &appbsky.FeedPost{
		Text:      args.Text,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Reply:     reply,
		Facets:    facets,
	}

	ref, err := s.client.CreatePost(ctx, post)
	if err != nil {
		return nil, err
	}

	return jsonResult(ref)
}

// facetCandidates validates explicit facet arguments against the post text.
func facetCandidates(args []facetArg, textLen int64) ([]bluesky.FacetCandidate, error) {
	cands := make([]bluesky.FacetCandidate, 0, len(args))
	for _, f := range args {
		var kind bluesky.FacetKind
		switch f.Type {
		case "link":
			kind = bluesky.FacetLink
		case "mention":
			kind = bluesky.FacetMention
		case "tag":
			kind = bluesky.FacetTag
		default:
			return nil, validationError("facet type %q must be link, mention, or tag", f.Type)
		}
		if f.Value == "" {
			return nil, validationError("facet value is required")
		}
		if f.ByteStart < 0 || f.ByteEnd <= f.ByteStart || f.ByteEnd > textLen {
			return nil, validationError("facet byte range [%d, %d) is invalid for %d-byte text", f.ByteStart, f.ByteEnd, textLen)
		}
		cands = append(cands, bluesky.FacetCandidate{
			Kind:      kind,
			Value:     f.Value,
			ByteStart: f.ByteStart,
			ByteEnd:   f.ByteEnd,
		})
	}
	return cands, nil
}
