// ABOUTME: Rich-text facet detection for post text.
// ABOUTME: Finds links, @mentions, and #tags with UTF-8 byte offsets.

package bluesky

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	appbsky "github.com/bluesky-social/indigo/api/bsky"
)

// FacetKind identifies the feature a facet carries.
type FacetKind string

const (
	FacetLink    FacetKind = "link"
	FacetMention FacetKind = "mention"
	FacetTag     FacetKind = "tag"
)

// FacetCandidate is a detected rich-text feature before handle resolution.
// Offsets are byte offsets into the UTF-8 post text; the span covers the
// leading @ or # sigil where one exists. Value carries the URI, handle (or
// DID), or tag text without its sigil.
type FacetCandidate struct {
	Kind      FacetKind
	Value     string
	ByteStart int64
	ByteEnd   int64
}

var (
	linkPattern = regexp.MustCompile(`(?:^|\s)(https?://[^\s]+)`)
	// Mention handles must be dotted domain-shaped names; a bare @word is
	// not a Bluesky handle.
	mentionPattern = regexp.MustCompile(`(?:^|\s)(@[a-zA-Z0-9][a-zA-Z0-9-]*(?:\.[a-zA-Z0-9][a-zA-Z0-9-]*)+)`)
	tagPattern     = regexp.MustCompile(`(?:^|\s)(#[\p{L}\p{N}_]+)`)
)

// trailingPunct is stripped from the end of detected links; sentence
// punctuation after a URL is almost never part of it.
const trailingPunct = `.,;:!?)]'"`

// DetectFacets scans post text for links, mentions, and tags, returning
// candidates ordered by byte offset. Mentions still carry handles; use
// ResolveFacets (or BuildFacets) to turn candidates into wire facets.
func DetectFacets(text string) []FacetCandidate {
	var out []FacetCandidate

	for _, m := range linkPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		link := strings.TrimRight(text[start:end], trailingPunct)
		if link == "" {
			continue
		}
		out = append(out, FacetCandidate{
			Kind:      FacetLink,
			Value:     link,
			ByteStart: int64(start),
			ByteEnd:   int64(start + len(link)),
		})
	}

	for _, m := range mentionPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		out = append(out, FacetCandidate{
			Kind:      FacetMention,
			Value:     text[start+1 : end], // drop the @
			ByteStart: int64(start),
			ByteEnd:   int64(end),
		})
	}

	for _, m := range tagPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		out = append(out, FacetCandidate{
			Kind:      FacetTag,
			Value:     text[start+1 : end], // drop the #
			ByteStart: int64(start),
			ByteEnd:   int64(end),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ByteStart < out[j].ByteStart })
	return out
}

// ResolveFacets converts candidates into wire facets, resolving mention
// handles to DIDs. A mention whose handle does not resolve is dropped, not
// fatal: the post still goes out, just without that mention linked.
func ResolveFacets(ctx context.Context, resolver HandleResolver, cands []FacetCandidate) []*appbsky.RichtextFacet {
	var facets []*appbsky.RichtextFacet

	for _, c := range cands {
		index := &appbsky.RichtextFacet_ByteSlice{
			ByteStart: c.ByteStart,
			ByteEnd:   c.ByteEnd,
		}

		switch c.Kind {
		case FacetLink:
			facets = append(facets, &appbsky.RichtextFacet{
				Index: index,
				Features: []*appbsky.RichtextFacet_Features_Elem{{
					RichtextFacet_Link: &appbsky.RichtextFacet_Link{Uri: c.Value},
				}},
			})
		case FacetMention:
			did := c.Value
			if !strings.HasPrefix(did, "did:") {
				resolved, err := resolver.ResolveHandle(ctx, c.Value)
				if err != nil {
					slog.Debug("dropping unresolvable mention", "handle", c.Value, "error", err)
					continue
				}
				did = resolved
			}
			facets = append(facets, &appbsky.RichtextFacet{
				Index: index,
				Features: []*appbsky.RichtextFacet_Features_Elem{{
					RichtextFacet_Mention: &appbsky.RichtextFacet_Mention{Did: did},
				}},
			})
		case FacetTag:
			facets = append(facets, &appbsky.RichtextFacet{
				Index: index,
				Features: []*appbsky.RichtextFacet_Features_Elem{{
					RichtextFacet_Tag: &appbsky.RichtextFacet_Tag{Tag: c.Value},
				}},
			})
		}
	}

	return facets
}

// BuildFacets detects and resolves facets for post text in one step.
func BuildFacets(ctx context.Context, resolver HandleResolver, text string) []*appbsky.RichtextFacet {
	return ResolveFacets(ctx, resolver, DetectFacets(text))
}
