// ABOUTME: Tool result construction and serialization helpers.
// ABOUTME: JSON text results with timestamps rewritten to local time.

package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bluesky-social/indigo/xrpc"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// errInvalidParams marks argument validation failures, which must be
// reported before any remote call happens.
var errInvalidParams = errors.New("invalid params")

// validationError reports a parameter problem for one tool call.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidParams, fmt.Sprintf(format, args...))
}

// textResult wraps plain text in a success result.
func textResult(text string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}
}

// errorResult wraps a message in a tool-level error result.
func errorResult(format string, args ...any) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		IsError: true,
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

// jsonResult serializes v as JSON text content, rewriting timestamp fields
// to the local timezone on the way out.
func jsonResult(v any) (*gomcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}

	out, err := json.Marshal(localizeTimestamps(decoded, time.Local))
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}

	return textResult(string(out)), nil
}

// localizeTimestamps walks decoded JSON and rewrites RFC 3339 values under
// keys ending in "At" (createdAt, indexedAt, seenAt, ...) into loc. The
// upstream service reports UTC; local timestamps read better in tool output.
func localizeTimestamps(v any, loc *time.Location) any {
	switch val := v.(type) {
	case map[string]any:
		for k, elem := range val {
			if strings.HasSuffix(k, "At") {
				if str, ok := elem.(string); ok {
					if ts, err := time.Parse(time.RFC3339, str); err == nil {
						val[k] = ts.In(loc).Format(time.RFC3339)
						continue
					}
				}
			}
			val[k] = localizeTimestamps(elem, loc)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = localizeTimestamps(elem, loc)
		}
		return val
	default:
		return v
	}
}

// remoteMessage renders an error for the tool result, calling out upstream
// conditions the invoking agent can react to.
func remoteMessage(err error) string {
	var xe *xrpc.Error
	if errors.As(err, &xe) {
		switch xe.StatusCode {
		case http.StatusTooManyRequests:
			return fmt.Sprintf("rate limited by upstream: %v", err)
		case http.StatusNotFound:
			return fmt.Sprintf("not found upstream: %v", err)
		case http.StatusUnauthorized:
			return fmt.Sprintf("upstream rejected session: %v", err)
		}
	}
	return err.Error()
}
