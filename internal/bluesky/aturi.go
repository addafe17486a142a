// ABOUTME: AT URI parsing for record references.
// ABOUTME: An AT URI is at://<repo>/<collection>/<rkey>.

package bluesky

import (
	"fmt"
	"strings"
)

// URI is a parsed at:// record reference.
type URI struct {
	Repo       string
	Collection string
	RKey       string
}

// ParseURI splits an AT URI into repo, collection, and record key.
// The repo may be a DID or a handle; no network resolution happens here.
func ParseURI(s string) (URI, error) {
	rest, ok := strings.CutPrefix(s, "at://")
	if !ok {
		return URI{}, fmt.Errorf("invalid AT URI %q: missing at:// prefix", s)
	}

	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return URI{}, fmt.Errorf("invalid AT URI %q: want at://repo/collection/rkey", s)
	}

	return URI{Repo: parts[0], Collection: parts[1], RKey: parts[2]}, nil
}

// String reassembles the AT URI.
func (u URI) String() string {
	return "at://" + u.Repo + "/" + u.Collection + "/" + u.RKey
}
