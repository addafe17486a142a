// ABOUTME: Identity and profile tools: get_did, get_profile.

package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var getDidTool = &gomcp.Tool{
	Name:        "get_did",
	Description: "Get the current user's DID (decentralized identifier)",
	Annotations: readOnlyAnnotations(),
	InputSchema: &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	},
}

var getProfileTool = &gomcp.Tool{
	Name:        "get_profile",
	Description: "Get detailed profile view of an actor",
	Annotations: readOnlyAnnotations(),
	InputSchema: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"actor": {
				Type:        "string",
				Description: "Handle or DID of the account to fetch the profile of",
			},
		},
		Required: []string{"actor"},
	},
}

type getDidArgs struct{}

type getProfileArgs struct {
	Actor string `json:"actor"`
}

func (s *Server) handleGetDID(_ context.Context, _ getDidArgs) (*gomcp.CallToolResult, error) {
	return textResult(s.client.DID()), nil
}

func (s *Server) handleGetProfile(ctx context.Context, args getProfileArgs) (*gomcp.CallToolResult, error) {
	if args.Actor == "" {
		return nil, validationError("actor is required")
	}

	profile, err := s.client.GetProfile(ctx, args.Actor)
	if err != nil {
		return nil, err
	}

	return jsonResult(profile)
}
