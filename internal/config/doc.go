// Package config handles configuration loading for bsky-mcp.
//
// # Overview
//
// Configuration is loaded from an optional YAML file with environment
// variable expansion. Every field has a default, so running without a
// config file is the common case. Credentials are deliberately excluded
// from the file and read only from the environment.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from BSKY_MCP_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/bsky-mcp/config.yaml
//  3. ~/.config/bsky-mcp/config.yaml
//
// # Sections
//
// Upstream service:
//
//	service:
//	  host: "https://bsky.social"
//
// Logging (always to stderr; stdout carries the MCP protocol):
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// Pagination bounds:
//
//	limits:
//	  default_page_size: 10
//	  max_page_size: 100
//
// # Credentials
//
// Two environment variables are required at startup:
//
//	BLUESKY_IDENTIFIER    handle or DID of the account
//	BLUESKY_APP_PASSWORD  app password (not the account password)
//
// LoadCredentials returns an error wrapping ErrMissingCredentials when
// either is unset; callers treat that as fatal before any stdio
// interaction begins.
package config
