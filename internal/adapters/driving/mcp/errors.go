// Package mcp provides an MCP (Model Context Protocol) server adapter for Parity.
// It lets AI assistants compare document translations and browse stored runs.
package mcp

import "errors"

// ErrMissingComparisonService is returned when the comparison service is not provided.
var ErrMissingComparisonService = errors.New("mcp: comparison service is required")

// ErrRunsUnavailable is returned by run tools when no run service is configured.
var ErrRunsUnavailable = errors.New("mcp: run storage is not configured")
