// Copyright 2026 The gptservice Authors
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/gptservice/internal/service"
)

// Options tunes the defaults the tools apply when a caller omits them.
type Options struct {
	// MaxRetries is the attempt budget for completion tools when a call
	// omits one. Zero uses service.DefaultMaxRetries.
	MaxRetries int

	// BatchLimit is the page size of get_all_batch_id. Zero uses
	// service.DefaultBatchListLimit.
	BatchLimit int
}

// New creates a new MCP server with the gptservice tools registered over
// client.
func New(version string, client *service.Client, opts Options) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "gptservice",
		Title:   "gptservice: model completions and batch jobs",
		Version: version,
	}, nil)

	registerTools(server, &handlers{client: client, opts: opts})
	return server
}

// Run creates an MCP server and runs it on the given transport.
// It blocks until the client disconnects or the context is cancelled.
func Run(ctx context.Context, version string, client *service.Client, opts Options, transport mcp.Transport) error {
	return New(version, client, opts).Run(ctx, transport)
}
