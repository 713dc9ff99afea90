// Copyright 2026 The gptservice Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/davetashner/gptservice/internal/mcpserver"
	"github.com/davetashner/gptservice/internal/metrics"
)

var mcpMetricsAddr string

// mcpCmd is the parent command for MCP-related subcommands.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server commands",
	Long:  "Commands for running gptservice as an MCP server, exposing completion and batch tools to AI agents.",
}

// mcpServeCmd runs the MCP server over stdio.
var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Start an MCP server on stdin/stdout, exposing gptservice's operations:
  - text_to_text, image_to_text:   completions with bounded retry
  - upload_batch_file:             upload a JSONL batch input file
  - create_batch_file:             submit a batch job
  - check_batch_status:            poll a batch job
  - retrieval_batch_result:        fetch a batch output file
  - cancel_batch_result:           cancel a batch job
  - get_all_batch_id:              list recent batch jobs

With --metrics-addr, Prometheus metrics are served at /metrics on that address.`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9090")
	mcpCmd.AddCommand(mcpServeCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	var collector metrics.Collector
	ctx := cmd.Context()
	if mcpMetricsAddr != "" {
		prom := metrics.NewPrometheus()
		collector = prom
		_, stop, err := serveMetrics(mcpMetricsAddr, prom.Handler())
		if err != nil {
			return err
		}
		defer stop()
	}

	client, err := newClient(cfg, collector)
	if err != nil {
		return err
	}

	return mcpserver.Run(ctx, Version, client, mcpserver.Options{
		MaxRetries: cfg.MaxRetries,
		BatchLimit: cfg.BatchLimit,
	}, &mcp.StdioTransport{})
}

// serveMetrics starts an HTTP server for h at addr/metrics. It returns the
// bound address and a function that shuts the server down.
func serveMetrics(addr string, h http.Handler) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, exitError(ExitInvalidArgs, "metrics listener: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", ln.Addr().String())

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
