// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-engine/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve retrieval operations as MCP tools on stdio",
	Long: `Serve exposes search, citation-graph, and full-text operations as MCP
tools over stdio. Point an MCP-capable agent at this command; it runs until
the client disconnects or the process is signalled.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return mcpserver.New(eng, version).Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
