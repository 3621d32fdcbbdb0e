package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/felixgeelhaar/codelite/internal/mcp"
)

// cmdMCP starts the MCP server on stdio
func cmdMCP() error {
	srv, err := mcpserver.NewServer(mcpserver.Config{Version: Version})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return srv.ServeStdio(ctx)
}
