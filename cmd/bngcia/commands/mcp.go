// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to ask questions and manage the corpus via stdio
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HelloJC24/BNGCIA/internal/mcp"
	"github.com/HelloJC24/BNGCIA/internal/store"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents.

Runs BNGCIA as an MCP (Model Context Protocol) server over stdio,
exposing question answering, corpus building, and conversation tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically launched by the agent host)
  bngcia mcp

  # Configure in the agent host's MCP config:
  # {
  #   "mcpServers": {
  #     "bngcia": {
  #       "command": "bngcia",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	// Load the stored corpus if one exists; the build_corpus tool can
	// create it later otherwise
	if _, err := a.svc.Reload(); err != nil {
		if !errors.Is(err, store.ErrCorpusNotFound) {
			return fmt.Errorf("loading corpus: %w", err)
		}
		a.logger.Warn("starting without a corpus; run build_corpus to create one")
	}

	server := mcpserver.NewMCPServer(
		"BNGCIA Retrieval Engine",
		versionInfo.Version,
	)
	mcp.RegisterTools(server, a.svc, a.builder, a.logger)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received", zap.String("reason", ctx.Err().Error()))
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("MCP server: %w", err)
		}
		return nil
	}
}
