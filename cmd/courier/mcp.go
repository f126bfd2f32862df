package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/courier/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the assistant as MCP tools so AI agents can track packages and file claims.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		baseURL, _ := cmd.Flags().GetString("base-url")

		// stdout carries JSON-RPC on stdio.
		log.SetOutput(os.Stderr)

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		a, logger, err := cli.CreateAssistant(sigCtx, globals)
		if err != nil {
			return err
		}
		defer a.Close()

		go a.RunJanitor(sigCtx, a.Config.SweepInterval)
		srv := a.MCPServer()

		switch transport {
		case "stdio":
			logger.Info("Starting Courier MCP Server (Stdio)")
			return cli.HandleExecutionError(srv.ServeStdio())
		case "sse":
			if baseURL == "" {
				baseURL = "http://localhost" + addr
			}
			logger.Info("Starting Courier MCP Server (SSE)", "addr", addr, "base_url", baseURL)
			if err := srv.ServeSSE(sigCtx, addr, baseURL); err != nil {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
	mcpCmd.Flags().String("base-url", "", "Public base URL announced to SSE clients")
}
