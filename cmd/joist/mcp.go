package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/joist/internal/cli"
	"github.com/aretw0/joist/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the document store as MCP tools so AI agents can inspect and
edit page trees.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// Logs must never corrupt JSON-RPC on stdout.
		log.SetOutput(os.Stderr)
		logger := cli.NewLogger(cfg.Log.Level, false)

		app, err := cli.NewApp(cfg, logger)
		if err != nil {
			return fmt.Errorf("error initializing joist: %w", err)
		}
		defer app.Close()

		srv := mcp.NewServer(app.Manager, logger)

		switch transport {
		case "stdio":
			logger.Info("Starting joist MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()
			if err := srv.ServeSSE(sigCtx, port); err != nil {
				return cli.HandleExecutionError(err)
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
