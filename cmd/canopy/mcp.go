package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/canopy/pkg/adapters/mcp"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	var (
		transport string
		addr      string
		readOnly  bool
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Starts Canopy as an MCP Server.
This allows AI agents to inspect screens and patch them as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.backend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			opts := []mcp.Option{mcp.WithLogger(a.logger), mcp.WithMaxTextSize(a.cfg.MaxTextSize)}
			if readOnly || a.cfg.ReadOnly || b.Store == nil {
				opts = append(opts, mcp.WithReadOnly())
			}
			srv := mcp.NewServer(a.manager(b, domain.LifecycleHooks{}), opts...)

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				a.logger.Info("Starting Canopy MCP Server (Stdio)...")
				return srv.ServeStdio()
			case "sse":
				if addr == "" {
					addr = a.cfg.Addr
				}
				a.logger.Info("Starting Canopy MCP Server (SSE)", "addr", addr)
				if err := srv.ServeSSE(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				a.logger.Info("MCP Server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (only for SSE, default from config)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Leave out the patching tools")
	return cmd
}
