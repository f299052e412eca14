package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/internal/metrics"
	httpAdapter "github.com/aretw0/canopy/pkg/adapters/http"
	"github.com/aretw0/canopy/pkg/adapters/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		addr     string
		readOnly bool
		mcpAddr  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Serves screens over HTTP: JSON reads, PUT and DELETE, patches, server-sent
events and a WebSocket per screen. Prometheus metrics are exposed on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			if readOnly {
				a.cfg.ReadOnly = true
			}

			b, err := a.backend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			m := metrics.New()
			mgr := a.manager(b, m.Hooks())
			locked := a.cfg.ReadOnly || b.Store == nil

			opts := []httpAdapter.Option{
				httpAdapter.WithLogger(a.logger),
				httpAdapter.WithMetrics(m.Handler()),
				httpAdapter.WithMaxTextSize(a.cfg.MaxTextSize),
			}
			if locked {
				opts = append(opts, httpAdapter.WithReadOnly())
			}
			srv := &http.Server{
				Addr:              a.cfg.Addr,
				Handler:           httpAdapter.NewHandler(mgr, opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				cli.PrintSystemMessage(cmd.ErrOrStderr(), "Starting Canopy Server on %s", srv.Addr)
				cli.PrintSystemMessage(cmd.ErrOrStderr(), "Serving %s screens (read-only: %t)", a.cfg.Source.Kind, locked)
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					_ = srv.Close()
					return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
				}
				a.logger.Info("Canopy Server stopped gracefully")
				return nil
			})
			if mcpAddr != "" {
				mcpOpts := []mcp.Option{mcp.WithLogger(a.logger), mcp.WithMaxTextSize(a.cfg.MaxTextSize)}
				if locked {
					mcpOpts = append(mcpOpts, mcp.WithReadOnly())
				}
				g.Go(func() error {
					if err := mcp.NewServer(mgr, mcpOpts...).ServeSSE(gctx, mcpAddr); !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config, :8080)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Refuse writes and patches")
	cmd.Flags().StringVar(&mcpAddr, "mcp-sse", "", "Also serve MCP over SSE on this address")
	return cmd
}
