package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/internal/config"
	"github.com/aretw0/canopy/pkg/action"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/spf13/cobra"
)

// app carries the global flags and what PersistentPreRunE resolves from them.
type app struct {
	configFile string
	envFiles   []string
	source     string
	dir        string
	debug      bool
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "canopy",
		Short: "Canopy is a server-driven UI runtime",
		Long: `Canopy decodes declarative JSON screens into UI trees, keeps them in a store,
patches them in place and serves them to clients over HTTP, WebSocket and MCP.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "TOML config file (default "+config.DefaultFile+" when present)")
	flags.StringSliceVar(&a.envFiles, "env-file", nil, "dotenv files to load (default .env when present)")
	flags.StringVar(&a.source, "source", "", fmt.Sprintf("screen source kind %v", config.Kinds()))
	flags.String("dir", ".", "Directory containing the screens (dir and loam sources)")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		newVersionCmd(),
		newValidateCmd(a),
		newGraphCmd(a),
		newRenderCmd(a),
		newFindCmd(a),
		newPutCmd(a),
		newPatchCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newRunCmd(a),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load resolves the configuration: defaults, file, .env, environment, then flags.
func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Options{File: a.configFile, EnvFiles: a.envFiles})
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source.Kind = a.source
	}
	if flags.Changed("dir") {
		cfg.Source.Dir, _ = flags.GetString("dir")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}

	a.cfg = cfg
	a.logger = cli.NewLogger(cfg.Log, a.debug)
	return nil
}

// backend opens the configured store. Callers must Close it.
func (a *app) backend(ctx context.Context) (*cli.Backend, error) {
	b, err := cli.OpenBackend(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s source: %w", a.cfg.Source.Kind, err)
	}
	return b, nil
}

// engine wires an Engine over the backend. openURL actions are reported on
// stdout, since a terminal cannot open them itself.
func (a *app) engine(cmd *cobra.Command, b *cli.Backend) (*canopy.Engine, error) {
	opts := []canopy.Option{
		canopy.WithSource(b.Source),
		canopy.WithLogger(a.logger),
		canopy.WithInterceptors(action.AllowSchemes("http", "https", "mailto")),
		canopy.WithActionHandler(domain.ActionOpenURL, action.OpenURLHandler(func(ctx context.Context, u *url.URL) error {
			cli.PrintSystemMessage(cmd.OutOrStdout(), "open %s", u)
			return nil
		})),
	}
	if a.debug {
		opts = append(opts, canopy.WithLifecycleHooks(cli.DebugHooks(a.logger)))
	}
	name := ""
	if a.cfg.Source.Kind == config.SourceDir || a.cfg.Source.Kind == config.SourceLoam {
		name = a.cfg.Source.Dir
	}
	return canopy.New(name, opts...)
}
