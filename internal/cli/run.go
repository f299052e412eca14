package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/presentation/tui"
)

// RunOptions contains the configuration for the run command.
type RunOptions struct {
	Screen   string
	Headless bool
	Markdown bool
	Watch    bool
	Input    io.Reader
	Output   io.Writer
}

// Run browses screens interactively. With Watch set, the current screen is
// redrawn whenever the source reports a change to it.
func Run(ctx context.Context, eng *canopy.Engine, opts RunOptions, logger *slog.Logger) error {
	start := opts.Screen
	if start == "" {
		names, err := eng.List(ctx)
		if err != nil {
			return fmt.Errorf("no screen given and the source cannot list screens: %w", err)
		}
		start = EntryScreen(names)
		if start == "" {
			return errors.New("no screens found")
		}
	}

	if !opts.Headless {
		tui.PrintBanner(opts.Output, canopy.Version)
	}
	runner := canopy.NewRunner(opts.Input, opts.Output, RenderOptions(opts.Output, opts.Markdown, opts.Headless)...)
	runner.Headless = opts.Headless

	if opts.Watch {
		changes, err := eng.Watch(ctx)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		logger.Info("Starting Watcher", "screen", start)
		runner.Changes = changes
	}
	return runner.Run(ctx, eng, start)
}
