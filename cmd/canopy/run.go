package main

import (
	"errors"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var opts cli.RunOptions
	cmd := &cobra.Command{
		Use:   "run [screen]",
		Short: "Browse screens interactively",
		Long: `Renders a screen, lists its interactive nodes and follows the one you type.
"back" returns to the previous screen, "quit" leaves.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Watch && opts.Headless {
				return errors.New("--watch and --headless cannot be used together")
			}
			ctx := cmd.Context()
			b, err := a.backend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()
			eng, err := a.engine(cmd, b)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				opts.Screen = args[0]
			}
			opts.Input = cmd.InOrStdin()
			opts.Output = cmd.OutOrStdout()
			return cli.Run(ctx, eng, opts, a.logger)
		},
	}
	cmd.Flags().BoolVar(&opts.Headless, "headless", false, "Run in headless mode (no prompts, no banner)")
	cmd.Flags().BoolVar(&opts.Markdown, "markdown", false, "Render text content as Markdown")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Redraw when the screen changes in the source")
	return cmd
}
