package main

import (
	"fmt"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/pkg/render"
	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		markdown bool
		plain    bool
		width    int
	)
	cmd := &cobra.Command{
		Use:   "render <screen>",
		Short: "Draw a screen in the terminal",
		Long:  `Loads a screen and lays it out as text. Colours are used on a real terminal unless --plain is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			out := cmd.OutOrStdout()
			opts := cli.RenderOptions(out, markdown, plain)
			if width > 0 {
				opts = append(opts, render.WithWidth(width))
			}
			text, err := eng.Render(ctx, args[0], opts...)
			if err != nil {
				return err
			}
			fmt.Fprint(out, text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render text content as Markdown")
	cmd.Flags().BoolVar(&plain, "plain", false, "Never use colours")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap at this many columns (default: terminal width)")
	return cmd
}
