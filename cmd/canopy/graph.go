package main

import (
	"fmt"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/internal/presentation/graph"
	"github.com/aretw0/canopy/pkg/loader"
	"github.com/spf13/cobra"
)

func newGraphCmd(a *app) *cobra.Command {
	var entry string
	cmd := &cobra.Command{
		Use:   "graph [screen]",
		Short: "Export the screen graph visualization",
		Long: `Outputs a Mermaid diagram (graph TD). Without arguments it shows how screens
link to each other through navigate actions. With a screen name it shows that
screen's node hierarchy.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.backend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()
			ld := loader.New(b.Source, loader.WithLogger(a.logger))

			if len(args) == 1 {
				root, err := ld.Load(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), graph.GenerateTree(root))
				return nil
			}

			names, err := listScreens(ctx, b.Source)
			if err != nil {
				return err
			}
			known := make(map[string]bool, len(names))
			for _, n := range names {
				known[n] = true
			}

			overlay := &graph.GraphOverlay{Entry: entry}
			if overlay.Entry == "" {
				overlay.Entry = cli.EntryScreen(names)
			}
			screens := make([]graph.Screen, 0, len(names))
			for _, name := range names {
				root, err := ld.Load(ctx, name)
				if err != nil {
					a.logger.Warn("screen does not load", "screen", name, "err", err)
					screens = append(screens, graph.Screen{Name: name, Broken: true})
					continue
				}
				s := graph.ScreenOf(name, root)
				for _, l := range s.Links {
					if !known[l.Target] {
						overlay.Missing = append(overlay.Missing, l.Target)
					}
				}
				screens = append(screens, s)
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(screens, overlay))
			return nil
		},
	}
	cmd.Flags().StringVar(&entry, "entry", "", "Screen to highlight as the entry point")
	return cmd
}
