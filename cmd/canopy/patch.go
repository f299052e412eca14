package main

import (
	"fmt"

	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/internal/sanitize"
	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/screen"
	"github.com/aretw0/canopy/pkg/tree"
	"github.com/spf13/cobra"
)

// manager builds a screen manager over the backend, with the cross-process
// lock when one is configured.
func (a *app) manager(b *cli.Backend, hooks domain.LifecycleHooks) *screen.Manager {
	if a.debug {
		hooks = hooks.Merge(cli.DebugHooks(a.logger))
	}
	opts := []screen.Option{screen.WithLogger(a.logger), screen.WithHooks(hooks)}
	if b.Locker != nil {
		opts = append(opts, screen.WithLocker(b.Locker))
	}
	return screen.NewManager(b.Documents(), opts...)
}

func newPutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <screen> [file]",
		Short: "Store a screen",
		Long:  `Decodes a JSON screen from the file (stdin when omitted or "-") and stores it under the name.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.backend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()
			if _, err := b.RequireStore(); err != nil {
				return err
			}

			path := ""
			if len(args) == 2 {
				path = args[1]
			}
			data, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			root, err := a.manager(b, domain.LifecycleHooks{}).Put(ctx, args[0], data)
			if err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "stored %s (%d nodes)", args[0], tree.Count(root))
			return nil
		},
	}
}

func newPatchCmd(a *app) *cobra.Command {
	var id, text string
	cmd := &cobra.Command{
		Use:   "patch <screen> [file]",
		Short: "Apply patches to a stored screen",
		Long: `Applies patches to every node carrying the patch id and saves the screen.

Patches are read as JSON, one object or an array, from the file (stdin when
omitted or "-"). With --id the patch is built from the flags instead.`,
		Example: `  canopy patch home --id greeting --text "Good evening"
  echo '[{"id":"list","value":[]}]' | canopy patch home`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.backend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()
			if _, err := b.RequireStore(); err != nil {
				return err
			}

			var patches []domain.Patch
			if id != "" {
				patches = []domain.Patch{domain.TextPatch(id, text)}
			} else {
				path := ""
				if len(args) == 2 {
					path = args[1]
				}
				data, err := readInput(cmd.InOrStdin(), path)
				if err != nil {
					return err
				}
				if patches, err = decoder.ParsePatchSet(data); err != nil {
					return fmt.Errorf("invalid patches: %w", err)
				}
			}
			if err := sanitize.Patches(patches, a.cfg.MaxTextSize); err != nil {
				return err
			}

			mgr := a.manager(b, domain.LifecycleHooks{})
			_, matches, err := mgr.Patch(ctx, args[0], patches...)
			if err != nil {
				return err
			}
			if matches == 0 {
				a.logger.Warn("no node matched, screen left unchanged", "screen", args[0])
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "patched %s: %d matches", args[0], matches)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Node id to patch")
	cmd.Flags().StringVar(&text, "text", "", "Content for the nodes matched by --id")
	return cmd
}
