package main

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/spf13/cobra"
)

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <screen> <id>",
		Short: "Print the first node with an id",
		Long:  `Searches the screen in pre-order and prints the first node carrying the id as JSON.`,
		Args:  cobra.ExactArgs(2),
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

			n, err := eng.Find(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			data, err := decoder.EncodeIndent(n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
