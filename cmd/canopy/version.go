package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/canopy"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of canopy",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "canopy version %s\n", strings.TrimSpace(canopy.Version))
		},
	}
}
