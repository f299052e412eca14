package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/canopy/internal/validator"
	"github.com/aretw0/canopy/pkg/schema"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		actions      []string
		schemasFile  string
		printSchemas bool
	)
	cmd := &cobra.Command{
		Use:   "validate [screen...]",
		Short: "Check screens for consistency",
		Long: `Crawls the screens starting from the named ones (every listed screen by default)
and reports broken navigate links, payloads that do not decode and lint warnings.

--schemas adds property schemas per node type, on top of the built-in ones:
  {"toggle": {"badge": "int?"}, "text": {"tone": "string"}}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var reg schema.Registry
			if schemasFile != "" {
				var err error
				if reg, err = schema.LoadRegistry(schemasFile); err != nil {
					return err
				}
			}
			if printSchemas {
				data, err := json.MarshalIndent(reg.Effective(), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			ctx := cmd.Context()
			b, err := a.backend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			start := args
			if len(start) == 0 {
				if start, err = listScreens(ctx, b.Source); err != nil {
					return err
				}
			}

			report, err := validator.ValidateScreens(ctx, b.Source, start,
				validator.WithKnownActions(actions...),
				validator.WithSchemas(reg),
			)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range report.Findings {
				fmt.Fprintln(out, f)
			}
			if n := report.Errors(); n > 0 {
				return fmt.Errorf("validation failed: %d errors in %d screens", n, len(report.Screens))
			}
			fmt.Fprintf(out, "%d screens are valid! ✅\n", len(report.Screens))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&actions, "action", nil, "Extra action types the host handles")
	cmd.Flags().StringVar(&schemasFile, "schemas", "", "JSON file of extra property schemas per node type")
	cmd.Flags().BoolVar(&printSchemas, "print-schemas", false, "Print the effective property schemas and exit")
	return cmd
}
